// cmd/pricescout/main.go

// pricescout compares product prices across retail sites.
//
// Usage:
//
//	pricescout search -c US "iphone 16 pro"
//	pricescout serve --addr :8000
//	pricescout sites [country]
//	pricescout version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pricescout/internal/platform/config"
	"pricescout/internal/platform/logx"
)

var (
	// Set with -ldflags at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg holds defaults and PRICESCOUT_* env; persistent flags write into it.
var cfg = config.FromEnv()

var rootCmd = &cobra.Command{
	Use:   "pricescout",
	Short: "Price comparison across retail sites",
	Long: `pricescout resolves a product query into a ranked list of offers.
It selects retail sites for a country, finds a product page on each one,
extracts price and availability, and returns the offers sorted by price.

` + config.EnvHelp,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return config.Finalize(&cfg)
	},
}

func init() {
	config.BindFlags(rootCmd.PersistentFlags(), &cfg)

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// newLogger builds the process logger from the finalized config.
func newLogger(c config.Config) logx.Logger {
	if c.Core.Quiet {
		return logx.NewSilent()
	}
	logger := logx.New()
	if c.Core.LogLevel != "" {
		logger.SetLevel(logx.ParseLevel(c.Core.LogLevel))
	}
	return logger
}
