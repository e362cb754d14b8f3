// cmd/pricescout/cmd_version.go
package main

import (
	"github.com/spf13/cobra"

	"pricescout/internal/platform/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config.PrintVersion(cmd.OutOrStdout(), version, commit, date)
		return nil
	},
}
