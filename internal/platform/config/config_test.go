// internal/platform/config/config_test.go
package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"pricescout/internal/platform/errors"
	"pricescout/internal/testutil"
)

func TestGetenv(t *testing.T) {
	t.Setenv("PRICESCOUT_TEST_SET", "custom")
	t.Setenv("PRICESCOUT_TEST_EMPTY", "")

	testutil.AssertEqual(t, getenv("PRICESCOUT_TEST_SET", "def"), "custom", "set")
	testutil.AssertEqual(t, getenv("PRICESCOUT_TEST_EMPTY", "def"), "def", "empty uses default")
	testutil.AssertEqual(t, getenv("PRICESCOUT_TEST_MISSING", "def"), "def", "missing uses default")
}

func TestParseHelpers(t *testing.T) {
	for _, v := range []string{"1", "t", "TRUE", "yes", "On"} {
		testutil.AssertTrue(t, parseBool(v), v)
	}
	for _, v := range []string{"0", "false", "off", "", "nope"} {
		testutil.AssertFalse(t, parseBool(v), v)
	}

	testutil.AssertEqual(t, parseInt(" 42 ", 1), 42, "int")
	testutil.AssertEqual(t, parseInt("x", 7), 7, "int fallback")
	testutil.AssertEqual(t, parseFloat("0.5", 1), 0.5, "float")

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"90s", 90 * time.Second},
		{"2m", 2 * time.Minute},
		{"15", 15 * time.Second},
		{"soon", time.Hour},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, parseDuration(tt.in, time.Hour), tt.want, tt.in)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	testutil.AssertEqual(t, cfg.Pipeline.MaxExtractions, 5, "max extractions")
	testutil.AssertEqual(t, cfg.Pipeline.MinResults, 3, "min results")
	testutil.AssertEqual(t, cfg.Pipeline.Strategy, StrategyService, "strategy")
	testutil.AssertEqual(t, cfg.RateLimit.PerMinute, 10, "rate")
	testutil.AssertEqual(t, cfg.RateLimit.Window, time.Minute, "window")
	testutil.AssertEqual(t, cfg.RateLimit.Buffer, time.Second, "buffer")
	testutil.AssertEqual(t, cfg.HTTP.FetchTimeout, 15*time.Second, "fetch timeout")
	testutil.AssertEqual(t, cfg.HTTP.UserAgent, "Mozilla/5.0", "user agent")
	testutil.AssertEqual(t, cfg.LLM.MaxContentChars, 8000, "llm content cap")
	testutil.AssertEqual(t, cfg.Cache.TTL, 24*time.Hour, "cache ttl")
	testutil.AssertEqual(t, cfg.Cache.Driver, CacheSQLite, "cache driver")
}

func TestLoad_EnvThenFlags(t *testing.T) {
	t.Setenv("PRICESCOUT_COUNTRY", "gb")
	t.Setenv("PRICESCOUT_MAX_EXTRACTIONS", "8")
	t.Setenv("PRICESCOUT_RATE_PER_MINUTE", "20")
	t.Setenv("PRICESCOUT_CACHE_TTL", "1h")
	t.Setenv("SERPAPI_API_KEY", "serp-secret")

	cfg, err := Load([]string{"--max-extractions", "4", "--strategy", "Structured-First"})
	testutil.RequireNoError(t, err, "load")

	testutil.AssertEqual(t, cfg.Core.Country, "GB", "env country normalized")
	testutil.AssertEqual(t, cfg.Pipeline.MaxExtractions, 4, "flag overrides env")
	testutil.AssertEqual(t, cfg.RateLimit.PerMinute, 20, "env only")
	testutil.AssertEqual(t, cfg.Cache.TTL, time.Hour, "env duration")
	testutil.AssertEqual(t, cfg.Pipeline.Strategy, StrategyStructuredFirst, "strategy normalized")
	testutil.AssertEqual(t, cfg.Search.APIKey, "serp-secret", "legacy key variable")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown strategy", []string{"--strategy", "magic"}},
		{"unknown cache", []string{"--cache", "redis"}},
		{"unknown output", []string{"-o", "xml"}},
		{"postgres without dsn", []string{"--cache", "postgres", "--cache-dsn", ""}},
		{"unknown flag", []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			testutil.AssertTrue(t, errors.IsInvalidInput(err), "invalid input")
		})
	}
}

func TestNormalize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Core.Country = " us "
	cfg.Core.Output = ""
	cfg.Pipeline.MaxExtractions = 0
	cfg.Pipeline.MinResults = -1
	cfg.RateLimit.PerMinute = 0
	cfg.RateLimit.Window = 0
	cfg.Cache.Driver = " SQLite "

	normalize(&cfg)

	testutil.AssertEqual(t, cfg.Core.Country, "US", "country")
	testutil.AssertEqual(t, cfg.Core.Output, OutputTable, "output default")
	testutil.AssertEqual(t, cfg.Pipeline.MaxExtractions, 1, "cap floor")
	testutil.AssertEqual(t, cfg.Pipeline.MinResults, 0, "min floor")
	testutil.AssertEqual(t, cfg.RateLimit.PerMinute, 1, "rate floor")
	testutil.AssertEqual(t, cfg.RateLimit.Window, time.Minute, "window default")
	testutil.AssertEqual(t, cfg.Cache.Driver, CacheSQLite, "driver lowercased")
}

func TestBindFlags_Shorthands(t *testing.T) {
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, &cfg)

	err := fs.Parse([]string{"-c", "IN", "-n", "2", "-q"})
	testutil.RequireNoError(t, err, "parse")
	testutil.AssertEqual(t, cfg.Core.Country, "IN", "country")
	testutil.AssertEqual(t, cfg.Core.MaxResults, 2, "max results")
	testutil.AssertTrue(t, cfg.Core.Quiet, "quiet")
}

func TestToJSON_MasksSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.APIKey = "serp-secret"
	cfg.LLM.APIKey = "llm-secret"

	out, err := cfg.ToJSON()
	testutil.RequireNoError(t, err, "json")
	testutil.AssertFalse(t, strings.Contains(out, "secret"), "secrets masked")
	testutil.AssertEqual(t, cfg.Search.APIKey, "serp-secret", "original untouched")
}
