// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

// SearchExamples se muestra en `pricescout search --help`.
const SearchExamples = `  Basic search:
    pricescout search -c US "iphone 15 pro 128gb"

  Top 3 offers as JSON:
    pricescout search -c GB -n 3 -o json "sony wh-1000xm5"

  Scrape known sites first, LLM as fallback:
    pricescout search -c US --strategy structured-first "dyson v15"

  Through a proxy, without the persistent site cache:
    pricescout search -c DE -p http://proxy.example.com:8080 --cache none "kindle"`

// EnvHelp lista las variables de entorno; se agrega al help del comando raíz.
const EnvHelp = `ENVIRONMENT VARIABLES:
  SERPAPI_API_KEY / PRICESCOUT_SERPAPI_KEY   Search API key (required)
  OPENAI_API_KEY / PRICESCOUT_LLM_API_KEY    LLM API key (required)
  PRICESCOUT_LLM_ENDPOINT                    OpenAI-compatible endpoint
  PRICESCOUT_LLM_MODEL                       Chat completion model
  PRICESCOUT_RATE_PER_MINUTE=10              Extraction calls per window
  PRICESCOUT_MAX_EXTRACTIONS=5               First batch cap
  PRICESCOUT_MIN_RESULTS=3                   Backfill threshold
  PRICESCOUT_STRATEGY=service                service | structured-first
  PRICESCOUT_FETCH_TIMEOUT=15s               Page fetch timeout
  PRICESCOUT_CACHE_DRIVER=sqlite             sqlite | postgres | none
  PRICESCOUT_CACHE_DSN=price_comparison.db   Cache DSN
  PRICESCOUT_CACHE_TTL=24h                   Site list expiry
  PRICESCOUT_POLICY_FILE                     Validation tables override
  PRICESCOUT_SITES_FILE                      Per-country site table override
  PRICESCOUT_LOG_LEVEL=info                  debug | info | warn | error

  Note: CLI flags override environment variables.`

// PrintVersion escribe la información de build.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "pricescout %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", runtime.Version())
}
