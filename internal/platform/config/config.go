// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"pricescout/internal/platform/errors"
)

// Config agrupa toda la configuración del binario. Orden de carga:
// defaults -> ENV (PRICESCOUT_*) -> flags -> normalize.
type Config struct {
	Core      Core
	Pipeline  Pipeline
	RateLimit RateLimit
	HTTP      HTTP
	Search    Search
	LLM       LLM
	Sites     Sites
	Cache     Cache
	Server    Server

	// PolicyFile es un YAML opcional con las tablas de validación.
	PolicyFile string
}

type Core struct {
	Country    string
	Query      string
	MaxResults int           // 0 = todos
	Timeout    time.Duration // deadline global por request (0 = sin deadline)
	Output     string        // table | json | ndjson
	OutputDir  string        // si no está vacío, guarda también la respuesta JSON
	Quiet      bool
	LogLevel   string
}

type Pipeline struct {
	MaxExtractions  int    // cap del primer batch
	MinResults      int    // umbral de backfill
	MaxConcurrency  int    // 0 = una goroutine por unidad
	ProbeTopResults int    // resultados orgánicos inspeccionados por sitio
	Strategy        string // service | structured-first
}

type RateLimit struct {
	PerMinute int
	Window    time.Duration
	Buffer    time.Duration
	// AcquireTimeout acota la espera de cada extracción por el limiter
	// (0 = solo el contexto de la request).
	AcquireTimeout time.Duration
}

type HTTP struct {
	FetchTimeout     time.Duration
	UserAgent        string
	MaxBodyBytes     int64
	MaxRetries       int
	MaxRedirects     int
	PerHostRPS       float64
	ProxyURL         string
	BreakerThreshold int
	BreakerCooldown  time.Duration
	RespectRobots    bool // consultar robots.txt antes de descargar fichas
	RobotsTTL        time.Duration
}

type Search struct {
	APIKey       string
	Endpoint     string
	Engine       string
	GoogleDomain string
}

type LLM struct {
	Endpoint        string
	APIKey          string
	Model           string
	Temperature     float64
	MaxContentChars int
	Timeout         time.Duration
}

type Sites struct {
	File     string // YAML con la tabla país -> sitios
	Discover bool   // pedir sitios al LLM cuando el país no está en la tabla
}

type Cache struct {
	Driver   string // sqlite | postgres | none
	DSN      string
	TTL      time.Duration
	Capacity int // entradas en memoria delante del store persistente
}

type Server struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Valores aceptados.
const (
	StrategyService         = "service"
	StrategyStructuredFirst = "structured-first"

	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheNone     = "none"

	OutputTable  = "table"
	OutputJSON   = "json"
	OutputNDJSON = "ndjson"
)

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Core: Core{
			MaxResults: 0,
			Timeout:    2 * time.Minute,
			Output:     OutputTable,
			LogLevel:   "info",
		},
		Pipeline: Pipeline{
			MaxExtractions:  5,
			MinResults:      3,
			MaxConcurrency:  0,
			ProbeTopResults: 5,
			Strategy:        StrategyService,
		},
		RateLimit: RateLimit{
			PerMinute: 10,
			Window:    60 * time.Second,
			Buffer:    1 * time.Second,
		},
		HTTP: HTTP{
			FetchTimeout:     15 * time.Second,
			UserAgent:        "Mozilla/5.0",
			MaxBodyBytes:     5 * 1024 * 1024,
			MaxRetries:       1,
			MaxRedirects:     10,
			PerHostRPS:       2,
			BreakerThreshold: 3,
			BreakerCooldown:  2 * time.Minute,
			RobotsTTL:        30 * time.Minute,
		},
		Search: Search{
			Endpoint:     "https://serpapi.com/search.json",
			Engine:       "google",
			GoogleDomain: "google.com",
		},
		LLM: LLM{
			Endpoint:        "https://api.openai.com/v1/chat/completions",
			Model:           "gpt-4o-mini",
			Temperature:     0,
			MaxContentChars: 8000,
			Timeout:         45 * time.Second,
		},
		Sites: Sites{
			Discover: true,
		},
		Cache: Cache{
			Driver:   CacheSQLite,
			DSN:      "price_comparison.db",
			TTL:      24 * time.Hour,
			Capacity: 32,
		},
		Server: Server{
			Addr:         ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 3 * time.Minute,
		},
	}
}

// FromEnv devuelve los defaults con las variables de entorno aplicadas.
func FromEnv() Config {
	cfg := DefaultConfig()
	loadFromEnv(&cfg)
	return cfg
}

// Load es el camino completo sin cobra: defaults -> ENV -> args -> normalize.
func Load(args []string) (Config, error) {
	cfg := FromEnv()
	fs := pflag.NewFlagSet("pricescout", pflag.ContinueOnError)
	BindFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return cfg, errors.Wrapf(errors.ErrInvalidInput, "flags: %v", err)
	}
	if err := Finalize(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	// Core
	if v := getenv("PRICESCOUT_COUNTRY", ""); v != "" {
		cfg.Core.Country = v
	}
	if v := getenv("PRICESCOUT_MAX_RESULTS", ""); v != "" {
		cfg.Core.MaxResults = parseInt(v, cfg.Core.MaxResults)
	}
	if v := getenv("PRICESCOUT_TIMEOUT", ""); v != "" {
		cfg.Core.Timeout = parseDuration(v, cfg.Core.Timeout)
	}
	if v := getenv("PRICESCOUT_OUTPUT", ""); v != "" {
		cfg.Core.Output = v
	}
	if v := getenv("PRICESCOUT_OUTPUT_DIR", ""); v != "" {
		cfg.Core.OutputDir = v
	}
	if v := getenv("PRICESCOUT_QUIET", ""); v != "" {
		cfg.Core.Quiet = parseBool(v)
	}
	if v := getenv("PRICESCOUT_LOG_LEVEL", ""); v != "" {
		cfg.Core.LogLevel = v
	}

	// Pipeline
	if v := getenv("PRICESCOUT_MAX_EXTRACTIONS", ""); v != "" {
		cfg.Pipeline.MaxExtractions = parseInt(v, cfg.Pipeline.MaxExtractions)
	}
	if v := getenv("PRICESCOUT_MIN_RESULTS", ""); v != "" {
		cfg.Pipeline.MinResults = parseInt(v, cfg.Pipeline.MinResults)
	}
	if v := getenv("PRICESCOUT_MAX_CONCURRENCY", ""); v != "" {
		cfg.Pipeline.MaxConcurrency = parseInt(v, cfg.Pipeline.MaxConcurrency)
	}
	if v := getenv("PRICESCOUT_PROBE_TOP_RESULTS", ""); v != "" {
		cfg.Pipeline.ProbeTopResults = parseInt(v, cfg.Pipeline.ProbeTopResults)
	}
	if v := getenv("PRICESCOUT_STRATEGY", ""); v != "" {
		cfg.Pipeline.Strategy = v
	}

	// Rate limit
	if v := getenv("PRICESCOUT_RATE_PER_MINUTE", ""); v != "" {
		cfg.RateLimit.PerMinute = parseInt(v, cfg.RateLimit.PerMinute)
	}
	if v := getenv("PRICESCOUT_RATE_WINDOW", ""); v != "" {
		cfg.RateLimit.Window = parseDuration(v, cfg.RateLimit.Window)
	}
	if v := getenv("PRICESCOUT_RATE_BUFFER", ""); v != "" {
		cfg.RateLimit.Buffer = parseDuration(v, cfg.RateLimit.Buffer)
	}
	if v := getenv("PRICESCOUT_RATE_ACQUIRE_TIMEOUT", ""); v != "" {
		cfg.RateLimit.AcquireTimeout = parseDuration(v, cfg.RateLimit.AcquireTimeout)
	}

	// HTTP
	if v := getenv("PRICESCOUT_FETCH_TIMEOUT", ""); v != "" {
		cfg.HTTP.FetchTimeout = parseDuration(v, cfg.HTTP.FetchTimeout)
	}
	if v := getenv("PRICESCOUT_USER_AGENT", ""); v != "" {
		cfg.HTTP.UserAgent = v
	}
	if v := getenv("PRICESCOUT_MAX_BODY_BYTES", ""); v != "" {
		cfg.HTTP.MaxBodyBytes = int64(parseInt(v, int(cfg.HTTP.MaxBodyBytes)))
	}
	if v := getenv("PRICESCOUT_HTTP_RETRIES", ""); v != "" {
		cfg.HTTP.MaxRetries = parseInt(v, cfg.HTTP.MaxRetries)
	}
	if v := getenv("PRICESCOUT_PER_HOST_RPS", ""); v != "" {
		cfg.HTTP.PerHostRPS = parseFloat(v, cfg.HTTP.PerHostRPS)
	}
	if v := getenv("PRICESCOUT_PROXY_URL", ""); v != "" {
		cfg.HTTP.ProxyURL = v
	}
	if v := getenv("PRICESCOUT_BREAKER_THRESHOLD", ""); v != "" {
		cfg.HTTP.BreakerThreshold = parseInt(v, cfg.HTTP.BreakerThreshold)
	}
	if v := getenv("PRICESCOUT_RESPECT_ROBOTS", ""); v != "" {
		cfg.HTTP.RespectRobots = parseBool(v)
	}

	// Search: la variable histórica SERPAPI_API_KEY también vale.
	cfg.Search.APIKey = getenv("PRICESCOUT_SERPAPI_KEY", getenv("SERPAPI_API_KEY", cfg.Search.APIKey))
	if v := getenv("PRICESCOUT_SERPAPI_ENDPOINT", ""); v != "" {
		cfg.Search.Endpoint = v
	}
	if v := getenv("PRICESCOUT_GOOGLE_DOMAIN", ""); v != "" {
		cfg.Search.GoogleDomain = v
	}

	// LLM
	cfg.LLM.APIKey = getenv("PRICESCOUT_LLM_API_KEY", getenv("OPENAI_API_KEY", cfg.LLM.APIKey))
	if v := getenv("PRICESCOUT_LLM_ENDPOINT", ""); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := getenv("PRICESCOUT_LLM_MODEL", ""); v != "" {
		cfg.LLM.Model = v
	}
	if v := getenv("PRICESCOUT_LLM_TEMPERATURE", ""); v != "" {
		cfg.LLM.Temperature = parseFloat(v, cfg.LLM.Temperature)
	}
	if v := getenv("PRICESCOUT_LLM_MAX_CONTENT", ""); v != "" {
		cfg.LLM.MaxContentChars = parseInt(v, cfg.LLM.MaxContentChars)
	}

	// Sites
	if v := getenv("PRICESCOUT_SITES_FILE", ""); v != "" {
		cfg.Sites.File = v
	}
	if v := getenv("PRICESCOUT_SITES_DISCOVER", ""); v != "" {
		cfg.Sites.Discover = parseBool(v)
	}

	// Cache
	if v := getenv("PRICESCOUT_CACHE_DRIVER", ""); v != "" {
		cfg.Cache.Driver = v
	}
	if v := getenv("PRICESCOUT_CACHE_DSN", ""); v != "" {
		cfg.Cache.DSN = v
	}
	if v := getenv("PRICESCOUT_CACHE_TTL", ""); v != "" {
		cfg.Cache.TTL = parseDuration(v, cfg.Cache.TTL)
	}

	// Server
	if v := getenv("PRICESCOUT_ADDR", ""); v != "" {
		cfg.Server.Addr = v
	}

	if v := getenv("PRICESCOUT_POLICY_FILE", ""); v != "" {
		cfg.PolicyFile = v
	}
}

// BindFlags registra los flags sobre fs. Los valores actuales de cfg (ya con
// ENV aplicado) son los defaults mostrados, así los flags pisan al entorno.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Core.Country, "country", "c", cfg.Core.Country, "Country code (US, IN, GB, CA, AU, DE)")
	fs.IntVarP(&cfg.Core.MaxResults, "max-results", "n", cfg.Core.MaxResults, "Maximum offers to return, 0 = all")
	fs.DurationVarP(&cfg.Core.Timeout, "timeout", "T", cfg.Core.Timeout, "Deadline for a whole search, 0 = none")
	fs.StringVarP(&cfg.Core.Output, "output", "o", cfg.Core.Output, "Output format: table | json | ndjson")
	fs.StringVar(&cfg.Core.OutputDir, "output-dir", cfg.Core.OutputDir, "Also save the JSON response under this directory")
	fs.BoolVarP(&cfg.Core.Quiet, "quiet", "q", cfg.Core.Quiet, "Disable progress output")
	fs.StringVar(&cfg.Core.LogLevel, "log-level", cfg.Core.LogLevel, "Log level: debug | info | warn | error")

	fs.IntVar(&cfg.Pipeline.MaxExtractions, "max-extractions", cfg.Pipeline.MaxExtractions, "Extraction cap for the first batch")
	fs.IntVar(&cfg.Pipeline.MinResults, "min-results", cfg.Pipeline.MinResults, "Valid results below which one backfill batch runs")
	fs.IntVar(&cfg.Pipeline.MaxConcurrency, "concurrency", cfg.Pipeline.MaxConcurrency, "Max concurrent units per stage, 0 = unbounded")
	fs.IntVar(&cfg.Pipeline.ProbeTopResults, "probe-top", cfg.Pipeline.ProbeTopResults, "Organic results inspected per site")
	fs.StringVar(&cfg.Pipeline.Strategy, "strategy", cfg.Pipeline.Strategy, "Extraction strategy: service | structured-first")

	fs.IntVar(&cfg.RateLimit.PerMinute, "rate", cfg.RateLimit.PerMinute, "Extraction calls admitted per window")
	fs.DurationVar(&cfg.RateLimit.Window, "rate-window", cfg.RateLimit.Window, "Sliding window for extraction calls")
	fs.DurationVar(&cfg.RateLimit.AcquireTimeout, "rate-acquire-timeout", cfg.RateLimit.AcquireTimeout, "Give up an extraction after waiting this long for the limiter, 0 = never")

	fs.DurationVar(&cfg.HTTP.FetchTimeout, "fetch-timeout", cfg.HTTP.FetchTimeout, "Timeout for each product page fetch")
	fs.StringVar(&cfg.HTTP.UserAgent, "user-agent", cfg.HTTP.UserAgent, "User-Agent for outbound requests")
	fs.Float64Var(&cfg.HTTP.PerHostRPS, "per-host-rps", cfg.HTTP.PerHostRPS, "Requests per second per retail host, 0 = unlimited")
	fs.StringVarP(&cfg.HTTP.ProxyURL, "proxy", "p", cfg.HTTP.ProxyURL, "HTTP(S) proxy URL for outbound requests")
	fs.BoolVar(&cfg.HTTP.RespectRobots, "respect-robots", cfg.HTTP.RespectRobots, "Skip product pages disallowed by robots.txt")

	fs.StringVar(&cfg.Search.GoogleDomain, "google-domain", cfg.Search.GoogleDomain, "Google domain used by the search API")
	fs.StringVar(&cfg.LLM.Model, "llm-model", cfg.LLM.Model, "Chat completion model")
	fs.StringVar(&cfg.LLM.Endpoint, "llm-endpoint", cfg.LLM.Endpoint, "OpenAI-compatible chat completions endpoint")

	fs.StringVar(&cfg.Sites.File, "sites", cfg.Sites.File, "YAML file with the per-country site table")
	fs.BoolVar(&cfg.Sites.Discover, "discover-sites", cfg.Sites.Discover, "Ask the LLM for sites when a country has none")

	fs.StringVar(&cfg.Cache.Driver, "cache", cfg.Cache.Driver, "Site cache driver: sqlite | postgres | none")
	fs.StringVar(&cfg.Cache.DSN, "cache-dsn", cfg.Cache.DSN, "Site cache DSN (sqlite file or postgres URL)")
	fs.DurationVar(&cfg.Cache.TTL, "cache-ttl", cfg.Cache.TTL, "Site cache expiry")

	fs.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "Listen address for serve")
	fs.StringVar(&cfg.PolicyFile, "policy", cfg.PolicyFile, "YAML file overriding validation tables")
}

// Finalize normaliza y valida; se llama después de parsear flags.
func Finalize(c *Config) error {
	normalize(c)
	return validate(*c)
}

func normalize(c *Config) {
	c.Core.Country = strings.ToUpper(strings.TrimSpace(c.Core.Country))
	c.Core.Query = strings.TrimSpace(c.Core.Query)
	c.Core.Output = strings.ToLower(strings.TrimSpace(c.Core.Output))
	if c.Core.Output == "" {
		c.Core.Output = OutputTable
	}
	if c.Core.Timeout < 0 {
		c.Core.Timeout = 0
	}

	if c.Pipeline.MaxExtractions < 1 {
		c.Pipeline.MaxExtractions = 1
	}
	if c.Pipeline.MinResults < 0 {
		c.Pipeline.MinResults = 0
	}
	if c.Pipeline.MaxConcurrency < 0 {
		c.Pipeline.MaxConcurrency = 0
	}
	if c.Pipeline.ProbeTopResults < 1 {
		c.Pipeline.ProbeTopResults = 1
	}
	c.Pipeline.Strategy = strings.ToLower(strings.TrimSpace(c.Pipeline.Strategy))

	if c.RateLimit.PerMinute < 1 {
		c.RateLimit.PerMinute = 1
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = 60 * time.Second
	}
	if c.RateLimit.Buffer < 0 {
		c.RateLimit.Buffer = 0
	}

	if c.HTTP.FetchTimeout <= 0 {
		c.HTTP.FetchTimeout = 15 * time.Second
	}
	if c.LLM.MaxContentChars <= 0 {
		c.LLM.MaxContentChars = 8000
	}
	c.Cache.Driver = strings.ToLower(strings.TrimSpace(c.Cache.Driver))
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 24 * time.Hour
	}
}

func validate(c Config) error {
	switch c.Pipeline.Strategy {
	case StrategyService, StrategyStructuredFirst:
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown strategy %q", c.Pipeline.Strategy)
	}
	switch c.Cache.Driver {
	case CacheSQLite, CachePostgres, CacheNone:
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown cache driver %q", c.Cache.Driver)
	}
	switch c.Core.Output {
	case OutputTable, OutputJSON, OutputNDJSON:
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown output %q", c.Core.Output)
	}
	if c.Cache.Driver == CachePostgres && strings.TrimSpace(c.Cache.DSN) == "" {
		return errors.Wrap(errors.ErrInvalidInput, "postgres cache requires a DSN")
	}
	return nil
}

// ToJSON serializa la configuración a JSON con los secretos ocultos.
func (c Config) ToJSON() (string, error) {
	c.Search.APIKey = mask(c.Search.APIKey)
	c.LLM.APIKey = mask(c.LLM.APIKey)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// parseDuration acepta "90s", "2m" o segundos a secas ("15").
func parseDuration(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
