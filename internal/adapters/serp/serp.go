// internal/adapters/serp/serp.go
package serp

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/httpclient"
	"pricescout/internal/platform/logx"
)

const (
	providerName    = "serpapi"
	defaultEndpoint = "https://serpapi.com/search.json"
	defaultEngine   = "google"
	defaultDomain   = "google.com"
)

// ErrMissingAPIKey se devuelve cuando no hay API key configurada.
var ErrMissingAPIKey = errors.New("serpapi: api key not configured")

// Config contiene la configuración del cliente SerpAPI.
type Config struct {
	APIKey       string
	Endpoint     string
	Engine       string
	GoogleDomain string
}

// Client implementa ports.SearchProvider contra la API JSON de SerpAPI.
type Client struct {
	http   *httpclient.Client
	cfg    Config
	logger logx.Logger
}

// organicResult es un resultado orgánico de la respuesta.
type organicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
}

// searchResponse es el subconjunto de la respuesta que usamos.
type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

// New crea un cliente SerpAPI sobre el cliente HTTP compartido.
func New(client *httpclient.Client, cfg Config, logger logx.Logger) *Client {
	if logger == nil {
		logger = logx.Nop()
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Engine == "" {
		cfg.Engine = defaultEngine
	}
	if cfg.GoogleDomain == "" {
		cfg.GoogleDomain = defaultDomain
	}
	return &Client{
		http:   client,
		cfg:    cfg,
		logger: logger.With("component", providerName),
	}
}

// Name retorna el nombre del proveedor.
func (c *Client) Name() string {
	return providerName
}

// Search ejecuta la búsqueda y retorna los resultados orgánicos en orden.
// Los resultados sin link se descartan.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.cfg.APIKey)
	params.Set("engine", c.cfg.Engine)
	params.Set("google_domain", c.cfg.GoogleDomain)

	body, err := c.http.FetchJSON(ctx, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "serpapi search")
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "serpapi: %v", err)
	}
	if resp.Error != "" && len(resp.OrganicResults) == 0 {
		// "Google hasn't returned any results" llega como error con 200
		if strings.Contains(strings.ToLower(resp.Error), "hasn't returned any results") {
			return []domain.SearchHit{}, nil
		}
		return nil, errors.Errorf("serpapi: %s", resp.Error)
	}

	hits := make([]domain.SearchHit, 0, len(resp.OrganicResults))
	for _, r := range resp.OrganicResults {
		if strings.TrimSpace(r.Link) == "" {
			continue
		}
		hits = append(hits, domain.SearchHit{URL: r.Link, Title: r.Title})
	}

	c.logger.Debug("search completed", "query", query, "hits", len(hits))
	return hits, nil
}

// HealthCheck verifica que el proveedor esté configurado. No consume cuota.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
