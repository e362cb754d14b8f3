// internal/adapters/sites/selector.go
package sites

import (
	"context"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/cache"
	"pricescout/internal/platform/logx"
)

// Discoverer finds sites for a country on demand (the LLM adapter).
type Discoverer interface {
	Discover(ctx context.Context, country domain.CountryCode) ([]domain.CandidateSite, error)
}

// Options configures a Selector.
type Options struct {
	// Store persists lists across processes. Nil disables it.
	Store ports.SiteCache

	// Discoverer is consulted on a store miss. Nil disables discovery.
	Discoverer Discoverer

	// MemoryCapacity and TTL size the in-process cache.
	MemoryCapacity int
	TTL            time.Duration
}

// Selector implements ports.SiteSelector. Lookup order: memory, persistent
// store, discovery, static table. Discovered lists are written back to the
// store; the static table is neither persisted nor memoized.
type Selector struct {
	table  Table
	opts   Options
	memory *cache.MemoryCache[[]domain.CandidateSite]
	logger logx.Logger
}

// NewSelector creates a Selector over table.
func NewSelector(table Table, opts Options, logger logx.Logger) *Selector {
	if logger == nil {
		logger = logx.Nop()
	}
	if table == nil {
		table = DefaultTable()
	}
	if opts.MemoryCapacity <= 0 {
		opts.MemoryCapacity = 32
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Selector{
		table:  table,
		opts:   opts,
		memory: cache.NewMemoryCache[[]domain.CandidateSite](opts.MemoryCapacity),
		logger: logger.With("component", "sites"),
	}
}

// Select returns the sites to search for country. Store and discovery
// failures are logged and skipped, so Select only fails on a cancelled
// context.
func (s *Selector) Select(ctx context.Context, country domain.CountryCode) ([]domain.CandidateSite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := country.String()

	if list, ok := s.memory.Get(key); ok {
		s.logger.Debug("site list from memory", "country", key, "sites", len(list))
		return clone(list), nil
	}

	if s.opts.Store != nil {
		list, ok, err := s.opts.Store.Get(ctx, country)
		switch {
		case err != nil:
			s.logger.Warn("site store lookup failed", "country", key, "error", err.Error())
		case ok && len(list) > 0:
			s.logger.Debug("site list from store", "country", key, "sites", len(list))
			s.memory.Set(key, list, s.opts.TTL)
			return clone(list), nil
		}
	}

	if list := s.discover(ctx, country); len(list) > 0 {
		if s.opts.Store != nil {
			if err := s.opts.Store.Put(ctx, country, list); err != nil {
				s.logger.Warn("site store write failed", "country", key, "error", err.Error())
			}
		}
		s.memory.Set(key, list, s.opts.TTL)
		return clone(list), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The table is not memoized, so the next call retries discovery.
	list := s.table.Lookup(country)
	s.logger.Debug("site list from static table", "country", key, "sites", len(list))
	return list, nil
}

func (s *Selector) discover(ctx context.Context, country domain.CountryCode) []domain.CandidateSite {
	if s.opts.Discoverer == nil {
		return nil
	}
	raw, err := s.opts.Discoverer.Discover(ctx, country)
	if err != nil {
		s.logger.Warn("site discovery failed", "country", country.String(), "error", err.Error())
		return nil
	}
	kept, dropped := domain.NormalizeSites(raw)
	if len(dropped) > 0 {
		s.logger.Debug("discovered sites dropped", "country", country.String(), "dropped", dropped)
	}
	s.logger.Info("sites discovered", "country", country.String(), "sites", len(kept))
	return kept
}

func clone(list []domain.CandidateSite) []domain.CandidateSite {
	out := make([]domain.CandidateSite, len(list))
	copy(out, list)
	return out
}
