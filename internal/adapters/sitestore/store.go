// internal/adapters/sitestore/store.go

// Package sitestore persists per-country site lists (ports.SiteCache) in
// SQLite or PostgreSQL.
package sitestore

import (
	"context"
	"encoding/json"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/errors"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultTTL is how long a stored list stays fresh.
const DefaultTTL = 24 * time.Hour

// Store is a ports.SiteCache that can also list its entries.
type Store interface {
	ports.SiteCache
	ports.SiteCacheLister
}

// Open connects to the store selected by driver.
func Open(ctx context.Context, driver, dsn string, ttl time.Duration) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(dsn, ttl)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn, ttl)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown site store driver %q", driver)
	}
}

func encodeSites(sites []domain.CandidateSite) (string, error) {
	if sites == nil {
		sites = []domain.CandidateSite{}
	}
	b, err := json.Marshal(sites)
	if err != nil {
		return "", errors.Wrap(err, "encode sites")
	}
	return string(b), nil
}

func decodeSites(raw string) ([]domain.CandidateSite, error) {
	var sites []domain.CandidateSite
	if err := json.Unmarshal([]byte(raw), &sites); err != nil {
		return nil, errors.Wrap(err, "decode sites")
	}
	return sites, nil
}

// fresh reports whether an entry written at updated is still within ttl.
func fresh(updated, now time.Time, ttl time.Duration) bool {
	return now.Sub(updated) < ttl
}
