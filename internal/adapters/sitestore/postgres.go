// internal/adapters/sitestore/postgres.go
package sitestore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/errors"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS country_sites (
	country TEXT PRIMARY KEY,
	sites JSONB NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL
)`

// Postgres stores lists in a country_sites table with a JSONB column.
type Postgres struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

// OpenPostgres connects a pool to dsn and creates the table.
func OpenPostgres(ctx context.Context, dsn string, ttl time.Duration) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "postgres dsn is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "create country_sites")
	}
	return &Postgres{pool: pool, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the clock used for expiry. For tests.
func (p *Postgres) WithClock(now func() time.Time) *Postgres {
	p.now = now
	return p
}

// Get returns the stored list; ok is false when missing or expired.
func (p *Postgres) Get(ctx context.Context, country domain.CountryCode) ([]domain.CandidateSite, bool, error) {
	var (
		raw     string
		updated time.Time
	)
	err := p.pool.QueryRow(ctx,
		`SELECT sites::text, last_updated FROM country_sites WHERE country = $1`, country.String(),
	).Scan(&raw, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "query sites for %s", country)
	}
	if !fresh(updated, p.now(), p.ttl) {
		return nil, false, nil
	}

	sites, err := decodeSites(raw)
	if err != nil {
		return nil, false, err
	}
	return sites, true, nil
}

// Put upserts the country's list.
func (p *Postgres) Put(ctx context.Context, country domain.CountryCode, sites []domain.CandidateSite) error {
	raw, err := encodeSites(sites)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO country_sites (country, sites, last_updated)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (country) DO UPDATE SET
			sites = EXCLUDED.sites, last_updated = EXCLUDED.last_updated
	`, country.String(), raw, p.now().UTC())
	if err != nil {
		return errors.Wrapf(err, "store sites for %s", country)
	}
	return nil
}

// List returns every row ordered by country.
func (p *Postgres) List(ctx context.Context) ([]ports.SiteCacheEntry, error) {
	rows, err := p.pool.Query(ctx, `SELECT country, sites::text, last_updated FROM country_sites ORDER BY country`)
	if err != nil {
		return nil, errors.Wrap(err, "list country_sites")
	}
	defer rows.Close()

	var out []ports.SiteCacheEntry
	for rows.Next() {
		var (
			country, raw string
			updated      time.Time
		)
		if err := rows.Scan(&country, &raw, &updated); err != nil {
			return nil, errors.Wrap(err, "scan country_sites")
		}
		sites, err := decodeSites(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.SiteCacheEntry{
			Country:     domain.CountryCode(country),
			Sites:       sites,
			LastUpdated: updated,
		})
	}
	return out, rows.Err()
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
