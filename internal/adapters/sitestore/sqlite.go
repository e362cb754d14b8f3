// internal/adapters/sitestore/sqlite.go
package sitestore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS country_sites (
	country TEXT PRIMARY KEY,
	sites TEXT NOT NULL,
	last_updated TIMESTAMP NOT NULL
)`

// SQLite stores lists in the country_sites table. Timestamps are written as
// RFC 3339 UTC strings.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLite opens or creates the database at path and its table.
func OpenSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "sqlite path is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create store dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create country_sites")
	}
	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the clock used for expiry. For tests.
func (s *SQLite) WithClock(now func() time.Time) *SQLite {
	s.now = now
	return s
}

// Get returns the stored list; ok is false when missing or expired.
func (s *SQLite) Get(ctx context.Context, country domain.CountryCode) ([]domain.CandidateSite, bool, error) {
	var raw, updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT sites, last_updated FROM country_sites WHERE country = ?", country.String(),
	).Scan(&raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "query sites for %s", country)
	}

	ts, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, false, errors.Wrapf(err, "parse last_updated for %s", country)
	}
	if !fresh(ts, s.now(), s.ttl) {
		return nil, false, nil
	}

	sites, err := decodeSites(raw)
	if err != nil {
		return nil, false, err
	}
	return sites, true, nil
}

// Put replaces the country's list.
func (s *SQLite) Put(ctx context.Context, country domain.CountryCode, sites []domain.CandidateSite) error {
	raw, err := encodeSites(sites)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"REPLACE INTO country_sites (country, sites, last_updated) VALUES (?, ?, ?)",
		country.String(), raw, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrapf(err, "store sites for %s", country)
	}
	return nil
}

// List returns every row, expired or not, ordered by country.
func (s *SQLite) List(ctx context.Context) ([]ports.SiteCacheEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT country, sites, last_updated FROM country_sites ORDER BY country")
	if err != nil {
		return nil, errors.Wrap(err, "list country_sites")
	}
	defer rows.Close()

	var out []ports.SiteCacheEntry
	for rows.Next() {
		var country, raw, updated string
		if err := rows.Scan(&country, &raw, &updated); err != nil {
			return nil, errors.Wrap(err, "scan country_sites")
		}
		sites, err := decodeSites(raw)
		if err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, updated)
		if err != nil {
			return nil, errors.Wrapf(err, "parse last_updated for %s", country)
		}
		out = append(out, ports.SiteCacheEntry{
			Country:     domain.CountryCode(country),
			Sites:       sites,
			LastUpdated: ts,
		})
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
