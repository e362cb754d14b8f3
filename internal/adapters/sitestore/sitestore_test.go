package sitestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/errors"
	"pricescout/internal/testutil"
)

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Postgres)(nil)
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

var deSites = []domain.CandidateSite{
	{Domain: "amazon.de", BaseURL: "https://www.amazon.de"},
	{Domain: "otto.de", BaseURL: "https://www.otto.de"},
}

func openSQLite(t *testing.T, ttl time.Duration) (*SQLite, *manualClock) {
	t.Helper()
	clock := &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache", "sites.db"), ttl)
	testutil.RequireNoError(t, err, "open sqlite")
	t.Cleanup(func() { _ = s.Close() })
	return s.WithClock(clock.Now), clock
}

// exerciseStore checks the behaviour shared by both backends.
func exerciseStore(t *testing.T, s Store, clock *manualClock, ttl time.Duration) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, domain.CountryDE)
	testutil.RequireNoError(t, err, "get missing")
	testutil.AssertFalse(t, ok, "miss before put")

	testutil.RequireNoError(t, s.Put(ctx, domain.CountryDE, deSites), "put")
	got, ok, err := s.Get(ctx, domain.CountryDE)
	testutil.RequireNoError(t, err, "get")
	testutil.AssertTrue(t, ok, "hit after put")
	if diff := cmp.Diff(deSites, got); diff != "" {
		t.Errorf("sites mismatch (-want +got):\n%s", diff)
	}

	replacement := deSites[1:]
	testutil.RequireNoError(t, s.Put(ctx, domain.CountryDE, replacement), "replace")
	got, _, err = s.Get(ctx, domain.CountryDE)
	testutil.RequireNoError(t, err, "get replaced")
	if diff := cmp.Diff(replacement, got); diff != "" {
		t.Errorf("replaced sites mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(ttl - time.Minute)
	_, ok, _ = s.Get(ctx, domain.CountryDE)
	testutil.AssertTrue(t, ok, "fresh before ttl")

	clock.Advance(2 * time.Minute)
	_, ok, err = s.Get(ctx, domain.CountryDE)
	testutil.RequireNoError(t, err, "get expired")
	testutil.AssertFalse(t, ok, "expired after ttl")

	testutil.RequireNoError(t, s.Put(ctx, domain.CountryAU, nil), "put empty")
	entries, err := s.List(ctx)
	testutil.RequireNoError(t, err, "list")
	testutil.AssertLen(t, entries, 2, "entries, expired included")
	testutil.AssertEqual(t, entries[0].Country, domain.CountryAU, "ordered by country")
	testutil.AssertLen(t, entries[0].Sites, 0, "empty list round-trips")
	testutil.AssertEqual(t, entries[1].Country, domain.CountryDE, "second entry")
}

func TestSQLite(t *testing.T) {
	s, clock := openSQLite(t, 24*time.Hour)
	exerciseStore(t, s, clock, 24*time.Hour)
}

func TestSQLite_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.db")
	ctx := context.Background()

	s, err := OpenSQLite(path, time.Hour)
	testutil.RequireNoError(t, err, "open")
	testutil.RequireNoError(t, s.Put(ctx, domain.CountryDE, deSites), "put")
	testutil.RequireNoError(t, s.Close(), "close")

	s, err = OpenSQLite(path, time.Hour)
	testutil.RequireNoError(t, err, "reopen")
	defer s.Close()

	got, ok, err := s.Get(ctx, domain.CountryDE)
	testutil.RequireNoError(t, err, "get")
	testutil.AssertTrue(t, ok, "survives reopen")
	testutil.AssertLen(t, got, 2, "sites")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "x.db"), 0)
	testutil.RequireNoError(t, err, "sqlite driver")
	testutil.AssertEqual(t, s.(*SQLite).ttl, DefaultTTL, "default ttl")
	_ = s.Close()

	_, err = Open(ctx, "redis", "", time.Hour)
	testutil.AssertTrue(t, errors.IsInvalidInput(err), "unknown driver")

	_, err = Open(ctx, DriverSQLite, "", time.Hour)
	testutil.AssertTrue(t, errors.IsInvalidInput(err), "empty path")

	_, err = Open(ctx, DriverPostgres, "", time.Hour)
	testutil.AssertTrue(t, errors.IsInvalidInput(err), "empty dsn")
}

// TestPostgres runs against a real server when PRICESCOUT_TEST_POSTGRES_DSN
// is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("PRICESCOUT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PRICESCOUT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	p, err := OpenPostgres(ctx, dsn, time.Hour)
	testutil.RequireNoError(t, err, "open postgres")
	t.Cleanup(func() { _ = p.Close() })
	_, err = p.pool.Exec(ctx, "TRUNCATE country_sites")
	testutil.RequireNoError(t, err, "truncate")

	clock := &manualClock{now: time.Now().UTC().Truncate(time.Microsecond)}
	exerciseStore(t, p.WithClock(clock.Now), clock, time.Hour)
}
