package resilience

import (
	"testing"
	"time"

	"pricescout/internal/testutil"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time          { return c.t }
func (c *stepClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute, 1)

	for i := 0; i < 2; i++ {
		testutil.AssertTrue(t, cb.Allow(), "closed allows")
		cb.RecordFailure()
	}
	testutil.AssertEqual(t, cb.State(), StateClosed, "below threshold")

	cb.RecordFailure()
	testutil.AssertEqual(t, cb.State(), StateOpen, "threshold reached")
	testutil.AssertFalse(t, cb.Allow(), "open rejects")
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute, 1)
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	testutil.AssertEqual(t, cb.State(), StateClosed, "failures are consecutive")
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	cb := NewCircuitBreaker(1, 30*time.Second, 1)
	cb.now = clock.Now

	cb.RecordFailure()
	testutil.AssertFalse(t, cb.Allow(), "still cooling down")

	clock.Advance(31 * time.Second)
	testutil.AssertTrue(t, cb.Allow(), "first probe allowed")
	testutil.AssertEqual(t, cb.State(), StateHalfOpen, "half-open")
	testutil.AssertFalse(t, cb.Allow(), "only one probe in flight")

	cb.RecordSuccess()
	testutil.AssertEqual(t, cb.State(), StateClosed, "probe success closes")
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	cb := NewCircuitBreaker(1, time.Second, 1)
	cb.now = clock.Now

	cb.RecordFailure()
	clock.Advance(2 * time.Second)
	testutil.AssertTrue(t, cb.Allow(), "probe")
	cb.RecordFailure()

	testutil.AssertEqual(t, cb.State(), StateOpen, "reopened")
	testutil.AssertFalse(t, cb.Allow(), "cooldown restarted")
}

func TestHostBreakers(t *testing.T) {
	hb := NewHostBreakers(1, time.Minute, 1)

	a := hb.For("Shop.Example")
	testutil.AssertTrue(t, a == hb.For("shop.example"), "same breaker regardless of case")

	a.RecordFailure()
	testutil.AssertFalse(t, hb.For("shop.example").Allow(), "open for failing host")
	testutil.AssertTrue(t, hb.For("other.example").Allow(), "other host unaffected")
	testutil.AssertContains(t, hb.Open(), "shop.example", "open hosts listed")
}

func TestState_String(t *testing.T) {
	testutil.AssertEqual(t, StateClosed.String(), "closed", "closed")
	testutil.AssertEqual(t, StateOpen.String(), "open", "open")
	testutil.AssertEqual(t, StateHalfOpen.String(), "half-open", "half-open")
	testutil.AssertEqual(t, State(9).String(), "unknown", "unknown")
}
