// Package rate provides a sliding-window admission limiter for calls to
// rate-limited upstream services.
package rate

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultWindow is the trailing window over which admissions are counted.
	DefaultWindow = time.Minute
	// DefaultBuffer is added to every computed wait so the oldest admission
	// has safely left the window when the caller wakes up.
	DefaultBuffer = time.Second
)

// Limiter admits at most max calls within any trailing window.
//
// Admission decisions are serialized: a caller holds the single admission
// slot for the whole time it waits, so two callers can never both observe
// the last free position in the window. Acquire never fails for capacity
// reasons; it only returns an error when the context ends first.
type Limiter struct {
	max    int
	window time.Duration
	buffer time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	gate chan struct{} // single admission slot

	mu     sync.Mutex
	stamps []time.Time // admission times, oldest first
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithWindow overrides the trailing window (default one minute).
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithBuffer overrides the extra wait added after the oldest admission expires.
func WithBuffer(d time.Duration) Option {
	return func(l *Limiter) {
		if d >= 0 {
			l.buffer = d
		}
	}
}

// WithClock injects the time source and the sleep function. Tests pass a fake
// clock whose sleep advances time instantly.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// New creates a limiter admitting maxPerWindow calls per window.
// A non-positive maxPerWindow defaults to 1.
//
// Example:
//
//	limiter := rate.New(10) // 10 calls per minute, 1s buffer
func New(maxPerWindow int, opts ...Option) *Limiter {
	if maxPerWindow <= 0 {
		maxPerWindow = 1
	}
	l := &Limiter{
		max:    maxPerWindow,
		window: DefaultWindow,
		buffer: DefaultBuffer,
		now:    time.Now,
		sleep:  sleepCtx,
		gate:   make(chan struct{}, 1),
		stamps: make([]time.Time, 0, maxPerWindow),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire blocks until one more call fits in the window, records it and
// returns how long the caller waited. The only error is ctx.Err().
func (l *Limiter) Acquire(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	select {
	case l.gate <- struct{}{}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	defer func() { <-l.gate }()

	start := l.now()
	slept := false
	for {
		wait, admitted := l.tryAdmit()
		if admitted {
			if !slept {
				return 0, nil
			}
			return l.now().Sub(start), nil
		}
		slept = true
		if err := l.sleep(ctx, wait); err != nil {
			return l.now().Sub(start), err
		}
	}
}

// tryAdmit purges expired stamps and either records an admission or returns
// how long to wait for the oldest stamp to leave the window.
func (l *Limiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.purge(now)
	if len(l.stamps) < l.max {
		l.stamps = append(l.stamps, now)
		return 0, true
	}

	wait := l.window - now.Sub(l.stamps[0]) + l.buffer
	if wait <= 0 {
		// zero buffer and the oldest stamp sits exactly on the window edge
		wait = time.Millisecond
	}
	return wait, false
}

// purge drops stamps strictly older than the window. Must be called with l.mu held.
func (l *Limiter) purge(now time.Time) {
	i := 0
	for i < len(l.stamps) && now.Sub(l.stamps[i]) > l.window {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

// Len returns the number of admissions currently inside the window.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.purge(l.now())
	return len(l.stamps)
}

// Max returns the configured number of admissions per window.
func (l *Limiter) Max() int {
	return l.max
}

// Window returns the configured trailing window.
func (l *Limiter) Window() time.Duration {
	return l.window
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
