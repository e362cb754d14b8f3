// internal/platform/resilience/host_breakers.go
package resilience

import (
	"strings"
	"sync"
	"time"
)

// HostBreakers lazily keeps one CircuitBreaker per host.
type HostBreakers struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker

	threshold   int
	cooldown    time.Duration
	halfOpenMax int
	now         func() time.Time
}

// NewHostBreakers creates a registry whose breakers share the given settings.
func NewHostBreakers(threshold int, cooldown time.Duration, halfOpenMax int) *HostBreakers {
	return &HostBreakers{
		breakers:    make(map[string]*CircuitBreaker),
		threshold:   threshold,
		cooldown:    cooldown,
		halfOpenMax: halfOpenMax,
		now:         time.Now,
	}
}

// WithClock sets the time source of every breaker created afterwards.
func (h *HostBreakers) WithClock(now func() time.Time) *HostBreakers {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
	return h
}

// For returns the breaker for host, creating it on first use.
func (h *HostBreakers) For(host string) *CircuitBreaker {
	host = strings.ToLower(host)

	h.mu.Lock()
	defer h.mu.Unlock()

	cb, ok := h.breakers[host]
	if !ok {
		cb = NewCircuitBreaker(h.threshold, h.cooldown, h.halfOpenMax)
		cb.now = h.now
		h.breakers[host] = cb
	}
	return cb
}

// Open lists hosts whose breaker is currently open.
func (h *HostBreakers) Open() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var hosts []string
	for host, cb := range h.breakers {
		if cb.State() == StateOpen {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
