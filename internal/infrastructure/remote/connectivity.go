package remote

import (
	"context"
	"sync"
	"time"
)

// Connectivity answers "is the back office currently reachable". It is
// consulted at the start of each submission attempt.
type Connectivity interface {
	Online(ctx context.Context) bool
	SetForcedOffline(forced bool)
	ForcedOffline() bool
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Monitor probes the back office and caches the answer for a short TTL so a
// burst of checkouts does not turn into a burst of health requests. A forced
// offline override lets operators park the register offline deliberately.
type Monitor struct {
	gateway pinger
	ttl     time.Duration

	mu        sync.Mutex
	lastCheck time.Time
	lastAlive bool
	forced    bool
}

// NewMonitor creates a connectivity monitor over the given gateway
func NewMonitor(gateway pinger, ttl time.Duration) *Monitor {
	return &Monitor{gateway: gateway, ttl: ttl}
}

// Online reports whether the back office is reachable, probing at most once
// per TTL window.
func (m *Monitor) Online(ctx context.Context) bool {
	m.mu.Lock()
	if m.forced {
		m.mu.Unlock()
		return false
	}
	if time.Since(m.lastCheck) < m.ttl {
		alive := m.lastAlive
		m.mu.Unlock()
		return alive
	}
	m.mu.Unlock()

	alive := m.gateway.Ping(ctx) == nil

	m.mu.Lock()
	m.lastCheck = time.Now()
	m.lastAlive = alive
	m.mu.Unlock()

	return alive
}

// SetForcedOffline parks the register offline (or back online). Returning to
// normal operation resets the cached probe so the next check is fresh.
func (m *Monitor) SetForcedOffline(forced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forced = forced
	if !forced {
		m.lastCheck = time.Time{}
	}
}

// ForcedOffline reports whether the override is active.
func (m *Monitor) ForcedOffline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forced
}
