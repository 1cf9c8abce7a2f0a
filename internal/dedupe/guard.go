// Package dedupe suppresses reprocessing of redelivered inbound messages
// within a bounded recent window.
package dedupe

import (
	"sync"
	"time"
)

// Guard records message ids it has been shown. Memory is bounded two ways:
// entries older than the window are dropped, and when the capacity is
// reached the oldest entry is evicted.
type Guard struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	order    []string
	capacity int
	window   time.Duration
	now      func() time.Time
}

// NewGuard creates a Guard with the given capacity and window. A zero or
// negative capacity defaults to 10000; a zero or negative window defaults
// to 24h. The clock defaults to time.Now and can be overridden for tests
// with WithClock.
func NewGuard(capacity int, window time.Duration) *Guard {
	if capacity <= 0 {
		capacity = 10000
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Guard{
		seen:     make(map[string]time.Time, capacity),
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
}

// WithClock replaces the guard's clock and returns the guard.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Seen reports whether the id was presented before within the window,
// recording it as a side effect.
func (g *Guard) Seen(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.expire(now)

	if _, ok := g.seen[id]; ok {
		return true
	}

	if len(g.order) >= g.capacity {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.seen, oldest)
	}
	g.order = append(g.order, id)
	g.seen[id] = now
	return false
}

// Len reports how many ids are currently tracked.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// expire drops entries older than the window from the front of the order.
func (g *Guard) expire(now time.Time) {
	for len(g.order) > 0 {
		id := g.order[0]
		at, ok := g.seen[id]
		if ok && now.Sub(at) < g.window {
			return
		}
		g.order = g.order[1:]
		delete(g.seen, id)
	}
}
