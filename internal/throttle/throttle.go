// Package throttle implements the fixed-window request throttle that guards the
// registration and order submission endpoints.
//
// Each client identifier owns one Entry. The first request opens a window; the
// window is reset by the first request that arrives after it has elapsed. The
// rejection check is count > MaxRequests, so MaxRequests+1 requests are accepted
// per window and the next one is the first to be throttled.
package throttle

import (
	"sync"
	"time"
)

// UnknownClient is the shared bucket for requests without a usable address.
const UnknownClient = "unknown"

const (
	DefaultWindow        = time.Minute
	DefaultMaxRequests   = 10
	DefaultSweepInterval = 5 * time.Minute
)

// Config controls window size, request budget and optional eviction.
type Config struct {
	Window      time.Duration
	MaxRequests int

	// EvictAfterWindows drops entries whose window ended more than this many
	// windows ago. Zero keeps every entry for the lifetime of the process.
	EvictAfterWindows int
	SweepInterval     time.Duration
}

// Entry is the per-client counting state.
type Entry struct {
	Key         string    `json:"key"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}

// Throttle is safe for concurrent use.
type Throttle struct {
	mu        sync.Mutex
	entries   map[string]*Entry
	cfg       Config
	lastSweep time.Time
}

// New creates a throttle, filling unset fields with defaults.
func New(cfg Config) *Throttle {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	if cfg.EvictAfterWindows < 0 {
		cfg.EvictAfterWindows = 0
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Throttle{
		entries: make(map[string]*Entry),
		cfg:     cfg,
	}
}

// Config returns the effective configuration.
func (t *Throttle) Config() Config {
	return t.cfg
}

// ShouldThrottle records a request from clientID at now and reports whether it
// must be rejected. Rejected requests do not advance the counter.
func (t *Throttle) ShouldThrottle(clientID string, now time.Time) bool {
	if clientID == "" {
		clientID = UnknownClient
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeSweep(now)

	entry, ok := t.entries[clientID]
	if !ok {
		t.entries[clientID] = &Entry{Key: clientID, Count: 1, WindowStart: now}
		return false
	}

	if now.Sub(entry.WindowStart) > t.cfg.Window {
		entry.Count = 1
		entry.WindowStart = now
		return false
	}

	if entry.Count > t.cfg.MaxRequests {
		return true
	}

	entry.Count++
	return false
}

// Lookup returns a copy of the entry for clientID.
func (t *Throttle) Lookup(clientID string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[clientID]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Len returns the number of tracked clients.
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep removes entries whose window ended more than EvictAfterWindows windows
// before now and returns how many were dropped. It is a no-op when eviction is
// disabled.
func (t *Throttle) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweepLocked(now)
}

func (t *Throttle) maybeSweep(now time.Time) {
	if t.cfg.EvictAfterWindows == 0 {
		return
	}
	if t.lastSweep.IsZero() {
		t.lastSweep = now
		return
	}
	if now.Sub(t.lastSweep) < t.cfg.SweepInterval {
		return
	}
	t.sweepLocked(now)
}

func (t *Throttle) sweepLocked(now time.Time) int {
	t.lastSweep = now
	if t.cfg.EvictAfterWindows == 0 {
		return 0
	}

	grace := time.Duration(t.cfg.EvictAfterWindows) * t.cfg.Window
	removed := 0
	for key, entry := range t.entries {
		windowEnd := entry.WindowStart.Add(t.cfg.Window)
		if now.Sub(windowEnd) > grace {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}
