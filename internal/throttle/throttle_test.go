package throttle

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldThrottleAcceptsMaxPlusOne(t *testing.T) {
	th := New(Config{Window: time.Minute, MaxRequests: 10})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 11; i++ {
		now := start.Add(time.Duration(i) * time.Second)
		require.False(t, th.ShouldThrottle("203.0.113.7", now), "call %d should pass", i)
	}

	require.True(t, th.ShouldThrottle("203.0.113.7", start.Add(20*time.Second)), "call 12 should be throttled")
}

func TestShouldThrottleBoundaryForSmallBudgets(t *testing.T) {
	for _, max := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("max=%d", max), func(t *testing.T) {
			th := New(Config{Window: time.Minute, MaxRequests: max})
			now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

			for i := 0; i < max+1; i++ {
				require.False(t, th.ShouldThrottle("client", now))
			}
			require.True(t, th.ShouldThrottle("client", now))
		})
	}
}

func TestShouldThrottleResetsAfterWindow(t *testing.T) {
	th := New(Config{Window: time.Minute, MaxRequests: 2})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.False(t, th.ShouldThrottle("client", start))
	}
	for i := 0; i < 5; i++ {
		require.True(t, th.ShouldThrottle("client", start.Add(30*time.Second)))
	}

	// exactly one window later is still inside the window (strict comparison)
	require.True(t, th.ShouldThrottle("client", start.Add(time.Minute)))

	next := start.Add(time.Minute + time.Millisecond)
	require.False(t, th.ShouldThrottle("client", next))

	entry, ok := th.Lookup("client")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Count)
	assert.Equal(t, next, entry.WindowStart)
}

func TestShouldThrottleDoesNotCountRejectedCalls(t *testing.T) {
	th := New(Config{Window: time.Minute, MaxRequests: 3})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.False(t, th.ShouldThrottle("client", now))
	}
	for i := 0; i < 100; i++ {
		require.True(t, th.ShouldThrottle("client", now))
	}

	entry, ok := th.Lookup("client")
	require.True(t, ok)
	assert.Equal(t, 4, entry.Count)
}

func TestShouldThrottleKeysAreIndependent(t *testing.T) {
	th := New(Config{Window: time.Minute, MaxRequests: 1})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.False(t, th.ShouldThrottle("a", now))
	require.False(t, th.ShouldThrottle("a", now))
	require.True(t, th.ShouldThrottle("a", now))

	before, ok := th.Lookup("b")
	require.False(t, ok)
	assert.Zero(t, before)

	require.False(t, th.ShouldThrottle("b", now))
	entry, ok := th.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Count)

	entryA, _ := th.Lookup("a")
	assert.Equal(t, 2, entryA.Count)
}

func TestShouldThrottleEmptyIDUsesUnknownBucket(t *testing.T) {
	th := New(Config{Window: time.Minute, MaxRequests: 1})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.False(t, th.ShouldThrottle("", now))
	require.False(t, th.ShouldThrottle(UnknownClient, now))
	require.True(t, th.ShouldThrottle("", now))

	entry, ok := th.Lookup(UnknownClient)
	require.True(t, ok)
	assert.Equal(t, 2, entry.Count)
	assert.Equal(t, 1, th.Len())
}

func TestNewAppliesDefaults(t *testing.T) {
	th := New(Config{})
	cfg := th.Config()

	assert.Equal(t, DefaultWindow, cfg.Window)
	assert.Equal(t, DefaultMaxRequests, cfg.MaxRequests)
	assert.Equal(t, 0, cfg.EvictAfterWindows)
	assert.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
}

func TestSweepDisabledKeepsEntries(t *testing.T) {
	th := New(Config{Window: time.Minute, MaxRequests: 1})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	th.ShouldThrottle("a", start)
	th.ShouldThrottle("b", start)

	assert.Equal(t, 0, th.Sweep(start.Add(24*time.Hour)))
	assert.Equal(t, 2, th.Len())
}

func TestSweepDropsStaleEntries(t *testing.T) {
	th := New(Config{Window: time.Minute, MaxRequests: 1, EvictAfterWindows: 2})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	th.ShouldThrottle("stale", start)
	th.ShouldThrottle("fresh", start.Add(2*time.Minute))

	// stale window ended at +1m; +3m01s is more than two windows later
	removed := th.Sweep(start.Add(3*time.Minute + time.Second))
	assert.Equal(t, 1, removed)

	_, ok := th.Lookup("stale")
	assert.False(t, ok)
	_, ok = th.Lookup("fresh")
	assert.True(t, ok)
}

func TestShouldThrottleSweepsLazily(t *testing.T) {
	th := New(Config{
		Window:            time.Minute,
		MaxRequests:       1,
		EvictAfterWindows: 1,
		SweepInterval:     10 * time.Minute,
	})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	th.ShouldThrottle("old", start)
	th.ShouldThrottle("other", start.Add(5*time.Minute))
	require.Equal(t, 2, th.Len(), "sweep interval has not elapsed yet")

	th.ShouldThrottle("trigger", start.Add(11*time.Minute))

	_, ok := th.Lookup("old")
	assert.False(t, ok)
	_, ok = th.Lookup("trigger")
	assert.True(t, ok)
}

func TestShouldThrottleConcurrentCallers(t *testing.T) {
	const max = 50
	th := New(Config{Window: time.Hour, MaxRequests: max})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !th.ShouldThrottle("shared", now) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, max+1, accepted)
}
