package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowUpToBurst(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 1, Burst: 3})

	allowed := 0
	for i := 0; i < 10; i++ {
		if lim.Allow() {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)
}

func TestLimiter_RefillUsesClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lim := New(Config{RequestsPerSecond: 2, Burst: 1})
	lim.now = func() time.Time { return now }
	lim.last = now

	require.True(t, lim.Allow())
	require.False(t, lim.Allow())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, lim.Allow(), "one token after half a second at 2 rps")
	assert.False(t, lim.Allow())
}

func TestLimiter_ZeroBurstStillAllowsOne(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 1, Burst: 0})
	assert.True(t, lim.Allow())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 0, Burst: 1})
	require.True(t, lim.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	err := lim.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_SameKeySameLimiter(t *testing.T) {
	mgr := NewManager(Config{RequestsPerSecond: 5, Burst: 5})

	var wg sync.WaitGroup
	got := make([]*Limiter, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = mgr.Limiter("gamma")
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
	assert.NotSame(t, got[0], mgr.Limiter("local"))
}
