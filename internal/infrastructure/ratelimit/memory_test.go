package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter() (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(0)
	l.now = clock.Now
	return l, clock
}

func TestMemoryLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then denies", func(t *testing.T) {
		l, _ := newTestLimiter()
		for i := 0; i < 30; i++ {
			ok, err := l.Allow(ctx, "user-1:generate_design", 30, time.Hour)
			require.NoError(t, err)
			assert.True(t, ok, "attempt %d", i+1)
		}
		ok, err := l.Allow(ctx, "user-1:generate_design", 30, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		l, _ := newTestLimiter()
		ok, _ := l.Allow(ctx, "a", 1, time.Hour)
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "a", 1, time.Hour)
		assert.False(t, ok)
		ok, _ = l.Allow(ctx, "b", 1, time.Hour)
		assert.True(t, ok)
	})

	t.Run("window resets after expiry", func(t *testing.T) {
		l, clock := newTestLimiter()
		ok, _ := l.Allow(ctx, "a", 1, time.Hour)
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "a", 1, time.Hour)
		assert.False(t, ok)

		clock.Advance(time.Hour + time.Second)
		ok, _ = l.Allow(ctx, "a", 1, time.Hour)
		assert.True(t, ok)
	})

	t.Run("concurrent callers never exceed the limit", func(t *testing.T) {
		l, _ := newTestLimiter()
		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := l.Allow(ctx, "shared", 10, time.Hour); ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 10, allowed)
	})
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter()
	_, _ = l.Allow(context.Background(), "a", 5, time.Minute)
	_, _ = l.Allow(context.Background(), "b", 5, time.Hour)

	clock.Advance(2 * time.Minute)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.windows, "a")
	assert.Contains(t, l.windows, "b")
}

func TestMemoryLimiter_CloseIsIdempotent(t *testing.T) {
	l := NewMemoryLimiter(time.Millisecond)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
