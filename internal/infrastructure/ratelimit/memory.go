package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/limiter"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a per-process fixed window counter. State is lost on
// restart and is not shared between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryLimiter starts a limiter that sweeps expired windows every
// cleanupEvery. A zero cleanupEvery disables the sweep.
func NewMemoryLimiter(cleanupEvery time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupEvery > 0 {
		go l.cleanup(cleanupEvery)
	}
	return l
}

// Allow never returns an error.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, period time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(period)}
		return true, nil
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

func (l *MemoryLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (l *MemoryLimiter) Close() error {
	l.once.Do(func() { close(l.stop) })
	return nil
}

var _ limiter.Limiter = (*MemoryLimiter)(nil)
