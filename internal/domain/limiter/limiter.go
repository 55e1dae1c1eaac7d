// Package limiter defines the rate limiting contract used by the
// entitlement checks. Implementations live in infrastructure/ratelimit.
package limiter

import (
	"context"
	"time"
)

// Limiter bounds how often a key may be used within a fixed window.
type Limiter interface {
	// Allow records one attempt for key and reports whether it is within limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Key joins a principal and an action class into a limiter key.
func Key(principal, action string) string {
	return principal + ":" + action
}
