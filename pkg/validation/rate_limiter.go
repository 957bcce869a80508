// pkg/validation/rate_limiter.go
package validation

import "sync"

// RateLimiter is a per-key token bucket driven by simulation time. The
// arena uses it so a controller that sends bad actions every tick does not
// flood the log with identical warnings.
type RateLimiter struct {
	maxTokens int
	window    float64
	keys      map[string]*bucket
	mu        sync.Mutex
}

type bucket struct {
	tokens     int
	lastRefill float64
}

// NewRateLimiter allows maxRequests per key in every window seconds
func NewRateLimiter(maxRequests int, window float64) *RateLimiter {
	return &RateLimiter{
		maxTokens: maxRequests,
		window:    window,
		keys:      make(map[string]*bucket),
	}
}

// Allow consumes a token for key at simulation time now
func (rl *RateLimiter) Allow(key string, now float64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.keys[key]
	if !ok {
		b = &bucket{tokens: rl.maxTokens, lastRefill: now}
		rl.keys[key] = b
	}

	if elapsed := now - b.lastRefill; elapsed > 0 && b.tokens < rl.maxTokens {
		refill := int(float64(rl.maxTokens) * elapsed / rl.window)
		if refill > 0 {
			b.tokens += refill
			if b.tokens > rl.maxTokens {
				b.tokens = rl.maxTokens
			}
			b.lastRefill = now
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Forget drops the bucket of key
func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	delete(rl.keys, key)
	rl.mu.Unlock()
}
