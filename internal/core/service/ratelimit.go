package service

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterRegistry manages one token bucket per client key.
type RateLimiterRegistry struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiterRegistry creates a registry allowing perSecond requests per
// key with an equal burst.
func NewRateLimiterRegistry(perSecond int) *RateLimiterRegistry {
	return &RateLimiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    perSecond,
	}
}

// Allow reports whether key may make a request now.
func (r *RateLimiterRegistry) Allow(key string) bool {
	return r.GetOrCreate(key).Allow()
}

// GetOrCreate retrieves an existing rate limiter or creates a new one.
func (r *RateLimiterRegistry) GetOrCreate(key string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[key]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := r.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(r.limit, r.burst)
	r.limiters[key] = limiter

	return limiter
}

// Delete removes the rate limiter for key.
func (r *RateLimiterRegistry) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.limiters, key)
}

// Len returns the number of tracked keys.
func (r *RateLimiterRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.limiters)
}
