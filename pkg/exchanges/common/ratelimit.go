package common

import (
	"log"
	"strconv"
	"sync"
	"time"
)

// RateLimiter tracks API rate limit usage reported by the exchange.
type RateLimiter struct {
	remaining     int
	limit         int
	lastReset     time.Time
	resetInterval time.Duration
	mu            sync.RWMutex
}

// NewRateLimiter creates a rate limiter for a request budget per window
// (Bybit allows 120 requests per 5s window for most V5 endpoints).
func NewRateLimiter(limit int, resetInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:         limit,
		remaining:     limit,
		resetInterval: resetInterval,
		lastReset:     time.Now(),
	}
}

// UpdateFromHeader updates the remaining budget from the
// X-Bapi-Limit-Status response header.
func (rl *RateLimiter) UpdateFromHeader(headerValue string) {
	if headerValue == "" {
		return
	}
	remaining, err := strconv.Atoi(headerValue)
	if err != nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastReset) >= rl.resetInterval {
		rl.remaining = rl.limit
		rl.lastReset = time.Now()
	}
	rl.remaining = remaining

	used := rl.limit - rl.remaining
	percentage := float64(used) / float64(rl.limit) * 100
	if percentage >= 95 {
		log.Printf("rate limit critical: %d/%d (%.1f%%) - approaching ban threshold", used, rl.limit, percentage)
	} else if percentage >= 80 {
		log.Printf("rate limit warning: %d/%d (%.1f%%)", used, rl.limit, percentage)
	}
}

// GetUsage returns current usage information.
func (rl *RateLimiter) GetUsage() (used int, limit int, percentage float64) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if time.Since(rl.lastReset) >= rl.resetInterval {
		return 0, rl.limit, 0
	}
	used = rl.limit - rl.remaining
	return used, rl.limit, float64(used) / float64(rl.limit) * 100
}

// ShouldDelay reports whether the next request should be deferred.
func (rl *RateLimiter) ShouldDelay() bool {
	_, _, pct := rl.GetUsage()
	return pct >= 90
}
