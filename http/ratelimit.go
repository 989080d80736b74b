package http

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-host request rate limiting using a token bucket.
// It only spaces requests out; it never retries or backs off on errors.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines rate limiting behavior.
type RateLimiterConfig struct {
	// RequestsPerSecond is the sustained rate per host (0 = unlimited).
	RequestsPerSecond float64
	// Burst is the bucket size. Values below 1 are treated as 1.
	Burst int
	// CustomRates maps host names to RPS values.
	CustomRates map[string]float64
}

// DefaultRateLimiterConfig returns a polite default for a small catalog API.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             2,
		CustomRates:       make(map[string]float64),
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.CustomRates == nil {
		cfg.CustomRates = make(map[string]float64)
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait blocks until the limiter for the URL's host admits a request.
// Returns the context error if ctx ends first, or an error wrapping
// context.DeadlineExceeded if the deadline would pass before a token frees up.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}

	limiter := rl.getLimiter(urlStr)
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// The deadline falls before the next token; rate gives up early.
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return nil
}

// getLimiter returns the limiter for a URL's host, creating one if necessary.
// A nil limiter means the host is unlimited.
func (rl *RateLimiter) getLimiter(urlStr string) *rate.Limiter {
	host := extractHost(urlStr)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rps := rl.rpsFor(host)
	if rps <= 0 {
		return nil
	}

	if limiter, ok := rl.limiters[host]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rps), rl.config.Burst)
	rl.limiters[host] = limiter
	return limiter
}

// rpsFor must be called with mu held.
func (rl *RateLimiter) rpsFor(host string) float64 {
	if rps, ok := rl.config.CustomRates[host]; ok {
		return rps
	}
	return rl.config.RequestsPerSecond
}

// SetCustomRate sets a custom rate limit for a specific host.
func (rl *RateLimiter) SetCustomRate(host string, rps float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.config.CustomRates[host] = rps
	delete(rl.limiters, host)
}

// Stats returns the configured rate for every host seen so far.
func (rl *RateLimiter) Stats() map[string]float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := make(map[string]float64, len(rl.limiters))
	for host := range rl.limiters {
		stats[host] = rl.rpsFor(host)
	}
	return stats
}

// extractHost returns the host of a URL without its port.
func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
