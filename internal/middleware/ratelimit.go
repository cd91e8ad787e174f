package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"media-fetcher/internal/logging"
	"media-fetcher/internal/metrics"
)

// RateLimitConfig holds configuration for the rate limiting middleware
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate. Zero or negative
	// disables limiting entirely.
	RequestsPerSecond float64
	// Burst is how many requests may arrive at once before the rate applies
	Burst int
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// RateLimit returns a middleware that applies a global token bucket to all
// requests. A single bucket is enough here: every caller shares the same
// download slots anyway, and the limit exists to protect the host rather
// than to arbitrate between clients.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	if config.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				metrics.RateLimitedTotal.Inc()
				logging.Debug("Rate limit exceeded: %s %s from %s", r.Method, r.URL.Path, getClientIP(r))

				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
