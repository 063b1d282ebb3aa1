// Package shield provides the HTTP hardening middleware for the portal:
// security headers, request body limits, and per-IP rate limiting.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.Stack(shield.Limits{MaxBodyBytes: 64 << 10, MaxRequests: 60, Window: time.Minute}, ctx.Done()) {
//		r.Use(mw)
//	}
package shield

import (
	"net/http"
	"time"
)

// Limits bundles the tunable parameters of the default stack.
type Limits struct {
	MaxBodyBytes int64
	MaxRequests  int
	Window       time.Duration
}

// Stack returns the standard middleware stack, ordered:
// SecurityHeaders → MaxBody → RateLimiter. A non-nil done channel starts the
// limiter's bucket GC and stops it when the channel closes.
func Stack(l Limits, done <-chan struct{}) []func(http.Handler) http.Handler {
	rl := NewRateLimiter(l.MaxRequests, l.Window, "/health", "/metrics")
	if done != nil {
		rl.StartGC(done)
	}
	return []func(http.Handler) http.Handler{
		SecurityHeaders(DefaultHeaders()),
		MaxBody(l.MaxBodyBytes),
		rl.Middleware,
	}
}
