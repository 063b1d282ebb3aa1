package shield

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter provides fixed-window per-IP rate limiting. Rules are static:
// this service exposes a small, fixed endpoint set, so limits are
// configuration rather than data. Expired buckets are garbage collected by
// StartGC.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	buckets     sync.Map
	exclude     []string // path prefixes excluded from rate limiting
}

// NewRateLimiter creates a limiter allowing maxRequests per window per client
// IP. Paths starting with any exclude prefix are never limited.
func NewRateLimiter(maxRequests int, window time.Duration, excludePrefixes ...string) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		exclude:     excludePrefixes,
	}
}

// Middleware enforces the limit and responds 429 with a JSON body when a
// client exceeds it.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range rl.exclude {
			if strings.HasPrefix(r.URL.Path, p) {
				next.ServeHTTP(w, r)
				return
			}
		}

		ip := clientIP(r)
		now := time.Now()

		v, _ := rl.buckets.LoadOrStore(ip, &lockedBucket{})
		lb := v.(*lockedBucket)

		lb.mu.Lock()
		if now.After(lb.b.resetAt) {
			lb.b = bucket{resetAt: now.Add(rl.window)}
		}
		lb.b.count++
		over := lb.b.count > rl.maxRequests
		retryAfter := time.Until(lb.b.resetAt)
		lb.mu.Unlock()

		if over {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter.Round(time.Second).String())
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartGC starts a background goroutine that drops expired buckets every
// 5 minutes. Stops when done is closed.
func (rl *RateLimiter) StartGC(done <-chan struct{}) {
	tick := time.NewTicker(5 * time.Minute)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-tick.C:
				rl.buckets.Range(func(key, value any) bool {
					lb := value.(*lockedBucket)
					lb.mu.Lock()
					expired := now.After(lb.b.resetAt)
					lb.mu.Unlock()
					if expired {
						rl.buckets.Delete(key)
					}
					return true
				})
			}
		}
	}()
}

type lockedBucket struct {
	mu sync.Mutex
	b  bucket
}

func clientIP(r *http.Request) string {
	// Behind a proxy, trust the first X-Forwarded-For entry.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
