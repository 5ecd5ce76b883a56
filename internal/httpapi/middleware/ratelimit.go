package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter keeps one token bucket per remote IP. Entries idle past ttl
// are dropped on the fly so the map cannot grow without bound.
type ipLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu   sync.Mutex
	m    map[string]*ipEntry
	last time.Time // last sweep
}

type ipEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newIPLimiter(rps rate.Limit, burst int, ttl time.Duration) *ipLimiter {
	return &ipLimiter{
		limit: rps,
		burst: burst,
		ttl:   ttl,
		m:     make(map[string]*ipEntry),
		last:  time.Now(),
	}
}

func (l *ipLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.last) > l.ttl {
		for k, e := range l.m {
			if now.Sub(e.seen) > l.ttl {
				delete(l.m, k)
			}
		}
		l.last = now
	}

	e := l.m[key]
	if e == nil {
		e = &ipEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.m[key] = e
	}
	e.seen = now
	return e.lim.Allow()
}

// RateLimit limits by remote IP. Example: RateLimit(120, 60) => 120
// req/min with burst 60. Non-positive rpm disables the middleware.
func RateLimit(reqPerMin int, burst int) func(http.Handler) http.Handler {
	if reqPerMin <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := newIPLimiter(rate.Limit(float64(reqPerMin)/60.0), burst, 10*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				deny(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// honor X-Forwarded-For if behind a proxy
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
