package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const rateLimiterExpiry = 5 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter applies a token bucket per client IP. Buckets idle for longer than
// rateLimiterExpiry are dropped.
type IPRateLimiter struct {
	limit    rate.Limit
	burst    int
	clock    clockwork.Clock
	mutex    sync.Mutex
	visitors map[string]*visitor
}

func NewIPRateLimiter(ratePerSecond float64, burst int, clock clockwork.Clock) *IPRateLimiter {
	return &IPRateLimiter{
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
		clock:    clock,
		visitors: make(map[string]*visitor),
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.clock.Now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Cleanup drops idle buckets and returns how many were removed
func (l *IPRateLimiter) Cleanup() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.clock.Now()
	removed := 0
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) >= rateLimiterExpiry {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// StartCleanupTimer periodically drops idle buckets until the returned stop function is called.
func (l *IPRateLimiter) StartCleanupTimer(interval time.Duration) func() {
	ticker := l.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				l.Cleanup()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			slog.Warn("⚠️ Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"}); err != nil {
				slog.Error("❌ Failed to encode error response", "error", err)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
