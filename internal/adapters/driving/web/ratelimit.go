package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/policyshield/internal/logger"
)

// idleClientTTL is how long an unused client bucket is kept.
const idleClientTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client IP.
type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// allow reports whether the client may make a request now.
func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleClientTTL {
		for k, b := range l.clients {
			if now.Sub(b.lastSeen) > idleClientTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// rateLimited rejects requests over the client's budget with 429.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		if !s.limiter.allow(client) {
			logger.Warn("rate limit exceeded for %s", client)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the remote host without port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
