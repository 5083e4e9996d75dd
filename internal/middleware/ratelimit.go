package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shibaleo/repomcp/internal/errutil"
	"github.com/shibaleo/repomcp/internal/jsonrpc"
)

// RateLimiter applies per-client token bucket rate limiting, keyed by the
// remote host. In-memory state, each server instance enforces independently.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a rate limiter allowing maxPerSecond requests per
// client host. A limit of 0 disables enforcement.
func NewRateLimiter(maxPerSecond int) *RateLimiter {
	rl := &RateLimiter{
		limit:   rate.Limit(maxPerSecond),
		burst:   maxPerSecond,
		clients: make(map[string]*clientLimiter),
	}
	if maxPerSecond > 0 {
		go rl.cleanup()
	}
	return rl
}

// Allow checks if a request from the given client host is allowed.
func (rl *RateLimiter) Allow(host string) bool {
	if rl.limit == 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[host]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[host] = cl
	}
	cl.lastAccess = time.Now()

	return cl.limiter.Allow()
}

// cleanup removes stale client entries every 60 seconds.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-5 * time.Minute)
		for host, cl := range rl.clients {
			if cl.lastAccess.Before(cutoff) {
				delete(rl.clients, host)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns an HTTP middleware that applies rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !rl.Allow(host) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(jsonrpc.Response{
				JSONRPC: "2.0",
				Error: &jsonrpc.Error{
					Code:    jsonrpc.ErrRateLimited,
					Message: "Too many requests. Please slow down.",
				},
			}); err != nil {
				errutil.Handle(r.Context(), "failed to write rate limit response", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}
