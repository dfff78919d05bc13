package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// withAccess chains API-key authorization and per-client rate limiting in
// front of a handler. With no keys configured the API is open; rate limits
// still apply.
func (s *Server) withAccess(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := r.Header.Get("X-API-Key")

		if len(s.config.APIKeys) > 0 {
			if !s.authorized(client) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "invalid or missing API key",
				})
				return
			}
		}
		if client == "" {
			client = r.RemoteAddr
		}

		if s.limiter != nil && !s.limiter.allow(client) {
			retry := s.limiter.retryAfter(client)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retry.Seconds())+1))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "rate limited, retry later",
			})
			return
		}

		next(w, r)
	}
}

func (s *Server) authorized(key string) bool {
	for _, k := range s.config.APIKeys {
		if key == k {
			return true
		}
	}
	return false
}

// rateLimiter implements a sliding-window request counter per client.
type rateLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	requests map[string][]time.Time
	now      func() time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	if max <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		max:      max,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// allow records the request when the client is under its limit and reports
// whether it was admitted.
func (l *rateLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.prune(client, now)
	if len(valid) >= l.max {
		return false
	}
	l.requests[client] = append(valid, now)
	return true
}

// retryAfter reports how long until the client's oldest request leaves the
// window.
func (l *rateLimiter) retryAfter(client string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.prune(client, now)
	if len(valid) < l.max {
		return 0
	}
	oldest := valid[0]
	return oldest.Add(l.window).Sub(now)
}

// prune drops timestamps outside the window. Caller holds the lock.
func (l *rateLimiter) prune(client string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	var valid []time.Time
	for _, ts := range l.requests[client] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	l.requests[client] = valid
	return valid
}
