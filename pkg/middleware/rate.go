// Package middleware provides the HTTP middleware chain for the shop:
// request IDs come from pkg/reqid; auth, logging, recovery, CORS and IP rate
// limiting live here.
package middleware

import (
	"net/http"
	"sync"
	"time"
)

// limiter counts requests per client IP over a fixed window. Each RateLimit
// middleware owns its own limiter, so different route groups can carry
// different budgets.
type limiter struct {
	max    int
	window time.Duration

	mu        sync.Mutex
	counts    map[string]*window
	nextSweep time.Time
}

// window is one client's count inside the current time window.
type window struct {
	n       int
	resetAt time.Time
}

func newLimiter(max int, w time.Duration) *limiter {
	return &limiter{
		max:       max,
		window:    w,
		counts:    map[string]*window{},
		nextSweep: time.Now().Add(w),
	}
}

func (l *limiter) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Expired windows are swept inline, at most once per window length.
	if now.After(l.nextSweep) {
		for key, w := range l.counts {
			if now.After(w.resetAt) {
				delete(l.counts, key)
			}
		}
		l.nextSweep = now.Add(l.window)
	}

	w, ok := l.counts[ip]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.counts[ip] = w
	}

	w.n++
	return w.n <= l.max
}

// clientIP prefers the proxy-reported address over the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

// RateLimit returns a middleware limiting each client IP to max requests per
// window. Example: middleware.RateLimit(30, time.Minute) on the credential
// endpoints.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(max, window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				http.Error(w, `{"status":429,"message":"Too Many Requests"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
