package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a fixed-window in-memory rate limiter per client IP.
// The client IP is taken from RemoteAddr, so mount chi's RealIP first when
// running behind a proxy.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	limit    int
	window   time.Duration
	message  string
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	start time.Time
	count int
}

// NewRateLimiter allows limit requests per window for each IP. Rejected
// requests get 429 with message as the JSON error.
func NewRateLimiter(limit int, window time.Duration, message string) *RateLimiter {
	if message == "" {
		message = "Too many requests"
	}
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		message:  message,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.start) >= rl.window {
			delete(rl.visitors, ip)
		}
	}
}

// allow records a hit for ip and reports whether it is within the limit,
// and otherwise how long until the window resets.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.start) >= rl.window {
		v = &visitor{start: now}
		rl.visitors[ip] = v
	}
	v.count++
	if v.count > rl.limit {
		return false, v.start.Add(rl.window).Sub(now)
	}
	return true, 0
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(w, http.StatusTooManyRequests, rl.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
