package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

// window counts the requests of one client since start.
type window struct {
	start time.Time
	count int
}

// RateLimiter allows limit requests per client in each fixed window.
type RateLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

// NewRateLimiter creates a rate limiter. Expired windows are swept until ctx
// is done.
func NewRateLimiter(ctx context.Context, limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		clients: make(map[string]*window),
	}
	go rl.sweepLoop(ctx)
	return rl
}

// Allow records a request from client. When the budget is spent it returns
// false and how long until the window resets.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[client]
	if !ok || now.Sub(w.start) >= rl.period {
		w = &window{start: now}
		rl.clients[client] = w
	}

	if w.count >= rl.limit {
		return false, w.start.Add(rl.period).Sub(now)
	}
	w.count++
	return true, 0
}

func (rl *RateLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(max(rl.period, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for client, w := range rl.clients {
		if now.Sub(w.start) >= rl.period {
			delete(rl.clients, client)
		}
	}
}

// RateLimit answers 429 once a client exceeds the limiter's budget. Clients
// are told apart by IP; proxy headers count only when the request comes from
// one of the trusted proxies.
func RateLimit(limiter *RateLimiter, trusted []netip.Prefix) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)
			allowed, wait := limiter.Allow(ip)
			if !allowed {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}

// clientIP is the connection's address unless that address is a trusted
// proxy. Then X-Forwarded-For is read right to left and the first hop that is
// not a trusted proxy wins, with X-Real-IP as the fallback.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remote = host
	}
	addr, err := netip.ParseAddr(remote)
	if err != nil || !isTrusted(addr, trusted) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !isTrusted(hop, trusted) {
				return hop.String()
			}
		}
	}
	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.String()
	}
	return remote
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
