package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/ctxkeys"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestChain_RunsInOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(ok), mark("first"), mark("second"), mark("third"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSecurityHeaders(t *testing.T) {
	var templNonce string
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		templNonce = templ.GetNonce(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ctxkeys.WithConfig(req.Context(), &config.Config{ImageCDN: "https://images.example.io"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotEmpty(t, templNonce)
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "'nonce-"+templNonce+"'")
	assert.Contains(t, csp, "img-src 'self' data: https://images.example.io;")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	// A second request gets its own nonce. Without a config only local and
	// data: images are allowed.
	first := templNonce
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEqual(t, first, templNonce)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data:;")
}

func TestRequestLogging_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	var seen string
	h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
		w.WriteHeader(http.StatusBadGateway)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/more", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), "request_id="+seen)
	assert.Contains(t, buf.String(), "status=502")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestRequestLogging_KeepsIncomingIDAndSkipsAssets(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	h := RequestLogging(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	buf.Reset()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/output.css", nil))
	assert.Empty(t, buf.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), "quiet paths still get an id")
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	limiter := NewRateLimiter(ctx, 2, time.Minute)
	h := RateLimit(limiter, nil)(ok)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/posts/more", nil)
		req.RemoteAddr = "203.0.113.7:5123"
		last = httptest.NewRecorder()
		h(last, req)
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/posts/more", nil)
	other.RemoteAddr = "198.51.100.1:80"
	rec := httptest.NewRecorder()
	h(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := &RateLimiter{limit: 1, period: time.Minute, now: func() time.Time { return now }, clients: map[string]*window{}}

	allowed, _ := rl.Allow("a")
	assert.True(t, allowed)

	now = now.Add(20 * time.Second)
	allowed, wait := rl.Allow("a")
	assert.False(t, allowed)
	assert.Equal(t, 40*time.Second, wait)

	now = now.Add(40 * time.Second)
	allowed, _ = rl.Allow("a")
	assert.True(t, allowed)

	now = now.Add(2 * time.Minute)
	rl.sweep()
	assert.Empty(t, rl.clients)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:443"
	assert.Equal(t, "10.0.0.1", clientIP(req, nil))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req, nil))
}

func TestClientIP_IgnoresProxyHeadersFromUntrustedPeers(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5000"
	req.Header.Set("X-Forwarded-For", "198.51.100.2")
	req.Header.Set("X-Real-IP", "192.0.2.5")

	assert.Equal(t, "203.0.113.9", clientIP(req, trusted))
	assert.Equal(t, "203.0.113.9", clientIP(req, nil))
}

func TestClientIP_TrustedProxy(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:443"
	req.Header.Set("X-Real-IP", " 192.0.2.5 ")
	assert.Equal(t, "192.0.2.5", clientIP(req, trusted))

	// A client can prepend anything; the hop the proxy appended is used.
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 198.51.100.2, 10.0.0.7")
	assert.Equal(t, "198.51.100.2", clientIP(req, trusted))
}

func TestRateLimit_SpoofedForwardedForSharesBudget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := RateLimit(NewRateLimiter(ctx, 1, time.Minute), nil)(ok)

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/posts/more", nil)
		req.RemoteAddr = "203.0.113.7:5123"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestConfigAndURLPath(t *testing.T) {
	cfg := &config.Config{AppName: "spacetraveling", PrismicAccessToken: "secret"}

	var got *config.Config
	var path string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.Config(r.Context())
		path = ctxkeys.URLPath(r.Context())
	}), Config(cfg), WithURLPath)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/post/como-utilizar-hooks", nil))

	require.NotNil(t, got)
	assert.Equal(t, "spacetraveling", got.AppName)
	assert.Empty(t, got.PrismicAccessToken)
	assert.True(t, strings.HasPrefix(path, "/post/"))
}
