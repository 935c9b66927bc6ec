package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/templui/spacetraveling/internal/ctxkeys"
)

// scriptCDN serves HTMX, the only script the pages load besides their own.
const scriptCDN = "https://unpkg.com"

// SecurityHeaders sets CSP and the usual hardening headers. Images may also
// come from the configured IMAGE_CDN, read from the ctx config. Each request
// gets a fresh script nonce; components read it with templ.GetNonce.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		imgSrc := "img-src 'self' data:"
		if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.ImageCDN != "" {
			imgSrc += " " + cfg.ImageCDN
		}

		scriptSrc := "script-src 'self' " + scriptCDN
		if nonce, err := newNonce(); err == nil {
			scriptSrc += " 'nonce-" + nonce + "'"
			r = r.WithContext(templ.WithNonce(r.Context(), nonce))
		}

		h := w.Header()
		h.Set("Content-Security-Policy", strings.Join([]string{
			"default-src 'self'",
			scriptSrc,
			"style-src 'self' 'unsafe-inline'",
			imgSrc,
			"connect-src 'self'",
			"base-uri 'self'",
			"form-action 'self'",
			"frame-ancestors 'none'",
		}, "; "))
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		next.ServeHTTP(w, r)
	})
}

// newNonce returns 16 random bytes, base64 encoded. Without a nonce inline
// scripts are blocked but the page still renders.
func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
