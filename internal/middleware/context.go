package middleware

import (
	"net/http"

	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/ctxkeys"
)

// Config puts the sanitized config in the request context, so templates see
// site settings but never tokens or storage credentials.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithConfig(r.Context(), safe)))
		})
	}
}

// WithURLPath records the request path. Pages build their canonical link from it.
func WithURLPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithURLPath(r.Context(), r.URL.Path)))
	})
}
