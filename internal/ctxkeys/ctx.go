// Package ctxkeys holds the request-scoped values shared between middleware,
// handlers and templates.
package ctxkeys

import (
	"context"

	"github.com/templui/spacetraveling/internal/config"
)

type key int

const (
	urlPathKey key = iota
	configKey
	requestIDKey
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// URLPath is the path of the page being rendered, used for canonical links.
func URLPath(ctx context.Context) string { return value[string](ctx, urlPathKey) }

func WithURLPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, urlPathKey, path)
}

// Config is the sanitized config; it never carries secrets.
func Config(ctx context.Context) *config.Config { return value[*config.Config](ctx, configKey) }

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func RequestID(ctx context.Context) string { return value[string](ctx, requestIDKey) }

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
