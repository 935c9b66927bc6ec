// Package logger configures the process wide slog logger. Records go to
// stdout and, when a DSN is set, errors are also reported to Sentry.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

const sentryFlushTimeout = 2 * time.Second

// Init installs text logs at debug level in development and JSON logs at
// info level otherwise. The returned func flushes pending Sentry events and
// belongs in a defer in main.
func Init(isDev bool, sentryDSN string) (flush func()) {
	return InitWriter(os.Stdout, isDev, sentryDSN)
}

// InitWriter is Init with an explicit destination for the stdout handler.
func InitWriter(w io.Writer, isDev bool, sentryDSN string) (flush func()) {
	handler := consoleHandler(w, isDev)
	flush = func() {}

	if reporter, ok := sentryHandler(sentryDSN, isDev); ok {
		handler = slogmulti.Fanout(handler, reporter)
		flush = func() { sentry.Flush(sentryFlushTimeout) }
	}

	slog.SetDefault(slog.New(handler))
	return flush
}

func consoleHandler(w io.Writer, isDev bool) slog.Handler {
	if isDev {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// sentryHandler forwards error records. A bad DSN only costs the reporting,
// so it is logged to stderr and the console handler carries on alone.
func sentryHandler(dsn string, isDev bool) (slog.Handler, bool) {
	if dsn == "" {
		return nil, false
	}

	env := "production"
	if isDev {
		env = "development"
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Warn("sentry disabled", "error", err)
		return nil, false
	}

	return slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(), true
}

// Component returns a child of the default logger tagged with a component
// name. Call it after Init: the child keeps the handler current at call time.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
