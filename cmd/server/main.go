package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/templui/spacetraveling/internal/app"
	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/logger"
	"github.com/templui/spacetraveling/internal/routes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()

	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	// Warm the snapshots so the first visitors get pre-rendered pages. The
	// server starts right away; a cold page is generated on request.
	go func() {
		count, err := app.Generator.Prerender(ctx)
		if err != nil {
			slog.Warn("prerender failed", "error", err, "posts", count)
			return
		}
		slog.Info("prerender finished", "posts", count)
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(ctx, app),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.CMSTimeout + 20*time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("shutdown complete")
}
