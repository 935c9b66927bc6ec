package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/logger"
)

const rebuildDebounce = 500 * time.Millisecond

func PreviewCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Build the static export, serve it and rebuild when content changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
			defer flush()
			if cfg.PublishesToS3() {
				return errors.New("preview needs PUBLISH_TARGET=local")
			}
			return runPreview(cmd.Context(), cfg, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8091, "port to serve the export on")
	return cmd
}

func runPreview(ctx context.Context, cfg *config.Config, port int) error {
	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		err := runBuild(ctx, cfg)
		if err != nil {
			slog.Error("rebuild failed", "error", err)
		}
	}

	if err := runBuild(ctx, cfg); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchTree(watcher, cfg.ContentPath)
	go watchLoop(ctx, watcher, rebuild)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           staticHandler(cfg.OutputDir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	fmt.Printf("==> Serving %s on http://localhost:%d\n", cfg.OutputDir, port)
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// watchTree adds root and every directory below it.
func watchTree(watcher *fsnotify.Watcher, root string) {
	if _, err := os.Stat(root); err != nil {
		slog.Warn("not watching missing directory", "dir", root)
		return
	}
	_ = filepath.WalkDir(root, func(dir string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(dir); err != nil {
				slog.Warn("failed to watch directory", "dir", dir, "error", err)
			}
		}
		return nil
	})
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, rebuild func()) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watchTree(watcher, event.Name)
				}
			}

			slog.Info("change detected", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(rebuildDebounce, rebuild)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// staticHandler serves the export like a static host would: directories map
// to their index.html and unknown paths get 404.html.
func staticHandler(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		name := filepath.Join(root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if strings.HasSuffix(r.URL.Path, "/") {
			name = filepath.Join(name, "index.html")
		}
		if _, err := os.Stat(name); err != nil {
			notFound, readErr := os.ReadFile(filepath.Join(root, "404.html"))
			if readErr != nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write(notFound)
			return
		}
		files.ServeHTTP(w, r)
	})
}
