package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

func Render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	err := c.Render(r.Context(), w)
	if err != nil {
		slog.Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// RenderStatus renders c with a non-200 status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := c.Render(r.Context(), w)
	if err != nil {
		slog.Error("render failed", "path", r.URL.Path, "status", status, "error", err)
	}
}

// RenderFragment renders only the templ.Fragment blocks of c named by
// fragmentIDs.
func RenderFragment(w http.ResponseWriter, r *http.Request, c templ.Component, fragmentIDs ...any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	err := templ.RenderFragments(r.Context(), w, c, fragmentIDs...)
	if err != nil {
		slog.Error("render fragment failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// RenderOOB renders c wrapped for an HTMX out-of-band swap. target is an
// hx-swap-oob value such as "innerHTML:#load-more".
func RenderOOB(w http.ResponseWriter, r *http.Request, c templ.Component, target string) {
	err := WriteOOB(r.Context(), w, c, target)
	if err != nil {
		slog.Error("render oob failed", "target", target, "error", err)
	}
}

// WriteOOB writes the out-of-band wrapper and c to w.
func WriteOOB(ctx context.Context, w io.Writer, c templ.Component, target string) error {
	_, err := fmt.Fprintf(w, `<div hx-swap-oob="%s">`, templ.EscapeString(target))
	if err != nil {
		return fmt.Errorf("write wrapper start: %w", err)
	}

	err = c.Render(ctx, w)
	if err != nil {
		return fmt.Errorf("render component: %w", err)
	}

	_, err = io.WriteString(w, `</div>`)
	if err != nil {
		return fmt.Errorf("write wrapper end: %w", err)
	}
	return nil
}
