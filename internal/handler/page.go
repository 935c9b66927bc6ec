package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/spacetraveling/internal/service"
	"github.com/templui/spacetraveling/internal/ui"
	"github.com/templui/spacetraveling/internal/ui/pages"
	"github.com/templui/spacetraveling/internal/validation"
)

type PageHandler struct {
	pageService *service.PageService
}

func NewPageHandler(pageService *service.PageService) *PageHandler {
	return &PageHandler{
		pageService: pageService,
	}
}

func (h *PageHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("page")
	if validation.ValidateSlug(slug) != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}

	page, err := h.pageService.Page(slug)
	if errors.Is(err, service.ErrPageNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}
	if err != nil {
		slog.Error("failed to load page", "slug", slug, "error", err)
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Page(page))
}
