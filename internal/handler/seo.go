package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/spacetraveling/internal/service"
)

type SEOHandler struct {
	sitemapService *service.SitemapService
	feedService    *service.FeedService
	baseURL        string
}

func NewSEOHandler(sitemapService *service.SitemapService, feedService *service.FeedService, baseURL string) *SEOHandler {
	return &SEOHandler{
		sitemapService: sitemapService,
		feedService:    feedService,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
	}
}

func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(service.RobotsTxt(h.baseURL))
}

func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	sitemap, err := h.sitemapService.GenerateSitemap(r.Context())
	if err != nil {
		slog.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(sitemap)
}

func (h *SEOHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.feedService.GenerateFeed(r.Context())
	if err != nil {
		slog.Error("failed to generate feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write(feed)
}
