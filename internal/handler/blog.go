package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/templui/spacetraveling/internal/generate"
	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/pagination"
	"github.com/templui/spacetraveling/internal/prismic"
	"github.com/templui/spacetraveling/internal/service"
	"github.com/templui/spacetraveling/internal/ui"
	"github.com/templui/spacetraveling/internal/ui/pages"
	"github.com/templui/spacetraveling/internal/validation"
)

// loadMoreTarget is the hx-swap-oob value replacing the load more control.
const loadMoreTarget = "innerHTML:#load-more"

type BlogHandler struct {
	generator   *generate.Generator
	postService *service.PostService
}

func NewBlogHandler(generator *generate.Generator, postService *service.PostService) *BlogHandler {
	return &BlogHandler{
		generator:   generator,
		postService: postService,
	}
}

func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	props, err := h.generator.ListingProps(r.Context())
	if err != nil {
		slog.Error("failed to generate listing", "error", err)
		http.Error(w, "Failed to load posts", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Home(pages.ListingView{
		Posts:       props.PostsPagination.Results,
		LoadMoreURL: LoadMoreURL(props.PostsPagination.NextPage),
	}))
}

func (h *BlogHandler) ShowPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if validation.ValidateSlug(slug) != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}

	props, err := h.generator.DetailProps(r.Context(), slug)
	if errors.Is(err, generate.ErrPostNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}
	if err != nil {
		slog.Error("failed to generate post", "slug", slug, "error", err)
		http.Error(w, "Failed to load post", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Post(pages.PostView{
		Post:        props.Post,
		ReadingTime: props.ReadingTime,
	}))
}

// LoadMore answers the load more button: the next page's entries, plus an
// out-of-band swap of the button pointing at the page after it. On failure
// nothing is swapped and the button stays usable.
func (h *BlogHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("page")
	if pageURL == "" {
		http.Error(w, "missing page", http.StatusBadRequest)
		return
	}
	if err := h.postService.ValidatePageURL(pageURL); err != nil {
		slog.Warn("rejected load more url", "page", pageURL, "error", err)
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}

	next, err := pagination.Advance(r.Context(), h.postService, model.PostPagination{NextPage: &pageURL})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, prismic.ErrForeignURL) {
			status = http.StatusBadRequest
		}
		slog.Error("failed to load more posts", "error", err)
		http.Error(w, "Failed to load more posts", status)
		return
	}

	ui.RenderFragment(w, r, pages.Home(pages.ListingView{Posts: next.Results}), pages.FragmentPosts)
	ui.RenderOOB(w, r, pages.LoadMore(LoadMoreURL(next.NextPage)), loadMoreTarget)
}

// LoadMoreURL is the fragment URL for a content API next_page pointer, or ""
// when there are no more pages.
func LoadMoreURL(next *string) string {
	if next == nil || *next == "" {
		return ""
	}
	return "/posts/more?page=" + url.QueryEscape(*next)
}
