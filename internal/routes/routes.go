package routes

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/templui/spacetraveling/assets"
	"github.com/templui/spacetraveling/internal/app"
	"github.com/templui/spacetraveling/internal/handler"
	"github.com/templui/spacetraveling/internal/middleware"
)

// SetupRoutes builds the site's handler. ctx bounds background work such as
// the rate limiter's cleanup loop.
func SetupRoutes(ctx context.Context, app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler()
	blog := handler.NewBlogHandler(app.Generator, app.PostService)
	page := handler.NewPageHandler(app.PageService)
	seo := handler.NewSEOHandler(app.SitemapService, app.FeedService, app.Cfg.AppURL)

	mux := http.NewServeMux()

	// Static files
	sub, _ := fs.Sub(assets.AssetsFS, ".")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)
	mux.HandleFunc("GET /feed.xml", seo.Feed)

	// Blog
	mux.HandleFunc("GET /{$}", blog.ListPosts)
	mux.HandleFunc("GET /post/{slug}", blog.ShowPost)

	// Load more hits the content API on every call (rate limited per IP)
	limiter := middleware.NewRateLimiter(ctx, app.Cfg.LoadMoreRateLimit, app.Cfg.LoadMoreRateWindow)
	mux.HandleFunc("GET /posts/more", middleware.RateLimit(limiter, app.Cfg.TrustedProxies)(blog.LoadMore))

	// Markdown pages
	mux.HandleFunc("GET /pages/{page}", page.ShowPage)

	mux.HandleFunc("GET /healthz", home.Health)

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (pages read site settings from ctx)
		middleware.SecurityHeaders, // CSP with a per-request script nonce
		middleware.RequestLogging,
		middleware.WithURLPath,
	)

	return handler
}
