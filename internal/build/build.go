// Package build exports the site as static files: the listing, one page per
// post, the load more fragments and the SEO documents.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"path"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/ctxkeys"
	"github.com/templui/spacetraveling/internal/generate"
	"github.com/templui/spacetraveling/internal/logger"
	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/pagination"
	"github.com/templui/spacetraveling/internal/service"
	"github.com/templui/spacetraveling/internal/storage"
	"github.com/templui/spacetraveling/internal/ui"
	"github.com/templui/spacetraveling/internal/ui/pages"
)

const htmlType = "text/html; charset=utf-8"

type Options struct {
	Generator   *generate.Generator
	Posts       pagination.Fetcher
	Pages       *service.PageService
	Sitemap     *service.SitemapService
	Feed        *service.FeedService
	Storage     storage.Storage
	Assets      fs.FS // copied under assets/, may be nil
	Config      *config.Config
	Concurrency int
}

// Result summarizes a finished build.
type Result struct {
	ID        string
	Posts     int
	Fragments int
	Pages     int
	Assets    int
	Pruned    int
	URL       string
	Duration  time.Duration
}

// prunedPrefixes hold one file per post, listing page or markdown page. Files
// under them that the current build did not write are left from removed
// content and get deleted.
var prunedPrefixes = []string{"post/", "posts/more/", "pages/"}

type Builder struct {
	opts Options
	log  *slog.Logger

	mu        sync.Mutex
	published map[string]bool
}

func New(opts Options) *Builder {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Builder{
		opts: opts,
		log:  logger.Component("build"),
	}
}

// FragmentURL is the static counterpart of the /posts/more endpoint. Fragment
// n holds the posts of the n-th listing page.
func FragmentURL(n int) string {
	return "/posts/more/" + strconv.Itoa(n) + ".html"
}

// Build renders every page and publishes it. A post that disappears between
// listing its slug and fetching it is skipped.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{ID: uuid.NewString(), URL: b.opts.Storage.URL("/")}
	b.mu.Lock()
	b.published = map[string]bool{}
	b.mu.Unlock()
	log := b.log.With("build_id", res.ID)
	log.Info("build started")

	if b.opts.Config != nil {
		ctx = ctxkeys.WithConfig(ctx, b.opts.Config.Sanitized())
	}

	listing, err := b.opts.Generator.ListingProps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing: %w", err)
	}

	fragments, err := b.writeListing(ctx, listing.PostsPagination)
	if err != nil {
		return nil, err
	}
	res.Fragments = fragments

	paths, err := b.opts.Generator.DetailPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate paths: %w", err)
	}

	var posts atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for _, p := range paths.Paths {
		slug := p.Params.Slug
		g.Go(func() error {
			props, err := b.opts.Generator.DetailProps(gctx, slug)
			if errors.Is(err, generate.ErrPostNotFound) {
				log.Warn("post vanished during build, skipping", "slug", slug)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to generate post %s: %w", slug, err)
			}
			err = b.render(gctx, path.Join("post", slug, "index.html"), "/post/"+slug, pages.Post(pages.PostView{
				Post:        props.Post,
				ReadingTime: props.ReadingTime,
			}))
			if err != nil {
				return err
			}
			posts.Add(1)
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		return nil, err
	}
	res.Posts = int(posts.Load())

	res.Pages, err = b.writePages(ctx)
	if err != nil {
		return nil, err
	}

	err = b.writeSEO(ctx)
	if err != nil {
		return nil, err
	}

	res.Assets, err = b.writeAssets(ctx)
	if err != nil {
		return nil, err
	}

	res.Pruned, err = b.prune(ctx)
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	log.Info("build finished",
		"posts", res.Posts,
		"fragments", res.Fragments,
		"pages", res.Pages,
		"assets", res.Assets,
		"pruned", res.Pruned,
		"url", res.URL,
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res, nil
}

// writeListing renders index.html and walks the remaining listing pages into
// numbered fragments. It returns the number of fragments written.
func (b *Builder) writeListing(ctx context.Context, first model.PostPagination) (int, error) {
	nextURL := ""
	if first.HasMore() {
		nextURL = FragmentURL(2)
	}
	err := b.render(ctx, "index.html", "/", pages.Home(pages.ListingView{
		Posts:       first.Results,
		LoadMoreURL: nextURL,
	}))
	if err != nil {
		return 0, err
	}

	c := pagination.NewController(b.opts.Posts, first)
	n := 2
	for c.HasMore() {
		loaded := len(c.State().Results)
		state, err := c.LoadMore(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to load listing page %d: %w", n, err)
		}

		nextURL = ""
		if state.HasMore() {
			nextURL = FragmentURL(n + 1)
		}

		var buf bytes.Buffer
		home := pages.Home(pages.ListingView{Posts: state.Results[loaded:]})
		err = templ.RenderFragments(ctx, &buf, home, pages.FragmentPosts)
		if err != nil {
			return 0, fmt.Errorf("failed to render fragment %d: %w", n, err)
		}
		err = ui.WriteOOB(ctx, &buf, pages.LoadMore(nextURL), "innerHTML:#load-more")
		if err != nil {
			return 0, fmt.Errorf("failed to render fragment %d: %w", n, err)
		}
		err = b.save(ctx, FragmentURL(n)[1:], htmlType, &buf)
		if err != nil {
			return 0, err
		}
		n++
	}
	return n - 2, nil
}

func (b *Builder) writePages(ctx context.Context) (int, error) {
	err := b.render(ctx, "404.html", "", pages.NotFound())
	if err != nil {
		return 0, err
	}
	if b.opts.Pages == nil {
		return 0, nil
	}

	list, err := b.opts.Pages.Pages()
	if err != nil {
		return 0, fmt.Errorf("failed to load pages: %w", err)
	}
	for _, p := range list {
		err = b.render(ctx, path.Join("pages", p.Slug, "index.html"), "/pages/"+p.Slug, pages.Page(p))
		if err != nil {
			return 0, err
		}
	}
	return len(list), nil
}

func (b *Builder) writeSEO(ctx context.Context) error {
	if b.opts.Sitemap != nil {
		sitemap, err := b.opts.Sitemap.GenerateSitemap(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate sitemap: %w", err)
		}
		err = b.save(ctx, "sitemap.xml", "application/xml", bytes.NewReader(sitemap))
		if err != nil {
			return err
		}
	}

	if b.opts.Feed != nil {
		feed, err := b.opts.Feed.GenerateFeed(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate feed: %w", err)
		}
		err = b.save(ctx, "feed.xml", "application/rss+xml", bytes.NewReader(feed))
		if err != nil {
			return err
		}
	}

	baseURL := ""
	if b.opts.Config != nil {
		baseURL = b.opts.Config.AppURL
	}
	return b.save(ctx, "robots.txt", "text/plain; charset=utf-8", bytes.NewReader(service.RobotsTxt(baseURL)))
}

func (b *Builder) writeAssets(ctx context.Context) (int, error) {
	if b.opts.Assets == nil {
		return 0, nil
	}

	count := 0
	err := fs.WalkDir(b.opts.Assets, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(b.opts.Assets, name)
		if err != nil {
			return err
		}
		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		count++
		return b.save(ctx, path.Join("assets", name), contentType, bytes.NewReader(data))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy assets: %w", err)
	}
	return count, nil
}

// render writes c to name. urlPath is the page's public path, used for its
// canonical link.
func (b *Builder) render(ctx context.Context, name, urlPath string, c templ.Component) error {
	if urlPath != "" {
		ctx = ctxkeys.WithURLPath(ctx, urlPath)
	}
	var buf bytes.Buffer
	err := c.Render(ctx, &buf)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return b.save(ctx, name, htmlType, &buf)
}

func (b *Builder) save(ctx context.Context, name, contentType string, body io.Reader) error {
	err := b.opts.Storage.Save(ctx, name, contentType, body)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}
	b.mu.Lock()
	b.published[name] = true
	b.mu.Unlock()
	b.log.Debug("published", "path", name)
	return nil
}

// prune deletes files under prunedPrefixes that this build did not publish,
// such as the page of an unpublished post.
func (b *Builder) prune(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, prefix := range prunedPrefixes {
		existing, err := b.opts.Storage.List(ctx, prefix)
		if err != nil {
			return count, fmt.Errorf("failed to list published files: %w", err)
		}
		for _, name := range existing {
			if b.published[name] {
				continue
			}
			err = b.opts.Storage.Delete(ctx, name)
			if err != nil {
				return count, fmt.Errorf("failed to prune %s: %w", name, err)
			}
			b.log.Info("pruned", "path", name)
			count++
		}
	}
	return count, nil
}
