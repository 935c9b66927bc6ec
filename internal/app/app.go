package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/templui/spacetraveling/assets"
	"github.com/templui/spacetraveling/internal/build"
	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/db"
	"github.com/templui/spacetraveling/internal/generate"
	"github.com/templui/spacetraveling/internal/prismic"
	"github.com/templui/spacetraveling/internal/repository"
	"github.com/templui/spacetraveling/internal/service"
	"github.com/templui/spacetraveling/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	PostService    *service.PostService
	PageService    *service.PageService
	SitemapService *service.SitemapService
	FeedService    *service.FeedService
	Snapshots      repository.SnapshotRepository
	Generator      *generate.Generator
}

// New wires the server: content services plus the snapshot database backing
// incremental regeneration.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	a, err := newApp(cfg, repository.NewSnapshotRepository(database))
	if err != nil {
		database.Close()
		return nil, err
	}
	a.DB = database
	return a, nil
}

// NewContent wires the content services without a database. Every generator
// call goes to the content API, which is what a full static build needs.
func NewContent(cfg *config.Config) (*App, error) {
	return newApp(cfg, nil)
}

func newApp(cfg *config.Config, snapshots repository.SnapshotRepository) (*App, error) {
	client, err := prismic.NewClient(prismic.Options{
		Endpoint:    cfg.PrismicEndpoint,
		AccessToken: cfg.PrismicAccessToken,
		Timeout:     cfg.CMSTimeout,
		MaxRetries:  cfg.CMSMaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content client: %v", err)
	}

	// Services
	postService := service.NewPostService(client, cfg.CMSPageSize)
	pageService := service.NewPageService(cfg.ContentPath)
	generator := generate.New(postService, snapshots, cfg.RevalidateInterval)
	sitemapService := service.NewSitemapService(generator, pageService, cfg.AppURL)
	feedService := service.NewFeedService(generator, cfg.AppName, cfg.AppTagline, cfg.DateLocale, cfg.AppURL)

	return &App{
		Cfg:            cfg,
		PostService:    postService,
		PageService:    pageService,
		SitemapService: sitemapService,
		FeedService:    feedService,
		Snapshots:      snapshots,
		Generator:      generator,
	}, nil
}

// Builder returns a static exporter publishing to the configured target.
func (a *App) Builder(ctx context.Context) (*build.Builder, error) {
	target, err := storage.New(ctx, a.Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	return build.New(build.Options{
		Generator:   a.Generator,
		Posts:       a.PostService,
		Pages:       a.PageService,
		Sitemap:     a.SitemapService,
		Feed:        a.FeedService,
		Storage:     target,
		Assets:      assets.AssetsFS,
		Config:      a.Cfg,
		Concurrency: a.Cfg.BuildConcurrency,
	}), nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
