// Package generate produces the props the listing and detail pages render
// from. Props are snapshotted and regenerated once their revalidation time has
// passed.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/templui/spacetraveling/internal/logger"
	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/repository"
	"github.com/templui/spacetraveling/internal/service"
)

var ErrPostNotFound = service.ErrPostNotFound

const (
	listingKey = "listing"
	pathsKey   = "paths"
	postsKey   = "posts"
	postPrefix = "post:"
)

type ListingProps struct {
	PostsPagination model.PostPagination `json:"postsPagination"`
}

type PathParams struct {
	Slug string `json:"slug"`
}

type Path struct {
	Params PathParams `json:"params"`
}

// StaticPaths lists the detail pages to pre-render. With Fallback set, slugs
// outside Paths are generated on first request.
type StaticPaths struct {
	Paths    []Path `json:"paths"`
	Fallback bool   `json:"fallback"`
}

type DetailProps struct {
	Post        model.Post `json:"post"`
	ReadingTime int        `json:"readingTime"`
}

// PostSource is the read side of service.PostService.
type PostSource interface {
	FirstPage(ctx context.Context) (model.PostPagination, error)
	Post(ctx context.Context, uid string) (model.Post, error)
	Posts(ctx context.Context) ([]model.Post, error)
}

type Generator struct {
	posts      PostSource
	snapshots  repository.SnapshotRepository
	revalidate time.Duration
	group      singleflight.Group
	now        func() time.Time
	log        *slog.Logger
}

// New returns a Generator. A nil snapshot repository disables caching: every
// call regenerates, which is what a full static build wants.
func New(posts PostSource, snapshots repository.SnapshotRepository, revalidate time.Duration) *Generator {
	return &Generator{
		posts:      posts,
		snapshots:  snapshots,
		revalidate: revalidate,
		now:        time.Now,
		log:        logger.Component("generate"),
	}
}

// ListingProps returns the first page of the listing.
func (g *Generator) ListingProps(ctx context.Context) (*ListingProps, error) {
	var props ListingProps
	err := g.cached(ctx, listingKey, model.SnapshotKindListing, &props, func(ctx context.Context) (any, error) {
		page, err := g.posts.FirstPage(ctx)
		if err != nil {
			return nil, err
		}
		return ListingProps{PostsPagination: page}, nil
	})
	if err != nil {
		return nil, err
	}
	return &props, nil
}

// DetailPaths enumerates the slug of every post.
func (g *Generator) DetailPaths(ctx context.Context) (*StaticPaths, error) {
	var paths StaticPaths
	err := g.cached(ctx, pathsKey, model.SnapshotKindPaths, &paths, func(ctx context.Context) (any, error) {
		posts, err := g.posts.Posts(ctx)
		if err != nil {
			return nil, err
		}
		out := StaticPaths{Paths: make([]Path, 0, len(posts)), Fallback: true}
		for _, p := range posts {
			out.Paths = append(out.Paths, Path{Params: PathParams{Slug: p.UID}})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &paths, nil
}

// Posts returns every post in listing order. The sitemap and feed read
// through it, so they hit the CMS once per revalidation period.
func (g *Generator) Posts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := g.cached(ctx, postsKey, model.SnapshotKindPosts, &posts, func(ctx context.Context) (any, error) {
		return g.posts.Posts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// DetailProps returns a post and its reading time. An unknown slug returns
// ErrPostNotFound and drops any snapshot kept for it.
func (g *Generator) DetailProps(ctx context.Context, slug string) (*DetailProps, error) {
	var props DetailProps
	err := g.cached(ctx, postPrefix+slug, model.SnapshotKindPost, &props, func(ctx context.Context) (any, error) {
		post, err := g.posts.Post(ctx, slug)
		if err != nil {
			return nil, err
		}
		return DetailProps{
			Post:        post,
			ReadingTime: service.ReadingTime(post.Data.Content),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &props, nil
}

// Prerender generates the listing and every detail page ahead of requests. It
// returns the number of detail pages generated.
func (g *Generator) Prerender(ctx context.Context) (int, error) {
	_, err := g.ListingProps(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to generate listing: %w", err)
	}

	paths, err := g.DetailPaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to generate paths: %w", err)
	}

	count := 0
	for _, p := range paths.Paths {
		_, err := g.DetailProps(ctx, p.Params.Slug)
		if errors.Is(err, ErrPostNotFound) {
			continue
		}
		if err != nil {
			return count, fmt.Errorf("failed to generate post %s: %w", p.Params.Slug, err)
		}
		count++
	}
	return count, nil
}

// cached decodes the snapshot stored under key into out, regenerating it
// first when it is missing or expired. Concurrent regenerations of one key
// share a single call. If regeneration fails, an expired snapshot is served.
func (g *Generator) cached(ctx context.Context, key, kind string, out any, generate func(context.Context) (any, error)) error {
	var stale *model.Snapshot
	if g.snapshots != nil {
		snap, err := g.snapshots.ByKey(ctx, key)
		switch {
		case err == nil && snap.Fresh(g.now()):
			return json.Unmarshal([]byte(snap.Payload), out)
		case err == nil:
			stale = snap
		case !errors.Is(err, repository.ErrSnapshotNotFound):
			g.log.Warn("failed to read snapshot", "key", key, "error", err)
		}
	}

	payload, err, _ := g.group.Do(key, func() (any, error) {
		// Shared by every waiter, so it must not die with the first caller.
		genCtx := context.WithoutCancel(ctx)

		props, err := generate(genCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(props)
		if err != nil {
			return nil, fmt.Errorf("failed to encode props: %w", err)
		}
		g.store(genCtx, key, kind, raw)
		return raw, nil
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			g.forget(ctx, key)
			return err
		}
		if stale != nil {
			g.log.Warn("regeneration failed, serving stale snapshot",
				"key", key,
				"generated_at", stale.GeneratedAt,
				"error", err,
			)
			return json.Unmarshal([]byte(stale.Payload), out)
		}
		return err
	}

	return json.Unmarshal(payload.([]byte), out)
}

func (g *Generator) store(ctx context.Context, key, kind string, payload []byte) {
	if g.snapshots == nil {
		return
	}
	now := g.now()
	err := g.snapshots.Upsert(ctx, &model.Snapshot{
		Key:          key,
		Kind:         kind,
		Payload:      string(payload),
		GeneratedAt:  now,
		RevalidateAt: now.Add(g.revalidate),
	})
	if err != nil {
		g.log.Warn("failed to store snapshot", "key", key, "error", err)
		return
	}
	g.log.Debug("snapshot stored", "key", key, "revalidate_at", now.Add(g.revalidate))
}

func (g *Generator) forget(ctx context.Context, key string) {
	if g.snapshots == nil {
		return
	}
	err := g.snapshots.Delete(ctx, key)
	if err != nil {
		g.log.Warn("failed to delete snapshot", "key", key, "error", err)
	}
}
