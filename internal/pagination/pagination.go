// Package pagination walks the post listing by following the content API's
// next_page pointer.
package pagination

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/templui/spacetraveling/internal/logger"
	"github.com/templui/spacetraveling/internal/model"
)

var (
	ErrNoMorePages    = errors.New("no more pages")
	ErrLoadInProgress = errors.New("page load already in progress")
)

// Fetcher loads and normalizes the page behind a next_page URL.
type Fetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*model.PostPagination, error)
}

// Advance fetches the page after state and returns the combined window: the
// loaded results in their original order followed by the new ones. On error the
// returned state is the input, untouched.
func Advance(ctx context.Context, fetcher Fetcher, state model.PostPagination) (model.PostPagination, error) {
	if !state.HasMore() {
		return state, ErrNoMorePages
	}

	page, err := fetcher.FetchPage(ctx, *state.NextPage)
	if err != nil {
		return state, err
	}

	results := make([]model.Post, 0, len(state.Results)+len(page.Results))
	results = append(results, state.Results...)
	results = append(results, page.Results...)

	next := model.PostPagination{Results: results}
	if page.HasMore() {
		url := *page.NextPage
		next.NextPage = &url
	}
	return next, nil
}

// Controller owns one pagination state. Loads are serialized: a LoadMore
// issued while another is pending is rejected.
type Controller struct {
	fetcher Fetcher
	log     *slog.Logger

	mu      sync.Mutex
	state   model.PostPagination
	loading bool
}

func NewController(fetcher Fetcher, initial model.PostPagination) *Controller {
	return &Controller{
		fetcher: fetcher,
		log:     logger.Component("pagination"),
		state:   initial.Clone(),
	}
}

// LoadMore appends the next page to the state and returns a copy of it.
// Failed loads are logged and leave the state as it was.
func (c *Controller) LoadMore(ctx context.Context) (model.PostPagination, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return model.PostPagination{}, ErrLoadInProgress
	}
	c.loading = true
	current := c.state.Clone()
	c.mu.Unlock()

	next, err := Advance(ctx, c.fetcher, current)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		if !errors.Is(err, ErrNoMorePages) {
			c.log.Error("failed to load next page", "results", len(current.Results), "error", err)
		}
		return c.state.Clone(), err
	}

	c.log.Debug("page loaded", "added", len(next.Results)-len(current.Results), "has_more", next.HasMore())
	c.state = next
	return next.Clone(), nil
}

// LoadAll follows next_page until the listing is exhausted.
func (c *Controller) LoadAll(ctx context.Context) (model.PostPagination, error) {
	for c.HasMore() {
		_, err := c.LoadMore(ctx)
		if err != nil {
			return c.State(), err
		}
	}
	return c.State(), nil
}

func (c *Controller) State() model.PostPagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HasMore()
}
