// Package pages holds the site's page components. Markup lives in the .templ
// files next to this one; run `templ generate` after editing them.
package pages

import (
	"context"
	"strconv"
	"strings"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/templui/spacetraveling/internal/ctxkeys"
	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/ui"
)

// FragmentPosts names the listing entries inside Home, for rendering them
// without the page around them.
const FragmentPosts = "posts"

// ListingView is the data of the listing page. An empty LoadMoreURL hides the
// load more control.
type ListingView struct {
	Posts       []model.Post
	LoadMoreURL string
}

type PostView struct {
	Post        model.Post
	ReadingTime int
}

var loadMoreClass = twmerge.Merge("text-lg font-semibold text-amber-400 hover:text-amber-300", "disabled:opacity-50")

// site holds the per-request settings every page needs.
type site struct {
	appName string
	appURL  string
	tagline string
	locale  string
}

func siteFrom(ctx context.Context) site {
	s := site{appName: "spacetraveling", locale: "pt-BR"}
	if cfg := ctxkeys.Config(ctx); cfg != nil {
		s.appName = cfg.AppName
		s.appURL = strings.TrimSuffix(cfg.AppURL, "/")
		s.tagline = cfg.AppTagline
		if cfg.DateLocale != "" {
			s.locale = cfg.DateLocale
		}
	}
	return s
}

type head struct {
	Lang        string
	Title       string
	Description string
	Canonical   string
	AppName     string
}

func newHead(ctx context.Context, title, description string) head {
	s := siteFrom(ctx)
	h := head{
		Lang:        ui.Locale(s.locale).String(),
		Title:       s.appName,
		Description: description,
		AppName:     s.appName,
	}
	if title != "" {
		h.Title = title + " | " + s.appName
	}
	if h.Description == "" {
		h.Description = s.tagline
	}
	if path := ctxkeys.URLPath(ctx); path != "" && s.appURL != "" {
		h.Canonical = s.appURL + path
	}
	return h
}

func labels(ctx context.Context) ui.Labels {
	return ui.LabelsFor(siteFrom(ctx).locale)
}

func formatDate(ctx context.Context, t *time.Time) string {
	return ui.FormatDate(siteFrom(ctx).locale, t)
}

func bannerAlt(b *model.Banner) string {
	if b.Alt != "" {
		return b.Alt
	}
	return "Post banner"
}

func readingTime(minutes int) string {
	return strconv.Itoa(minutes) + " min"
}
