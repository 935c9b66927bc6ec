package service

import (
	"context"
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/templui/spacetraveling/internal/model"
)

// PostLister lists every published post.
type PostLister interface {
	Posts(ctx context.Context) ([]model.Post, error)
}

// publicRoutes are the static routes listed in the sitemap.
var publicRoutes = []struct {
	Path       string
	Priority   string
	ChangeFreq string
}{
	{"/", "1.0", "daily"},
}

type SitemapService struct {
	posts   PostLister
	pages   *PageService
	baseURL string
	now     func() time.Time
}

func NewSitemapService(posts PostLister, pages *PageService, baseURL string) *SitemapService {
	return &SitemapService{
		posts:   posts,
		pages:   pages,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateSitemap lists the home page, every post and every markdown page.
// Posts are required; pages that fail to load are logged and skipped.
func (s *SitemapService) GenerateSitemap(ctx context.Context) ([]byte, error) {
	sitemap := model.Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []model.SitemapURL{},
	}

	today := s.now().UTC().Format("2006-01-02")
	for _, route := range publicRoutes {
		sitemap.URLs = append(sitemap.URLs, model.SitemapURL{
			Loc:        s.baseURL + route.Path,
			LastMod:    today,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
		})
	}

	posts, err := s.posts.Posts(ctx)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		lastMod := today
		if post.FirstPublicationDate != nil {
			lastMod = post.FirstPublicationDate.UTC().Format("2006-01-02")
		}
		sitemap.URLs = append(sitemap.URLs, model.SitemapURL{
			Loc:        s.baseURL + "/post/" + post.UID,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	if s.pages != nil {
		pages, err := s.pages.Pages()
		if err != nil {
			slog.Warn("failed to load pages for sitemap", "error", err)
		}
		for _, page := range pages {
			url := model.SitemapURL{
				Loc:        s.baseURL + "/pages/" + page.Slug,
				ChangeFreq: "monthly",
				Priority:   "0.3",
			}
			if page.LastUpdated != nil {
				url.LastMod = page.LastUpdated.UTC().Format("2006-01-02")
			}
			sitemap.URLs = append(sitemap.URLs, url)
		}
	}

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return []byte(xml.Header + string(output)), nil
}

// RobotsTxt is the robots.txt body for a site at baseURL. Load more fragments
// are kept out of the index.
func RobotsTxt(baseURL string) []byte {
	return []byte("User-agent: *\nAllow: /\nDisallow: /posts/more\nSitemap: " + strings.TrimSuffix(baseURL, "/") + "/sitemap.xml\n")
}
