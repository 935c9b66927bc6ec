package service

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/ui"
)

// FeedService renders the RSS 2.0 feed of all posts.
type FeedService struct {
	posts   PostLister
	title   string
	tagline string
	locale  string
	baseURL string
	now     func() time.Time
}

func NewFeedService(posts PostLister, title, tagline, locale, baseURL string) *FeedService {
	return &FeedService{
		posts:   posts,
		title:   title,
		tagline: tagline,
		locale:  locale,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *FeedService) GenerateFeed(ctx context.Context) ([]byte, error) {
	posts, err := s.posts.Posts(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]model.RSSItem, 0, len(posts))
	lastBuild := time.Time{}
	for _, post := range posts {
		link := s.baseURL + "/post/" + post.UID
		item := model.RSSItem{
			Title:       post.Data.Title,
			Link:        link,
			GUID:        link,
			Description: post.Data.Subtitle,
			Author:      post.Data.Author,
		}
		if published := post.PublishedAt(); !published.IsZero() {
			item.PubDate = published.UTC().Format(time.RFC1123Z)
			if published.After(lastBuild) {
				lastBuild = published
			}
		}
		items = append(items, item)
	}
	if lastBuild.IsZero() {
		lastBuild = s.now()
	}

	feed := model.RSS{
		Version: "2.0",
		Channel: model.RSSChannel{
			Title:         s.title,
			Link:          s.baseURL + "/",
			Description:   s.tagline,
			Language:      strings.ToLower(ui.Locale(s.locale).String()),
			LastBuildDate: lastBuild.UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, err
	}
	return []byte(xml.Header + string(output)), nil
}
