package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/prismic"
)

var ErrMalformedDocument = errors.New("malformed document")

// apiDateLayout is the timestamp format of first_publication_date.
const apiDateLayout = "2006-01-02T15:04:05-0700"

type rawContentBlock struct {
	Heading *string               `json:"heading"`
	Body    []model.RichTextBlock `json:"body"`
}

type rawBanner struct {
	URL *string `json:"url"`
	Alt *string `json:"alt"`
}

// NormalizePost maps a raw post document to the view model. The same document
// always yields the same Post.
func NormalizePost(doc prismic.Document) (model.Post, error) {
	if doc.UID == nil || strings.TrimSpace(*doc.UID) == "" {
		return model.Post{}, malformed(doc, "uid", "missing")
	}

	published, err := parsePublicationDate(doc.FirstPublicationDate)
	if err != nil {
		return model.Post{}, malformed(doc, "first_publication_date", err.Error())
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(doc.Data, &fields)
	if err != nil || fields == nil {
		return model.Post{}, malformed(doc, "data", "not an object")
	}

	title, err := stringField(fields, "title")
	if err != nil {
		return model.Post{}, malformed(doc, "title", err.Error())
	}
	if strings.TrimSpace(title) == "" {
		return model.Post{}, malformed(doc, "title", "missing")
	}

	subtitle, err := stringField(fields, "subtitle")
	if err != nil {
		return model.Post{}, malformed(doc, "subtitle", err.Error())
	}

	author, err := stringField(fields, "author")
	if err != nil {
		return model.Post{}, malformed(doc, "author", err.Error())
	}

	banner, err := bannerField(fields)
	if err != nil {
		return model.Post{}, malformed(doc, "banner", err.Error())
	}

	content, err := contentField(fields)
	if err != nil {
		return model.Post{}, malformed(doc, "content", err.Error())
	}

	return model.Post{
		UID:                  *doc.UID,
		FirstPublicationDate: published,
		Data: model.PostData{
			Title:    title,
			Subtitle: subtitle,
			Author:   author,
			Banner:   banner,
			Content:  content,
		},
	}, nil
}

// NormalizePage maps a search response to a pagination window. It fails on the
// first malformed document.
func NormalizePage(resp *prismic.Response) (model.PostPagination, error) {
	posts := make([]model.Post, 0, len(resp.Results))
	for _, doc := range resp.Results {
		post, err := NormalizePost(doc)
		if err != nil {
			return model.PostPagination{}, err
		}
		posts = append(posts, post)
	}

	page := model.PostPagination{Results: posts}
	if resp.NextPage != nil && *resp.NextPage != "" {
		next := *resp.NextPage
		page.NextPage = &next
	}
	return page, nil
}

func parsePublicationDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	for _, layout := range []string{apiDateLayout, time.RFC3339} {
		t, err := time.Parse(layout, *value)
		if err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparsable date %q", *value)
}

// stringField reads an optional string. Absent and null both yield "".
func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.New("not a string")
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

func bannerField(fields map[string]json.RawMessage) (*model.Banner, error) {
	raw, ok := fields["banner"]
	if !ok {
		return nil, nil
	}
	var b *rawBanner
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, errors.New("not an image")
	}
	// An empty image field comes back as {}.
	if b == nil || b.URL == nil || *b.URL == "" {
		return nil, nil
	}

	banner := &model.Banner{URL: *b.URL}
	if b.Alt != nil {
		banner.Alt = *b.Alt
	}
	return banner, nil
}

func contentField(fields map[string]json.RawMessage) ([]model.ContentBlock, error) {
	raw, ok := fields["content"]
	if !ok {
		return nil, nil
	}
	var blocks []rawContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, errors.New("not a list of heading/body groups")
	}

	content := make([]model.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		block := model.ContentBlock{Body: b.Body}
		if b.Heading != nil {
			block.Heading = *b.Heading
		}
		if block.Body == nil {
			block.Body = []model.RichTextBlock{}
		}
		content = append(content, block)
	}
	return content, nil
}

func malformed(doc prismic.Document, field, reason string) error {
	return fmt.Errorf("%w: document %s: %s %s", ErrMalformedDocument, doc.ID, field, reason)
}
