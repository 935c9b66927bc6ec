package model

import (
	"slices"
	"time"
)

// Post is a normalized post document. UID is the identity key within a list
// and the detail route parameter.
type Post struct {
	UID                  string     `json:"uid"`
	FirstPublicationDate *time.Time `json:"first_publication_date"`
	Data                 PostData   `json:"data"`
}

type PostData struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Author   string         `json:"author"`
	Banner   *Banner        `json:"banner,omitempty"`
	Content  []ContentBlock `json:"content,omitempty"`
}

type Banner struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ContentBlock is one titled section of a post body.
type ContentBlock struct {
	Heading string          `json:"heading"`
	Body    []RichTextBlock `json:"body"`
}

// RichTextBlock is a single structured rich text node: a paragraph, heading,
// list item, preformatted block or image.
type RichTextBlock struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`
	URL   string `json:"url,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// Span marks up Text[Start:End] (rune offsets).
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

type SpanData struct {
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
	Label  string `json:"label,omitempty"`
}

// PostPagination is one loaded window of the listing. NextPage is the opaque
// continuation URL from the content API; nil means there are no more pages.
type PostPagination struct {
	NextPage *string `json:"next_page"`
	Results  []Post  `json:"results"`
}

func (p PostPagination) HasMore() bool {
	return p.NextPage != nil && *p.NextPage != ""
}

// Clone returns a copy that shares no slices or pointers with p.
func (p PostPagination) Clone() PostPagination {
	out := PostPagination{Results: slices.Clone(p.Results)}
	if p.NextPage != nil {
		next := *p.NextPage
		out.NextPage = &next
	}
	return out
}

// PublishedAt returns the first publication date or the zero time.
func (p Post) PublishedAt() time.Time {
	if p.FirstPublicationDate == nil {
		return time.Time{}
	}
	return *p.FirstPublicationDate
}
