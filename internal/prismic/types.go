package prismic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Ref is a content release pointer. Queries must name a ref; the master ref
// points at the currently published content.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// API is the API root document.
type API struct {
	Refs []Ref `json:"refs"`
}

// Document is a raw document as returned by the search endpoint. Data is kept
// raw and validated by the caller.
type Document struct {
	ID                   string          `json:"id"`
	UID                  *string         `json:"uid"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href,omitempty"`
	Tags                 []string        `json:"tags,omitempty"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date,omitempty"`
	Lang                 string          `json:"lang,omitempty"`
	Data                 json.RawMessage `json:"data"`
}

// Response is one page of search results.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

type QueryOptions struct {
	Fetch    []string // e.g. "post.title"
	PageSize int
	Page     int
}

// At builds an "at" predicate: At("document.type", "post").
func At(path, value string) string {
	return fmt.Sprintf("[at(%s, %q)]", path, value)
}

func query(predicates []string) string {
	return "[" + strings.Join(predicates, "") + "]"
}
