// Package prismictest runs an in-memory content API for tests.
package prismictest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"testing"

	"github.com/templui/spacetraveling/internal/prismic"
)

const MasterRef = "master-ref"

var (
	typePredicate = regexp.MustCompile(`at\(document\.type,\s*"([^"]*)"\)`)
	uidPredicate  = regexp.MustCompile(`at\(my\.[a-z_]+\.uid,\s*"([^"]*)"\)`)
)

// Server serves an API root and a paginated search endpoint over a fixed set
// of documents, in insertion order.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	docs     []prismic.Document
	failures int
	searches int
}

func NewServer(t testing.TB, docs ...prismic.Document) *Server {
	t.Helper()

	s := &Server{docs: docs}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2", s.handleRoot)
	mux.HandleFunc("GET /api/v2/documents/search", s.handleSearch)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the API root to hand to prismic.NewClient.
func (s *Server) Endpoint() string {
	return s.URL + "/api/v2"
}

// SearchURL builds a page URL the way next_page links are built.
func (s *Server) SearchURL(docType string, page, pageSize int) string {
	q := url.Values{}
	q.Set("ref", MasterRef)
	q.Set("q", "["+prismic.At("document.type", docType)+"]")
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return s.Endpoint() + "/documents/search?" + q.Encode()
}

// SetDocuments replaces the served documents.
func (s *Server) SetDocuments(docs ...prismic.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
}

// FailNext makes the next n search requests answer 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

// Searches counts search requests received, failed ones included.
func (s *Server) Searches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, prismic.API{Refs: []prismic.Ref{
		{ID: "master", Ref: MasterRef, Label: "Master", IsMasterRef: true},
	}})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.searches++
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
		return
	}
	docs := s.docs
	s.mu.Unlock()

	q := r.URL.Query()
	if q.Get("ref") != MasterRef {
		http.Error(w, `{"error":"invalid ref"}`, http.StatusBadRequest)
		return
	}

	predicates := q.Get("q")
	var matched []prismic.Document
	for _, doc := range docs {
		if m := typePredicate.FindStringSubmatch(predicates); m != nil && doc.Type != m[1] {
			continue
		}
		if m := uidPredicate.FindStringSubmatch(predicates); m != nil && (doc.UID == nil || *doc.UID != m[1]) {
			continue
		}
		matched = append(matched, doc)
	}

	pageSize := atoiDefault(q.Get("pageSize"), 20)
	page := atoiDefault(q.Get("page"), 1)
	totalPages := (len(matched) + pageSize - 1) / pageSize

	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))

	resp := prismic.Response{
		Page:             page,
		ResultsPerPage:   pageSize,
		ResultsSize:      end - start,
		TotalResultsSize: len(matched),
		TotalPages:       totalPages,
		Results:          append([]prismic.Document{}, matched[start:end]...),
	}
	if page < totalPages {
		next := s.pageURL(r, page+1)
		resp.NextPage = &next
	}
	if page > 1 {
		prev := s.pageURL(r, page-1)
		resp.PrevPage = &prev
	}
	writeJSON(w, resp)
}

func (s *Server) pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return s.Endpoint() + "/documents/search?" + q.Encode()
}

func atoiDefault(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encode: %v", err), http.StatusInternalServerError)
	}
}
