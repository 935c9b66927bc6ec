package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/templui/spacetraveling/internal/markdown"
	"github.com/templui/spacetraveling/internal/model"
)

var ErrPageNotFound = errors.New("page not found")

// dateFormats are the frontmatter date layouts accepted for lastUpdated.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02.01.2006",
	time.RFC3339,
}

// PageService serves markdown pages from <content>/pages/*.md.
type PageService struct {
	contentDir string
	parser     *markdown.Parser
	titleCaser cases.Caser

	mu    sync.Mutex
	pages map[string]*model.Page
}

func NewPageService(contentPath string) *PageService {
	return &PageService{
		contentDir: filepath.Join(contentPath, "pages"),
		parser:     markdown.NewParser(),
		titleCaser: cases.Title(language.BrazilianPortuguese),
		pages:      make(map[string]*model.Page),
	}
}

// LoadPages (re)reads every page from disk. A missing directory means no pages.
func (s *PageService) LoadPages() error {
	files, err := os.ReadDir(s.contentDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read pages directory: %w", err)
	}

	pages := make(map[string]*model.Page, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}

		slug := strings.TrimSuffix(file.Name(), ".md")
		page, err := s.loadPage(slug)
		if err != nil {
			return fmt.Errorf("failed to load page %s: %w", slug, err)
		}
		pages[slug] = page
	}

	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()
	return nil
}

func (s *PageService) loadPage(slug string) (*model.Page, error) {
	filePath := filepath.Join(s.contentDir, slug+".md")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := s.parser.Render(content)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	title := doc.String("title")
	if title == "" {
		title = s.titleCaser.String(strings.ReplaceAll(slug, "-", " "))
	}

	// lastUpdated from frontmatter, else the file's modification time
	lastUpdated := parseDate(doc.Meta["lastUpdated"])
	if lastUpdated == nil {
		modTime := info.ModTime()
		lastUpdated = &modTime
	}

	return &model.Page{
		Title:       title,
		Slug:        slug,
		Description: doc.String("description"),
		HTMLContent: string(doc.HTML),
		LastUpdated: lastUpdated,
	}, nil
}

// Page returns a page by slug. Pages are reloaded on every call so edits show
// up without a restart.
func (s *PageService) Page(slug string) (*model.Page, error) {
	err := s.LoadPages()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}
	return page, nil
}

// Pages returns all pages sorted by slug.
func (s *PageService) Pages() ([]*model.Page, error) {
	err := s.LoadPages()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Page, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// parseDate accepts a frontmatter value that is either a time or a string in
// one of dateFormats.
func parseDate(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case string:
		for _, format := range dateFormats {
			t, err := time.Parse(format, v)
			if err == nil {
				return &t
			}
		}
	}
	return nil
}
