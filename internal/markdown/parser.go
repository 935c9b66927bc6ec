// Package markdown renders the site's markdown pages.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"
)

// Document is a rendered page and its front matter.
type Document struct {
	HTML []byte
	Meta map[string]any
}

// String returns the front matter value under key, or "".
func (d *Document) String(key string) string {
	s, _ := d.Meta[key].(string)
	return s
}

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
				&frontmatter.Extender{},
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Render converts source to HTML. Missing or undecodable front matter yields
// an empty Meta.
func (p *Parser) Render(source []byte) (*Document, error) {
	pc := parser.NewContext()
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf, parser.WithContext(pc))
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	doc := &Document{HTML: buf.Bytes(), Meta: map[string]any{}}
	if fm := frontmatter.Get(pc); fm != nil {
		if err := fm.Decode(&doc.Meta); err != nil {
			doc.Meta = map[string]any{}
		}
	}
	return doc, nil
}
