// Package richtext renders structured rich text blocks to plain text and HTML.
package richtext

import (
	"html"
	"sort"
	"strings"

	"github.com/templui/spacetraveling/internal/model"
)

// AsText joins the text of each block with a newline. Formatting is dropped.
func AsText(blocks []model.RichTextBlock) string {
	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	return strings.Join(texts, "\n")
}

// AsHTML renders blocks to HTML. Consecutive list items are grouped into one
// list element. Unknown block types are skipped.
func AsHTML(blocks []model.RichTextBlock) string {
	var sb strings.Builder
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		switch b.Type {
		case "list-item", "o-list-item":
			tag := "ul"
			if b.Type == "o-list-item" {
				tag = "ol"
			}
			sb.WriteString("<" + tag + ">")
			for ; i < len(blocks) && blocks[i].Type == b.Type; i++ {
				sb.WriteString("<li>" + renderSpans(blocks[i]) + "</li>")
			}
			i--
			sb.WriteString("</" + tag + ">")
		case "paragraph":
			sb.WriteString("<p>" + renderSpans(b) + "</p>")
		case "heading1", "heading2", "heading3", "heading4", "heading5", "heading6":
			tag := "h" + strings.TrimPrefix(b.Type, "heading")
			sb.WriteString("<" + tag + ">" + renderSpans(b) + "</" + tag + ">")
		case "preformatted":
			sb.WriteString("<pre>" + html.EscapeString(b.Text) + "</pre>")
		case "image":
			if b.URL != "" {
				sb.WriteString(`<img src="` + html.EscapeString(b.URL) + `" alt="` + html.EscapeString(b.Alt) + `" loading="lazy">`)
			}
		}
	}
	return sb.String()
}

type boundary struct {
	pos   int
	open  bool
	order int
	span  model.Span
}

// renderSpans applies strong, em and hyperlink spans to a block's text.
// Span offsets count characters, not bytes.
func renderSpans(b model.RichTextBlock) string {
	runes := []rune(b.Text)
	n := len(runes)

	var bounds []boundary
	for i, s := range b.Spans {
		if tagOpen(s) == "" {
			continue
		}
		start := clamp(s.Start, 0, n)
		end := clamp(s.End, start, n)
		if start == end {
			continue
		}
		bounds = append(bounds,
			boundary{pos: start, open: true, order: i, span: s},
			boundary{pos: end, open: false, order: i, span: s},
		)
	}
	if len(bounds) == 0 {
		return html.EscapeString(b.Text)
	}

	// At equal positions, closes come before opens. Closes unwind in reverse
	// order of their opens so the output nests.
	sort.SliceStable(bounds, func(i, j int) bool {
		a, c := bounds[i], bounds[j]
		if a.pos != c.pos {
			return a.pos < c.pos
		}
		if a.open != c.open {
			return !a.open
		}
		if a.open {
			return a.order < c.order
		}
		return a.order > c.order
	})

	var sb strings.Builder
	sb.Grow(len(b.Text) + 16*len(bounds))
	last := 0
	for _, bd := range bounds {
		sb.WriteString(html.EscapeString(string(runes[last:bd.pos])))
		last = bd.pos
		if bd.open {
			sb.WriteString(tagOpen(bd.span))
		} else {
			sb.WriteString(tagClose(bd.span))
		}
	}
	sb.WriteString(html.EscapeString(string(runes[last:])))
	return sb.String()
}

func tagOpen(s model.Span) string {
	switch s.Type {
	case "strong":
		return "<strong>"
	case "em":
		return "<em>"
	case "hyperlink":
		if s.Data == nil || s.Data.URL == "" {
			return ""
		}
		attrs := `href="` + html.EscapeString(s.Data.URL) + `"`
		if s.Data.Target != "" {
			attrs += ` target="` + html.EscapeString(s.Data.Target) + `" rel="noopener noreferrer"`
		}
		return "<a " + attrs + ">"
	}
	return ""
}

func tagClose(s model.Span) string {
	switch s.Type {
	case "strong":
		return "</strong>"
	case "em":
		return "</em>"
	case "hyperlink":
		return "</a>"
	}
	return ""
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

