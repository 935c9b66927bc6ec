package prismictest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/templui/spacetraveling/internal/prismic"
)

// Block is a rich text block in the raw content API shape.
type Block map[string]any

func Paragraph(text string) Block {
	return Block{"type": "paragraph", "text": text, "spans": []any{}}
}

func Heading(level int, text string) Block {
	return Block{"type": "heading" + strconv.Itoa(level), "text": text, "spans": []any{}}
}

// Section is one group of a post's content: a heading and its body.
type Section struct {
	Heading string
	Body    []Block
}

// PostFixture describes a post document. Empty optional fields are omitted
// from the generated data.
type PostFixture struct {
	UID       string
	Published string // e.g. 2021-03-15T19:25:28+0000; empty means never published
	Title     string
	Subtitle  string
	Author    string
	BannerURL string
	Content   []Section
}

// Post builds a "post" document.
func Post(f PostFixture) prismic.Document {
	content := make([]map[string]any, 0, len(f.Content))
	for _, section := range f.Content {
		body := make([]Block, 0, len(section.Body))
		body = append(body, section.Body...)
		content = append(content, map[string]any{
			"heading": section.Heading,
			"body":    body,
		})
	}

	data := map[string]any{
		"title":    f.Title,
		"subtitle": f.Subtitle,
		"author":   f.Author,
		"content":  content,
	}
	if f.BannerURL != "" {
		data["banner"] = map[string]any{"url": f.BannerURL, "alt": f.Title}
	}

	return document("post", f.UID, f.Published, data)
}

// Raw builds a document with arbitrary data, for malformed payload tests.
func Raw(docType, uid, published string, data string) prismic.Document {
	doc := document(docType, uid, published, nil)
	doc.Data = json.RawMessage(data)
	return doc
}

// Words returns a paragraph of n words.
func Words(n int) Block {
	return Paragraph(strings.TrimSpace(strings.Repeat("word ", n)))
}

func document(docType, uid, published string, data map[string]any) prismic.Document {
	doc := prismic.Document{
		ID:   "id-" + uid,
		Type: docType,
		Lang: "pt-br",
	}
	if uid != "" {
		doc.UID = &uid
	}
	if published != "" {
		doc.FirstPublicationDate = &published
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			panic(err)
		}
		doc.Data = raw
	}
	return doc
}
