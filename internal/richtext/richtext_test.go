package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/templui/spacetraveling/internal/model"
)

func TestAsText(t *testing.T) {
	tests := []struct {
		name   string
		blocks []model.RichTextBlock
		want   string
	}{
		{name: "empty", blocks: nil, want: ""},
		{name: "single", blocks: []model.RichTextBlock{{Type: "paragraph", Text: "hello world"}}, want: "hello world"},
		{
			name: "joined with newline",
			blocks: []model.RichTextBlock{
				{Type: "paragraph", Text: "one two", Spans: []model.Span{{Start: 0, End: 3, Type: "strong"}}},
				{Type: "list-item", Text: "three"},
			},
			want: "one two\nthree",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AsText(tt.blocks))
		})
	}
}

func TestAsHTML_Blocks(t *testing.T) {
	blocks := []model.RichTextBlock{
		{Type: "heading2", Text: "Intro"},
		{Type: "paragraph", Text: "a < b & c"},
		{Type: "list-item", Text: "first"},
		{Type: "list-item", Text: "second"},
		{Type: "o-list-item", Text: "step"},
		{Type: "preformatted", Text: "<code>"},
		{Type: "image", URL: "https://images.prismic.io/x.png", Alt: "rocket"},
		{Type: "embed", Text: "ignored"},
	}

	got := AsHTML(blocks)

	assert.Equal(t,
		`<h2>Intro</h2>`+
			`<p>a &lt; b &amp; c</p>`+
			`<ul><li>first</li><li>second</li></ul>`+
			`<ol><li>step</li></ol>`+
			`<pre>&lt;code&gt;</pre>`+
			`<img src="https://images.prismic.io/x.png" alt="rocket" loading="lazy">`,
		got)
}

func TestAsHTML_Spans(t *testing.T) {
	tests := []struct {
		name  string
		block model.RichTextBlock
		want  string
	}{
		{
			name:  "strong and em",
			block: model.RichTextBlock{Type: "paragraph", Text: "bold and italic", Spans: []model.Span{{Start: 0, End: 4, Type: "strong"}, {Start: 9, End: 15, Type: "em"}}},
			want:  "<p><strong>bold</strong> and <em>italic</em></p>",
		},
		{
			name:  "nested",
			block: model.RichTextBlock{Type: "paragraph", Text: "abcdef", Spans: []model.Span{{Start: 0, End: 6, Type: "strong"}, {Start: 2, End: 4, Type: "em"}}},
			want:  "<p><strong>ab<em>cd</em>ef</strong></p>",
		},
		{
			name: "hyperlink with target",
			block: model.RichTextBlock{Type: "paragraph", Text: "see docs", Spans: []model.Span{
				{Start: 4, End: 8, Type: "hyperlink", Data: &model.SpanData{URL: "https://example.com/?a=1&b=2", Target: "_blank"}},
			}},
			want: `<p>see <a href="https://example.com/?a=1&amp;b=2" target="_blank" rel="noopener noreferrer">docs</a></p>`,
		},
		{
			name:  "multibyte offsets",
			block: model.RichTextBlock{Type: "paragraph", Text: "ação rápida", Spans: []model.Span{{Start: 5, End: 11, Type: "em"}}},
			want:  "<p>ação <em>rápida</em></p>",
		},
		{
			name:  "out of range and unknown spans",
			block: model.RichTextBlock{Type: "paragraph", Text: "abc", Spans: []model.Span{{Start: 1, End: 99, Type: "strong"}, {Start: 0, End: 1, Type: "label"}}},
			want:  "<p>a<strong>bc</strong></p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AsHTML([]model.RichTextBlock{tt.block}))
		})
	}
}
