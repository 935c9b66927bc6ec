package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
)

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestRender(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), text("<p>hi</p>"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<p>hi</p>", rec.Body.String())
}

func TestRenderStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderStatus(rec, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusNotFound, text("gone"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "gone", rec.Body.String())
}

func TestRenderFragment(t *testing.T) {
	page := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<html>")
		if err != nil {
			return err
		}
		err = templ.Fragment("items").Render(templ.WithChildren(ctx, text("<li>a</li>")), w)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "</html>")
		return err
	})

	rec := httptest.NewRecorder()
	RenderFragment(rec, httptest.NewRequest(http.MethodGet, "/", nil), page, "items")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<li>a</li>", rec.Body.String())
}

func TestRenderOOB(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderOOB(rec, httptest.NewRequest(http.MethodGet, "/", nil), text("<button>more</button>"), "innerHTML:#load-more")

	assert.Equal(t, `<div hx-swap-oob="innerHTML:#load-more"><button>more</button></div>`, rec.Body.String())
}
