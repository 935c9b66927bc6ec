package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticHandler(t *testing.T) {
	root := t.TempDir()
	write := func(name, body string) {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	write("index.html", "listing")
	write("post/hooks/index.html", "detail")
	write("posts/more/2.html", "fragment")
	write("404.html", "not found page")

	h := staticHandler(root)
	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "listing", rec.Body.String())

	rec = get("/post/hooks/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "detail", rec.Body.String())

	rec = get("/posts/more/2.html")
	assert.Equal(t, "fragment", rec.Body.String())

	rec = get("/post/missing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found page", rec.Body.String())
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestAirArgs(t *testing.T) {
	args := airArgs(9000, 9001)

	assert.Equal(t, "air", args[0])
	assert.Contains(t, args, "9000")
	assert.Contains(t, args, "9001")
	assert.Contains(t, args, "go,templ,css,sql")
}

func TestIsUpToDate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.css")
	in := filepath.Join(dir, "input.css")

	assert.False(t, isUpToDate(out, []string{in}), "missing output")

	require.NoError(t, os.WriteFile(in, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(out, []byte("b"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(in, past, past))
	assert.True(t, isUpToDate(out, []string{in}))

	require.NoError(t, os.Chtimes(out, past.Add(-time.Hour), past.Add(-time.Hour)))
	assert.False(t, isUpToDate(out, []string{in}))
}

func TestFilesWithSuffix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"home.templ", "home_templ.go", "style.css"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	files := filesWithSuffix([]string{dir}, ".templ", ".go")

	assert.ElementsMatch(t, []string{filepath.Join(dir, "home.templ"), filepath.Join(dir, "home_templ.go")}, files)
}
