package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "pages")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestPageService_Page(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "sobre.md", "---\ntitle: Sobre o blog\ndescription: Quem somos\nlastUpdated: 2024-01-02\n---\n\nUm blog sobre *viagens*.\n")

	svc := NewPageService(root)
	page, err := svc.Page("sobre")
	require.NoError(t, err)

	assert.Equal(t, "Sobre o blog", page.Title)
	assert.Equal(t, "Quem somos", page.Description)
	assert.Contains(t, page.HTMLContent, "<em>viagens</em>")
	require.NotNil(t, page.LastUpdated)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), page.LastUpdated.UTC())
}

func TestPageService_TitleFromSlugAndModTime(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "politica-de-privacidade.md", "Sem rastreamento.\n")

	page, err := NewPageService(root).Page("politica-de-privacidade")
	require.NoError(t, err)

	assert.Equal(t, "Politica De Privacidade", page.Title)
	require.NotNil(t, page.LastUpdated)
	assert.WithinDuration(t, time.Now(), *page.LastUpdated, time.Minute)
}

func TestPageService_NotFound(t *testing.T) {
	svc := NewPageService(t.TempDir())

	_, err := svc.Page("missing")
	assert.ErrorIs(t, err, ErrPageNotFound)

	pages, err := svc.Pages()
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPageService_PagesSorted(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "termos.md", "# Termos\n")
	writePage(t, root, "sobre.md", "# Sobre\n")
	writePage(t, root, "notes.txt", "ignored")

	pages, err := NewPageService(root).Pages()
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, "sobre", pages[0].Slug)
	assert.Equal(t, "termos", pages[1].Slug)
}

func TestParseDate(t *testing.T) {
	assert.NotNil(t, parseDate("2024/01/02"))
	assert.NotNil(t, parseDate(time.Now()))
	assert.Nil(t, parseDate("someday"))
	assert.Nil(t, parseDate(42))
}
