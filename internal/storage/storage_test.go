package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/spacetraveling/internal/config"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	root := filepath.Join(t.TempDir(), "public")
	s, err := NewLocalStorage(root, "https://spacetraveling.dev/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "post/como-utilizar-hooks/index.html", "text/html", strings.NewReader("<h1>Hooks</h1>")))

	got, err := os.ReadFile(filepath.Join(root, "post", "como-utilizar-hooks", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hooks</h1>", string(got))

	require.NoError(t, s.Save(ctx, "/post/como-utilizar-hooks/index.html", "text/html", strings.NewReader("v2")))
	got, err = os.ReadFile(filepath.Join(root, "post", "como-utilizar-hooks", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, s.Delete(ctx, "post/como-utilizar-hooks/index.html"))
	require.NoError(t, s.Delete(ctx, "post/como-utilizar-hooks/index.html"), "deleting twice is fine")
	_, err = os.Stat(filepath.Join(root, "post", "como-utilizar-hooks", "index.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_ListAndPrune(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "")
	require.NoError(t, err)
	ctx := context.Background()

	paths, err := s.List(ctx, "post/")
	require.NoError(t, err)
	assert.Empty(t, paths, "missing prefix lists nothing")

	for _, name := range []string{"post/a/index.html", "post/b/index.html", "index.html"} {
		require.NoError(t, s.Save(ctx, name, "text/html", strings.NewReader("x")))
	}

	paths, err = s.List(ctx, "post/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"post/a/index.html", "post/b/index.html"}, paths)

	require.NoError(t, s.Delete(ctx, "post/b/index.html"))
	assert.NoDirExists(t, filepath.Join(root, "post", "b"))
	assert.DirExists(t, filepath.Join(root, "post", "a"))
	assert.DirExists(t, root)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	err = s.Save(context.Background(), "../outside.html", "text/html", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestLocalStorage_URL(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "https://spacetraveling.dev/")
	require.NoError(t, err)

	assert.Equal(t, "https://spacetraveling.dev/sitemap.xml", s.URL("/sitemap.xml"))
}

func TestNew_SelectsTarget(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	s, err := New(context.Background(), &config.Config{PublishTarget: "local", OutputDir: root})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), &config.Config{PublishTarget: "ftp"})
	assert.Error(t, err)
}

func TestCacheControl(t *testing.T) {
	assert.Equal(t, "public, max-age=3600", cacheControl("assets/css/output.css"))
	assert.Equal(t, "public, max-age=0, must-revalidate", cacheControl("index.html"))
}

func TestBucketURL(t *testing.T) {
	assert.Equal(t, "https://blog.s3.sa-east-1.amazonaws.com",
		bucketURL(S3Config{Bucket: "blog", Region: "sa-east-1"}))
	assert.Equal(t, "http://localhost:9000/blog",
		bucketURL(S3Config{Bucket: "blog", Region: "us-east-1", Endpoint: "http://localhost:9000/"}))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "post/hooks/index.html", objectKey("/post/hooks/index.html"))
	assert.Equal(t, "sitemap.xml", objectKey("sitemap.xml"))
}
