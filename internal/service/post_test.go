package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/spacetraveling/internal/prismic"
	"github.com/templui/spacetraveling/internal/prismic/prismictest"
)

func newPostService(t *testing.T, pageSize int, docs ...prismic.Document) (*PostService, *prismictest.Server) {
	t.Helper()
	srv := prismictest.NewServer(t, docs...)
	client, err := prismic.NewClient(prismic.Options{Endpoint: srv.Endpoint(), Timeout: 2 * time.Second})
	require.NoError(t, err)
	return NewPostService(client, pageSize), srv
}

func fixturePosts(n int) []prismic.Document {
	docs := make([]prismic.Document, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, prismictest.Post(prismictest.PostFixture{
			UID:       fmt.Sprintf("post-%d", i),
			Published: time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format(apiDateLayout),
			Title:     fmt.Sprintf("Post %d", i),
			Author:    "Danilo Vieira",
		}))
	}
	return docs
}

func TestPostService_FirstPageAndFetchPage(t *testing.T) {
	svc, _ := newPostService(t, 1, fixturePosts(2)...)
	ctx := context.Background()

	first, err := svc.FirstPage(ctx)
	require.NoError(t, err)
	require.Len(t, first.Results, 1)
	assert.Equal(t, "post-1", first.Results[0].UID)
	require.True(t, first.HasMore())
	require.NoError(t, svc.ValidatePageURL(*first.NextPage))

	second, err := svc.FetchPage(ctx, *first.NextPage)
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.Equal(t, "post-2", second.Results[0].UID)
	assert.False(t, second.HasMore())
}

func TestPostService_FetchPageRejectsForeignURL(t *testing.T) {
	svc, srv := newPostService(t, 1, fixturePosts(2)...)

	_, err := svc.FetchPage(context.Background(), "https://attacker.example/api/v2/documents/search")

	assert.ErrorIs(t, err, prismic.ErrForeignURL)
	assert.ErrorIs(t, svc.ValidatePageURL("https://attacker.example/"), prismic.ErrForeignURL)
	assert.Zero(t, srv.Searches())
}

func TestPostService_Post(t *testing.T) {
	svc, _ := newPostService(t, 1, fixturePosts(3)...)
	ctx := context.Background()

	post, err := svc.Post(ctx, "post-2")
	require.NoError(t, err)
	assert.Equal(t, "Post 2", post.Data.Title)

	_, err = svc.Post(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_PostsFollowsEveryPage(t *testing.T) {
	svc, srv := newPostService(t, 1, fixturePosts(150)...)

	posts, err := svc.Posts(context.Background())
	require.NoError(t, err)

	require.Len(t, posts, 150)
	assert.Equal(t, "post-1", posts[0].UID)
	assert.Equal(t, "post-150", posts[149].UID)
	assert.Equal(t, 2, srv.Searches())
}

func TestPostService_MalformedDocumentFailsPage(t *testing.T) {
	docs := append(fixturePosts(1), prismictest.Raw("post", "broken", "", `{"title":7}`))
	svc, _ := newPostService(t, 5, docs...)

	_, err := svc.FirstPage(context.Background())

	assert.ErrorIs(t, err, ErrMalformedDocument)
}
