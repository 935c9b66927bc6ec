package prismic_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/spacetraveling/internal/prismic"
	"github.com/templui/spacetraveling/internal/prismic/prismictest"
)

func posts() []prismic.Document {
	return []prismic.Document{
		prismictest.Post(prismictest.PostFixture{UID: "como-utilizar-hooks", Published: "2021-03-15T19:25:28+0000", Title: "Como utilizar Hooks"}),
		prismictest.Post(prismictest.PostFixture{UID: "criando-um-app-cra-do-zero", Published: "2021-03-25T19:27:35+0000", Title: "Criando um app CRA do zero"}),
		prismictest.Post(prismictest.PostFixture{UID: "mapas-com-react", Published: "2021-04-01T10:00:00+0000", Title: "Mapas com React"}),
	}
}

func newClient(t *testing.T, endpoint string, opts ...func(*prismic.Options)) *prismic.Client {
	t.Helper()
	o := prismic.Options{Endpoint: endpoint, Timeout: 2 * time.Second}
	for _, fn := range opts {
		fn(&o)
	}
	client, err := prismic.NewClient(o)
	require.NoError(t, err)
	return client
}

func TestQuery_FirstPageHasNextPage(t *testing.T) {
	srv := prismictest.NewServer(t, posts()...)
	client := newClient(t, srv.Endpoint())

	resp, err := client.Query(context.Background(),
		[]string{prismic.At("document.type", "post")},
		prismic.QueryOptions{PageSize: 1, Fetch: []string{"post.title"}},
	)
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "como-utilizar-hooks", *resp.Results[0].UID)
	assert.Equal(t, 3, resp.TotalPages)
	require.NotNil(t, resp.NextPage)
	assert.Contains(t, *resp.NextPage, "page=2")
}

func TestQueryURL_FollowsNextPageToTheEnd(t *testing.T) {
	srv := prismictest.NewServer(t, posts()...)
	client := newClient(t, srv.Endpoint())
	ctx := context.Background()

	resp, err := client.Query(ctx, []string{prismic.At("document.type", "post")}, prismic.QueryOptions{PageSize: 2})
	require.NoError(t, err)
	require.NotNil(t, resp.NextPage)

	last, err := client.QueryURL(ctx, *resp.NextPage)
	require.NoError(t, err)

	require.Len(t, last.Results, 1)
	assert.Equal(t, "mapas-com-react", *last.Results[0].UID)
	assert.Nil(t, last.NextPage)
}

type recordingTransport struct {
	mu   sync.Mutex
	urls []string
}

func (rt *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.urls = append(rt.urls, r.URL.String())
	rt.mu.Unlock()
	return http.DefaultTransport.RoundTrip(r)
}

func (rt *recordingTransport) last() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.urls[len(rt.urls)-1]
}

func TestQuery_NextPageOmitsAccessToken(t *testing.T) {
	srv := prismictest.NewServer(t, posts()...)
	rt := &recordingTransport{}
	client := newClient(t, srv.Endpoint(), func(o *prismic.Options) {
		o.AccessToken = "s3cret"
		o.HTTPClient = &http.Client{Transport: rt}
	})
	ctx := context.Background()

	resp, err := client.Query(ctx, []string{prismic.At("document.type", "post")}, prismic.QueryOptions{PageSize: 1})
	require.NoError(t, err)
	assert.Contains(t, rt.last(), "access_token=s3cret")
	require.NotNil(t, resp.NextPage)
	assert.Contains(t, *resp.NextPage, "page=2")
	assert.NotContains(t, *resp.NextPage, "s3cret")

	second, err := client.QueryURL(ctx, *resp.NextPage)
	require.NoError(t, err)
	assert.Contains(t, rt.last(), "access_token=s3cret")
	require.NotNil(t, second.PrevPage)
	assert.NotContains(t, *second.PrevPage, "s3cret")
	require.NotNil(t, second.NextPage)
	assert.NotContains(t, *second.NextPage, "s3cret")
}

func TestQueryURL_RejectsForeignURL(t *testing.T) {
	srv := prismictest.NewServer(t, posts()...)
	client := newClient(t, srv.Endpoint())

	tests := []string{
		"https://evil.example/api/v2/documents/search?page=2",
		srv.URL + "/api/v2/somewhere-else",
		"::not a url",
	}
	for _, pageURL := range tests {
		t.Run(pageURL, func(t *testing.T) {
			_, err := client.QueryURL(context.Background(), pageURL)
			assert.ErrorIs(t, err, prismic.ErrForeignURL)
		})
	}
	assert.Zero(t, srv.Searches())
}

func TestGetByUID(t *testing.T) {
	srv := prismictest.NewServer(t, posts()...)
	client := newClient(t, srv.Endpoint())
	ctx := context.Background()

	doc, err := client.GetByUID(ctx, "post", "criando-um-app-cra-do-zero")
	require.NoError(t, err)
	assert.Equal(t, "criando-um-app-cra-do-zero", *doc.UID)

	_, err = client.GetByUID(ctx, "post", "nao-existe")
	assert.ErrorIs(t, err, prismic.ErrDocumentNotFound)
}

func TestQuery_ServerErrorIsAPIError(t *testing.T) {
	srv := prismictest.NewServer(t, posts()...)
	client := newClient(t, srv.Endpoint())
	srv.FailNext(1)

	_, err := client.Query(context.Background(), nil, prismic.QueryOptions{})

	var apiErr *prismic.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.True(t, apiErr.Temporary())
	assert.Equal(t, 1, srv.Searches())
}

func TestQuery_RetriesTemporaryFailures(t *testing.T) {
	srv := prismictest.NewServer(t, posts()...)
	client := newClient(t, srv.Endpoint(), func(o *prismic.Options) { o.MaxRetries = 2 })
	srv.FailNext(2)

	resp, err := client.Query(context.Background(), []string{prismic.At("document.type", "post")}, prismic.QueryOptions{PageSize: 1})
	require.NoError(t, err)

	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 3, srv.Searches())
}

func TestQuery_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2" {
			_, _ = w.Write([]byte(`{"refs":[{"id":"master","ref":"r1","isMasterRef":true}]}`))
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL+"/api/v2", func(o *prismic.Options) {
		o.MaxRetries = 3
		o.AccessToken = "secret"
	})

	_, err := client.Query(context.Background(), nil, prismic.QueryOptions{})

	var apiErr *prismic.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.NotContains(t, apiErr.URL, "secret")
	assert.EqualValues(t, 1, calls.Load())
}

func TestMasterRef_MissingMaster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"refs":[{"id":"preview","ref":"p1"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL+"/api/v2")

	_, err := client.MasterRef(context.Background())
	assert.ErrorIs(t, err, prismic.ErrNoMasterRef)
}

func TestNewClient_RejectsBadEndpoint(t *testing.T) {
	_, err := prismic.NewClient(prismic.Options{Endpoint: "ftp://example.com/api/v2"})
	assert.Error(t, err)
}

func TestPredicates(t *testing.T) {
	assert.Equal(t, `[at(document.type, "post")]`, prismic.At("document.type", "post"))
}
