package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrForeignURL       = errors.New("page url does not belong to the content api")
	ErrNoMasterRef      = errors.New("content api has no master ref")
)

const (
	retryBase   = 200 * time.Millisecond
	refCacheTTL = 5 * time.Second
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content api returned status %d", e.StatusCode)
}

// Temporary reports whether the request may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type Options struct {
	Endpoint    string // API root, e.g. https://repo.cdn.prismic.io/api/v2
	AccessToken string
	Timeout     time.Duration
	MaxRetries  int
	HTTPClient  *http.Client
}

// Client talks to a Prismic-compatible REST API.
type Client struct {
	endpoint    *url.URL
	accessToken string
	httpClient  *http.Client
	maxRetries  int

	mu         sync.Mutex
	ref        string
	refExpires time.Time
	now        func() time.Time
}

func NewClient(opts Options) (*Client, error) {
	endpoint, err := url.Parse(strings.TrimSuffix(opts.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid content api endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("invalid content api endpoint %q: scheme must be http or https", opts.Endpoint)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		endpoint:    endpoint,
		accessToken: opts.AccessToken,
		httpClient:  httpClient,
		maxRetries:  max(opts.MaxRetries, 0),
		now:         time.Now,
	}, nil
}

// MasterRef returns the ref of the published content. It is cached briefly so
// a burst of queries shares one API root request.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.ref != "" && c.now().Before(c.refExpires) {
		ref := c.ref
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	var api API
	err := c.get(ctx, c.withToken(*c.endpoint), &api)
	if err != nil {
		return "", fmt.Errorf("failed to load api root: %w", err)
	}

	for _, ref := range api.Refs {
		if ref.IsMasterRef {
			c.mu.Lock()
			c.ref = ref.Ref
			c.refExpires = c.now().Add(refCacheTTL)
			c.mu.Unlock()
			return ref.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}

// Query searches documents matching all predicates.
func (c *Client) Query(ctx context.Context, predicates []string, opts QueryOptions) (*Response, error) {
	ref, err := c.MasterRef(ctx)
	if err != nil {
		return nil, err
	}

	u := c.endpoint.JoinPath("documents", "search")
	q := u.Query()
	q.Set("ref", ref)
	if len(predicates) > 0 {
		q.Set("q", query(predicates))
	}
	if len(opts.Fetch) > 0 {
		q.Set("fetch", strings.Join(opts.Fetch, ","))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	u.RawQuery = q.Encode()

	return c.search(ctx, *u)
}

// QueryURL fetches an opaque next_page URL returned by an earlier query. The
// URL must point at this client's search endpoint.
func (c *Client) QueryURL(ctx context.Context, pageURL string) (*Response, error) {
	u, err := c.ValidatePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, *u)
}

// search runs a documents/search request. The API echoes the access token
// into next_page and prev_page; it is removed so the pointers can be stored
// and handed to browsers. withToken adds it back on the next request.
func (c *Client) search(ctx context.Context, u url.URL) (*Response, error) {
	var resp Response
	err := c.get(ctx, c.withToken(u), &resp)
	if err != nil {
		return nil, err
	}
	resp.NextPage = withoutToken(resp.NextPage)
	resp.PrevPage = withoutToken(resp.PrevPage)
	return &resp, nil
}

// GetByUID returns the document of the given type with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string) (*Document, error) {
	resp, err := c.Query(ctx, []string{At("my."+docType+".uid", uid)}, QueryOptions{PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrDocumentNotFound, docType, uid)
	}
	return &resp.Results[0], nil
}

// ValidatePageURL parses pageURL and checks that it targets the search
// endpoint of the configured API.
func (c *Client) ValidatePageURL(pageURL string) (*url.URL, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	searchPath := c.endpoint.JoinPath("documents", "search").Path
	if u.Scheme != c.endpoint.Scheme || u.Host != c.endpoint.Host || u.Path != searchPath {
		return nil, fmt.Errorf("%w: %s", ErrForeignURL, pageURL)
	}
	return u, nil
}

func (c *Client) withToken(u url.URL) string {
	if c.accessToken == "" {
		return u.String()
	}
	q := u.Query()
	if q.Get("access_token") == "" {
		q.Set("access_token", c.accessToken)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func withoutToken(pageURL *string) *string {
	if pageURL == nil {
		return nil
	}
	u, err := url.Parse(*pageURL)
	if err != nil {
		return pageURL
	}
	q := u.Query()
	if !q.Has("access_token") {
		return pageURL
	}
	q.Del("access_token")
	u.RawQuery = q.Encode()
	stripped := u.String()
	return &stripped
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewExponential(retryBase))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		temporary, err := c.getOnce(ctx, rawURL, out)
		if err != nil && temporary && attempt <= c.maxRetries {
			slog.Debug("content api request failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) getOnce(ctx context.Context, rawURL string, out any) (temporary bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, URL: redact(rawURL)}
		return apiErr.Temporary(), apiErr
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return false, nil
}

// redact strips the access token from a URL before it ends up in errors/logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
