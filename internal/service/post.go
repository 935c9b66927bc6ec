package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/pagination"
	"github.com/templui/spacetraveling/internal/prismic"
)

var ErrPostNotFound = errors.New("post not found")

const postType = "post"

// allPostsPageSize is the largest page the content API serves.
const allPostsPageSize = 100

var listingFields = []string{"post.title", "post.subtitle", "post.author", "post.content"}

// PostService reads posts from the content API and normalizes them.
type PostService struct {
	client   *prismic.Client
	pageSize int
}

func NewPostService(client *prismic.Client, pageSize int) *PostService {
	if pageSize < 1 {
		pageSize = 1
	}
	return &PostService{
		client:   client,
		pageSize: pageSize,
	}
}

// FirstPage returns the first listing page.
func (s *PostService) FirstPage(ctx context.Context) (model.PostPagination, error) {
	return s.query(ctx, s.pageSize)
}

// FetchPage loads the listing page behind a next_page URL.
func (s *PostService) FetchPage(ctx context.Context, pageURL string) (*model.PostPagination, error) {
	resp, err := s.client.QueryURL(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	page, err := NormalizePage(resp)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ValidatePageURL reports whether pageURL may be passed to FetchPage.
func (s *PostService) ValidatePageURL(pageURL string) error {
	_, err := s.client.ValidatePageURL(pageURL)
	return err
}

// Post returns the post with the given uid.
func (s *PostService) Post(ctx context.Context, uid string) (model.Post, error) {
	doc, err := s.client.GetByUID(ctx, postType, uid)
	if errors.Is(err, prismic.ErrDocumentNotFound) {
		return model.Post{}, fmt.Errorf("%w: %s", ErrPostNotFound, uid)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to get post %s: %w", uid, err)
	}
	return NormalizePost(*doc)
}

// Posts returns every post in listing order, following next_page to the end.
func (s *PostService) Posts(ctx context.Context) ([]model.Post, error) {
	first, err := s.query(ctx, allPostsPageSize)
	if err != nil {
		return nil, err
	}

	all, err := pagination.NewController(s, first).LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return all.Results, nil
}

func (s *PostService) query(ctx context.Context, pageSize int) (model.PostPagination, error) {
	resp, err := s.client.Query(ctx,
		[]string{prismic.At("document.type", postType)},
		prismic.QueryOptions{Fetch: listingFields, PageSize: pageSize},
	)
	if err != nil {
		return model.PostPagination{}, fmt.Errorf("failed to query posts: %w", err)
	}
	return NormalizePage(resp)
}
