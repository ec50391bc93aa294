package service

import (
	"context"
	"log/slog"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/search"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// SearchService keeps the Bleve index in sync with the store and
// answers queries.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, st *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  st,
		logger: logger,
	}
}

// IndexPost adds or updates a post in the index.
func (s *SearchService) IndexPost(p *domain.Post) error {
	return s.index.IndexPost(search.FromPost(p))
}

// Search runs a query against the post index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "search failed")
	}
	return result, nil
}

// DocumentCount returns how many posts the index currently holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from the store. Called at startup so
// the index never drifts from the documents across restarts.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	if err := s.index.Rebuild(); err != nil {
		return err
	}

	params := store.PaginationParams{Limit: 200}
	total := 0

	for {
		page, err := s.store.ListPosts(ctx, params)
		if err != nil {
			return err
		}

		docs := make([]*search.PostDocument, len(page.Items))
		for i, p := range page.Items {
			docs[i] = search.FromPost(p)
		}
		if err := s.index.IndexPosts(docs); err != nil {
			return err
		}
		total += len(docs)

		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	s.logger.Info("search reindex complete", slog.Int("posts", total))
	return nil
}
