package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rebelpost/rebelpost-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search posts",
		Description: "Full-text search over post text with hashtag and author filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching posts.
type SearchInput struct {
	Query     string `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search query"`
	Hashtags  string `query:"hashtags" doc:"Comma-separated hashtags to filter by"`
	AuthorKey string `query:"author" doc:"Filter to one author's posts"`
	Limit     int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Max results"`
	Offset    int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	Sort      string `query:"sort" enum:"relevance,recent" default:"relevance" doc:"Result ordering"`
	Facets    bool   `query:"facets" doc:"Include hashtag facet counts"`
	Highlight bool   `query:"highlight" doc:"Include match highlighting"`
}

// SearchHitResult contains a single matching post.
type SearchHitResult struct {
	ID         string            `json:"id" doc:"Post ID"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	Text       string            `json:"text" doc:"Post text"`
	AuthorKey  string            `json:"author_key" doc:"Author's user key"`
	Hashtags   []string          `json:"hashtags,omitempty" doc:"Post hashtags"`
	CreatedAt  int64             `json:"created_at" doc:"Creation time (unix seconds)"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Matching posts"`
	Facets []FacetCount      `json:"facets,omitempty" doc:"Hashtag facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.SearchParams{
		Query:         input.Query,
		AuthorKey:     input.AuthorKey,
		Limit:         input.Limit,
		Offset:        input.Offset,
		SortBy:        input.Sort,
		IncludeFacets: input.Facets,
		Highlight:     input.Highlight,
	}

	if input.Hashtags != "" {
		for tag := range strings.SplitSeq(input.Hashtags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				params.Hashtags = append(params.Hashtags, tag)
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResult, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResult{
			ID:         h.ID,
			Score:      h.Score,
			Text:       h.Text,
			AuthorKey:  h.AuthorKey,
			Hashtags:   h.Hashtags,
			CreatedAt:  h.CreatedAt,
			Highlights: h.Highlights,
		}
	}

	resp := SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}
	for _, f := range result.Facets {
		resp.Facets = append(resp.Facets, FacetCount{Value: f.Value, Count: f.Count})
	}

	return &SearchOutput{Body: resp}, nil
}
