package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	Hashtags  []string // Filter to posts carrying any of these tags
	AuthorKey string   // Filter to one author's posts

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy string // "relevance" or "recent"

	// Options
	IncludeFacets bool // Include hashtag facet counts
	Highlight     bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets []FacetCount `json:"facets,omitempty"` // Hashtag counts
}

// SearchHit represents a single matching post.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Text       string            `json:"text"`
	AuthorKey  string            `json:"author_key"`
	Hashtags   []string          `json:"hashtags,omitempty"`
	CreatedAt  int64             `json:"created_at"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("hashtags", bleve.NewFacetRequest("hashtags", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("text")
	}

	searchRequest.Fields = []string{"id", "text", "author_key", "hashtags", "created_at"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["text"].(string); ok {
			searchHit.Text = t
		}
		if a, ok := hit.Fields["author_key"].(string); ok {
			searchHit.AuthorKey = a
		}
		if c, ok := hit.Fields["created_at"].(float64); ok {
			searchHit.CreatedAt = int64(c)
		}

		// Bleve stores a single-element slice field as a bare value.
		switch tags := hit.Fields["hashtags"].(type) {
		case string:
			searchHit.Hashtags = []string{tags}
		case []any:
			for _, tag := range tags {
				if t, ok := tag.(string); ok {
					searchHit.Hashtags = append(searchHit.Hashtags, t)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		if tagFacet, ok := searchResult.Facets["hashtags"]; ok {
			for _, term := range tagFacet.Terms.Terms() {
				result.Facets = append(result.Facets, FacetCount{
					Value: term.Term,
					Count: term.Count,
				})
			}
		}
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Main match on post text.
		textMatch := bleve.NewMatchQuery(params.Query)
		textMatch.SetField("text")
		textMatch.SetBoost(3.0)
		textQueries = append(textQueries, textMatch)

		// Fuzzy matching for typo tolerance.
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("text")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("text")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Hashtag filter (exact match, OR across tags).
	if len(params.Hashtags) > 0 {
		tagQueries := make([]query.Query, len(params.Hashtags))
		for i, tag := range params.Hashtags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("hashtags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	// Author filter (exact match on the digest).
	if params.AuthorKey != "" {
		aq := bleve.NewTermQuery(params.AuthorKey)
		aq.SetField("author_key")
		queries = append(queries, aq)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "recent":
		req.SortBy([]string{"-created_at"})
	default:
		// Relevance (score) is default.
		req.SortBy([]string{"-_score"})
	}
}
