package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	"github.com/rebelpost/rebelpost-server/internal/service"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createPost",
		Method:      http.MethodPost,
		Path:        "/api/v1/posts",
		Summary:     "Create post",
		Description: "Publishes a post and credits the author through the reputation ledger",
		Tags:        []string{"Posts"},
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List feed",
		Description: "Returns posts newest first with cursor pagination",
		Tags:        []string{"Posts"},
	}, s.handleListFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Get post",
		Description: "Returns a post with its vote tallies",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeedByTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/hashtags/{tag}/posts",
		Summary:     "List posts by hashtag",
		Description: "Returns posts carrying one hashtag, newest first",
		Tags:        []string{"Posts"},
	}, s.handleListFeedByTag)
}

// === DTOs ===

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID        string    `json:"id" doc:"Post ID"`
	AuthorKey string    `json:"author_key" doc:"Author's user key"`
	Text      string    `json:"text" doc:"Post text"`
	Hashtags  []string  `json:"hashtags" doc:"Normalized hashtags"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func toPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		AuthorKey: p.AuthorKey,
		Text:      p.Text,
		Hashtags:  p.Hashtags,
		CreatedAt: p.CreatedAt,
	}
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	AuthorKey string `json:"author_key" minLength:"1" doc:"Author's user key (passkey digest)"`
	Text      string `json:"text" minLength:"1" maxLength:"500" doc:"Post text"`
	Tags      []any  `json:"tags,omitempty" doc:"Client-extracted hashtags; non-string entries are dropped"`
}

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Body CreatePostRequest
}

// PostOutput wraps a single post response for Huma.
type PostOutput struct {
	Body PostResponse
}

// TallyResponse contains one per-tag vote tally.
type TallyResponse struct {
	Tag       string `json:"tag" doc:"Hashtag"`
	Upvotes   int    `json:"upvotes" doc:"Number of upvotes"`
	Downvotes int    `json:"downvotes" doc:"Number of downvotes"`
	Score     int    `json:"score" doc:"Net score"`
}

func toTallyResponses(tallies []domain.VoteTally) []TallyResponse {
	resp := make([]TallyResponse, len(tallies))
	for i, t := range tallies {
		resp[i] = TallyResponse{
			Tag:       t.Tag,
			Upvotes:   t.Upvotes,
			Downvotes: t.Downvotes,
			Score:     t.Score(),
		}
	}
	return resp
}

// PostDetailResponse contains a post with its vote tallies.
type PostDetailResponse struct {
	PostResponse
	Tallies []TallyResponse `json:"tallies" doc:"Per-tag vote tallies"`
}

// GetPostInput contains parameters for getting a post.
type GetPostInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// PostDetailOutput wraps the post detail response for Huma.
type PostDetailOutput struct {
	Body PostDetailResponse
}

// ListFeedInput contains feed pagination parameters.
type ListFeedInput struct {
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page"`
}

// FeedResponse contains one page of posts.
type FeedResponse struct {
	Posts      []PostResponse `json:"posts" doc:"Posts, newest first"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
}

// FeedOutput wraps the feed response for Huma.
type FeedOutput struct {
	Body FeedResponse
}

// ListFeedByTagInput contains parameters for a per-hashtag feed.
type ListFeedByTagInput struct {
	Tag    string `path:"tag" doc:"Hashtag"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page"`
}

// === Handlers ===

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	p, err := s.services.Post.CreatePost(ctx, service.CreatePostInput{
		AuthorKey: input.Body.AuthorKey,
		Text:      input.Body.Text,
		Tags:      input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &PostOutput{Body: toPostResponse(p)}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *GetPostInput) (*PostDetailOutput, error) {
	p, tallies, err := s.services.Post.GetPost(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PostDetailOutput{
		Body: PostDetailResponse{
			PostResponse: toPostResponse(p),
			Tallies:      toTallyResponses(tallies),
		},
	}, nil
}

func (s *Server) handleListFeed(ctx context.Context, input *ListFeedInput) (*FeedOutput, error) {
	page, err := s.services.Post.ListFeed(ctx, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: toFeedResponse(page)}, nil
}

func (s *Server) handleListFeedByTag(ctx context.Context, input *ListFeedByTagInput) (*FeedOutput, error) {
	page, err := s.services.Post.ListFeedByTag(ctx, input.Tag, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: toFeedResponse(page)}, nil
}

func toFeedResponse(page *store.PaginatedResult[*domain.Post]) FeedResponse {
	posts := make([]PostResponse, len(page.Items))
	for i, p := range page.Items {
		posts[i] = toPostResponse(p)
	}
	return FeedResponse{
		Posts:      posts,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
}
