package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rebelpost/rebelpost-server/internal/service"
)

func (s *Server) registerHashtagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHashtags",
		Method:      http.MethodGet,
		Path:        "/api/v1/hashtags",
		Summary:     "List hashtags",
		Description: "Returns all hashtags with founder and post count",
		Tags:        []string{"Hashtags"},
	}, s.handleListHashtags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHashtag",
		Method:      http.MethodGet,
		Path:        "/api/v1/hashtags/{tag}",
		Summary:     "Get hashtag",
		Description: "Returns one hashtag by its normalized text",
		Tags:        []string{"Hashtags"},
	}, s.handleGetHashtag)
}

// === DTOs ===

// HashtagResponse contains hashtag data in API responses.
type HashtagResponse struct {
	Tag            string    `json:"tag" doc:"Normalized hashtag text"`
	FounderUserKey string    `json:"founder_user_key,omitempty" doc:"User key of the founder"`
	PostCount      int       `json:"post_count" doc:"Number of posts carrying this tag"`
	CreatedAt      time.Time `json:"created_at" doc:"First appearance time"`
}

func toHashtagResponse(h *service.HashtagInfo) HashtagResponse {
	return HashtagResponse{
		Tag:            h.Tag,
		FounderUserKey: h.FounderUserKey,
		PostCount:      h.PostCount,
		CreatedAt:      h.CreatedAt,
	}
}

// GetHashtagInput contains parameters for getting a hashtag.
type GetHashtagInput struct {
	Tag string `path:"tag" doc:"Hashtag text"`
}

// HashtagOutput wraps a single hashtag response for Huma.
type HashtagOutput struct {
	Body HashtagResponse
}

// ListHashtagsResponse contains all hashtags.
type ListHashtagsResponse struct {
	Hashtags []HashtagResponse `json:"hashtags" doc:"Hashtags in alphabetical order"`
}

// ListHashtagsOutput wraps the list response for Huma.
type ListHashtagsOutput struct {
	Body ListHashtagsResponse
}

// === Handlers ===

func (s *Server) handleListHashtags(ctx context.Context, _ *struct{}) (*ListHashtagsOutput, error) {
	hashtags, err := s.services.Hashtag.ListHashtags(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]HashtagResponse, len(hashtags))
	for i, h := range hashtags {
		resp[i] = toHashtagResponse(h)
	}

	return &ListHashtagsOutput{Body: ListHashtagsResponse{Hashtags: resp}}, nil
}

func (s *Server) handleGetHashtag(ctx context.Context, input *GetHashtagInput) (*HashtagOutput, error) {
	h, err := s.services.Hashtag.GetHashtag(ctx, input.Tag)
	if err != nil {
		return nil, err
	}

	return &HashtagOutput{Body: toHashtagResponse(h)}, nil
}
