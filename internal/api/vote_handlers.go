package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rebelpost/rebelpost-server/internal/service"
)

func (s *Server) registerVoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "castVote",
		Method:      http.MethodPost,
		Path:        "/api/v1/votes",
		Summary:     "Cast vote",
		Description: "Votes on one hashtag of a post; the reputation delta lands on the post's author",
		Tags:        []string{"Votes"},
	}, s.handleCastVote)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPostTallies",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/tallies",
		Summary:     "Get vote tallies",
		Description: "Returns per-hashtag vote tallies for a post",
		Tags:        []string{"Votes"},
	}, s.handleGetTallies)
}

// === DTOs ===

// CastVoteRequest is the request body for casting a vote.
type CastVoteRequest struct {
	PostID    string `json:"post_id" minLength:"1" doc:"Post being voted on"`
	VoterKey  string `json:"voter_key" minLength:"1" doc:"Voter's user key"`
	Tag       string `json:"tag" minLength:"1" doc:"Hashtag the vote applies to"`
	Direction int    `json:"direction" enum:"1,-1" doc:"+1 for upvote, -1 for downvote"`
}

// CastVoteInput wraps the cast vote request for Huma.
type CastVoteInput struct {
	Body CastVoteRequest
}

// VoteResponse contains the recorded vote.
type VoteResponse struct {
	PostID    string    `json:"post_id" doc:"Post ID"`
	Tag       string    `json:"tag" doc:"Hashtag"`
	VoterKey  string    `json:"voter_key" doc:"Voter's user key"`
	Direction int       `json:"direction" doc:"Recorded direction"`
	CreatedAt time.Time `json:"created_at" doc:"First vote time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last vote time"`
}

// VoteOutput wraps the vote response for Huma.
type VoteOutput struct {
	Body VoteResponse
}

// GetTalliesInput contains parameters for reading a post's tallies.
type GetTalliesInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// TalliesResponse contains all tallies of one post.
type TalliesResponse struct {
	PostID  string          `json:"post_id" doc:"Post ID"`
	Tallies []TallyResponse `json:"tallies" doc:"Per-tag vote tallies"`
}

// TalliesOutput wraps the tallies response for Huma.
type TalliesOutput struct {
	Body TalliesResponse
}

// === Handlers ===

func (s *Server) handleCastVote(ctx context.Context, input *CastVoteInput) (*VoteOutput, error) {
	v, err := s.services.Vote.ProcessVote(ctx, service.VoteInput{
		PostID:    input.Body.PostID,
		VoterKey:  input.Body.VoterKey,
		Tag:       input.Body.Tag,
		Direction: input.Body.Direction,
	})
	if err != nil {
		return nil, err
	}

	return &VoteOutput{
		Body: VoteResponse{
			PostID:    v.PostID,
			Tag:       v.Tag,
			VoterKey:  v.VoterKey,
			Direction: v.Direction,
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		},
	}, nil
}

func (s *Server) handleGetTallies(ctx context.Context, input *GetTalliesInput) (*TalliesOutput, error) {
	tallies, err := s.services.Vote.Tallies(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &TalliesOutput{
		Body: TalliesResponse{
			PostID:  input.ID,
			Tallies: toTallyResponses(tallies),
		},
	}, nil
}
