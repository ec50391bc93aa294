package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rebelpost/rebelpost-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{userKey}",
		Summary:     "Get profile",
		Description: "Returns a user's reputation profile",
		Tags:        []string{"Profiles"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard",
		Summary:     "Get leaderboard",
		Description: "Returns profiles ordered by total reputation",
		Tags:        []string{"Profiles"},
	}, s.handleLeaderboard)
}

// === DTOs ===

// ProfileResponse contains profile data in API responses.
type ProfileResponse struct {
	UserKey             string         `json:"user_key" doc:"User key (passkey digest)"`
	ReputationByHashtag map[string]int `json:"reputation_by_hashtag" doc:"Per-hashtag reputation scores"`
	FoundedHashtags     []string       `json:"founded_hashtags" doc:"Hashtags this user founded"`
	TotalReputation     int            `json:"total_reputation" doc:"Sum of all per-hashtag scores"`
	Color               string         `json:"color" doc:"Identity color derived from the key"`
	CreatedAt           time.Time      `json:"created_at" doc:"Profile creation time"`
	LastActive          time.Time      `json:"last_active" doc:"Last posting activity"`
}

func toProfileResponse(p *service.Profile) ProfileResponse {
	return ProfileResponse{
		UserKey:             p.UserKey,
		ReputationByHashtag: p.ReputationByHashtag,
		FoundedHashtags:     p.FoundedHashtags,
		TotalReputation:     p.TotalReputation,
		Color:               p.Color,
		CreatedAt:           p.CreatedAt,
		LastActive:          p.LastActive,
	}
}

// GetProfileInput contains parameters for getting a profile.
type GetProfileInput struct {
	UserKey string `path:"userKey" doc:"User key"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// LeaderboardResponse contains profiles ordered by total reputation.
type LeaderboardResponse struct {
	Profiles []ProfileResponse `json:"profiles" doc:"Profiles, highest total reputation first"`
}

// LeaderboardOutput wraps the leaderboard response for Huma.
type LeaderboardOutput struct {
	Body LeaderboardResponse
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	p, err := s.services.Profile.GetProfile(ctx, input.UserKey)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: toProfileResponse(p)}, nil
}

func (s *Server) handleLeaderboard(ctx context.Context, _ *struct{}) (*LeaderboardOutput, error) {
	profiles, err := s.services.Profile.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		resp[i] = toProfileResponse(p)
	}

	return &LeaderboardOutput{Body: LeaderboardResponse{Profiles: resp}}, nil
}
