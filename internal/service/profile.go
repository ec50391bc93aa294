package service

import (
	"context"
	"log/slog"

	"github.com/rebelpost/rebelpost-server/internal/avatar"
	"github.com/rebelpost/rebelpost-server/internal/domain"
	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// ProfileService serves the read side of user profiles.
type ProfileService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(st *store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: st, logger: logger}
}

// Profile is a user profile enriched for display.
type Profile struct {
	*domain.UserProfile
	TotalReputation int    `json:"total_reputation"`
	Color           string `json:"color"` // Identity color derived from the key
}

// GetProfile returns a profile by user key.
func (s *ProfileService) GetProfile(ctx context.Context, userKey string) (*Profile, error) {
	if userKey == "" {
		return nil, apperrors.Validation("user key is required")
	}

	p, err := s.store.GetUserProfile(ctx, userKey)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("profile not found")
		}
		return nil, err
	}

	return &Profile{
		UserProfile:     p,
		TotalReputation: p.TotalReputation(),
		Color:           avatar.ColorForUser(userKey),
	}, nil
}

// Leaderboard returns all profiles ordered by total reputation.
func (s *ProfileService) Leaderboard(ctx context.Context) ([]*Profile, error) {
	profiles, err := s.store.ListUserProfiles(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*Profile, len(profiles))
	for i, p := range profiles {
		out[i] = &Profile{
			UserProfile:     p,
			TotalReputation: p.TotalReputation(),
			Color:           avatar.ColorForUser(p.UserKey),
		}
	}
	return out, nil
}
