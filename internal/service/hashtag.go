package service

import (
	"context"
	"log/slog"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/normalize"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// HashtagService serves the read side of hashtags.
type HashtagService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHashtagService creates a new hashtag service.
func NewHashtagService(st *store.Store, logger *slog.Logger) *HashtagService {
	return &HashtagService{store: st, logger: logger}
}

// HashtagInfo is a hashtag document enriched with its post count.
type HashtagInfo struct {
	*domain.Hashtag
	PostCount int `json:"post_count"`
}

// GetHashtag returns one hashtag with its post count.
func (s *HashtagService) GetHashtag(ctx context.Context, tag string) (*HashtagInfo, error) {
	tag = normalize.Hashtag(tag)
	if tag == "" {
		return nil, apperrors.Validation("tag is required")
	}

	h, err := s.store.GetHashtag(ctx, tag)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("hashtag not found")
		}
		return nil, err
	}

	count, err := s.store.CountPostsByTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	return &HashtagInfo{Hashtag: h, PostCount: count}, nil
}

// ListHashtags returns all hashtags with post counts, alphabetical.
func (s *HashtagService) ListHashtags(ctx context.Context) ([]*HashtagInfo, error) {
	hashtags, err := s.store.ListHashtags(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*HashtagInfo, len(hashtags))
	for i, h := range hashtags {
		count, err := s.store.CountPostsByTag(ctx, h.Tag)
		if err != nil {
			return nil, err
		}
		out[i] = &HashtagInfo{Hashtag: h, PostCount: count}
	}
	return out, nil
}
