package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/ledger"
	"github.com/rebelpost/rebelpost-server/internal/normalize"
	"github.com/rebelpost/rebelpost-server/internal/ratelimit"
	"github.com/rebelpost/rebelpost-server/internal/sse"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// VoteService processes votes and feeds them through the ledger.
type VoteService struct {
	store      *store.Store
	ledger     *ledger.Ledger
	sseManager *sse.Manager
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// NewVoteService creates a new vote service.
func NewVoteService(
	st *store.Store,
	l *ledger.Ledger,
	sseManager *sse.Manager,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *VoteService {
	return &VoteService{
		store:      st,
		ledger:     l,
		sseManager: sseManager,
		limiter:    limiter,
		logger:     logger,
	}
}

// VoteInput is a single vote on one tag of one post.
type VoteInput struct {
	PostID    string
	VoterKey  string
	Tag       string
	Direction int // domain.VoteUp or domain.VoteDown
}

// ProcessVote validates a vote, applies the reputation delta to the
// post's author, and records the vote.
//
// Unlike post creation, ledger failures here surface to the caller:
// a vote IS its reputation effect, so reporting success without the
// ledger commit would silently mark the event as applied.
func (s *VoteService) ProcessVote(ctx context.Context, input VoteInput) (*domain.Vote, error) {
	if input.VoterKey == "" {
		return nil, apperrors.Validation("voter key is required")
	}
	if !domain.ValidDirection(input.Direction) {
		return nil, apperrors.Validation("vote direction must be +1 or -1")
	}

	tag := normalize.Hashtag(input.Tag)
	if tag == "" {
		return nil, apperrors.Validation("tag is required")
	}

	post, err := s.store.GetPost(ctx, input.PostID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, err
	}

	if post.AuthorKey == input.VoterKey {
		return nil, apperrors.Forbidden("cannot vote on your own post")
	}
	if !post.HasHashtag(tag) {
		return nil, apperrors.Validation("post does not carry this tag")
	}

	if s.limiter != nil && !s.limiter.Allow(input.VoterKey) {
		return nil, apperrors.RateLimited("voting too fast, slow down")
	}

	// Re-casting the same direction is idempotent: the reputation
	// effect already landed, so neither the ledger nor the tally moves.
	existing, err := s.store.GetVote(ctx, input.PostID, tag, input.VoterKey)
	if err != nil && !apperrors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Direction == input.Direction {
		return existing, nil
	}

	// The delta lands on the post's author, not the voter.
	if _, err := s.ledger.Apply(ctx, ledger.Event{
		AuthorKey: post.AuthorKey,
		Tags:      []string{tag},
		Delta:     input.Direction,
	}); err != nil {
		s.logger.Error("ledger apply failed for vote",
			slog.String("post_id", input.PostID),
			slog.String("tag", tag),
			slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now()
	vote := &domain.Vote{
		PostID:    input.PostID,
		Tag:       tag,
		VoterKey:  input.VoterKey,
		Direction: input.Direction,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.store.SaveVote(ctx, vote); err != nil {
		// The reputation delta already committed; the vote record is
		// the part that failed. Surface it so the caller can retry.
		s.logger.Error("vote record save failed after ledger commit",
			slog.String("post_id", input.PostID),
			slog.String("tag", tag),
			slog.String("error", err.Error()))
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "save vote")
	}

	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewVoteCastEvent(input.PostID, tag, input.Direction))
	}

	return vote, nil
}

// Tallies returns the per-tag vote tallies for a post.
func (s *VoteService) Tallies(ctx context.Context, postID string) ([]domain.VoteTally, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, err
	}
	return s.store.TallyVotes(ctx, postID)
}
