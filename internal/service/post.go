// Package service orchestrates the domain operations behind the HTTP
// handlers: posting, voting, profiles, hashtags, and search.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/id"
	"github.com/rebelpost/rebelpost-server/internal/ledger"
	"github.com/rebelpost/rebelpost-server/internal/normalize"
	"github.com/rebelpost/rebelpost-server/internal/ratelimit"
	"github.com/rebelpost/rebelpost-server/internal/sse"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// MaxPostLength bounds post text, matching the client's composer.
const MaxPostLength = 500

// PostService orchestrates post creation and feed reads.
type PostService struct {
	store      *store.Store
	ledger     *ledger.Ledger
	search     *SearchService
	sseManager *sse.Manager
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(
	st *store.Store,
	l *ledger.Ledger,
	search *SearchService,
	sseManager *sse.Manager,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		store:      st,
		ledger:     l,
		search:     search,
		sseManager: sseManager,
		limiter:    limiter,
		logger:     logger,
	}
}

// CreatePostInput is the submission payload. Tags arrives untyped:
// clients send whatever they extracted, and non-string or empty
// entries are dropped rather than rejected.
type CreatePostInput struct {
	AuthorKey string
	Text      string
	Tags      []any
}

// CreatePost stores a post and feeds it through the reputation ledger.
//
// The ledger call follows the trigger contract: its failure is logged
// and does not fail the post. The post is already durable at that
// point; reputation catches up when the author next posts or is voted
// on, and losing a point is preferable to losing the post.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*domain.Post, error) {
	if input.AuthorKey == "" {
		return nil, apperrors.Validation("author key is required")
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.Validation("post text is required")
	}
	if len(text) > MaxPostLength {
		return nil, apperrors.Validationf("post text exceeds %d characters", MaxPostLength)
	}

	if s.limiter != nil && !s.limiter.Allow(input.AuthorKey) {
		return nil, apperrors.RateLimited("posting too fast, slow down")
	}

	// Tags come from the client's extraction plus whatever the text
	// itself carries; the union keeps both honest.
	tags := normalize.SanitizeTags(input.Tags)
	for _, tag := range normalize.ExtractHashtags(text) {
		found := false
		for _, t := range tags {
			if t == tag {
				found = true
				break
			}
		}
		if !found {
			tags = append(tags, tag)
		}
	}

	postID, err := id.Generate("post")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "generate post id")
	}

	post := &domain.Post{
		ID:        postID,
		AuthorKey: input.AuthorKey,
		Text:      text,
		Hashtags:  tags,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "store post")
	}

	result, err := s.ledger.Apply(ctx, ledger.Event{
		AuthorKey:       post.AuthorKey,
		Tags:            post.Hashtags,
		Delta:           ledger.PointsForPosting,
		TouchLastActive: true,
	})
	if err != nil {
		s.logger.Error("ledger apply failed for post",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()))
	}

	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewPostCreatedEvent(post))
		if result != nil {
			for _, tag := range result.FoundedTags {
				s.sseManager.Emit(sse.NewHashtagFoundedEvent(tag, post.AuthorKey))
			}
		}
	}

	if s.search != nil {
		if err := s.search.IndexPost(post); err != nil {
			s.logger.Warn("failed to index post",
				slog.String("post_id", post.ID),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("post created",
		slog.String("post_id", post.ID),
		slog.Int("tags", len(post.Hashtags)))

	return post, nil
}

// GetPost returns a post with its vote tallies.
func (s *PostService) GetPost(ctx context.Context, postID string) (*domain.Post, []domain.VoteTally, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, nil, apperrors.NotFound("post not found")
		}
		return nil, nil, err
	}

	tallies, err := s.store.TallyVotes(ctx, postID)
	if err != nil {
		return nil, nil, err
	}

	return post, tallies, nil
}

// ListFeed returns the global feed, newest first.
func (s *PostService) ListFeed(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Post], error) {
	result, err := s.store.ListPosts(ctx, params)
	if err != nil {
		if apperrors.Is(err, store.ErrInvalidInput) {
			return nil, apperrors.Validation("invalid feed cursor")
		}
		return nil, err
	}
	return result, nil
}

// ListFeedByTag returns a hashtag's feed, newest first.
func (s *PostService) ListFeedByTag(ctx context.Context, tag string, params store.PaginationParams) (*store.PaginatedResult[*domain.Post], error) {
	tag = normalize.Hashtag(tag)
	if tag == "" {
		return nil, apperrors.Validation("tag is required")
	}

	result, err := s.store.ListPostsByTag(ctx, tag, params)
	if err != nil {
		if apperrors.Is(err, store.ErrInvalidInput) {
			return nil, apperrors.Validation("invalid feed cursor")
		}
		return nil, err
	}
	return result, nil
}
