package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/ledger"
	"github.com/rebelpost/rebelpost-server/internal/ratelimit"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store *store.Store
	posts *PostService
	votes *VoteService
}

func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "rebelpost-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tmpDir)
	})

	logger := discardLogger()
	l := ledger.New(s, logger)

	return &testEnv{
		store: s,
		posts: NewPostService(s, l, nil, nil, nil, logger),
		votes: NewVoteService(s, l, nil, nil, logger),
	}
}

func TestCreatePost_Validation(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	_, err := env.posts.CreatePost(ctx, CreatePostInput{Text: "hello"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{AuthorKey: "user-a", Text: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{
		AuthorKey: "user-a",
		Text:      strings.Repeat("x", MaxPostLength+1),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreatePost_ExtractsTagsAndAppliesLedger(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		AuthorKey: "user-a",
		Text:      "viva la #rebellion and #freedom",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rebellion", "freedom"}, post.Hashtags)

	// Ledger side effects landed.
	p, err := env.store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reputation("rebellion"))
	assert.Equal(t, 1, p.Reputation("freedom"))
	assert.True(t, p.Founded("rebellion"))

	h, err := env.store.GetHashtag(ctx, "rebellion")
	require.NoError(t, err)
	assert.Equal(t, "user-a", h.FounderUserKey)

	// The post itself is durable.
	got, err := env.store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Text, got.Text)
}

func TestCreatePost_SanitizesClientTags(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		AuthorKey: "user-a",
		Text:      "no inline tags here",
		Tags:      []any{"", 123, "valid"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"valid"}, post.Hashtags)

	p, err := env.store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reputation("valid"))
	assert.Len(t, p.ReputationByHashtag, 1)
}

func TestCreatePost_MergesClientAndInlineTags(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		AuthorKey: "user-a",
		Text:      "posting about #rebellion",
		Tags:      []any{"rebellion", "extra"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rebellion", "extra"}, post.Hashtags)
}

func TestCreatePost_RateLimited(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	limiter := ratelimit.New(ratelimit.PerMinute(6), 1)
	defer limiter.Stop()
	env.posts.limiter = limiter

	_, err := env.posts.CreatePost(ctx, CreatePostInput{AuthorKey: "user-a", Text: "first"})
	require.NoError(t, err)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{AuthorKey: "user-a", Text: "second"})
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)

	// Other users are unaffected.
	_, err = env.posts.CreatePost(ctx, CreatePostInput{AuthorKey: "user-b", Text: "fine"})
	assert.NoError(t, err)
}

func TestGetPost_WithTallies(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, CreatePostInput{
		AuthorKey: "user-a",
		Text:      "#rebellion rises",
	})
	require.NoError(t, err)

	_, err = env.votes.ProcessVote(ctx, VoteInput{
		PostID:    post.ID,
		VoterKey:  "user-b",
		Tag:       "rebellion",
		Direction: 1,
	})
	require.NoError(t, err)

	got, tallies, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	require.Len(t, tallies, 1)
	assert.Equal(t, 1, tallies[0].Upvotes)

	_, _, err = env.posts.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListFeed(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	for _, text := range []string{"#a one", "#b two", "#a three"} {
		_, err := env.posts.CreatePost(ctx, CreatePostInput{AuthorKey: "user-a", Text: text})
		require.NoError(t, err)
	}

	feed, err := env.posts.ListFeed(ctx, store.PaginationParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, feed.Items, 3)
	assert.Equal(t, "#a three", feed.Items[0].Text)

	tagFeed, err := env.posts.ListFeedByTag(ctx, "a", store.PaginationParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, tagFeed.Items, 2)

	_, err = env.posts.ListFeedByTag(ctx, "", store.PaginationParams{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
