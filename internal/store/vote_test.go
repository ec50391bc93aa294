package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

func TestSaveVote_FirstVote(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	prev, err := store.SaveVote(ctx, &domain.Vote{
		PostID:    "post-1",
		Tag:       "golang",
		VoterKey:  "user-b",
		Direction: domain.VoteUp,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, prev)

	v, err := store.GetVote(ctx, "post-1", "golang", "user-b")
	require.NoError(t, err)
	assert.Equal(t, domain.VoteUp, v.Direction)
}

func TestSaveVote_ChangedDirection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	first := time.Now().Add(-time.Minute)

	_, err := store.SaveVote(ctx, &domain.Vote{
		PostID:    "post-1",
		Tag:       "golang",
		VoterKey:  "user-b",
		Direction: domain.VoteUp,
		CreatedAt: first,
		UpdatedAt: first,
	})
	require.NoError(t, err)

	now := time.Now()
	prev, err := store.SaveVote(ctx, &domain.Vote{
		PostID:    "post-1",
		Tag:       "golang",
		VoterKey:  "user-b",
		Direction: domain.VoteDown,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VoteUp, prev)

	v, err := store.GetVote(ctx, "post-1", "golang", "user-b")
	require.NoError(t, err)
	assert.Equal(t, domain.VoteDown, v.Direction)
	assert.True(t, v.CreatedAt.Equal(first), "upsert keeps the original cast time")
}

func TestGetVote_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetVote(context.Background(), "post-1", "golang", "user-b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTallyVotes(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	votes := []*domain.Vote{
		{PostID: "post-1", Tag: "golang", VoterKey: "user-b", Direction: domain.VoteUp},
		{PostID: "post-1", Tag: "golang", VoterKey: "user-c", Direction: domain.VoteUp},
		{PostID: "post-1", Tag: "golang", VoterKey: "user-d", Direction: domain.VoteDown},
		{PostID: "post-1", Tag: "badger", VoterKey: "user-b", Direction: domain.VoteDown},
		{PostID: "post-2", Tag: "golang", VoterKey: "user-b", Direction: domain.VoteUp},
	}
	for _, v := range votes {
		v.CreatedAt = now
		v.UpdatedAt = now
		_, err := store.SaveVote(ctx, v)
		require.NoError(t, err)
	}

	tallies, err := store.TallyVotes(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, tallies, 2)

	// Sorted alphabetically by tag.
	assert.Equal(t, "badger", tallies[0].Tag)
	assert.Equal(t, 0, tallies[0].Upvotes)
	assert.Equal(t, 1, tallies[0].Downvotes)
	assert.Equal(t, -1, tallies[0].Score())

	assert.Equal(t, "golang", tallies[1].Tag)
	assert.Equal(t, 2, tallies[1].Upvotes)
	assert.Equal(t, 1, tallies[1].Downvotes)
	assert.Equal(t, 1, tallies[1].Score())
}

func TestListVotesByVoter(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	for _, v := range []*domain.Vote{
		{PostID: "post-1", Tag: "golang", VoterKey: "user-b", Direction: domain.VoteUp},
		{PostID: "post-2", Tag: "rust", VoterKey: "user-b", Direction: domain.VoteDown},
		{PostID: "post-1", Tag: "golang", VoterKey: "user-c", Direction: domain.VoteUp},
	} {
		v.CreatedAt = now
		v.UpdatedAt = now
		_, err := store.SaveVote(ctx, v)
		require.NoError(t, err)
	}

	votes, err := store.ListVotesByVoter(ctx, "user-b")
	require.NoError(t, err)
	assert.Len(t, votes, 2)
}
