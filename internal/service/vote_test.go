package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
)

func createVotablePost(t *testing.T, env *testEnv, author string) *domain.Post {
	t.Helper()

	post, err := env.posts.CreatePost(context.Background(), CreatePostInput{
		AuthorKey: author,
		Text:      "rise up #rebellion",
	})
	require.NoError(t, err)
	return post
}

func TestProcessVote_Validation(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	post := createVotablePost(t, env, "user-a")

	cases := []struct {
		name  string
		input VoteInput
	}{
		{"missing voter", VoteInput{PostID: post.ID, Tag: "rebellion", Direction: 1}},
		{"bad direction", VoteInput{PostID: post.ID, VoterKey: "user-b", Tag: "rebellion", Direction: 2}},
		{"zero direction", VoteInput{PostID: post.ID, VoterKey: "user-b", Tag: "rebellion"}},
		{"missing tag", VoteInput{PostID: post.ID, VoterKey: "user-b", Direction: 1}},
		{"tag not on post", VoteInput{PostID: post.ID, VoterKey: "user-b", Tag: "other", Direction: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.votes.ProcessVote(ctx, tc.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestProcessVote_PostNotFound(t *testing.T) {
	env := setupTestServices(t)

	_, err := env.votes.ProcessVote(context.Background(), VoteInput{
		PostID: "missing", VoterKey: "user-b", Tag: "rebellion", Direction: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProcessVote_SelfVoteRejected(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	post := createVotablePost(t, env, "user-a")

	_, err := env.votes.ProcessVote(ctx, VoteInput{
		PostID: post.ID, VoterKey: "user-a", Tag: "rebellion", Direction: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// The rejected vote must not touch the ledger.
	p, err := env.store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reputation("rebellion")) // Only the posting point.
}

func TestProcessVote_UpvoteCreditsPostAuthor(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	post := createVotablePost(t, env, "user-a")

	vote, err := env.votes.ProcessVote(ctx, VoteInput{
		PostID: post.ID, VoterKey: "user-b", Tag: "rebellion", Direction: domain.VoteUp,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VoteUp, vote.Direction)

	// The author gains the point; the voter's profile is untouched by
	// this event.
	author, err := env.store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 2, author.Reputation("rebellion")) // Post +1, upvote +1.

	exists, err := env.store.UserProfileExists(ctx, "user-b")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProcessVote_DownvoteWithFloor(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	post := createVotablePost(t, env, "user-a")

	voters := []string{"user-b", "user-c", "user-d"}
	for _, voter := range voters {
		_, err := env.votes.ProcessVote(ctx, VoteInput{
			PostID: post.ID, VoterKey: voter, Tag: "rebellion", Direction: domain.VoteDown,
		})
		require.NoError(t, err)
	}

	author, err := env.store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0, author.Reputation("rebellion"), "score clamps at the floor")
}

func TestProcessVote_SameDirectionIsIdempotent(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	post := createVotablePost(t, env, "user-a")

	input := VoteInput{PostID: post.ID, VoterKey: "user-b", Tag: "rebellion", Direction: domain.VoteUp}

	_, err := env.votes.ProcessVote(ctx, input)
	require.NoError(t, err)
	_, err = env.votes.ProcessVote(ctx, input)
	require.NoError(t, err)

	author, err := env.store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 2, author.Reputation("rebellion"), "repeat vote must not double-count")

	tallies, err := env.votes.Tallies(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, 1, tallies[0].Upvotes)
}

func TestProcessVote_DirectionChange(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	post := createVotablePost(t, env, "user-a")

	_, err := env.votes.ProcessVote(ctx, VoteInput{
		PostID: post.ID, VoterKey: "user-b", Tag: "rebellion", Direction: domain.VoteUp,
	})
	require.NoError(t, err)

	_, err = env.votes.ProcessVote(ctx, VoteInput{
		PostID: post.ID, VoterKey: "user-b", Tag: "rebellion", Direction: domain.VoteDown,
	})
	require.NoError(t, err)

	// Post +1, upvote +1, then downvote -1.
	author, err := env.store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1, author.Reputation("rebellion"))

	// The tally reflects only the latest direction.
	tallies, err := env.votes.Tallies(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, 0, tallies[0].Upvotes)
	assert.Equal(t, 1, tallies[0].Downvotes)
}

func TestTallies_PostNotFound(t *testing.T) {
	env := setupTestServices(t)

	_, err := env.votes.Tallies(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
