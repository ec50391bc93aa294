package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

func setupTestLedger(t *testing.T) (*Ledger, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "rebelpost-ledger-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}

	return New(s, nil), s, cleanup
}

func postEvent(author string, tags ...string) Event {
	return Event{
		AuthorKey:       author,
		Tags:            tags,
		Delta:           PointsForPosting,
		TouchLastActive: true,
	}
}

func voteEvent(author string, delta int, tags ...string) Event {
	return Event{
		AuthorKey: author,
		Tags:      tags,
		Delta:     delta,
	}
}

func TestApply_MissingAuthor(t *testing.T) {
	l, _, cleanup := setupTestLedger(t)
	defer cleanup()

	_, err := l.Apply(context.Background(), postEvent("", "rebellion"))
	assert.ErrorIs(t, err, ErrMissingAuthor)
}

func TestApply_FirstPostFoundsHashtag(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	result, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
	require.NoError(t, err)
	assert.Equal(t, []string{"rebellion"}, result.FoundedTags)
	assert.Equal(t, 1, result.Reputation["rebellion"])

	h, err := s.GetHashtag(ctx, "rebellion")
	require.NoError(t, err)
	assert.Equal(t, "user-1", h.FounderUserKey)
	assert.False(t, h.CreatedAt.IsZero())

	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reputation("rebellion"))
	assert.True(t, p.Founded("rebellion"))
	assert.False(t, p.LastActive.IsZero())
}

func TestApply_FounderIsImmutable(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	_, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
	require.NoError(t, err)

	result, err := l.Apply(ctx, postEvent("user-2", "rebellion"))
	require.NoError(t, err)
	assert.Empty(t, result.FoundedTags, "an owned tag must not be re-founded")
	assert.Equal(t, 1, result.Reputation["rebellion"])

	h, err := s.GetHashtag(ctx, "rebellion")
	require.NoError(t, err)
	assert.Equal(t, "user-1", h.FounderUserKey)

	p2, err := s.GetUserProfile(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, p2.Founded("rebellion"))
	assert.Equal(t, 1, p2.Reputation("rebellion"))
}

func TestApply_AdoptsOrphanedHashtag(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	// A hashtag document that exists without resolved ownership.
	err := s.RunTransaction(ctx, func(txn *store.Txn) error {
		return txn.SetHashtag(&domain.Hashtag{Tag: "rebellion", CreatedAt: time.Now()})
	})
	require.NoError(t, err)

	result, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
	require.NoError(t, err)
	assert.Equal(t, []string{"rebellion"}, result.FoundedTags)

	h, err := s.GetHashtag(ctx, "rebellion")
	require.NoError(t, err)
	assert.Equal(t, "user-1", h.FounderUserKey)
}

func TestApply_ReputationAccumulates(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
		require.NoError(t, err)
	}

	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Reputation("rebellion"))
	assert.Len(t, p.FoundedHashtags, 1, "founding is recorded once")
}

func TestApply_ReputationFloor(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	_, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
	require.NoError(t, err)

	// Far more downvotes than the user has points.
	for i := 0; i < 4; i++ {
		result, err := l.Apply(ctx, voteEvent("user-1", domain.VoteDown, "rebellion"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Reputation["rebellion"], MinReputationScore)
	}

	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, MinReputationScore, p.Reputation("rebellion"))

	// Recovery from the floor starts at zero, not at a deficit.
	result, err := l.Apply(ctx, voteEvent("user-1", domain.VoteUp, "rebellion"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Reputation["rebellion"])
}

func TestApply_MultipleTags(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	result, err := l.Apply(ctx, postEvent("user-1", "rebellion", "freedom"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rebellion", "freedom"}, result.FoundedTags)

	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reputation("rebellion"))
	assert.Equal(t, 1, p.Reputation("freedom"))
	assert.Equal(t, 2, p.TotalReputation())
}

func TestApply_SkipsEmptyTags(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	result, err := l.Apply(ctx, postEvent("user-1", "", "rebellion", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"rebellion"}, result.FoundedTags)
	assert.Len(t, result.Reputation, 1)

	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalReputation())
	_, hasEmpty := p.ReputationByHashtag[""]
	assert.False(t, hasEmpty)
}

func TestApply_NoTagsStillTouchesProfile(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	result, err := l.Apply(ctx, postEvent("user-1"))
	require.NoError(t, err)
	assert.Empty(t, result.FoundedTags)

	// Posting without hashtags still creates the profile and stamps
	// last-active.
	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, p.LastActive.IsZero())
	assert.Equal(t, 0, p.TotalReputation())
}

func TestApply_VoteDoesNotTouchLastActive(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	_, err := l.Apply(ctx, voteEvent("user-1", domain.VoteUp, "rebellion"))
	require.NoError(t, err)

	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, p.LastActive.IsZero())
	assert.False(t, p.CreatedAt.IsZero())
}

func TestApply_ProfileCreatedAtIsStable(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	_, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
	require.NoError(t, err)

	first, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = l.Apply(ctx, postEvent("user-1", "rebellion"))
	require.NoError(t, err)

	second, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.LastActive.After(first.LastActive))
}

func TestApply_ConcurrentFounderRace(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()
	s.SetTxnRetries(100)

	ctx := context.Background()
	const writers = 16

	var wg sync.WaitGroup
	founded := make([]bool, writers)
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			author := fmt.Sprintf("user-%d", i)
			result, err := l.Apply(ctx, postEvent(author, "rebellion"))
			if err != nil {
				errs[i] = err
				return
			}
			founded[i] = len(result.FoundedTags) == 1
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		if founded[i] {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one writer may found the hashtag")

	// The stored founder matches the single writer that observed the
	// founding, and that writer's profile records it.
	h, err := s.GetHashtag(ctx, "rebellion")
	require.NoError(t, err)
	require.True(t, h.HasFounder())

	fp, err := s.GetUserProfile(ctx, h.FounderUserKey)
	require.NoError(t, err)
	assert.True(t, fp.Founded("rebellion"))

	// Every writer earned its point despite the contention.
	for i := 0; i < writers; i++ {
		p, err := s.GetUserProfile(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		assert.Equal(t, 1, p.Reputation("rebellion"))
	}
}

func TestApply_ConcurrentUpdatesNotLost(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()
	s.SetTxnRetries(200)

	ctx := context.Background()
	const events = 32

	var wg sync.WaitGroup
	errs := make([]error, events)

	// All events for the same author and tag: every increment must
	// survive the contention.
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Apply(ctx, postEvent("user-1", "rebellion"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < events; i++ {
		require.NoError(t, errs[i])
	}

	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, events, p.Reputation("rebellion"))
}

func TestApply_ConflictExhaustion(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()
	s.SetTxnRetries(1)

	ctx := context.Background()

	// A single attempt loses when something else commits to the
	// profile between its read and its commit. Simulate by racing the
	// same author hard with no retry budget.
	const events = 8
	var wg sync.WaitGroup
	errs := make([]error, events)
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Apply(ctx, postEvent("user-1", "rebellion"))
		}(i)
	}
	wg.Wait()

	exhausted := 0
	for i := 0; i < events; i++ {
		if errs[i] != nil {
			require.ErrorIs(t, errs[i], ErrConflictExhausted)
			exhausted++
		}
	}
	// With one attempt per event some are expected to give up; the
	// assertion is that failures surface as ErrConflictExhausted
	// rather than silently dropping points.
	p, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, events-exhausted, p.Reputation("rebellion"))
}

func TestApply_CancelledContext(t *testing.T) {
	l, _, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
	assert.ErrorIs(t, err, context.Canceled)
}

// Two users build a hashtag's history together: founder keeps
// ownership for good while reputation moves independently per user.
func TestApply_TwoUserScenario(t *testing.T) {
	l, s, cleanup := setupTestLedger(t)
	defer cleanup()

	ctx := context.Background()

	// user-1 founds #rebellion with a post.
	_, err := l.Apply(ctx, postEvent("user-1", "rebellion"))
	require.NoError(t, err)

	// user-2 posts under it twice.
	_, err = l.Apply(ctx, postEvent("user-2", "rebellion"))
	require.NoError(t, err)
	_, err = l.Apply(ctx, postEvent("user-2", "rebellion"))
	require.NoError(t, err)

	// user-2's posts get upvoted three times.
	for i := 0; i < 3; i++ {
		_, err = l.Apply(ctx, voteEvent("user-2", domain.VoteUp, "rebellion"))
		require.NoError(t, err)
	}

	// user-1 catches a downvote.
	_, err = l.Apply(ctx, voteEvent("user-1", domain.VoteDown, "rebellion"))
	require.NoError(t, err)

	h, err := s.GetHashtag(ctx, "rebellion")
	require.NoError(t, err)
	assert.Equal(t, "user-1", h.FounderUserKey)

	p1, err := s.GetUserProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p1.Reputation("rebellion")) // 1 post - 1 downvote

	p2, err := s.GetUserProfile(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 5, p2.Reputation("rebellion")) // 2 posts + 3 upvotes
	assert.False(t, p2.Founded("rebellion"))
}
