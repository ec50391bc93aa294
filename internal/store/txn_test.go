package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// setupTestStore creates a temporary store for testing
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "rebelpost-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func TestRunTransaction_ProfileRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	err := store.RunTransaction(ctx, func(txn *Txn) error {
		p, err := txn.UserProfile("user-a")
		require.NoError(t, err)
		assert.Nil(t, p, "absent profile should read as nil")

		created := domain.NewUserProfile("user-a", now)
		created.ReputationByHashtag["golang"] = 3
		return txn.SetUserProfile(created)
	})
	require.NoError(t, err)

	p, err := store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "user-a", p.UserKey)
	assert.Equal(t, 3, p.Reputation("golang"))
}

func TestRunTransaction_HashtagRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := store.RunTransaction(ctx, func(txn *Txn) error {
		h, err := txn.Hashtag("golang")
		require.NoError(t, err)
		assert.Nil(t, h)

		return txn.SetHashtag(&domain.Hashtag{
			Tag:            "golang",
			FounderUserKey: "user-a",
			CreatedAt:      time.Now(),
		})
	})
	require.NoError(t, err)

	h, err := store.GetHashtag(ctx, "golang")
	require.NoError(t, err)
	assert.True(t, h.HasFounder())
	assert.Equal(t, "user-a", h.FounderUserKey)
}

func TestRunTransaction_FnErrorAborts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	boom := errors.New("boom")
	attempts := 0

	err := store.RunTransaction(ctx, func(txn *Txn) error {
		attempts++
		if err := txn.SetHashtag(&domain.Hashtag{Tag: "golang"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts, "closure errors must not be retried")

	_, err = store.GetHashtag(ctx, "golang")
	assert.ErrorIs(t, err, ErrNotFound, "aborted transaction must not write")
}

func TestRunTransaction_RetriesOnConflict(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	attempts := 0

	err := store.RunTransaction(ctx, func(txn *Txn) error {
		attempts++

		p, err := txn.UserProfile("user-a")
		if err != nil {
			return err
		}
		if p == nil {
			p = domain.NewUserProfile("user-a", time.Now())
		}
		p.ReputationByHashtag["golang"]++

		// First attempt: an outside commit touches the key this
		// transaction read, forcing a conflict at commit time.
		if attempts == 1 {
			outside := domain.NewUserProfile("user-a", time.Now())
			outside.ReputationByHashtag["golang"] = 10
			if err := store.set(profileKey("user-a"), outside); err != nil {
				return err
			}
		}

		return txn.SetUserProfile(p)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	// The retry re-read the outside write, so no update was lost.
	p, err := store.GetUserProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 11, p.Reputation("golang"))
}

func TestRunTransaction_ConflictExhaustion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	store.SetTxnRetries(3)

	ctx := context.Background()
	attempts := 0

	err := store.RunTransaction(ctx, func(txn *Txn) error {
		attempts++

		p, err := txn.UserProfile("user-a")
		if err != nil {
			return err
		}
		if p == nil {
			p = domain.NewUserProfile("user-a", time.Now())
		}

		// Conflict on every attempt.
		outside := domain.NewUserProfile("user-a", time.Now())
		outside.ReputationByHashtag["golang"] = attempts
		if err := store.set(profileKey("user-a"), outside); err != nil {
			return err
		}

		return txn.SetUserProfile(p)
	})
	require.ErrorIs(t, err, ErrTxnConflict)
	assert.Equal(t, 3, attempts)
}

func TestRunTransaction_ContextCancelled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.RunTransaction(ctx, func(txn *Txn) error {
		t.Fatal("closure must not run with a cancelled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
