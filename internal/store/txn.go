package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// defaultTxnRetries bounds commit attempts for RunTransaction.
const defaultTxnRetries = 5

// Txn exposes typed reads and writes inside a conflict-checked
// transaction. Reads register the key with Badger's SSI tracker, so a
// concurrent commit touching the same key fails this transaction's
// commit instead of silently losing an update.
type Txn struct {
	txn *badger.Txn
}

// RunTransaction executes fn inside a read-write transaction and
// commits it. On badger.ErrConflict the whole closure is re-executed
// against a fresh snapshot, up to the store's attempt budget; when the
// budget runs out it returns ErrTxnConflict. Any error from fn aborts
// without retrying.
//
// Badger's db.Update does not retry conflicts, so this harness manages
// the transaction lifecycle itself.
func (s *Store) RunTransaction(ctx context.Context, fn func(txn *Txn) error) error {
	attempts := s.txnRetries
	if attempts < 1 {
		attempts = defaultTxnRetries
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		btxn := s.db.NewTransaction(true)
		if err := fn(&Txn{txn: btxn}); err != nil {
			btxn.Discard()
			return err
		}

		err := btxn.Commit()
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		if s.logger != nil {
			s.logger.Debug("transaction conflict, retrying", "attempt", attempt, "max_attempts", attempts)
		}
	}

	return ErrTxnConflict
}

// UserProfile reads a profile inside the transaction.
// Returns (nil, nil) when the profile does not exist.
func (t *Txn) UserProfile(userKey string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := t.get(profileKey(userKey), &p); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// SetUserProfile writes a profile inside the transaction.
func (t *Txn) SetUserProfile(p *domain.UserProfile) error {
	return t.set(profileKey(p.UserKey), p)
}

// Hashtag reads a hashtag document inside the transaction.
// Returns (nil, nil) when the hashtag does not exist.
func (t *Txn) Hashtag(tag string) (*domain.Hashtag, error) {
	var h domain.Hashtag
	if err := t.get(hashtagKey(tag), &h); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

// SetHashtag writes a hashtag document inside the transaction.
func (t *Txn) SetHashtag(h *domain.Hashtag) error {
	return t.set(hashtagKey(h.Tag), h)
}

func (t *Txn) get(key []byte, dest any) error {
	item, err := t.txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

func (t *Txn) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return t.txn.Set(key, data)
}
