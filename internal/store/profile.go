package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// GetUserProfile retrieves a user profile by its passkey digest.
func (s *Store) GetUserProfile(ctx context.Context, userKey string) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.UserProfile
	err := s.get(profileKey(userKey), &p)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound.WithMessage("profile not found")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UserProfileExists checks whether a profile exists without decoding it.
func (s *Store) UserProfileExists(ctx context.Context, userKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists(profileKey(userKey))
}

// ListUserProfiles returns all profiles ordered by total reputation
// (descending), then by user key for stability.
func (s *Store) ListUserProfiles(ctx context.Context) ([]*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(profilePrefix)
	var profiles []*domain.UserProfile

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p domain.UserProfile
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				continue
			}
			profiles = append(profiles, &p)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(profiles, func(i, j int) bool {
		ti, tj := profiles[i].TotalReputation(), profiles[j].TotalReputation()
		if ti != tj {
			return ti > tj
		}
		return profiles[i].UserKey < profiles[j].UserKey
	})

	return profiles, nil
}
