package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// GetHashtag retrieves a hashtag document by its normalized tag.
func (s *Store) GetHashtag(ctx context.Context, tag string) (*domain.Hashtag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var h domain.Hashtag
	err := s.get(hashtagKey(tag), &h)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound.WithMessage("hashtag not found")
	}
	if err != nil {
		return nil, err
	}

	return &h, nil
}

// ListHashtags returns all hashtag documents sorted alphabetically.
func (s *Store) ListHashtags(ctx context.Context) ([]*domain.Hashtag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(hashtagPrefix)
	var hashtags []*domain.Hashtag

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var h domain.Hashtag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &h)
			})
			if err != nil {
				continue
			}
			hashtags = append(hashtags, &h)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(hashtags, func(i, j int) bool {
		return hashtags[i].Tag < hashtags[j].Tag
	})

	return hashtags, nil
}
