package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// SaveVote upserts a voter's vote on a post/tag pair and reports the
// direction it replaced (0 when this is the voter's first vote there).
func (s *Store) SaveVote(ctx context.Context, v *domain.Vote) (previous int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := voteKey(v.PostID, v.Tag, v.VoterKey)

	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			var existing domain.Vote
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return err
			}
			previous = existing.Direction
			v.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})

	if err != nil {
		return 0, err
	}
	return previous, nil
}

// GetVote retrieves a voter's vote on a post/tag pair.
func (s *Store) GetVote(ctx context.Context, postID, tag, voterKey string) (*domain.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var v domain.Vote
	err := s.get(voteKey(postID, tag, voterKey), &v)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound.WithMessage("vote not found")
	}
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// TallyVotes aggregates all votes on a post into per-tag tallies,
// sorted alphabetically by tag.
func (s *Store) TallyVotes(ctx context.Context, postID string) ([]domain.VoteTally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(votePrefix + postID + ":")
	tallies := make(map[string]*domain.VoteTally)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v domain.Vote
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			})
			if err != nil {
				continue
			}

			tally, ok := tallies[v.Tag]
			if !ok {
				tally = &domain.VoteTally{Tag: v.Tag}
				tallies[v.Tag] = tally
			}
			switch v.Direction {
			case domain.VoteUp:
				tally.Upvotes++
			case domain.VoteDown:
				tally.Downvotes++
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	result := make([]domain.VoteTally, 0, len(tallies))
	for _, tally := range tallies {
		result = append(result, *tally)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Tag < result[j].Tag
	})

	return result, nil
}

// ListVotesByVoter returns all of a voter's votes, any order.
func (s *Store) ListVotesByVoter(ctx context.Context, voterKey string) ([]*domain.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(votePrefix)
	suffix := ":" + voterKey
	var votes []*domain.Vote

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if !strings.HasSuffix(string(it.Item().Key()), suffix) {
				continue
			}
			var v domain.Vote
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			})
			if err != nil {
				continue
			}
			votes = append(votes, &v)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return votes, nil
}
