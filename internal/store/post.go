package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// CreatePost stores a post together with its feed and per-tag indexes.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(p.ID)); err == nil {
			return ErrAlreadyExists.WithMessage("post already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(postKey(p.ID), data); err != nil {
			return err
		}

		// Feed index, newest first.
		if err := txn.Set(postCreatedIndexKey(p.CreatedAt, p.ID), []byte{}); err != nil {
			return err
		}

		// Per-tag indexes for hashtag feeds.
		for _, tag := range p.Hashtags {
			if err := txn.Set(postTagIndexKey(tag, p.CreatedAt, p.ID), []byte{}); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetPost retrieves a post by ID.
func (s *Store) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.Post
	err := s.get(postKey(postID), &p)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound.WithMessage("post not found")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// ListPosts returns posts newest first, paginated by opaque cursor.
func (s *Store) ListPosts(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Post], error) {
	return s.listPostsByIndex(ctx, postsByCreatedPrefix, params)
}

// ListPostsByTag returns posts carrying a hashtag, newest first.
func (s *Store) ListPostsByTag(ctx context.Context, tag string, params PaginationParams) (*PaginatedResult[*domain.Post], error) {
	return s.listPostsByIndex(ctx, postsByTagPrefix+tag+":", params)
}

// listPostsByIndex walks a reverse-timestamp index prefix and resolves
// the post documents. The cursor is the last index key of the previous
// page; iteration resumes strictly after it.
func (s *Store) listPostsByIndex(ctx context.Context, prefix string, params PaginationParams) (*PaginatedResult[*domain.Post], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params.Validate()

	startAfter, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, ErrInvalidInput.WithCause(err)
	}

	var (
		postIDs []string
		lastKey string
		hasMore bool
	)

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(prefix)
		if startAfter != "" {
			// Position strictly after the cursor key.
			seek = append([]byte(startAfter), 0)
		}

		for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			if len(postIDs) >= params.Limit {
				hasMore = true
				break
			}

			// Index keys end in the post ID.
			lastColon := strings.LastIndex(key, ":")
			if lastColon == -1 {
				continue
			}
			postIDs = append(postIDs, key[lastColon+1:])
			lastKey = key
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(postIDs))
	for _, postID := range postIDs {
		p, err := s.GetPost(ctx, postID)
		if err != nil {
			continue // Skip dangling index entries.
		}
		posts = append(posts, p)
	}

	result := &PaginatedResult[*domain.Post]{
		Items:   posts,
		HasMore: hasMore,
	}
	if hasMore {
		result.NextCursor = EncodeCursor(lastKey)
	}

	return result, nil
}

// CountPostsByTag counts posts carrying a hashtag.
func (s *Store) CountPostsByTag(ctx context.Context, tag string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(postsByTagPrefix + tag + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}
