// Package ledger applies reputation and founder updates atomically.
//
// Every post and vote funnels into a single transactional Apply: the
// author's profile and each touched hashtag document are read, mutated,
// and committed together under Badger's conflict detection. This is
// what guarantees a hashtag gains exactly one founder and that no
// concurrent update to a profile is ever lost.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/rebelpost/rebelpost-server/internal/domain"
	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// PointsForPosting is the reputation granted per hashtag when posting.
const PointsForPosting = 1

// MinReputationScore is the floor a score can never drop below.
const MinReputationScore = 0

// Ledger errors.
var (
	// ErrMissingAuthor marks an event with no author key. Fatal: the
	// event can never succeed and must not be retried.
	ErrMissingAuthor = apperrors.Validation("ledger event has no author key")

	// ErrConflictExhausted marks an event abandoned after the
	// transaction kept colliding with concurrent commits.
	ErrConflictExhausted = apperrors.Conflict("reputation update abandoned after repeated conflicts")

	// ErrStoreUnavailable marks a transient storage failure. The
	// event may be retried later.
	ErrStoreUnavailable = apperrors.Unavailable("reputation store unavailable")
)

// Event is one unit of work for the ledger: apply Delta to the
// author's score on every listed tag, resolving founders on the way.
type Event struct {
	AuthorKey string   // passkey digest of the user earning/losing points
	Tags      []string // normalized hashtags, already sanitized
	Delta     int      // points per tag (+1 for posts, ±1 for votes)

	// TouchLastActive stamps the profile's last-active time. Set for
	// post events, not for votes.
	TouchLastActive bool
}

// Result reports what an applied event changed.
type Result struct {
	FoundedTags []string       // tags whose founder was resolved to this author
	Reputation  map[string]int // author's score per touched tag, after the event
}

// Ledger owns the transactional reputation logic.
type Ledger struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a Ledger on top of the given store.
func New(s *store.Store, logger *slog.Logger) *Ledger {
	return &Ledger{store: s, logger: logger}
}

// Apply runs one event through a conflict-checked transaction.
//
// The author's profile is created on first contact. For each tag: a
// missing hashtag document is created with the author as founder; an
// existing document without a founder gets the author as founder; a
// document with a founder is left untouched. The author's score on the
// tag moves by Delta but never below MinReputationScore. All writes
// commit together or not at all.
func (l *Ledger) Apply(ctx context.Context, event Event) (*Result, error) {
	if event.AuthorKey == "" {
		return nil, ErrMissingAuthor
	}

	var result *Result
	err := l.store.RunTransaction(ctx, func(txn *store.Txn) error {
		r, err := l.applyInTxn(txn, event)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	switch {
	case err == nil:
	case apperrors.Is(err, store.ErrTxnConflict):
		return nil, ErrConflictExhausted.WithCause(err)
	case apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, ErrStoreUnavailable.WithCause(err)
	}

	if l.logger != nil && len(result.FoundedTags) > 0 {
		l.logger.Info("hashtag founder resolved",
			"user_key", event.AuthorKey,
			"tags", result.FoundedTags)
	}

	return result, nil
}

// applyInTxn holds the per-attempt logic. It must stay free of side
// effects outside the transaction: the harness may run it several
// times before one commit wins.
func (l *Ledger) applyInTxn(txn *store.Txn, event Event) (*Result, error) {
	now := time.Now()

	profile, err := txn.UserProfile(event.AuthorKey)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = domain.NewUserProfile(event.AuthorKey, now)
	}
	if event.TouchLastActive {
		profile.LastActive = now
	}

	result := &Result{Reputation: make(map[string]int)}

	for _, tag := range event.Tags {
		if tag == "" {
			continue
		}

		hashtag, err := txn.Hashtag(tag)
		if err != nil {
			return nil, err
		}

		switch {
		case hashtag == nil:
			// First mention anywhere: the author founds the tag.
			hashtag = &domain.Hashtag{
				Tag:            tag,
				FounderUserKey: event.AuthorKey,
				CreatedAt:      now,
			}
			if err := txn.SetHashtag(hashtag); err != nil {
				return nil, err
			}
			profile.AddFoundedHashtag(tag)
			result.FoundedTags = append(result.FoundedTags, tag)

		case !hashtag.HasFounder():
			// Document exists but ownership was never resolved.
			hashtag.FounderUserKey = event.AuthorKey
			if err := txn.SetHashtag(hashtag); err != nil {
				return nil, err
			}
			profile.AddFoundedHashtag(tag)
			result.FoundedTags = append(result.FoundedTags, tag)
		}

		score := profile.Reputation(tag) + event.Delta
		if score < MinReputationScore {
			score = MinReputationScore
		}
		profile.ReputationByHashtag[tag] = score
		result.Reputation[tag] = score
	}

	if err := txn.SetUserProfile(profile); err != nil {
		return nil, err
	}

	return result, nil
}
