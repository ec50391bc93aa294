package domain

import (
	"slices"
	"time"
)

// UserProfile is the per-user reputation document. Profiles are keyed by the
// user key (the digest of the user's passkey) and created lazily the first
// time the ledger processes an event for that user. They are never deleted.
type UserProfile struct {
	UserKey             string         `json:"user_key"`
	ReputationByHashtag map[string]int `json:"reputation_by_hashtag"`
	FoundedHashtags     []string       `json:"founded_hashtags"`
	CreatedAt           time.Time      `json:"created_at"`
	LastActive          time.Time      `json:"last_active"`
}

// NewUserProfile creates an empty profile for a user key.
func NewUserProfile(userKey string, now time.Time) *UserProfile {
	return &UserProfile{
		UserKey:             userKey,
		ReputationByHashtag: make(map[string]int),
		FoundedHashtags:     []string{},
		CreatedAt:           now,
	}
}

// Reputation returns the user's score for a tag. Absent tags score zero.
func (p *UserProfile) Reputation(tag string) int {
	return p.ReputationByHashtag[tag]
}

// Founded reports whether the user founded the given tag.
func (p *UserProfile) Founded(tag string) bool {
	return slices.Contains(p.FoundedHashtags, tag)
}

// AddFoundedHashtag records a founded tag, keeping the set duplicate-free.
func (p *UserProfile) AddFoundedHashtag(tag string) {
	if !p.Founded(tag) {
		p.FoundedHashtags = append(p.FoundedHashtags, tag)
	}
}

// TotalReputation sums the user's scores across all tags.
func (p *UserProfile) TotalReputation() int {
	total := 0
	for _, score := range p.ReputationByHashtag {
		total += score
	}
	return total
}
