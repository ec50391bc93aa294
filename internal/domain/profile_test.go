package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewUserProfile(t *testing.T) {
	now := time.Now()
	p := NewUserProfile("abc123", now)

	assert.Equal(t, "abc123", p.UserKey)
	assert.Equal(t, now, p.CreatedAt)
	assert.NotNil(t, p.ReputationByHashtag)
	assert.Empty(t, p.FoundedHashtags)
	assert.True(t, p.LastActive.IsZero())
}

func TestUserProfile_Reputation_AbsentTagIsZero(t *testing.T) {
	p := NewUserProfile("abc123", time.Now())
	assert.Equal(t, 0, p.Reputation("rebellion"))

	p.ReputationByHashtag["rebellion"] = 3
	assert.Equal(t, 3, p.Reputation("rebellion"))
	assert.Equal(t, 0, p.Reputation("empire"))
}

func TestUserProfile_AddFoundedHashtag_NoDuplicates(t *testing.T) {
	p := NewUserProfile("abc123", time.Now())

	p.AddFoundedHashtag("rebellion")
	p.AddFoundedHashtag("rebellion")
	p.AddFoundedHashtag("starwars")

	assert.Equal(t, []string{"rebellion", "starwars"}, p.FoundedHashtags)
	assert.True(t, p.Founded("rebellion"))
	assert.False(t, p.Founded("empire"))
}

func TestVoteTally_Score(t *testing.T) {
	tally := VoteTally{Tag: "rebellion", Upvotes: 5, Downvotes: 2}
	assert.Equal(t, 3, tally.Score())
}

func TestValidDirection(t *testing.T) {
	assert.True(t, ValidDirection(VoteUp))
	assert.True(t, ValidDirection(VoteDown))
	assert.False(t, ValidDirection(0))
	assert.False(t, ValidDirection(2))
}
