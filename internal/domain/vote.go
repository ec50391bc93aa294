package domain

import "time"

// Vote directions.
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote records the last direction a voter cast on a post for one tag.
// Keyed by (post, tag, voter); casting again overwrites the record.
type Vote struct {
	PostID    string    `json:"post_id"`
	Tag       string    `json:"tag"`
	VoterKey  string    `json:"voter_key"`
	Direction int       `json:"direction"` // VoteUp or VoteDown
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidDirection reports whether d is a legal vote direction.
func ValidDirection(d int) bool {
	return d == VoteUp || d == VoteDown
}
