// Package domain contains the core data model for RebelPost: user profiles,
// hashtags, posts, and votes. Documents are stored as JSON in Badger and
// mutated only through the store and ledger layers.
package domain

import "time"

// Post is a short message published under a pseudonymous author key.
type Post struct {
	ID        string    `json:"id"`
	AuthorKey string    `json:"author_key"`
	Text      string    `json:"text"`
	Hashtags  []string  `json:"hashtags"`
	CreatedAt time.Time `json:"created_at"`
}

// HasHashtag reports whether the post was published with the given tag.
func (p *Post) HasHashtag(tag string) bool {
	for _, t := range p.Hashtags {
		if t == tag {
			return true
		}
	}
	return false
}

// VoteTally is the aggregated vote state of a post for one tag.
type VoteTally struct {
	Tag       string `json:"tag"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

// Score returns the net vote score.
func (t VoteTally) Score() int {
	return t.Upvotes - t.Downvotes
}
