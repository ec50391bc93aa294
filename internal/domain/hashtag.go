package domain

import "time"

// Hashtag is the per-tag document. The tag text itself is the primary key.
//
// FounderUserKey holds the single user ever credited as the tag's founder.
// Once set it is immutable; the ledger's transaction is the only writer and
// only ever sets it on a document that has no founder yet.
type Hashtag struct {
	Tag            string    `json:"tag"`
	FounderUserKey string    `json:"founder_user_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasFounder reports whether founder ownership has been resolved.
func (h *Hashtag) HasFounder() bool {
	return h.FounderUserKey != ""
}
