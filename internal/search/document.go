package search

import (
	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// PostDocument is the indexable projection of a post.
type PostDocument struct {
	ID        string
	AuthorKey string
	Text      string
	Hashtags  []string
	CreatedAt int64 // Unix seconds, for recency sorting
}

// FromPost builds a search document from a post.
func FromPost(p *domain.Post) *PostDocument {
	return &PostDocument{
		ID:        p.ID,
		AuthorKey: p.AuthorKey,
		Text:      p.Text,
		Hashtags:  p.Hashtags,
		CreatedAt: p.CreatedAt.Unix(),
	}
}

// ToMap converts the document to a map so field names match the index
// mapping (lowercase).
func (d *PostDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"author_key": d.AuthorKey,
		"text":       d.Text,
		"hashtags":   d.Hashtags,
		"created_at": d.CreatedAt,
	}
}
