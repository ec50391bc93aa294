// Package sse implements Server-Sent Events for real-time feed updates
// and event broadcasting.
package sse

import (
	"time"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventPostCreated represents a new post landing in the feed.
	EventPostCreated EventType = "post.created"

	// EventVoteCast represents a vote applied to a post.
	EventVoteCast EventType = "vote.cast"

	// EventHashtagFounded represents a hashtag gaining its founder.
	EventHashtagFounded EventType = "hashtag.founded"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field carries the payload as a JSON object for direct
// deserialization on the client.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// PostCreatedEventData is the payload for post creation events.
// Self-contained so clients can render the post without a follow-up
// fetch.
type PostCreatedEventData struct {
	Post *domain.Post `json:"post"`
}

// VoteCastEventData is the payload for vote events. The voter's key is
// deliberately omitted: votes are public only in aggregate.
type VoteCastEventData struct {
	PostID    string `json:"post_id"`
	Tag       string `json:"tag"`
	Direction int    `json:"direction"`
}

// HashtagFoundedEventData is the payload for founder resolution events.
type HashtagFoundedEventData struct {
	Tag            string `json:"tag"`
	FounderUserKey string `json:"founder_user_key"`
}

// HeartbeatEventData is the payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewPostCreatedEvent creates a post creation event.
func NewPostCreatedEvent(post *domain.Post) Event {
	return Event{
		Type:      EventPostCreated,
		Timestamp: time.Now(),
		Data:      PostCreatedEventData{Post: post},
	}
}

// NewVoteCastEvent creates a vote event.
func NewVoteCastEvent(postID, tag string, direction int) Event {
	return Event{
		Type:      EventVoteCast,
		Timestamp: time.Now(),
		Data:      VoteCastEventData{PostID: postID, Tag: tag, Direction: direction},
	}
}

// NewHashtagFoundedEvent creates a founder resolution event.
func NewHashtagFoundedEvent(tag, founderUserKey string) Event {
	return Event{
		Type:      EventHashtagFounded,
		Timestamp: time.Now(),
		Data:      HashtagFoundedEventData{Tag: tag, FounderUserKey: founderUserKey},
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
		Data:      HeartbeatEventData{ServerTime: time.Now()},
	}
}
