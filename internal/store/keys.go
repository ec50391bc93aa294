package store

import (
	"fmt"
	"math"
	"time"
)

// Key prefixes. Profiles and hashtags are keyed by their natural
// identifiers (user key digest, normalized tag); posts get NanoIDs.
const (
	profilePrefix = "profile:" // profile:{userKey} → UserProfile JSON
	hashtagPrefix = "hashtag:" // hashtag:{tag} → Hashtag JSON
	postPrefix    = "post:"    // post:{postID} → Post JSON
	votePrefix    = "vote:"    // vote:{postID}:{tag}:{voterKey} → Vote JSON

	postsByCreatedPrefix = "idx:posts:created:" // idx:posts:created:{revTs}:{postID} → empty
	postsByTagPrefix     = "idx:posts:tag:"     // idx:posts:tag:{tag}:{revTs}:{postID} → empty
)

// reverseTimestamp encodes a time so lexicographic ascending order over
// index keys yields newest-first iteration.
func reverseTimestamp(t time.Time) string {
	return fmt.Sprintf("%020d", math.MaxInt64-t.UnixNano())
}

func profileKey(userKey string) []byte {
	return []byte(profilePrefix + userKey)
}

func hashtagKey(tag string) []byte {
	return []byte(hashtagPrefix + tag)
}

func postKey(postID string) []byte {
	return []byte(postPrefix + postID)
}

func voteKey(postID, tag, voterKey string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s", votePrefix, postID, tag, voterKey))
}

func postCreatedIndexKey(createdAt time.Time, postID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", postsByCreatedPrefix, reverseTimestamp(createdAt), postID))
}

func postTagIndexKey(tag string, createdAt time.Time, postID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s", postsByTagPrefix, tag, reverseTimestamp(createdAt), postID))
}
