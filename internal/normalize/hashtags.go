// Package normalize provides hashtag extraction and sanitization.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// hashtagPattern matches #tag tokens: word characters plus the Hebrew block,
// mirroring the client-side extraction rules.
var hashtagPattern = regexp.MustCompile(`#([\w\x{0590}-\x{05FF}]+)`)

// ExtractHashtags returns the unique hashtags referenced in text, in order of
// first appearance, without the leading '#'. Tags are NFC-normalized so that
// visually identical tags share one document regardless of how the client
// composed them.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := Hashtag(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Hashtag normalizes a single tag to NFC form. No case folding: the tag text
// as supplied is the document key.
func Hashtag(tag string) string {
	return norm.NFC.String(tag)
}

// SanitizeTags filters a raw tag list from an untrusted payload down to the
// usable entries: non-string and empty values are silently dropped, the rest
// are NFC-normalized and de-duplicated. A post carrying one bad tag still
// counts its good tags.
func SanitizeTags(raw []any) []string {
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		tag := Hashtag(s)
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
