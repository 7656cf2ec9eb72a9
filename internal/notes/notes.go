package notes

import (
	"regexp"
	"strings"
)

// hashtagPattern matches a '#' followed by one or more word characters
// (Unicode letters, digits, underscore).
var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Extract pulls hashtags out of free-form note text. It returns the text with
// the hashtag tokens removed (whitespace collapsed and trimmed) and the
// deduplicated tag payloads without the leading '#'. Running Extract on its
// own clean output yields the same text and no tags.
func Extract(text string) (string, []string) {
	if text == "" {
		return "", nil
	}

	var tags []string
	seen := make(map[string]struct{})
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tag := m[1]
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	clean := hashtagPattern.ReplaceAllString(text, "")
	clean = strings.Join(strings.Fields(clean), " ")

	return clean, tags
}
