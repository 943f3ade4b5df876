package conversation

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseTagSelection parses a tag-selection message against the configured
// catalogue. Two mutually exclusive grammars:
//
//  1. New-tag form: NewTagPrefix followed by free text. The remainder,
//     trimmed, becomes the sole selected tag when its length is within
//     [1, TagMaxLen]; otherwise the selection is empty.
//  2. Numeric-index form: comma-separated 1-based indices into the
//     catalogue. Out-of-range and non-numeric tokens are silently dropped;
//     valid indices resolve to their tag, deduplicated preserving first
//     occurrence.
//
// An empty result means the user must be re-prompted.
func ParseTagSelection(input string, catalogue []string) []string {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(strings.ToLower(trimmed), NewTagPrefix) {
		tag := strings.TrimSpace(trimmed[len(NewTagPrefix):])
		if n := utf8.RuneCountInString(tag); n >= 1 && n <= TagMaxLen {
			return []string{tag}
		}
		return nil
	}

	var selected []string
	seen := make(map[int]bool)
	for _, token := range strings.Split(trimmed, ",") {
		index, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		if index < 1 || index > len(catalogue) {
			continue
		}
		if seen[index] {
			continue
		}
		seen[index] = true
		selected = append(selected, catalogue[index-1])
	}
	return selected
}
