package snippet

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace to single spaces.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// NormalizeLanguage trims and lowercases a language tag.
func NormalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

// CleanTags trims tags, drops empties and removes case-insensitive duplicates,
// keeping the first spelling. Returns nil for no tags.
func CleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := Normalize(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, t)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// CountLines returns the number of physical lines in content.
// A trailing newline does not start a new line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1
}
