package metrics

import "strings"

// TagMatcher partitions records by label. A record is "tagged" when any
// of its labels contains, case-insensitively, any of the configured
// equivalent spellings. The spelling list is configuration, not a
// hardcoded tag; the default set covers the underscore, space and
// hyphen variants of "data contract".
type TagMatcher struct {
	spellings []string
}

// NewTagMatcher builds a matcher from the configured spellings. Empty
// or whitespace-only entries are dropped; a matcher with no spellings
// matches nothing.
func NewTagMatcher(spellings []string) TagMatcher {
	cleaned := make([]string, 0, len(spellings))
	for _, s := range spellings {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return TagMatcher{spellings: cleaned}
}

// Match reports whether the label set carries the tag.
func (m TagMatcher) Match(labels []string) bool {
	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, s := range m.spellings {
			if strings.Contains(lower, s) {
				return true
			}
		}
	}
	return false
}
