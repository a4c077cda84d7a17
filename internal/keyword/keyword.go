package keyword

import "strings"

// Matcher matches text against a configured keyword list using
// case-insensitive substring comparison.
type Matcher struct {
	keywords []string // lowercased at construction
}

// NewMatcher returns a matcher for the given keywords.
func NewMatcher(keywords []string) *Matcher {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(kw))
	}
	return &Matcher{keywords: lowered}
}

// Match reports whether text contains any configured keyword. Empty text
// never matches.
func (m *Matcher) Match(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchAny reports whether any of the given texts matches.
func (m *Matcher) MatchAny(texts ...string) bool {
	for _, t := range texts {
		if m.Match(t) {
			return true
		}
	}
	return false
}
