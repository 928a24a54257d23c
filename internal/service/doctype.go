package service

import (
	"path"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DocTypeRule maps a filename pattern to a document type. Patterns are
// single-segment globs; a pattern without a meta character matches as a
// case-insensitive substring.
type DocTypeRule struct {
	Pattern string
	Type    string
}

// DocTypeSuggester classifies incoming filenames against the rule table.
// First matching rule wins. Results are memoized; the rule table is
// static for the lifetime of the process, so the cache cannot go stale.
type DocTypeSuggester struct {
	rules []DocTypeRule
	cache *gocache.Cache
}

func NewDocTypeSuggester(rules []DocTypeRule, ttl time.Duration) *DocTypeSuggester {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &DocTypeSuggester{
		rules: rules,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Suggest returns the document type for the filename and whether any
// rule matched.
func (s *DocTypeSuggester) Suggest(filename string) (string, bool) {
	normalized := strings.ToLower(path.Base(filename))

	if cached, found := s.cache.Get(normalized); found {
		hit := cached.(string)
		return hit, hit != ""
	}

	for _, rule := range s.rules {
		if matchRule(strings.ToLower(rule.Pattern), normalized) {
			s.cache.SetDefault(normalized, rule.Type)
			return rule.Type, true
		}
	}

	s.cache.SetDefault(normalized, "")
	return "", false
}

func matchRule(pattern, name string) bool {
	if strings.ContainsAny(pattern, "*?[") {
		ok, err := path.Match(pattern, name)
		return err == nil && ok
	}
	return strings.Contains(name, pattern)
}
