package scenario

import (
	"net/url"
	"strings"
)

// URLStrategy looks for a usable URL in decoded asset metadata.
type URLStrategy func(meta map[string]any) (string, bool)

var (
	urlFields       = []string{"downloadUrl", "url", "signedUrl"}
	containerFields = []string{"asset", "data", "result", "file"}
)

// TopLevel checks the metadata object itself.
func TopLevel() URLStrategy {
	return func(meta map[string]any) (string, bool) {
		return firstURL(meta)
	}
}

// Nested checks the object stored under key, if any.
func Nested(key string) URLStrategy {
	return func(meta map[string]any) (string, bool) {
		node, ok := meta[key].(map[string]any)
		if !ok {
			return "", false
		}
		return firstURL(node)
	}
}

// DefaultURLStrategies is the lookup order used by ResolveURL: the top level
// first, then the known container keys.
func DefaultURLStrategies() []URLStrategy {
	strategies := []URLStrategy{TopLevel()}
	for _, key := range containerFields {
		strategies = append(strategies, Nested(key))
	}
	return strategies
}

// URLFromMetadata returns the first URL produced by strategies, in order.
func URLFromMetadata(meta map[string]any, strategies ...URLStrategy) (string, bool) {
	if len(strategies) == 0 {
		strategies = DefaultURLStrategies()
	}
	for _, strategy := range strategies {
		if u, ok := strategy(meta); ok {
			return u, true
		}
	}
	return "", false
}

// CandidateURLs lists every usable URL in lookup order, without duplicates.
func CandidateURLs(meta map[string]any) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(node map[string]any) {
		for _, field := range urlFields {
			s, ok := node[field].(string)
			if !ok || !IsAbsoluteURL(s) {
				continue
			}
			s = strings.TrimSpace(s)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	add(meta)
	for _, key := range containerFields {
		if node, ok := meta[key].(map[string]any); ok {
			add(node)
		}
	}
	return out
}

func firstURL(node map[string]any) (string, bool) {
	for _, field := range urlFields {
		if s, ok := node[field].(string); ok && IsAbsoluteURL(s) {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// IsAbsoluteURL accepts http and https URLs with a host.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
