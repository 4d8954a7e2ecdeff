// Package strings provides string list helpers for configuration parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
//	DedupeAndTrim([]string{" wss://a ", "wss://b", "wss://a", ""})
//	// []string{"wss://a", "wss://b"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// SplitList splits a separated list such as an environment value
// ("wss://a, wss://b") and applies DedupeAndTrim. An empty input yields nil.
func SplitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(s, sep))
}

// SplitPairs parses "k1=v1,k2=v2" into ordered key/value pairs. Entries
// without a separator are returned with ok=false so callers can reject them.
func SplitPairs(s string) (pairs [][2]string, ok bool) {
	ok = true
	for _, entry := range SplitList(s, ",") {
		key, value, found := strings.Cut(entry, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			ok = false
			continue
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs, ok
}
