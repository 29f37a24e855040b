package services

import (
	"fmt"
	"strings"
	"unicode"
)

// MergeSettings performs the shallow merge for effective feature settings:
// definition defaults overlaid by the assignment override, assignment keys
// winning. Neither input map is mutated.
func MergeSettings(defaults map[string]any, override map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(override))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// Slugify lowercases the name and collapses every non-alphanumeric run into
// a single hyphen. Feature slugs follow the same rule as tenant slugs.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// SlugCandidate returns the n-th disambiguation candidate for a base slug.
func SlugCandidate(base string, n int) string {
	if n <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
