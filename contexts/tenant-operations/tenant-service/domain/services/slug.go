package services

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify lowercases the name and collapses every non-alphanumeric run into
// a single hyphen.
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

// SlugCandidate returns the n-th disambiguation candidate for a base slug:
// the base itself for n == 0, then base-1, base-2, and so on.
func SlugCandidate(base string, n int) string {
	if n <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
