// ABOUTME: Deterministic slug derivation from note titles
// ABOUTME: Lowercase, punctuation stripped, words hyphen-joined

package notes

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe slug from a title: lowercase, punctuation
// stripped, words joined with hyphens. "Hello, World!" becomes "hello-world".
// Slugs are never auto-suffixed; a collision is a conflict at write time.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		// everything else (punctuation, symbols) is dropped
	}

	return strings.TrimSuffix(b.String(), "-")
}

// NormalizeTags parses a comma-separated tag string into a clean list:
// trimmed, lowercased, empties dropped.
func NormalizeTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
