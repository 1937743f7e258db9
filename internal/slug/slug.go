// Package slug turns display text into filesystem and URL safe ASCII tokens.
//
// Every function here is pure: the same input always yields the same output.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// FallbackUnknown is returned by Folder and Slug when nothing survives normalization.
	FallbackUnknown = "unknown"
	// FallbackResource is returned by Resource when nothing survives normalization.
	FallbackResource = "resource"
)

var nonASCII = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })

// fold decomposes accented characters (é -> e + U+0301), drops everything
// outside ASCII and lowercases the result.
func fold(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(nonASCII))
	out, _, err := transform.String(t, strings.TrimSpace(text))
	if err != nil {
		return ""
	}
	return strings.ToLower(out)
}

// Folder returns the folder-name form of text: letters and digits joined by single
// underscores. Whitespace, '-' and '_' act as separators; other characters are dropped.
func Folder(text string) string {
	return join(fold(text), '_', func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	}, FallbackUnknown)
}

// Slug returns the URL slug form of text: letters and digits joined by single hyphens.
// Every other character acts as a separator.
func Slug(text string) string {
	return join(fold(text), '-', func(rune) bool { return true }, FallbackUnknown)
}

// Resource is Slug with the resource fallback token.
func Resource(text string) string {
	return join(fold(text), '-', func(rune) bool { return true }, FallbackResource)
}

// join keeps [a-z0-9], turns runs of separator runes into one sep and drops the
// remaining runes. Leading and trailing separators never appear in the output.
func join(s string, sep byte, isSep func(rune) bool, fallback string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte(sep)
			}
			pending = false
			b.WriteRune(r)
		case isSep(r):
			pending = true
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
