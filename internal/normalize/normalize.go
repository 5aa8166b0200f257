// Package normalize folds user-supplied text so lookups compare the way
// readers expect: "ACHEBE", "achebe" and a decomposed "Achébe" all match.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the canonical comparison key for s: NUL bytes dropped,
// surrounding whitespace trimmed, NFC composed and Unicode case folded.
func Fold(s string) string {
	s = strings.TrimSpace(sanitizeString(s))
	s = norm.NFC.String(s)
	// cases.Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal after folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsFold reports whether needle occurs in haystack after folding both.
// An empty needle matches nothing.
func ContainsFold(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// IsBlank reports whether s has no visible content.
func IsBlank(s string) bool {
	return strings.TrimSpace(sanitizeString(s)) == ""
}

// sanitizeString removes null bytes, which break JSON and SQLite text columns.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
