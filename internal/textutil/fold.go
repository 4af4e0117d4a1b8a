// Package textutil provides small text normalization helpers shared by the
// table search and the SQLite search index:
//
//   - Fold: case- and accent-insensitive form of a string.
//   - Contains: substring match on folded text.
//
// "Chaussée" and "CHAUSSEE" fold to the same value, so users can search
// Belgian street and company names without typing diacritics.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s lower-cased (Unicode case folding) with diacritics removed
// and runs of whitespace collapsed to one space.
//
// Transformers and casers carry state, so a fresh chain is built per call;
// Fold is safe for concurrent use.
func Fold(s string) string {
	if s == "" {
		return s
	}

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// Contains reports whether needle occurs in haystack after folding both.
// An empty needle matches everything.
func Contains(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return true
	}
	return strings.Contains(Fold(haystack), n)
}
