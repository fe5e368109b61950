package vocab

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes and drops nonspacing marks, so accented letters fold
// to their base letter. The transform streams codepoints; no intermediate
// rune slice is built.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

var (
	punctRE     = regexp.MustCompile(`([.!?])`)
	nonLetterRE = regexp.MustCompile(`[^a-zA-Z.!?]+`)
	spaceRE     = regexp.MustCompile(`\s+`)
)

// NormalizeString lowercases, folds diacritics to ASCII, spaces out
// sentence-final punctuation so it tokenizes standalone, and collapses
// everything outside [a-zA-Z.!?] to single spaces. Idempotent.
func NormalizeString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = punctRE.ReplaceAllString(s, " $1")
	s = nonLetterRE.ReplaceAllString(s, " ")
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
