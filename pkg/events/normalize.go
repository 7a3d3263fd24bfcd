package events

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes s for comparison. Compatibility forms are folded
// (full-width letters and digits are common in OCR output), letters are
// lowercased, anything that is not a letter, digit or whitespace is dropped,
// and whitespace runs collapse to a single space with none at either end.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	out := filter(norm.NFKC.String(s))
	// Dropping a character can leave neighbours that compose (Hangul jamo).
	if !norm.NFKC.IsNormalString(out) {
		out = filter(norm.NFKC.String(out))
	}
	return out
}

func filter(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
