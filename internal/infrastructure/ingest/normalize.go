package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, keeps letters and digits, and collapses every other
// run of characters into a single space. Leading and trailing spaces are dropped.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := true // suppresses a leading space
	for _, r := range norm.NFC.String(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}
