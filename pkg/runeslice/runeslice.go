package runeslice

import "unicode/utf8"

// NRunes returns the prefix of s holding at most n runes.
func NRunes(s string, n int) string {
	var i int
	for ; n > 0 && i < len(s); n-- {
		_, runeSize := utf8.DecodeRuneInString(s[i:])
		i += runeSize
	}
	return s[:i]
}

// Truncate is NRunes that marks the cut with an ellipsis.
func Truncate(s string, n int) string {
	short := NRunes(s, n)
	if len(short) == len(s) {
		return s
	}
	return short + "…"
}
