package booktext

import "golang.org/x/text/unicode/norm"

// Text is the NFC form of a book. Pages are cut at rune offsets, which are
// stable because the content is normalized.
type Text struct {
	ID    string
	runes []rune
}

func NewText(id, normalized string) Text {
	return Text{ID: id, runes: []rune(normalized)}
}

// Normalize returns s in Unicode normalization form C.
func Normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Len is the length in runes.
func (t Text) Len() int {
	return len(t.runes)
}

func (t Text) String() string {
	return string(t.runes)
}

// Page returns runes [(n-1)*size, n*size) clipped to the text. It is empty
// for n < 1 and for pages past the end.
func (t Text) Page(n, size int) string {
	if n < 1 || size < 1 || n-1 >= t.Pages(size) {
		return ""
	}
	start := (n - 1) * size
	end := min(start+size, len(t.runes))
	return string(t.runes[start:end])
}

// Pages is the number of non-empty pages.
func (t Text) Pages(size int) int {
	if size < 1 {
		return 0
	}
	return (len(t.runes) + size - 1) / size
}
