package plaintext

import (
	"bytes"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var ErrNotUTF8 = errors.New("text is not valid utf8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainText decodes data as UTF-8, dropping a leading byte order mark.
func PlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", ErrNotUTF8
	}
	return string(data), nil
}
