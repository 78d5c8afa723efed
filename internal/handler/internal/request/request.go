package request

import (
	"encoding/json"
	"io"
)

// maxBodySize bounds request bodies, messages are short
const maxBodySize = 64 << 10

func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
