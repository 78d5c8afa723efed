package filechecksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Calculate returns the SHA-256 digest of data.
func Calculate(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func Hex(data []byte) string {
	return hex.EncodeToString(Calculate(data))
}
