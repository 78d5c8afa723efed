package storage

import "time"

type NewProcessedBook struct {
	CheckSum  []byte
	Text      string // normalized text
	RuneCount int64
}

// ProcessedBook is the normalized text of a book file, addressed by the
// checksum of the raw file content.
type ProcessedBook struct {
	BucketName []byte
	CheckSum   []byte
	RuneCount  int64
	CreatedAt  time.Time
}

type ProcessedBookWithText struct {
	ProcessedBook
	Text string
}
