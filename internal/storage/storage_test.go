package storage_test

import (
	"testing"
	"time"

	"github.com/pechorka/book-reader/internal/storage"
	"github.com/pechorka/book-reader/pkg/filechecksum"
	"github.com/stretchr/testify/require"
)

func TestAddProcessedBook(t *testing.T) {
	t.Run("create -> get", func(t *testing.T) {
		db := testStorage(t)
		so := require.New(t)

		checksum := filechecksum.Calculate([]byte("raw"))
		pb, err := db.AddProcessedBook(storage.NewProcessedBook{
			CheckSum:  checksum,
			Text:      "Ёлка",
			RuneCount: 4,
		})
		so.NoError(err)
		so.NotEmpty(pb.BucketName)

		got, err := db.GetProcessedBookByChecksum(checksum)
		so.NoError(err)
		so.Equal("Ёлка", got.Text)
		so.Equal(int64(4), got.RuneCount)
		so.Equal(pb.BucketName, got.BucketName)
	})

	t.Run("same checksum keeps first record", func(t *testing.T) {
		db := testStorage(t)
		so := require.New(t)

		checksum := filechecksum.Calculate([]byte("raw"))
		first, err := db.AddProcessedBook(storage.NewProcessedBook{CheckSum: checksum, Text: "a", RuneCount: 1})
		so.NoError(err)
		second, err := db.AddProcessedBook(storage.NewProcessedBook{CheckSum: checksum, Text: "b", RuneCount: 1})
		so.NoError(err)
		so.Equal(first.BucketName, second.BucketName)

		got, err := db.GetProcessedBookByChecksum(checksum)
		so.NoError(err)
		so.Equal("a", got.Text)
	})

	t.Run("unknown checksum", func(t *testing.T) {
		db := testStorage(t)
		_, err := db.GetProcessedBookByChecksum([]byte("nope"))
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDeleteProcessedBooksOlderThan(t *testing.T) {
	db := testStorage(t)
	so := require.New(t)

	checksum := filechecksum.Calculate([]byte("raw"))
	_, err := db.AddProcessedBook(storage.NewProcessedBook{CheckSum: checksum, Text: "a", RuneCount: 1})
	so.NoError(err)

	deleted, err := db.DeleteProcessedBooksOlderThan(time.Now().Add(-time.Hour))
	so.NoError(err)
	so.Zero(deleted)

	deleted, err = db.DeleteProcessedBooksOlderThan(time.Now().Add(time.Hour))
	so.NoError(err)
	so.Equal(1, deleted)

	_, err = db.GetProcessedBookByChecksum(checksum)
	so.ErrorIs(err, storage.ErrNotFound)
}

func testStorage(t *testing.T) *storage.Storage {
	t.Helper()

	s, err := storage.NewTempStorage()
	require.NoError(t, err)

	t.Cleanup(func() {
		err := s.Close()
		require.NoError(t, err)
	})

	return s
}
