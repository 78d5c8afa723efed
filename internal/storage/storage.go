package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrNotFound = errors.New("not found")
)

var (
	bktProcessedBooks = []byte("processed_books")
)

var (
	fullTextKey = []byte("full_text")
)

// Storage is a wrapper around bolt.DB
type Storage struct {
	db        *bolt.DB
	closeFunc func() error
}

// NewStorage creates a new storage
func NewStorage(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt db %s", path)
	}
	return &Storage{
		db:        db,
		closeFunc: db.Close,
	}, nil
}

// NewTempStorage creates a storage in the temp dir that is removed on Close.
func NewTempStorage() (*Storage, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("book-reader-%s.db", uuid.New().String()))
	storage, err := NewStorage(path)
	if err != nil {
		return nil, err
	}
	originalCloseFunc := storage.closeFunc
	storage.closeFunc = func() error {
		if err := originalCloseFunc(); err != nil {
			return err
		}
		return os.Remove(path)
	}
	return storage, nil
}

// Close closes the storage
func (s *Storage) Close() error {
	return s.closeFunc()
}

// AddProcessedBook stores normalized text under its checksum. When the
// checksum is already known the existing record is returned untouched.
func (s *Storage) AddProcessedBook(newPb NewProcessedBook) (ProcessedBook, error) {
	var pb ProcessedBook
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bktProcessedBooks)
		if err != nil {
			return err
		}
		existing, err := getProcessedBook(b, newPb.CheckSum)
		switch err {
		case nil:
			pb = existing
			return nil
		case ErrNotFound:
		default:
			return err
		}
		textBucketName, err := fillTextBucket(tx, newPb.Text)
		if err != nil {
			return err
		}
		pb = ProcessedBook{
			BucketName: textBucketName,
			CheckSum:   newPb.CheckSum,
			RuneCount:  newPb.RuneCount,
			CreatedAt:  time.Now(),
		}
		return putProcessedBook(b, pb)
	})
	return pb, err
}

func (s *Storage) GetProcessedBookByChecksum(checksum []byte) (ProcessedBookWithText, error) {
	var result ProcessedBookWithText
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktProcessedBooks)
		if b == nil {
			return ErrNotFound
		}
		pb, err := getProcessedBook(b, checksum)
		if err != nil {
			return err
		}
		textBucket := tx.Bucket(pb.BucketName)
		if textBucket == nil { // should not happen
			return errors.New("unexpected error: text bucket not found")
		}
		result = ProcessedBookWithText{
			ProcessedBook: pb,
			Text:          string(textBucket.Get(fullTextKey)), // copy, bolt memory is only valid inside tx
		}
		return nil
	})
	return result, err
}

// DeleteProcessedBooksOlderThan drops cached texts created before t and
// returns how many were removed.
func (s *Storage) DeleteProcessedBooksOlderThan(t time.Time) (int, error) {
	var deleted int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktProcessedBooks)
		if b == nil {
			return nil
		}
		var stale []ProcessedBook
		err := b.ForEach(func(_, v []byte) error {
			pb, err := unmarshalProcessedBook(v)
			if err != nil {
				return err
			}
			if pb.CreatedAt.Before(t) {
				stale = append(stale, pb)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, pb := range stale {
			if err := tx.DeleteBucket(pb.BucketName); err != nil && err != bolt.ErrBucketNotFound {
				return errors.Wrap(err, "failed to delete text bucket")
			}
			if err := b.Delete(pb.CheckSum); err != nil {
				return errors.Wrap(err, "failed to delete processed book")
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// helper functions

func putProcessedBook(b *bolt.Bucket, pb ProcessedBook) error {
	data, err := json.Marshal(pb)
	if err != nil {
		return errors.Wrap(err, "failed to marshal processed book")
	}
	return b.Put(pb.CheckSum, data)
}

func getProcessedBook(b *bolt.Bucket, checksum []byte) (ProcessedBook, error) {
	data := b.Get(checksum)
	if data == nil {
		return ProcessedBook{}, ErrNotFound
	}
	return unmarshalProcessedBook(data)
}

func unmarshalProcessedBook(data []byte) (pb ProcessedBook, err error) {
	err = json.Unmarshal(data, &pb)
	return pb, errors.Wrap(err, "failed to unmarshal processed book")
}

func fillTextBucket(tx *bolt.Tx, text string) ([]byte, error) {
	textBucketName := []byte(uuid.New().String())
	textBucket, err := tx.CreateBucketIfNotExists(textBucketName)
	if err != nil {
		return nil, err
	}
	if err = textBucket.Put(fullTextKey, []byte(text)); err != nil {
		return nil, err
	}
	return textBucketName, nil
}
