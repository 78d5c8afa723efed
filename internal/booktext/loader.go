package booktext

import (
	"context"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/pechorka/book-reader/internal/storage"
	"github.com/pechorka/book-reader/pkg/filechecksum"
	"github.com/pechorka/book-reader/pkg/fileparser/plaintext"
	"github.com/pechorka/book-reader/pkg/sizeconverter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound = errors.New("book not found")
	ErrDecode   = errors.New("book is not valid utf-8 text")
	ErrTooBig   = errors.New("book is too big")
)

const defaultMaxSize = 20 * 1024 * 1024 // 20 MB

type Index interface {
	Path(id string) (string, bool)
}

// Store persists normalized texts by raw content checksum.
type Store interface {
	AddProcessedBook(newPb storage.NewProcessedBook) (storage.ProcessedBook, error)
	GetProcessedBookByChecksum(checksum []byte) (storage.ProcessedBookWithText, error)
}

type Config struct {
	Index   Index
	Store   Store // optional
	MaxSize int64 // in bytes
	Log     zerolog.Logger
}

// Loader reads books from the library and normalizes them. Results are
// cached in memory until the file's size or modification time changes or
// Forget is called for the book.
type Loader struct {
	index      Index
	store      Store
	maxSize    int64
	maxSizeErr error
	log        zerolog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	cached map[string]cachedText
}

type cachedText struct {
	text    Text
	size    int64
	modTime time.Time
}

func NewLoader(cfg Config) *Loader {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultMaxSize
	}
	return &Loader{
		index:      cfg.Index,
		store:      cfg.Store,
		maxSize:    cfg.MaxSize,
		maxSizeErr: errors.Wrap(ErrTooBig, "max size is "+sizeconverter.HumanReadableSize(cfg.MaxSize)),
		log:        cfg.Log.With().Str("component", "booktext").Logger(),
		cached:     make(map[string]cachedText),
	}
}

func (l *Loader) MaxSize() int64 {
	return l.maxSize
}

// Load returns the normalized text of the book. Concurrent loads of one book
// share a single read.
func (l *Loader) Load(ctx context.Context, id string) (Text, error) {
	if err := ctx.Err(); err != nil {
		return Text{}, err
	}
	path, ok := l.index.Path(id)
	if !ok {
		return Text{}, errors.Wrapf(ErrNotFound, "unknown book %q", id)
	}
	ch := l.group.DoChan(id, func() (interface{}, error) {
		return l.load(id, path)
	})
	select {
	case <-ctx.Done():
		return Text{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Text{}, res.Err
		}
		return res.Val.(Text), nil
	}
}

// Forget drops the cached text of the book.
func (l *Loader) Forget(id string) {
	l.mu.Lock()
	delete(l.cached, id)
	l.mu.Unlock()
}

func (l *Loader) load(id, path string) (Text, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Text{}, errors.Wrapf(ErrNotFound, "book %q was removed", id)
		}
		return Text{}, errors.Wrap(err, "failed to stat book")
	}
	if !info.Mode().IsRegular() {
		return Text{}, errors.Wrapf(ErrNotFound, "book %q is not a file", id)
	}
	if info.Size() > l.maxSize {
		return Text{}, l.maxSizeErr
	}
	if text, ok := l.fromCache(id, info); ok {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Text{}, errors.Wrapf(ErrNotFound, "book %q was removed", id)
		}
		return Text{}, errors.Wrap(err, "failed to read book")
	}
	if int64(len(data)) > l.maxSize {
		return Text{}, l.maxSizeErr
	}
	text, err := l.normalize(id, data)
	if err != nil {
		return Text{}, err
	}

	l.mu.Lock()
	l.cached[id] = cachedText{text: text, size: info.Size(), modTime: info.ModTime()}
	l.mu.Unlock()
	return text, nil
}

func (l *Loader) fromCache(id string, info fs.FileInfo) (Text, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.cached[id]
	if !ok || c.size != info.Size() || !c.modTime.Equal(info.ModTime()) {
		return Text{}, false
	}
	return c.text, true
}

func (l *Loader) normalize(id string, data []byte) (Text, error) {
	checksum := filechecksum.Calculate(data)
	if l.store != nil {
		pb, err := l.store.GetProcessedBookByChecksum(checksum)
		switch {
		case err == nil:
			return NewText(id, pb.Text), nil
		case errors.Is(err, storage.ErrNotFound):
		default:
			l.log.Warn().Err(err).Str("book", id).Msg("failed to read processed book")
		}
	}

	raw, err := plaintext.PlainText(data)
	if err != nil {
		return Text{}, errors.Wrapf(ErrDecode, "book %q: %v", id, err)
	}
	text := NewText(id, Normalize(raw))

	if l.store != nil {
		_, err := l.store.AddProcessedBook(storage.NewProcessedBook{
			CheckSum:  checksum,
			Text:      text.String(),
			RuneCount: int64(text.Len()),
		})
		if err != nil {
			l.log.Warn().Err(err).Str("book", id).Msg("failed to save processed book")
		}
	}
	l.log.Debug().Str("book", id).Int("runes", text.Len()).Msg("book normalized")
	return text, nil
}
