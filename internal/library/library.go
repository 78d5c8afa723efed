package library

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ErrStorage means the library directory could not be read.
var ErrStorage = errors.New("library is unreadable")

// Index is the list of books found in a flat directory at startup.
// It is never refreshed, so it is safe for concurrent use.
type Index struct {
	dir   string
	books []string
	byID  map[string]struct{}
}

// Scan lists regular, non-hidden files in dir. Book ids are file names,
// sorted lexicographically.
func Scan(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(ErrStorage, "read %s: %v", dir, err)
	}
	idx := &Index{
		dir:   dir,
		books: make([]string, 0, len(entries)),
		byID:  make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		idx.books = append(idx.books, e.Name())
		idx.byID[e.Name()] = struct{}{}
	}
	// os.ReadDir already sorts by name, keep it explicit
	slices.Sort(idx.books)
	return idx, nil
}

func (idx *Index) Dir() string {
	return idx.dir
}

// Books returns a copy of the book ids.
func (idx *Index) Books() []string {
	return slices.Clone(idx.books)
}

func (idx *Index) Exists(id string) bool {
	_, ok := idx.byID[id]
	return ok
}

// Path resolves a book id to its file. Unknown ids are rejected, so a user
// supplied id can never escape the library directory.
func (idx *Index) Path(id string) (string, bool) {
	if !idx.Exists(id) {
		return "", false
	}
	return filepath.Join(idx.dir, id), true
}
