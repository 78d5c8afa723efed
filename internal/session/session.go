package session

import "sync"

type Mode int

const (
	Idle Mode = iota
	PickingBook
	ReadingBook
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case PickingBook:
		return "picking_book"
	case ReadingBook:
		return "reading_book"
	default:
		return "unknown"
	}
}

// Session is the reading progress of one user. Callers must hold the lock
// while reading or changing it.
type Session struct {
	mu sync.Mutex

	UserID int64
	Mode   Mode
	Book   string // set only in ReadingBook
	Page   int    // 1-based, meaningful only in ReadingBook
}

func (s *Session) Lock() {
	s.mu.Lock()
}

func (s *Session) Unlock() {
	s.mu.Unlock()
}

// Reset returns the session to Idle.
func (s *Session) Reset() {
	s.Mode = Idle
	s.Book = ""
	s.Page = 0
}

func (s *Session) StartPicking() {
	s.Reset()
	s.Mode = PickingBook
}

func (s *Session) StartReading(book string) {
	s.Mode = ReadingBook
	s.Book = book
	s.Page = 1
}

// State is a copy of the session fields, safe to use without the lock.
type State struct {
	Mode Mode
	Book string
	Page int
}

func (s *Session) State() State {
	return State{Mode: s.Mode, Book: s.Book, Page: s.Page}
}
