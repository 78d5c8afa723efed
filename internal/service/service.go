package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/pechorka/book-reader/internal/booktext"
	"github.com/pechorka/book-reader/internal/session"
	"github.com/pechorka/book-reader/pkg/runeslice"
	"github.com/pechorka/book-reader/pkg/sizeconverter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrInvalidState is reported when a command is not valid in the current mode,
// for example /next while no book is open.
var ErrInvalidState = errors.New("command is not valid in current mode")

var ErrPageOutOfRange = errors.New("page out of range")

// telegram caps a message at 4096 runes and the footer needs room
const maxPageSize = 4000

type Library interface {
	Books() []string
	Exists(id string) bool
}

type Loader interface {
	Load(ctx context.Context, id string) (booktext.Text, error)
	MaxSize() int64
}

type Sessions interface {
	Get(userID int64) *session.Session
}

type Messages interface {
	Get(lang, id string) (string, error)
	GetWithArgs(lang, id string, args map[string]string) (string, error)
}

type Config struct {
	Library  Library
	Loader   Loader
	Sessions Sessions
	Messages Messages
	PageSize int
	Log      zerolog.Logger
}

type handlerFunc func(ctx context.Context, r *request) Reply

type request struct {
	Input
	cmd  command
	sess *session.Session
}

// Service is the reading state machine. It is shared by all gateways.
type Service struct {
	library  Library
	loader   Loader
	sessions Sessions
	msgs     Messages
	pageSize int
	log      zerolog.Logger

	handlers map[string]handlerFunc
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Library == nil || cfg.Loader == nil || cfg.Sessions == nil || cfg.Messages == nil {
		return nil, errors.New("library, loader, sessions and messages are required")
	}
	if cfg.PageSize < 1 {
		return nil, errors.New("page size must be greater than 0")
	}
	if cfg.PageSize > maxPageSize {
		return nil, errors.Errorf("page size is too big, max is %d", maxPageSize)
	}
	s := &Service{
		library:  cfg.Library,
		loader:   cfg.Loader,
		sessions: cfg.Sessions,
		msgs:     cfg.Messages,
		pageSize: cfg.PageSize,
		log:      cfg.Log,
	}
	s.handlers = map[string]handlerFunc{
		cmdStart: s.start,
		cmdReset: s.start,
		cmdOpen:  s.open,
		cmdNext:  s.next,
		cmdPrev:  s.prev,
		cmdPage:  s.page,
		cmdHelp:  s.help,
	}
	return s, nil
}

func (s *Service) PageSize() int {
	return s.pageSize
}

// Handle applies one message to the session of in.UserID. Messages of the same
// user are applied one at a time.
func (s *Service) Handle(ctx context.Context, in Input) Reply {
	sess := s.sessions.Get(in.UserID)
	sess.Lock()
	defer sess.Unlock()

	r := &request{Input: in, cmd: parseCommand(in.Text), sess: sess}
	before := sess.Mode

	handler := s.text
	if r.cmd.IsCommand {
		h, ok := s.handlers[r.cmd.Name]
		if !ok {
			h = s.unknown
		}
		handler = h
	}
	reply := handler(ctx, r)

	state := sess.State()
	reply.Mode = state.Mode
	reply.Book = state.Book
	reply.Page = state.Page

	ev := s.log.Debug()
	if reply.Err != nil {
		ev = s.log.Info().Err(reply.Err)
	}
	ev.Int64("user_id", in.UserID).
		Str("text", runeslice.Truncate(in.Text, 64)).
		Stringer("from", before).
		Stringer("to", state.Mode).
		Str("book", state.Book).
		Int("page", state.Page).
		Msg("handled message")
	return reply
}

func (s *Service) start(_ context.Context, r *request) Reply {
	r.sess.Reset()
	name := r.Name
	if name == "" {
		name = "reader"
	}
	return Reply{
		Text:     s.messageWithArgs(r.Lang, greetingMsgId, map[string]string{"name": name}),
		Commands: []string{slashed(cmdOpen)},
	}
}

func (s *Service) open(_ context.Context, r *request) Reply {
	r.sess.StartPicking()
	books := s.library.Books()
	if len(books) == 0 {
		return Reply{
			Text:     s.message(r.Lang, menuEmptyMsgId),
			Commands: []string{slashed(cmdOpen)},
		}
	}
	return Reply{
		Text:     s.messageWithArgs(r.Lang, menuMsgId, map[string]string{"books": s.bookList()}),
		Commands: books,
	}
}

func (s *Service) next(ctx context.Context, r *request) Reply {
	if r.sess.Mode != session.ReadingBook {
		return s.invalidState(r)
	}
	return s.showPage(ctx, r, r.sess.Page+1)
}

func (s *Service) prev(ctx context.Context, r *request) Reply {
	if r.sess.Mode != session.ReadingBook {
		return s.invalidState(r)
	}
	if r.sess.Page <= 1 {
		return Reply{
			Text:     s.message(r.Lang, firstPageMsgId),
			Commands: pageCommands(r.sess.Page),
		}
	}
	return s.showPage(ctx, r, r.sess.Page-1)
}

func (s *Service) page(ctx context.Context, r *request) Reply {
	if r.sess.Mode != session.ReadingBook {
		return s.invalidState(r)
	}
	n, err := strconv.Atoi(r.cmd.Args)
	if err != nil {
		return Reply{
			Text:     s.message(r.Lang, pageUsageMsgId),
			Commands: pageCommands(r.sess.Page),
		}
	}
	text, err := s.loader.Load(ctx, r.sess.Book)
	if err != nil {
		return s.loadFailed(r, r.sess.Book, err)
	}
	total := text.Pages(s.pageSize)
	if n < 1 || n > total {
		return Reply{
			Text: s.messageWithArgs(r.Lang, pageOutOfRangeMsgId, map[string]string{
				"page":  strconv.Itoa(n),
				"total": strconv.Itoa(total),
			}),
			Commands: pageCommands(r.sess.Page),
			Err:      errors.Wrapf(ErrPageOutOfRange, "page %d of %d", n, total),
		}
	}
	r.sess.Page = n
	return s.pageReply(r, text, "")
}

func (s *Service) help(_ context.Context, r *request) Reply {
	return Reply{
		Text:     s.message(r.Lang, helpMsgId),
		Commands: s.commandsFor(r.sess),
	}
}

func (s *Service) unknown(_ context.Context, r *request) Reply {
	token, _, _ := strings.Cut(strings.TrimSpace(r.cmd.Text), " ")
	return Reply{
		Text:     s.messageWithArgs(r.Lang, unknownCommandMsgId, map[string]string{"command": token}),
		Commands: s.commandsFor(r.sess),
	}
}

// text handles a message that is not a command.
func (s *Service) text(ctx context.Context, r *request) Reply {
	switch r.sess.Mode {
	case session.PickingBook:
		return s.selectBook(ctx, r, r.cmd.Text)
	case session.ReadingBook:
		return Reply{
			Text:     s.message(r.Lang, readingHintMsgId),
			Commands: pageCommands(r.sess.Page),
		}
	default:
		return Reply{
			Text:     s.message(r.Lang, nothingOpenMsgId),
			Commands: []string{slashed(cmdOpen)},
		}
	}
}

func (s *Service) selectBook(ctx context.Context, r *request, book string) Reply {
	if !s.library.Exists(book) {
		return s.bookNotFound(r)
	}
	text, err := s.loader.Load(ctx, book)
	if err != nil {
		return s.loadFailed(r, book, err)
	}
	r.sess.StartReading(book)
	if text.Pages(s.pageSize) == 0 {
		return s.finished(r, book)
	}
	chosen := s.messageWithArgs(r.Lang, bookChosenMsgId, map[string]string{"book": book})
	return s.pageReply(r, text, chosen)
}

// showPage moves the reader to page n. Going past the last page finishes the
// book and returns the reader to the book menu.
func (s *Service) showPage(ctx context.Context, r *request, n int) Reply {
	text, err := s.loader.Load(ctx, r.sess.Book)
	if err != nil {
		return s.loadFailed(r, r.sess.Book, err)
	}
	if n > text.Pages(s.pageSize) {
		return s.finished(r, r.sess.Book)
	}
	r.sess.Page = n
	return s.pageReply(r, text, "")
}

func (s *Service) pageReply(r *request, text booktext.Text, header string) Reply {
	page := r.sess.Page
	footer := s.messageWithArgs(r.Lang, pageFooterMsgId, map[string]string{
		"book":  r.sess.Book,
		"page":  strconv.Itoa(page),
		"total": strconv.Itoa(text.Pages(s.pageSize)),
	})
	body := text.Page(page, s.pageSize) + "\n\n" + footer
	if header != "" {
		body = header + "\n\n" + body
	}
	return Reply{
		Text:     body,
		Commands: pageCommands(page),
	}
}

func (s *Service) finished(r *request, book string) Reply {
	r.sess.StartPicking()
	return Reply{
		Text: s.messageWithArgs(r.Lang, bookFinishedMsgId, map[string]string{
			"book":  book,
			"books": s.bookList(),
		}),
		Commands: s.library.Books(),
	}
}

func (s *Service) bookNotFound(r *request) Reply {
	r.sess.StartPicking()
	return Reply{
		Text:     s.messageWithArgs(r.Lang, bookNotFoundMsgId, map[string]string{"books": s.bookList()}),
		Commands: s.library.Books(),
		Err:      booktext.ErrNotFound,
	}
}

// loadFailed maps a loader error to a reply. Problems with a single book send
// the reader back to the menu, a canceled request keeps the session as is and
// anything else resets it.
func (s *Service) loadFailed(r *request, book string, err error) Reply {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Warn().Err(err).Int64("user_id", r.UserID).Str("book", book).Msg("book load interrupted")
		return Reply{
			Text:     s.message(r.Lang, internalErrorMsgId),
			Commands: s.commandsFor(r.sess),
			Err:      err,
		}
	case errors.Is(err, booktext.ErrNotFound):
		reply := s.bookNotFound(r)
		reply.Err = err
		return reply
	case errors.Is(err, booktext.ErrDecode):
		r.sess.StartPicking()
		return Reply{
			Text: s.messageWithArgs(r.Lang, bookNotReadableMsgId, map[string]string{
				"book":  book,
				"books": s.bookList(),
			}),
			Commands: s.library.Books(),
			Err:      err,
		}
	case errors.Is(err, booktext.ErrTooBig):
		r.sess.StartPicking()
		return Reply{
			Text: s.messageWithArgs(r.Lang, bookTooBigMsgId, map[string]string{
				"book":     book,
				"books":    s.bookList(),
				"max_size": sizeconverter.HumanReadableSize(s.loader.MaxSize()),
			}),
			Commands: s.library.Books(),
			Err:      err,
		}
	default:
		s.log.Error().Err(err).Int64("user_id", r.UserID).Str("book", book).Msg("failed to load book")
		r.sess.Reset()
		return Reply{
			Text:     s.message(r.Lang, internalErrorMsgId),
			Commands: []string{slashed(cmdOpen)},
			Err:      err,
		}
	}
}

func (s *Service) invalidState(r *request) Reply {
	reply := Reply{Err: errors.Wrapf(ErrInvalidState, "/%s in %s", r.cmd.Name, r.sess.Mode)}
	if r.sess.Mode == session.PickingBook {
		reply.Text = s.messageWithArgs(r.Lang, pickFirstMsgId, map[string]string{"books": s.bookList()})
		reply.Commands = s.library.Books()
		return reply
	}
	reply.Text = s.message(r.Lang, nothingOpenMsgId)
	reply.Commands = []string{slashed(cmdOpen)}
	return reply
}

func (s *Service) commandsFor(sess *session.Session) []string {
	switch sess.Mode {
	case session.PickingBook:
		return s.library.Books()
	case session.ReadingBook:
		return pageCommands(sess.Page)
	default:
		return []string{slashed(cmdOpen)}
	}
}

func (s *Service) bookList() string {
	return strings.Join(s.library.Books(), ",\n")
}

func pageCommands(page int) []string {
	if page > 1 {
		return []string{slashed(cmdOpen), slashed(cmdPrev), slashed(cmdNext)}
	}
	return []string{slashed(cmdOpen), slashed(cmdNext)}
}

func (s *Service) message(lang, id string) string {
	msg, err := s.msgs.Get(lang, id)
	if err != nil {
		s.log.Error().Err(err).Str("lang", lang).Str("id", id).Msg("failed to get message")
		return somethingWentWrong
	}
	return msg
}

func (s *Service) messageWithArgs(lang, id string, args map[string]string) string {
	msg, err := s.msgs.GetWithArgs(lang, id, args)
	if err != nil {
		s.log.Error().Err(err).Str("lang", lang).Str("id", id).Msg("failed to get message")
		return somethingWentWrong
	}
	return msg
}
