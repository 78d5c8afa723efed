package handler

import (
	"context"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pechorka/book-reader/internal/handler/internal/request"
	"github.com/pechorka/book-reader/internal/handler/internal/respond"
	"github.com/pechorka/book-reader/internal/handler/mw/requestid"
	"github.com/pechorka/book-reader/internal/service"
	"github.com/rs/zerolog"
)

// maxTextLength matches the telegram message limit
const maxTextLength = 4096

type Service interface {
	Handle(ctx context.Context, in service.Input) service.Reply
}

type Library interface {
	Books() []string
}

type Handlers struct {
	svc Service
	lib Library
}

func NewHandlers(svc Service, lib Library) *Handlers {
	return &Handlers{svc: svc, lib: lib}
}

// Router builds the full HTTP API with logging and panic recovery.
func (h *Handlers) Router(log zerolog.Logger) http.Handler {
	mx := chi.NewRouter()
	mx.Use(requestid.Middleware(log))
	mx.Use(middleware.Recoverer)
	h.Register(mx)
	return mx
}

func (h *Handlers) Register(mx chi.Router) {
	mx.Get("/healthz", h.Health)
	mx.Route("/v1", func(r chi.Router) {
		r.Get("/books", h.GetBooks)
		r.Post("/users/{userID}/messages", h.PostMessage)
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type GetBooksResponse struct {
	Books []string `json:"books"`
}

func (h *Handlers) GetBooks(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, GetBooksResponse{Books: h.lib.Books()})
}

type PostMessageRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
	Name string `json:"name"`
}

type PostMessageResponse struct {
	Text     string   `json:"text"`
	Commands []string `json:"commands"`
	Mode     string   `json:"mode"`
	Book     string   `json:"book,omitempty"`
	Page     int      `json:"page,omitempty"`
}

func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respond.ErrorWithText(w, r, http.StatusBadRequest, respond.CODE_INVALID_USER_ID, "user id must be an integer")
		return
	}
	var req PostMessageRequest
	err = request.DecodeJSON(r.Body, &req)
	if err != nil {
		respond.ErrorWithCode(w, r, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return
	}
	if req.Text == "" {
		respond.ErrorWithText(w, r, http.StatusBadRequest, respond.CODE_EMPTY_TEXT, "text is required")
		return
	}
	if utf8.RuneCountInString(req.Text) > maxTextLength {
		respond.ErrorWithCode(w, r, http.StatusBadRequest, respond.CODE_TEXT_TOO_LONG)
		return
	}

	reply := h.svc.Handle(r.Context(), service.Input{
		UserID: userID,
		Lang:   req.Lang,
		Name:   req.Name,
		Text:   req.Text,
	})
	commands := reply.Commands
	if commands == nil {
		commands = []string{}
	}
	respond.JSON(w, r, PostMessageResponse{
		Text:     reply.Text,
		Commands: commands,
		Mode:     reply.Mode.String(),
		Book:     reply.Book,
		Page:     reply.Page,
	})
}
