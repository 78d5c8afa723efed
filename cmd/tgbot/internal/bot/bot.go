package bot

import (
	"context"
	"runtime/debug"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pechorka/book-reader/internal/service"
	"github.com/pechorka/book-reader/pkg/queue"
	"github.com/pechorka/book-reader/pkg/runeslice"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Service interface {
	Handle(ctx context.Context, in service.Input) service.Reply
}

type Messages interface {
	Get(lang, id string) (string, error)
}

// sender is the part of tgbotapi.BotAPI used to talk back to users.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	service  Service
	api      *tgbotapi.BotAPI
	sender   sender
	msgQueue *queue.MessageQueue
	i18n     Messages
	log      zerolog.Logger
}

type Config struct {
	Token    string
	Debug    bool
	Service  Service
	MsgQueue *queue.MessageQueue
	I18n     Messages
	Log      zerolog.Logger
}

func NewBot(cfg Config) (*Bot, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to authorize bot")
	}
	api.Debug = cfg.Debug
	cfg.Log.Info().Str("account", api.Self.UserName).Msg("authorized")

	b := newBot(api, cfg)
	b.api = api
	return b, nil
}

func newBot(s sender, cfg Config) *Bot {
	return &Bot{
		service:  cfg.Service,
		sender:   s,
		msgQueue: cfg.MsgQueue,
		i18n:     cfg.I18n,
		log:      cfg.Log,
	}
}

func validateConfig(cfg Config) error {
	if cfg.Token == "" {
		return errors.New("token is empty")
	}
	if cfg.Service == nil {
		return errors.New("service is nil")
	}
	if cfg.MsgQueue == nil {
		return errors.New("msgQueue is nil")
	}
	if cfg.I18n == nil {
		return errors.New("i18n is nil")
	}
	return nil
}

// Run receives updates until ctx is done or Stop is called.
func (b *Bot) Run(ctx context.Context) {
	b.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	// queued messages are answered even while shutting down
	taskCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(taskCtx, update)
		}
	}
}

// Stop stops polling and waits for queued messages to be answered.
func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	b.msgQueue.Stop()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	err := b.msgQueue.Add(msg.From.ID, func() {
		b.handleMsg(ctx, msg)
	})
	switch {
	case errors.Is(err, queue.ErrQueueFull):
		b.log.Warn().Int64("user_id", msg.From.ID).Msg("message queue is full")
		b.replyWithText(msg.Chat.ID, b.getText(msg.From, busyMsgId), nil)
	case err != nil:
		b.log.Warn().Err(err).Int64("user_id", msg.From.ID).Msg("message dropped")
	}
}

func (b *Bot) handlePanic(msg *tgbotapi.Message) {
	if rec := recover(); rec != nil {
		b.log.Error().
			Interface("panic", rec).
			Str("stack", string(debug.Stack())).
			Int64("user_id", msg.From.ID).
			Msg("panic while handling message")
		b.replyWithText(msg.Chat.ID, b.getText(msg.From, panicMsgId), nil)
	}
}

func (b *Bot) handleMsg(ctx context.Context, msg *tgbotapi.Message) {
	defer b.handlePanic(msg)

	reply := b.service.Handle(ctx, service.Input{
		UserID: msg.From.ID,
		Lang:   getLanguageCode(msg.From),
		Name:   msg.From.FirstName,
		Text:   msg.Text,
	})
	b.replyWithText(msg.Chat.ID, reply.Text, reply.Commands)
}

// registerCommands fills the command menu of telegram clients.
func (b *Bot) registerCommands() {
	for _, lang := range []string{langCodeEn, langCodeRu} {
		commands := make([]tgbotapi.BotCommand, 0, len(service.BotCommands))
		for _, cmd := range service.BotCommands {
			description, err := b.i18n.Get(lang, cmd.DescriptionID)
			if err != nil {
				description = cmd.Command
			}
			commands = append(commands, tgbotapi.BotCommand{Command: cmd.Command, Description: description})
		}
		cfg := tgbotapi.NewSetMyCommandsWithScopeAndLanguage(tgbotapi.NewBotCommandScopeDefault(), lang, commands...)
		if _, err := b.sender.Request(cfg); err != nil {
			b.log.Warn().Err(err).Str("lang", lang).Msg("failed to register commands")
		}
	}
}

// replyWithText sends text split to fit the message limit. The keyboard is
// attached to the last part.
func (b *Bot) replyWithText(chatID int64, text string, commands []string) {
	parts := splitText(text, messageLengthLimit)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == len(parts)-1 {
			msg.ReplyMarkup = buildReplyMarkup(commands)
		}
		b.send(msg)
	}
}

// buildReplyMarkup puts commands in one row and book names one per row.
func buildReplyMarkup(commands []string) any {
	if len(commands) == 0 {
		return tgbotapi.NewRemoveKeyboard(true)
	}
	var rows [][]tgbotapi.KeyboardButton
	if allCommands(commands) {
		row := make([]tgbotapi.KeyboardButton, 0, len(commands))
		for _, c := range commands {
			row = append(row, tgbotapi.NewKeyboardButton(c))
		}
		rows = append(rows, row)
	} else {
		for _, c := range commands {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(c)))
		}
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

func allCommands(commands []string) bool {
	for _, c := range commands {
		if !strings.HasPrefix(c, "/") {
			return false
		}
	}
	return true
}

func splitText(text string, limit int) []string {
	if text == "" {
		return []string{""}
	}
	var parts []string
	for text != "" {
		part := runeslice.NRunes(text, limit)
		parts = append(parts, part)
		text = text[len(part):]
	}
	return parts
}

func (b *Bot) send(msg tgbotapi.Chattable) tgbotapi.Message {
	replyMsg, err := b.sender.Send(msg)
	if err != nil {
		b.log.Error().Err(err).Msg("error while sending message")
	}
	return replyMsg
}

func (b *Bot) getText(user *tgbotapi.User, id string) string {
	text, err := b.i18n.Get(getLanguageCode(user), id)
	if err != nil {
		b.log.Error().Err(err).Str("id", id).Msg("failed to get message")
		return "Something went wrong"
	}
	return text
}

func getLanguageCode(user *tgbotapi.User) string {
	lang := langCodeEn
	if user.LanguageCode == langCodeRu {
		lang = langCodeRu
	}
	return lang
}
