package bot

import (
	"context"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pechorka/book-reader/internal/service"
	"github.com/pechorka/book-reader/pkg/i18n"
	"github.com/pechorka/book-reader/pkg/queue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeService struct {
	mu  sync.Mutex
	got []service.Input
}

func (f *fakeService) Handle(_ context.Context, in service.Input) service.Reply {
	f.mu.Lock()
	f.got = append(f.got, in)
	f.mu.Unlock()
	switch in.Text {
	case "/panic":
		panic("boom")
	case "/open":
		return service.Reply{Text: "books", Commands: []string{"alpha.txt", "beta.txt"}}
	case "/long":
		return service.Reply{Text: strings.Repeat("я", messageLengthLimit+10), Commands: []string{"/open"}}
	default:
		return service.Reply{Text: "page", Commands: []string{"/open", "/prev", "/next"}}
	}
}

func newTestBot(t *testing.T, maxPerUser int) (*Bot, *fakeSender, *fakeService) {
	t.Helper()
	msgs := i18n.New(langCodeEn)
	require.NoError(t, msgs.SetDefaults(service.DefaultMessages))
	snd := &fakeSender{}
	svc := &fakeService{}
	b := newBot(snd, Config{
		Service:  svc,
		MsgQueue: queue.NewMessageQueue(queue.Config{MaxPerUser: maxPerUser}),
		I18n:     msgs,
		Log:      zerolog.Nop(),
	})
	return b, snd, svc
}

func update(userID int64, lang, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Ann", LanguageCode: lang},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func TestBot_HandleUpdate(t *testing.T) {
	b, snd, svc := newTestBot(t, 0)
	ctx := context.Background()

	b.handleUpdate(ctx, update(1, "ru", "/next"))
	b.handleUpdate(ctx, update(1, "de", "/open"))
	b.handleUpdate(ctx, tgbotapi.Update{}) // no message
	b.msgQueue.Stop()

	require.Equal(t, []service.Input{
		{UserID: 1, Lang: "ru", Name: "Ann", Text: "/next"},
		{UserID: 1, Lang: "en", Name: "Ann", Text: "/open"},
	}, svc.got)
	require.Len(t, snd.sent, 2)

	pageKeyboard := snd.sent[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.Len(t, pageKeyboard.Keyboard, 1)
	require.Len(t, pageKeyboard.Keyboard[0], 3)
	require.Equal(t, "/prev", pageKeyboard.Keyboard[0][1].Text)

	menuKeyboard := snd.sent[1].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.Len(t, menuKeyboard.Keyboard, 2)
	require.Equal(t, "beta.txt", menuKeyboard.Keyboard[1][0].Text)
}

func TestBot_Panic(t *testing.T) {
	b, snd, _ := newTestBot(t, 0)

	b.handleUpdate(context.Background(), update(1, "en", "/panic"))
	b.msgQueue.Stop()

	require.Len(t, snd.sent, 1)
	require.Equal(t, "Something went wrong, please try again later.", snd.sent[0].Text)
}

func TestBot_LongReply(t *testing.T) {
	b, snd, _ := newTestBot(t, 0)

	b.handleUpdate(context.Background(), update(1, "en", "/long"))
	b.msgQueue.Stop()

	require.Len(t, snd.sent, 2)
	require.Nil(t, snd.sent[0].ReplyMarkup)
	require.NotNil(t, snd.sent[1].ReplyMarkup)
	require.Equal(t, strings.Repeat("я", 10), snd.sent[1].Text)
}

func TestBot_RegisterCommands(t *testing.T) {
	b, snd, _ := newTestBot(t, 0)

	b.registerCommands()

	require.Len(t, snd.requests, 2)
	cfg := snd.requests[1].(tgbotapi.SetMyCommandsConfig)
	require.Equal(t, langCodeRu, cfg.LanguageCode)
	require.Len(t, cfg.Commands, len(service.BotCommands))
	require.Equal(t, "next", cfg.Commands[2].Command)
	require.Equal(t, "следующая страница", cfg.Commands[2].Description)
}

func TestSplitText(t *testing.T) {
	require.Equal(t, []string{""}, splitText("", 3))
	require.Equal(t, []string{"abc"}, splitText("abc", 3))
	require.Equal(t, []string{"абв", "г"}, splitText("абвг", 3))
}
