package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pechorka/book-reader/internal/config"
	"github.com/pechorka/book-reader/internal/service"
	"github.com/pechorka/book-reader/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.txt"), []byte("hello world"), 0o600))
	return &config.Config{
		LibraryDir:  dir,
		PageSize:    5,
		MaxBookSize: 1 << 20,
		SessionTTL:  time.Hour,
		LogLevel:    "info",
	}
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Close()) })

	ctx := context.Background()
	app.Service.Handle(ctx, service.Input{UserID: 1, Text: "/open"})
	reply := app.Service.Handle(ctx, service.Input{UserID: 1, Text: "alpha.txt"})
	require.Equal(t, session.ReadingBook, reply.Mode)
	require.Contains(t, reply.Text, "hello")
	require.Equal(t, 1, app.Sessions.Len())
}

func TestNewApp_ReloadsChangedBook(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Close()) })

	ctx := context.Background()
	text, err := app.Loader.Load(ctx, "alpha.txt")
	require.NoError(t, err)
	require.Equal(t, "hello world", text.String())

	require.NoError(t, os.WriteFile(filepath.Join(cfg.LibraryDir, "alpha.txt"), []byte("bye"), 0o600))
	require.Eventually(t, func() bool {
		text, err := app.Loader.Load(ctx, "alpha.txt")
		return err == nil && text.String() == "bye"
	}, time.Second, 10*time.Millisecond)
}

func TestNewApp_I18nOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.I18nPath = filepath.Join(t.TempDir(), "i18n.json")
	require.NoError(t, os.WriteFile(cfg.I18nPath, []byte(`{"en": {"warning_nothing_open": "nope"}}`), 0o600))

	app, err := NewApp(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Close()) })

	ctx := context.Background()
	reply := app.Service.Handle(ctx, service.Input{UserID: 1, Text: "/next"})
	require.Equal(t, "nope", reply.Text)

	reply = app.Service.Handle(ctx, service.Input{UserID: 1, Name: "Ann", Text: "/start"})
	require.Equal(t, "Hello, Ann!\nSend /open to see the list of books.", reply.Text)

	reply = app.Service.Handle(ctx, service.Input{UserID: 1, Lang: "ru", Text: "/open"})
	require.Equal(t, "Выберите книгу из списка:\nalpha.txt", reply.Text)

	require.NoError(t, os.WriteFile(cfg.I18nPath, []byte(`{"en": {"menu": "Books:\n{{books}}"}}`), 0o600))
	require.Eventually(t, func() bool {
		reply := app.Service.Handle(ctx, service.Input{UserID: 1, Text: "/open"})
		return reply.Text == "Books:\nalpha.txt"
	}, time.Second, 10*time.Millisecond)

	reply = app.Service.Handle(ctx, service.Input{UserID: 1, Text: "/start"})
	require.Equal(t, session.Idle, reply.Mode)
	require.Contains(t, reply.Text, "Send /open")
}

func TestNewApp_MissingLibrary(t *testing.T) {
	cfg := testConfig(t)
	cfg.LibraryDir = filepath.Join(cfg.LibraryDir, "missing")

	_, err := NewApp(cfg, zerolog.Nop())
	require.Error(t, err)
}

func TestStorage_Persistent(t *testing.T) {
	cfg := testConfig(t)
	cfg.CachePath = filepath.Join(t.TempDir(), "cache.db")
	cfg.CacheRetention = time.Hour

	store, err := Storage(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.FileExists(t, cfg.CachePath)
}

func TestLogger(t *testing.T) {
	cfg := testConfig(t)
	log, err := Logger(cfg)
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, log.GetLevel())

	cfg.Debug = true
	log, err = Logger(cfg)
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, log.GetLevel())
}
