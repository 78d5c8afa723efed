package bootstrap

import (
	stderrors "errors"

	"github.com/pechorka/book-reader/internal/booktext"
	"github.com/pechorka/book-reader/internal/config"
	"github.com/pechorka/book-reader/internal/library"
	"github.com/pechorka/book-reader/internal/service"
	"github.com/pechorka/book-reader/internal/session"
	"github.com/pechorka/book-reader/pkg/i18n"
	"github.com/pechorka/book-reader/pkg/watcher"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const fallbackLang = "en"

// App holds everything the gateways share.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Library  *library.Index
	Loader   *booktext.Loader
	Sessions *session.Store
	I18n     *i18n.Localies
	Service  *service.Service

	closers []func() error
}

func NewApp(cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	app := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			err = stderrors.Join(err, app.Close())
		}
	}()

	app.Library, err = library.Scan(cfg.LibraryDir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", cfg.LibraryDir).Int("books", len(app.Library.Books())).Msg("library scanned")

	store, err := Storage(cfg, log)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, store.Close)

	app.Loader = booktext.NewLoader(booktext.Config{
		Index:   app.Library,
		Store:   store,
		MaxSize: cfg.MaxBookSize,
		Log:     log.With().Str("component", "loader").Logger(),
	})

	dirWatcher, err := watcher.WatchDir(cfg.LibraryDir, func(name string) {
		if app.Library.Exists(name) {
			app.Loader.Forget(name)
		}
	}, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to watch library")
	}
	app.closers = append(app.closers, dirWatcher.Close)

	if err := app.loadMessages(); err != nil {
		return nil, err
	}

	app.Sessions = session.NewStore(session.Config{TTL: cfg.SessionTTL})

	app.Service, err = service.NewService(service.Config{
		Library:  app.Library,
		Loader:   app.Loader,
		Sessions: app.Sessions,
		Messages: app.I18n,
		PageSize: cfg.PageSize,
		Log:      log.With().Str("component", "service").Logger(),
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// loadMessages loads the built-in translations. The override file, when
// configured, is merged over them and re-merged on every write.
func (a *App) loadMessages() error {
	a.I18n = i18n.New(fallbackLang)
	if err := a.I18n.SetDefaults(service.DefaultMessages); err != nil {
		return errors.Wrap(err, "failed to load default messages")
	}
	if a.Config.I18nPath == "" {
		return nil
	}
	w, err := watcher.LoadAndWatch(a.Config.I18nPath, a.I18n, a.Log)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", a.Config.I18nPath)
	}
	a.closers = append(a.closers, w.Close)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return stderrors.Join(errs...)
}
