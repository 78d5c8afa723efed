package bootstrap

import (
	"time"

	"github.com/pechorka/book-reader/internal/config"
	"github.com/pechorka/book-reader/internal/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Storage opens the processed books cache. Debug runs and an empty path get a
// temp file that is removed on close.
func Storage(cfg *config.Config, log zerolog.Logger) (*storage.Storage, error) {
	var (
		store *storage.Storage
		err   error
	)
	if cfg.Debug || cfg.CachePath == "" {
		store, err = storage.NewTempStorage()
	} else {
		store, err = storage.NewStorage(cfg.CachePath)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache")
	}

	if cfg.CacheRetention > 0 {
		deleted, err := store.DeleteProcessedBooksOlderThan(time.Now().Add(-cfg.CacheRetention))
		if err != nil {
			store.Close()
			return nil, errors.Wrap(err, "failed to prune cache")
		}
		if deleted > 0 {
			log.Info().Int("deleted", deleted).Msg("pruned processed books")
		}
	}
	return store, nil
}
