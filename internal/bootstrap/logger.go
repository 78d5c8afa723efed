package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/pechorka/book-reader/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func Logger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), errors.Wrap(err, "invalid log level")
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	var w io.Writer = os.Stderr
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
