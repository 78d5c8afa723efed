package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envPrefix = "READER"

type Config struct {
	TgToken        string        `envconfig:"TG_TOKEN"`
	LibraryDir     string        `envconfig:"LIBRARY_DIR" default:"./books" validate:"required"`
	PageSize       int           `envconfig:"PAGE_SIZE" default:"500" validate:"min=1,max=4000"`
	MaxBookSize    int64         `envconfig:"MAX_BOOK_SIZE" default:"20971520" validate:"min=1"` // 20 MB
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"12h" validate:"min=1s"`
	CachePath      string        `envconfig:"CACHE_PATH"`                                        // empty means a temp file
	CacheRetention time.Duration `envconfig:"CACHE_RETENTION" default:"720h"`
	I18nPath       string        `envconfig:"I18N_PATH"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogPretty      bool          `envconfig:"LOG_PRETTY"`
	Debug          bool          `envconfig:"DEBUG"`
}

// Load reads READER_* variables. Variables from envFile are applied first
// without overriding the ones already set; a missing default .env is fine.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", envFile)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, errors.Wrap(err, "failed to load .env")
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// RequireTgToken is checked by the telegram binary only.
func (c *Config) RequireTgToken() error {
	if c.TgToken == "" {
		return errors.New(envPrefix + "_TG_TOKEN is required")
	}
	return nil
}
