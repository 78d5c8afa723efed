package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "./books", cfg.LibraryDir)
	require.Equal(t, 500, cfg.PageSize)
	require.Equal(t, int64(20*1024*1024), cfg.MaxBookSize)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.CachePath)
	require.Equal(t, 30*24*time.Hour, cfg.CacheRetention)
	require.Error(t, cfg.RequireTgToken())
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envFile := filepath.Join(dir, "reader.env")
	err := os.WriteFile(envFile, []byte("READER_TG_TOKEN=secret\nREADER_PAGE_SIZE=42\nREADER_SESSION_TTL=30m\n"), 0o600)
	require.NoError(t, err)
	t.Setenv("READER_PAGE_SIZE", "") // registers cleanup for the variable
	os.Unsetenv("READER_PAGE_SIZE")
	t.Setenv("READER_TG_TOKEN", "")
	os.Unsetenv("READER_TG_TOKEN")
	t.Setenv("READER_SESSION_TTL", "")
	os.Unsetenv("READER_SESSION_TTL")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	require.Equal(t, 42, cfg.PageSize)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.NoError(t, cfg.RequireTgToken())
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("READER_PAGE_SIZE=42\n"), 0o600)
	require.NoError(t, err)
	t.Setenv("READER_PAGE_SIZE", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7, cfg.PageSize)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	for name, env := range map[string][2]string{
		"page size too big": {"READER_PAGE_SIZE", "5000"},
		"page size zero":    {"READER_PAGE_SIZE", "0"},
		"bad level":         {"READER_LOG_LEVEL", "loud"},
		"not a number":      {"READER_MAX_BOOK_SIZE", "big"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
