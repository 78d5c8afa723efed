package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoadAndWatch(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "i18n.json")
	updateFile := func(data string) {
		err := os.WriteFile(testFile, []byte(data), 0o600)
		require.NoError(t, err)
	}
	const initialData = `{"en": {"hello": "hello"}}`
	updateFile(initialData)

	loader := &mockLoader{}
	watcher, err := LoadAndWatch(testFile, loader, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, initialData, loader.last())

	const updatedData = `{"en": {"hello": "hello"}, "ru": {"hello": "привет"}}`
	updateFile(updatedData)
	require.Eventually(t, func() bool {
		return loader.last() == updatedData
	}, time.Second, 10*time.Millisecond)

	err = watcher.Close()
	require.NoError(t, err)
	const finalData = `{"en": {"hello": "hello"}, "de": {"hello": "hallo"}}`
	updateFile(finalData)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, updatedData, loader.last()) // watcher is closed, so no reload
}

func TestLoadAndWatch_LoadError(t *testing.T) {
	_, err := LoadAndWatch(filepath.Join(t.TempDir(), "missing.json"), &mockLoader{}, zerolog.Nop())
	require.Error(t, err)
}

func TestWatchDir(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 16)
	watcher, err := WatchDir(dir, func(name string) { changed <- name }, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, watcher.Close()) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.txt"), []byte("x"), 0o600))

	select {
	case name := <-changed:
		require.Equal(t, "alpha.txt", name)
	case <-time.After(time.Second):
		t.Fatal("no change reported")
	}
}

type mockLoader struct {
	mu         sync.Mutex
	lastLoaded string
}

func (m *mockLoader) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.lastLoaded = string(data)
	m.mu.Unlock()
	return nil
}

func (m *mockLoader) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoaded
}
