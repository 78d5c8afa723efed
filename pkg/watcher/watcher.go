package watcher

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Loader interface {
	Load(path string) error
}

type Watcher struct {
	stop chan struct{}
	done chan error
}

// LoadAndWatch loads path once and reloads it on every write.
func LoadAndWatch(path string, loader Loader, log zerolog.Logger) (*Watcher, error) {
	err := loader.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load file")
	}
	return watch(path, func(event fsnotify.Event) {
		if event.Op&fsnotify.Write != fsnotify.Write {
			return
		}
		if err := loader.Load(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to reload file")
		}
	}, log)
}

// WatchDir calls onChange with the base name of every file in dir that was
// written, created, removed or renamed.
func WatchDir(dir string, onChange func(name string), log zerolog.Logger) (*Watcher, error) {
	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	return watch(dir, func(event fsnotify.Event) {
		if event.Op&changed == 0 {
			return
		}
		onChange(filepath.Base(event.Name))
	}, log)
}

func watch(path string, onEvent func(fsnotify.Event), log zerolog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	err = watcher.Add(path)
	if err != nil {
		watcher.Close()
		return nil, errors.Wrap(err, "failed to add path to watcher")
	}
	stop := make(chan struct{})
	done := make(chan error)
	go func() {
		events, errs := watcher.Events, watcher.Errors
		for {
			select {
			case event, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				onEvent(event)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				log.Error().Err(err).Str("path", path).Msg("failed to watch path")
			case <-stop:
				done <- watcher.Close()
				return
			}
		}
	}()
	return &Watcher{stop: stop, done: done}, nil
}

func (w *Watcher) Close() error {
	close(w.stop)
	return <-w.done
}
