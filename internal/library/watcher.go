package library

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher ingests audio files that appear in a directory after startup.
type Watcher struct {
	lib     *Library
	match   func(path string) bool
	watcher *fsnotify.Watcher
	log     *zap.Logger
}

// NewWatcher starts watching dir. Call Run to process events and Close to
// release the watch.
func NewWatcher(lib *Library, dir string, match func(path string) bool, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{lib: lib, match: match, watcher: fw, log: log}, nil
}

// Run blocks until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.match(event.Name) || w.lib.Contains(event.Name) {
		return
	}
	w.log.Debug("new file in music dir", zap.String("path", event.Name))
	w.lib.Ingest(event.Name)
}

// Close stops the underlying watch.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
