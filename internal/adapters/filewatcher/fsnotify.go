// Package filewatcher provides file system monitoring adapters.
package filewatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/0xcro3dile/boardchat/internal/domain/ports"
)

// DefaultSettle is how long the exports must stay unchanged before a conversion is signalled.
const DefaultSettle = 500 * time.Millisecond

// DefaultExports are the board export names the watcher waits for.
var DefaultExports = []string{"posts.csv", "comments.csv"}

// ExportWatcher implements ports.FileWatcher for a fixed set of export files in one directory.
//
// Writes to an export restart a settle timer. When the timer fires and every export exists,
// one FileModified event carrying the directory is emitted, so a board dump that rewrites both
// files produces a single event. Removing or renaming an export emits FileDeleted at once.
// Other files in the directory are ignored.
type ExportWatcher struct {
	watcher *fsnotify.Watcher
	exports []string
	settle  time.Duration
}

// NewExportWatcher creates a watcher for the named exports. No names means DefaultExports,
// settle <= 0 means DefaultSettle.
func NewExportWatcher(settle time.Duration, exports ...string) (*ExportWatcher, error) {
	if len(exports) == 0 {
		exports = DefaultExports
	}
	for _, name := range exports {
		if name == "" || filepath.Base(name) != name {
			return nil, errors.New("export names must be plain file names")
		}
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ExportWatcher{
		watcher: w,
		exports: append([]string(nil), exports...),
		settle:  settle,
	}, nil
}

// Watch starts monitoring dir. The channel closes when ctx is done or the watcher is stopped.
func (w *ExportWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	log := zerolog.Ctx(ctx).With().Str("dir", dir).Logger()
	events := make(chan ports.FileEvent, 16)

	go func() {
		defer close(events)

		timer := time.NewTimer(w.settle)
		timer.Stop()
		defer timer.Stop()
		pending := false

		emit := func(ev ports.FileEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isExport(event.Name) {
					continue
				}
				switch {
				case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
					pending = true
					timer.Reset(w.settle)
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					if !emit(ports.FileEvent{Path: event.Name, Operation: ports.FileDeleted}) {
						return
					}
				}

			case <-timer.C:
				if !pending {
					continue
				}
				pending = false
				if missing := w.missing(dir); len(missing) > 0 {
					log.Debug().Strs("missing", missing).Msg("exports incomplete, waiting")
					continue
				}
				if !emit(ports.FileEvent{Path: dir, Operation: ports.FileModified}) {
					return
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("file watcher error")
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *ExportWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *ExportWatcher) isExport(path string) bool {
	base := filepath.Base(path)
	for _, name := range w.exports {
		if base == name {
			return true
		}
	}
	return false
}

// missing lists the exports not present in dir.
func (w *ExportWatcher) missing(dir string) []string {
	var out []string
	for _, name := range w.exports {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			out = append(out, name)
		}
	}
	return out
}
