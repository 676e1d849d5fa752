package script

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tessro/broadcast/internal/logging"
)

// debounce batches the burst of events editors produce on save.
const debounce = 100 * time.Millisecond

// Watch calls fn every time the file at path is written, created or renamed
// into place, until ctx is done. The parent directory is watched so that
// editors which replace the file are handled. A panic in fn is logged and
// does not stop the watch.
func Watch(ctx context.Context, path string, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	slog.Debug("watching script", "path", abs)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("script watcher error", "path", abs, "error", err)

		case <-timer.C:
			slog.Debug("script changed", "path", abs)
			func() {
				defer logging.LogPanic("script-watch", nil)
				fn()
			}()
		}
	}
}
