package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/klabast/wb-services/event-timeline/internal/logger"
)

// Watch reloads the default dataset whenever the file at path is written or
// recreated. It watches the parent directory so editors that replace the file
// are picked up too, and returns once ctx is done.
func (s *Store) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close() // nolint:errcheck

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("Watching default dataset", logger.Fields{"path": abs})
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reload(path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Default dataset watcher error", logger.Fields{"path": abs}, err)
		}
	}
}

// reload re-reads the default file. A broken file keeps the current table
// instead of reverting to the builtin one, and an uploaded table is never
// replaced.
func (s *Store) reload(path string) {
	if src := s.Snapshot().Source; strings.HasPrefix(src, SourceUploadPrefix) {
		logger.Debug("Default dataset changed, keeping upload", logger.Fields{"path": path, "source": src})
		logger.IncrCounter("default.reload_skipped")
		return
	}
	table, err := readTable(path, s.decode)
	if err != nil {
		logger.Warn("Default dataset reload failed", logger.Fields{"path": path}, err)
		logger.IncrCounter("default.reload_error")
		return
	}
	s.install(table, path)
	logger.Info("Default dataset reloaded", logger.Fields{"path": path, "events": len(table)})
	logger.IncrCounter("default.reload")
}
