package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// ErrWatchUnsupported is returned by Watch when the store is not backed by the OS filesystem.
var ErrWatchUnsupported = errors.New("watching requires the OS filesystem")

// Watch calls onChange whenever the task document is replaced by another writer.
// Writes made through this store are ignored. It blocks until ctx is cancelled.
func (s *FileTaskStore) Watch(ctx context.Context, onChange func(path string)) error {
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return ErrWatchUnsupported
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	// Atomic replacement swaps the inode, so the directory is watched rather than the file.
	dir := filepath.Dir(s.filePath)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.filePath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if s.ownWrite() {
				continue
			}
			slog.Debug("task document changed on disk", "path", ev.Name, "op", ev.Op.String())
			onChange(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("task document watcher error", "error", err)
		}
	}
}

// ownWrite reports whether the document on disk is the one this store last wrote or read.
func (s *FileTaskStore) ownWrite() bool {
	data, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculateChecksum(data) == s.lastChecksum
}
