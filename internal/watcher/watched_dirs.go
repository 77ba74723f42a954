package watcher

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// fsnotifyWatcher is the interface for fsnotify operations, allowing mocking in tests.
type fsnotifyWatcher interface {
	Add(name string) error
	Remove(name string) error
}

// WatchedDirs tracks which directories of a recursive watch are registered
// with fsnotify, which only watches single directories.
type WatchedDirs struct {
	// fs is the filesystem abstraction for stat and readdir operations.
	fs afero.Fs

	// fsWatcher is the underlying fsnotify watcher.
	// Note: fsnotify auto-removes watches on delete (all platforms), but not on rename for Windows.
	// We explicitly remove watches on delete and rename to keep our state consistent.
	fsWatcher fsnotifyWatcher

	entries map[string]struct{}
}

// NewWatchedDirs creates a new WatchedDirs manager.
func NewWatchedDirs(filesystem afero.Fs, fsWatcher fsnotifyWatcher) *WatchedDirs {
	return &WatchedDirs{
		fs:        filesystem,
		fsWatcher: fsWatcher,
		entries:   make(map[string]struct{}),
	}
}

// WatchCount returns the number of directories currently being watched.
func (w *WatchedDirs) WatchCount() int {
	return len(w.entries)
}

// IsWatched reports whether path itself is registered.
func (w *WatchedDirs) IsWatched(path string) bool {
	_, ok := w.entries[path]
	return ok
}

// AddRecursive watches path and every directory below it. Failing to watch
// path itself is returned; subdirectories that vanish or cannot be watched
// are skipped.
func (w *WatchedDirs) AddRecursive(path string) error {
	dirs, err := afero.ReadDir(w.fs, path)
	if err != nil {
		return err
	}

	if _, exists := w.entries[path]; !exists {
		if err := w.fsWatcher.Add(path); err != nil {
			return err
		}
		w.entries[path] = struct{}{}
	}

	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		subdirPath := filepath.Join(path, dir.Name())
		if err := w.AddRecursive(subdirPath); err != nil {
			slog.Warn("failed to watch subdirectory", "path", subdirPath, "error", err)
		}
	}

	return nil
}

// Forget stops watching path and everything below it. It returns true if
// path itself was a watched directory.
// Note: multiple Remove events for the same path are possible (e.g., deleting /a/b
// when both /a and /a/b are watched), so forgetting an unknown path is a no-op.
func (w *WatchedDirs) Forget(path string) bool {
	_, wasWatched := w.entries[path]

	prefix := path + string(filepath.Separator)
	for entry := range w.entries {
		if entry != path && !strings.HasPrefix(entry, prefix) {
			continue
		}
		// fsnotify may already have dropped the watch on delete.
		if err := w.fsWatcher.Remove(entry); err != nil {
			slog.Debug("fswatcher failed to remove watch", "path", entry, "error", err)
		}
		delete(w.entries, entry)
	}

	return wasWatched
}

// Paths returns the watched directories.
func (w *WatchedDirs) Paths() []string {
	paths := make([]string, 0, len(w.entries))
	for path := range w.entries {
		paths = append(paths, path)
	}
	return paths
}
