//go:build integration

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// File builder helpers for fluent API

// File creates a FileEntry for a file at the given path.
// Path should use forward slashes regardless of OS.
func File(path string) FileEntry {
	return FileEntry{Path: path, IsDir: false}
}

// Dir creates a FileEntry for a directory at the given path.
// Path should use forward slashes regardless of OS.
func Dir(path string) FileEntry {
	return FileEntry{Path: path, IsDir: true}
}

// WithContent sets the file content.
func (f FileEntry) WithContent(content string) FileEntry {
	f.Content = content
	return f
}

// Step is a filesystem operation performed while the folder is watched.
type Step struct {
	create *FileEntry
	from   string
	to     string
	remove string
	pause  time.Duration
}

// Create adds a file or directory.
func Create(e FileEntry) Step {
	return Step{create: &e}
}

// Write overwrites an existing file.
func Write(path, content string) Step {
	return Step{create: &FileEntry{Path: path, Content: content}}
}

// Rename moves from to to.
func Rename(from, to string) Step {
	return Step{from: from, to: to}
}

// Remove deletes a file or directory tree.
func Remove(path string) Step {
	return Step{remove: path}
}

// Pause waits before the next step so consecutive changes are not paired.
func Pause(d time.Duration) Step {
	return Step{pause: d}
}

func (s Step) apply(t *testing.T, root string) {
	t.Helper()

	native := func(p string) string { return filepath.Join(root, filepath.FromSlash(p)) }

	switch {
	case s.pause > 0:
		time.Sleep(s.pause)
	case s.create != nil:
		createEntry(t, root, *s.create)
	case s.from != "":
		if err := os.Rename(native(s.from), native(s.to)); err != nil {
			t.Fatalf("failed to rename %s: %v", s.from, err)
		}
	case s.remove != "":
		if err := os.RemoveAll(native(s.remove)); err != nil {
			t.Fatalf("failed to remove %s: %v", s.remove, err)
		}
	}
}
