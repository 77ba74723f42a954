package fs

import (
	"fmt"

	"github.com/spf13/afero"
)

// MemFileSystem is an in-memory filesystem for testing.
type MemFileSystem struct {
	afero.Fs
}

// Trash simulates trashing by removing the file.
func (m *MemFileSystem) Trash(path string) error {
	return m.Fs.RemoveAll(path)
}

// AvailablePath returns path or the first free suffixed variant.
func (m *MemFileSystem) AvailablePath(path string) string {
	return availablePath(m.Fs, path)
}

// MustMkdirAll creates a directory and panics on error. For use in tests.
func (m *MemFileSystem) MustMkdirAll(path string) {
	if err := m.Fs.MkdirAll(path, 0755); err != nil {
		panic(fmt.Sprintf("MustMkdirAll(%q): %v", path, err))
	}
}

// MustWriteFile writes a file, creating parent directories, and panics on error. For use in tests.
func (m *MemFileSystem) MustWriteFile(path, content string) {
	if err := afero.WriteFile(m.Fs, path, []byte(content), 0644); err != nil {
		panic(fmt.Sprintf("MustWriteFile(%q): %v", path, err))
	}
}

// MustRemoveAll removes a path and panics on error. For use in tests.
func (m *MemFileSystem) MustRemoveAll(path string) {
	if err := m.Fs.RemoveAll(path); err != nil {
		panic(fmt.Sprintf("MustRemoveAll(%q): %v", path, err))
	}
}
