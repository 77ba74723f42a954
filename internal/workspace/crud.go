package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// OpenFile is a page loaded for editing.
type OpenFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Updated int64  `json:"updated"` // unix milliseconds
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

func (w *Workspace) exists(path string) (bool, error) {
	_, err := w.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create makes a new empty file or directory named name inside dir.
func (w *Workspace) Create(dir, name string, isDir bool) (OpenFile, error) {
	if err := validName(name); err != nil {
		return OpenFile{}, err
	}
	return w.create(filepath.Join(dir, name), isDir)
}

// CreateUnique is like Create but picks the first free name of the form
// name_2.md, name_3.md, ... when name is taken.
func (w *Workspace) CreateUnique(dir, name string, isDir bool) (OpenFile, error) {
	if err := validName(name); err != nil {
		return OpenFile{}, err
	}
	return w.create(w.fs.AvailablePath(filepath.Join(dir, name)), isDir)
}

func (w *Workspace) create(path string, isDir bool) (OpenFile, error) {
	found, err := w.exists(path)
	if err != nil {
		return OpenFile{}, err
	}
	if found {
		return OpenFile{}, fmt.Errorf("%s: %w", path, ErrExists)
	}

	if isDir {
		if err := w.fs.Mkdir(path, 0755); err != nil {
			return OpenFile{}, fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	} else {
		f, err := w.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			return OpenFile{}, fmt.Errorf("failed to create file %s: %w", path, err)
		}
		f.Close()
	}

	slog.Debug("created entry", "path", path, "dir", isDir)
	return w.describe(path, "")
}

// Delete removes path. isDir must match the entry's kind. When the
// workspace was configured with Trash, the entry goes to the system trash.
func (w *Workspace) Delete(path string, isDir bool) error {
	info, err := w.fs.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() != isDir {
		if isDir {
			return fmt.Errorf("%s: %w", path, ErrNotDir)
		}
		return fmt.Errorf("%s: %w", path, ErrNotFile)
	}

	if w.trash {
		if err := w.fs.Trash(path); err != nil {
			return fmt.Errorf("failed to trash %s: %w", path, err)
		}
	} else if isDir {
		if err := w.fs.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	} else if err := w.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}

	slog.Debug("deleted entry", "path", path, "trash", w.trash)
	return nil
}

// Rename gives path a new name in the same directory and returns the new path.
func (w *Workspace) Rename(path, newName string) (string, error) {
	if err := validName(newName); err != nil {
		return "", err
	}
	if _, err := w.fs.Stat(path); err != nil {
		return "", err
	}

	newPath := filepath.Join(filepath.Dir(path), newName)
	if newPath == path {
		return path, nil
	}
	found, err := w.exists(newPath)
	if err != nil {
		return "", err
	}
	if found {
		return "", fmt.Errorf("%s: %w", newPath, ErrExists)
	}

	if err := w.fs.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return newPath, nil
}

// Read loads a text file.
func (w *Workspace) Read(path string) (OpenFile, error) {
	info, err := w.fs.Stat(path)
	if err != nil {
		return OpenFile{}, err
	}
	if info.IsDir() {
		return OpenFile{}, fmt.Errorf("%s: %w", path, ErrNotFile)
	}

	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return OpenFile{}, err
	}
	if !isText(data) {
		return OpenFile{}, fmt.Errorf("%s: %w", path, ErrNotText)
	}

	return OpenFile{
		Path:    path,
		Content: string(data),
		Updated: info.ModTime().UnixMilli(),
	}, nil
}

// ReadMany loads every readable text file in paths, skipping the rest.
func (w *Workspace) ReadMany(paths []string) []OpenFile {
	files := make([]OpenFile, 0, len(paths))
	for _, path := range paths {
		f, err := w.Read(path)
		if err != nil {
			slog.Debug("skipping unreadable file", "path", path, "error", err)
			continue
		}
		files = append(files, f)
	}
	return files
}

// Write replaces the content of an existing file.
func (w *Workspace) Write(path, content string) (OpenFile, error) {
	info, err := w.fs.Stat(path)
	if err != nil {
		return OpenFile{}, err
	}
	if info.IsDir() {
		return OpenFile{}, fmt.Errorf("%s: %w", path, ErrNotFile)
	}

	if err := afero.WriteFile(w.fs, path, []byte(content), info.Mode().Perm()); err != nil {
		return OpenFile{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return w.describe(path, content)
}

func (w *Workspace) describe(path, content string) (OpenFile, error) {
	info, err := w.fs.Stat(path)
	if err != nil {
		return OpenFile{}, err
	}
	return OpenFile{
		Path:    path,
		Content: content,
		Updated: info.ModTime().UnixMilli(),
	}, nil
}

// isText reports whether data is detected as text/plain or a subtype of it.
func isText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
