// Package workspace lists and edits the pages of an opened folder.
package workspace

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ahriknow/ahridocs/internal/fs"
)

var (
	// ErrExists is returned when a create or rename target is already taken.
	ErrExists = errors.New("entry already exists")
	// ErrNotFile is returned when a file operation is given a directory.
	ErrNotFile = errors.New("not a file")
	// ErrNotDir is returned when a directory operation is given a file.
	ErrNotDir = errors.New("not a directory")
	// ErrNotText is returned when reading a file that is not text.
	ErrNotText = errors.New("not a text file")
	// ErrInvalidName is returned for names that are empty or contain a path separator.
	ErrInvalidName = errors.New("invalid name")
)

// DefaultExclude hides the per-folder settings directory from listings.
var DefaultExclude = []string{SettingsDir}

// Options configures a Workspace.
type Options struct {
	// Exclude holds doublestar globs matched against slash-separated paths
	// relative to the listed root.
	Exclude []string
	// Trash sends deleted entries to the system trash.
	Trash bool
}

// Workspace performs listing and CRUD on folders through a FileSystem.
type Workspace struct {
	fs      fs.FileSystem
	exclude []string
	trash   bool
}

// New creates a Workspace. A nil Exclude uses DefaultExclude.
func New(filesystem fs.FileSystem, opts Options) (*Workspace, error) {
	exclude := opts.Exclude
	if exclude == nil {
		exclude = DefaultExclude
	}
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return &Workspace{
		fs:      filesystem,
		exclude: exclude,
		trash:   opts.Trash,
	}, nil
}

// Fs returns the underlying filesystem.
func (w *Workspace) Fs() fs.FileSystem {
	return w.fs
}
