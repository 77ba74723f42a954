package watcher

import (
	"path/filepath"
	"strings"
)

// trackedExtensions are the file extensions that produce File* changes.
var trackedExtensions = map[string]struct{}{
	"md":   {},
	"json": {},
}

// IsTracked reports whether path has a tracked extension.
// A path without an extension is never tracked.
func IsTracked(path string) bool {
	_, ok := trackedExtensions[extension(path)]
	return ok
}

func extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// Classify maps a raw transition to a ChangeKind. The second return value is
// false when the transition should be ignored.
//
// dst is only consulted for Renamed. A rename is classified only when both
// endpoints are the same kind of entry; file renames additionally require both
// names to carry the same tracked extension.
func Classify(t Transition, src, dst Entry) (ChangeKind, bool) {
	if t == Renamed {
		return classifyRename(src, dst)
	}

	if src.IsDir {
		switch t {
		case Created:
			return DirCreated, true
		case Modified:
			return DirModified, true
		case Removed:
			return DirRemoved, true
		}
		return 0, false
	}

	if !IsTracked(src.Path) {
		return 0, false
	}
	switch t {
	case Created:
		return FileCreated, true
	case Modified:
		return FileModified, true
	case Removed:
		return FileRemoved, true
	}
	return 0, false
}

func classifyRename(src, dst Entry) (ChangeKind, bool) {
	if src.IsDir != dst.IsDir {
		return 0, false
	}
	if src.IsDir {
		return DirRenamed, true
	}
	if !IsTracked(src.Path) || extension(src.Path) != extension(dst.Path) {
		return 0, false
	}
	return FileRenamed, true
}
