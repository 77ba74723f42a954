package watcher

import "fmt"

// ChangeKind is the domain classification of a filesystem change.
type ChangeKind int

const (
	DirCreated ChangeKind = iota + 1
	FileCreated
	DirModified
	FileModified
	DirRemoved
	FileRemoved
	DirRenamed
	FileRenamed
)

var changeKindNames = map[ChangeKind]string{
	DirCreated:   "dir_created",
	FileCreated:  "file_created",
	DirModified:  "dir_modified",
	FileModified: "file_modified",
	DirRemoved:   "dir_removed",
	FileRemoved:  "file_removed",
	DirRenamed:   "dir_renamed",
	FileRenamed:  "file_renamed",
}

func (k ChangeKind) String() string {
	if name, ok := changeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// IsDir reports whether the kind describes a directory change.
func (k ChangeKind) IsDir() bool {
	switch k {
	case DirCreated, DirModified, DirRemoved, DirRenamed:
		return true
	}
	return false
}

// MarshalText encodes the kind using its snake_case name.
func (k ChangeKind) MarshalText() ([]byte, error) {
	name, ok := changeKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown change kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a snake_case kind name.
func (k *ChangeKind) UnmarshalText(text []byte) error {
	for kind, name := range changeKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown change kind %q", string(text))
}

// Transition is the raw operation reported by a Source.
type Transition int

const (
	Created Transition = iota + 1
	Modified
	Removed
	Renamed
)

func (t Transition) String() string {
	switch t {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	default:
		return fmt.Sprintf("Transition(%d)", int(t))
	}
}

// RawEvent is a notification from a Source before classification.
type RawEvent struct {
	Transition Transition
	Path       string
	// To is the destination of a rename; empty otherwise.
	To string
	// WasDir is set by the source when Path was a watched directory.
	// Only consulted when Path can no longer be stat'ed.
	WasDir bool
}

// ChangeEvent is a classified change delivered to a Sink.
type ChangeEvent struct {
	Kind  ChangeKind `json:"kind"`
	Path  string     `json:"path"`
	Path2 string     `json:"path2"`
}

// Entry is one endpoint of a transition as seen by the classifier.
type Entry struct {
	Path  string
	IsDir bool
}
