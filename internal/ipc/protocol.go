package ipc

import (
	"time"

	"github.com/ahriknow/ahridocs/internal/watcher"
)

// Empty is used for RPC methods that don't need arguments or return values.
type Empty struct{}

// StatusData is returned by Daemon.Status.
type StatusData struct {
	ConfigPath  string        `json:"config_path"`
	ConfigValid bool          `json:"config_valid"`
	ConfigError string        `json:"config_error,omitempty"`
	LogPath     string        `json:"log_path,omitempty"`
	ServerAddr  string        `json:"server_addr,omitempty"`
	State       watcher.State `json:"state"`
	Root        string        `json:"root,omitempty"`
	OpenedAt    time.Time     `json:"opened_at,omitempty"`
	WatchError  string        `json:"watch_error,omitempty"`
	Generation  uint64        `json:"generation"`
	LastSeq     uint64        `json:"last_seq"`
	Recent      []string      `json:"recent,omitempty"`
}

// SetRootArgs is the argument to Daemon.SetRoot. An empty Root stops watching.
type SetRootArgs struct {
	Root string `json:"root"`
}

// EventsArgs is the argument to Daemon.Events.
type EventsArgs struct {
	Since uint64 `json:"since"`
}

// Event is one journaled change.
type Event struct {
	Seq   uint64             `json:"seq"`
	Time  time.Time          `json:"time"`
	Kind  watcher.ChangeKind `json:"kind"`
	Path  string             `json:"path"`
	Path2 string             `json:"path2,omitempty"`
}

// EventsResult is returned by Daemon.Events. Next is the sequence number to
// pass as Since on the following call.
type EventsResult struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
	// Dropped is set when events after Since were evicted before being read.
	Dropped bool `json:"dropped,omitempty"`
}
