package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ahriknow/ahridocs/internal/ipc"
)

// MaxRecentRoots bounds the recently opened folder list.
const MaxRecentRoots = 10

// State tracks daemon state that persists across restarts.
type State struct {
	mu       sync.RWMutex
	path     string
	Root     string    `json:"root"`
	OpenedAt time.Time `json:"opened_at,omitempty"`
	Recent   []string  `json:"recent"`
}

// Load loads state from the default state file path.
// If the file doesn't exist, returns an empty state.
func Load() (*State, error) {
	path, err := ipc.StatePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads state from the specified path.
// If the file doesn't exist, returns an empty state.
func LoadFrom(path string) (*State, error) {
	s := &State{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		// Log warning but return empty state rather than failing
		slog.Warn("failed to parse state file, starting fresh", "error", err)
		return &State{path: path}, nil
	}

	return s, nil
}

// SetRoot records root as the opened folder and persists to disk.
// An empty root records that no folder is open but keeps the recent list.
func (s *State) SetRoot(root string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Root = root
	if root == "" {
		s.OpenedAt = time.Time{}
		return s.save()
	}

	s.OpenedAt = at
	recent := []string{root}
	for _, r := range s.Recent {
		if r != root && len(recent) < MaxRecentRoots {
			recent = append(recent, r)
		}
	}
	s.Recent = recent
	return s.save()
}

// LastRoot returns the folder that was open when the state was last saved.
func (s *State) LastRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Root
}

// LastOpened returns when the current folder was opened.
func (s *State) LastOpened() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.OpenedAt
}

// RecentRoots returns recently opened folders, most recent first.
func (s *State) RecentRoots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.Recent...)
}

// save persists the state to disk. Must be called with mu held.
func (s *State) save() error {
	if s.path == "" {
		return nil
	}

	// Create parent directory if needed
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}
