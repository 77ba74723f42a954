//go:build integration

package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"text/template"
	"time"

	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/watcher"
)

// FileEntry describes a file or directory with all relevant properties.
type FileEntry struct {
	Path    string // relative path using forward slashes (e.g., "chapter/intro.md")
	IsDir   bool   // true for directories
	Content string
}

// Env is where a harness-started daemon keeps its files.
type Env struct {
	TmpDir     string
	ConfigPath string
	SocketPath string
	StatePath  string
}

// StartFunc runs a daemon until ctx is cancelled.
type StartFunc func(ctx context.Context, env Env) error

// ExpectedEvent is a change the daemon should publish. Paths are relative
// to the opened folder and use forward slashes.
type ExpectedEvent struct {
	Kind  watcher.ChangeKind
	Path  string
	Path2 string
}

// TestCase is a complete data-driven integration test.
type TestCase struct {
	Name   string          // test name (used for t.Run)
	Config string          // YAML config with {{.TmpDir}} template variable
	Before []FileEntry     // files/dirs to create inside the folder BEFORE it is opened
	Steps  []Step          // filesystem operations performed AFTER the folder is opened
	Expect []ExpectedEvent // changes that must be published, in this order
	// Absent are paths that must not appear in any published change.
	Absent  []string
	Timeout time.Duration // how long to wait for expected changes (default: 3s)
}

// Harness manages the test environment.
type Harness struct {
	t      *testing.T
	env    Env
	root   string
	client *ipc.Client
	cancel context.CancelFunc
	errCh  chan error
}

// Run executes a single test case against a daemon started by start.
func Run(t *testing.T, start StartFunc, tc TestCase) {
	t.Helper()

	tmpDir := t.TempDir()
	h := &Harness{
		t: t,
		env: Env{
			TmpDir:     tmpDir,
			ConfigPath: filepath.Join(tmpDir, "config.yaml"),
			SocketPath: socketPath(t),
			StatePath:  filepath.Join(tmpDir, "state.json"),
		},
		root:  filepath.Join(tmpDir, "notes"),
		errCh: make(chan error, 1),
	}
	if err := os.MkdirAll(h.root, 0755); err != nil {
		t.Fatalf("failed to create folder: %v", err)
	}

	h.createEntries(tc.Before)
	h.startDaemon(start, tc.Config)
	defer h.cleanup()

	h.open()
	for _, s := range tc.Steps {
		s.apply(t, h.root)
	}
	h.waitAndVerify(tc)
}

// RunTable executes multiple test cases as subtests.
func RunTable(t *testing.T, start StartFunc, cases []TestCase) {
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			Run(t, start, tc)
		})
	}
}

// socketPath returns a short socket path; t.TempDir can exceed the Unix
// socket path limit on macOS.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ahridocs")
	if err != nil {
		t.Fatalf("failed to create socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "d.sock")
}

// createEntries creates files and directories from FileEntry specs.
func (h *Harness) createEntries(entries []FileEntry) {
	h.t.Helper()
	for _, e := range entries {
		createEntry(h.t, h.root, e)
	}
}

func createEntry(t *testing.T, root string, e FileEntry) {
	t.Helper()

	// Convert forward slashes to OS-specific separator for Windows compatibility
	path := filepath.Join(root, filepath.FromSlash(e.Path))

	if e.IsDir {
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", e.Path, err)
		}
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent directory for %s: %v", e.Path, err)
	}
	if err := os.WriteFile(path, []byte(e.Content), 0644); err != nil {
		t.Fatalf("failed to create file %s: %v", e.Path, err)
	}
}

// startDaemon renders the config template and starts the daemon.
func (h *Harness) startDaemon(start StartFunc, configTemplate string) {
	h.t.Helper()

	// Render config template with helper functions
	tmpl, err := template.New("config").Funcs(template.FuncMap{
		// join creates OS-native paths: {{join .TmpDir "notes" "subdir"}}
		"join": filepath.Join,
	}).Parse(configTemplate)
	if err != nil {
		h.t.Fatalf("failed to parse config template: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{
		"TmpDir": h.env.TmpDir,
	}); err != nil {
		h.t.Fatalf("failed to execute config template: %v", err)
	}

	if err := os.WriteFile(h.env.ConfigPath, buf.Bytes(), 0644); err != nil {
		h.t.Fatalf("failed to write config file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	go func() {
		h.errCh <- start(ctx, h.env)
	}()

	// Wait for the IPC socket to accept connections
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case err := <-h.errCh:
			h.t.Fatalf("daemon failed to start: %v", err)
		default:
		}
		if client, err := ipc.ConnectAt(h.env.SocketPath); err == nil {
			h.client = client
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	h.t.Fatal("daemon did not start listening within timeout")
}

// open points the daemon at the test folder.
func (h *Harness) open() {
	h.t.Helper()

	status, err := h.client.SetRoot(h.root)
	if err != nil {
		h.t.Fatalf("failed to open folder: %v", err)
	}
	if status.State != watcher.StateWatching {
		h.t.Fatalf("expected watching after open, got %s (%s)", status.State, status.WatchError)
	}
}

// waitAndVerify polls published changes until every expected one was seen
// in order.
func (h *Harness) waitAndVerify(tc TestCase) {
	h.t.Helper()

	timeout := tc.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}

	var seen []ipc.Event
	var since uint64
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		result, err := h.client.Events(since)
		if err != nil {
			h.t.Fatalf("failed to read events: %v", err)
		}
		seen = append(seen, result.Events...)
		since = result.Next

		if h.matchInOrder(tc.Expect, seen) == len(tc.Expect) {
			h.assertAbsent(tc.Absent, seen)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	matched := h.matchInOrder(tc.Expect, seen)
	h.t.Errorf("expected change %+v was not published; saw %+v", tc.Expect[matched], seen)
}

// matchInOrder returns how many leading expected events appear in seen as
// a subsequence.
func (h *Harness) matchInOrder(expect []ExpectedEvent, seen []ipc.Event) int {
	i := 0
	for _, ev := range seen {
		if i == len(expect) {
			break
		}
		if h.matches(expect[i], ev) {
			i++
		}
	}
	return i
}

func (h *Harness) matches(want ExpectedEvent, got ipc.Event) bool {
	if want.Kind != got.Kind || h.abs(want.Path) != got.Path {
		return false
	}
	return want.Path2 == "" && got.Path2 == "" || h.abs(want.Path2) == got.Path2
}

func (h *Harness) assertAbsent(absent []string, seen []ipc.Event) {
	h.t.Helper()
	for _, p := range absent {
		path := h.abs(p)
		for _, ev := range seen {
			if ev.Path == path || ev.Path2 == path {
				h.t.Errorf("expected no change for %s, got %+v", p, ev)
			}
		}
	}
}

func (h *Harness) abs(rel string) string {
	if rel == "" {
		return ""
	}
	return filepath.Join(h.root, filepath.FromSlash(rel))
}

// cleanup stops the daemon gracefully.
func (h *Harness) cleanup() {
	h.t.Helper()

	if h.client != nil {
		h.client.Close()
	}
	if h.cancel != nil {
		h.cancel()
	}

	select {
	case err := <-h.errCh:
		if err != nil {
			h.t.Errorf("daemon returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		h.t.Error("daemon did not stop within timeout")
	}
}
