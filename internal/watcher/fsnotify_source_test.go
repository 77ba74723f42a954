package watcher

import (
	"errors"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ahriknow/ahridocs/internal/fs"
)

type handleFixture struct {
	h      *fsnotifyHandle
	mock   *mockFsWatcher
	memFs  *fs.MemFileSystem
	events []RawEvent
}

func newTestHandle(t *testing.T) *handleFixture {
	t.Helper()
	f := &handleFixture{
		mock:  newMockFsWatcher(),
		memFs: fs.NewMemTest(),
	}
	root := testPath("docs")
	f.memFs.MustMkdirAll(root)
	f.h = newHandle(root, f.memFs, f.mock, func(raw RawEvent) {
		f.events = append(f.events, raw)
	}, time.Hour)
	if err := f.h.dirs.AddRecursive(root); err != nil {
		t.Fatalf("AddRecursive: %v", err)
	}
	return f
}

func (f *handleFixture) process(name string, op fsnotify.Op) {
	f.h.process(fsnotify.Event{Name: name, Op: op})
}

func TestProcess(t *testing.T) {
	note := testPath("docs", "a.md")
	renamed := testPath("docs", "b.md")

	tests := []struct {
		name  string
		setup func(f *handleFixture)
		ops   []fsnotify.Event
		want  []RawEvent
	}{
		{
			name:  "create",
			setup: func(f *handleFixture) { f.memFs.MustWriteFile(note, "") },
			ops:   []fsnotify.Event{{Name: note, Op: fsnotify.Create}},
			want:  []RawEvent{{Transition: Created, Path: note}},
		},
		{
			name: "write",
			ops:  []fsnotify.Event{{Name: note, Op: fsnotify.Write}},
			want: []RawEvent{{Transition: Modified, Path: note}},
		},
		{
			name: "remove file",
			ops:  []fsnotify.Event{{Name: note, Op: fsnotify.Remove}},
			want: []RawEvent{{Transition: Removed, Path: note}},
		},
		{
			name: "chmod ignored",
			ops:  []fsnotify.Event{{Name: note, Op: fsnotify.Chmod}},
			want: nil,
		},
		{
			name:  "rename paired with create",
			setup: func(f *handleFixture) { f.memFs.MustWriteFile(renamed, "") },
			ops: []fsnotify.Event{
				{Name: note, Op: fsnotify.Rename},
				{Name: renamed, Op: fsnotify.Create},
			},
			want: []RawEvent{{Transition: Renamed, Path: note, To: renamed}},
		},
		{
			name: "unpaired rename flushed by next event",
			ops: []fsnotify.Event{
				{Name: note, Op: fsnotify.Rename},
				{Name: renamed, Op: fsnotify.Write},
			},
			want: []RawEvent{
				{Transition: Removed, Path: note},
				{Transition: Modified, Path: renamed},
			},
		},
		{
			name:  "create in another directory is not paired",
			setup: func(f *handleFixture) { f.memFs.MustWriteFile(testPath("docs", "sub", "other.md"), "") },
			ops: []fsnotify.Event{
				{Name: note, Op: fsnotify.Rename},
				{Name: testPath("docs", "sub", "other.md"), Op: fsnotify.Create},
			},
			want: []RawEvent{
				{Transition: Removed, Path: note},
				{Transition: Created, Path: testPath("docs", "sub", "other.md")},
			},
		},
		{
			name:  "move into a subdirectory is removed then created",
			setup: func(f *handleFixture) { f.memFs.MustWriteFile(testPath("docs", "sub", "a.md"), "") },
			ops: []fsnotify.Event{
				{Name: note, Op: fsnotify.Rename},
				{Name: testPath("docs", "sub", "a.md"), Op: fsnotify.Create},
			},
			want: []RawEvent{
				{Transition: Removed, Path: note},
				{Transition: Created, Path: testPath("docs", "sub", "a.md")},
			},
		},
		{
			name: "back to back renames",
			ops: []fsnotify.Event{
				{Name: note, Op: fsnotify.Rename},
				{Name: renamed, Op: fsnotify.Rename},
			},
			want: []RawEvent{{Transition: Removed, Path: note}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestHandle(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			for _, ev := range tt.ops {
				f.process(ev.Name, ev.Op)
			}

			if len(f.events) != len(tt.want) {
				t.Fatalf("got %d events %+v, want %+v", len(f.events), f.events, tt.want)
			}
			for i := range tt.want {
				if f.events[i] != tt.want[i] {
					t.Errorf("event %d: got %+v, want %+v", i, f.events[i], tt.want[i])
				}
			}
		})
	}
}

func TestProcess_RemovedDirectoryCarriesHint(t *testing.T) {
	f := newTestHandle(t)
	sub := testPath("docs", "sub")
	f.memFs.MustMkdirAll(testPath("docs", "sub", "deeper"))
	f.h.dirs.AddRecursive(sub)

	f.memFs.MustRemoveAll(sub)
	f.process(sub, fsnotify.Remove)

	if len(f.events) != 1 || !f.events[0].WasDir {
		t.Fatalf("expected one removal with WasDir, got %+v", f.events)
	}
	if f.h.dirs.IsWatched(sub) || f.h.dirs.IsWatched(testPath("docs", "sub", "deeper")) {
		t.Error("expected removed subtree to be unwatched")
	}
}

func TestProcess_NewDirectoryWatchedRecursively(t *testing.T) {
	f := newTestHandle(t)
	sub := testPath("docs", "new")
	f.memFs.MustMkdirAll(testPath("docs", "new", "inner"))

	f.process(sub, fsnotify.Create)

	if !f.mock.hasAdded(sub) || !f.mock.hasAdded(testPath("docs", "new", "inner")) {
		t.Errorf("expected new tree watched, got %v", f.mock.added)
	}
	if len(f.events) != 1 || f.events[0].Transition != Created {
		t.Errorf("expected one Created, got %+v", f.events)
	}
}

func TestProcess_RenamedDirectoryMovesWatches(t *testing.T) {
	f := newTestHandle(t)
	from := testPath("docs", "old")
	to := testPath("docs", "new")
	f.memFs.MustMkdirAll(from)
	f.h.dirs.AddRecursive(from)

	if err := f.memFs.Rename(from, to); err != nil {
		t.Fatalf("rename: %v", err)
	}
	f.process(from, fsnotify.Rename)
	f.process(to, fsnotify.Create)

	want := RawEvent{Transition: Renamed, Path: from, To: to, WasDir: true}
	if len(f.events) != 1 || f.events[0] != want {
		t.Fatalf("got %+v, want %+v", f.events, want)
	}
	if f.h.dirs.IsWatched(from) {
		t.Error("expected old name unwatched")
	}
	if !f.h.dirs.IsWatched(to) {
		t.Error("expected new name watched")
	}
}

func TestProcess_NewDirectoryWatchFailureStillReports(t *testing.T) {
	f := newTestHandle(t)
	sub := testPath("docs", "new")
	f.memFs.MustMkdirAll(sub)
	f.mock.addErr = errors.New("inotify limit reached")

	f.process(sub, fsnotify.Create)

	if len(f.events) != 1 {
		t.Fatalf("expected the creation to be reported, got %+v", f.events)
	}
	if f.h.dirs.IsWatched(sub) {
		t.Error("expected directory not watched after failure")
	}
}

func TestFsnotifySource_InstallRejectsFile(t *testing.T) {
	memFs := fs.NewMemTest()
	file := testPath("docs", "a.md")
	memFs.MustWriteFile(file, "")

	src := NewFsnotifySource(memFs, 0)
	_, err := src.Install(file, func(RawEvent) {})
	if !errors.Is(err, ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory, got %v", err)
	}

	if _, err := src.Install(testPath("missing"), func(RawEvent) {}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestNewFsnotifySource_DefaultWindow(t *testing.T) {
	src := NewFsnotifySource(fs.NewMemTest(), 0)
	if src.renameWindow != DefaultRenameWindow {
		t.Errorf("expected default window, got %v", src.renameWindow)
	}
}
