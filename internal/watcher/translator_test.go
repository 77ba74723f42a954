package watcher

import (
	"testing"
	"time"

	"github.com/ahriknow/ahridocs/internal/fs"
)

func newTestTranslator(t *testing.T) (*Translator, chan Command, *fs.MemFileSystem) {
	t.Helper()
	memFs := fs.NewMemTest()
	out := make(chan Command, 16)
	return NewTranslator(memFs, out, make(chan struct{}), 7), out, memFs
}

// received drains whatever the translator queued.
func received(out chan Command) []Change {
	var changes []Change
	for {
		select {
		case cmd := <-out:
			changes = append(changes, cmd.(Change))
		default:
			return changes
		}
	}
}

func TestTranslate(t *testing.T) {
	docs := testPath("docs")

	tests := []struct {
		name  string
		setup func(m *fs.MemFileSystem)
		raw   RawEvent
		want  []ChangeEvent
	}{
		{
			name:  "created markdown file",
			setup: func(m *fs.MemFileSystem) { m.MustWriteFile(testPath("docs", "a.md"), "") },
			raw:   RawEvent{Transition: Created, Path: testPath("docs", "a.md")},
			want:  []ChangeEvent{{Kind: FileCreated, Path: testPath("docs", "a.md")}},
		},
		{
			name:  "created untracked file",
			setup: func(m *fs.MemFileSystem) { m.MustWriteFile(testPath("docs", "a.tmp"), "") },
			raw:   RawEvent{Transition: Created, Path: testPath("docs", "a.tmp")},
		},
		{
			name:  "created directory",
			setup: func(m *fs.MemFileSystem) { m.MustMkdirAll(testPath("docs", "notes")) },
			raw:   RawEvent{Transition: Created, Path: testPath("docs", "notes")},
			want:  []ChangeEvent{{Kind: DirCreated, Path: testPath("docs", "notes")}},
		},
		{
			name: "removed markdown file",
			raw:  RawEvent{Transition: Removed, Path: testPath("docs", "a.md")},
			want: []ChangeEvent{{Kind: FileRemoved, Path: testPath("docs", "a.md")}},
		},
		{
			name: "removed directory uses source hint",
			raw:  RawEvent{Transition: Removed, Path: testPath("docs", "notes"), WasDir: true},
			want: []ChangeEvent{{Kind: DirRemoved, Path: testPath("docs", "notes")}},
		},
		{
			name: "removed directory without hint looks like an untracked file",
			raw:  RawEvent{Transition: Removed, Path: testPath("docs", "notes")},
		},
		{
			name:  "stat wins over hint",
			setup: func(m *fs.MemFileSystem) { m.MustWriteFile(testPath("docs", "a.md"), "") },
			raw:   RawEvent{Transition: Modified, Path: testPath("docs", "a.md"), WasDir: true},
			want:  []ChangeEvent{{Kind: FileModified, Path: testPath("docs", "a.md")}},
		},
		{
			name:  "renamed directory",
			setup: func(m *fs.MemFileSystem) { m.MustMkdirAll(testPath("docs", "b")) },
			raw:   RawEvent{Transition: Renamed, Path: testPath("docs", "a"), To: testPath("docs", "b")},
			want:  []ChangeEvent{{Kind: DirRenamed, Path: testPath("docs", "a"), Path2: testPath("docs", "b")}},
		},
		{
			name:  "renamed markdown file",
			setup: func(m *fs.MemFileSystem) { m.MustWriteFile(testPath("docs", "b.md"), "") },
			raw:   RawEvent{Transition: Renamed, Path: testPath("docs", "a.md"), To: testPath("docs", "b.md")},
			want:  []ChangeEvent{{Kind: FileRenamed, Path: testPath("docs", "a.md"), Path2: testPath("docs", "b.md")}},
		},
		{
			name: "renamed directory that moved again falls back to hint",
			raw:  RawEvent{Transition: Renamed, Path: testPath("docs", "a"), To: testPath("docs", "b"), WasDir: true},
			want: []ChangeEvent{{Kind: DirRenamed, Path: testPath("docs", "a"), Path2: testPath("docs", "b")}},
		},
		{
			name: "unrepresentable path is dropped",
			raw:  RawEvent{Transition: Removed, Path: docs + "/\xff\xfe.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, out, memFs := newTestTranslator(t)
			if tt.setup != nil {
				tt.setup(memFs)
			}

			tr.Translate(tt.raw)

			got := received(out)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d changes, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i].Event != tt.want[i] {
					t.Errorf("change %d = %+v, want %+v", i, got[i].Event, tt.want[i])
				}
				if got[i].generation != 7 {
					t.Errorf("change %d generation = %d, want 7", i, got[i].generation)
				}
			}
		})
	}
}

func TestTranslate_StopUnblocksSend(t *testing.T) {
	memFs := fs.NewMemTest()
	memFs.MustWriteFile(testPath("docs", "a.md"), "")
	out := make(chan Command) // nobody reads
	stop := make(chan struct{})
	tr := NewTranslator(memFs, out, stop, 1)

	finished := make(chan struct{})
	go func() {
		tr.Translate(RawEvent{Transition: Modified, Path: testPath("docs", "a.md")})
		close(finished)
	}()

	close(stop)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Translate did not return after stop was closed")
	}
}
