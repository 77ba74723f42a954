package workspace

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"

	"github.com/ahriknow/ahridocs/internal/testutil"
)

func TestCreate(t *testing.T) {
	dir := testutil.Path("/", "docs")

	tests := []struct {
		name    string
		entry   string
		isDir   bool
		setup   []string
		wantErr error
	}{
		{name: "file", entry: "a.md"},
		{name: "directory", entry: "chapter", isDir: true},
		{name: "existing file", entry: "a.md", setup: []string{"a.md"}, wantErr: ErrExists},
		{name: "existing as dir", entry: "a.md", isDir: true, setup: []string{"a.md"}, wantErr: ErrExists},
		{name: "empty name", entry: "", wantErr: ErrInvalidName},
		{name: "separator", entry: "x/a.md", wantErr: ErrInvalidName},
		{name: "dot dot", entry: "..", isDir: true, wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, memFs := newTestWorkspace(t, Options{})
			memFs.MustMkdirAll(dir)
			for _, f := range tt.setup {
				memFs.MustWriteFile(testutil.Path(dir, f), "existing")
			}

			got, err := w.Create(dir, tt.entry, tt.isDir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			path := testutil.Path(dir, tt.entry)
			if got.Path != path || got.Content != "" {
				t.Errorf("unexpected result %+v", got)
			}
			info, err := memFs.Stat(path)
			if err != nil {
				t.Fatalf("entry not created: %v", err)
			}
			if info.IsDir() != tt.isDir {
				t.Errorf("expected dir=%v", tt.isDir)
			}
		})
	}
}

func TestCreateUnique(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	dir := testutil.Path("/", "docs")
	memFs.MustWriteFile(testutil.Path(dir, "untitled.md"), "")
	memFs.MustWriteFile(testutil.Path(dir, "untitled_2.md"), "")

	got, err := w.CreateUnique(dir, "untitled.md", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testutil.Path(dir, "untitled_3.md"); got.Path != want {
		t.Errorf("expected %s, got %s", want, got.Path)
	}
}

func TestDelete(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	dir := testutil.Path("/", "docs", "chapter")
	file := testutil.Path(dir, "a.md")
	memFs.MustWriteFile(file, "")

	if err := w.Delete(file, true); !errors.Is(err, ErrNotDir) {
		t.Errorf("expected ErrNotDir, got %v", err)
	}
	if err := w.Delete(dir, false); !errors.Is(err, ErrNotFile) {
		t.Errorf("expected ErrNotFile, got %v", err)
	}
	if err := w.Delete(file, false); err != nil {
		t.Fatalf("delete file: %v", err)
	}
	if err := w.Delete(dir, true); err != nil {
		t.Fatalf("delete dir: %v", err)
	}
	if exists, _ := afero.Exists(memFs, dir); exists {
		t.Error("expected directory removed")
	}
	if err := w.Delete(file, false); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestDelete_Trash(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{Trash: true})
	dir := testutil.Path("/", "docs", "chapter")
	memFs.MustWriteFile(testutil.Path(dir, "a.md"), "")

	if err := w.Delete(dir, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists, _ := afero.Exists(memFs, dir); exists {
		t.Error("expected directory trashed")
	}
}

func TestRename(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	dir := testutil.Path("/", "docs")
	a := testutil.Path(dir, "a.md")
	memFs.MustWriteFile(a, "# a")
	memFs.MustWriteFile(testutil.Path(dir, "taken.md"), "")

	if _, err := w.Rename(a, "taken.md"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := w.Rename(a, "../b.md"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}

	got, err := w.Rename(a, "b.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testutil.Path(dir, "b.md"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	content, _ := afero.ReadFile(memFs, got)
	if string(content) != "# a" {
		t.Errorf("content lost: %q", content)
	}

	// Renaming to the same name is a no-op.
	if same, err := w.Rename(got, "b.md"); err != nil || same != got {
		t.Errorf("expected no-op, got %q, %v", same, err)
	}
}

func TestRead(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	dir := testutil.Path("/", "docs")
	page := testutil.Path(dir, "a.md")
	data := testutil.Path(dir, "b.json")
	binary := testutil.Path(dir, "c.md")
	memFs.MustWriteFile(page, "# Title\n\nbody")
	memFs.MustWriteFile(data, `{"k": 1}`)
	memFs.MustWriteFile(binary, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	got, err := w.Read(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "# Title\n\nbody" || got.Path != page {
		t.Errorf("unexpected file %+v", got)
	}

	if _, err := w.Read(data); err != nil {
		t.Errorf("expected json to be readable, got %v", err)
	}
	if _, err := w.Read(binary); !errors.Is(err, ErrNotText) {
		t.Errorf("expected ErrNotText, got %v", err)
	}
	if _, err := w.Read(dir); !errors.Is(err, ErrNotFile) {
		t.Errorf("expected ErrNotFile, got %v", err)
	}
}

func TestReadMany_SkipsUnreadable(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	dir := testutil.Path("/", "docs")
	memFs.MustWriteFile(testutil.Path(dir, "a.md"), "a")
	memFs.MustWriteFile(testutil.Path(dir, "b.md"), "b")

	got := w.ReadMany([]string{
		testutil.Path(dir, "a.md"),
		testutil.Path(dir, "missing.md"),
		dir,
		testutil.Path(dir, "b.md"),
	})
	if len(got) != 2 || got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("unexpected files %+v", got)
	}
}

func TestWrite(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	dir := testutil.Path("/", "docs")
	page := testutil.Path(dir, "a.md")
	memFs.MustWriteFile(page, "old")

	got, err := w.Write(page, "new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "new" {
		t.Errorf("unexpected content %q", got.Content)
	}
	content, _ := afero.ReadFile(memFs, page)
	if string(content) != "new" {
		t.Errorf("file not written: %q", content)
	}

	if _, err := w.Write(testutil.Path(dir, "missing.md"), "x"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := w.Write(dir, "x"); !errors.Is(err, ErrNotFile) {
		t.Errorf("expected ErrNotFile, got %v", err)
	}
}
