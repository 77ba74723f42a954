package workspace

import (
	"errors"
	"testing"

	"github.com/ahriknow/ahridocs/internal/fs"
	"github.com/ahriknow/ahridocs/internal/testutil"
)

func newTestWorkspace(t *testing.T, opts Options) (*Workspace, *fs.MemFileSystem) {
	t.Helper()
	memFs := fs.NewMemTest()
	w, err := New(memFs, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, memFs
}

func names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestList_TypesAndOrder(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	root := testutil.Path("/", "docs")
	memFs.MustWriteFile(testutil.Path(root, "z.md"), "")
	memFs.MustWriteFile(testutil.Path(root, "a.ahtml"), "")
	memFs.MustWriteFile(testutil.Path(root, "b.md"), "")
	memFs.MustWriteFile(testutil.Path(root, "image.png"), "")
	memFs.MustWriteFile(testutil.Path(root, "Makefile"), "")
	memFs.MustWriteFile(testutil.Path(root, "data.json"), "{}")
	memFs.MustMkdirAll(testutil.Path(root, "chapter"))
	memFs.MustMkdirAll(testutil.Path(root, "appendix"))

	nodes, err := w.List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"appendix", "chapter", "b.md", "z.md", "a.ahtml"}
	if got := names(nodes); !equalStrings(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
	if nodes[0].Type != NodeDir || nodes[2].Type != NodePage || nodes[4].Type != NodeHTML {
		t.Errorf("unexpected types: %+v", nodes)
	}
	if nodes[2].Path != testutil.Path(root, "b.md") {
		t.Errorf("unexpected path %q", nodes[2].Path)
	}
}

func TestList_Nested(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	root := testutil.Path("/", "docs")
	memFs.MustWriteFile(testutil.Path(root, "chapter", "intro.md"), "")
	memFs.MustMkdirAll(testutil.Path(root, "chapter", "empty"))

	nodes, err := w.List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(nodes) != 1 || !nodes[0].IsDir() {
		t.Fatalf("expected one directory, got %+v", nodes)
	}
	if got := names(nodes[0].Children); !equalStrings(got, []string{"empty", "intro.md"}) {
		t.Errorf("children = %v", got)
	}
}

func TestList_SettingsDirExcludedAtRootOnly(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	root := testutil.Path("/", "docs")
	memFs.MustWriteFile(testutil.Path(root, ".ahriknow", "notes.md"), "")
	memFs.MustWriteFile(testutil.Path(root, "sub", ".ahriknow", "notes.md"), "")

	nodes, err := w.List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := names(nodes); !equalStrings(got, []string{"sub"}) {
		t.Fatalf("root entries = %v", got)
	}
	if got := names(nodes[0].Children); !equalStrings(got, []string{".ahriknow"}) {
		t.Errorf("nested settings dir should be listed, got %v", got)
	}
}

func TestList_CustomExclude(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{Exclude: []string{"**/drafts", "*.ahtml"}})
	root := testutil.Path("/", "docs")
	memFs.MustWriteFile(testutil.Path(root, "drafts", "a.md"), "")
	memFs.MustWriteFile(testutil.Path(root, "book", "drafts", "b.md"), "")
	memFs.MustWriteFile(testutil.Path(root, "page.ahtml"), "")
	memFs.MustWriteFile(testutil.Path(root, "book", "page.ahtml"), "")

	nodes, err := w.List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := names(nodes); !equalStrings(got, []string{"book"}) {
		t.Fatalf("root entries = %v", got)
	}
	// "*.ahtml" does not cross directories.
	if got := names(nodes[0].Children); !equalStrings(got, []string{"page.ahtml"}) {
		t.Errorf("book entries = %v", got)
	}
}

func TestList_Errors(t *testing.T) {
	w, memFs := newTestWorkspace(t, Options{})
	file := testutil.Path("/", "docs", "a.md")
	memFs.MustWriteFile(file, "")

	if _, err := w.List(testutil.Path("/", "missing")); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := w.List(file); !errors.Is(err, ErrNotDir) {
		t.Errorf("expected ErrNotDir, got %v", err)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New(fs.NewMemTest(), Options{Exclude: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
