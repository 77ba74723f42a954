package workspace

import (
	"cmp"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// NodeType orders tree entries: directories first, then pages.
type NodeType int

const (
	NodeDir  NodeType = 0
	NodePage NodeType = 1
	NodeHTML NodeType = 2
)

// Node is one entry of a folder listing.
type Node struct {
	Type     NodeType `json:"type"`
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Updated  int64    `json:"updated"` // unix milliseconds
	Children []Node   `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n Node) IsDir() bool {
	return n.Type == NodeDir
}

// pageTypes maps listed file extensions to their node type.
var pageTypes = map[string]NodeType{
	".md":    NodePage,
	".ahtml": NodeHTML,
}

// List returns the tree below root. Files other than pages and entries
// matching an exclude pattern are skipped. Entries that disappear while
// listing are skipped.
func (w *Workspace) List(root string) ([]Node, error) {
	info, err := w.fs.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotDir
	}
	return w.list(root, root)
}

func (w *Workspace) list(root, dir string) ([]Node, error) {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if w.excluded(root, path) {
			continue
		}

		node := Node{
			Name:    entry.Name(),
			Path:    path,
			Updated: entry.ModTime().UnixMilli(),
		}

		if entry.IsDir() {
			node.Type = NodeDir
			children, err := w.list(root, path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				slog.Warn("failed to list directory", "path", path, "error", err)
				continue
			}
			node.Children = children
		} else {
			t, ok := pageTypes[strings.ToLower(filepath.Ext(entry.Name()))]
			if !ok {
				continue
			}
			node.Type = t
		}

		nodes = append(nodes, node)
	}

	slices.SortStableFunc(nodes, func(a, b Node) int {
		if c := cmp.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return nodes, nil
}

func (w *Workspace) excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.exclude {
		// Patterns were validated in New.
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
