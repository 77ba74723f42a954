package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/itchyny/timefmt-go"
	"github.com/xlab/treeprint"

	"github.com/ahriknow/ahridocs/internal/workspace"
)

// DefaultTreeTimeFormat is the strftime layout for modification times in trees.
const DefaultTreeTimeFormat = "%Y-%m-%d %H:%M"

var dirStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // Blue

// TreeOptions controls tree rendering.
type TreeOptions struct {
	// ShowUpdated appends each entry's modification time.
	ShowUpdated bool
	TimeFormat  string
}

// WriteTree renders a folder listing rooted at root.
func WriteTree(w io.Writer, root string, nodes []workspace.Node, opts TreeOptions) {
	if opts.TimeFormat == "" {
		opts.TimeFormat = DefaultTreeTimeFormat
	}
	tree := treeprint.NewWithRoot(dirStyle.Render(root))
	addNodes(tree, nodes, opts)
	fmt.Fprint(w, tree.String())
}

func addNodes(branch treeprint.Tree, nodes []workspace.Node, opts TreeOptions) {
	for _, n := range nodes {
		label := nodeLabel(n, opts)
		if n.IsDir() {
			addNodes(branch.AddBranch(label), n.Children, opts)
			continue
		}
		branch.AddNode(label)
	}
}

func nodeLabel(n workspace.Node, opts TreeOptions) string {
	label := n.Name
	if n.IsDir() {
		label = dirStyle.Render(n.Name + "/")
	}
	if opts.ShowUpdated {
		label += " " + timeStyle.Render(timefmt.Format(time.UnixMilli(n.Updated), opts.TimeFormat))
	}
	return label
}
