// Package report renders folder changes and trees for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/itchyny/timefmt-go"

	"github.com/ahriknow/ahridocs/internal/watcher"
)

// DefaultTimeFormat is the strftime layout used for change timestamps.
const DefaultTimeFormat = "%H:%M:%S"

var (
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray
	createdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	removedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	renamedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	modifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	pathStyle     = lipgloss.NewStyle().Bold(true)
)

const (
	createdIcon  = "+"
	removedIcon  = "-"
	renamedIcon  = "→"
	modifiedIcon = "~"
)

// ChangePrinter writes one line per change.
type ChangePrinter struct {
	w          io.Writer
	timeFormat string
}

// NewChangePrinter creates a ChangePrinter writing to stdout.
func NewChangePrinter(timeFormat string) *ChangePrinter {
	return NewChangePrinterWithWriter(os.Stdout, timeFormat)
}

// NewChangePrinterWithWriter creates a ChangePrinter writing to w. An empty
// timeFormat uses DefaultTimeFormat.
func NewChangePrinterWithWriter(w io.Writer, timeFormat string) *ChangePrinter {
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	return &ChangePrinter{w: w, timeFormat: timeFormat}
}

// Print writes ev observed at the given time.
func (p *ChangePrinter) Print(at time.Time, ev watcher.ChangeEvent) {
	fmt.Fprintln(p.w, p.Format(at, ev))
}

// Format renders ev as a single line.
func (p *ChangePrinter) Format(at time.Time, ev watcher.ChangeEvent) string {
	style, icon := kindStyle(ev.Kind)

	line := fmt.Sprintf("%s %s %-13s %s",
		timeStyle.Render(timefmt.Format(at, p.timeFormat)),
		style.Render(icon),
		style.Render(ev.Kind.String()),
		pathStyle.Render(ev.Path),
	)
	if ev.Path2 != "" {
		line += " " + renamedStyle.Render(renamedIcon) + " " + pathStyle.Render(ev.Path2)
	}
	return line
}

func kindStyle(k watcher.ChangeKind) (lipgloss.Style, string) {
	switch k {
	case watcher.DirCreated, watcher.FileCreated:
		return createdStyle, createdIcon
	case watcher.DirRemoved, watcher.FileRemoved:
		return removedStyle, removedIcon
	case watcher.DirRenamed, watcher.FileRenamed:
		return renamedStyle, renamedIcon
	default:
		return modifiedStyle, modifiedIcon
	}
}
