package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ahriknow/ahridocs/internal/config"
	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/watcher"
)

var (
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	labelStyle     = lipgloss.NewStyle().Width(12)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	boxStyle       = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("2")).
			Padding(0, 4)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print status information (watched folder, UI server, configuration path)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.Connect()
		if err != nil {
			return nil
		}
		defer client.Close()

		status, err := client.Status()
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		if status.State == watcher.StateIdle && len(status.Recent) == 0 {
			welcome := "👋 Welcome to ahridocs\n\n" +
				"Open a notes folder with " + highlightStyle.Render("ahridocs open <folder>") + "."
			fmt.Println(boxStyle.Render(welcome))
		}

		printWatch(status)

		server := dimStyle.Render("disabled")
		if status.ServerAddr != "" {
			server = "http://" + status.ServerAddr
		}
		configValue := dimStyle.Render(status.ConfigPath)
		if config.IsDefaultConfig(status.ConfigPath) {
			configValue += dimStyle.Render(" (default)")
		}

		fmt.Println(labelStyle.Render("server") + server)
		fmt.Println(labelStyle.Render("config") + configValue)
		fmt.Println(labelStyle.Render("events") + fmt.Sprintf("%d", status.LastSeq))

		if len(status.Recent) > 0 {
			fmt.Println(labelStyle.Render("recent"))
			for _, root := range status.Recent {
				fmt.Println("  " + dimStyle.Render(root))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// printWatch prints the watch state lines shared by status, open and close.
func printWatch(status *ipc.StatusData) {
	var stateValue string
	switch status.State {
	case watcher.StateWatching:
		stateValue = "🟢 watching"
	case watcher.StateDegraded:
		stateValue = "🟠 degraded (live updates off)"
	default:
		stateValue = "⚪ idle"
	}

	root := dimStyle.Render("none")
	if status.Root != "" {
		root = status.Root
		if !status.OpenedAt.IsZero() {
			root += dimStyle.Render(" (opened " + formatTimeAgo(status.OpenedAt) + ")")
		}
	}

	fmt.Println(labelStyle.Render("status") + stateValue)
	fmt.Println(labelStyle.Render("folder") + root)
	if status.WatchError != "" {
		fmt.Println(labelStyle.Render("error") + errorStyle.Render(status.WatchError))
	}
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
