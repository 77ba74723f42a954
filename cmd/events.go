package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/report"
	"github.com/ahriknow/ahridocs/internal/watcher"
)

const followInterval = 250 * time.Millisecond

var (
	eventsFollow     bool
	eventsSince      uint64
	eventsTimeFormat string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print recent changes in the watched folder",
	Long: `Print the changes the daemon has published for the watched folder.

With --follow, keep printing new changes until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := ipc.Connect()
		if err != nil {
			return nil
		}
		defer client.Close()

		printer := report.NewChangePrinterWithWriter(cmd.OutOrStdout(), eventsTimeFormat)
		return streamEvents(ctx, client, printer, eventsSince, eventsFollow, followInterval)
	},
}

func init() {
	eventsCmd.Flags().BoolVarP(&eventsFollow, "follow", "f", false, "keep printing new changes")
	eventsCmd.Flags().Uint64Var(&eventsSince, "since", 0, "only print changes after this sequence number")
	eventsCmd.Flags().StringVar(&eventsTimeFormat, "time-format", report.DefaultTimeFormat, "strftime layout for timestamps")
	rootCmd.AddCommand(eventsCmd)
}

type eventSource interface {
	Events(since uint64) (*ipc.EventsResult, error)
}

// streamEvents prints journaled changes after since. When follow is set it
// polls every interval until ctx is cancelled.
func streamEvents(ctx context.Context, src eventSource, printer *report.ChangePrinter, since uint64, follow bool, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := src.Events(since)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}
		if result.Dropped {
			slog.Warn("some changes were evicted before they could be printed", "since", since)
		}
		for _, ev := range result.Events {
			printer.Print(ev.Time, watcher.ChangeEvent{Kind: ev.Kind, Path: ev.Path, Path2: ev.Path2})
		}
		since = result.Next

		if !follow {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
