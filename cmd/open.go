package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/pathutil"
)

var openCmd = &cobra.Command{
	Use:   "open [folder]",
	Short: "Open a notes folder and start watching it (defaults to the current directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var arg string
		if len(args) > 0 {
			arg = args[0]
		}
		root, err := absRoot(arg)
		if err != nil {
			return err
		}
		if root == "" {
			if root, err = os.Getwd(); err != nil {
				return err
			}
		}

		client, err := ipc.Connect()
		if err != nil {
			return nil
		}
		defer client.Close()

		status, err := client.SetRoot(root)
		if err != nil {
			return fmt.Errorf("failed to open folder: %w", err)
		}
		printWatch(status)
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Stop watching the opened folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.Connect()
		if err != nil {
			return nil
		}
		defer client.Close()

		status, err := client.SetRoot("")
		if err != nil {
			return fmt.Errorf("failed to close folder: %w", err)
		}
		printWatch(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
}

// absRoot resolves a user-supplied folder to an absolute path. Empty stays empty.
func absRoot(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(pathutil.ExpandTilde(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}
