package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ahriknow/ahridocs/daemon"
	"github.com/ahriknow/ahridocs/internal/config"
	"github.com/ahriknow/ahridocs/internal/fs"
	"github.com/ahriknow/ahridocs/internal/pathutil"
)

var (
	daemonConfigPath string
	daemonRoot       string
)

var daemonCmd = &cobra.Command{
	Use:    "daemon",
	Hidden: true,
	Short:  "Watch the opened folder and serve the editor UI",
	Long: `Start a long-running process that watches the opened notes folder
and publishes its changes to the editor over a local websocket.

The last opened folder is reopened at startup. Shuts down gracefully
on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var configPath string
		var err error

		if cmd.Flags().Changed("config") {
			configPath = pathutil.ExpandTilde(daemonConfigPath)
		} else {
			configPath, err = config.EnsureDefaultConfig(daemonConfigPath)
			if err != nil {
				return err
			}
		}

		root, err := absRoot(daemonRoot)
		if err != nil {
			return err
		}

		return daemon.RunWithOptions(ctx, daemon.Options{
			ConfigPath:   configPath,
			Fs:           fs.NewReal(),
			SetupLogging: SetupLogging,
			Root:         root,
		})
	},
}

func init() {
	daemonCmd.Flags().StringVarP(&daemonConfigPath, "config", "c", pathutil.MustDefaultConfigPath(), "path to config file")
	daemonCmd.Flags().StringVarP(&daemonRoot, "root", "r", "", "folder to open instead of the last one")
	rootCmd.AddCommand(daemonCmd)
}
