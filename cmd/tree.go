package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahriknow/ahridocs/internal/config"
	"github.com/ahriknow/ahridocs/internal/fs"
	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/pathutil"
	"github.com/ahriknow/ahridocs/internal/report"
	"github.com/ahriknow/ahridocs/internal/workspace"
)

var (
	treeConfigPath string
	treeUpdated    bool
	treeTimeFormat string
)

var treeCmd = &cobra.Command{
	Use:   "tree [folder]",
	Short: "Print the pages in a folder (defaults to the watched folder)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var root string
		var err error
		if len(args) > 0 {
			if root, err = absRoot(args[0]); err != nil {
				return err
			}
		} else {
			client, err := ipc.Connect()
			if err != nil {
				return nil
			}
			status, err := client.Status()
			client.Close()
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			if status.Root == "" {
				return fmt.Errorf("no folder is open")
			}
			root = status.Root
		}

		filesystem := fs.NewReal()
		opts := workspace.Options{Exclude: workspace.DefaultExclude}
		if cfg, err := config.LoadWithFs(pathutil.ExpandTilde(treeConfigPath), filesystem); err == nil {
			opts = workspace.Options{Exclude: cfg.Workspace.Exclude, Trash: cfg.Workspace.Trash}
		}

		ws, err := workspace.New(filesystem, opts)
		if err != nil {
			return err
		}
		nodes, err := ws.List(root)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", root, err)
		}

		report.WriteTree(cmd.OutOrStdout(), root, nodes, report.TreeOptions{
			ShowUpdated: treeUpdated,
			TimeFormat:  treeTimeFormat,
		})
		return nil
	},
}

func init() {
	treeCmd.Flags().StringVarP(&treeConfigPath, "config", "c", pathutil.MustDefaultConfigPath(), "path to config file")
	treeCmd.Flags().BoolVarP(&treeUpdated, "updated", "u", false, "show modification times")
	treeCmd.Flags().StringVar(&treeTimeFormat, "time-format", report.DefaultTreeTimeFormat, "strftime layout for modification times")
	rootCmd.AddCommand(treeCmd)
}
