//go:build integration

package cmd

import (
	"context"

	"github.com/ahriknow/ahridocs/daemon"
	"github.com/ahriknow/ahridocs/internal/fs"
	"github.com/ahriknow/ahridocs/internal/testutil"
)

// RunDaemon is a test helper that runs the daemon inside a harness
// environment with proper logging setup.
func RunDaemon(ctx context.Context, env testutil.Env) error {
	return daemon.RunWithOptions(ctx, daemon.Options{
		ConfigPath:   env.ConfigPath,
		Fs:           fs.NewReal(),
		SetupLogging: SetupLogging,
		SocketPath:   env.SocketPath,
		StatePath:    env.StatePath,
	})
}
