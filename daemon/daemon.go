package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"github.com/ahriknow/ahridocs/internal/config"
	"github.com/ahriknow/ahridocs/internal/fs"
	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/pathutil"
	"github.com/ahriknow/ahridocs/internal/server"
	"github.com/ahriknow/ahridocs/internal/state"
	"github.com/ahriknow/ahridocs/internal/watcher"
	"github.com/ahriknow/ahridocs/internal/workspace"
)

// Controller owns the watch dispatcher and the sinks it feeds, and
// implements ipc.Handler and server.Controller. Its methods are safe for
// concurrent use.
type Controller struct {
	configPath string
	state      *state.State
	dispatcher *watcher.Dispatcher
	journal    *Journal
	hub        *server.Hub

	mu         sync.Mutex
	serverAddr string
}

// NewController creates a controller whose dispatcher installs watches
// through source.
func NewController(configPath string, cfg *config.Config, filesystem fs.FileSystem, source watcher.Source, st *state.State) *Controller {
	journal := NewJournal(DefaultJournalSize)
	hub := server.NewHub()

	c := &Controller{
		configPath: configPath,
		state:      st,
		journal:    journal,
		hub:        hub,
	}
	c.dispatcher = watcher.New(source, filesystem, fanout{logSink{}, journal, hub}, watcher.Options{
		QueueSize: cfg.Watch.QueueSize,
	})
	return c
}

// RunDispatcher runs the dispatch loop until ctx is cancelled.
func (c *Controller) RunDispatcher(ctx context.Context) error {
	return c.dispatcher.Run(ctx)
}

// Hub returns the websocket hub fed by the dispatcher.
func (c *Controller) Hub() *server.Hub {
	return c.hub
}

// Journal returns the change journal fed by the dispatcher.
func (c *Controller) Journal() *Journal {
	return c.journal
}

// Status returns the dispatcher's current status.
func (c *Controller) Status() watcher.Status {
	return c.dispatcher.Status()
}

// SetWatchRoot retargets the watch to root, or stops watching when root is
// empty, and waits until the change is applied. The opened folder is
// persisted unless the install failed.
func (c *Controller) SetWatchRoot(ctx context.Context, root string) (watcher.Status, error) {
	if root != "" {
		root = filepath.Clean(pathutil.ExpandTilde(root))
		if !filepath.IsAbs(root) {
			return c.Status(), fmt.Errorf("%w: %s", watcher.ErrRelativeRoot, root)
		}
	}

	if err := c.dispatcher.Retarget(ctx, watcher.TargetAt(root)); err != nil {
		return c.Status(), err
	}
	if err := c.state.SetRoot(root, time.Now()); err != nil {
		slog.Warn("failed to save state", "error", err)
	}
	return c.Status(), nil
}

func (c *Controller) setServerAddr(addr net.Addr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverAddr = addr.String()
}

// ServerAddr returns the UI server address, or "" if it is not running.
func (c *Controller) ServerAddr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverAddr
}

// Options configures Run. Zero values use the platform defaults.
type Options struct {
	ConfigPath   string
	Fs           fs.FileSystem
	SetupLogging func(level string)

	// Root is opened at startup instead of the persisted folder.
	Root       string
	SocketPath string
	StatePath  string
	// Source overrides the fsnotify-backed watch source.
	Source watcher.Source
}

// Run loads config and runs the daemon until context is cancelled.
func Run(ctx context.Context, configPath string, filesystem fs.FileSystem, setupLogging func(string)) error {
	return RunWithOptions(ctx, Options{
		ConfigPath:   configPath,
		Fs:           filesystem,
		SetupLogging: setupLogging,
	})
}

// RunWithOptions runs the daemon until ctx is cancelled.
func RunWithOptions(ctx context.Context, opts Options) error {
	cfg, err := config.LoadWithFs(opts.ConfigPath, opts.Fs)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.Logging.Level)
	}

	// Load persistent state
	var st *state.State
	if opts.StatePath != "" {
		st, err = state.LoadFrom(opts.StatePath)
	} else {
		st, err = state.Load()
	}
	if err != nil {
		slog.Warn("failed to load state, starting fresh", "error", err)
		st, _ = state.LoadFrom("")
	}

	ws, err := workspace.New(opts.Fs, workspace.Options{
		Exclude: cfg.Workspace.Exclude,
		Trash:   cfg.Workspace.Trash,
	})
	if err != nil {
		return fmt.Errorf("invalid workspace config: %w", err)
	}

	source := opts.Source
	if source == nil {
		source = watcher.NewFsnotifySource(opts.Fs, cfg.Watch.RenameWindow)
	}
	controller := NewController(opts.ConfigPath, cfg, opts.Fs, source, st)

	slog.Info("loaded config", "path", opts.ConfigPath, "server", cfg.Server.Addr, "rename_window", cfg.Watch.RenameWindow)

	var ipcServer *ipc.Server
	if opts.SocketPath != "" {
		ipcServer, err = ipc.NewServerAt(opts.SocketPath, controller)
	} else {
		ipcServer, err = ipc.NewServer(controller)
	}
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return controller.RunDispatcher(gctx)
	})
	g.Go(func() error {
		return ipcServer.Serve(gctx)
	})
	if cfg.Server.Addr != "" {
		ui := server.New(ws, controller, controller.Hub())
		g.Go(func() error {
			if err := ui.ListenAndServe(gctx, cfg.Server.Addr, controller.setServerAddr); err != nil {
				return fmt.Errorf("ui server: %w", err)
			}
			return nil
		})
	}

	// Reopen the last folder
	root := opts.Root
	if root == "" {
		root = st.LastRoot()
	}
	if root != "" {
		if _, err := controller.SetWatchRoot(gctx, root); err != nil {
			slog.Warn("failed to reopen folder", "root", root, "error", err)
		}
	}

	// Notify systemd that we're ready (no-op on non-systemd systems)
	daemon.SdNotify(false, daemon.SdNotifyReady)
	slog.Info("daemon ready", "socket", ipcServer.Path())

	<-gctx.Done()

	// Notify systemd that we're stopping (no-op on non-systemd systems)
	daemon.SdNotify(false, daemon.SdNotifyStopping)

	return g.Wait()
}
