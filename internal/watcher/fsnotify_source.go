package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// DefaultRenameWindow is how long a Rename waits for its matching Create.
const DefaultRenameWindow = 100 * time.Millisecond

// FsnotifySource implements Source with fsnotify, emulating a recursive watch
// by registering every directory below the root.
type FsnotifySource struct {
	fs           afero.Fs
	renameWindow time.Duration
}

// NewFsnotifySource creates a Source. A non-positive renameWindow uses
// DefaultRenameWindow.
func NewFsnotifySource(filesystem afero.Fs, renameWindow time.Duration) *FsnotifySource {
	if renameWindow <= 0 {
		renameWindow = DefaultRenameWindow
	}
	return &FsnotifySource{
		fs:           filesystem,
		renameWindow: renameWindow,
	}
}

// Install watches root recursively and starts delivering events to callback.
func (s *FsnotifySource) Install(root string, callback func(RawEvent)) (Handle, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	h := newFsnotifyHandle(root, s.fs, fsw, callback, s.renameWindow)
	if err := h.dirs.AddRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}

	slog.Debug("installed watch", "root", root, "directories", h.dirs.WatchCount())
	go h.run(fsw)
	return h, nil
}

// Uninstall stops the watch and waits for its goroutine to exit.
func (s *FsnotifySource) Uninstall(h Handle) error {
	fh, ok := h.(*fsnotifyHandle)
	if !ok {
		return fmt.Errorf("unexpected watch handle %T", h)
	}
	return fh.close()
}

type pendingRename struct {
	path   string
	wasDir bool
}

// fsnotifyHandle is one installed watch. Everything except close runs on the
// run goroutine.
type fsnotifyHandle struct {
	root         string
	fs           afero.Fs
	closer       interface{ Close() error }
	dirs         *WatchedDirs
	callback     func(RawEvent)
	renameWindow time.Duration

	pending   *pendingRename
	pairTimer *time.Timer

	quit chan struct{}
	done chan struct{}
}

func newFsnotifyHandle(root string, filesystem afero.Fs, fsw *fsnotify.Watcher, callback func(RawEvent), renameWindow time.Duration) *fsnotifyHandle {
	h := newHandle(root, filesystem, fsw, callback, renameWindow)
	h.closer = fsw
	return h
}

func newHandle(root string, filesystem afero.Fs, fsw fsnotifyWatcher, callback func(RawEvent), renameWindow time.Duration) *fsnotifyHandle {
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	return &fsnotifyHandle{
		root:         root,
		fs:           filesystem,
		dirs:         NewWatchedDirs(filesystem, fsw),
		callback:     callback,
		renameWindow: renameWindow,
		pairTimer:    timer,
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (h *fsnotifyHandle) Root() string {
	return h.root
}

func (h *fsnotifyHandle) run(fsw *fsnotify.Watcher) {
	defer close(h.done)
	defer h.pairTimer.Stop()

	for {
		select {
		case <-h.quit:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			h.process(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "root", h.root, "error", err)
		case <-h.pairTimer.C:
			h.flushPendingRename()
		}
	}
}

func (h *fsnotifyHandle) close() error {
	close(h.quit)
	var err error
	if h.closer != nil {
		err = h.closer.Close()
	}
	<-h.done
	return err
}

// process maps one fsnotify event to zero or more RawEvents. A Rename is held
// back until the next event: if that is a Create in the same directory the
// two become one Renamed, otherwise the rename is reported as a removal.
func (h *fsnotifyHandle) process(event fsnotify.Event) {
	path := event.Name

	switch {
	case event.Has(fsnotify.Create):
		h.watchIfDir(path)
		if h.pending != nil && filepath.Dir(h.pending.path) == filepath.Dir(path) {
			from := h.takePendingRename()
			h.callback(RawEvent{Transition: Renamed, Path: from.path, To: path, WasDir: from.wasDir})
			return
		}
		h.flushPendingRename()
		h.callback(RawEvent{Transition: Created, Path: path})

	case event.Has(fsnotify.Rename):
		h.flushPendingRename()
		wasDir := h.dirs.Forget(path)
		h.pending = &pendingRename{path: path, wasDir: wasDir}
		h.pairTimer.Reset(h.renameWindow)

	case event.Has(fsnotify.Remove):
		h.flushPendingRename()
		wasDir := h.dirs.Forget(path)
		h.callback(RawEvent{Transition: Removed, Path: path, WasDir: wasDir})

	case event.Has(fsnotify.Write):
		h.flushPendingRename()
		h.callback(RawEvent{Transition: Modified, Path: path})
	}
}

func (h *fsnotifyHandle) takePendingRename() *pendingRename {
	from := h.pending
	if from != nil {
		h.pending = nil
		h.pairTimer.Stop()
	}
	return from
}

// flushPendingRename reports an unpaired rename as the entry leaving the tree.
func (h *fsnotifyHandle) flushPendingRename() {
	if from := h.takePendingRename(); from != nil {
		h.callback(RawEvent{Transition: Removed, Path: from.path, WasDir: from.wasDir})
	}
}

func (h *fsnotifyHandle) watchIfDir(path string) {
	info, err := h.fs.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := h.dirs.AddRecursive(path); err != nil {
		slog.Warn("failed to watch new directory", "path", path, "error", err)
	}
}
