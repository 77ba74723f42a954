package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/afero"
)

// DefaultQueueSize is the control channel capacity when none is configured.
const DefaultQueueSize = 256

var (
	// ErrStopped is returned by requests made after the dispatch loop exited.
	ErrStopped = errors.New("watch dispatcher stopped")

	errAlreadyRunning = errors.New("watch dispatcher already running")
)

// Sink receives forwarded changes on the dispatch goroutine.
// Implementations must not block for long.
type Sink interface {
	OnChange(ev ChangeEvent)
}

// StatusSink is optionally implemented by a Sink to observe retarget results.
type StatusSink interface {
	OnStatus(st Status)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev ChangeEvent)

// OnChange calls f(ev).
func (f SinkFunc) OnChange(ev ChangeEvent) { f(ev) }

// Options configures a Dispatcher.
type Options struct {
	// QueueSize is the control channel capacity. Defaults to DefaultQueueSize.
	QueueSize int
}

// activeWatch is the Watching state. Only the dispatch goroutine touches it.
type activeWatch struct {
	target     Target
	handle     Handle
	generation uint64
	stop       chan struct{}
}

// Dispatcher owns the single active watch. Retarget requests and translated
// changes share one FIFO channel consumed by Run, which is the only goroutine
// that installs or removes watches.
type Dispatcher struct {
	source   Source
	fs       afero.Fs
	sink     Sink
	commands chan Command
	done     chan struct{}
	running  atomic.Bool
	status   atomic.Pointer[Status]

	// Owned by the Run goroutine.
	active     *activeWatch
	generation uint64
}

// New creates a Dispatcher. The filesystem is used by translators to tell
// files from directories.
func New(source Source, filesystem afero.Fs, sink Sink, opts Options) *Dispatcher {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}

	d := &Dispatcher{
		source:   source,
		fs:       filesystem,
		sink:     sink,
		commands: make(chan Command, size),
		done:     make(chan struct{}),
	}
	d.status.Store(&Status{State: StateIdle})
	return d
}

// RequestRetarget enqueues a retarget without waiting for it to take effect.
// Requesting the current target again forces a full teardown and reinstall.
func (d *Dispatcher) RequestRetarget(t Target) error {
	return d.enqueue(Retarget{Target: t})
}

// SetWatchRoot retargets to root, or stops watching when root is empty.
func (d *Dispatcher) SetWatchRoot(root string) error {
	return d.RequestRetarget(TargetAt(root))
}

// Retarget enqueues a retarget and waits until the dispatch loop applied it.
// The returned error is the install error, if any.
func (d *Dispatcher) Retarget(ctx context.Context, t Target) error {
	applied := make(chan error, 1)
	if err := d.enqueue(Retarget{Target: t, applied: applied}); err != nil {
		return err
	}

	select {
	case err := <-applied:
		return err
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the most recently published status.
func (d *Dispatcher) Status() Status {
	return *d.status.Load()
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) enqueue(cmd Command) error {
	select {
	case <-d.done:
		return ErrStopped
	default:
	}

	select {
	case d.commands <- cmd:
		return nil
	case <-d.done:
		return ErrStopped
	}
}

// Run processes commands until ctx is cancelled, then removes the active
// watch. It may only be called once.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}
	defer close(d.done)

	slog.Debug("watch dispatcher started")

	for {
		select {
		case <-ctx.Done():
			slog.Debug("watch dispatcher stopping")
			d.teardown()
			d.publish(Status{State: StateIdle, Generation: d.generation})
			return nil
		case cmd := <-d.commands:
			d.dispatch(cmd)
		}
	}
}

func (d *Dispatcher) dispatch(cmd Command) {
	switch c := cmd.(type) {
	case Retarget:
		err := d.retarget(c.Target)
		if c.applied != nil {
			c.applied <- err
		}
	case Change:
		d.forward(c)
	}
}

// retarget tears down the active watch before installing the next one, so
// nothing from the old root is forwarded once the new install begins.
func (d *Dispatcher) retarget(t Target) error {
	d.teardown()

	root, ok := t.Root()
	if !ok {
		slog.Info("watch cleared")
		d.publish(Status{State: StateIdle, Generation: d.generation})
		return nil
	}

	d.generation++
	stop := make(chan struct{})
	tr := NewTranslator(d.fs, d.commands, stop, d.generation)

	h, err := d.source.Install(root, tr.Translate)
	if err != nil {
		close(stop)
		slog.Error("failed to watch folder, live updates disabled", "root", root, "error", err)
		d.publish(Status{State: StateDegraded, Root: root, Err: err, Generation: d.generation})
		return &InstallError{Root: root, Err: err}
	}

	d.active = &activeWatch{
		target:     t,
		handle:     h,
		generation: d.generation,
		stop:       stop,
	}
	slog.Info("watching folder", "root", root)
	d.publish(Status{State: StateWatching, Root: root, Generation: d.generation})
	return nil
}

// teardown removes the active watch. Failures are logged; the dispatcher is
// Idle afterwards either way.
func (d *Dispatcher) teardown() {
	if d.active == nil {
		return
	}

	// Unblock a translator stuck on a full channel; we are its only reader.
	close(d.active.stop)
	if err := d.source.Uninstall(d.active.handle); err != nil {
		slog.Warn("failed to remove watch", "root", d.active.target, "error", err)
	}
	d.active = nil
}

func (d *Dispatcher) forward(c Change) {
	if d.active == nil || c.generation != d.active.generation {
		slog.Debug("dropping stale change", "kind", c.Event.Kind, "path", c.Event.Path)
		return
	}
	d.sink.OnChange(normalizeEvent(c.Event))
}

func (d *Dispatcher) publish(st Status) {
	d.status.Store(&st)
	if ss, ok := d.sink.(StatusSink); ok {
		ss.OnStatus(st)
	}
}
