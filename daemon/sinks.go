package daemon

import (
	"log/slog"

	"github.com/ahriknow/ahridocs/internal/watcher"
)

// fanout forwards changes and statuses to several sinks in order.
type fanout []watcher.Sink

func (f fanout) OnChange(ev watcher.ChangeEvent) {
	for _, s := range f {
		s.OnChange(ev)
	}
}

func (f fanout) OnStatus(st watcher.Status) {
	for _, s := range f {
		if ss, ok := s.(watcher.StatusSink); ok {
			ss.OnStatus(st)
		}
	}
}

// logSink logs every change at debug level.
type logSink struct{}

func (logSink) OnChange(ev watcher.ChangeEvent) {
	if ev.Path2 != "" {
		slog.Debug("folder changed", "kind", ev.Kind, "path", ev.Path, "to", ev.Path2)
		return
	}
	slog.Debug("folder changed", "kind", ev.Kind, "path", ev.Path)
}
