package watcher

import (
	"log/slog"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// Translator turns RawEvents from one installed watch into Change commands.
// A Translator is bound to a single install generation and is discarded when
// that watch is torn down.
type Translator struct {
	fs         afero.Fs
	out        chan<- Command
	stop       <-chan struct{}
	generation uint64
}

// NewTranslator creates a translator that sends onto out until stop is closed.
func NewTranslator(filesystem afero.Fs, out chan<- Command, stop <-chan struct{}, generation uint64) *Translator {
	return &Translator{
		fs:         filesystem,
		out:        out,
		stop:       stop,
		generation: generation,
	}
}

// Translate classifies raw and enqueues the resulting change, if any.
// It is safe to call from the source's goroutine.
func (t *Translator) Translate(raw RawEvent) {
	ev, ok := t.translate(raw)
	if !ok {
		return
	}

	select {
	case t.out <- Change{Event: ev, generation: t.generation}:
	case <-t.stop:
		slog.Debug("watch torn down, dropping change", "kind", ev.Kind, "path", ev.Path)
	}
}

func (t *Translator) translate(raw RawEvent) (ChangeEvent, bool) {
	src := Entry{Path: raw.Path}
	var dst Entry

	if raw.Transition == Renamed {
		// The source name is gone by now; only the destination can be queried.
		dst = Entry{Path: raw.To, IsDir: t.isDir(raw.To, raw.WasDir)}
		src.IsDir = dst.IsDir
	} else {
		src.IsDir = t.isDir(raw.Path, raw.WasDir)
	}

	kind, ok := Classify(raw.Transition, src, dst)
	if !ok {
		return ChangeEvent{}, false
	}

	if !utf8.ValidString(raw.Path) || !utf8.ValidString(raw.To) {
		slog.Debug("dropping change with unrepresentable path", "kind", kind, "path", raw.Path)
		return ChangeEvent{}, false
	}

	ev := ChangeEvent{Kind: kind, Path: raw.Path}
	if raw.Transition == Renamed {
		ev.Path2 = raw.To
	}
	return ev, true
}

// isDir stats path, falling back to hint when the entry no longer exists.
func (t *Translator) isDir(path string, hint bool) bool {
	info, err := t.fs.Stat(path)
	if err != nil {
		return hint
	}
	return info.IsDir()
}
