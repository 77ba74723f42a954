package daemon

import (
	"sync"
	"time"

	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/watcher"
)

// DefaultJournalSize is how many changes the journal retains.
const DefaultJournalSize = 256

// Journal keeps the most recent changes with increasing sequence numbers so
// CLI clients can poll for what happened since their last call.
type Journal struct {
	mu      sync.Mutex
	size    int
	entries []ipc.Event
	lastSeq uint64
	now     func() time.Time
}

// NewJournal creates a Journal holding up to size changes.
func NewJournal(size int) *Journal {
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &Journal{
		size:    size,
		entries: make([]ipc.Event, 0, size),
		now:     time.Now,
	}
}

// OnChange records ev, evicting the oldest entry when full.
func (j *Journal) OnChange(ev watcher.ChangeEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.lastSeq++
	if len(j.entries) == j.size {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:j.size-1]
	}
	j.entries = append(j.entries, ipc.Event{
		Seq:   j.lastSeq,
		Time:  j.now(),
		Kind:  ev.Kind,
		Path:  ev.Path,
		Path2: ev.Path2,
	})
}

// Since returns retained changes with a sequence number above seq.
func (j *Journal) Since(seq uint64) ipc.EventsResult {
	j.mu.Lock()
	defer j.mu.Unlock()

	// A seq above lastSeq came from a previous daemon; the caller resumes from lastSeq.
	result := ipc.EventsResult{Next: j.lastSeq}
	if seq >= j.lastSeq {
		return result
	}

	for _, e := range j.entries {
		if e.Seq > seq {
			result.Events = append(result.Events, e)
		}
	}
	if len(j.entries) > 0 && j.entries[0].Seq > seq+1 {
		result.Dropped = true
	}
	return result
}

// LastSeq returns the sequence number of the newest change.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSeq
}
