package watcher

// Command is an item on the dispatcher's control channel. It is either a
// Retarget or a Change; the channel carries both so that their relative order
// is the order the dispatch loop observes.
type Command interface {
	command()
}

// Retarget asks the dispatch loop to replace the active watch.
type Retarget struct {
	Target Target
	// applied, when non-nil, receives the install result. Used by tests and
	// by callers that want to wait; regular callers leave it nil.
	applied chan<- error
}

// Change carries a classified event produced under a specific install.
type Change struct {
	Event      ChangeEvent
	generation uint64
}

func (Retarget) command() {}
func (Change) command()   {}
