package watcher

// Target is the root the dispatcher should watch. The zero value means
// "not watching anything".
type Target struct {
	root string
}

// NoTarget returns the empty target.
func NoTarget() Target {
	return Target{}
}

// TargetAt returns a target for root. An empty root yields NoTarget.
func TargetAt(root string) Target {
	return Target{root: root}
}

// Root returns the watched root and whether the target is set.
func (t Target) Root() (string, bool) {
	return t.root, t.root != ""
}

// IsSet reports whether the target names a root.
func (t Target) IsSet() bool {
	return t.root != ""
}

// Equal reports whether both targets name the same root (or are both unset).
func (t Target) Equal(other Target) bool {
	return t.root == other.root
}

func (t Target) String() string {
	if t.root == "" {
		return "<none>"
	}
	return t.root
}

// State is the dispatch loop state as seen from outside.
type State string

const (
	StateIdle     State = "idle"
	StateWatching State = "watching"
	// StateDegraded means the last install failed; live updates are off
	// until the next successful retarget.
	StateDegraded State = "degraded"
)

// Status is a snapshot of the dispatcher published after each retarget.
type Status struct {
	State State
	Root  string
	Err   error
	// Generation counts install attempts since start.
	Generation uint64
}
