// Package group implements the hierarchical group layer (spec.md §4.5): a
// partition of [0,N) into contiguous ranges, each with its own ACTIVE/
// SLEEP/MERGED lifecycle, that periodically checks local sortedness and
// merges with an adjacent sorted, ACTIVE neighbor.
//
// The source lineage this design descends from modeled each group (and in
// some variants each cell) as its own goroutine. spec.md §9 calls that out
// as a re-architecture target: a single Supervisor here owns all live
// groups and dispatches lifecycle ticks onto a small, fixed worker pool
// (sized to NumWorkers, not to the live group count), which preserves the
// visible per-group state machine while bounding goroutine count.
package group

import (
	"sync"
	"sync/atomic"
)

// Status is a group's lifecycle state. Initial is Active, terminal is
// Merged.
type Status int

const (
	Active Status = iota
	Sleep
	Merged
)

func (s Status) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Sleep:
		return "SLEEP"
	case Merged:
		return "MERGED"
	default:
		return "UNKNOWN"
	}
}

// Group is a contiguous range of positions with its own sleep/wake control
// loop (spec.md §3 "Group"). Boundaries, status, and the phase timer are
// plain fields; structural mutation (a merge) goes through the Supervisor,
// which takes the metadata's array-wide lock (engine.Metadata.ArrayLock) to
// guarantee G1/G2/G3 (spec.md §3).
type Group struct {
	ID          int64
	Left, Right int
	Status      Status
	PhasePeriod int
	Countdown   int

	// mu serializes a single group's own lifecycle tick: the supervisor may
	// dispatch the same group id again before a slow tick finishes, and
	// this field (not the array-wide lock, which only guards structural
	// merges) keeps one group's Countdown/Status flips single-threaded.
	mu sync.Mutex
}

// Table is the group arena: groups are stored by id, and cells hold the id
// (via the metadata table's GroupID field), not a pointer to the Group
// itself — this is the "cyclic group <-> cell references" re-architecture
// from spec.md §9, replacing pointer cycles with an array lookup.
type Table struct {
	nextID atomic.Int64
	groups map[int64]*Group
}

// NewTable builds an empty group arena.
func NewTable() *Table {
	return &Table{groups: make(map[int64]*Group)}
}

// NewGroup allocates and registers a new group covering [left,right] with
// the given phase period, assigning it the next monotone id (P7: group ids
// are monotone and a MERGED group never becomes ACTIVE again).
func (t *Table) NewGroup(left, right, phasePeriod int) *Group {
	g := &Group{
		ID:          t.nextID.Add(1) - 1,
		Left:        left,
		Right:       right,
		Status:      Active,
		PhasePeriod: phasePeriod,
		Countdown:   phasePeriod,
	}
	t.groups[g.ID] = g
	return g
}

// Get returns the group with the given id, or nil if unregistered.
func (t *Table) Get(id int64) *Group { return t.groups[id] }

// Live returns the ids of all groups not yet MERGED. Each group's own lock
// is taken to read Status, since the supervisor's tick/merge and ForceExit
// both mutate it under that same lock.
func (t *Table) Live() []int64 {
	var out []int64
	for id, g := range t.groups {
		g.mu.Lock()
		live := g.Status != Merged
		g.mu.Unlock()
		if live {
			out = append(out, id)
		}
	}
	return out
}

// ForceExit marks every currently live group MERGED, under each group's own
// lock. Used by a trial's shutdown path (spec.md §5: "the runner signals
// all group threads to exit by setting every live group's status to
// MERGED") rather than relying on context cancellation alone, which could
// otherwise race a supervisor's dispatch loop and be reported as a leak
// even on ordinary trial completion.
func (t *Table) ForceExit() {
	for _, g := range t.groups {
		g.mu.Lock()
		if g.Status != Merged {
			g.Status = Merged
		}
		g.mu.Unlock()
	}
}

// All returns every group ever registered, including MERGED ones.
func (t *Table) All() []*Group {
	out := make([]*Group, 0, len(t.groups))
	for _, g := range t.groups {
		out = append(out, g)
	}
	return out
}
