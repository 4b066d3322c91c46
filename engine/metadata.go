package engine

import (
	"sync"
	"sync/atomic"
)

// Metadata is the position-indexed struct-of-arrays that replaces the
// source lineage's per-cell engine state. Every field the spec's CellRef
// attaches to a position — status, previous status, algotype, direction,
// ideal position, group boundaries, and the owning group id — lives here,
// addressed by position, not by any pointer the cell itself carries
// (spec.md §9, "Cells as behavior objects with engine state").
//
// Per-position scalar fields (status, algotype, ideal position, boundaries,
// group id) are individually atomic so that a group's lifecycle loop and the
// execution engine's sweep can both touch a position's metadata without
// contending on a single lock. ArrayLock is the one coarse lock spec.md §5
// calls "the array-wide lock": only multi-position structural mutations
// (group merges, in the group package) take it.
type Metadata struct {
	ArrayLock sync.Mutex

	status       []atomic.Int32
	prevStatus   []atomic.Int32
	algotype     []atomic.Int32
	direction    []atomic.Int32
	idealPos     []atomic.Int64 // -1 when not SELECTION / not yet computed
	leftBoundary []atomic.Int64
	rightBound   []atomic.Int64
	groupID      []atomic.Int64 // -1 when unassigned

	// selectionCount tracks how many positions currently carry the
	// SELECTION algotype, so InvalidateIdealPositionsThrough can skip its
	// work entirely for BUBBLE/INSERTION-only populations, which never read
	// idealPos at all.
	selectionCount atomic.Int32
}

// NewMetadata allocates a metadata table for n positions, all ACTIVE, with
// group boundaries defaulting to the single position itself and no group
// assigned.
func NewMetadata(n int, algotypeOf func(position int) Algotype, direction Direction) *Metadata {
	m := &Metadata{
		status:       make([]atomic.Int32, n),
		prevStatus:   make([]atomic.Int32, n),
		algotype:     make([]atomic.Int32, n),
		direction:    make([]atomic.Int32, n),
		idealPos:     make([]atomic.Int64, n),
		leftBoundary: make([]atomic.Int64, n),
		rightBound:   make([]atomic.Int64, n),
		groupID:      make([]atomic.Int64, n),
	}
	for p := 0; p < n; p++ {
		m.status[p].Store(int32(StatusActive))
		m.prevStatus[p].Store(int32(StatusActive))
		m.algotype[p].Store(int32(algotypeOf(p)))
		m.direction[p].Store(int32(direction))
		m.idealPos[p].Store(-1)
		m.leftBoundary[p].Store(int64(p))
		m.rightBound[p].Store(int64(p))
		m.groupID[p].Store(-1)
		if algotypeOf(p) == Selection {
			m.selectionCount.Add(1)
		}
	}
	return m
}

// Len returns the number of positions this table covers.
func (m *Metadata) Len() int { return len(m.status) }

func (m *Metadata) Status(p int) Status { return Status(m.status[p].Load()) }

func (m *Metadata) SetStatus(p int, s Status) { m.status[p].Store(int32(s)) }

// SaveStatus stashes the current status as the previous one and installs a
// new status. Used by a group's sleepCells to later restore via
// RestoreStatus.
func (m *Metadata) SaveStatus(p int, s Status) {
	m.prevStatus[p].Store(m.status[p].Load())
	m.status[p].Store(int32(s))
}

// RestoreStatus restores the status saved by the most recent SaveStatus.
func (m *Metadata) RestoreStatus(p int) {
	m.status[p].Store(m.prevStatus[p].Load())
}

func (m *Metadata) Algotype(p int) Algotype { return Algotype(m.algotype[p].Load()) }

// SetAlgotype reassigns position p's algotype, maintaining selectionCount so
// InvalidateIdealPositionsThrough can keep skipping its work once no
// position is SELECTION anymore (or start doing it again once one is). A
// CAS loop on the algotype word itself, rather than a plain load-then-store,
// so two concurrent SetAlgotype(p, ...) calls on the same position can't
// both read the same stale `old` value and double-apply (or drop) a
// selectionCount delta.
func (m *Metadata) SetAlgotype(p int, a Algotype) {
	for {
		old := Algotype(m.algotype[p].Load())
		if old == a {
			return
		}
		if !m.algotype[p].CompareAndSwap(int32(old), int32(a)) {
			continue
		}
		switch {
		case old != Selection && a == Selection:
			m.selectionCount.Add(1)
		case old == Selection && a != Selection:
			m.selectionCount.Add(-1)
		}
		return
	}
}

func (m *Metadata) Direction(p int) Direction { return Direction(m.direction[p].Load()) }

// IdealPosition returns the SELECTION algotype's cached minimum/maximum
// position, or -1 if none has been computed yet.
func (m *Metadata) IdealPosition(p int) int { return int(m.idealPos[p].Load()) }

func (m *Metadata) SetIdealPosition(p, ideal int) { m.idealPos[p].Store(int64(ideal)) }

// InvalidateIdealPositionsThrough clears every cached ideal position for
// positions [0, maxPos]: any position whose search window [p, n) reaches
// maxPos may now hold a stale extremum once the value at maxPos changes. A
// no-op when no position currently carries SELECTION, so BUBBLE/INSERTION
// populations keep an O(1) swap-commit cost.
func (m *Metadata) InvalidateIdealPositionsThrough(maxPos int) {
	if m.selectionCount.Load() == 0 {
		return
	}
	if maxPos >= len(m.idealPos) {
		maxPos = len(m.idealPos) - 1
	}
	for p := 0; p <= maxPos; p++ {
		m.idealPos[p].Store(-1)
	}
}

// Boundaries returns the [left, right] group range recorded for position p.
func (m *Metadata) Boundaries(p int) (left, right int) {
	return int(m.leftBoundary[p].Load()), int(m.rightBound[p].Load())
}

// SetBoundaries updates the group range recorded for position p. Callers
// performing a multi-position update (a group merge) must hold ArrayLock.
func (m *Metadata) SetBoundaries(p, left, right int) {
	m.leftBoundary[p].Store(int64(left))
	m.rightBound[p].Store(int64(right))
}

// GroupID returns the id of the group position p currently belongs to, or
// -1 if unassigned.
func (m *Metadata) GroupID(p int) int64 { return m.groupID[p].Load() }

// SetGroupID reassigns position p to a different group. Callers performing a
// multi-position reassignment (a group merge) must hold ArrayLock.
func (m *Metadata) SetGroupID(p int, id int64) { m.groupID[p].Store(id) }
