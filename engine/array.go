package engine

import (
	"sync"

	"cellsort/probe"
)

// Array is the fixed-length, position-addressable sequence of cells the
// engine sorts, plus everything a trial needs to act on it: the metadata
// table, the comparator defining the total order, the topology governing
// visibility, the position-pair locks the swap protocol uses, and the
// trial's probe.
type Array[V any] struct {
	cells     []Cell[V]
	cellsMu   sync.RWMutex // guards the cells slice itself (exchanges)
	pairLocks []sync.Mutex // one per position; swap.go locks min(i,j) then max(i,j)
	meta      *Metadata
	cmp       Comparator[V]
	topology  Topology[V]
	probe     *probe.Probe[V]
}

// NewArray builds an array of n cells produced by factory(position), wired
// to the given comparator, topology, and probe. factory must be re-entrant
// (spec.md §9, "Parallel factory invocation"). A nil topology defaults to a
// ChimericTopology over the array's own metadata, the natural choice when a
// population mixes algotypes (spec.md §4.2 "Chimeric").
func NewArray[V any](
	n int,
	factory func(position int) V,
	cmp Comparator[V],
	topology Topology[V],
	algotypeOf func(position int) Algotype,
	direction Direction,
	prb *probe.Probe[V],
) (*Array[V], error) {
	if n <= 0 {
		return nil, ErrInvalidArraySize
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	cells := make([]Cell[V], n)
	for p := 0; p < n; p++ {
		cells[p] = NewCell(factory(p))
	}
	meta := NewMetadata(n, algotypeOf, direction)
	if topology == nil {
		topology = NewChimericTopology[V](meta)
	}
	return &Array[V]{
		cells:     cells,
		pairLocks: make([]sync.Mutex, n),
		meta:      meta,
		cmp:       cmp,
		topology:  topology,
		probe:     prb,
	}, nil
}

// Len returns the array's length N.
func (a *Array[V]) Len() int { return len(a.cells) }

// Metadata returns the position-indexed metadata table.
func (a *Array[V]) Metadata() *Metadata { return a.meta }

// Comparator returns the comparator this array sorts with.
func (a *Array[V]) Comparator() Comparator[V] { return a.cmp }

// Topology returns the array's topology.
func (a *Array[V]) Topology() Topology[V] { return a.topology }

// Probe returns the trial's probe.
func (a *Array[V]) Probe() *probe.Probe[V] { return a.probe }

// ValueAt returns the value currently held at position p.
func (a *Array[V]) ValueAt(p int) V {
	a.cellsMu.RLock()
	defer a.cellsMu.RUnlock()
	return a.cells[p].Value()
}

// Values returns a defensive copy of the current value sequence, in
// position order.
func (a *Array[V]) Values() []V {
	a.cellsMu.RLock()
	defer a.cellsMu.RUnlock()
	out := make([]V, len(a.cells))
	for i, c := range a.cells {
		out[i] = c.Value()
	}
	return out
}

// Compare orders the values currently at positions i and j.
func (a *Array[V]) Compare(i, j int) int {
	a.cellsMu.RLock()
	defer a.cellsMu.RUnlock()
	return a.cmp(a.cells[i].Value(), a.cells[j].Value())
}
