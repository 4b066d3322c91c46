// Package probe is the engine's instrumentation: an append-only snapshot
// list plus a handful of atomic counters. It is owned by a single trial and
// passed explicitly into whatever components need to write into it, rather
// than living as module-wide state, so that concurrent trials never share
// a probe (see the "Probe as module-wide sink" note this repo's design
// journal carries forward from its ancestor).
package probe

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is an immutable record of one step of a trial. Two snapshots a, b
// recorded in order satisfy a.StepNumber < b.StepNumber and
// a.Timestamp.Before(b.Timestamp) or equal.
type Snapshot[V any] struct {
	StepNumber int
	Timestamp  time.Time
	Values     []V
	SwapCount  int
	// AlgotypeHistogram is nil unless recorded via RecordSnapshotWithTypes.
	AlgotypeHistogram map[string]int
}

// Probe records per-step snapshots and three thread-safe counters: total
// swaps, compare-and-swap attempts, and frozen-swap attempts.
type Probe[V any] struct {
	mu        sync.RWMutex
	snapshots []Snapshot[V]
	recording bool

	swaps          atomic.Int64
	casAttempts    atomic.Int64
	frozenAttempts atomic.Int64
}

// New creates a probe. When recording is false, RecordSnapshot and
// RecordSnapshotWithTypes are no-ops, but the counters still advance.
func New[V any](recording bool) *Probe[V] {
	return &Probe[V]{recording: recording}
}

// RecordSnapshot appends an immutable snapshot with a defensive copy of
// values. A no-op when recording is disabled.
func (p *Probe[V]) RecordSnapshot(stepNumber int, values []V, swapCount int) {
	p.recordSnapshot(stepNumber, values, swapCount, nil)
}

// RecordSnapshotWithTypes is RecordSnapshot plus an algotype histogram.
func (p *Probe[V]) RecordSnapshotWithTypes(stepNumber int, values []V, swapCount int, histogram map[string]int) {
	var hcopy map[string]int
	if histogram != nil {
		hcopy = make(map[string]int, len(histogram))
		for k, v := range histogram {
			hcopy[k] = v
		}
	}
	p.recordSnapshot(stepNumber, values, swapCount, hcopy)
}

func (p *Probe[V]) recordSnapshot(stepNumber int, values []V, swapCount int, histogram map[string]int) {
	if !p.recording {
		return
	}
	cp := make([]V, len(values))
	copy(cp, values)
	snap := Snapshot[V]{
		StepNumber:        stepNumber,
		Timestamp:         time.Now(),
		Values:            cp,
		SwapCount:         swapCount,
		AlgotypeHistogram: histogram,
	}
	p.mu.Lock()
	p.snapshots = append(p.snapshots, snap)
	p.mu.Unlock()
}

// RecordCompareAndSwap increments the compare-and-swap counter.
func (p *Probe[V]) RecordCompareAndSwap() { p.casAttempts.Add(1) }

// CountFrozenSwapAttempt increments the frozen-swap-attempt counter.
func (p *Probe[V]) CountFrozenSwapAttempt() { p.frozenAttempts.Add(1) }

// RecordSwap increments the total-swaps counter, once per successful
// exchange (distinct from the per-attempt compare-and-swap counter).
func (p *Probe[V]) RecordSwap() { p.swaps.Add(1) }

// Clear drops both the snapshot history and the counters.
func (p *Probe[V]) Clear() {
	p.mu.Lock()
	p.snapshots = nil
	p.mu.Unlock()
	p.ResetCounters()
}

// ResetCounters drops the counters only, preserving snapshot history.
func (p *Probe[V]) ResetCounters() {
	p.swaps.Store(0)
	p.casAttempts.Store(0)
	p.frozenAttempts.Store(0)
}

// Snapshots returns a copy of the recorded snapshot list, safe to range
// over while the engine continues to append.
func (p *Probe[V]) Snapshots() []Snapshot[V] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Snapshot[V], len(p.snapshots))
	copy(out, p.snapshots)
	return out
}

// SnapshotAt returns the snapshot recorded for the given step, if any.
func (p *Probe[V]) SnapshotAt(step int) (Snapshot[V], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.snapshots {
		if s.StepNumber == step {
			return s, true
		}
	}
	return Snapshot[V]{}, false
}

// Len returns the number of recorded snapshots.
func (p *Probe[V]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.snapshots)
}

// TotalSwaps returns the total-swaps counter.
func (p *Probe[V]) TotalSwaps() int64 { return p.swaps.Load() }

// CompareAndSwapAttempts returns the compare-and-swap counter.
func (p *Probe[V]) CompareAndSwapAttempts() int64 { return p.casAttempts.Load() }

// FrozenSwapAttempts returns the frozen-swap-attempt counter.
func (p *Probe[V]) FrozenSwapAttempts() int64 { return p.frozenAttempts.Load() }

// Recording reports whether this probe appends snapshots.
func (p *Probe[V]) Recording() bool { return p.recording }
