// Package runner drives repeated trials of the cell-view sorting engine
// (spec.md §4.9): a single trial builds an array, runs it to convergence or
// a step budget, and a batch repeats that over a worker pool, aggregating
// the per-trial metrics. Grounded on the teacher lineage's
// reinforcement/learning.go training loop (repeated episodes, a worker
// pool, aggregated results) generalized from a single RL run to many
// independent sort trials.
package runner

import (
	"math/rand"
	"time"

	"cellsort/engine"
)

// CellFactory builds the value held at a position. rng is a trial-local
// generator (never shared across goroutines) so factories using randomness
// stay re-entrant (spec.md §9 "Parallel factory invocation").
type CellFactory[V any] func(position int, rng *rand.Rand) V

// AlgotypeProvider maps a position to the algotype its cell evaluates with.
type AlgotypeProvider func(position, arraySize int) engine.Algotype

// Config enumerates every trial parameter; the runner assumes no defaults
// beyond the zero-value handling documented per field (spec.md §4.9:
// "no defaults assumed by the runner" beyond what's stated here).
type Config[V any] struct {
	ArraySize       int
	MaxSteps        int
	ConvergenceK    int // <= 0 defaults to trajectory.DefaultConvergenceK (3)
	RecordSnapshots bool
	ExecutionMode   engine.ExecutionMode
	NumRepetitions  int
	NumThreads      int // <= 0 defaults to 1
	Seed            int64

	Direction  engine.Direction
	Comparator engine.Comparator[V]
	Factory    CellFactory[V]
	AlgotypeOf AlgotypeProvider
	// Topology is optional; nil defaults to a ChimericTopology dispatching
	// per position's algotype (spec.md §4.2).
	Topology engine.Topology[V]

	// GroupPhasePeriod is the tick count a group's lifecycle loop counts
	// down before flipping ACTIVE/SLEEP (spec.md §4.5's "conceptually 50ms"
	// translated to integer ticks driven by GroupTickInterval).
	GroupPhasePeriod int
	// GroupTickInterval is the supervisor's ticker period; defaults to 50ms.
	GroupTickInterval time.Duration
	// GroupNumWorkers bounds the supervisor's lifecycle-tick worker pool;
	// defaults to 1.
	GroupNumWorkers int
	// ShutdownWindow bounds how long runSingleTrial waits for the group
	// supervisor to join after a trial ends; defaults to 200ms. Groups still
	// live after this window are reported as leaked (spec.md §5, §7
	// "Thread leak").
	ShutdownWindow time.Duration
}

func (c Config[V]) validate() error {
	if c.ArraySize <= 0 {
		return engine.ErrInvalidArraySize
	}
	if c.Factory == nil {
		return engine.ErrNilFactory
	}
	if c.Comparator == nil {
		return ErrNilComparator
	}
	if c.AlgotypeOf == nil {
		return ErrNilAlgotypeProvider
	}
	if c.MaxSteps <= 0 {
		return ErrInvalidMaxSteps
	}
	return nil
}

func (c Config[V]) convergenceK() int {
	if c.ConvergenceK <= 0 {
		return defaultConvergenceK
	}
	return c.ConvergenceK
}

func (c Config[V]) numThreads() int {
	if c.NumThreads <= 0 {
		return 1
	}
	return c.NumThreads
}

func (c Config[V]) groupPhasePeriod() int {
	if c.GroupPhasePeriod <= 0 {
		return defaultGroupPhasePeriod
	}
	return c.GroupPhasePeriod
}

func (c Config[V]) groupTickInterval() time.Duration {
	if c.GroupTickInterval <= 0 {
		return defaultGroupTickInterval
	}
	return c.GroupTickInterval
}

func (c Config[V]) groupNumWorkers() int {
	if c.GroupNumWorkers <= 0 {
		return 1
	}
	return c.GroupNumWorkers
}

func (c Config[V]) shutdownWindow() time.Duration {
	if c.ShutdownWindow <= 0 {
		return defaultShutdownWindow
	}
	return c.ShutdownWindow
}

const (
	defaultConvergenceK      = 3
	defaultGroupPhasePeriod  = 10
	defaultGroupTickInterval = 50 * time.Millisecond
	defaultShutdownWindow    = 200 * time.Millisecond
)

// newTrialRand builds the trial-local generator described in SPEC_FULL.md's
// "Trial-local seeding" supplement: seed+trialNumber when a seed is given,
// otherwise a time-seeded generator (non-reproducible, since no seed was
// requested).
func newTrialRand(seed int64, trialNumber int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano() + int64(trialNumber)))
	}
	return rand.New(rand.NewSource(seed + int64(trialNumber)))
}
