package engine

import "golang.org/x/sync/errgroup"

// ExecutionMode selects how a Step sweeps the array.
type ExecutionMode int

const (
	// Sequential sweeps positions in topology order on a single goroutine;
	// fully reproducible given a seed.
	Sequential ExecutionMode = iota
	// Parallel partitions positions across NumThreads workers; swaps across
	// partition boundaries are serialized by the position-pair lock.
	// Not guaranteed deterministic.
	Parallel
)

// StepResult is the per-step output: the swap count, and whether the step
// was stable (zero swaps).
type StepResult struct {
	SwapCount int
	Stable    bool
}

// Engine drives one step at a time over an Array.
type Engine[V any] struct {
	Array      *Array[V]
	Mode       ExecutionMode
	NumThreads int
}

// NewEngine builds an execution engine. numThreads is ignored in Sequential
// mode and must be >= 1 in Parallel mode.
func NewEngine[V any](array *Array[V], mode ExecutionMode, numThreads int) *Engine[V] {
	if numThreads < 1 {
		numThreads = 1
	}
	return &Engine[V]{Array: array, Mode: mode, NumThreads: numThreads}
}

// Step advances the array by one complete sweep and returns the per-step
// swap count and stability. Any topology-mismatch error aborts the step and
// is returned to the caller, which the runner treats as a trial failure.
func (e *Engine[V]) Step() (StepResult, error) {
	order := e.Array.Topology().IterationOrder(e.Array.Len())

	var swapCount int
	var err error
	switch e.Mode {
	case Parallel:
		swapCount, err = e.stepParallel(order)
	default:
		swapCount, err = e.stepSequential(order)
	}
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{SwapCount: swapCount, Stable: swapCount == 0}, nil
}

func (e *Engine[V]) stepSequential(order []int) (int, error) {
	swapCount := 0
	for _, p := range order {
		swapped, err := e.evaluate(p)
		if err != nil {
			return 0, err
		}
		if swapped {
			swapCount++
		}
	}
	return swapCount, nil
}

// stepParallel partitions the iteration order across NumThreads workers and
// runs them concurrently, rendezvousing (the "step barrier") before
// returning, per spec.md §4.4/§5.
func (e *Engine[V]) stepParallel(order []int) (int, error) {
	n := e.NumThreads
	if n > len(order) {
		n = len(order)
	}
	if n < 1 {
		n = 1
	}

	var g errgroup.Group
	counts := make([]int, n)
	chunk := (len(order) + n - 1) / n
	for w := 0; w < n; w++ {
		w := w
		start := w * chunk
		if start >= len(order) {
			continue
		}
		end := start + chunk
		if end > len(order) {
			end = len(order)
		}
		partition := order[start:end]
		g.Go(func() error {
			for _, p := range partition {
				swapped, err := e.evaluate(p)
				if err != nil {
					return err
				}
				if swapped {
					counts[w]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// evaluate runs one position's evaluation and at most one swap proposal,
// per spec.md §4.4.
func (e *Engine[V]) evaluate(p int) (bool, error) {
	meta := e.Array.Metadata()
	status := meta.Status(p)
	switch status {
	case StatusMoving, StatusInactive, StatusSleep, StatusMerge, StatusFreeze:
		// MOVING/INACTIVE/SLEEP/MERGE are never evaluated; FREEZE never
		// initiates, so evaluation is a no-op (it may still be a target of
		// another cell's proposal).
		return false, nil
	case StatusError:
		return false, nil
	}

	algotype := meta.Algotype(p)
	topology := e.Array.Topology()
	if concreteAlgotype := topology.Algotype(); !isChimeric[V](topology) && concreteAlgotype != algotype {
		return false, ErrTopologyMismatch
	}

	n := e.Array.Len()
	direction := meta.Direction(p)

	switch algotype {
	case Bubble:
		return e.evaluateBubble(p, n, direction), nil
	case Insertion:
		return e.evaluateInsertion(p, direction), nil
	case Selection:
		return e.evaluateSelection(p, direction), nil
	default:
		return false, ErrUnknownAlgotype
	}
}

func (e *Engine[V]) evaluateBubble(p, n int, direction Direction) bool {
	rightViolates := p+1 < n && direction.Violates(e.Array.Compare(p, p+1))
	leftViolates := p-1 >= 0 && direction.Violates(e.Array.Compare(p-1, p))

	switch {
	case rightViolates:
		return e.Array.ProposeSwap(p, p+1)
	case leftViolates:
		return e.Array.ProposeSwap(p, p-1)
	default:
		return false
	}
}

func (e *Engine[V]) evaluateInsertion(p int, direction Direction) bool {
	if p-1 < 0 {
		return false
	}
	if direction.Violates(e.Array.Compare(p-1, p)) {
		return e.Array.ProposeSwap(p, p-1)
	}
	return false
}

func (e *Engine[V]) evaluateSelection(p int, direction Direction) bool {
	ideal := e.Array.FindExtremum(p, direction)
	if ideal == p {
		return false
	}
	return e.Array.ProposeSwap(p, ideal)
}

func isChimeric[V any](t Topology[V]) bool {
	_, ok := t.(*ChimericTopology[V])
	return ok
}
