package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"cellsort/engine"
	"cellsort/group"
	"cellsort/probe"
)

// TrialResult is runSingleTrial's outcome (spec.md §4.9).
type TrialResult[V any] struct {
	TrialNumber        int
	Converged          bool
	FinalStep          int
	ExecutionTimeNanos int64
	Probe              *probe.Probe[V]
	// FinalValues is the value sequence at the trial's last step, captured
	// regardless of RecordSnapshots so batch aggregation can compute
	// at-convergence metrics even when snapshot recording is off.
	FinalValues []V
	// LeakedGroups lists group ids still live after the shutdown window
	// (spec.md §7 "Thread leak"); empty when every group thread joined.
	LeakedGroups []int64
}

// RunSingleTrial builds a fresh array from config's factory, runs it up to
// config.MaxSteps steps or until the convergence detector fires, and joins
// the group supervisor within the configured shutdown window.
//
// A panic raised on the calling goroutine by the factory, or in Sequential
// mode by the comparator or topology (spec.md §4.4 "any exception...
// propagates and aborts the trial"), is recovered at this boundary and
// returned as an error, matching spec.md §8 scenario 6's "a factory that
// raises". A panic inside a Parallel-mode engine worker or inside the group
// supervisor's goroutine is not recovered here.
func RunSingleTrial[V any](ctx context.Context, config Config[V], trialNumber int) (result TrialResult[V], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runner: trial %d panicked: %v", trialNumber, r)
		}
	}()

	if verr := config.validate(); verr != nil {
		return TrialResult[V]{}, verr
	}

	start := time.Now()
	rng := newTrialRand(config.Seed, trialNumber)
	prb := probe.New[V](config.RecordSnapshots)

	arr, err := engine.NewArray(
		config.ArraySize,
		func(p int) V { return config.Factory(p, rng) },
		config.Comparator,
		config.Topology,
		func(p int) engine.Algotype { return config.AlgotypeOf(p, config.ArraySize) },
		config.Direction,
		prb,
	)
	if err != nil {
		return TrialResult[V]{}, err
	}
	eng := engine.NewEngine(arr, config.ExecutionMode, config.numThreads())

	table := group.NewTable()
	table.NewGroup(0, config.ArraySize-1, config.groupPhasePeriod())
	sup := group.NewSupervisor(arr, table, config.groupNumWorkers(), config.groupTickInterval())

	supCtx, cancelSup := context.WithCancel(context.Background())
	leakedCh := make(chan []int64, 1)
	go func() { leakedCh <- sup.Run(supCtx) }()

	k := config.convergenceK()
	run := 0
	converged := false
	finalStep := 0
	var finalValues []V

	for step := 0; step < config.MaxSteps; step++ {
		select {
		case <-ctx.Done():
			cancelSup()
			<-leakedCh
			return TrialResult[V]{}, ctx.Err()
		default:
		}

		stepResult, stepErr := eng.Step()
		if stepErr != nil {
			cancelSup()
			<-leakedCh
			return TrialResult[V]{}, fmt.Errorf("runner: trial %d: %w", trialNumber, stepErr)
		}

		finalValues = arr.Values()
		finalStep = step + 1
		if config.RecordSnapshots {
			prb.RecordSnapshot(step, finalValues, stepResult.SwapCount)
		}

		if stepResult.SwapCount == 0 {
			run++
		} else {
			run = 0
		}
		if run == k {
			converged = true
			break
		}
	}

	table.ForceExit()
	cancelSup()
	var leaked []int64
	select {
	case leaked = <-leakedCh:
	case <-time.After(config.shutdownWindow()):
		leaked = table.Live()
	}

	return TrialResult[V]{
		TrialNumber:        trialNumber,
		Converged:          converged,
		FinalStep:          finalStep,
		ExecutionTimeNanos: time.Since(start).Nanoseconds(),
		Probe:              prb,
		FinalValues:        finalValues,
		LeakedGroups:       leaked,
	}, nil
}

// RunBatchExperiments submits numRepetitions single-trial tasks to a worker
// pool sized min(numRepetitions, numThreads, GOMAXPROCS), fails fast on the
// first trial error (cancelling siblings and re-raising the original cause),
// and aggregates per-trial metrics on success (spec.md §4.9).
func RunBatchExperiments[V any](ctx context.Context, config Config[V]) (*ExperimentResults[V], error) {
	if config.NumRepetitions <= 0 {
		return nil, ErrInvalidRepetitions
	}

	numWorkers := config.NumRepetitions
	if t := config.numThreads(); t < numWorkers {
		numWorkers = t
	}
	if cores := runtime.GOMAXPROCS(0); cores < numWorkers {
		numWorkers = cores
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(numWorkers))
	results := make([]TrialResult[V], config.NumRepetitions)

	for i := 1; i <= config.NumRepetitions; i++ {
		trialNumber := i
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			res, err := RunSingleTrial(gctx, config, trialNumber)
			if err != nil {
				return err
			}
			results[trialNumber-1] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregate(results, config.Direction, config.Comparator), nil
}
