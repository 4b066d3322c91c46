package runner

import (
	"math"

	"github.com/google/uuid"

	"cellsort/engine"
	"cellsort/internal/atomicfloat"
	"cellsort/metrics"
)

// ExperimentResults is runBatchExperiments' aggregated output (spec.md
// §4.9): per-trial results plus the batch-level statistics a caller wants
// without re-deriving them from every trial's probe.
type ExperimentResults[V any] struct {
	RunID string // assigned via google/uuid, correlates repeated invocations

	NumTrials       int
	ConvergenceRate float64 // fraction of trials with Converged == true
	MeanSteps       float64 // mean FinalStep across all trials

	// The following are computed only over converged trials; zero-valued
	// (with NaN guarded to 0) when no trial converged.
	MeanSortedness          float64
	StdDevSortedness        float64
	MeanMonotonicityError   float64
	StdDevMonotonicityError float64

	Trials []TrialResult[V]
}

// aggregate folds a completed batch of trials into ExperimentResults.
// Sums are accumulated through atomicfloat.Float64 even though this runs
// single-threaded after errgroup.Wait, matching the teacher lineage's habit
// of routing any running-total accumulation through the lock-free
// accumulator rather than introducing a second ad hoc summation idiom.
func aggregate[V any](results []TrialResult[V], direction engine.Direction, cmp engine.Comparator[V]) *ExperimentResults[V] {
	stepSum := atomicfloat.New(0)
	convergedCount := 0

	type convergedSample struct {
		sortedness float64
		monoErr    float64
	}
	var samples []convergedSample

	for _, r := range results {
		stepSum.AddRetry(float64(r.FinalStep))
		if !r.Converged {
			continue
		}
		convergedCount++
		samples = append(samples, convergedSample{
			sortedness: metrics.Sortedness(r.FinalValues, cmp, direction),
			monoErr:    float64(metrics.MonotonicityError(r.FinalValues, cmp, direction)),
		})
	}

	n := len(results)
	meanSortedness, stdSortedness := meanStdDev(pluck(samples, func(s convergedSample) float64 { return s.sortedness }))
	meanMonoErr, stdMonoErr := meanStdDev(pluck(samples, func(s convergedSample) float64 { return s.monoErr }))

	return &ExperimentResults[V]{
		RunID:                   uuid.NewString(),
		NumTrials:               n,
		ConvergenceRate:         safeDiv(float64(convergedCount), float64(n)),
		MeanSteps:               safeDiv(stepSum.Read(), float64(n)),
		MeanSortedness:          meanSortedness,
		StdDevSortedness:        stdSortedness,
		MeanMonotonicityError:   meanMonoErr,
		StdDevMonotonicityError: stdMonoErr,
		Trials:                  results,
	}
}

func pluck[T any](items []T, f func(T) float64) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = f(it)
	}
	return out
}

func meanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	stdDev = math.Sqrt(variance)
	return mean, stdDev
}

func safeDiv(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}
