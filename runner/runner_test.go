package runner

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"cellsort/engine"
)

func intCmp(a, b int) int { return a - b }

func bubbleAlways(_, _ int) engine.Algotype { return engine.Bubble }

func fixedFactory(values []int) CellFactory[int] {
	return func(p int, _ *rand.Rand) int { return values[p] }
}

func baseConfig(values []int) Config[int] {
	return Config[int]{
		ArraySize:         len(values),
		MaxSteps:          100,
		ConvergenceK:      3,
		ExecutionMode:     engine.Sequential,
		Direction:         engine.Increasing,
		Comparator:        intCmp,
		Factory:           fixedFactory(values),
		AlgotypeOf:        bubbleAlways,
		GroupTickInterval: time.Millisecond,
		ShutdownWindow:    50 * time.Millisecond,
	}
}

// Scenario 1 from spec.md §8: sorted input stays sorted, zero total swaps.
func TestRunSingleTrial_SortedInputStaysSorted(t *testing.T) {
	Convey("Given an already-sorted array", t, func() {
		config := baseConfig([]int{1, 2, 3, 4, 5})
		config.RecordSnapshots = true

		Convey("When the trial runs", func() {
			result, err := RunSingleTrial(context.Background(), config, 1)

			Convey("It converges with finalStep == K and zero total swaps", func() {
				So(err, ShouldBeNil)
				So(result.Converged, ShouldBeTrue)
				So(result.FinalStep, ShouldEqual, config.ConvergenceK)
				So(result.Probe.TotalSwaps(), ShouldEqual, int64(0))
			})
		})
	})
}

// Scenario 2 from spec.md §8: reverse input converges to [1,2,3,4,5].
func TestRunSingleTrial_ReverseInputConverges(t *testing.T) {
	Convey("Given a fully reversed array", t, func() {
		config := baseConfig([]int{5, 4, 3, 2, 1})

		Convey("When the trial runs", func() {
			result, err := RunSingleTrial(context.Background(), config, 1)

			Convey("It converges to the sorted sequence", func() {
				So(err, ShouldBeNil)
				So(result.Converged, ShouldBeTrue)
				So(result.FinalValues, ShouldResemble, []int{1, 2, 3, 4, 5})
			})
		})
	})
}

func TestRunSingleTrial_StepBudgetExhausted_NotAnError(t *testing.T) {
	Convey("Given a trial that cannot converge within the step budget", t, func() {
		config := baseConfig([]int{5, 4, 3, 2, 1})
		config.MaxSteps = 1

		Convey("When the trial runs", func() {
			result, err := RunSingleTrial(context.Background(), config, 1)

			Convey("It returns converged=false, not an error", func() {
				So(err, ShouldBeNil)
				So(result.Converged, ShouldBeFalse)
				So(result.FinalStep, ShouldEqual, 1)
			})
		})
	})
}

func TestRunSingleTrial_LeakedGroupsEmptyOnNormalCompletion(t *testing.T) {
	Convey("Given a trial that converges normally", t, func() {
		config := baseConfig([]int{1, 2, 3})
		Convey("The group supervisor joins cleanly", func() {
			result, err := RunSingleTrial(context.Background(), config, 1)
			So(err, ShouldBeNil)
			So(result.LeakedGroups, ShouldBeEmpty)
		})
	})
}

// Scenario 6 from spec.md §8: a factory that panics while building the
// batch's second trial must cause runBatchExperiments to return an error
// and no results.
func TestRunBatchExperiments_FailFast(t *testing.T) {
	Convey("Given a factory that panics on the batch's second trial", t, func() {
		var trialCount int64
		config := baseConfig([]int{3, 2, 1})
		config.NumRepetitions = 5
		config.NumThreads = 2
		config.Factory = func(p int, _ *rand.Rand) int {
			if p == 0 {
				if atomic.AddInt64(&trialCount, 1) == 2 {
					panic("synthetic factory failure")
				}
			}
			return []int{3, 2, 1}[p]
		}

		Convey("When the batch runs", func() {
			results, err := RunBatchExperiments(context.Background(), config)

			Convey("It re-raises the original cause and returns no results", func() {
				So(err, ShouldNotBeNil)
				So(results, ShouldBeNil)
			})
		})
	})
}

func TestRunBatchExperiments_AggregatesConvergedTrials(t *testing.T) {
	Convey("Given a batch of trivially-sorted trials", t, func() {
		config := baseConfig([]int{1, 2, 3})
		config.NumRepetitions = 4
		config.NumThreads = 2

		Convey("When the batch runs", func() {
			results, err := RunBatchExperiments(context.Background(), config)

			Convey("Every trial converges and the batch reports full convergence", func() {
				So(err, ShouldBeNil)
				So(results.NumTrials, ShouldEqual, 4)
				So(results.ConvergenceRate, ShouldEqual, 1.0)
				So(results.MeanSortedness, ShouldEqual, 100.0)
				So(results.RunID, ShouldNotBeBlank)
			})
		})
	})
}

func TestRunBatchExperiments_RejectsNonPositiveRepetitions(t *testing.T) {
	Convey("Given a non-positive repetition count", t, func() {
		config := baseConfig([]int{1, 2, 3})
		config.NumRepetitions = 0

		Convey("The batch is rejected before any trial starts", func() {
			_, err := RunBatchExperiments(context.Background(), config)
			So(err, ShouldEqual, ErrInvalidRepetitions)
		})
	})
}

func TestConfig_ValidateRejectsMissingHooks(t *testing.T) {
	Convey("Given a config missing required hooks", t, func() {
		config := baseConfig([]int{1, 2, 3})
		config.Comparator = nil

		Convey("RunSingleTrial rejects it", func() {
			_, err := RunSingleTrial(context.Background(), config, 1)
			So(err, ShouldEqual, ErrNilComparator)
		})
	})
}
