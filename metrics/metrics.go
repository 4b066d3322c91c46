// Package metrics implements the pure, stateless functions of a value
// sequence described in spec.md §4.7: sortedness, monotonicity (+error),
// Spearman distance, and algotype aggregation. None of these functions
// touch the engine, the probe, or a group — they are plain functions over
// a slice of values (or, for algotype aggregation, a slice of algotypes),
// in the spirit of the teacher lineage's small pure helpers
// (models/grid_world.go: Visit, Max_vel_state, ...).
package metrics

import (
	"sort"

	"cellsort/engine"
)

// Descriptor is a metric's name and whether lower values are "better"
// (closer to fully sorted).
type Descriptor struct {
	Name          string
	LowerIsBetter bool
}

var (
	SortednessDescriptor         = Descriptor{Name: "sortedness", LowerIsBetter: false}
	MonotonicityDescriptor       = Descriptor{Name: "monotonicity", LowerIsBetter: false}
	MonotonicityErrorDescriptor  = Descriptor{Name: "monotonicity_error", LowerIsBetter: true}
	SpearmanDistanceDescriptor   = Descriptor{Name: "spearman_distance", LowerIsBetter: true}
	AlgotypeAggregationDescriptor = Descriptor{Name: "algotype_aggregation", LowerIsBetter: false}
)

// sortedIndices returns the positions of values in sorted order for the
// given direction, breaking ties by first-seen (original) order — a stable
// sort achieves exactly that.
func sortedIndices[V any](values []V, cmp engine.Comparator[V], direction engine.Direction) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		c := cmp(values[idx[a]], values[idx[b]])
		if direction == engine.Decreasing {
			c = -c
		}
		return c < 0
	})
	return idx
}

// Sortedness returns the percentage (0-100) of positions whose value equals
// the value the fully-sorted sequence holds at that same index.
func Sortedness[V any](values []V, cmp engine.Comparator[V], direction engine.Direction) float64 {
	n := len(values)
	if n == 0 {
		return 100
	}
	order := sortedIndices(values, cmp, direction)
	sortedValues := make([]V, n)
	for i, srcIdx := range order {
		sortedValues[i] = values[srcIdx]
	}

	matches := 0
	for i := 0; i < n; i++ {
		if cmp(values[i], sortedValues[i]) == 0 {
			matches++
		}
	}
	return float64(matches) / float64(n) * 100
}

// Monotonicity returns the percentage (0-100) of adjacent pairs that
// respect the target direction.
func Monotonicity[V any](values []V, cmp engine.Comparator[V], direction engine.Direction) float64 {
	if len(values) < 2 {
		return 100
	}
	pairs := len(values) - 1
	ok := 0
	for i := 0; i < pairs; i++ {
		if !direction.Violates(cmp(values[i], values[i+1])) {
			ok++
		}
	}
	return float64(ok) / float64(pairs) * 100
}

// MonotonicityError counts adjacent-pair inversions (the complement of
// Monotonicity, as a raw count rather than a percentage).
func MonotonicityError[V any](values []V, cmp engine.Comparator[V], direction engine.Direction) int {
	errs := 0
	for i := 0; i+1 < len(values); i++ {
		if direction.Violates(cmp(values[i], values[i+1])) {
			errs++
		}
	}
	return errs
}

// SpearmanDistance returns Σ|actual_index - sorted_index| over all
// positions, ties broken by first-seen order.
func SpearmanDistance[V any](values []V, cmp engine.Comparator[V], direction engine.Direction) int {
	order := sortedIndices(values, cmp, direction)
	sortedIndexOf := make([]int, len(values))
	for sortedIdx, srcIdx := range order {
		sortedIndexOf[srcIdx] = sortedIdx
	}
	total := 0
	for actualIdx, sortedIdx := range sortedIndexOf {
		d := actualIdx - sortedIdx
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// AlgotypeAggregation returns the percentage (0-100) of adjacent positions
// sharing the same algotype, normalized so that a perfectly segregated
// population (every algotype forming one contiguous block) scores 100.
//
// This operates on a live algotype sequence, not a recorded StepSnapshot:
// spec.md §3's StepSnapshot only carries an optional algotype *histogram*
// (counts, no order), which is enough to report population mix but not
// adjacency — so this metric is computed from the array's metadata at a
// point in time (e.g. at convergence), not derived as a time-series the way
// the other four metrics are (see trajectory.Analyzer).
func AlgotypeAggregation(algotypes []engine.Algotype) float64 {
	n := len(algotypes)
	if n <= 1 {
		return 100
	}
	same := 0
	counts := make(map[engine.Algotype]int, 3)
	for i, a := range algotypes {
		counts[a]++
		if i > 0 && algotypes[i-1] == a {
			same++
		}
	}
	maxSame := n - len(counts)
	if maxSame <= 0 {
		return 100
	}
	return float64(same) / float64(maxSame) * 100
}
