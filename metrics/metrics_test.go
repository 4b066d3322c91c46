package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cellsort/engine"
)

func cmp(a, b int) int { return a - b }

func TestSortedness(t *testing.T) {
	cases := []struct {
		name   string
		values []int
		want   float64
	}{
		{"fully sorted", []int{1, 2, 3, 4, 5}, 100},
		{"empty", []int{}, 100},
		{"single", []int{1}, 100},
		// The middle element of an odd-length reversal sits on its own
		// sorted index (5,4,3,2,1 reversed is 1,2,3,4,5; index 2 holds 3 in
		// both), so one position matches: 1/5 = 20%, not a full mismatch.
		{"reversed", []int{5, 4, 3, 2, 1}, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Sortedness(c.values, cmp, engine.Increasing))
		})
	}
}

func TestMonotonicityAndError(t *testing.T) {
	values := []int{1, 3, 2, 4}
	assert.Equal(t, 1, MonotonicityError(values, cmp, engine.Increasing))
	assert.InDelta(t, float64(2)/3*100, Monotonicity(values, cmp, engine.Increasing), 1e-9)
}

// Scenario 2 from spec.md §8: reverse input, Spearman distance at step 0
// equals 12, monotonicity error at step 0 equals 4.
func TestSpearmanDistance_ReverseFive(t *testing.T) {
	values := []int{5, 4, 3, 2, 1}
	assert.Equal(t, 12, SpearmanDistance(values, cmp, engine.Increasing))
	assert.Equal(t, 4, MonotonicityError(values, cmp, engine.Increasing))
}

func TestSpearmanDistance_TiesBreakByFirstSeenOrder(t *testing.T) {
	values := []int{2, 2, 1}
	// Stable sort puts the tied 2's in their original relative order after
	// the 1: sorted = [1, 2(idx0), 2(idx1)] -> sortedIndexOf = {idx0:1,
	// idx1:2, idx2:0}. |actual-sorted|: |0-1|+|1-2|+|2-0| = 1+1+2 = 4.
	assert.Equal(t, 4, SpearmanDistance(values, cmp, engine.Increasing))
}

// L2: Sortedness=100% iff Monotonicity=100% iff MonotonicityError=0 iff
// SpearmanDistance=0.
func TestL2_EquivalenceAtFullySorted(t *testing.T) {
	values := []int{1, 2, 3, 4, 5, 6}
	assert.Equal(t, 100.0, Sortedness(values, cmp, engine.Increasing))
	assert.Equal(t, 100.0, Monotonicity(values, cmp, engine.Increasing))
	assert.Equal(t, 0, MonotonicityError(values, cmp, engine.Increasing))
	assert.Equal(t, 0, SpearmanDistance(values, cmp, engine.Increasing))
}

func TestL2_EquivalenceWhenUnsorted(t *testing.T) {
	values := []int{2, 1, 3, 4}
	sortedness := Sortedness(values, cmp, engine.Increasing)
	monotonicity := Monotonicity(values, cmp, engine.Increasing)
	monoErr := MonotonicityError(values, cmp, engine.Increasing)
	spearman := SpearmanDistance(values, cmp, engine.Increasing)

	assert.NotEqual(t, 100.0, sortedness)
	assert.NotEqual(t, 100.0, monotonicity)
	assert.NotZero(t, monoErr)
	assert.NotZero(t, spearman)
}

func TestAlgotypeAggregation(t *testing.T) {
	cases := []struct {
		name string
		in   []engine.Algotype
		want float64
	}{
		{"single element", []engine.Algotype{engine.Bubble}, 100},
		{"all same", []engine.Algotype{engine.Bubble, engine.Bubble, engine.Bubble}, 100},
		{"perfectly segregated blocks", []engine.Algotype{engine.Bubble, engine.Bubble, engine.Insertion, engine.Insertion}, 100},
		{"fully interleaved, two types", []engine.Algotype{engine.Bubble, engine.Insertion, engine.Bubble, engine.Insertion}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, AlgotypeAggregation(c.in))
		})
	}
}

func TestDirectionDecreasing(t *testing.T) {
	values := []int{5, 4, 3, 2, 1}
	assert.Equal(t, 100.0, Sortedness(values, cmp, engine.Decreasing))
	assert.Equal(t, 0, MonotonicityError(values, cmp, engine.Decreasing))
}
