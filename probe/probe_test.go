package probe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSnapshot_Disabled(t *testing.T) {
	p := New[int](false)
	p.RecordSnapshot(0, []int{1, 2, 3}, 0)
	assert.Equal(t, 0, p.Len())
}

func TestRecordSnapshot_DefensiveCopy(t *testing.T) {
	p := New[int](true)
	values := []int{1, 2, 3}
	p.RecordSnapshot(0, values, 2)
	values[0] = 999

	snaps := p.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, []int{1, 2, 3}, snaps[0].Values)
	assert.Equal(t, 2, snaps[0].SwapCount)
	assert.Equal(t, 0, snaps[0].StepNumber)
}

func TestRecordSnapshotWithTypes(t *testing.T) {
	p := New[int](true)
	hist := map[string]int{"BUBBLE": 2}
	p.RecordSnapshotWithTypes(1, []int{4, 5}, 1, hist)
	hist["BUBBLE"] = 99

	snap, ok := p.SnapshotAt(1)
	require.True(t, ok)
	assert.Equal(t, 2, snap.AlgotypeHistogram["BUBBLE"])
}

func TestCounters_ThreadSafe(t *testing.T) {
	p := New[int](true)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.RecordCompareAndSwap()
			p.CountFrozenSwapAttempt()
			p.RecordSwap()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), p.CompareAndSwapAttempts())
	assert.Equal(t, int64(50), p.FrozenSwapAttempts())
	assert.Equal(t, int64(50), p.TotalSwaps())
}

func TestClearAndResetCounters(t *testing.T) {
	p := New[int](true)
	p.RecordSnapshot(0, []int{1}, 0)
	p.RecordCompareAndSwap()

	p.ResetCounters()
	assert.Equal(t, int64(0), p.CompareAndSwapAttempts())
	assert.Equal(t, 1, p.Len(), "resetCounters must preserve history")

	p.Clear()
	assert.Equal(t, 0, p.Len())
}

func TestSnapshotOrdering(t *testing.T) {
	p := New[int](true)
	for i := 0; i < 5; i++ {
		p.RecordSnapshot(i, []int{i}, 0)
	}
	snaps := p.Snapshots()
	for i := 1; i < len(snaps); i++ {
		assert.Less(t, snaps[i-1].StepNumber, snaps[i].StepNumber)
		assert.False(t, snaps[i].Timestamp.Before(snaps[i-1].Timestamp))
	}
}
