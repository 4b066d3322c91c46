package group

import (
	"context"
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"cellsort/engine"
)

// Supervisor runs the group control loop described in spec.md §4.5 for
// every live group in a Table, dispatching each tick's lifecycle check onto
// a bounded worker pool instead of spawning one goroutine per group.
type Supervisor[V any] struct {
	Array        *engine.Array[V]
	Groups       *Table
	NumWorkers   int
	TickInterval time.Duration

	mu     sync.Mutex
	leaked []int64
}

// NewSupervisor builds a supervisor. tickInterval defaults to 50ms — the
// "conceptual" yield period spec.md §4.5/§5 describes for a group's
// lifecycle checks — when zero is passed.
func NewSupervisor[V any](array *engine.Array[V], groups *Table, numWorkers int, tickInterval time.Duration) *Supervisor[V] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}
	return &Supervisor[V]{Array: array, Groups: groups, NumWorkers: numWorkers, TickInterval: tickInterval}
}

// Run drives the supervisor until ctx is cancelled or every group is
// MERGED. A group whose member cells are all INACTIVE is left unchanged by
// tick but still counts as live, so it keeps being dispatched and keeps Run
// going. Run returns once all dispatched work has drained; group ids still
// live when ctx is cancelled are reported as leaked (spec.md §7 "Thread
// leak").
func (s *Supervisor[V]) Run(ctx context.Context) (leaked []int64) {
	jobs := make(chan int64)
	var wg sync.WaitGroup
	for w := 0; w < s.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				s.tick(id)
			}
		}()
	}

	ticks := channerics.NewTicker(ctx.Done(), s.TickInterval)
dispatchLoop:
	for range ticks {
		live := s.Groups.Live()
		if len(live) == 0 {
			break
		}
		for _, id := range live {
			select {
			case jobs <- id:
			case <-ctx.Done():
				break dispatchLoop
			}
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		return s.Groups.Live()
	}
	return nil
}

// tick runs one lifecycle check for group id: attempt a merge if eligible,
// otherwise count down toward the next ACTIVE/SLEEP phase flip.
func (s *Supervisor[V]) tick(id int64) {
	g := s.Groups.Get(id)
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status == Merged {
		return
	}

	if s.allMembersInactive(g) {
		return // no merge and no phase flip for a group with no active member
	}

	if g.Status == Active {
		if next := s.findNextGroup(g); next != nil {
			// next's own lock guards its Status/Left/Right for the whole
			// check-and-merge: reading next.Status here and then merging
			// below without holding next.mu would race a concurrent
			// tick(next.ID) flipping its status or extending its range.
			next.mu.Lock()
			eligible := next.Status == Active && s.isSorted(g) && s.isSorted(next)
			if eligible {
				s.merge(g, next)
			}
			next.mu.Unlock()
			if eligible {
				return
			}
		}
	}

	g.Countdown--
	if g.Countdown > 0 {
		return
	}

	switch g.Status {
	case Active:
		s.sleepCells(g)
		g.Status = Sleep
	case Sleep:
		s.wakeCells(g)
		g.Status = Active
	}
	g.Countdown = g.PhasePeriod
}

// isSorted walks [g.Left, g.Right]: false if any member is SLEEP or MOVING,
// or the sequence violates the group's direction. FREEZE cells participate
// in the order comparison (spec.md §4.5).
func (s *Supervisor[V]) isSorted(g *Group) bool {
	meta := s.Array.Metadata()
	for p := g.Left; p <= g.Right; p++ {
		if st := meta.Status(p); st == engine.StatusSleep || st == engine.StatusMoving {
			return false
		}
		if p == g.Right {
			break
		}
		direction := meta.Direction(p)
		if direction.Violates(s.Array.Compare(p, p+1)) {
			return false
		}
	}
	return true
}

// findNextGroup returns the group owning position g.Right+1, or nil if
// g.Right is the array's last position.
func (s *Supervisor[V]) findNextGroup(g *Group) *Group {
	if g.Right >= s.Array.Len()-1 {
		return nil
	}
	id := s.Array.Metadata().GroupID(g.Right + 1)
	if id < 0 {
		return nil
	}
	return s.Groups.Get(id)
}

// merge absorbs h into g under the array-wide lock: h becomes MERGED, g's
// countdown/phase period take the minimum of the two, g's right boundary
// extends to h's, every absorbed cell is reassigned to g with updated
// boundaries, and the INSERTION chain rule is applied to the new range
// (spec.md §4.5). Callers must already hold both g.mu and h.mu.
func (s *Supervisor[V]) merge(g, h *Group) {
	meta := s.Array.Metadata()
	meta.ArrayLock.Lock()
	defer meta.ArrayLock.Unlock()

	h.Status = Merged
	if h.Countdown < g.Countdown {
		g.Countdown = h.Countdown
	}
	if h.PhasePeriod < g.PhasePeriod {
		g.PhasePeriod = h.PhasePeriod
	}
	g.Right = h.Right

	for p := g.Left; p <= g.Right; p++ {
		meta.SetGroupID(p, g.ID)
		meta.SetBoundaries(p, g.Left, g.Right)
	}
	applyInsertionChainRule(meta, g.Left, g.Right)
}

// applyInsertionChainRule leaves only the leftmost INSERTION member of
// [left,right] able to initiate swaps; every other INSERTION member is set
// to FREEZE so it can still be a swap target (the leftmost cell "dragging"
// it leftward) without itself proposing (spec.md §4.5).
func applyInsertionChainRule(meta *engine.Metadata, left, right int) {
	leader := -1
	for p := left; p <= right; p++ {
		if meta.Algotype(p) != engine.Insertion {
			continue
		}
		if leader < 0 {
			leader = p
			continue
		}
		if meta.Status(p) != engine.StatusInactive && meta.Status(p) != engine.StatusMoving {
			meta.SetStatus(p, engine.StatusFreeze)
		}
	}
}

// sleepCells saves and parks every member cell's status, skipping MOVING
// and INACTIVE cells.
func (s *Supervisor[V]) sleepCells(g *Group) {
	meta := s.Array.Metadata()
	for p := g.Left; p <= g.Right; p++ {
		st := meta.Status(p)
		if st == engine.StatusMoving || st == engine.StatusInactive {
			continue
		}
		meta.SaveStatus(p, engine.StatusSleep)
	}
}

// wakeCells restores every member cell's saved status, skipping MOVING and
// INACTIVE cells.
func (s *Supervisor[V]) wakeCells(g *Group) {
	meta := s.Array.Metadata()
	for p := g.Left; p <= g.Right; p++ {
		st := meta.Status(p)
		if st == engine.StatusMoving || st == engine.StatusInactive {
			continue
		}
		meta.RestoreStatus(p)
	}
}

func (s *Supervisor[V]) allMembersInactive(g *Group) bool {
	meta := s.Array.Metadata()
	for p := g.Left; p <= g.Right; p++ {
		if meta.Status(p) != engine.StatusInactive {
			return false
		}
	}
	return true
}
