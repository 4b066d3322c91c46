package engine

// ProposeSwap is the swap protocol (spec.md §4.3): cell i proposes
// exchanging positions with cell j. It returns whether the exchange
// happened.
//
// Contract, in order:
//  1. If the target is MOVING, INACTIVE, SLEEP, or MERGE, decline silently
//     (no swap, no counters).
//  2. If the proposer is FREEZE, decline and count a frozen-swap attempt.
//     A FREEZE cell never initiates, but — per step 1 — may still be a
//     target, since FREEZE is not in the target-decline list.
//  3. Acquire the position-pair lock in canonical order min(i,j) then
//     max(i,j), so two cells proposing symmetrically never deadlock.
//  4. Re-check the values under lock; if they still violate the proposer's
//     direction, exchange; otherwise abort (the value changed between the
//     decision and the commit — a "swap race", counted as compare-only).
//  5. On success, exchange the two cells, invalidate every cached
//     ideal-position tracker whose search window could reach either
//     position (any position p <= max(i,j), since FindExtremum(p) scans
//     [p, n)), and increment the probe's total-swap counter. The
//     compare-and-swap counter increments on every attempt that reaches
//     step 4, win or lose.
//
// Boundary and group assignments of the moved cells are never touched here:
// boundaries track ranges, not cell identities (spec.md §4.3).
func (a *Array[V]) ProposeSwap(i, j int) bool {
	targetStatus := a.meta.Status(j)
	if declinesAsTarget(targetStatus) {
		return false
	}

	proposerStatus := a.meta.Status(i)
	if proposerStatus == StatusFreeze {
		a.probe.CountFrozenSwapAttempt()
		return false
	}
	if declinesAsTarget(proposerStatus) {
		return false
	}

	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	a.pairLocks[lo].Lock()
	defer a.pairLocks[lo].Unlock()
	if hi != lo {
		a.pairLocks[hi].Lock()
		defer a.pairLocks[hi].Unlock()
	}

	a.cellsMu.Lock()
	defer a.cellsMu.Unlock()

	a.probe.RecordCompareAndSwap()

	// Re-check in position order (lo, hi), not proposer/target order: the
	// proposer may be on either side of its target (e.g. BUBBLE proposes
	// leftward), but "violates the direction" is always a statement about
	// left-to-right order.
	direction := a.meta.Direction(i)
	cmp := a.cmp(a.cells[lo].Value(), a.cells[hi].Value())
	if !direction.Violates(cmp) {
		// The value changed between proposal and commit; abort.
		return false
	}

	a.cells[i], a.cells[j] = a.cells[j], a.cells[i]
	// Any position whose extremum search window [p, n) reaches max(i,j) may
	// have cached a now-stale ideal (either i or j's value just changed, or
	// the cached target itself was one of the exchanged positions).
	a.meta.InvalidateIdealPositionsThrough(hi)
	a.probe.RecordSwap()
	return true
}

func declinesAsTarget(s Status) bool {
	switch s {
	case StatusMoving, StatusInactive, StatusSleep, StatusMerge:
		return true
	default:
		return false
	}
}

// FindExtremum implements the SELECTION algotype's ideal-position search:
// the minimum (INCREASING) or maximum (DECREASING) value among positions
// [p, n), used once per step. The result is cached in the metadata table so
// repeated lookups across steps are cheap; ProposeSwap invalidates every
// cached entry whose search window could have reached either exchanged
// position.
func (a *Array[V]) FindExtremum(p int, direction Direction) int {
	if cached := a.meta.IdealPosition(p); cached >= p && cached < a.Len() {
		return cached
	}
	a.cellsMu.RLock()
	// SetIdealPosition runs before RUnlock, not after: ProposeSwap needs
	// cellsMu's write side to exchange cells and invalidate the cache, so
	// writing the cache entry while still inside the read lock guarantees no
	// swap can land between "scan finished" and "cache written" and have its
	// invalidation clobbered by this now-stale result.
	best := p
	for k := p + 1; k < len(a.cells); k++ {
		cmp := a.cmp(a.cells[k].Value(), a.cells[best].Value())
		if (direction == Increasing && cmp < 0) || (direction == Decreasing && cmp > 0) {
			best = k
		}
	}
	a.meta.SetIdealPosition(p, best)
	a.cellsMu.RUnlock()
	return best
}
