// Package factorize is the remainder-cell factorization use case spec.md
// §1 singles out as "one instantiation of the cell contract": a cell's
// value is `target mod divisor`, where divisor is the cell's
// one-indexed position (p+1), so a divisor of target always lands on
// remainder zero and — once the array sorts increasing — clusters at the
// low-remainder end (spec.md §8 scenarios 4 and 5).
//
// Values are *big.Int rather than a machine int, matching spec.md §3's
// "integer, big integer, tuple" and covering scenario 5's target = 10^18.
package factorize

import (
	"math/big"
	"math/rand"

	"cellsort/engine"
	"cellsort/runner"
)

// Compare orders two remainder-cell values by the standard big.Int total
// order.
func Compare(a, b *big.Int) int { return a.Cmp(b) }

// CellFactory returns the runner.CellFactory computing target mod (p+1)
// for every position p in [0, arraySize).
func CellFactory(target *big.Int) runner.CellFactory[*big.Int] {
	return func(p int, _ *rand.Rand) *big.Int {
		divisor := big.NewInt(int64(p + 1))
		return new(big.Int).Mod(target, divisor)
	}
}

// AllBubble is the runner.AlgotypeProvider for a homogeneous BUBBLE
// population, the algotype spec.md §8 scenarios 4/5 implicitly assume.
func AllBubble(_, _ int) engine.Algotype { return engine.Bubble }

// NewConfig builds a runner.Config wired for the factorization use case:
// BUBBLE, INCREASING, the CLI surface's documented defaults (spec.md §6)
// unless overridden by the caller after construction.
func NewConfig(target *big.Int, arraySize, numRepetitions, numThreads int) runner.Config[*big.Int] {
	return runner.Config[*big.Int]{
		ArraySize:      arraySize,
		MaxSteps:       defaultMaxSteps,
		ConvergenceK:   defaultConvergenceK,
		ExecutionMode:  engine.Sequential,
		NumRepetitions: numRepetitions,
		NumThreads:     numThreads,
		Direction:      engine.Increasing,
		Comparator:     Compare,
		Factory:        CellFactory(target),
		AlgotypeOf:     AllBubble,
	}
}

const (
	defaultMaxSteps     = 10000
	defaultConvergenceK = 3
	// defaultArraySize is the CLI surface's documented default (spec.md §6).
	defaultArraySize = 1000
	// defaultNumTrials is the CLI surface's documented default trial count
	// ("factorize <target>" runs 30 trials).
	defaultNumTrials = 30
)

// DefaultArraySize and DefaultNumTrials expose the CLI surface's documented
// defaults (spec.md §6) to callers building their own Config.
func DefaultArraySize() int { return defaultArraySize }
func DefaultNumTrials() int { return defaultNumTrials }

// DivisorPositions returns the zero-indexed positions in values whose
// one-indexed position (p+1) divides target evenly — the positions
// spec.md §8 scenarios 4/5 expect clustered at the array's low-remainder
// end once sorted. This reads the *recorded* cell values (which never
// change identity across swaps), not a fresh mod computation, so it
// reflects where a divisor's cell currently sits.
func DivisorPositions(values []*big.Int) []int {
	var out []int
	for i, v := range values {
		if v.Sign() == 0 {
			out = append(out, i)
		}
	}
	return out
}

// GenerateSemiprimeNear returns the product of the first two primes at or
// above isqrt(limit), giving a semiprime close to limit — the CLI surface's
// zero-argument default ("generate a semiprime near 1e5").
func GenerateSemiprimeNear(limit int64) *big.Int {
	root := big.NewInt(int64(isqrt(uint64(limit))))
	p := nextPrime(new(big.Int).Set(root))
	q := nextPrime(new(big.Int).Add(p, big.NewInt(1)))
	return new(big.Int).Mul(p, q)
}

func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

func nextPrime(from *big.Int) *big.Int {
	n := new(big.Int).Set(from)
	if n.Cmp(big.NewInt(2)) < 0 {
		n.SetInt64(2)
	}
	for !n.ProbablyPrime(20) {
		n.Add(n, big.NewInt(1))
	}
	return n
}
