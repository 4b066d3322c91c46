package runner

import "errors"

// Sentinel errors, matching spec.md §7's "Configuration error" kind.
var (
	ErrNilComparator       = errors.New("runner: comparator must not be nil")
	ErrNilAlgotypeProvider = errors.New("runner: algotype provider must not be nil")
	ErrInvalidMaxSteps     = errors.New("runner: maxSteps must be positive")
	ErrInvalidRepetitions  = errors.New("runner: numRepetitions must be positive")
)
