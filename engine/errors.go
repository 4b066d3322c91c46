package engine

import "errors"

// Sentinel errors, matching the taxonomy spec.md §7 assigns to the core.
var (
	// ErrUnknownAlgotype is a configuration error: an algotype name did not
	// match BUBBLE, INSERTION, or SELECTION.
	ErrUnknownAlgotype = errors.New("engine: unknown algotype")
	// ErrTopologyMismatch is raised when a per-algotype topology receives a
	// cell of the wrong algotype.
	ErrTopologyMismatch = errors.New("engine: topology received a cell of the wrong algotype")
	// ErrInvalidArraySize is a configuration error: arraySize <= 0.
	ErrInvalidArraySize = errors.New("engine: array size must be positive")
	// ErrNilFactory is a configuration error: a nil CellFactory was supplied.
	ErrNilFactory = errors.New("engine: cell factory must not be nil")
	// ErrGroupInvariantViolation is fatal to a trial: a merge would create an
	// overlap, or a cell's position escaped its group's boundaries.
	ErrGroupInvariantViolation = errors.New("engine: group invariant violation")
)
