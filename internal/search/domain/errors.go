package domain

import "errors"

var (
	// ErrLocationNotFound indicates that a slug or name resolved to no
	// active catalog entry.
	ErrLocationNotFound = errors.New("location not found")
	// ErrStoreUnavailable indicates a transient failure talking to the
	// listing or location store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInconsistentContainment indicates a neighborhood or estate whose
	// declared county matches no county-type location. Logged as a
	// data-quality problem, never surfaced to callers as a failure.
	ErrInconsistentContainment = errors.New("inconsistent containment: declared county has no catalog entry")
	// ErrInvalidCriteria indicates malformed search input.
	ErrInvalidCriteria = errors.New("invalid match criteria")
)
