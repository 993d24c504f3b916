package condenser

import "errors"

// Sentinel errors surfaced by the loaders and builders. Callers match on
// them with errors.Is.
var (
	// ErrNoIDs is returned when a loader requiring a non-empty id set is
	// called without ids.
	ErrNoIDs = errors.New("no ids passed")

	// ErrMalformedPayload is returned when a cache row's raw_json blob is
	// missing or too short to hold a legacy snapshot.
	ErrMalformedPayload = errors.New("malformed raw_json payload")

	// ErrNotFound is returned by storage implementations when a single
	// requested row does not exist.
	ErrNotFound = errors.New("not found")
)
