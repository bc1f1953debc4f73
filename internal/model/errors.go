package model

import "errors"

// Programming errors surfaced by the model layer. Callers are expected
// not to catch these in normal operation; they indicate invalid use, not
// recoverable conditions. Operating on detached nodes or removing absent
// attributes is never an error, only a defined no-op.
var (
	// ErrInvalidInsertion is returned when a node cannot be inserted at
	// the requested place: the target is not a valid container for it,
	// the index is out of range, the node is already attached elsewhere,
	// or the schema rejects the combination.
	ErrInvalidInsertion = errors.New("model: invalid insertion")

	// ErrMarkerExists is returned when adding a marker under a name that
	// is already taken.
	ErrMarkerExists = errors.New("model: marker already exists")

	// ErrRootExists is returned when creating a root under a name that
	// is already taken.
	ErrRootExists = errors.New("model: root already exists")

	// ErrNoRoot is returned when addressing a root name the document
	// does not have.
	ErrNoRoot = errors.New("model: no such root")

	// ErrChangeActive is returned when a change block is opened while
	// another one is still running on the same document. Model mutation
	// is synchronous and never nested.
	ErrChangeActive = errors.New("model: change block already active")
)
