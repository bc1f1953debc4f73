package view

import "errors"

// Programming errors surfaced by the view layer. As on the model side,
// operating on detached nodes or removing absent classes, styles and
// attributes is never an error, only a defined no-op.
var (
	// ErrInvalidInsertion is returned when a node cannot be inserted at
	// the requested place: out-of-range index, nil target or a node that
	// is already attached elsewhere.
	ErrInvalidInsertion = errors.New("view: invalid insertion")

	// ErrInvalidRange is returned when a wrap or removal addresses a
	// child span that does not exist in the target container.
	ErrInvalidRange = errors.New("view: invalid child range")
)
