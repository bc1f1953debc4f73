package conversion

import "errors"

// Programming errors surfaced by the conversion layer. Conversion misses
// (a view or model item no converter claims) are not errors: the content
// is dropped silently.
var (
	// ErrConsistency is returned when re-binding an already-bound
	// model/view pair in the Mapper. Bindings are established exactly
	// once per converted element.
	ErrConsistency = errors.New("conversion: mapper consistency violation")

	// ErrNotMapped is returned when translating a position whose parent
	// chain contains no bound element.
	ErrNotMapped = errors.New("conversion: position has no mapped ancestor")

	// ErrConversionActive is returned when a top-level conversion is
	// started while another one is running on the same dispatcher.
	// Conversion is synchronous; re-entrant passes are a caller error.
	ErrConversionActive = errors.New("conversion: conversion pass already active")
)
