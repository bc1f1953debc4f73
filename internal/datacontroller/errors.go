package datacontroller

import "errors"

var (
	// ErrDocumentAlreadyInitialized is returned by Init when the document
	// already carries content or recorded changes.
	ErrDocumentAlreadyInitialized = errors.New("datacontroller: document already initialized")

	// ErrNoRoot is returned when the named root does not exist.
	ErrNoRoot = errors.New("datacontroller: no such root")
)
