// Package datacontroller wires the data pipeline together: one model
// document, an HTML data processor, an upcast dispatcher for loading
// markup and a downcast dispatcher for rendering it back. The
// controller owns the mapper both dispatchers share.
package datacontroller
