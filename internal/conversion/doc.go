// Package conversion implements the bidirectional conversion pipeline
// between the model and view trees: the upcast dispatcher (view to
// model), the downcast dispatcher (model change notifications to view
// mutations), the mapper maintaining element and position correspondence
// between the trees, and the declarative converter builders.
//
// Converters are named, priority-tagged handler records attached to a
// dispatcher's per-event registry. For each converted item the
// dispatcher fires the specific event key (e.g. "element:p",
// "insert:paragraph") merged with the generic one ("element", "insert"),
// invoking the chain in ascending priority order with registration order
// as the tie-break. A converter stops the remaining chain explicitly via
// EventInfo.Stop; there is no implicit bubbling.
//
// Conversion is synchronous. A converter runs to completion before the
// next event of the same pass fires, and starting a fresh top-level pass
// from inside a converter is rejected with ErrConversionActive.
package conversion
