// Package htmldata converts between HTML markup strings and view
// document fragments. It is the outermost layer of the data pipeline:
// markup in, view fragment out (and back), with the model conversion
// handled elsewhere.
//
// Parsing is tolerant, serialization is canonical: attribute keys,
// class names and style properties come out in sorted order, so equal
// view trees always render equal markup.
package htmldata
