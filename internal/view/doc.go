// Package view implements the rendering-facing document tree of the
// conversion core. The view tree mirrors the eventual output markup
// structure: elements carry attribute, class and style collections plus
// non-serializable custom properties, text nodes carry plain character
// runs.
//
// Positions follow markup addressing: an offset inside an element or
// fragment is a child index, an offset inside a text node is a character
// index.
//
// As on the model side, all structural mutation goes through a Writer;
// the mutating methods on the node types are unexported.
package view
