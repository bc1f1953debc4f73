// Package model implements the abstract document tree of the conversion
// core: the semantic representation of a rich-text document, decoupled
// from any rendering markup.
//
// The model package provides:
//
//   - Element, Text and DocumentFragment node types with exclusive child
//     ownership and non-owning parent back-references
//   - Position and Range value types with character-granular offsets
//   - A Document holding named roots, markers and the operation log
//   - A Writer that is the only component permitted to mutate a tree
//
// Offsets:
//
// A model offset counts characters through text runs, not child indexes.
// A Text node of three characters occupies three offsets in its parent
// while a child Element always occupies one. Child-index based access is
// available separately (Child, InsertChild) where block-level edits need
// it.
//
// Mutation:
//
// All structural mutation goes through a Writer. Direct child-list
// manipulation by any other component is forbidden; the mutating methods
// on Element and DocumentFragment are unexported to enforce this. Writer
// operations append invertible Operation descriptors to the owning
// Document, the hook undo and collaborative editing build on.
package model
