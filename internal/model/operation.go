package model

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType categorizes a model mutation.
type ChangeType uint8

const (
	// ChangeInsert reports nodes inserted into a container.
	ChangeInsert ChangeType = iota

	// ChangeRemove reports nodes removed from a container.
	ChangeRemove

	// ChangeAttribute reports an attribute set, changed or removed on a
	// node.
	ChangeAttribute

	// ChangeMarkerAdd reports a marker added to the document.
	ChangeMarkerAdd

	// ChangeMarkerRemove reports a marker removed from the document.
	ChangeMarkerRemove
)

// String returns the change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	case ChangeAttribute:
		return "attribute"
	case ChangeMarkerAdd:
		return "addMarker"
	case ChangeMarkerRemove:
		return "removeMarker"
	default:
		return "unknown"
	}
}

// Change is a single model mutation notification, the contract downcast
// conversion depends on. Which fields are set depends on Type:
//
//   - insert/remove: Parent, Offset, Length, Nodes
//   - attribute: Node, Key, Old, New, plus Parent, Offset and Length
//     locating the affected span at record time. Offsets stay valid
//     even after later text merges absorb the node.
//   - addMarker/removeMarker: MarkerName, MarkerRange
type Change struct {
	Type ChangeType

	// Parent and Offset locate a structural change; Length is the
	// offset-size of the affected content.
	Parent Container
	Offset int
	Length int

	// Nodes are the inserted or removed nodes in document order.
	Nodes []Node

	// Node, Key, Old and New describe an attribute change. Old is nil
	// when the attribute was added, New is nil when it was removed.
	Node Node
	Key  string
	Old  any
	New  any

	// MarkerName and MarkerRange describe a marker change.
	MarkerName  string
	MarkerRange Range
}

// Invert returns the change that would undo this one. Structural inverts
// reference the same node instances; replaying them is only valid
// directly after undoing later changes, which is what an undo stack does.
func (c Change) Invert() Change {
	switch c.Type {
	case ChangeInsert:
		return Change{Type: ChangeRemove, Parent: c.Parent, Offset: c.Offset, Length: c.Length, Nodes: c.Nodes}
	case ChangeRemove:
		return Change{Type: ChangeInsert, Parent: c.Parent, Offset: c.Offset, Length: c.Length, Nodes: c.Nodes}
	case ChangeAttribute:
		return Change{
			Type: ChangeAttribute, Node: c.Node,
			Parent: c.Parent, Offset: c.Offset, Length: c.Length,
			Key: c.Key, Old: c.New, New: c.Old,
		}
	case ChangeMarkerAdd:
		return Change{Type: ChangeMarkerRemove, MarkerName: c.MarkerName, MarkerRange: c.MarkerRange}
	case ChangeMarkerRemove:
		return Change{Type: ChangeMarkerAdd, MarkerName: c.MarkerName, MarkerRange: c.MarkerRange}
	default:
		return c
	}
}

// Operation is a recorded change with identity, the unit an undo history
// or a collaboration transport works with.
type Operation struct {
	// ID uniquely identifies the operation.
	ID string

	// BatchID groups operations applied as one undo step.
	BatchID string

	// Timestamp is when the operation was recorded.
	Timestamp time.Time

	// Change is the mutation the operation describes.
	Change Change
}

// Batch groups the operations of one change block.
type Batch struct {
	// ID uniquely identifies the batch.
	ID string

	// Name is the caller-supplied label, e.g. "set-data".
	Name string

	// Operations are the recorded operations in application order.
	Operations []Operation
}

func newBatch(name string) *Batch {
	return &Batch{ID: uuid.NewString(), Name: name}
}

func (b *Batch) record(c Change) Operation {
	op := Operation{
		ID:        uuid.NewString(),
		BatchID:   b.ID,
		Timestamp: time.Now(),
		Change:    c,
	}
	b.Operations = append(b.Operations, op)
	return op
}
