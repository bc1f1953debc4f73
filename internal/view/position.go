package view

import "fmt"

// Item is the closed set of things a Position can point into: *Element,
// *DocumentFragment and *Text.
type Item interface {
	viewItem()
}

func (*Element) viewItem()          {}
func (*Text) viewItem()             {}
func (*DocumentFragment) viewItem() {}

// Position addresses a point in a view tree. Inside an element or
// fragment the offset is a child index; inside a text node it is a
// character offset.
type Position struct {
	Parent Item
	Offset int
}

// NewPosition creates a position.
func NewPosition(parent Item, offset int) Position {
	return Position{Parent: parent, Offset: offset}
}

// PositionBefore returns the boundary position directly before the node.
func PositionBefore(n Node) Position {
	return Position{Parent: n.Parent().(Item), Offset: n.Index()}
}

// PositionAfter returns the boundary position directly after the node.
func PositionAfter(n Node) Position {
	return Position{Parent: n.Parent().(Item), Offset: n.Index() + 1}
}

// String returns a compact representation for debugging and tests.
func (p Position) String() string {
	return fmt.Sprintf("viewpos(%d)", p.Offset)
}

// Container returns the container the position points into and true, or
// nil and false when the position is inside a text node.
func (p Position) Container() (Container, bool) {
	c, ok := p.Parent.(Container)
	return c, ok
}

// TextParent returns the text node the position points into and true, or
// nil and false when the position is a container boundary.
func (p Position) TextParent() (*Text, bool) {
	t, ok := p.Parent.(*Text)
	return t, ok
}

// NodeAfter returns the node directly after a container position, or nil
// for text positions and end-of-container positions.
func (p Position) NodeAfter() Node {
	c, ok := p.Container()
	if !ok {
		return nil
	}
	return c.Child(p.Offset)
}

// NodeBefore returns the node directly before a container position, or
// nil for text positions and start-of-container positions.
func (p Position) NodeBefore() Node {
	c, ok := p.Container()
	if !ok {
		return nil
	}
	return c.Child(p.Offset - 1)
}

// IsValid reports whether the position addresses a real point.
func (p Position) IsValid() bool {
	switch t := p.Parent.(type) {
	case *Text:
		return p.Offset >= 0 && p.Offset <= t.Size()
	case Container:
		return p.Offset >= 0 && p.Offset <= t.ChildCount()
	default:
		return false
	}
}
