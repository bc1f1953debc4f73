package model

import "fmt"

// Position addresses a point in a model tree as a (parent, offset) pair.
// The offset is character-granular: text runs contribute one offset per
// character, child elements contribute one each.
type Position struct {
	// Parent is the container the position points into.
	Parent Container

	// Offset is the position's offset inside Parent, in the range
	// [0, Parent.MaxOffset()].
	Offset int
}

// NewPosition creates a position. The offset is not validated here;
// IsValid reports whether the position addresses a real point.
func NewPosition(parent Container, offset int) Position {
	return Position{Parent: parent, Offset: offset}
}

// PositionBefore returns the position directly before the node.
func PositionBefore(n Node) Position {
	return Position{Parent: n.Parent(), Offset: n.StartOffset()}
}

// PositionAfter returns the position directly after the node.
func PositionAfter(n Node) Position {
	return Position{Parent: n.Parent(), Offset: n.StartOffset() + n.OffsetSize()}
}

// IsValid returns true when the position addresses a point inside its
// parent's offset space.
func (p Position) IsValid() bool {
	return p.Parent != nil && p.Offset >= 0 && p.Offset <= p.Parent.MaxOffset()
}

// String returns a compact representation for debugging and tests.
func (p Position) String() string {
	return fmt.Sprintf("pos(%d)", p.Offset)
}

// ChildIndex resolves the offset to a (child index, inner offset) pair.
// innerOffset is zero when the position falls on a node boundary and the
// character offset into a text node otherwise. When the position is at
// the very end of the parent, index equals ChildCount.
func (p Position) ChildIndex() (index, innerOffset int) {
	remaining := p.Offset
	children := p.Parent.Children()
	for i, c := range children {
		size := c.OffsetSize()
		if remaining == 0 {
			return i, 0
		}
		if remaining < size {
			return i, remaining
		}
		remaining -= size
	}
	return len(children), 0
}

// NodeAfter returns the node starting exactly at the position, or nil
// when the position is inside a text run or at the parent's end.
func (p Position) NodeAfter() Node {
	index, inner := p.ChildIndex()
	if inner != 0 || index >= p.Parent.ChildCount() {
		return nil
	}
	return p.Parent.Child(index)
}

// NodeBefore returns the node ending exactly at the position, or nil
// when the position is inside a text run or at the parent's start.
func (p Position) NodeBefore() Node {
	if p.Offset == 0 {
		return nil
	}
	index, inner := p.ChildIndex()
	if inner != 0 {
		return nil
	}
	return p.Parent.Child(index - 1)
}

// TextNode returns the text node the position falls inside together with
// the character offset into it, or (nil, 0) when the position sits on a
// node boundary.
func (p Position) TextNode() (*Text, int) {
	index, inner := p.ChildIndex()
	if inner == 0 {
		return nil, 0
	}
	t, ok := p.Parent.Child(index).(*Text)
	if !ok {
		return nil, 0
	}
	return t, inner
}

// Path returns the position's offsets from the root down: the start
// offsets of the ancestor chain followed by the position's own offset.
func (p Position) Path() []int {
	var path []int
	c := p.Parent
	for {
		n, ok := c.(Node)
		if !ok || n.Parent() == nil {
			break
		}
		path = append(path, n.StartOffset())
		c = n.Parent()
	}
	// The walk collected offsets bottom-up.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return append(path, p.Offset)
}

// RootContainer returns the root of the tree the position points into.
func (p Position) RootContainer() Container {
	c := p.Parent
	for {
		n, ok := c.(Node)
		if !ok || n.Parent() == nil {
			return c
		}
		c = n.Parent()
	}
}

// Compare returns -1, 0 or 1 for document order between two positions in
// the same tree. Comparing positions from different trees is a caller
// error; the result is then based on paths alone.
func (p Position) Compare(other Position) int {
	a, b := p.Path(), other.Path()
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Before returns true if p comes before other in document order.
func (p Position) Before(other Position) bool { return p.Compare(other) < 0 }

// After returns true if p comes after other in document order.
func (p Position) After(other Position) bool { return p.Compare(other) > 0 }

// shifted returns a copy with the offset moved by delta.
func (p Position) shifted(delta int) Position {
	return Position{Parent: p.Parent, Offset: p.Offset + delta}
}
