package model

import "fmt"

// Range is a pair of positions in one tree. Start is inclusive, End is
// exclusive, and Start <= End in document order for a valid range. A
// range may span multiple elements.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range from two positions.
func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

// RangeIn returns a range spanning the whole content of a container.
func RangeIn(c Container) Range {
	return Range{
		Start: Position{Parent: c, Offset: 0},
		End:   Position{Parent: c, Offset: c.MaxOffset()},
	}
}

// RangeOn returns a range covering exactly the given node.
func RangeOn(n Node) Range {
	return Range{Start: PositionBefore(n), End: PositionAfter(n)}
}

// String returns a compact representation for debugging and tests.
func (r Range) String() string {
	return fmt.Sprintf("range(%v..%v)", r.Start, r.End)
}

// IsCollapsed returns true when start and end address the same point.
func (r Range) IsCollapsed() bool {
	return r.Start.Parent == r.End.Parent && r.Start.Offset == r.End.Offset
}

// IsValid returns true when both positions are valid and ordered.
func (r Range) IsValid() bool {
	return r.Start.IsValid() && r.End.IsValid() && r.Start.Compare(r.End) <= 0
}

// IsFlat returns true when start and end share a parent.
func (r Range) IsFlat() bool {
	return r.Start.Parent == r.End.Parent
}

// ContainsPosition returns true when the position falls inside the range
// (start inclusive, end exclusive).
func (r Range) ContainsPosition(p Position) bool {
	return r.Start.Compare(p) <= 0 && p.Compare(r.End) < 0
}

// ContainsRange returns true when other lies entirely inside the range.
func (r Range) ContainsRange(other Range) bool {
	return r.Start.Compare(other.Start) <= 0 && other.End.Compare(r.End) <= 0
}

// Intersection returns the overlap of two flat ranges sharing a parent
// and true, or a zero Range and false when they do not overlap or do not
// share a parent.
func (r Range) Intersection(other Range) (Range, bool) {
	if !r.IsFlat() || !other.IsFlat() || r.Start.Parent != other.Start.Parent {
		return Range{}, false
	}
	start := r.Start.Offset
	if other.Start.Offset > start {
		start = other.Start.Offset
	}
	end := r.End.Offset
	if other.End.Offset < end {
		end = other.End.Offset
	}
	if start >= end {
		return Range{}, false
	}
	parent := r.Start.Parent
	return Range{
		Start: Position{Parent: parent, Offset: start},
		End:   Position{Parent: parent, Offset: end},
	}, true
}

// Nodes returns the top-level nodes fully or partially covered by a flat
// range, in document order. Partially covered text nodes are included
// whole; the caller is responsible for offset-level splitting.
func (r Range) Nodes() []Node {
	if !r.IsFlat() || r.IsCollapsed() {
		return nil
	}
	startIndex, _ := r.Start.ChildIndex()
	endIndex, endInner := r.End.ChildIndex()
	if endInner > 0 {
		endIndex++
	}
	var out []Node
	for i := startIndex; i < endIndex; i++ {
		if c := r.Start.Parent.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
