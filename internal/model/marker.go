package model

// Marker is a named, persistent range reference in the model. It is
// independent of the position values that created it and survives
// document mutation: the writer adjusts marker boundaries whenever
// content is inserted or removed around them.
type Marker struct {
	name  string
	start Position
	end   Position
}

// Name returns the marker name.
func (m *Marker) Name() string { return m.name }

// Range returns the marker's current range.
func (m *Marker) Range() Range {
	return Range{Start: m.start, End: m.end}
}

// markerSet holds the live markers of a document.
type markerSet struct {
	markers map[string]*Marker
}

func newMarkerSet() *markerSet {
	return &markerSet{markers: make(map[string]*Marker)}
}

func (s *markerSet) get(name string) (*Marker, bool) {
	m, ok := s.markers[name]
	return m, ok
}

func (s *markerSet) add(name string, r Range) *Marker {
	m := &Marker{name: name, start: r.Start, end: r.End}
	s.markers[name] = m
	return m
}

func (s *markerSet) remove(name string) (*Marker, bool) {
	m, ok := s.markers[name]
	if ok {
		delete(s.markers, name)
	}
	return m, ok
}

func (s *markerSet) all() []*Marker {
	out := make([]*Marker, 0, len(s.markers))
	for _, m := range s.markers {
		out = append(out, m)
	}
	return out
}

// adjust updates marker boundaries for a structural change. Positions in
// other containers are untouched: a (parent, offset) pair is relative to
// its parent, so only same-parent edits can move it.
func (s *markerSet) adjust(c Change) {
	for _, m := range s.markers {
		m.start = adjustPosition(m.start, c, false)
		m.end = adjustPosition(m.end, c, true)
	}
}

// adjustPosition maps a position through an insert or remove change.
// isEnd controls boundary behavior: an insert exactly at a range end
// stays outside the range.
func adjustPosition(p Position, c Change, isEnd bool) Position {
	if p.Parent != c.Parent {
		return p
	}
	switch c.Type {
	case ChangeInsert:
		if p.Offset < c.Offset {
			return p
		}
		if p.Offset == c.Offset && isEnd {
			return p
		}
		return p.shifted(c.Length)
	case ChangeRemove:
		switch {
		case p.Offset <= c.Offset:
			return p
		case p.Offset >= c.Offset+c.Length:
			return p.shifted(-c.Length)
		default:
			// Inside the removed span: collapse to its start.
			return Position{Parent: p.Parent, Offset: c.Offset}
		}
	default:
		return p
	}
}

// markersIntersecting returns markers whose range shares a parent with
// the changed container and overlaps the changed span. Used by downcast
// conversion to refresh highlight boundaries.
func (s *markerSet) intersecting(parent Container, offset, length int) []*Marker {
	var out []*Marker
	for _, m := range s.markers {
		r := m.Range()
		if !r.IsFlat() || r.Start.Parent != parent {
			// Also match markers on an ancestor level: an edit inside an
			// element covered by the marker changes highlight content.
			if r.IsFlat() && containerInside(parent, r) {
				out = append(out, m)
			}
			continue
		}
		if r.End.Offset > offset && r.Start.Offset < offset+length {
			out = append(out, m)
		}
	}
	return out
}

// containerInside reports whether the container lies inside the flat
// range r.
func containerInside(c Container, r Range) bool {
	n, ok := c.(Node)
	if !ok {
		return false
	}
	for n != nil {
		if n.Parent() == r.Start.Parent {
			start := n.StartOffset()
			return start >= r.Start.Offset && start < r.End.Offset
		}
		parent, ok := n.Parent().(Node)
		if !ok {
			return false
		}
		n = parent
	}
	return false
}
