package model

// DocumentFragment is a root-like container for a detached subtree. It
// owns a child sequence, has no parent and is not itself a Node. Upcast
// conversion produces its result as a DocumentFragment.
type DocumentFragment struct {
	children []Node
	markers  map[string]Range
}

// NewDocumentFragment creates an empty fragment.
func NewDocumentFragment() *DocumentFragment {
	return &DocumentFragment{}
}

// ChildCount implements Container.
func (f *DocumentFragment) ChildCount() int { return len(f.children) }

// Child implements Container.
func (f *DocumentFragment) Child(index int) Node {
	if index < 0 || index >= len(f.children) {
		return nil
	}
	return f.children[index]
}

// Children implements Container.
func (f *DocumentFragment) Children() []Node {
	out := make([]Node, len(f.children))
	copy(out, f.children)
	return out
}

// MaxOffset implements Container.
func (f *DocumentFragment) MaxOffset() int { return maxOffsetOf(f.children) }

// IsEmpty implements Container.
func (f *DocumentFragment) IsEmpty() bool { return len(f.children) == 0 }

// Markers returns the fragment's marker ranges keyed by marker name.
// Fragments carry markers so conversion can transfer them between a
// document and detached content.
func (f *DocumentFragment) Markers() map[string]Range {
	out := make(map[string]Range, len(f.markers))
	for k, v := range f.markers {
		out[k] = v
	}
	return out
}

// SetMarker records a marker range on the fragment. The range must be
// inside the fragment.
func (f *DocumentFragment) SetMarker(name string, r Range) {
	if f.markers == nil {
		f.markers = make(map[string]Range)
	}
	f.markers[name] = r
}

func (f *DocumentFragment) insertChildren(index int, nodes []Node) {
	f.children = append(f.children[:index], append(append([]Node{}, nodes...), f.children[index:]...)...)
	for _, n := range nodes {
		n.setParent(f)
	}
}

func (f *DocumentFragment) removeChildren(index, count int) []Node {
	removed := make([]Node, count)
	copy(removed, f.children[index:index+count])
	f.children = append(f.children[:index], f.children[index+count:]...)
	for _, n := range removed {
		n.setParent(nil)
	}
	return removed
}

func (f *DocumentFragment) childIndex(n Node) int { return childIndexOf(f.children, n) }
