package view

// DocumentFragment is a root-like container for a detached view subtree.
// It owns a child sequence and has no parent. The data processor
// produces one from parsed markup, downcast conversion produces one as
// its result.
type DocumentFragment struct {
	children []Node
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

// IsEmpty implements Container.
func (f *DocumentFragment) IsEmpty() bool { return len(f.children) == 0 }

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
