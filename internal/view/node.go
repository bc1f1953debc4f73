package view

// Node is implemented by every item that can be placed in a view tree.
// The two concrete node types are *Element and *Text.
type Node interface {
	// Parent returns the container currently holding the node, or nil
	// when the node is detached.
	Parent() Container

	// Index returns the node's child index in its parent, or -1 when
	// detached.
	Index() int

	// Root returns the outermost container of the node's tree, or nil
	// when the node is detached.
	Root() Container

	setParent(c Container)
}

// Container is implemented by node types owning an ordered child
// sequence: *Element and *DocumentFragment.
type Container interface {
	// ChildCount returns the number of children.
	ChildCount() int

	// Child returns the child at the given index, or nil when out of
	// range.
	Child(index int) Node

	// Children returns a copy of the child sequence.
	Children() []Node

	// IsEmpty returns true when the container has no children.
	IsEmpty() bool

	insertChildren(index int, nodes []Node)
	removeChildren(index, count int) []Node
	childIndex(n Node) int
}

func childIndexOf(children []Node, n Node) int {
	for i, c := range children {
		if c == n {
			return i
		}
	}
	return -1
}

func rootOf(n Node) Container {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	for {
		parentNode, ok := parent.(Node)
		if !ok {
			return parent
		}
		up := parentNode.Parent()
		if up == nil {
			return parent
		}
		parent = up
	}
}

// IsAttached returns true when the node has a parent.
func IsAttached(n Node) bool {
	return n != nil && n.Parent() != nil
}
