package model

// Node is implemented by every item that can be placed in a model tree.
// The two concrete node types are *Element and *Text.
type Node interface {
	// Parent returns the container currently holding the node,
	// or nil when the node is detached.
	Parent() Container

	// Index returns the node's child index in its parent, or -1 when
	// detached. The index is derived from the parent's child sequence,
	// never stored.
	Index() int

	// StartOffset returns the node's starting offset in its parent,
	// or -1 when detached.
	StartOffset() int

	// OffsetSize returns how many offsets the node occupies in its
	// parent: 1 for an Element, the character count for a Text.
	OffsetSize() int

	// Root returns the outermost container of the node's tree, or nil
	// when the node is detached.
	Root() Container

	setParent(c Container)
}

// Container is implemented by node types that own an ordered child
// sequence: *Element and *DocumentFragment.
type Container interface {
	// ChildCount returns the number of children.
	ChildCount() int

	// Child returns the child at the given index, or nil when out of range.
	Child(index int) Node

	// Children returns a copy of the child sequence.
	Children() []Node

	// MaxOffset returns the sum of the children's offset sizes.
	MaxOffset() int

	// IsEmpty returns true when the container has no children.
	IsEmpty() bool

	insertChildren(index int, nodes []Node)
	removeChildren(index, count int) []Node
	childIndex(n Node) int
}

// childIndexOf scans children for the given node. Identity comparison;
// two equal-looking nodes are still distinct tree members.
func childIndexOf(children []Node, n Node) int {
	for i, c := range children {
		if c == n {
			return i
		}
	}
	return -1
}

// startOffsetIn computes the offset of child i by summing the offset
// sizes of the preceding siblings.
func startOffsetIn(children []Node, i int) int {
	offset := 0
	for _, c := range children[:i] {
		offset += c.OffsetSize()
	}
	return offset
}

// maxOffsetOf sums the offset sizes of all children.
func maxOffsetOf(children []Node) int {
	offset := 0
	for _, c := range children {
		offset += c.OffsetSize()
	}
	return offset
}

// rootOf walks parent links to the outermost container.
func rootOf(n Node) Container {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	for {
		parentNode, ok := parent.(Node)
		if !ok {
			// DocumentFragment, or a root element.
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

// AncestorNames returns the element names on the path from the root down
// to (and including) the given container. DocumentFragment contributes
// "$documentFragment", a document root contributes "$root". Used as the
// schema context for validity checks.
func AncestorNames(c Container) []string {
	var names []string
	for c != nil {
		switch t := c.(type) {
		case *RootElement:
			names = append(names, "$root")
			c = nil
		case *Element:
			names = append(names, t.Name())
			c = t.Parent()
		case *DocumentFragment:
			names = append(names, "$documentFragment")
			c = nil
		default:
			c = nil
		}
	}
	// Reverse to root-first order.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}
