package view

import "fmt"

// Writer is the only component permitted to mutate view trees. Both
// conversion directions use one: upcast consumes view trees the data
// processor built through it, downcast applies model changes to the view
// through it.
type Writer struct{}

// NewWriter creates a view writer.
func NewWriter() *Writer {
	return &Writer{}
}

// CreateElement returns a new detached element.
func (w *Writer) CreateElement(name string, attrs map[string]string) *Element {
	return newElement(name, attrs)
}

// CreateText returns a new detached text node.
func (w *Writer) CreateText(data string) *Text {
	return newText(data)
}

// Clone returns a detached structural copy of the node. A deep element
// clone recurses into children; a shallow one copies only the element's
// own attributes, classes, styles and custom properties.
func (w *Writer) Clone(n Node, deep bool) Node {
	switch t := n.(type) {
	case *Text:
		return newText(t.data)
	case *Element:
		clone := newElement(t.name, t.attrs)
		for c := range t.classes {
			clone.addClass(c)
		}
		for s, v := range t.styles {
			clone.setStyle(s, v)
		}
		for k, v := range t.custom {
			clone.setCustomProperty(k, v)
		}
		if deep {
			for _, c := range t.children {
				clone.insertChildren(clone.ChildCount(), []Node{w.Clone(c, true)})
			}
		}
		return clone
	default:
		return nil
	}
}

// InsertChild inserts nodes at the given child index, preserving the
// supplied order, and returns the number of children inserted. Adjacent
// compatible text runs are merged afterwards.
func (w *Writer) InsertChild(parent Container, index int, nodes ...Node) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	if parent == nil || index < 0 || index > parent.ChildCount() {
		return 0, fmt.Errorf("%w: index %d out of range", ErrInvalidInsertion, index)
	}
	for _, n := range nodes {
		if n == nil {
			return 0, fmt.Errorf("%w: nil node", ErrInvalidInsertion)
		}
		if IsAttached(n) {
			return 0, fmt.Errorf("%w: node already attached, remove or clone it first", ErrInvalidInsertion)
		}
	}
	parent.insertChildren(index, nodes)
	w.mergeTextAt(parent, index+len(nodes))
	w.mergeTextAt(parent, index)
	return len(nodes), nil
}

// Append inserts nodes at the end of the container.
func (w *Writer) Append(parent Container, nodes ...Node) (int, error) {
	if parent == nil {
		return 0, fmt.Errorf("%w: nil parent", ErrInvalidInsertion)
	}
	return w.InsertChild(parent, parent.ChildCount(), nodes...)
}

// InsertAt inserts nodes at a position, breaking a text run first when
// the position falls inside one.
func (w *Writer) InsertAt(pos Position, nodes ...Node) (int, error) {
	boundary, err := w.BreakAt(pos)
	if err != nil {
		return 0, err
	}
	c, _ := boundary.Container()
	return w.InsertChild(c, boundary.Offset, nodes...)
}

// Remove detaches the node from its parent and returns the removed
// nodes. Removing a detached node is a no-op returning an empty result.
func (w *Writer) Remove(n Node) []Node {
	if !IsAttached(n) {
		return nil
	}
	parent := n.Parent()
	index := n.Index()
	removed := parent.removeChildren(index, 1)
	w.mergeTextAt(parent, index)
	return removed
}

// RemoveChildren detaches count children starting at index and returns
// them in original document order.
func (w *Writer) RemoveChildren(parent Container, index, count int) ([]Node, error) {
	if count == 0 {
		return nil, nil
	}
	if parent == nil || index < 0 || count < 0 || index+count > parent.ChildCount() {
		return nil, fmt.Errorf("%w: [%d,%d)", ErrInvalidRange, index, index+count)
	}
	removed := parent.removeChildren(index, count)
	w.mergeTextAt(parent, index)
	return removed, nil
}

// Replace atomically swaps newNode into oldNode's former position.
// Returns false with no effect when oldNode is detached.
func (w *Writer) Replace(oldNode, newNode Node) (bool, error) {
	if !IsAttached(oldNode) {
		return false, nil
	}
	if IsAttached(newNode) {
		return false, fmt.Errorf("%w: replacement node is attached", ErrInvalidInsertion)
	}
	parent := oldNode.Parent()
	index := oldNode.Index()
	parent.removeChildren(index, 1)
	parent.insertChildren(index, []Node{newNode})
	return true, nil
}

// Rename replaces the element with a clone carrying the new name and
// returns it. The element name is immutable post-construction, so the
// original identity is discarded; callers must not retain references to
// the pre-rename node. Returns nil when the element is detached.
func (w *Writer) Rename(e *Element, newName string) *Element {
	if !IsAttached(e) {
		return nil
	}
	renamed := w.Clone(e, false).(*Element)
	renamed.name = newName
	children := e.removeChildren(0, e.ChildCount())
	renamed.insertChildren(0, children)
	if ok, _ := w.Replace(e, renamed); !ok {
		return nil
	}
	return renamed
}

// SetAttribute sets a plain attribute on the element.
func (w *Writer) SetAttribute(e *Element, key, value string) {
	e.setAttribute(key, value)
}

// RemoveAttribute removes a plain attribute and reports whether it
// existed. Removing an absent attribute is a no-op.
func (w *Writer) RemoveAttribute(e *Element, key string) bool {
	return e.removeAttribute(key)
}

// AddClass adds a class to the element. Adding a present class is a
// no-op.
func (w *Writer) AddClass(e *Element, class string) {
	e.addClass(class)
}

// RemoveClass removes a class and reports whether it existed.
func (w *Writer) RemoveClass(e *Element, class string) bool {
	return e.removeClass(class)
}

// SetStyle sets a style property on the element.
func (w *Writer) SetStyle(e *Element, name, value string) {
	e.setStyle(name, value)
}

// RemoveStyle removes a style property and reports whether it existed.
func (w *Writer) RemoveStyle(e *Element, name string) bool {
	return e.removeStyle(name)
}

// SetCustomProperty attaches non-serializable metadata to the element.
func (w *Writer) SetCustomProperty(e *Element, key string, value any) {
	e.setCustomProperty(key, value)
}

// RemoveCustomProperty removes a custom property and reports whether it
// existed.
func (w *Writer) RemoveCustomProperty(e *Element, key string) bool {
	return e.removeCustomProperty(key)
}

// BreakAt turns the position into a container boundary position,
// splitting a text run when the position falls inside one. Positions at
// a text's edges resolve to the adjacent boundary without splitting.
func (w *Writer) BreakAt(pos Position) (Position, error) {
	t, ok := pos.TextParent()
	if !ok {
		if !pos.IsValid() {
			return Position{}, fmt.Errorf("%w: position %v", ErrInvalidRange, pos)
		}
		return pos, nil
	}
	parent := t.Parent()
	if parent == nil {
		return Position{}, fmt.Errorf("%w: position in detached text", ErrInvalidRange)
	}
	index := t.Index()
	switch {
	case pos.Offset <= 0:
		return Position{Parent: parent.(Item), Offset: index}, nil
	case pos.Offset >= t.Size():
		return Position{Parent: parent.(Item), Offset: index + 1}, nil
	}
	runes := []rune(t.data)
	left := newText(string(runes[:pos.Offset]))
	right := newText(string(runes[pos.Offset:]))
	parent.removeChildren(index, 1)
	parent.insertChildren(index, []Node{left, right})
	return Position{Parent: parent.(Item), Offset: index + 1}, nil
}

// Wrap moves the children in [from, to) into the wrapper element and
// inserts the wrapper in their place. When a directly adjacent sibling
// is similar to the wrapper, the content is merged into it instead so
// repeated wrapping never produces two touching equal wrappers.
func (w *Writer) Wrap(parent Container, from, to int, wrapper *Element) (*Element, error) {
	if parent == nil || from < 0 || to < from || to > parent.ChildCount() {
		return nil, fmt.Errorf("%w: [%d,%d)", ErrInvalidRange, from, to)
	}
	if IsAttached(wrapper) {
		return nil, fmt.Errorf("%w: wrapper already attached", ErrInvalidInsertion)
	}
	if from == to {
		return nil, nil
	}
	content := parent.removeChildren(from, to-from)

	// Merge into a similar left neighbor when possible.
	if left, ok := parent.Child(from - 1).(*Element); ok && left.IsSimilar(wrapper) {
		left.insertChildren(left.ChildCount(), content)
		w.mergeTextAt(left, left.ChildCount()-len(content))
		w.mergeWrapperRight(parent, from-1)
		return left, nil
	}

	wrapper.insertChildren(0, content)
	parent.insertChildren(from, []Node{wrapper})
	w.mergeWrapperRight(parent, from)
	return wrapper, nil
}

// Unwrap moves the wrapper's children into its place and detaches the
// wrapper. Returns the moved children. Unwrapping a detached element is
// a no-op.
func (w *Writer) Unwrap(wrapper *Element) []Node {
	if !IsAttached(wrapper) {
		return nil
	}
	parent := wrapper.Parent()
	index := wrapper.Index()
	content := wrapper.removeChildren(0, wrapper.ChildCount())
	parent.removeChildren(index, 1)
	parent.insertChildren(index, content)
	w.mergeTextAt(parent, index+len(content))
	w.mergeTextAt(parent, index)
	return content
}

// mergeWrapperRight merges the element at index with its right neighbor
// when both are similar wrappers.
func (w *Writer) mergeWrapperRight(parent Container, index int) {
	left, lok := parent.Child(index).(*Element)
	right, rok := parent.Child(index + 1).(*Element)
	if !lok || !rok || !left.IsSimilar(right) {
		return
	}
	content := right.removeChildren(0, right.ChildCount())
	parent.removeChildren(index+1, 1)
	at := left.ChildCount()
	left.insertChildren(at, content)
	w.mergeTextAt(left, at)
}

// mergeTextAt merges the text runs on both sides of the child boundary
// at index into one node.
func (w *Writer) mergeTextAt(parent Container, index int) {
	if index <= 0 || index >= parent.ChildCount() {
		return
	}
	left, lok := parent.Child(index - 1).(*Text)
	right, rok := parent.Child(index).(*Text)
	if !lok || !rok {
		return
	}
	merged := newText(left.data + right.data)
	parent.removeChildren(index-1, 2)
	parent.insertChildren(index-1, []Node{merged})
}
