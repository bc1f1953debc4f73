package model

import "fmt"

// Writer is the only component permitted to mutate model trees. It
// encapsulates structural edits, keeps the text-merge invariant, applies
// schema checks and records invertible operations on the owning
// document.
//
// A writer obtained from Document.Change or Document.Writer records into
// that document. NewWriter returns a detached writer for building
// fragments; its edits are not recorded anywhere.
type Writer struct {
	doc    *Document
	batch  *Batch
	schema SchemaChecker
}

// NewWriter creates a writer that is not bound to a document. Upcast
// conversion uses one to assemble detached fragments.
func NewWriter() *Writer {
	return &Writer{}
}

// CreateElement returns a new detached element.
func (w *Writer) CreateElement(name string, attrs map[string]any) *Element {
	return newElement(name, attrs)
}

// CreateText returns a new detached text node.
func (w *Writer) CreateText(data string, attrs map[string]any) *Text {
	return newText(data, attrs)
}

// Clone returns a detached structural copy of the node. A deep element
// clone recurses into children; a shallow one copies only the element's
// own name and attributes.
func (w *Writer) Clone(n Node, deep bool) Node {
	switch t := n.(type) {
	case *Text:
		return newText(t.data, t.attrs)
	case *Element:
		clone := newElement(t.name, t.attrs)
		if deep {
			for _, c := range t.children {
				child := w.Clone(c, true)
				clone.insertChildren(clone.ChildCount(), []Node{child})
			}
		}
		return clone
	default:
		return nil
	}
}

// InsertChild inserts nodes at the given child index of the container,
// preserving the supplied order, and returns the number of children
// inserted. Inserting an attached node, an out-of-range index or a
// schema-rejected combination fails with ErrInvalidInsertion.
func (w *Writer) InsertChild(parent Container, index int, nodes ...Node) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	if parent == nil || index < 0 || index > parent.ChildCount() {
		return 0, fmt.Errorf("%w: index %d out of range", ErrInvalidInsertion, index)
	}
	if err := w.validate(parent, nodes); err != nil {
		return 0, err
	}

	offset := startOffsetIn(parent.Children(), index)
	length := 0
	for _, n := range nodes {
		length += n.OffsetSize()
	}
	inserted := make([]Node, len(nodes))
	copy(inserted, nodes)

	parent.insertChildren(index, nodes)
	w.record(Change{
		Type:   ChangeInsert,
		Parent: parent,
		Offset: offset,
		Length: length,
		Nodes:  inserted,
	})
	// Right boundary first: merging there does not move the left one.
	w.mergeAround(parent, index+len(nodes))
	w.mergeAround(parent, index)
	return len(nodes), nil
}

// Append inserts nodes at the end of the container.
func (w *Writer) Append(parent Container, nodes ...Node) (int, error) {
	if parent == nil {
		return 0, fmt.Errorf("%w: nil parent", ErrInvalidInsertion)
	}
	return w.InsertChild(parent, parent.ChildCount(), nodes...)
}

// Insert inserts nodes at an offset position, splitting a text run when
// the position falls inside one.
func (w *Writer) Insert(pos Position, nodes ...Node) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	if !pos.IsValid() {
		return 0, fmt.Errorf("%w: position %v", ErrInvalidInsertion, pos)
	}
	w.splitTextAt(pos)
	index, _ := pos.ChildIndex()
	return w.InsertChild(pos.Parent, index, nodes...)
}

// InsertText inserts a text run at the position.
func (w *Writer) InsertText(pos Position, data string, attrs map[string]any) (int, error) {
	if data == "" {
		return 0, nil
	}
	return w.Insert(pos, w.CreateText(data, attrs))
}

// Remove detaches the node from its parent and returns the removed nodes.
// Removing a detached node is a no-op returning an empty result, never
// an error.
func (w *Writer) Remove(n Node) []Node {
	if !IsAttached(n) {
		return nil
	}
	parent := n.Parent()
	index := n.Index()
	offset := n.StartOffset()
	length := n.OffsetSize()
	removed := parent.removeChildren(index, 1)
	w.record(Change{
		Type:   ChangeRemove,
		Parent: parent,
		Offset: offset,
		Length: length,
		Nodes:  removed,
	})
	w.mergeAround(parent, index)
	return removed
}

// RemoveRange detaches all content covered by a flat range and returns
// the removed nodes in original document order. Text runs partially
// covered by the range are split first so only the covered characters
// are removed. A collapsed or invalid range is a no-op.
func (w *Writer) RemoveRange(r Range) []Node {
	if !r.IsFlat() || !r.IsValid() || r.IsCollapsed() {
		return nil
	}
	w.splitTextAt(r.Start)
	w.splitTextAt(r.End)

	parent := r.Start.Parent
	startIndex, _ := r.Start.ChildIndex()
	endIndex, _ := r.End.ChildIndex()
	count := endIndex - startIndex
	if count <= 0 {
		return nil
	}
	removed := parent.removeChildren(startIndex, count)
	w.record(Change{
		Type:   ChangeRemove,
		Parent: parent,
		Offset: r.Start.Offset,
		Length: r.End.Offset - r.Start.Offset,
		Nodes:  removed,
	})
	w.mergeAround(parent, startIndex)
	return removed
}

// Replace atomically swaps newNode into oldNode's former position.
// Returns false with no effect when oldNode is detached. Returns an
// error when newNode cannot be inserted there.
func (w *Writer) Replace(oldNode, newNode Node) (bool, error) {
	if !IsAttached(oldNode) {
		return false, nil
	}
	if IsAttached(newNode) {
		return false, fmt.Errorf("%w: replacement node is attached", ErrInvalidInsertion)
	}
	parent := oldNode.Parent()
	index := oldNode.Index()
	offset := oldNode.StartOffset()
	// Validate before touching the tree so a rejected replacement leaves
	// it unchanged.
	if err := w.validate(parent, []Node{newNode}); err != nil {
		return false, err
	}
	// Swap in place. Merging must not run between the detach and the
	// insert: it would collapse the flanking texts and shift the index.
	removed := parent.removeChildren(index, 1)
	w.record(Change{
		Type:   ChangeRemove,
		Parent: parent,
		Offset: offset,
		Length: removed[0].OffsetSize(),
		Nodes:  removed,
	})
	parent.insertChildren(index, []Node{newNode})
	w.record(Change{
		Type:   ChangeInsert,
		Parent: parent,
		Offset: offset,
		Length: newNode.OffsetSize(),
		Nodes:  []Node{newNode},
	})
	w.mergeAround(parent, index+1)
	w.mergeAround(parent, index)
	return true, nil
}

// Rename replaces the element with a copy carrying the new name, moving
// children and attributes over, and returns the new element. The old
// element's identity is discarded; callers must not retain references to
// it. Returns nil when the element is detached.
func (w *Writer) Rename(e *Element, newName string) *Element {
	if !IsAttached(e) {
		return nil
	}
	renamed := newElement(newName, e.attrs)
	children := e.removeChildren(0, e.ChildCount())
	renamed.insertChildren(0, children)
	if ok, _ := w.Replace(e, renamed); !ok {
		return nil
	}
	return renamed
}

// SetAttribute sets an attribute on an element or text node. Setting the
// same value again is a no-op.
func (w *Writer) SetAttribute(n Node, key string, value any) {
	old, had := nodeAttribute(n, key)
	if had && old == value {
		return
	}
	switch t := n.(type) {
	case *Element:
		t.setAttribute(key, value)
	case *Text:
		t.setAttribute(key, value)
	default:
		return
	}
	w.record(Change{
		Type:   ChangeAttribute,
		Node:   n,
		Parent: n.Parent(),
		Offset: n.StartOffset(),
		Length: n.OffsetSize(),
		Key:    key,
		Old:    old,
		New:    value,
	})
	w.mergeAroundNode(n)
}

// SetAttributeOnRange applies an attribute to every node covered by a
// flat range. Text runs partially covered by the range are split first
// so the attribute lands only on the covered characters.
func (w *Writer) SetAttributeOnRange(r Range, key string, value any) {
	if !r.IsFlat() || !r.IsValid() || r.IsCollapsed() {
		return
	}
	w.splitTextAt(r.Start)
	w.splitTextAt(r.End)
	for _, n := range r.Nodes() {
		w.SetAttribute(n, key, value)
	}
}

// RemoveAttribute removes an attribute and reports whether it existed.
// Removing an absent attribute is a no-op, never an error.
func (w *Writer) RemoveAttribute(n Node, key string) bool {
	old, had := nodeAttribute(n, key)
	if !had {
		return false
	}
	switch t := n.(type) {
	case *Element:
		t.removeAttribute(key)
	case *Text:
		t.removeAttribute(key)
	default:
		return false
	}
	w.record(Change{
		Type:   ChangeAttribute,
		Node:   n,
		Parent: n.Parent(),
		Offset: n.StartOffset(),
		Length: n.OffsetSize(),
		Key:    key,
		Old:    old,
		New:    nil,
	})
	w.mergeAroundNode(n)
	return true
}

// AddMarker adds a named marker over the range. Adding a marker under a
// taken name is a programming error.
func (w *Writer) AddMarker(name string, r Range) (*Marker, error) {
	if w.doc == nil {
		return nil, fmt.Errorf("model: writer has no document for marker %q", name)
	}
	if _, ok := w.doc.markers.get(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrMarkerExists, name)
	}
	m := w.doc.markers.add(name, r)
	w.record(Change{Type: ChangeMarkerAdd, MarkerName: name, MarkerRange: r})
	return m, nil
}

// RemoveMarker removes the named marker and reports whether it existed.
// Removing an absent marker is a no-op.
func (w *Writer) RemoveMarker(name string) bool {
	if w.doc == nil {
		return false
	}
	m, ok := w.doc.markers.remove(name)
	if !ok {
		return false
	}
	w.record(Change{Type: ChangeMarkerRemove, MarkerName: name, MarkerRange: m.Range()})
	return true
}

// UpdateMarker moves the named marker to a new range, adding it when it
// does not exist yet.
func (w *Writer) UpdateMarker(name string, r Range) (*Marker, error) {
	if w.doc == nil {
		return nil, fmt.Errorf("model: writer has no document for marker %q", name)
	}
	w.RemoveMarker(name)
	return w.AddMarker(name, r)
}

// validate checks insertability: nodes must be detached and the schema,
// when present, must allow each node under the parent.
func (w *Writer) validate(parent Container, nodes []Node) error {
	checker := w.schema
	if checker == nil && w.doc != nil {
		checker = w.doc.schema
	}
	var context []string
	if checker != nil {
		context = AncestorNames(parent)
	}
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("%w: nil node", ErrInvalidInsertion)
		}
		if IsAttached(n) {
			return fmt.Errorf("%w: node already attached, remove or clone it first", ErrInvalidInsertion)
		}
		if checker != nil {
			name := "$text"
			if e, ok := n.(*Element); ok {
				name = e.Name()
			}
			if !checker.CheckChild(context, name) {
				return fmt.Errorf("%w: %q not allowed in %v", ErrInvalidInsertion, name, context)
			}
		}
	}
	return nil
}

// record forwards a change to the document when the affected tree
// belongs to it. Edits on detached fragments are silent.
func (w *Writer) record(c Change) {
	if w.doc == nil {
		return
	}
	switch c.Type {
	case ChangeMarkerAdd, ChangeMarkerRemove:
		w.doc.record(w.batch, c)
	default:
		if c.Parent != nil && w.doc.ownsContainer(c.Parent) {
			w.doc.record(w.batch, c)
		} else if c.Node != nil && c.Node.Parent() != nil && w.doc.ownsContainer(c.Node.Parent()) {
			w.doc.record(w.batch, c)
		}
	}
}

// splitTextAt splits the text run the position falls inside so the
// position lands on a node boundary. Splitting moves no offsets, so it
// is a pure normalization and not recorded as a change.
func (w *Writer) splitTextAt(pos Position) {
	t, inner := pos.TextNode()
	if t == nil {
		return
	}
	runes := []rune(t.data)
	left := newText(string(runes[:inner]), t.attrs)
	right := newText(string(runes[inner:]), t.attrs)
	parent := t.parent
	index := t.Index()
	parent.removeChildren(index, 1)
	parent.insertChildren(index, []Node{left, right})
}

// mergeAround merges the children on both sides of the boundary at the
// given child index when they are merge-compatible texts. Merging moves
// no offsets and is not recorded as a change.
func (w *Writer) mergeAround(parent Container, index int) {
	if index <= 0 || index >= parent.ChildCount() {
		return
	}
	left, lok := parent.Child(index - 1).(*Text)
	right, rok := parent.Child(index).(*Text)
	if !lok || !rok || !mergeCompatible(left, right) {
		return
	}
	merged := newText(left.data+right.data, left.attrs)
	parent.removeChildren(index-1, 2)
	parent.insertChildren(index-1, []Node{merged})
	// A merge can expose another compatible pair at the same index.
	w.mergeAround(parent, index-1)
}

// mergeAroundNode re-checks the merge invariant around a text node whose
// attributes changed.
func (w *Writer) mergeAroundNode(n Node) {
	t, ok := n.(*Text)
	if !ok || !IsAttached(t) {
		return
	}
	parent := t.Parent()
	index := t.Index()
	w.mergeAround(parent, index+1)
	w.mergeAround(parent, index)
}

// nodeAttribute reads an attribute off either node type.
func nodeAttribute(n Node, key string) (any, bool) {
	switch t := n.(type) {
	case *Element:
		return t.Attribute(key)
	case *Text:
		return t.Attribute(key)
	default:
		return nil, false
	}
}
