package model

import "fmt"

// SchemaChecker constrains valid model structure. It is a collaborator
// contract; the schema package provides implementations.
type SchemaChecker interface {
	// CheckChild reports whether a child with the given name is allowed
	// under the context, an ordered list of ancestor names ending with
	// the prospective parent. Text uses the name "$text".
	CheckChild(context []string, name string) bool
}

// Document is the top of a model tree: it owns named roots, the marker
// set and the operation log, and buffers change notifications for
// downcast conversion.
type Document struct {
	roots    map[string]*RootElement
	markers  *markerSet
	schema   SchemaChecker
	batches  []*Batch
	pending  []Change
	active   bool
	observer func(Change)
}

// NewDocument creates a document with no roots.
func NewDocument(schema SchemaChecker) *Document {
	return &Document{
		roots:   make(map[string]*RootElement),
		markers: newMarkerSet(),
		schema:  schema,
	}
}

// Schema returns the document's schema checker; may be nil.
func (d *Document) Schema() SchemaChecker { return d.schema }

// CreateRoot adds an empty named root and returns it. Adding a root
// under a taken name is a programming error.
func (d *Document) CreateRoot(name string) (*RootElement, error) {
	if _, ok := d.roots[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrRootExists, name)
	}
	r := &RootElement{Element: Element{name: "$root"}, doc: d, rootName: name}
	d.roots[name] = r
	return r, nil
}

// Root returns the named root, or nil when it does not exist.
func (d *Document) Root(name string) *RootElement {
	return d.roots[name]
}

// RootNames returns the names of all roots.
func (d *Document) RootNames() []string {
	names := make([]string, 0, len(d.roots))
	for name := range d.roots {
		names = append(names, name)
	}
	return names
}

// Marker returns the named marker, or nil when it does not exist.
func (d *Document) Marker(name string) *Marker {
	m, _ := d.markers.get(name)
	return m
}

// Markers returns all live markers.
func (d *Document) Markers() []*Marker {
	return d.markers.all()
}

// MarkersIntersecting returns markers whose range overlaps the given
// span of the container, including markers covering the container from
// an ancestor level.
func (d *Document) MarkersIntersecting(parent Container, offset, length int) []*Marker {
	return d.markers.intersecting(parent, offset, length)
}

// Change runs fn with a writer inside a named batch. All operations
// recorded during fn belong to one batch, i.e. one undo step. Change
// blocks do not nest; opening one while another is active is a
// programming error.
func (d *Document) Change(name string, fn func(*Writer) error) (*Batch, error) {
	if d.active {
		return nil, ErrChangeActive
	}
	d.active = true
	defer func() { d.active = false }()

	batch := newBatch(name)
	w := &Writer{doc: d, batch: batch}
	if err := fn(w); err != nil {
		return batch, err
	}
	d.batches = append(d.batches, batch)
	return batch, nil
}

// Writer returns a writer recording into an anonymous batch. Prefer
// Change for grouped edits; this is for callers issuing single edits.
func (d *Document) Writer() *Writer {
	return &Writer{doc: d, batch: newBatch("")}
}

// Batches returns the recorded batches in application order.
func (d *Document) Batches() []*Batch {
	out := make([]*Batch, len(d.batches))
	copy(out, d.batches)
	return out
}

// DrainChanges returns the buffered change notifications and clears the
// buffer. The data controller feeds these to downcast conversion.
func (d *Document) DrainChanges() []Change {
	out := d.pending
	d.pending = nil
	return out
}

// SetObserver registers a callback invoked for every recorded change.
// Passing nil removes the observer.
func (d *Document) SetObserver(fn func(Change)) {
	d.observer = fn
}

// record registers a change: markers are adjusted, the change is
// buffered for downcast and handed to the observer.
func (d *Document) record(batch *Batch, c Change) {
	if c.Type == ChangeInsert || c.Type == ChangeRemove {
		d.markers.adjust(c)
	}
	if batch != nil {
		batch.record(c)
	}
	d.pending = append(d.pending, c)
	if d.observer != nil {
		d.observer(c)
	}
}

// ownsContainer reports whether the container belongs to one of the
// document's roots. Changes to detached fragments are not recorded.
func (d *Document) ownsContainer(c Container) bool {
	for {
		if r, ok := c.(*RootElement); ok {
			return r.doc == d
		}
		n, ok := c.(Node)
		if !ok || n.Parent() == nil {
			return false
		}
		c = n.Parent()
	}
}
