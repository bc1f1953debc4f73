package conversion

import (
	"fmt"

	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/view"
)

// Mapper maintains the bidirectional correspondence between model and
// view containers (elements, roots, fragments) and translates positions
// and ranges between the two trees.
//
// Element lookups are O(1) table hits. Position translation locates the
// bound container and walks sibling offsets, converting model text
// lengths to view structure as it goes: a single model attribute run may
// downcast to nested view elements, so the two offset spaces differ.
//
// A Mapper is an explicit component owned by one data controller and
// handed to every converter invocation; it is not shared between
// controllers.
type Mapper struct {
	modelToView map[model.Container]view.Container
	viewToModel map[view.Container]model.Container
}

// NewMapper creates an empty mapper.
func NewMapper() *Mapper {
	return &Mapper{
		modelToView: make(map[model.Container]view.Container),
		viewToModel: make(map[view.Container]model.Container),
	}
}

// BindElements establishes the one-to-one correspondence between a
// model container and a view container. Binding is established exactly
// once per converted element; re-binding either side is a consistency
// error surfaced to the converter, never silently overwritten.
func (m *Mapper) BindElements(me model.Container, ve view.Container) error {
	if me == nil || ve == nil {
		return fmt.Errorf("%w: nil binding", ErrConsistency)
	}
	if _, ok := m.modelToView[me]; ok {
		return fmt.Errorf("%w: model element already bound", ErrConsistency)
	}
	if _, ok := m.viewToModel[ve]; ok {
		return fmt.Errorf("%w: view element already bound", ErrConsistency)
	}
	m.modelToView[me] = ve
	m.viewToModel[ve] = me
	return nil
}

// UnbindModelElement removes the pair keyed by the model container and
// reports whether it was bound.
func (m *Mapper) UnbindModelElement(me model.Container) bool {
	ve, ok := m.modelToView[me]
	if !ok {
		return false
	}
	delete(m.modelToView, me)
	delete(m.viewToModel, ve)
	return true
}

// UnbindViewElement removes the pair keyed by the view container and
// reports whether it was bound.
func (m *Mapper) UnbindViewElement(ve view.Container) bool {
	me, ok := m.viewToModel[ve]
	if !ok {
		return false
	}
	delete(m.viewToModel, ve)
	delete(m.modelToView, me)
	return true
}

// ClearBindings drops every pair. The data controller resets the mapper
// at the start of each full conversion pass.
func (m *Mapper) ClearBindings() {
	m.modelToView = make(map[model.Container]view.Container)
	m.viewToModel = make(map[view.Container]model.Container)
}

// ToViewElement returns the view container bound to the model container,
// or nil when unbound.
func (m *Mapper) ToViewElement(me model.Container) view.Container {
	return m.modelToView[me]
}

// ToModelElement returns the model container bound to the view
// container, or nil when unbound.
func (m *Mapper) ToModelElement(ve view.Container) model.Container {
	return m.viewToModel[ve]
}

// ToViewPosition translates a model position. The position's parent must
// be bound; converters translate positions at the level of converted
// elements.
func (m *Mapper) ToViewPosition(p model.Position) (view.Position, error) {
	ve, ok := m.modelToView[p.Parent]
	if !ok {
		return view.Position{}, fmt.Errorf("%w: model position %v", ErrNotMapped, p)
	}
	return m.findViewPosition(ve, p.Offset), nil
}

// findViewPosition walks the view children of a container translating a
// model offset to a view position. Text runs count one model offset per
// character, bound elements count one, unbound elements (attribute and
// highlight wrappers) are transparent and contribute their content size.
func (m *Mapper) findViewPosition(parent view.Container, modelOffset int) view.Position {
	remaining := modelOffset
	children := parent.Children()
	for i, c := range children {
		if remaining == 0 {
			return view.NewPosition(parent.(view.Item), i)
		}
		size := m.modelSize(c)
		if remaining < size {
			switch t := c.(type) {
			case *view.Text:
				return view.NewPosition(t, remaining)
			case *view.Element:
				return m.findViewPosition(t, remaining)
			}
		}
		remaining -= size
	}
	return view.NewPosition(parent.(view.Item), len(children))
}

// modelSize returns how many model offsets a view node accounts for.
func (m *Mapper) modelSize(n view.Node) int {
	switch t := n.(type) {
	case *view.Text:
		return t.Size()
	case *view.Element:
		if _, ok := m.viewToModel[t]; ok {
			return 1
		}
		size := 0
		for _, c := range t.Children() {
			size += m.modelSize(c)
		}
		return size
	default:
		return 0
	}
}

// ToModelPosition translates a view position by climbing to the nearest
// bound view ancestor while summing the model sizes of the content
// preceding the position on each level.
func (m *Mapper) ToModelPosition(p view.Position) (model.Position, error) {
	offset := 0
	var node view.Node
	var parent view.Container

	if t, ok := p.TextParent(); ok {
		offset = p.Offset
		node = t
		parent = t.Parent()
		if parent == nil {
			return model.Position{}, fmt.Errorf("%w: detached view position", ErrNotMapped)
		}
	} else {
		c, _ := p.Container()
		if c == nil {
			return model.Position{}, fmt.Errorf("%w: invalid view position", ErrNotMapped)
		}
		for i := 0; i < p.Offset; i++ {
			offset += m.modelSize(c.Child(i))
		}
		if me, ok := m.viewToModel[c]; ok {
			return model.NewPosition(me, offset), nil
		}
		e, ok := c.(*view.Element)
		if !ok {
			return model.Position{}, fmt.Errorf("%w: unbound view root", ErrNotMapped)
		}
		node = e
		parent = e.Parent()
		if parent == nil {
			return model.Position{}, fmt.Errorf("%w: unbound detached element", ErrNotMapped)
		}
	}

	for {
		for i := 0; i < node.Index(); i++ {
			offset += m.modelSize(parent.Child(i))
		}
		if me, ok := m.viewToModel[parent]; ok {
			return model.NewPosition(me, offset), nil
		}
		e, ok := parent.(*view.Element)
		if !ok || e.Parent() == nil {
			return model.Position{}, fmt.Errorf("%w: view position %v", ErrNotMapped, p)
		}
		node = e
		parent = e.Parent()
	}
}

// ToViewRange translates both endpoints of a model range.
func (m *Mapper) ToViewRange(r model.Range) (view.Position, view.Position, error) {
	start, err := m.ToViewPosition(r.Start)
	if err != nil {
		return view.Position{}, view.Position{}, err
	}
	end, err := m.ToViewPosition(r.End)
	if err != nil {
		return view.Position{}, view.Position{}, err
	}
	return start, end, nil
}

// ToModelRange translates both endpoints of a view range.
func (m *Mapper) ToModelRange(start, end view.Position) (model.Range, error) {
	ms, err := m.ToModelPosition(start)
	if err != nil {
		return model.Range{}, err
	}
	me, err := m.ToModelPosition(end)
	if err != nil {
		return model.Range{}, err
	}
	return model.NewRange(ms, me), nil
}
