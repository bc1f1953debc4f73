package datacontroller

import (
	"fmt"

	"github.com/dshills/richcast/internal/conversion"
	"github.com/dshills/richcast/internal/htmldata"
	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/schema"
	"github.com/dshills/richcast/internal/view"
)

// Controller owns the document and the conversion pipeline around it.
// Loading markup runs processor -> upcast -> model; rendering runs
// model -> downcast -> processor. Converters are attached through the
// Upcast and Downcast accessors.
type Controller struct {
	doc       *model.Document
	mapper    *conversion.Mapper
	upcast    *conversion.UpcastDispatcher
	downcast  *conversion.DowncastDispatcher
	processor *htmldata.Processor
}

// New creates a controller with a single "main" root. A nil checker
// defaults to schema.AllowAll.
func New(checker model.SchemaChecker) (*Controller, error) {
	if checker == nil {
		checker = schema.AllowAll{}
	}
	doc := model.NewDocument(checker)
	if _, err := doc.CreateRoot("main"); err != nil {
		return nil, err
	}
	mapper := conversion.NewMapper()
	return &Controller{
		doc:       doc,
		mapper:    mapper,
		upcast:    conversion.NewUpcastDispatcher(checker),
		downcast:  conversion.NewDowncastDispatcher(mapper),
		processor: htmldata.NewProcessor(),
	}, nil
}

// Document returns the controlled document.
func (c *Controller) Document() *model.Document { return c.doc }

// Mapper returns the shared mapper.
func (c *Controller) Mapper() *conversion.Mapper { return c.mapper }

// Upcast returns the loading dispatcher for converter registration.
func (c *Controller) Upcast() *conversion.UpcastDispatcher { return c.upcast }

// Downcast returns the rendering dispatcher for converter registration.
func (c *Controller) Downcast() *conversion.DowncastDispatcher { return c.downcast }

// Parse converts markup into a detached model fragment validated
// against the given schema context, e.g. ["$root"].
func (c *Controller) Parse(markup string, context []string) (*model.DocumentFragment, error) {
	vf, err := c.processor.ToView(markup)
	if err != nil {
		return nil, err
	}
	return c.upcast.Convert(vf, context)
}

// ToModel converts an already-parsed view fragment to a model fragment.
func (c *Controller) ToModel(fragment *view.DocumentFragment, context []string) (*model.DocumentFragment, error) {
	return c.upcast.Convert(fragment, context)
}

// Set replaces the content of the named root with the parsed markup in
// one change batch. Markers carried by the parsed fragment are created
// on the document.
func (c *Controller) Set(rootName, markup string) error {
	root := c.doc.Root(rootName)
	if root == nil {
		return fmt.Errorf("%w: %q", ErrNoRoot, rootName)
	}
	fragment, err := c.Parse(markup, []string{schema.RootName})
	if err != nil {
		return err
	}
	_, err = c.doc.Change("dataSet", func(w *model.Writer) error {
		// Only markers anchored in the replaced root go; markers in
		// other roots are untouched.
		for _, m := range c.doc.Markers() {
			if rangeInside(root, m.Range()) {
				w.RemoveMarker(m.Name())
			}
		}
		w.RemoveRange(model.RangeIn(root))
		return transfer(w, root, fragment)
	})
	return err
}

// Init sets the initial content of the named root. Unlike Set it
// requires a pristine document: no content in any root and no recorded
// changes.
func (c *Controller) Init(rootName, markup string) error {
	if len(c.doc.Batches()) > 0 {
		return ErrDocumentAlreadyInitialized
	}
	for _, name := range c.doc.RootNames() {
		if !c.doc.Root(name).IsEmpty() {
			return ErrDocumentAlreadyInitialized
		}
	}
	return c.Set(rootName, markup)
}

// Get renders the named root to markup. Bindings from previous
// renderings are discarded; the root is bound to a fresh view fragment
// and the whole content plus every marker intersecting the root is
// downcast into it.
func (c *Controller) Get(rootName string) (string, error) {
	root := c.doc.Root(rootName)
	if root == nil {
		return "", fmt.Errorf("%w: %q", ErrNoRoot, rootName)
	}
	vf, err := c.toViewFragment(root)
	if err != nil {
		return "", err
	}
	return c.processor.ToData(vf), nil
}

// ToView downcasts a model container to a detached view fragment.
// Mapper bindings are rebuilt from scratch for the conversion.
func (c *Controller) ToView(content model.Container) (*view.DocumentFragment, error) {
	return c.toViewFragment(content)
}

func (c *Controller) toViewFragment(content model.Container) (*view.DocumentFragment, error) {
	c.mapper.ClearBindings()
	vf := view.NewDocumentFragment()
	if err := c.mapper.BindElements(content, vf); err != nil {
		return nil, err
	}
	if err := c.downcast.ConvertInsert(model.RangeIn(content)); err != nil {
		return nil, err
	}
	for _, m := range c.doc.Markers() {
		r := m.Range()
		if !rangeInside(content, r) {
			continue
		}
		if err := c.downcast.ConvertMarkerAdd(m.Name(), r); err != nil {
			return nil, err
		}
	}
	return vf, nil
}

// transfer moves the fragment's children and markers into the root.
func transfer(w *model.Writer, root *model.RootElement, fragment *model.DocumentFragment) error {
	children := fragment.Children()
	for _, n := range children {
		w.Remove(n)
	}
	if _, err := w.Append(root, children...); err != nil {
		return err
	}
	for name, r := range fragment.Markers() {
		// Fragment marker positions address the fragment itself; after
		// the transfer the same offsets address the root.
		mr := model.NewRange(
			model.NewPosition(rehome(r.Start.Parent, fragment, root), r.Start.Offset),
			model.NewPosition(rehome(r.End.Parent, fragment, root), r.End.Offset),
		)
		if _, err := w.AddMarker(name, mr); err != nil {
			return err
		}
	}
	return nil
}

// rehome swaps the fragment for the root in marker positions anchored
// directly at the fragment; positions inside moved children stay valid
// as-is.
func rehome(parent model.Container, fragment *model.DocumentFragment, root *model.RootElement) model.Container {
	if parent == model.Container(fragment) {
		return root
	}
	return parent
}

// rangeInside reports whether the range lives under the container.
func rangeInside(c model.Container, r model.Range) bool {
	p := r.Start.Parent
	for p != nil {
		if p == c {
			return true
		}
		n, ok := p.(model.Node)
		if !ok {
			return false
		}
		p = n.Parent()
	}
	return false
}
