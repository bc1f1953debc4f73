package conversion

import (
	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/view"
)

// UpcastData is the payload of one upcast event. A converter inspects
// ViewItem and, when it claims the conversion, inserts model content at
// ModelCursor and records the produced range in ModelRange. Converters
// running later in the chain for the same item may enrich the produced
// content (attributes) but must not re-create it; TestConsume tells them
// whether the primary conversion already happened.
type UpcastData struct {
	// ViewItem is the view node being converted.
	ViewItem view.Node

	// ModelCursor is where produced model content is inserted.
	ModelCursor model.Position

	// ModelRange covers the produced model content once a converter has
	// claimed the item. Nil until then.
	ModelRange *model.Range
}

// UpcastConverter is a single converter callback in an upcast chain.
type UpcastConverter func(ev *EventInfo, data *UpcastData, api *UpcastAPI)

// UpcastRegistration is a named, priority-tagged converter bound to one
// event key, e.g. {"element:p", normal, convertParagraph}.
type UpcastRegistration struct {
	// Name identifies the registration; Remove drops by name.
	Name string

	// Event is the event key: "element:<name>", "element", "text" or
	// "documentFragment".
	Event string

	// Priority orders the converter within the event's chain.
	Priority Priority

	// Handler is the converter callback.
	Handler UpcastConverter
}

// UpcastAPI is handed to every upcast converter invocation.
type UpcastAPI struct {
	// Writer builds the model fragment. It is detached: upcast output is
	// not a document mutation.
	Writer *model.Writer

	// Schema constrains valid model structure; may be nil.
	Schema model.SchemaChecker

	dispatcher *UpcastDispatcher
	context    []string
	consumed   map[view.Node]map[string]struct{}
	err        error
}

// Fail records a programming error encountered inside a converter. The
// first failure aborts the conversion pass and is returned from the
// top-level Convert call.
func (a *UpcastAPI) Fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

// Consume claims an aspect of a view item, e.g. "element", "text",
// "attribute:href" or "class:quote". It returns false when the aspect
// was already consumed by an earlier converter; the caller must then not
// convert it again.
func (a *UpcastAPI) Consume(item view.Node, aspect string) bool {
	if !a.TestConsume(item, aspect) {
		return false
	}
	set := a.consumed[item]
	if set == nil {
		set = make(map[string]struct{})
		a.consumed[item] = set
	}
	set[aspect] = struct{}{}
	return true
}

// TestConsume reports whether the aspect is still available without
// claiming it.
func (a *UpcastAPI) TestConsume(item view.Node, aspect string) bool {
	_, taken := a.consumed[item][aspect]
	return !taken
}

// CheckChild consults the schema for inserting a named child at the
// container. The context is the externally supplied ancestor list
// extended with the path inside the fragment being built.
func (a *UpcastAPI) CheckChild(parent model.Container, name string) bool {
	if a.Schema == nil {
		return true
	}
	return a.Schema.CheckChild(a.contextFor(parent), name)
}

// ConvertChildren converts all children of the view container, inserting
// results at the cursor, and returns the position after the converted
// content.
func (a *UpcastAPI) ConvertChildren(parent view.Container, cursor model.Position) model.Position {
	for _, child := range parent.Children() {
		if r := a.ConvertItem(child, cursor); r != nil {
			cursor = r.End
		}
	}
	return cursor
}

// ConvertItem fires the conversion events for a single view node and
// returns the produced model range, or nil when no converter claimed
// the item. Unconvertible content is dropped, not errored.
func (a *UpcastAPI) ConvertItem(item view.Node, cursor model.Position) *model.Range {
	return a.dispatcher.convertItem(a, item, cursor)
}

// contextFor builds the schema context for a container inside the
// fragment under conversion: the externally supplied ancestor names
// followed by the element path inside the fragment.
func (a *UpcastAPI) contextFor(parent model.Container) []string {
	names := model.AncestorNames(parent)
	if len(names) > 0 && names[0] == "$documentFragment" {
		names = names[1:]
	}
	return append(append([]string{}, a.context...), names...)
}

// UpcastDispatcher converts view trees to model fragments by firing
// typed events through priority-ordered converter chains. For an
// element named "p" the chains registered under "element:p" and
// "element" both fire, most specific first within equal priorities by
// registration order.
type UpcastDispatcher struct {
	schema    model.SchemaChecker
	registry  *registry[UpcastConverter]
	active    bool
	converted int
	dropped   int
}

// NewUpcastDispatcher creates a dispatcher consulting the given schema;
// schema may be nil to accept any structure.
func NewUpcastDispatcher(schema model.SchemaChecker) *UpcastDispatcher {
	d := &UpcastDispatcher{
		schema:   schema,
		registry: newRegistry[UpcastConverter](),
	}
	d.Add(upcastTextRegistration())
	return d
}

// Add registers a converter.
func (d *UpcastDispatcher) Add(reg UpcastRegistration) {
	d.registry.add(reg.Event, reg.Name, reg.Priority, reg.Handler)
}

// Remove drops every converter registered under the name and reports
// whether any existed.
func (d *UpcastDispatcher) Remove(name string) bool {
	return d.registry.remove(name)
}

// Stats returns how many view items were claimed and dropped across all
// conversions so far. The embedding application is expected to watch the
// dropped count; the core does not log conversion misses.
func (d *UpcastDispatcher) Stats() (converted, dropped int) {
	return d.converted, d.dropped
}

// Convert walks the source view container in document order and returns
// the produced model fragment. The optional context is the ordered list
// of ancestor names the fragment content is validated against, e.g.
// ["$root"] for root-level content. Starting a conversion while another
// one runs on this dispatcher is a programming error.
func (d *UpcastDispatcher) Convert(source view.Container, context []string) (*model.DocumentFragment, error) {
	if d.active {
		return nil, ErrConversionActive
	}
	d.active = true
	defer func() { d.active = false }()

	api := &UpcastAPI{
		Writer:     model.NewWriter(),
		Schema:     d.schema,
		dispatcher: d,
		context:    context,
		consumed:   make(map[view.Node]map[string]struct{}),
	}
	fragment := model.NewDocumentFragment()
	api.ConvertChildren(source, model.NewPosition(fragment, 0))
	if api.err != nil {
		return nil, api.err
	}
	return fragment, nil
}

// convertItem fires "element:<name>"+"element" or "text" for one view
// node and reports the produced model range.
func (d *UpcastDispatcher) convertItem(api *UpcastAPI, item view.Node, cursor model.Position) *model.Range {
	var keys []string
	switch t := item.(type) {
	case *view.Element:
		keys = []string{"element:" + t.Name(), "element"}
	case *view.Text:
		keys = []string{"text"}
	default:
		return nil
	}

	data := &UpcastData{ViewItem: item, ModelCursor: cursor}
	ev := &EventInfo{Name: keys[0]}
	for _, l := range d.registry.matching(keys...) {
		l.handler(ev, data, api)
		if ev.Stopped() || api.err != nil {
			break
		}
	}
	if data.ModelRange == nil {
		d.dropped++
	} else {
		d.converted++
	}
	return data.ModelRange
}

// upcastTextRegistration is the built-in converter mapping view text to
// model text, subject to a schema check at the cursor. Registered at low
// priority so applications can precede it.
func upcastTextRegistration() UpcastRegistration {
	return UpcastRegistration{
		Name:     "$text",
		Event:    "text",
		Priority: PriorityLow,
		Handler: func(ev *EventInfo, data *UpcastData, api *UpcastAPI) {
			text, ok := data.ViewItem.(*view.Text)
			if !ok || data.ModelRange != nil {
				return
			}
			if !api.CheckChild(data.ModelCursor.Parent, "$text") {
				return
			}
			if !api.Consume(text, "text") {
				return
			}
			start := data.ModelCursor
			if _, err := api.Writer.InsertText(start, text.Data(), nil); err != nil {
				return
			}
			end := model.NewPosition(start.Parent, start.Offset+text.Size())
			r := model.NewRange(start, end)
			data.ModelRange = &r
		},
	}
}

// SetAttributeOnRange applies a model attribute to the content of a
// flat range, splitting partially covered text runs. Upcast attribute
// converters use this to enrich the content a structure converter
// already produced.
func SetAttributeOnRange(w *model.Writer, r model.Range, key string, value any) {
	w.SetAttributeOnRange(r, key, value)
}

// eventKeyForModel returns the downcast event suffix for a model node:
// the element name, or "$text" for text runs.
func eventKeyForModel(n model.Node) string {
	if e, ok := n.(*model.Element); ok {
		return e.Name()
	}
	return "$text"
}
