package conversion

import (
	"fmt"

	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/view"
)

// DowncastData is the payload of one downcast event. Which fields are
// set depends on the event: insert events carry Item and Range,
// attribute events additionally Key/Old/New, remove events Position and
// Length, marker events MarkerName and MarkerRange.
type DowncastData struct {
	// Item is the model node an insert or attribute event is about.
	Item model.Node

	// Range covers the item in the model tree.
	Range model.Range

	// Position and Length locate removed content for "remove" events.
	// The view still holds the corresponding content when the event
	// fires; position translation resolves against it.
	Position model.Position
	Length   int

	// Key, Old and New describe an attribute event.
	Key string
	Old any
	New any

	// MarkerName and MarkerRange describe a marker event.
	MarkerName  string
	MarkerRange model.Range
}

// DowncastConverter is a single converter callback in a downcast chain.
type DowncastConverter func(ev *EventInfo, data *DowncastData, api *DowncastAPI)

// DowncastRegistration is a named, priority-tagged converter bound to
// one event key, e.g. {"insert:paragraph", normal, insertParagraph}.
type DowncastRegistration struct {
	// Name identifies the registration; Remove drops by name.
	Name string

	// Event is the event key: "insert:<name>", "insert", "remove",
	// "attribute:<key>:<name>", "attribute:<key>", "addMarker:<name>",
	// "addMarker", "removeMarker:<name>" or "removeMarker".
	Event string

	// Priority orders the converter within the event's chain.
	Priority Priority

	// Handler is the converter callback.
	Handler DowncastConverter
}

// DowncastAPI is handed to every downcast converter invocation.
type DowncastAPI struct {
	// Mapper locates corresponding view content and records new
	// bindings.
	Mapper *Mapper

	// Writer applies the equivalent mutation to the view tree.
	Writer *view.Writer

	consumed map[consumable]struct{}
	err      error
}

// Fail records a programming error encountered inside a converter. The
// first failure aborts the conversion pass and is returned from the
// top-level call.
func (a *DowncastAPI) Fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

// consumable keys one aspect of one converted thing. Markers consume by
// name since they have no node identity.
type consumable struct {
	item   model.Node
	marker string
	aspect string
}

// Consume claims an aspect of the event's subject, e.g. "insert" or
// "attribute:bold". Returns false when an earlier converter claimed it.
func (a *DowncastAPI) Consume(item model.Node, aspect string) bool {
	k := consumable{item: item, aspect: aspect}
	if _, taken := a.consumed[k]; taken {
		return false
	}
	a.consumed[k] = struct{}{}
	return true
}

// TestConsume reports whether the aspect is still available.
func (a *DowncastAPI) TestConsume(item model.Node, aspect string) bool {
	_, taken := a.consumed[consumable{item: item, aspect: aspect}]
	return !taken
}

// ConsumeMarker claims a marker event by marker name.
func (a *DowncastAPI) ConsumeMarker(name, aspect string) bool {
	k := consumable{marker: name, aspect: aspect}
	if _, taken := a.consumed[k]; taken {
		return false
	}
	a.consumed[k] = struct{}{}
	return true
}

// DowncastDispatcher converts model change notifications into view
// mutations by firing typed events through priority-ordered converter
// chains. Converters use the Mapper to find the corresponding view
// content and the view Writer to change it.
type DowncastDispatcher struct {
	mapper    *Mapper
	writer    *view.Writer
	registry  *registry[DowncastConverter]
	active    bool
	converted int
	dropped   int
}

// NewDowncastDispatcher creates a dispatcher around the given mapper.
// The built-in converters for text insertion and content removal are
// registered at low priority so applications can precede them.
func NewDowncastDispatcher(mapper *Mapper) *DowncastDispatcher {
	d := &DowncastDispatcher{
		mapper:   mapper,
		writer:   view.NewWriter(),
		registry: newRegistry[DowncastConverter](),
	}
	d.Add(downcastTextRegistration())
	d.Add(downcastRemoveRegistration())
	return d
}

// Mapper returns the mapper the dispatcher converts through.
func (d *DowncastDispatcher) Mapper() *Mapper { return d.mapper }

// Add registers a converter.
func (d *DowncastDispatcher) Add(reg DowncastRegistration) {
	d.registry.add(reg.Event, reg.Name, reg.Priority, reg.Handler)
}

// Remove drops every converter registered under the name and reports
// whether any existed.
func (d *DowncastDispatcher) Remove(name string) bool {
	return d.registry.remove(name)
}

// Stats returns how many model items were converted and dropped so far.
func (d *DowncastDispatcher) Stats() (converted, dropped int) {
	return d.converted, d.dropped
}

// ConvertInsert converts all content of a flat model range into the
// view, firing insert and attribute events for every node depth-first.
// The range's parent must already be bound in the mapper.
func (d *DowncastDispatcher) ConvertInsert(r model.Range) error {
	api, err := d.begin()
	if err != nil {
		return err
	}
	defer d.end()
	d.convertRange(api, r)
	return api.err
}

// ConvertMarkerAdd fires the marker addition events for a named range.
func (d *DowncastDispatcher) ConvertMarkerAdd(name string, r model.Range) error {
	api, err := d.begin()
	if err != nil {
		return err
	}
	defer d.end()
	d.fireMarker(api, "addMarker", name, r)
	return api.err
}

// ConvertMarkerRemove fires the marker removal events for a named range.
func (d *DowncastDispatcher) ConvertMarkerRemove(name string, r model.Range) error {
	api, err := d.begin()
	if err != nil {
		return err
	}
	defer d.end()
	d.fireMarker(api, "removeMarker", name, r)
	return api.err
}

// Dispatch consumes buffered model change notifications in order and
// applies each to the view. Structural changes intersecting a marker
// range refresh that marker's highlight: the marker is re-converted so
// wrapping boundaries never go stale.
func (d *DowncastDispatcher) Dispatch(doc *model.Document, changes []model.Change) error {
	for _, c := range changes {
		if err := d.dispatchChange(doc, c); err != nil {
			return err
		}
	}
	return nil
}

func (d *DowncastDispatcher) dispatchChange(doc *model.Document, c model.Change) error {
	switch c.Type {
	case model.ChangeInsert:
		markers := d.affectedMarkers(doc, c.Parent, c.Offset, c.Length)
		if err := d.refreshMarkersRemove(markers); err != nil {
			return err
		}
		r := model.NewRange(
			model.NewPosition(c.Parent, c.Offset),
			model.NewPosition(c.Parent, c.Offset+c.Length),
		)
		if err := d.ConvertInsert(r); err != nil {
			return err
		}
		return d.refreshMarkersAdd(markers)

	case model.ChangeRemove:
		markers := d.affectedMarkers(doc, c.Parent, c.Offset, 1)
		if err := d.refreshMarkersRemove(markers); err != nil {
			return err
		}
		api, err := d.begin()
		if err != nil {
			return err
		}
		data := &DowncastData{
			Position: model.NewPosition(c.Parent, c.Offset),
			Length:   c.Length,
		}
		d.fire(api, data, "remove")
		d.end()
		if api.err != nil {
			return api.err
		}
		return d.refreshMarkersAdd(markers)

	case model.ChangeAttribute:
		api, err := d.begin()
		if err != nil {
			return err
		}
		defer d.end()
		// The recorded span, not the node, locates the change: a later
		// text merge may have absorbed the node itself.
		r := model.NewRange(
			model.NewPosition(c.Parent, c.Offset),
			model.NewPosition(c.Parent, c.Offset+c.Length),
		)
		d.convertAttribute(api, c.Node, r, c.Key, c.Old, c.New)
		return api.err

	case model.ChangeMarkerAdd:
		return d.ConvertMarkerAdd(c.MarkerName, c.MarkerRange)

	case model.ChangeMarkerRemove:
		return d.ConvertMarkerRemove(c.MarkerName, c.MarkerRange)

	default:
		return fmt.Errorf("conversion: unknown change type %v", c.Type)
	}
}

// affectedMarkers returns markers whose highlight must be rebuilt for an
// edit covering the given span.
func (d *DowncastDispatcher) affectedMarkers(doc *model.Document, parent model.Container, offset, length int) []*model.Marker {
	if doc == nil {
		return nil
	}
	return doc.MarkersIntersecting(parent, offset, length)
}

func (d *DowncastDispatcher) refreshMarkersRemove(markers []*model.Marker) error {
	for _, m := range markers {
		if err := d.ConvertMarkerRemove(m.Name(), m.Range()); err != nil {
			return err
		}
	}
	return nil
}

func (d *DowncastDispatcher) refreshMarkersAdd(markers []*model.Marker) error {
	for _, m := range markers {
		if err := d.ConvertMarkerAdd(m.Name(), m.Range()); err != nil {
			return err
		}
	}
	return nil
}

// begin guards against re-entrant top-level conversion and sets up a
// fresh consumable set.
func (d *DowncastDispatcher) begin() (*DowncastAPI, error) {
	if d.active {
		return nil, ErrConversionActive
	}
	d.active = true
	return &DowncastAPI{
		Mapper:   d.mapper,
		Writer:   d.writer,
		consumed: make(map[consumable]struct{}),
	}, nil
}

func (d *DowncastDispatcher) end() { d.active = false }

// convertRange walks the top-level nodes of a flat range, clipping text
// runs to the covered span: an insert change may address only part of a
// run that merging has since grown around it.
func (d *DowncastDispatcher) convertRange(api *DowncastAPI, r model.Range) {
	for _, n := range r.Nodes() {
		d.convertInsertItem(api, n, r)
	}
}

// convertInsertItem fires the insert event for one node, then its
// attribute events, then recurses into converted elements. A node no
// converter claims is dropped together with its subtree.
func (d *DowncastDispatcher) convertInsertItem(api *DowncastAPI, n model.Node, cover model.Range) {
	key := eventKeyForModel(n)
	r := model.RangeOn(n)
	if _, isText := n.(*model.Text); isText {
		if clipped, ok := r.Intersection(cover); ok {
			r = clipped
		}
	}
	data := &DowncastData{Item: n, Range: r}
	d.fire(api, data, "insert:"+key, "insert")

	if api.TestConsume(n, "insert") {
		// Nothing claimed the insertion: content loss by design.
		d.dropped++
		return
	}
	d.converted++

	for attrKey, value := range nodeAttributes(n) {
		d.convertAttribute(api, n, r, attrKey, nil, value)
	}

	if e, ok := n.(*model.Element); ok {
		inner := model.RangeIn(e)
		for _, c := range e.Children() {
			d.convertInsertItem(api, c, inner)
		}
	}
}

// convertAttribute fires "attribute:<key>:<name>" and "attribute:<key>"
// for the given model span.
func (d *DowncastDispatcher) convertAttribute(api *DowncastAPI, n model.Node, r model.Range, key string, oldVal, newVal any) {
	data := &DowncastData{
		Item:  n,
		Range: r,
		Key:   key,
		Old:   oldVal,
		New:   newVal,
	}
	itemKey := eventKeyForModel(n)
	d.fire(api, data, "attribute:"+key+":"+itemKey, "attribute:"+key)
}

// fireMarker fires "<event>:<name>" and "<event>".
func (d *DowncastDispatcher) fireMarker(api *DowncastAPI, event, name string, r model.Range) {
	data := &DowncastData{MarkerName: name, MarkerRange: r}
	d.fire(api, data, event+":"+name, event)
}

// fire runs the merged converter chain for the event keys.
func (d *DowncastDispatcher) fire(api *DowncastAPI, data *DowncastData, keys ...string) {
	ev := &EventInfo{Name: keys[0]}
	for _, l := range d.registry.matching(keys...) {
		l.handler(ev, data, api)
		if ev.Stopped() || api.err != nil {
			break
		}
	}
}

// nodeAttributes reads the attribute map off either model node type.
func nodeAttributes(n model.Node) map[string]any {
	switch t := n.(type) {
	case *model.Element:
		return t.Attributes()
	case *model.Text:
		return t.Attributes()
	default:
		return nil
	}
}

// downcastTextRegistration is the built-in converter inserting view text
// for model text.
func downcastTextRegistration() DowncastRegistration {
	return DowncastRegistration{
		Name:     "$text",
		Event:    "insert:$text",
		Priority: PriorityLow,
		Handler: func(ev *EventInfo, data *DowncastData, api *DowncastAPI) {
			text, ok := data.Item.(*model.Text)
			if !ok {
				return
			}
			if !api.Consume(text, "insert") {
				return
			}
			// Only the covered characters are inserted; data.Range may
			// address a slice of a larger merged run.
			runes := []rune(text.Data())
			start := data.Range.Start.Offset - text.StartOffset()
			end := data.Range.End.Offset - text.StartOffset()
			if start < 0 {
				start = 0
			}
			if end > len(runes) {
				end = len(runes)
			}
			if start >= end {
				return
			}
			pos, err := api.Mapper.ToViewPosition(data.Range.Start)
			if err != nil {
				return
			}
			_, _ = api.Writer.InsertAt(pos, api.Writer.CreateText(string(runes[start:end])))
		},
	}
}

// downcastRemoveRegistration is the built-in converter removing the view
// content corresponding to removed model content and unbinding every
// element pair inside it.
func downcastRemoveRegistration() DowncastRegistration {
	return DowncastRegistration{
		Name:     "$remove",
		Event:    "remove",
		Priority: PriorityLow,
		Handler: func(ev *EventInfo, data *DowncastData, api *DowncastAPI) {
			r := model.NewRange(
				data.Position,
				model.NewPosition(data.Position.Parent, data.Position.Offset+data.Length),
			)
			parent, from, to, err := breakModelRange(api, r)
			if err != nil {
				// Unmapped content was never downcast; nothing to remove.
				return
			}
			removed, err := api.Writer.RemoveChildren(parent, from, to-from)
			if err != nil {
				api.Fail(err)
				return
			}
			for _, n := range removed {
				unbindSubtree(api.Mapper, n)
			}
		},
	}
}

// unbindSubtree removes mapper entries for an element and everything
// below it. Removal conversion triggers this so stale pairs never
// survive content removal.
func unbindSubtree(m *Mapper, n view.Node) {
	e, ok := n.(*view.Element)
	if !ok {
		return
	}
	m.UnbindViewElement(e)
	for _, c := range e.Children() {
		unbindSubtree(m, c)
	}
}
