package conversion

import (
	"fmt"

	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/view"
)

// Declarative converter builders. Each helper is a plain function
// producing a named, priority-tagged registration to attach to a
// dispatcher; no mutable state is captured beyond the declared
// configuration.

// UpcastElementToElement maps a view element name to a model element
// name, converting children into the new element. Registration name is
// "<viewName>->​<modelName>" unless overridden after construction.
func UpcastElementToElement(viewName, modelName string) UpcastRegistration {
	return UpcastRegistration{
		Name:     "upcast:" + viewName + "->" + modelName,
		Event:    "element:" + viewName,
		Priority: PriorityNormal,
		Handler: func(ev *EventInfo, data *UpcastData, api *UpcastAPI) {
			el, ok := data.ViewItem.(*view.Element)
			if !ok || data.ModelRange != nil {
				return
			}
			if !api.CheckChild(data.ModelCursor.Parent, modelName) {
				return
			}
			if !api.Consume(el, "element") {
				return
			}
			me := api.Writer.CreateElement(modelName, nil)
			if _, err := api.Writer.Insert(data.ModelCursor, me); err != nil {
				api.Fail(err)
				return
			}
			api.ConvertChildren(el, model.NewPosition(me, 0))
			r := model.RangeOn(me)
			data.ModelRange = &r
		},
	}
}

// UpcastElementToAttribute maps a view element (e.g. "strong") to a
// model attribute applied to the converted children (e.g. bold=true).
// The element itself produces no model node; its children are converted
// in place and enriched.
func UpcastElementToAttribute(viewName, key string, value any) UpcastRegistration {
	return UpcastRegistration{
		Name:     "upcast:" + viewName + "->@" + key,
		Event:    "element:" + viewName,
		Priority: PriorityNormal,
		Handler: func(ev *EventInfo, data *UpcastData, api *UpcastAPI) {
			el, ok := data.ViewItem.(*view.Element)
			if !ok || data.ModelRange != nil {
				return
			}
			if !api.Consume(el, "element") {
				return
			}
			start := data.ModelCursor
			end := api.ConvertChildren(el, start)
			r := model.NewRange(start, end)
			SetAttributeOnRange(api.Writer, r, key, value)
			data.ModelRange = &r
		},
	}
}

// UpcastAttributeToAttribute copies a view attribute or class onto the
// model content a structure converter already produced for the same
// element. It runs at low priority so the structural conversion happens
// first; when nothing claimed the element the enrichment is dropped with
// the rest of it.
//
// ViewClass and ViewAttribute are alternatives; exactly one should be
// set. Value defaults to the raw attribute value (or true for classes).
type UpcastAttributeConfig struct {
	// ViewName restricts the converter to one element name; empty
	// matches any element.
	ViewName string

	// ViewAttribute is the view attribute to consume.
	ViewAttribute string

	// ViewClass is the view class to consume.
	ViewClass string

	// ModelKey is the model attribute to set.
	ModelKey string

	// Value computes the model value from the element. Nil uses the raw
	// attribute value, or true for a class.
	Value func(*view.Element) any
}

// UpcastAttributeToAttribute builds the registration for the config.
func UpcastAttributeToAttribute(cfg UpcastAttributeConfig) UpcastRegistration {
	event := "element"
	if cfg.ViewName != "" {
		event = "element:" + cfg.ViewName
	}
	return UpcastRegistration{
		Name:     "upcast:@" + cfg.ModelKey,
		Event:    event,
		Priority: PriorityLow,
		Handler: func(ev *EventInfo, data *UpcastData, api *UpcastAPI) {
			el, ok := data.ViewItem.(*view.Element)
			if !ok || data.ModelRange == nil {
				return
			}
			var value any
			switch {
			case cfg.ViewClass != "":
				if !el.HasClass(cfg.ViewClass) || !api.Consume(el, "class:"+cfg.ViewClass) {
					return
				}
				value = true
			case cfg.ViewAttribute != "":
				raw, ok := el.Attribute(cfg.ViewAttribute)
				if !ok || !api.Consume(el, "attribute:"+cfg.ViewAttribute) {
					return
				}
				value = raw
			default:
				return
			}
			if cfg.Value != nil {
				value = cfg.Value(el)
			}
			SetAttributeOnRange(api.Writer, *data.ModelRange, cfg.ModelKey, value)
		},
	}
}

// DowncastElementToElement maps a model element name to a view element
// name, inserting the view element at the translated position and
// binding the pair in the mapper.
func DowncastElementToElement(modelName, viewName string) DowncastRegistration {
	return DowncastRegistration{
		Name:     "downcast:" + modelName + "->" + viewName,
		Event:    "insert:" + modelName,
		Priority: PriorityNormal,
		Handler: func(ev *EventInfo, data *DowncastData, api *DowncastAPI) {
			me, ok := data.Item.(*model.Element)
			if !ok {
				return
			}
			if !api.Consume(me, "insert") {
				return
			}
			pos, err := api.Mapper.ToViewPosition(data.Range.Start)
			if err != nil {
				api.Fail(err)
				return
			}
			ve := api.Writer.CreateElement(viewName, nil)
			if _, err := api.Writer.InsertAt(pos, ve); err != nil {
				api.Fail(err)
				return
			}
			if err := api.Mapper.BindElements(me, ve); err != nil {
				api.Fail(err)
			}
		},
	}
}

// DowncastAttributeToElement wraps the view content of a model text run
// carrying the attribute in a view element, e.g. bold=true -> <strong>.
// Removing the attribute unwraps it again.
func DowncastAttributeToElement(key, viewName string) DowncastRegistration {
	return DowncastRegistration{
		Name:     "downcast:@" + key + "->" + viewName,
		Event:    "attribute:" + key + ":$text",
		Priority: PriorityNormal,
		Handler: func(ev *EventInfo, data *DowncastData, api *DowncastAPI) {
			if !api.Consume(data.Item, "attribute:"+key) {
				return
			}
			if data.New != nil {
				wrapModelRange(api, data.Range, func() *view.Element {
					return api.Writer.CreateElement(viewName, nil)
				})
				return
			}
			unwrapModelRange(api, data.Range, func(e *view.Element) bool {
				return e.Name() == viewName
			})
		},
	}
}

// DowncastAttributeToAttribute maps a model element attribute to a plain
// view attribute on the bound element.
func DowncastAttributeToAttribute(modelName, key, viewAttribute string) DowncastRegistration {
	return DowncastRegistration{
		Name:     "downcast:" + modelName + "@" + key,
		Event:    "attribute:" + key + ":" + modelName,
		Priority: PriorityNormal,
		Handler: func(ev *EventInfo, data *DowncastData, api *DowncastAPI) {
			me, ok := data.Item.(*model.Element)
			if !ok {
				return
			}
			ve, ok := api.Mapper.ToViewElement(me).(*view.Element)
			if !ok || ve == nil {
				return
			}
			if !api.Consume(me, "attribute:"+key) {
				return
			}
			if data.New == nil {
				api.Writer.RemoveAttribute(ve, viewAttribute)
				return
			}
			api.Writer.SetAttribute(ve, viewAttribute, fmt.Sprintf("%v", data.New))
		},
	}
}

// breakModelRange translates a flat model range into a broken view child
// span: text runs at the boundaries are split so [from, to) addresses
// whole children of the returned container.
func breakModelRange(api *DowncastAPI, r model.Range) (view.Container, int, int, error) {
	// End first, then start; every break can split a text run and shift
	// later indexes, so each boundary is re-translated from the model
	// after the previous structural step.
	end, err := api.Mapper.ToViewPosition(r.End)
	if err != nil {
		return nil, 0, 0, err
	}
	if _, err := api.Writer.BreakAt(end); err != nil {
		return nil, 0, 0, err
	}
	start, err := api.Mapper.ToViewPosition(r.Start)
	if err != nil {
		return nil, 0, 0, err
	}
	sb, err := api.Writer.BreakAt(start)
	if err != nil {
		return nil, 0, 0, err
	}
	end, err = api.Mapper.ToViewPosition(r.End)
	if err != nil {
		return nil, 0, 0, err
	}
	eb, err := api.Writer.BreakAt(end)
	if err != nil {
		return nil, 0, 0, err
	}
	parent, ok := sb.Container()
	if !ok || sb.Parent != eb.Parent {
		return nil, 0, 0, fmt.Errorf("%w: range endpoints in different view parents", ErrNotMapped)
	}
	return parent, sb.Offset, eb.Offset, nil
}

// wrapModelRange wraps every run of inline view content covered by the
// model range. Bound (block-level) children are skipped; their content
// belongs to their own converters.
func wrapModelRange(api *DowncastAPI, r model.Range, build func() *view.Element) {
	parent, from, to, err := breakModelRange(api, r)
	if err != nil {
		api.Fail(err)
		return
	}
	for i := from; i < to; {
		if !wrappable(api.Mapper, parent.Child(i)) {
			i++
			continue
		}
		j := i
		for j < to && wrappable(api.Mapper, parent.Child(j)) {
			j++
		}
		before := parent.ChildCount()
		wrapper, err := api.Writer.Wrap(parent, i, j, build())
		if err != nil {
			api.Fail(err)
			return
		}
		to -= before - parent.ChildCount()
		if wrapper == nil {
			i = j
			continue
		}
		i = wrapper.Index() + 1
	}
}

// unwrapModelRange unwraps every matching wrapper covered by the model
// range.
func unwrapModelRange(api *DowncastAPI, r model.Range, match func(*view.Element) bool) {
	parent, from, to, err := breakModelRange(api, r)
	if err != nil {
		api.Fail(err)
		return
	}
	for i := from; i < to; {
		e, ok := parent.Child(i).(*view.Element)
		if !ok || !match(e) {
			i++
			continue
		}
		before := parent.ChildCount()
		api.Writer.Unwrap(e)
		// Unwrapping replaces one child with its content and can merge
		// text runs at the seams.
		to += parent.ChildCount() - before
		i++
	}
}

// wrappable reports whether the view node may be moved into an inline
// wrapper: text runs and unbound (inline) elements qualify, bound
// elements are block-level structure.
func wrappable(m *Mapper, n view.Node) bool {
	switch t := n.(type) {
	case *view.Text:
		return true
	case *view.Element:
		return m.ToModelElement(t) == nil
	default:
		return false
	}
}
