package conversion

import (
	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/view"
)

// highlightProperty is the custom property carrying the owning marker
// name on highlight wrapper elements. Custom properties are
// non-serializable, so the marker identity never leaks into output
// markup.
const highlightProperty = "highlight"

// HighlightDescriptor describes the view element a marker range is
// wrapped in.
type HighlightDescriptor struct {
	// Name is the wrapper element name; empty defaults to "span".
	Name string

	// Classes are added to the wrapper.
	Classes []string

	// Attributes are set on the wrapper.
	Attributes map[string]string
}

// element builds a fresh detached wrapper. Every wrapped run needs its
// own instance since view nodes cannot be attached twice.
func (h HighlightDescriptor) element(w *view.Writer, marker string) *view.Element {
	name := h.Name
	if name == "" {
		name = "span"
	}
	e := w.CreateElement(name, h.Attributes)
	for _, c := range h.Classes {
		w.AddClass(e, c)
	}
	w.SetCustomProperty(e, highlightProperty, marker)
	return e
}

// MarkerToHighlight builds the add/remove converter pair wrapping the
// named marker's range in highlight elements. The addMarker converter
// computes the intersection of the marker range with the existing view
// structure and wraps every covered inline run; the removeMarker
// converter finds the wrappers by their marker custom property and
// unwraps them, so stale ranges cannot leave stale boundaries behind.
// Structural changes intersecting the marker range re-fire both events
// (see DowncastDispatcher.Dispatch), which re-splits and re-merges the
// highlight spans.
func MarkerToHighlight(marker string, desc HighlightDescriptor) []DowncastRegistration {
	return []DowncastRegistration{
		{
			Name:     "highlight:" + marker,
			Event:    "addMarker:" + marker,
			Priority: PriorityNormal,
			Handler: func(ev *EventInfo, data *DowncastData, api *DowncastAPI) {
				if !api.ConsumeMarker(data.MarkerName, "addMarker") {
					return
				}
				if data.MarkerRange.IsCollapsed() {
					return
				}
				wrapModelRange(api, data.MarkerRange, func() *view.Element {
					return desc.element(api.Writer, data.MarkerName)
				})
			},
		},
		{
			Name:     "highlight:" + marker,
			Event:    "removeMarker:" + marker,
			Priority: PriorityNormal,
			Handler: func(ev *EventInfo, data *DowncastData, api *DowncastAPI) {
				if !api.ConsumeMarker(data.MarkerName, "removeMarker") {
					return
				}
				root := highlightSearchRoot(api.Mapper, data.MarkerRange)
				if root == nil {
					return
				}
				unwrapHighlights(api, root, data.MarkerName)
			},
		},
	}
}

// highlightSearchRoot resolves the view container to scan for wrappers:
// the binding of the marker range's parent, or of its nearest bound
// ancestor.
func highlightSearchRoot(m *Mapper, r model.Range) view.Container {
	parent := r.Start.Parent
	for parent != nil {
		if ve := m.ToViewElement(parent); ve != nil {
			return ve
		}
		n, ok := parent.(model.Node)
		if !ok {
			return nil
		}
		parent = n.Parent()
	}
	return nil
}

// unwrapHighlights unwraps every element in the subtree whose highlight
// property names the marker.
func unwrapHighlights(api *DowncastAPI, root view.Container, marker string) {
	// Children re-read per iteration: unwrapping mutates the sequence.
	for i := 0; i < root.ChildCount(); {
		e, ok := root.Child(i).(*view.Element)
		if !ok {
			i++
			continue
		}
		if prop, has := e.CustomProperty(highlightProperty); has && prop == marker {
			api.Writer.Unwrap(e)
			// Stay at the same index: the unwrapped content takes the
			// wrapper's place and may itself hold nested highlights.
			continue
		}
		unwrapHighlights(api, e, marker)
		i++
	}
}
