package conversion

import "sort"

// EventInfo accompanies every converter invocation. A converter stops
// the remaining chain for the current event by calling Stop; there is no
// implicit bubbling.
type EventInfo struct {
	// Name is the fired event key, e.g. "element:p" or "insert:$text".
	Name string

	stopped bool
}

// Stop prevents converters later in the chain from running for this
// event.
func (e *EventInfo) Stop() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *EventInfo) Stopped() bool { return e.stopped }

// listener is a registered converter: a named, priority-tagged handler
// bound to one event key.
type listener[H any] struct {
	name     string
	priority Priority
	seq      int
	handler  H
}

// registry stores converter chains per event key. Invocation order is
// ascending priority, registration order within equal priorities.
type registry[H any] struct {
	seq       int
	listeners map[string][]listener[H]
}

func newRegistry[H any]() *registry[H] {
	return &registry[H]{listeners: make(map[string][]listener[H])}
}

// add registers a handler under the event key.
func (r *registry[H]) add(event, name string, p Priority, h H) {
	r.seq++
	r.listeners[event] = append(r.listeners[event], listener[H]{
		name:     name,
		priority: p,
		seq:      r.seq,
		handler:  h,
	})
}

// remove drops all handlers registered under the name, across all
// events, and reports whether any existed.
func (r *registry[H]) remove(name string) bool {
	found := false
	for event, ls := range r.listeners {
		kept := ls[:0]
		for _, l := range ls {
			if l.name == name {
				found = true
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) == 0 {
			delete(r.listeners, event)
		} else {
			r.listeners[event] = kept
		}
	}
	return found
}

// matching returns the merged converter chain for the given event keys,
// stable-sorted by priority then registration order. Callers pass the
// specific key first and the generic key second, e.g. "element:p" and
// "element"; both chains fire for the event.
func (r *registry[H]) matching(keys ...string) []listener[H] {
	var out []listener[H]
	for _, k := range keys {
		out = append(out, r.listeners[k]...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}
