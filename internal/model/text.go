package model

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Text is an immutable run of characters with an attribute map. The model
// never stores attributes per character; adjacent sibling texts with equal
// attribute sets are merged by the Writer so the invariant "no two sibling
// Text nodes are merge-compatible and unmerged" holds after every mutation.
type Text struct {
	parent Container
	data   string
	attrs  map[string]any
}

// newText constructs a detached text node. Only the Writer creates text
// nodes; see Writer.CreateText.
func newText(data string, attrs map[string]any) *Text {
	t := &Text{data: data}
	for k, v := range attrs {
		t.setAttribute(k, v)
	}
	return t
}

// Data returns the character data.
func (t *Text) Data() string { return t.data }

// Parent implements Node.
func (t *Text) Parent() Container { return t.parent }

// Index implements Node.
func (t *Text) Index() int {
	if t.parent == nil {
		return -1
	}
	return t.parent.childIndex(t)
}

// StartOffset implements Node.
func (t *Text) StartOffset() int {
	if t.parent == nil {
		return -1
	}
	return startOffsetIn(t.parent.Children(), t.Index())
}

// OffsetSize implements Node. A text node occupies one offset per
// character.
func (t *Text) OffsetSize() int { return utf8.RuneCountInString(t.data) }

// Root implements Node.
func (t *Text) Root() Container { return rootOf(t) }

// Attribute returns the value stored under key and whether it exists.
func (t *Text) Attribute(key string) (any, bool) {
	v, ok := t.attrs[key]
	return v, ok
}

// HasAttribute returns true if the attribute is set.
func (t *Text) HasAttribute(key string) bool {
	_, ok := t.attrs[key]
	return ok
}

// Attributes returns a copy of the attribute map.
func (t *Text) Attributes() map[string]any {
	out := make(map[string]any, len(t.attrs))
	for k, v := range t.attrs {
		out[k] = v
	}
	return out
}

// AttributeKeys returns the attribute keys in sorted order.
func (t *Text) AttributeKeys() []string {
	keys := make([]string, 0, len(t.attrs))
	for k := range t.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a compact representation for debugging and tests.
func (t *Text) String() string {
	return fmt.Sprintf("#text(%q)", t.data)
}

func (t *Text) setParent(c Container) { t.parent = c }

func (t *Text) setAttribute(key string, value any) {
	if t.attrs == nil {
		t.attrs = make(map[string]any)
	}
	t.attrs[key] = value
}

func (t *Text) removeAttribute(key string) bool {
	if _, ok := t.attrs[key]; !ok {
		return false
	}
	delete(t.attrs, key)
	return true
}

// attributesEqual reports whether two attribute maps hold the same keys
// and values. Values are compared with ==, which covers the scalar values
// converters produce.
func attributesEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || av != bv {
			return false
		}
	}
	return true
}

// mergeCompatible reports whether two sibling texts can be represented as
// a single node.
func mergeCompatible(a, b *Text) bool {
	return attributesEqual(a.attrs, b.attrs)
}
