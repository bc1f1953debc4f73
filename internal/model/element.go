package model

import (
	"fmt"
	"sort"
	"strings"
)

// Element is a named model node owning an ordered child sequence and an
// attribute map. Elements are created by a Writer and mutated only
// through one.
type Element struct {
	name     string
	parent   Container
	children []Node
	attrs    map[string]any
}

// newElement constructs a detached element. Only the Writer creates
// elements; see Writer.CreateElement.
func newElement(name string, attrs map[string]any) *Element {
	e := &Element{name: name}
	for k, v := range attrs {
		e.setAttribute(k, v)
	}
	return e
}

// Name returns the element name. The name is immutable; renaming is a
// Writer operation that produces a new element.
func (e *Element) Name() string { return e.name }

// Parent implements Node.
func (e *Element) Parent() Container { return e.parent }

// Index implements Node.
func (e *Element) Index() int {
	if e.parent == nil {
		return -1
	}
	return e.parent.childIndex(e)
}

// StartOffset implements Node.
func (e *Element) StartOffset() int {
	if e.parent == nil {
		return -1
	}
	return startOffsetIn(e.parent.Children(), e.Index())
}

// OffsetSize implements Node. An element occupies a single offset in its
// parent regardless of its own content.
func (e *Element) OffsetSize() int { return 1 }

// Root implements Node. A detached element is its own root.
func (e *Element) Root() Container {
	if r := rootOf(e); r != nil {
		return r
	}
	return e
}

// ChildCount implements Container.
func (e *Element) ChildCount() int { return len(e.children) }

// Child implements Container.
func (e *Element) Child(index int) Node {
	if index < 0 || index >= len(e.children) {
		return nil
	}
	return e.children[index]
}

// Children implements Container.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// MaxOffset implements Container.
func (e *Element) MaxOffset() int { return maxOffsetOf(e.children) }

// IsEmpty implements Container.
func (e *Element) IsEmpty() bool { return len(e.children) == 0 }

// Attribute returns the value stored under key and whether it exists.
func (e *Element) Attribute(key string) (any, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// HasAttribute returns true if the attribute is set.
func (e *Element) HasAttribute(key string) bool {
	_, ok := e.attrs[key]
	return ok
}

// Attributes returns a copy of the attribute map.
func (e *Element) Attributes() map[string]any {
	out := make(map[string]any, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out
}

// AttributeKeys returns the attribute keys in sorted order.
func (e *Element) AttributeKeys() []string {
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a compact representation for debugging and tests.
func (e *Element) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s", e.name)
	for _, k := range e.AttributeKeys() {
		fmt.Fprintf(&b, " %s=%v", k, e.attrs[k])
	}
	b.WriteString(">")
	return b.String()
}

func (e *Element) setParent(c Container) { e.parent = c }

func (e *Element) setAttribute(key string, value any) {
	if e.attrs == nil {
		e.attrs = make(map[string]any)
	}
	e.attrs[key] = value
}

// removeAttribute deletes the attribute and reports whether it existed.
func (e *Element) removeAttribute(key string) bool {
	if _, ok := e.attrs[key]; !ok {
		return false
	}
	delete(e.attrs, key)
	return true
}

func (e *Element) insertChildren(index int, nodes []Node) {
	e.children = append(e.children[:index], append(append([]Node{}, nodes...), e.children[index:]...)...)
	for _, n := range nodes {
		n.setParent(e)
	}
}

func (e *Element) removeChildren(index, count int) []Node {
	removed := make([]Node, count)
	copy(removed, e.children[index:index+count])
	e.children = append(e.children[:index], e.children[index+count:]...)
	for _, n := range removed {
		n.setParent(nil)
	}
	return removed
}

func (e *Element) childIndex(n Node) int { return childIndexOf(e.children, n) }

// RootElement is an Element acting as a named document root. Roots are
// created by the Document and never detached.
type RootElement struct {
	Element
	doc      *Document
	rootName string
}

// insertChildren overrides the embedded implementation so the children's
// parent link points at the RootElement, not the embedded Element.
func (r *RootElement) insertChildren(index int, nodes []Node) {
	r.Element.insertChildren(index, nodes)
	for _, n := range nodes {
		n.setParent(r)
	}
}

// RootName returns the name the root is registered under in its Document.
func (r *RootElement) RootName() string { return r.rootName }

// Document returns the owning document.
func (r *RootElement) Document() *Document { return r.doc }

// Root implements Node. A root element is always its own root.
func (r *RootElement) Root() Container { return r }
