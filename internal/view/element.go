package view

import (
	"fmt"
	"sort"
	"strings"
)

// Element is a named view node with attribute, class and style
// collections plus a custom-property map for non-serializable metadata.
// The name is immutable after construction; renaming is a Writer
// operation producing a new element.
type Element struct {
	name     string
	parent   Container
	children []Node
	attrs    map[string]string
	classes  map[string]struct{}
	styles   map[string]string
	custom   map[string]any
}

// newElement constructs a detached element. Only the Writer creates
// elements; see Writer.CreateElement.
func newElement(name string, attrs map[string]string) *Element {
	e := &Element{name: name}
	for k, v := range attrs {
		e.setAttribute(k, v)
	}
	return e
}

// Name returns the element name.
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

// IsEmpty implements Container.
func (e *Element) IsEmpty() bool { return len(e.children) == 0 }

// Attribute returns the plain attribute stored under key. Classes and
// styles are held in their own collections, not here.
func (e *Element) Attribute(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// HasAttribute returns true if the plain attribute is set.
func (e *Element) HasAttribute(key string) bool {
	_, ok := e.attrs[key]
	return ok
}

// AttributeKeys returns the plain attribute keys in sorted order.
func (e *Element) AttributeKeys() []string {
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasClass returns true if the class is present.
func (e *Element) HasClass(class string) bool {
	_, ok := e.classes[class]
	return ok
}

// Classes returns the class names in sorted order.
func (e *Element) Classes() []string {
	out := make([]string, 0, len(e.classes))
	for c := range e.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Style returns the style value stored under the property name.
func (e *Element) Style(name string) (string, bool) {
	v, ok := e.styles[name]
	return v, ok
}

// StyleNames returns the style property names in sorted order.
func (e *Element) StyleNames() []string {
	out := make([]string, 0, len(e.styles))
	for s := range e.styles {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// CustomProperty returns the non-serializable metadata stored under key.
func (e *Element) CustomProperty(key string) (any, bool) {
	v, ok := e.custom[key]
	return v, ok
}

// IsSimilar reports whether two elements would render the same markup
// tag: same name and equal attribute, class and style sets. Children are
// not compared. Highlight conversion uses this to merge adjacent
// wrappers.
func (e *Element) IsSimilar(other *Element) bool {
	if other == nil || e.name != other.name {
		return false
	}
	if len(e.attrs) != len(other.attrs) || len(e.classes) != len(other.classes) || len(e.styles) != len(other.styles) {
		return false
	}
	for k, v := range e.attrs {
		if ov, ok := other.attrs[k]; !ok || ov != v {
			return false
		}
	}
	for c := range e.classes {
		if _, ok := other.classes[c]; !ok {
			return false
		}
	}
	for s, v := range e.styles {
		if ov, ok := other.styles[s]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String returns a compact representation for debugging and tests.
func (e *Element) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s", e.name)
	if len(e.classes) > 0 {
		fmt.Fprintf(&b, " class=%q", strings.Join(e.Classes(), " "))
	}
	for _, k := range e.AttributeKeys() {
		fmt.Fprintf(&b, " %s=%q", k, e.attrs[k])
	}
	b.WriteString(">")
	return b.String()
}

func (e *Element) setParent(c Container) { e.parent = c }

func (e *Element) setAttribute(key, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = value
}

func (e *Element) removeAttribute(key string) bool {
	if _, ok := e.attrs[key]; !ok {
		return false
	}
	delete(e.attrs, key)
	return true
}

func (e *Element) addClass(class string) {
	if e.classes == nil {
		e.classes = make(map[string]struct{})
	}
	e.classes[class] = struct{}{}
}

func (e *Element) removeClass(class string) bool {
	if _, ok := e.classes[class]; !ok {
		return false
	}
	delete(e.classes, class)
	return true
}

func (e *Element) setStyle(name, value string) {
	if e.styles == nil {
		e.styles = make(map[string]string)
	}
	e.styles[name] = value
}

func (e *Element) removeStyle(name string) bool {
	if _, ok := e.styles[name]; !ok {
		return false
	}
	delete(e.styles, name)
	return true
}

func (e *Element) setCustomProperty(key string, value any) {
	if e.custom == nil {
		e.custom = make(map[string]any)
	}
	e.custom[key] = value
}

func (e *Element) removeCustomProperty(key string) bool {
	if _, ok := e.custom[key]; !ok {
		return false
	}
	delete(e.custom, key)
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
