package view

import (
	"fmt"
	"unicode/utf8"
)

// Text is a run of characters in the view tree. The data is immutable;
// the Writer splits and merges text by creating new nodes.
type Text struct {
	parent Container
	data   string
}

func newText(data string) *Text {
	return &Text{data: data}
}

// Data returns the character data.
func (t *Text) Data() string { return t.data }

// Size returns the character count, the offset space inside the node.
func (t *Text) Size() int { return utf8.RuneCountInString(t.data) }

// Parent implements Node.
func (t *Text) Parent() Container { return t.parent }

// Index implements Node.
func (t *Text) Index() int {
	if t.parent == nil {
		return -1
	}
	return t.parent.childIndex(t)
}

// Root implements Node.
func (t *Text) Root() Container { return rootOf(t) }

// String returns a compact representation for debugging and tests.
func (t *Text) String() string {
	return fmt.Sprintf("#text(%q)", t.data)
}

func (t *Text) setParent(c Container) { t.parent = c }
