package view

import (
	"errors"
	"testing"
)

func textOf(t *testing.T, n Node) string {
	t.Helper()
	txt, ok := n.(*Text)
	if !ok {
		t.Fatalf("expected text node, got %T", n)
	}
	return txt.Data()
}

func TestInsertChildMergesTextRuns(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)

	if _, err := w.Append(p, w.CreateText("foo")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(p, w.CreateText("bar")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if p.ChildCount() != 1 {
		t.Fatalf("expected 1 merged child, got %d", p.ChildCount())
	}
	if got := textOf(t, p.Child(0)); got != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", got)
	}
}

func TestInsertChildRejectsAttachedNode(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	q := w.CreateElement("p", nil)
	text := w.CreateText("x")
	if _, err := w.Append(p, text); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	_, err := w.Append(q, text)
	if !errors.Is(err, ErrInvalidInsertion) {
		t.Errorf("expected ErrInvalidInsertion, got %v", err)
	}
}

func TestBreakAtSplitsTextRun(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	text := w.CreateText("foobar")
	if _, err := w.Append(p, text); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	boundary, err := w.BreakAt(NewPosition(text, 3))
	if err != nil {
		t.Fatalf("break failed: %v", err)
	}
	if c, _ := boundary.Container(); c != Container(p) || boundary.Offset != 1 {
		t.Errorf("expected boundary (p,1), got (%v,%d)", boundary.Parent, boundary.Offset)
	}
	if p.ChildCount() != 2 {
		t.Fatalf("expected 2 runs, got %d", p.ChildCount())
	}
	if textOf(t, p.Child(0)) != "foo" || textOf(t, p.Child(1)) != "bar" {
		t.Error("unexpected split content")
	}
}

func TestBreakAtTextEdgeDoesNotSplit(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	text := w.CreateText("foo")
	if _, err := w.Append(p, text); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	boundary, err := w.BreakAt(NewPosition(text, 0))
	if err != nil {
		t.Fatalf("break failed: %v", err)
	}
	if boundary.Offset != 0 || p.ChildCount() != 1 {
		t.Errorf("expected edge position without split, got offset %d, %d children", boundary.Offset, p.ChildCount())
	}
}

func TestInsertAtSplitsText(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	text := w.CreateText("foobar")
	if _, err := w.Append(p, text); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if _, err := w.InsertAt(NewPosition(text, 3), w.CreateElement("br", nil)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if p.ChildCount() != 3 {
		t.Fatalf("expected 3 children, got %d", p.ChildCount())
	}
	if el, ok := p.Child(1).(*Element); !ok || el.Name() != "br" {
		t.Errorf("expected br at index 1, got %v", p.Child(1))
	}
}

func TestRemoveMergesSeam(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	strong := w.CreateElement("strong", nil)
	if _, err := w.Append(p, w.CreateText("foo"), strong, w.CreateText("bar")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	w.Remove(strong)
	if p.ChildCount() != 1 {
		t.Fatalf("expected merged single run, got %d", p.ChildCount())
	}
	if got := textOf(t, p.Child(0)); got != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", got)
	}
}

func TestRemoveDetachedIsNoOp(t *testing.T) {
	w := NewWriter()
	if got := w.Remove(w.CreateElement("span", nil)); got != nil {
		t.Errorf("expected nil for detached removal, got %v", got)
	}
}

func TestWrapMovesContent(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	if _, err := w.Append(p, w.CreateText("foobar")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	boundary, err := w.BreakAt(NewPosition(p.Child(0).(*Text), 3))
	if err != nil {
		t.Fatalf("break failed: %v", err)
	}

	wrapper, err := w.Wrap(p, 0, boundary.Offset, w.CreateElement("strong", nil))
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	if p.ChildCount() != 2 || p.Child(0) != Node(wrapper) {
		t.Fatalf("expected wrapper at index 0, got %d children", p.ChildCount())
	}
	if got := textOf(t, wrapper.Child(0)); got != "foo" {
		t.Errorf("expected wrapped %q, got %q", "foo", got)
	}
}

func TestWrapMergesIntoSimilarLeftNeighbor(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	left := w.CreateElement("strong", nil)
	if _, err := w.Append(left, w.CreateText("foo")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(p, left); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(p, w.CreateText("bar")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	wrapper, err := w.Wrap(p, 1, 2, w.CreateElement("strong", nil))
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}
	if wrapper != left {
		t.Error("expected content merged into the existing wrapper")
	}
	if p.ChildCount() != 1 {
		t.Fatalf("expected 1 child after merge, got %d", p.ChildCount())
	}
	if got := textOf(t, left.Child(0)); got != "foobar" {
		t.Errorf("expected %q inside wrapper, got %q", "foobar", got)
	}
}

func TestUnwrapMergesSeams(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	strong := w.CreateElement("strong", nil)
	if _, err := w.Append(strong, w.CreateText("oob")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(p, w.CreateText("f"), strong, w.CreateText("ar")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	w.Unwrap(strong)
	if p.ChildCount() != 1 {
		t.Fatalf("expected merged single run, got %d", p.ChildCount())
	}
	if got := textOf(t, p.Child(0)); got != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", got)
	}
}

func TestRemoveClassIsIdempotent(t *testing.T) {
	w := NewWriter()
	e := w.CreateElement("span", nil)
	w.AddClass(e, "quote")

	if !w.RemoveClass(e, "quote") {
		t.Error("expected first removal to report true")
	}
	if w.RemoveClass(e, "quote") {
		t.Error("expected second removal to report false")
	}
	if e.HasClass("quote") {
		t.Error("expected class gone")
	}
}

func TestRenameKeepsCollections(t *testing.T) {
	w := NewWriter()
	p := w.CreateElement("p", nil)
	span := w.CreateElement("span", map[string]string{"data-id": "7"})
	w.AddClass(span, "note")
	if _, err := w.Append(p, span); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(span, w.CreateText("x")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	mark := w.Rename(span, "mark")
	if mark == nil || mark.Name() != "mark" {
		t.Fatalf("expected renamed element, got %v", mark)
	}
	if v, _ := mark.Attribute("data-id"); v != "7" {
		t.Error("expected attribute carried over")
	}
	if !mark.HasClass("note") {
		t.Error("expected class carried over")
	}
	if mark.ChildCount() != 1 {
		t.Error("expected children moved")
	}
	if got := w.Rename(w.CreateElement("i", nil), "em"); got != nil {
		t.Error("expected nil for detached rename")
	}
}

func TestIsSimilarIgnoresChildren(t *testing.T) {
	w := NewWriter()
	a := w.CreateElement("span", map[string]string{"data-x": "1"})
	w.AddClass(a, "hl")
	b := w.CreateElement("span", map[string]string{"data-x": "1"})
	w.AddClass(b, "hl")
	if _, err := w.Append(b, w.CreateText("content")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if !a.IsSimilar(b) {
		t.Error("expected elements with equal attributes to be similar")
	}
	w.SetStyle(b, "color", "red")
	if a.IsSimilar(b) {
		t.Error("expected style difference to break similarity")
	}
}
