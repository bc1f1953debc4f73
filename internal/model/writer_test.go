package model

import (
	"errors"
	"testing"
)

func newTestDoc(t *testing.T) (*Document, *RootElement) {
	t.Helper()
	doc := NewDocument(nil)
	root, err := doc.CreateRoot("main")
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}
	return doc, root
}

func textData(t *testing.T, n Node) string {
	t.Helper()
	txt, ok := n.(*Text)
	if !ok {
		t.Fatalf("expected text node, got %T", n)
	}
	return txt.Data()
}

func TestInsertChildMergesAdjacentText(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	if _, err := w.Append(root, w.CreateText("foo", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(root, w.CreateText("bar", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if root.ChildCount() != 1 {
		t.Fatalf("expected 1 merged child, got %d", root.ChildCount())
	}
	if got := textData(t, root.Child(0)); got != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", got)
	}
}

func TestInsertChildKeepsDistinctAttributeRuns(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	if _, err := w.Append(root, w.CreateText("foo", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(root, w.CreateText("bar", map[string]any{"bold": true})); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if root.ChildCount() != 2 {
		t.Fatalf("expected 2 children, got %d", root.ChildCount())
	}
}

func TestInsertChildRejectsAttachedNode(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	text := w.CreateText("foo", nil)
	if _, err := w.Append(root, text); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	para := w.CreateElement("paragraph", nil)
	if _, err := w.Append(root, para); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	_, err := w.InsertChild(para, 0, root.Child(0))
	if !errors.Is(err, ErrInvalidInsertion) {
		t.Errorf("expected ErrInvalidInsertion, got %v", err)
	}
}

func TestInsertSplitsTextRun(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	if _, err := w.Append(root, w.CreateText("foobar", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	el := w.CreateElement("image", nil)
	if _, err := w.Insert(NewPosition(root, 3), el); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if root.ChildCount() != 3 {
		t.Fatalf("expected 3 children, got %d", root.ChildCount())
	}
	if got := textData(t, root.Child(0)); got != "foo" {
		t.Errorf("expected %q, got %q", "foo", got)
	}
	if got := textData(t, root.Child(2)); got != "bar" {
		t.Errorf("expected %q, got %q", "bar", got)
	}
	if el.StartOffset() != 3 {
		t.Errorf("expected element at offset 3, got %d", el.StartOffset())
	}
}

func TestRemoveDetachedNodeIsNoOp(t *testing.T) {
	doc, _ := newTestDoc(t)
	w := doc.Writer()

	detached := w.CreateText("loose", nil)
	removed := w.Remove(detached)

	if len(removed) != 0 {
		t.Errorf("expected no removed nodes, got %d", len(removed))
	}
	if got := len(doc.DrainChanges()); got != 0 {
		t.Errorf("expected no recorded changes, got %d", got)
	}
}

func TestRemoveRangeSplitsPartialText(t *testing.T) {
	doc, root := newTestDoc(t)

	_, err := doc.Change("setup", func(w *Writer) error {
		_, err := w.Append(root, w.CreateText("foobar", nil))
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err = doc.Change("remove", func(w *Writer) error {
		r := NewRange(NewPosition(root, 1), NewPosition(root, 4))
		removed := w.RemoveRange(r)
		if len(removed) != 1 {
			t.Errorf("expected 1 removed node, got %d", len(removed))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if root.ChildCount() != 1 {
		t.Fatalf("expected remainder merged to 1 child, got %d", root.ChildCount())
	}
	if got := textData(t, root.Child(0)); got != "far" {
		t.Errorf("expected %q, got %q", "far", got)
	}
}

func TestInsertChildMultipleNodesPreservesOrder(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	para := w.CreateElement("paragraph", nil)
	if _, err := w.Append(root, para); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(para, w.CreateElement("image", nil), w.CreateElement("image", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	first := w.CreateElement("table", nil)
	second := w.CreateElement("media", nil)
	n, err := w.InsertChild(para, 2, first, second)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 inserted, got %d", n)
	}
	if para.ChildCount() != 4 {
		t.Fatalf("expected 4 children, got %d", para.ChildCount())
	}
	if para.Child(2) != first || para.Child(3) != second {
		t.Error("expected new nodes at indices 2 and 3 in supplied order")
	}
}

func TestReplaceBetweenTextRunsKeepsPosition(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	image := w.CreateElement("image", nil)
	if _, err := w.Append(root, w.CreateText("a", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(root, image); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(root, w.CreateText("b", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	video := w.CreateElement("video", nil)
	ok, err := w.Replace(image, video)
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if !ok {
		t.Fatal("expected replace to report true")
	}
	if root.ChildCount() != 3 {
		t.Fatalf("expected 3 children, got %d", root.ChildCount())
	}
	if root.Child(1) != video {
		t.Error("expected replacement at the old node's index")
	}
	if video.StartOffset() != 1 {
		t.Errorf("expected replacement at offset 1, got %d", video.StartOffset())
	}
	if got := textData(t, root.Child(0)); got != "a" {
		t.Errorf("expected left run %q, got %q", "a", got)
	}
	if got := textData(t, root.Child(2)); got != "b" {
		t.Errorf("expected right run %q, got %q", "b", got)
	}
}

func TestReplaceWithTextMergesNeighbors(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	image := w.CreateElement("image", nil)
	if _, err := w.Append(root, w.CreateText("a", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(root, image); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(root, w.CreateText("c", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	ok, err := w.Replace(image, w.CreateText("b", nil))
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if !ok {
		t.Fatal("expected replace to report true")
	}
	if root.ChildCount() != 1 {
		t.Fatalf("expected 1 merged child, got %d", root.ChildCount())
	}
	if got := textData(t, root.Child(0)); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}
}

func TestReplaceDetachedOldReturnsFalse(t *testing.T) {
	_, _ = newTestDoc(t)
	w := NewWriter()

	oldNode := w.CreateElement("paragraph", nil)
	ok, err := w.Replace(oldNode, w.CreateElement("heading", nil))
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if ok {
		t.Error("expected replace of detached node to report false")
	}
}

func TestReplaceLeavesTreeUnchangedOnRejection(t *testing.T) {
	schema := allowOnly{"paragraph", "$text"}
	doc := NewDocument(schema)
	root, err := doc.CreateRoot("main")
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}
	w := doc.Writer()

	para := w.CreateElement("paragraph", nil)
	if _, err := w.Append(root, para); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	ok, err := w.Replace(para, w.CreateElement("table", nil))
	if !errors.Is(err, ErrInvalidInsertion) {
		t.Fatalf("expected ErrInvalidInsertion, got %v", err)
	}
	if ok {
		t.Error("expected rejected replace to report false")
	}
	if root.Child(0) != para {
		t.Error("expected original node to stay attached after rejection")
	}
}

func TestRenameMovesChildrenAndAttributes(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	para := w.CreateElement("paragraph", map[string]any{"align": "right"})
	if _, err := w.Append(root, para); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(para, w.CreateText("body", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	heading := w.Rename(para, "heading")
	if heading == nil {
		t.Fatal("expected renamed element")
	}
	if heading.Name() != "heading" {
		t.Errorf("expected name heading, got %q", heading.Name())
	}
	if root.Child(0) != heading {
		t.Error("expected renamed element attached at the old index")
	}
	if v, _ := heading.Attribute("align"); v != "right" {
		t.Errorf("expected attribute carried over, got %v", v)
	}
	if heading.ChildCount() != 1 || textData(t, heading.Child(0)) != "body" {
		t.Error("expected children moved to renamed element")
	}
	if IsAttached(para) {
		t.Error("expected old element detached")
	}
}

func TestRenameDetachedReturnsNil(t *testing.T) {
	w := NewWriter()
	if got := w.Rename(w.CreateElement("paragraph", nil), "heading"); got != nil {
		t.Errorf("expected nil for detached rename, got %v", got)
	}
}

func TestSetAttributeSameValueIsNoOp(t *testing.T) {
	doc, root := newTestDoc(t)

	batch, err := doc.Change("setup", func(w *Writer) error {
		para := w.CreateElement("paragraph", map[string]any{"align": "left"})
		_, err := w.Append(root, para)
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	before := len(batch.Operations)

	batch2, err := doc.Change("attr", func(w *Writer) error {
		w.SetAttribute(root.Child(0), "align", "left")
		return nil
	})
	if err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if len(batch2.Operations) != 0 {
		t.Errorf("expected no operations for unchanged value, got %d", len(batch2.Operations))
	}
	if before != 1 {
		t.Errorf("expected 1 setup operation, got %d", before)
	}
}

func TestSetAttributeOnRangeSplitsBoundaries(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	if _, err := w.Append(root, w.CreateText("foobar", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	w.SetAttributeOnRange(NewRange(NewPosition(root, 0), NewPosition(root, 3)), "bold", true)

	if root.ChildCount() != 2 {
		t.Fatalf("expected split into 2 runs, got %d", root.ChildCount())
	}
	if v, ok := root.Child(0).(*Text).Attribute("bold"); !ok || v != true {
		t.Error("expected bold on the covered run")
	}
	if root.Child(1).(*Text).HasAttribute("bold") {
		t.Error("expected no bold on the uncovered run")
	}
}

func TestRemoveAttributeMergesCompatibleRuns(t *testing.T) {
	_, root := newTestDoc(t)
	w := NewWriter()

	if _, err := w.Append(root, w.CreateText("foo", nil)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := w.Append(root, w.CreateText("bar", map[string]any{"bold": true})); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if root.ChildCount() != 2 {
		t.Fatalf("expected 2 runs before, got %d", root.ChildCount())
	}

	if !w.RemoveAttribute(root.Child(1), "bold") {
		t.Fatal("expected attribute removal to report true")
	}
	if root.ChildCount() != 1 {
		t.Fatalf("expected merged single run, got %d", root.ChildCount())
	}
	if got := textData(t, root.Child(0)); got != "foobar" {
		t.Errorf("expected %q, got %q", "foobar", got)
	}
}

func TestSchemaRejectsInvalidChild(t *testing.T) {
	schema := allowOnly{"paragraph"}
	doc := NewDocument(schema)
	root, err := doc.CreateRoot("main")
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}
	w := doc.Writer()

	if _, err := w.Append(root, w.CreateElement("paragraph", nil)); err != nil {
		t.Fatalf("expected paragraph allowed: %v", err)
	}
	_, err = w.Append(root, w.CreateElement("table", nil))
	if !errors.Is(err, ErrInvalidInsertion) {
		t.Errorf("expected ErrInvalidInsertion, got %v", err)
	}
}

// allowOnly accepts a fixed name set in any context.
type allowOnly []string

func (a allowOnly) CheckChild(context []string, name string) bool {
	for _, n := range a {
		if n == name {
			return true
		}
	}
	return false
}
