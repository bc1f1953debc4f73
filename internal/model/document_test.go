package model

import (
	"errors"
	"testing"
)

func TestCreateRootDuplicateFails(t *testing.T) {
	doc, _ := newTestDoc(t)
	_, err := doc.CreateRoot("main")
	if !errors.Is(err, ErrRootExists) {
		t.Errorf("expected ErrRootExists, got %v", err)
	}
}

func TestChangeBlocksDoNotNest(t *testing.T) {
	doc, _ := newTestDoc(t)

	_, err := doc.Change("outer", func(w *Writer) error {
		_, inner := doc.Change("inner", func(*Writer) error { return nil })
		if !errors.Is(inner, ErrChangeActive) {
			t.Errorf("expected ErrChangeActive, got %v", inner)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("outer change failed: %v", err)
	}
}

func TestChangeGroupsOperationsInOneBatch(t *testing.T) {
	doc, root := newTestDoc(t)

	batch, err := doc.Change("typing", func(w *Writer) error {
		para := w.CreateElement("paragraph", nil)
		if _, err := w.Append(root, para); err != nil {
			return err
		}
		_, err := w.Append(para, w.CreateText("hi", nil))
		return err
	})
	if err != nil {
		t.Fatalf("change failed: %v", err)
	}

	if len(batch.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(batch.Operations))
	}
	for _, op := range batch.Operations {
		if op.BatchID != batch.ID {
			t.Errorf("expected batch id %s, got %s", batch.ID, op.BatchID)
		}
		if op.ID == "" {
			t.Error("expected operation id set")
		}
	}
	if len(doc.Batches()) != 1 {
		t.Errorf("expected 1 recorded batch, got %d", len(doc.Batches()))
	}
}

func TestDrainChangesEmptiesBuffer(t *testing.T) {
	doc, root := newTestDoc(t)

	_, err := doc.Change("edit", func(w *Writer) error {
		_, err := w.Append(root, w.CreateText("x", nil))
		return err
	})
	if err != nil {
		t.Fatalf("change failed: %v", err)
	}

	changes := doc.DrainChanges()
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Type != ChangeInsert {
		t.Errorf("expected insert change, got %v", changes[0].Type)
	}
	if len(doc.DrainChanges()) != 0 {
		t.Error("expected buffer emptied after drain")
	}
}

func TestDetachedFragmentEditsAreNotRecorded(t *testing.T) {
	doc, _ := newTestDoc(t)

	_, err := doc.Change("fragment", func(w *Writer) error {
		fragment := NewDocumentFragment()
		_, err := w.Append(fragment, w.CreateText("loose", nil))
		return err
	})
	if err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if got := len(doc.DrainChanges()); got != 0 {
		t.Errorf("expected no recorded changes for fragment edit, got %d", got)
	}
}

func TestChangeInvertRoundTrip(t *testing.T) {
	_, root := newTestDoc(t)
	nodes := []Node{newText("ab", nil)}

	insert := Change{Type: ChangeInsert, Parent: root, Offset: 2, Length: 2, Nodes: nodes}
	inv := insert.Invert()
	if inv.Type != ChangeRemove || inv.Offset != 2 || inv.Length != 2 {
		t.Errorf("unexpected insert inverse: %+v", inv)
	}
	if back := inv.Invert(); back.Type != ChangeInsert {
		t.Errorf("expected double inverse to restore insert, got %v", back.Type)
	}

	attr := Change{Type: ChangeAttribute, Key: "bold", Old: nil, New: true}
	if inv := attr.Invert(); inv.Old != true || inv.New != nil {
		t.Errorf("unexpected attribute inverse: %+v", inv)
	}

	marker := Change{Type: ChangeMarkerAdd, MarkerName: "m"}
	if inv := marker.Invert(); inv.Type != ChangeMarkerRemove {
		t.Errorf("expected marker add inverse to remove, got %v", inv.Type)
	}
}

func TestAddMarkerDuplicateFails(t *testing.T) {
	doc, root := newTestDoc(t)

	_, err := doc.Change("markers", func(w *Writer) error {
		if _, err := w.Append(root, w.CreateText("foobar", nil)); err != nil {
			return err
		}
		r := NewRange(NewPosition(root, 0), NewPosition(root, 3))
		if _, err := w.AddMarker("comment", r); err != nil {
			return err
		}
		_, err := w.AddMarker("comment", r)
		return err
	})
	if !errors.Is(err, ErrMarkerExists) {
		t.Errorf("expected ErrMarkerExists, got %v", err)
	}
}

func TestMarkerShiftsOnInsertBefore(t *testing.T) {
	doc, root := newTestDoc(t)

	_, err := doc.Change("setup", func(w *Writer) error {
		if _, err := w.Append(root, w.CreateText("foobar", nil)); err != nil {
			return err
		}
		_, err := w.AddMarker("m", NewRange(NewPosition(root, 1), NewPosition(root, 3)))
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err = doc.Change("insert", func(w *Writer) error {
		_, err := w.InsertText(NewPosition(root, 0), "xy", nil)
		return err
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	r := doc.Marker("m").Range()
	if r.Start.Offset != 3 || r.End.Offset != 5 {
		t.Errorf("expected marker shifted to [3,5), got [%d,%d)", r.Start.Offset, r.End.Offset)
	}
}

func TestMarkerClampsOnRemoveInside(t *testing.T) {
	doc, root := newTestDoc(t)

	_, err := doc.Change("setup", func(w *Writer) error {
		if _, err := w.Append(root, w.CreateText("abcdef", nil)); err != nil {
			return err
		}
		_, err := w.AddMarker("m", NewRange(NewPosition(root, 1), NewPosition(root, 4)))
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err = doc.Change("remove", func(w *Writer) error {
		w.RemoveRange(NewRange(NewPosition(root, 2), NewPosition(root, 6)))
		return nil
	})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	r := doc.Marker("m").Range()
	if r.Start.Offset != 1 || r.End.Offset != 2 {
		t.Errorf("expected marker clamped to [1,2), got [%d,%d)", r.Start.Offset, r.End.Offset)
	}
}

func TestMarkersIntersectingFindsAncestorCoverage(t *testing.T) {
	doc, root := newTestDoc(t)
	var para *Element

	_, err := doc.Change("setup", func(w *Writer) error {
		para = w.CreateElement("paragraph", nil)
		if _, err := w.Append(root, para); err != nil {
			return err
		}
		if _, err := w.Append(para, w.CreateText("body", nil)); err != nil {
			return err
		}
		_, err := w.AddMarker("m", RangeIn(root))
		return err
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	hits := doc.MarkersIntersecting(para, 1, 2)
	if len(hits) != 1 || hits[0].Name() != "m" {
		t.Errorf("expected ancestor-level marker hit, got %v", hits)
	}
}

func TestObserverSeesEveryChange(t *testing.T) {
	doc, root := newTestDoc(t)
	var seen []ChangeType
	doc.SetObserver(func(c Change) { seen = append(seen, c.Type) })

	_, err := doc.Change("edit", func(w *Writer) error {
		if _, err := w.Append(root, w.CreateText("x", nil)); err != nil {
			return err
		}
		_, err := w.AddMarker("m", RangeIn(root))
		return err
	})
	if err != nil {
		t.Fatalf("change failed: %v", err)
	}

	if len(seen) != 2 || seen[0] != ChangeInsert || seen[1] != ChangeMarkerAdd {
		t.Errorf("unexpected observed changes: %v", seen)
	}
}
