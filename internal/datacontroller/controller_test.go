package datacontroller

import (
	"errors"
	"testing"

	"github.com/dshills/richcast/internal/conversion"
	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/schema"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c, err := New(schema.Default())
	if err != nil {
		t.Fatalf("controller setup failed: %v", err)
	}
	c.Upcast().Add(conversion.UpcastElementToElement("p", "paragraph"))
	c.Upcast().Add(conversion.UpcastElementToAttribute("strong", "bold", true))
	c.Downcast().Add(conversion.DowncastElementToElement("paragraph", "p"))
	c.Downcast().Add(conversion.DowncastAttributeToElement("bold", "strong"))
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestController(t)

	if err := c.Set("main", "<p>foo<strong>bar</strong></p>"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := c.Get("main")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "<p>foo<strong>bar</strong></p>" {
		t.Errorf("unexpected markup: %s", got)
	}
}

func TestSetReplacesPreviousContent(t *testing.T) {
	c := newTestController(t)

	if err := c.Set("main", "<p>old</p>"); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if err := c.Set("main", "<p>new</p>"); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	got, err := c.Get("main")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "<p>new</p>" {
		t.Errorf("expected old content replaced, got %s", got)
	}
}

func TestSetUnknownRootFails(t *testing.T) {
	c := newTestController(t)

	if err := c.Set("sidebar", "<p>x</p>"); !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got %v", err)
	}
	if _, err := c.Get("sidebar"); !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got %v", err)
	}
}

func TestInitRequiresPristineDocument(t *testing.T) {
	c := newTestController(t)

	if err := c.Init("main", "<p>first</p>"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := c.Init("main", "<p>second</p>"); !errors.Is(err, ErrDocumentAlreadyInitialized) {
		t.Errorf("expected ErrDocumentAlreadyInitialized, got %v", err)
	}
}

func TestInitAfterManualChangeFails(t *testing.T) {
	c := newTestController(t)

	_, err := c.Document().Change("edit", func(w *model.Writer) error {
		root := c.Document().Root("main")
		_, err := w.Append(root, w.CreateElement("paragraph", nil))
		return err
	})
	if err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if err := c.Init("main", "<p>x</p>"); !errors.Is(err, ErrDocumentAlreadyInitialized) {
		t.Errorf("expected ErrDocumentAlreadyInitialized, got %v", err)
	}
}

func TestSetRecordsOneBatch(t *testing.T) {
	c := newTestController(t)

	if err := c.Set("main", "<p>a</p><p>b</p>"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	batches := c.Document().Batches()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if batches[0].Name != "dataSet" {
		t.Errorf("unexpected batch name %q", batches[0].Name)
	}
}

func TestGetRendersMarkerHighlight(t *testing.T) {
	c := newTestController(t)
	for _, r := range conversion.MarkerToHighlight("comment:1", conversion.HighlightDescriptor{Classes: []string{"a"}}) {
		c.Downcast().Add(r)
	}

	if err := c.Set("main", "<p>foobar</p>"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	root := c.Document().Root("main")
	para := root.Child(0).(*model.Element)
	_, err := c.Document().Change("mark", func(w *model.Writer) error {
		_, err := w.AddMarker("comment:1", model.NewRange(
			model.NewPosition(para, 0),
			model.NewPosition(para, 3),
		))
		return err
	})
	if err != nil {
		t.Fatalf("marker change failed: %v", err)
	}

	got, err := c.Get("main")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != `<p><span class="a">foo</span>bar</p>` {
		t.Errorf("unexpected markup: %s", got)
	}
}

func TestSetCreatesFragmentMarkers(t *testing.T) {
	c := newTestController(t)

	fragment, err := c.Parse("<p>foobar</p>", []string{schema.RootName})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	para := fragment.Child(0).(*model.Element)
	fragment.SetMarker("comment:1", model.NewRange(
		model.NewPosition(para, 1),
		model.NewPosition(para, 4),
	))

	root := c.Document().Root("main")
	_, err = c.Document().Change("load", func(w *model.Writer) error {
		return transfer(w, root, fragment)
	})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	m := c.Document().Marker("comment:1")
	if m == nil {
		t.Fatal("expected marker created on the document")
	}
	r := m.Range()
	if r.Start.Offset != 1 || r.End.Offset != 4 {
		t.Errorf("unexpected marker range %v", r)
	}
	if r.Start.Parent != model.Container(para) {
		t.Error("expected marker anchored inside the moved paragraph")
	}
}

func TestSetLeavesOtherRootMarkersAlone(t *testing.T) {
	c := newTestController(t)
	sidebar, err := c.Document().CreateRoot("sidebar")
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}

	if err := c.Set("main", "<p>foobar</p>"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mainPara := c.Document().Root("main").Child(0).(*model.Element)
	_, err = c.Document().Change("annotate", func(w *model.Writer) error {
		para := w.CreateElement("paragraph", nil)
		if _, err := w.Append(sidebar, para); err != nil {
			return err
		}
		if _, err := w.Append(para, w.CreateText("note", nil)); err != nil {
			return err
		}
		if _, err := w.AddMarker("comment:side", model.NewRange(
			model.NewPosition(para, 0),
			model.NewPosition(para, 2),
		)); err != nil {
			return err
		}
		_, err := w.AddMarker("comment:main", model.NewRange(
			model.NewPosition(mainPara, 0),
			model.NewPosition(mainPara, 3),
		))
		return err
	})
	if err != nil {
		t.Fatalf("annotate failed: %v", err)
	}

	if err := c.Set("main", "<p>replaced</p>"); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	if c.Document().Marker("comment:main") != nil {
		t.Error("expected main-root marker removed by the content swap")
	}
	side := c.Document().Marker("comment:side")
	if side == nil {
		t.Fatal("expected sidebar marker untouched")
	}
	r := side.Range()
	if r.Start.Offset != 0 || r.End.Offset != 2 {
		t.Errorf("unexpected sidebar marker range %v", r)
	}
}

func TestGetDiscardsStaleBindings(t *testing.T) {
	c := newTestController(t)

	if err := c.Set("main", "<p>one</p>"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := c.Get("main"); err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	if err := c.Set("main", "<p>two</p>"); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	got, err := c.Get("main")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if got != "<p>two</p>" {
		t.Errorf("expected fresh rendering, got %s", got)
	}
}
