package twin

import (
	"math"
	"testing"
)

func newTestRect() *Shape {
	s := NewShape("r", ShapeRect)
	s.Width, s.Height = 100, 100
	s.PivotX, s.PivotY = 50, 50
	s.X, s.Y = 100, 100
	return s
}

// --- scale ---

func TestTransformerScaleBottomRight(t *testing.T) {
	tr := NewTransformer2D(NewViewport2D(800, 600), nil)
	s := newTestRect()
	tr.Attach(s)
	var end []TransformEvent2D
	tr.OnTransformEnd(func(ev TransformEvent2D) { end = append(end, ev) })

	if !tr.PointerDown(HandleBottomRight, 150, 150) {
		t.Fatal("PointerDown failed")
	}
	if tr.Mode() != TransformScale {
		t.Errorf("Mode = %v", tr.Mode())
	}
	tr.PointerMove(170, 160)
	tr.PointerUp()
	assertNear(t, "ScaleX", s.ScaleX, 1.2)
	assertNear(t, "ScaleY", s.ScaleY, 1.1)
	if len(end) != 1 {
		t.Fatalf("end events = %d, want 1", len(end))
	}
	assertNear(t, "event ScaleX", end[0].Scale.X, 1.2)
}

func TestTransformerScaleClampsAndEdgeAxis(t *testing.T) {
	tr := NewTransformer2D(NewViewport2D(800, 600), nil)
	s := newTestRect()
	tr.Attach(s)
	tr.PointerDown(HandleRight, 150, 100)
	tr.PointerMove(-500, 400)
	assertNear(t, "ScaleX", s.ScaleX, minShapeScale)
	assertNear(t, "ScaleY", s.ScaleY, 1)
}

func TestTransformerScaleHonorsZoom(t *testing.T) {
	v := NewViewport2D(800, 600)
	v.Zoom = 2
	tr := NewTransformer2D(v, nil)
	s := newTestRect()
	tr.Attach(s)
	tr.PointerDown(HandleBottomRight, 0, 0)
	tr.PointerMove(40, 0)
	assertNear(t, "ScaleX", s.ScaleX, 1.2)
}

// --- translate / rotate ---

func TestTransformerTranslateWithSnap(t *testing.T) {
	tr := NewTransformer2D(NewViewport2D(800, 600), nil)
	tr.TranslationSnap = 10
	s := newTestRect()
	tr.Attach(s)
	refreshes := 0
	tr.refresh = func() { refreshes++ }
	tr.PointerDown(HandleBody, 100, 100)
	tr.PointerMove(113, 96)
	assertNear(t, "X", s.X, 110)
	assertNear(t, "Y", s.Y, 100)
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
}

func TestTransformerRotate(t *testing.T) {
	tr := NewTransformer2D(NewViewport2D(800, 600), nil)
	s := newTestRect()
	tr.Attach(s)
	tr.PointerDown(HandleRotate, 100, 26)
	// Pointer straight right of the pivot is +90 degrees.
	tr.PointerMove(200, 100)
	assertNear(t, "Rotation", s.Rotation, math.Pi/2)

	tr.RotationSnap = 15
	tr.PointerMove(200, 107)
	assertNearEps(t, "snapped", radToDeg(s.Rotation), 90, 1e-9)
}

// --- lifecycle ---

func TestTransformerNoEndWithoutChange(t *testing.T) {
	tr := NewTransformer2D(NewViewport2D(800, 600), nil)
	tr.Attach(newTestRect())
	fired := false
	tr.OnTransformEnd(func(TransformEvent2D) { fired = true })
	tr.PointerDown(HandleBody, 10, 10)
	tr.PointerMove(10, 10)
	tr.PointerUp()
	if fired {
		t.Error("end fired for a no-op drag")
	}
}

func TestTransformerCancelRestores(t *testing.T) {
	tr := NewTransformer2D(NewViewport2D(800, 600), nil)
	s := newTestRect()
	tr.Attach(s)
	tr.PointerDown(HandleBody, 0, 0)
	tr.PointerMove(50, 50)
	tr.Cancel()
	assertNear(t, "X", s.X, 100)
	assertNear(t, "Y", s.Y, 100)
	if tr.Dragging() {
		t.Error("still dragging after Cancel")
	}
}

func TestTransformerRejectsWithoutTarget(t *testing.T) {
	tr := NewTransformer2D(NewViewport2D(800, 600), nil)
	if tr.PointerDown(HandleBody, 0, 0) {
		t.Error("PointerDown without attached shape should fail")
	}
	tr.Attach(newTestRect())
	if tr.PointerDown(HandleNone, 0, 0) {
		t.Error("HandleNone should not start a drag")
	}
}

func TestSnapTo(t *testing.T) {
	assertNear(t, "snap 17/5", snapTo(17, 5), 15)
	assertNear(t, "snap 18/5", snapTo(18, 5), 20)
	assertNear(t, "no snap", snapTo(17.3, 0), 17.3)
}
