package twin

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestViewportDefaults(t *testing.T) {
	v := NewViewport2D(800, 600)
	if v.Zoom != 1 || v.PanX != 0 || v.PanY != 0 {
		t.Errorf("viewport = %+v", v)
	}
	assertNear(t, "MinZoom", v.MinZoom, DefaultMinZoom)
	assertNear(t, "MaxZoom", v.MaxZoom, DefaultMaxZoom)
}

func TestViewportScreenWorldRoundTrip(t *testing.T) {
	v := NewViewport2D(800, 600)
	v.Zoom = 2
	v.PanX, v.PanY = 30, -15
	sx, sy := v.WorldToScreen(10, 20)
	assertNear(t, "sx", sx, 50)
	assertNear(t, "sy", sy, 25)
	wx, wy := v.ScreenToWorld(sx, sy)
	assertNear(t, "wx", wx, 10)
	assertNear(t, "wy", wy, 20)
}

// --- zoom ---

func TestZoomAtKeepsPointFixed(t *testing.T) {
	v := NewViewport2D(800, 600)
	got := v.ZoomAt(400, 300, 1.1)
	assertNear(t, "zoom", got, 1.1)
	assertNear(t, "PanX", v.PanX, -40)
	assertNear(t, "PanY", v.PanY, -30)

	wx, wy := v.ScreenToWorld(400, 300)
	assertNear(t, "wx", wx, 400)
	assertNear(t, "wy", wy, 300)
}

func TestZoomAtClamps(t *testing.T) {
	v := NewViewport2D(800, 600)
	if got := v.ZoomAt(0, 0, 50); got != DefaultMaxZoom {
		t.Errorf("ZoomAt(50) = %v, want %v", got, DefaultMaxZoom)
	}
	if got := v.ZoomAt(0, 0, 0.001); got != DefaultMinZoom {
		t.Errorf("ZoomAt(0.001) = %v, want %v", got, DefaultMinZoom)
	}
}

func TestVisibleBounds(t *testing.T) {
	v := NewViewport2D(800, 600)
	v.Zoom = 2
	v.PanX, v.PanY = 100, 0
	b := v.VisibleBounds()
	assertNear(t, "X", b.X, -50)
	assertNear(t, "Y", b.Y, 0)
	assertNear(t, "W", b.Width, 400)
	assertNear(t, "H", b.Height, 300)
}

// --- pan / scroll ---

func TestCenterOnAndPanBy(t *testing.T) {
	v := NewViewport2D(800, 600)
	v.CenterOn(100, 50)
	sx, sy := v.WorldToScreen(100, 50)
	assertNear(t, "sx", sx, 400)
	assertNear(t, "sy", sy, 300)
	v.PanBy(10, -5)
	assertNear(t, "PanX", v.PanX, 310)
	assertNear(t, "PanY", v.PanY, 245)
}

func TestScrollToFinishes(t *testing.T) {
	v := NewViewport2D(800, 600)
	v.ScrollTo(200, 100, 0.5, ease.Linear)
	if !v.Scrolling() {
		t.Fatal("expected scroll in progress")
	}
	for range 40 {
		v.update(1.0 / 60)
	}
	if v.Scrolling() {
		t.Error("scroll should have finished")
	}
	sx, sy := v.WorldToScreen(200, 100)
	assertNearEps(t, "sx", sx, 400, 1e-3)
	assertNearEps(t, "sy", sy, 300, 1e-3)
}

func TestPanByCancelsScroll(t *testing.T) {
	v := NewViewport2D(800, 600)
	v.ScrollTo(200, 100, 1, ease.Linear)
	v.PanBy(1, 1)
	if v.Scrolling() {
		t.Error("PanBy should cancel the scroll")
	}
}

// --- grid ---

func TestGridLinesDoublesStep(t *testing.T) {
	xs, ys := gridLines(Rect{X: 0, Y: 0, Width: 100, Height: 50}, 10, 0.5, 10)
	// 10*0.5 = 5 < 10, so step becomes 20.
	if len(xs) != 6 || xs[1]-xs[0] != 20 {
		t.Errorf("xs = %v", xs)
	}
	if len(ys) != 3 {
		t.Errorf("ys = %v", ys)
	}
	if xs, ys := gridLines(Rect{Width: 10, Height: 10}, 0, 1, 10); xs != nil || ys != nil {
		t.Error("zero step should yield no lines")
	}
}
