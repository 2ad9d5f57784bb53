package twin

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertNearEps(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}

func assertVec3(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 || math.Abs(got.Z-want.Z) > 1e-6 {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- Rect ---

func TestRectContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	cases := []struct {
		x, y float64
		want bool
	}{
		{10, 20, true},
		{40, 60, true},
		{25, 40, true},
		{9.9, 30, false},
		{25, 60.1, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestRectIntersectsAdjacent(t *testing.T) {
	a := Rect{Width: 10, Height: 10}
	if !a.Intersects(Rect{X: 10, Width: 5, Height: 5}) {
		t.Error("rects sharing an edge should intersect")
	}
	if a.Intersects(Rect{X: 11, Width: 5, Height: 5}) {
		t.Error("disjoint rects should not intersect")
	}
}

func TestRectUnionTreatsZeroAsEmpty(t *testing.T) {
	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty.Union = %v, want %v", got, b)
	}
	got := b.Union(Rect{X: -5, Y: 0, Width: 5, Height: 30})
	want := Rect{X: -5, Y: 0, Width: 20, Height: 30}
	if got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
}

func TestRectFromPointsNormalizes(t *testing.T) {
	got := rectFromPoints(50, 40, 10, 0)
	want := Rect{X: 10, Y: 0, Width: 40, Height: 40}
	if got != want {
		t.Errorf("rectFromPoints = %v, want %v", got, want)
	}
}

// --- helpers ---

func TestNormalizeSceneMode(t *testing.T) {
	tests := []struct {
		in, want SceneMode
	}{
		{SceneMode2D, SceneMode2D},
		{SceneMode3D, SceneMode3D},
		{"", SceneMode3D},
		{"4d", SceneMode3D},
	}
	for _, tt := range tests {
		if got := normalizeSceneMode(tt.in); got != tt.want {
			t.Errorf("normalizeSceneMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyModifiersHas(t *testing.T) {
	m := ModShift | ModCtrl
	if !m.Has(ModShift) || !m.Has(ModCtrl) {
		t.Error("expected shift and ctrl")
	}
	if m.Has(ModAlt) {
		t.Error("alt should not be set")
	}
	if m.Has(ModShift | ModAlt) {
		t.Error("Has should require every bit")
	}
}

func TestAngleConversions(t *testing.T) {
	assertNear(t, "degToRad(180)", degToRad(180), math.Pi)
	assertNear(t, "radToDeg(pi/2)", radToDeg(math.Pi/2), 90)
	assertNear(t, "clamp01(-1)", clamp01(-1), 0)
	assertNear(t, "clamp01(2)", clamp01(2), 1)
	assertNear(t, "clamp(7,0,5)", clamp(7, 0, 5), 5)
}

func TestColorWithAlpha(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: 0, A: 1}.WithAlpha(0.25)
	assertNear(t, "A", c.A, 0.25)
	assertNear(t, "G", c.G, 0.5)
}
