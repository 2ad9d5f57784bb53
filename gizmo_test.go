package twin

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// newTestGizmo attaches a gizmo to an object at the origin seen from
// (0, 0, 10), which gives an arm length of 1.8.
func newTestGizmo() (*Transformer3D, *Object3D, *int) {
	cam, _ := newTestCamera()
	obj := boxObject("obj", 0)
	refreshes := new(int)
	g := NewTransformer3D(cam, func() { *refreshes++ })
	g.Attach(obj)
	return g, obj, refreshes
}

// screen projects a world point through the gizmo camera.
func screen(t *testing.T, g *Transformer3D, p mgl64.Vec3) (float64, float64) {
	t.Helper()
	sx, sy, _, ok := g.cam.Project(p)
	if !ok {
		t.Fatalf("%v is behind the camera", p)
	}
	return sx, sy
}

func TestTransformer3DDefaults(t *testing.T) {
	g, _, _ := newTestGizmo()
	if g.Mode() != TransformTranslate || g.Space() != SpaceWorld || g.Dragging() {
		t.Errorf("defaults: mode %v space %v", g.Mode(), g.Space())
	}
	assertNear(t, "size", g.Size(), 1.8)
	g.ToggleSpace()
	if g.Space() != SpaceLocal || g.Space().String() != "local" {
		t.Error("ToggleSpace should switch to local")
	}
}

func TestTransformer3DPickAxis(t *testing.T) {
	g, _, _ := newTestGizmo()
	tests := []struct {
		name string
		at   mgl64.Vec3
		want int
	}{
		{"x arm", mgl64.Vec3{0.9, 0, 0}, 0},
		{"y arm", mgl64.Vec3{0, 0.9, 0}, 1},
		{"beyond x arm", mgl64.Vec3{2.5, 0, 0}, AxisNone},
		{"off arms", mgl64.Vec3{0.9, 0.9, 0}, AxisNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := screen(t, g, tt.at)
			if got := g.PickAxis(g.cam.Ray(sx, sy)); got != tt.want {
				t.Errorf("PickAxis = %d, want %d", got, tt.want)
			}
		})
	}
	g.Detach()
	if g.PickAxis(g.cam.Ray(400, 300)) != AxisNone {
		t.Error("detached gizmo should not pick")
	}
}

func TestTransformer3DTranslateSnap(t *testing.T) {
	g, obj, refreshes := newTestGizmo()
	g.TranslationSnap = 0.1
	var ends []TransformEvent3D
	g.OnTransformEnd(func(e TransformEvent3D) { ends = append(ends, e) })

	if !g.PointerDown(screen(t, g, mgl64.Vec3{0.9, 0, 0})) {
		t.Fatal("expected the x arm to be grabbed")
	}
	assertNear(t, "frozen size", g.Size(), 1.8)
	if g.ActiveAxis() != 0 {
		t.Errorf("active axis = %d", g.ActiveAxis())
	}
	g.PointerMove(screen(t, g, mgl64.Vec3{1.43, 0, 0}))
	assertMgl(t, "position", obj.Position, mgl64.Vec3{0.5, 0, 0})
	if *refreshes != 1 {
		t.Errorf("refreshes = %d", *refreshes)
	}
	g.PointerUp()
	if len(ends) != 1 || ends[0].Axis != 0 || ends[0].Position.X() != obj.Position.X() {
		t.Fatalf("end events = %+v", ends)
	}
	if g.Dragging() || g.ActiveAxis() != AxisNone {
		t.Error("gizmo should be idle after PointerUp")
	}
}

func TestTransformer3DTranslateUnderScaledParent(t *testing.T) {
	g, obj, _ := newTestGizmo()
	parent := NewObject3D("parent")
	parent.Scale = mgl64.Vec3{2, 2, 2}
	parent.AddChild(obj)

	g.PointerDown(screen(t, g, mgl64.Vec3{0.9, 0, 0}))
	g.PointerMove(screen(t, g, mgl64.Vec3{1.9, 0, 0}))
	assertNearEps(t, "local x", obj.Position.X(), 0.5, 1e-6)
	assertNearEps(t, "world x", obj.WorldPosition().X(), 1, 1e-6)
}

func TestTransformer3DNoEndWithoutChange(t *testing.T) {
	g, _, _ := newTestGizmo()
	ends := 0
	g.OnTransformEnd(func(TransformEvent3D) { ends++ })
	g.PointerDown(screen(t, g, mgl64.Vec3{0.9, 0, 0}))
	g.PointerUp()
	if ends != 0 {
		t.Errorf("ends = %d, want 0", ends)
	}
}

func TestTransformer3DCancel(t *testing.T) {
	g, obj, _ := newTestGizmo()
	ends := 0
	g.OnTransformEnd(func(TransformEvent3D) { ends++ })
	g.PointerDown(screen(t, g, mgl64.Vec3{0.9, 0, 0}))
	g.PointerMove(screen(t, g, mgl64.Vec3{1.5, 0, 0}))
	g.Cancel()
	assertMgl(t, "restored", obj.Position, mgl64.Vec3{})
	g.PointerUp()
	if ends != 0 || g.Dragging() {
		t.Error("cancelled drag should not end")
	}
}

func TestTransformer3DRotate(t *testing.T) {
	g, obj, _ := newTestGizmo()
	g.SetMode(TransformRotate)
	g.RotationSnap = 15
	ring := 1.8 * gizmoRingRadius

	sx, sy := screen(t, g, mgl64.Vec3{ring, 0, 0})
	if got := g.PickAxis(g.cam.Ray(sx, sy)); got != 2 {
		t.Fatalf("PickAxis = %d, want the z ring", got)
	}
	if !g.PointerDown(sx, sy) {
		t.Fatal("expected the z ring to be grabbed")
	}
	g.SetMode(TransformScale)
	if g.Mode() != TransformRotate {
		t.Error("mode should not change mid-drag")
	}
	g.PointerMove(screen(t, g, mgl64.Vec3{0, ring, 0}))
	assertNearEps(t, "rotation z", obj.Rotation.Z(), math.Pi/2, 1e-9)
	g.PointerUp()
}

func TestTransformer3DScale(t *testing.T) {
	g, obj, _ := newTestGizmo()
	g.SetMode(TransformScale)
	g.PointerDown(screen(t, g, mgl64.Vec3{0.9, 0, 0}))
	g.PointerMove(screen(t, g, mgl64.Vec3{1.8, 0, 0}))
	assertNearEps(t, "scale x", obj.Scale.X(), 1.5, 1e-6)
	assertNear(t, "scale y", obj.Scale.Y(), 1)

	g.PointerMove(screen(t, g, mgl64.Vec3{-3, 0, 0}))
	assertNear(t, "clamped", obj.Scale.X(), minShapeScale)
}

func TestWrapAngle(t *testing.T) {
	assertNear(t, "3π/2", wrapAngle(3*math.Pi/2), -math.Pi/2)
	assertNear(t, "-π", wrapAngle(-math.Pi), math.Pi)
	assertNear(t, "small", wrapAngle(0.25), 0.25)
}
