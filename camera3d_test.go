package twin

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// newTestCamera looks from (0, 0, 10) at the origin through an 800x600 view.
func newTestCamera() (*Camera3D, CameraConfig) {
	cfg := DefaultConfig().Camera
	cfg.Position = Vec3{Z: 10}
	cfg.Target = Vec3{}
	return NewCamera3D(cfg, 800, 600), cfg
}

func TestCameraProjectCenter(t *testing.T) {
	cam, _ := newTestCamera()
	sx, sy, depth, ok := cam.Project(mgl64.Vec3{})
	if !ok {
		t.Fatal("target should be in front")
	}
	assertNearEps(t, "sx", sx, 400, 1e-6)
	assertNearEps(t, "sy", sy, 300, 1e-6)
	assertNearEps(t, "depth", depth, 10, 1e-6)

	if _, _, _, ok := cam.Project(mgl64.Vec3{0, 0, 20}); ok {
		t.Error("point behind the camera should not project")
	}
	sx, sy, _, _ = cam.Project(mgl64.Vec3{1, 1, 0})
	if sx <= 400 || sy >= 300 {
		t.Errorf("(1,1,0) projected to (%v, %v), want right and up of center", sx, sy)
	}
}

func TestCameraRayRoundTrip(t *testing.T) {
	cam, _ := newTestCamera()
	r := cam.Ray(400, 300)
	assertMgl(t, "center dir", r.Dir, cam.Forward())

	p := mgl64.Vec3{1.5, -0.7, 2}
	sx, sy, _, _ := cam.Project(p)
	r = cam.Ray(sx, sy)
	// distance from p to the ray line
	v := p.Sub(r.Origin)
	off := v.Sub(r.Dir.Mul(v.Dot(r.Dir))).Len()
	assertNearEps(t, "offset", off, 0, 1e-6)
}

func TestCameraZoomNarrowsFov(t *testing.T) {
	cam, _ := newTestCamera()
	sx1, _, _, _ := cam.Project(mgl64.Vec3{1, 0, 0})
	cam.Zoom = 2
	sx2, _, _, _ := cam.Project(mgl64.Vec3{1, 0, 0})
	assertNearEps(t, "offset doubles", sx2-400, 2*(sx1-400), 1e-6)
}

func TestCameraMoveAndLook(t *testing.T) {
	cam, _ := newTestCamera()
	cam.Move(mgl64.Vec3{1, 2, 3})
	assertMgl(t, "position", cam.Position, mgl64.Vec3{1, 2, 13})
	assertMgl(t, "target", cam.Target, mgl64.Vec3{1, 2, 3})

	cam, _ = newTestCamera()
	cam.Look(math.Pi/2, 0)
	assertMgl(t, "yawed forward", cam.Forward(), mgl64.Vec3{-1, 0, 0})
	assertNear(t, "distance kept", cam.Distance(), 10)

	cam, _ = newTestCamera()
	cam.Look(0, math.Pi)
	assertNearEps(t, "pitch clamp", cam.Forward().Y(), math.Sin(maxPitch), 1e-9)
}

func TestCameraFocusOn(t *testing.T) {
	box := Box3{Min: mgl64.Vec3{4.5, -0.5, -0.5}, Max: mgl64.Vec3{5.5, 0.5, 0.5}}
	radius := math.Sqrt(3) / 2
	dist := radius / math.Sin(degToRad(30)) * 1.2

	t.Run("immediate", func(t *testing.T) {
		cam, _ := newTestCamera()
		cam.FocusOn(box, 0)
		assertMgl(t, "target", cam.Target, mgl64.Vec3{5, 0, 0})
		assertMgl(t, "position", cam.Position, mgl64.Vec3{5, 0, dist})
		if cam.Focusing() {
			t.Error("immediate focus should not animate")
		}
	})

	t.Run("animated", func(t *testing.T) {
		cam, _ := newTestCamera()
		cam.FocusOn(box, 0.5)
		cam.update(0.25)
		if !cam.Focusing() {
			t.Fatal("expected a running animation")
		}
		if cam.Target.X() <= 0 || cam.Target.X() >= 5 {
			t.Errorf("mid target = %v", cam.Target)
		}
		cam.update(0.5)
		if cam.Focusing() {
			t.Error("animation should have finished")
		}
		assertMgl(t, "position", cam.Position, mgl64.Vec3{5, 0, dist})
	})

	t.Run("empty box", func(t *testing.T) {
		cam, _ := newTestCamera()
		cam.FocusOn(EmptyBox3(), 0)
		assertMgl(t, "unchanged", cam.Position, mgl64.Vec3{0, 0, 10})
	})
}

// --- OrbitControls ---

func newTestControls(damping float64) (*Camera3D, *OrbitControls) {
	cam, cfg := newTestCamera()
	cfg.Damping = damping
	return cam, NewOrbitControls(cam, cfg)
}

func TestOrbitDolly(t *testing.T) {
	cam, oc := newTestControls(0)
	oc.Dolly(2)
	oc.Update()
	assertMgl(t, "position", cam.Position, mgl64.Vec3{0, 0, 20})

	oc.MaxDistance = 15
	oc.Dolly(2)
	oc.Update()
	assertNear(t, "clamped", cam.Distance(), 15)

	oc.Dolly(0.0001)
	oc.Update()
	assertNear(t, "min", cam.Distance(), oc.MinDistance)
}

func TestOrbitRotate(t *testing.T) {
	cam, oc := newTestControls(0)
	oc.Rotate(cam.Height/4, 0)
	oc.Update()
	assertMgl(t, "position", cam.Position, mgl64.Vec3{-10, 0, 0})
	assertMgl(t, "target", cam.Target, mgl64.Vec3{})
}

func TestOrbitPan(t *testing.T) {
	cam, oc := newTestControls(0)
	oc.Pan(30, 0)
	oc.Update()
	perPixel := 2 * 10 * math.Tan(degToRad(30)) / 600
	assertMgl(t, "target", cam.Target, mgl64.Vec3{-30 * perPixel, 0, 0})
	assertMgl(t, "offset kept", cam.Position.Sub(cam.Target), mgl64.Vec3{0, 0, 10})
}

func TestOrbitDampingDecays(t *testing.T) {
	cam, oc := newTestControls(0.5)
	oc.Rotate(cam.Height/4, 0)
	oc.Update()
	first := cam.Position
	oc.Update()
	if cam.Position.ApproxEqualThreshold(first, 1e-9) {
		t.Error("damped rotation should continue after the first update")
	}
	assertNear(t, "radius kept", cam.Distance(), 10)
}

func TestOrbitDisabled(t *testing.T) {
	cam, oc := newTestControls(0)
	oc.Enabled = false
	oc.Rotate(100, 100)
	oc.Dolly(3)
	oc.Update()
	assertMgl(t, "position", cam.Position, mgl64.Vec3{0, 0, 10})
}
