package twin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const maxPitch = 89 * math.Pi / 180

// Camera3D is a perspective camera looking from Position at Target.
// Fov is the vertical field of view in degrees; Zoom narrows it.
type Camera3D struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	Fov, Near, Far float64
	Zoom           float64

	Width, Height float64

	focus *cameraFocus
}

// cameraFocus tweens position and target together.
type cameraFocus struct {
	tween          *gween.Tween
	fromPos, toPos mgl64.Vec3
	fromTgt, toTgt mgl64.Vec3
}

// NewCamera3D returns a camera configured from cfg for a viewport of the
// given size.
func NewCamera3D(cfg CameraConfig, width, height float64) *Camera3D {
	return &Camera3D{
		Position: mgl64.Vec3{cfg.Position.X, cfg.Position.Y, cfg.Position.Z},
		Target:   mgl64.Vec3{cfg.Target.X, cfg.Target.Y, cfg.Target.Z},
		Up:       mgl64.Vec3{0, 1, 0},
		Fov:      cfg.Fov,
		Near:     cfg.Near,
		Far:      cfg.Far,
		Zoom:     1,
		Width:    width,
		Height:   height,
	}
}

// View returns the world-to-camera matrix.
func (c *Camera3D) View() mgl64.Mat4 { return mgl64.LookAtV(c.Position, c.Target, c.Up) }

// Projection returns the perspective matrix for the current zoom.
func (c *Camera3D) Projection() mgl64.Mat4 {
	aspect := 1.0
	if c.Height > 0 {
		aspect = c.Width / c.Height
	}
	return mgl64.Perspective(c.effectiveFov(), aspect, c.Near, c.Far)
}

// effectiveFov returns the vertical field of view in radians after zoom.
func (c *Camera3D) effectiveFov() float64 {
	fov := degToRad(c.Fov)
	if c.Zoom > 0 && c.Zoom != 1 {
		fov = 2 * math.Atan(math.Tan(fov/2)/c.Zoom)
	}
	return fov
}

// ViewProjection returns Projection * View.
func (c *Camera3D) ViewProjection() mgl64.Mat4 { return c.Projection().Mul4(c.View()) }

// Forward returns the unit view direction.
func (c *Camera3D) Forward() mgl64.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() < 1e-12 {
		return mgl64.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// Right returns the unit vector pointing to the right of the view.
func (c *Camera3D) Right() mgl64.Vec3 {
	r := c.Forward().Cross(c.Up)
	if r.Len() < 1e-12 {
		return mgl64.Vec3{1, 0, 0}
	}
	return r.Normalize()
}

// Distance returns the distance from Position to Target.
func (c *Camera3D) Distance() float64 { return c.Target.Sub(c.Position).Len() }

// Project maps a world point to screen pixels. depth is the clip-space w;
// ok is false for points behind the camera.
func (c *Camera3D) Project(p mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	return projectWith(c.ViewProjection(), c.Width, c.Height, p)
}

func projectWith(vp mgl64.Mat4, w, h float64, p mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	if clip.W() <= 1e-9 {
		return 0, 0, 0, false
	}
	nx, ny := clip.X()/clip.W(), clip.Y()/clip.W()
	return (nx + 1) / 2 * w, (1 - ny) / 2 * h, clip.W(), true
}

// Ray returns the world-space ray through the screen point (sx, sy).
func (c *Camera3D) Ray(sx, sy float64) Ray {
	nx := 2*sx/c.Width - 1
	ny := 1 - 2*sy/c.Height
	inv := c.ViewProjection().Inv()
	near := mgl64.TransformCoordinate(mgl64.Vec3{nx, ny, -1}, inv)
	far := mgl64.TransformCoordinate(mgl64.Vec3{nx, ny, 1}, inv)
	return Ray{Origin: c.Position, Dir: far.Sub(near).Normalize()}
}

// Move translates position and target together.
func (c *Camera3D) Move(delta mgl64.Vec3) {
	c.Position = c.Position.Add(delta)
	c.Target = c.Target.Add(delta)
}

// Look turns the view direction by yaw and pitch (radians) around the
// camera position. Pitch is clamped short of straight up or down.
func (c *Camera3D) Look(yaw, pitch float64) {
	dir := c.Target.Sub(c.Position)
	dist := dir.Len()
	if dist < 1e-12 {
		return
	}
	curYaw := math.Atan2(dir.X(), dir.Z())
	curPitch := math.Asin(clamp(dir.Y()/dist, -1, 1))
	curYaw += yaw
	curPitch = clamp(curPitch+pitch, -maxPitch, maxPitch)
	cp := math.Cos(curPitch)
	nd := mgl64.Vec3{math.Sin(curYaw) * cp, math.Sin(curPitch), math.Cos(curYaw) * cp}
	c.Target = c.Position.Add(nd.Mul(dist))
}

// FocusOn animates the camera so box fills the view, keeping the current
// viewing direction.
func (c *Camera3D) FocusOn(box Box3, duration float64) {
	if box.IsEmpty() {
		return
	}
	center := box.Center()
	radius := math.Max(box.Size().Len()/2, 1e-3)
	dist := radius / math.Sin(c.effectiveFov()/2) * 1.2
	toPos := center.Sub(c.Forward().Mul(dist))
	if duration <= 0 {
		c.Position, c.Target = toPos, center
		c.focus = nil
		return
	}
	c.focus = &cameraFocus{
		tween:   gween.New(0, 1, float32(duration), ease.InOutQuad),
		fromPos: c.Position, toPos: toPos,
		fromTgt: c.Target, toTgt: center,
	}
}

// Focusing reports whether a FocusOn animation is running.
func (c *Camera3D) Focusing() bool { return c.focus != nil }

// update advances the focus animation by dt seconds.
func (c *Camera3D) update(dt float64) {
	f := c.focus
	if f == nil {
		return
	}
	v, done := f.tween.Update(float32(dt))
	k := float64(v)
	c.Position = f.fromPos.Add(f.toPos.Sub(f.fromPos).Mul(k))
	c.Target = f.fromTgt.Add(f.toTgt.Sub(f.fromTgt).Mul(k))
	if done {
		c.Position, c.Target = f.toPos, f.toTgt
		c.focus = nil
	}
}

// OrbitControls orbits, pans and dollies a camera around its target with
// optional damping.
type OrbitControls struct {
	cam *Camera3D

	Enabled     bool
	Damping     float64
	MinDistance float64
	MaxDistance float64
	RotateSpeed float64

	thetaDelta float64
	phiDelta   float64
	panOffset  mgl64.Vec3
	scale      float64
}

// NewOrbitControls attaches controls to cam.
func NewOrbitControls(cam *Camera3D, cfg CameraConfig) *OrbitControls {
	return &OrbitControls{
		cam:         cam,
		Enabled:     true,
		Damping:     cfg.Damping,
		MinDistance: cfg.MinDistance,
		MaxDistance: cfg.MaxDistance,
		RotateSpeed: 1,
		scale:       1,
	}
}

// Rotate queues an orbit for a pointer drag of (dx, dy) pixels.
func (o *OrbitControls) Rotate(dx, dy float64) {
	if !o.Enabled || o.cam.Height <= 0 {
		return
	}
	o.thetaDelta -= 2 * math.Pi * dx / o.cam.Height * o.RotateSpeed
	o.phiDelta -= 2 * math.Pi * dy / o.cam.Height * o.RotateSpeed
}

// Pan queues a target shift so the scene follows a pointer drag of
// (dx, dy) pixels.
func (o *OrbitControls) Pan(dx, dy float64) {
	if !o.Enabled || o.cam.Height <= 0 {
		return
	}
	perPixel := 2 * o.cam.Distance() * math.Tan(o.cam.effectiveFov()/2) / o.cam.Height
	right := o.cam.Right()
	up := right.Cross(o.cam.Forward())
	o.panOffset = o.panOffset.Add(right.Mul(-dx * perPixel)).Add(up.Mul(dy * perPixel))
}

// Dolly queues a distance change; factor < 1 moves closer.
func (o *OrbitControls) Dolly(factor float64) {
	if !o.Enabled || factor <= 0 {
		return
	}
	o.scale *= factor
}

// Update applies the queued motion. With damping only a fraction is applied
// per call and the remainder decays.
func (o *OrbitControls) Update() {
	c := o.cam
	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius < 1e-12 {
		radius = 1e-3
		offset = mgl64.Vec3{0, 0, radius}
	}
	theta := math.Atan2(offset.X(), offset.Z())
	phi := math.Acos(clamp(offset.Y()/radius, -1, 1))

	k := 1.0
	if o.Damping > 0 {
		k = o.Damping
	}
	theta += o.thetaDelta * k
	phi = clamp(phi+o.phiDelta*k, 1e-6, math.Pi-1e-6)
	c.Target = c.Target.Add(o.panOffset.Mul(k))

	radius *= o.scale
	if o.MaxDistance > 0 {
		radius = clamp(radius, o.MinDistance, o.MaxDistance)
	}
	o.scale = 1

	sp := math.Sin(phi)
	c.Position = c.Target.Add(mgl64.Vec3{radius * sp * math.Sin(theta), radius * math.Cos(phi), radius * sp * math.Cos(theta)})

	if o.Damping > 0 {
		o.thetaDelta *= 1 - o.Damping
		o.phiDelta *= 1 - o.Damping
		o.panOffset = o.panOffset.Mul(1 - o.Damping)
	} else {
		o.thetaDelta, o.phiDelta = 0, 0
		o.panOffset = mgl64.Vec3{}
	}
}
