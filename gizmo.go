package twin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TransformSpace selects the axes the gizmo drags along.
type TransformSpace uint8

const (
	SpaceWorld TransformSpace = iota
	SpaceLocal
)

func (s TransformSpace) String() string {
	if s == SpaceLocal {
		return "local"
	}
	return "world"
}

// Gizmo proportions relative to its on-screen size.
const (
	gizmoScreenFactor = 0.18
	gizmoHitFactor    = 0.12
	gizmoRingRadius   = 0.8
	gizmoRingHit      = 0.15
)

// AxisNone is returned by PickAxis when no arm is under the pointer.
const AxisNone = -1

var gizmoBasis = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// TransformEvent3D describes the attached object's local transform during a
// gizmo drag, in world units and radians.
type TransformEvent3D struct {
	Object   *Object3D
	Mode     TransformMode
	Axis     int
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
}

// Transformer3D is a translate/rotate/scale gizmo bound to one object.
// Arms are picked by their closest approach to the pointer ray; rings by
// intersecting the ray with each ring plane.
type Transformer3D struct {
	cam *Camera3D
	obj *Object3D

	mode    TransformMode
	space   TransformSpace
	hovered int

	dragging   bool
	axis       int
	dragAxis   mgl64.Vec3
	planeNorm  mgl64.Vec3
	dragStart  float64
	startAngle float64
	size       float64

	initPos, initRot, initScale mgl64.Vec3
	initWorld                   mgl64.Vec3

	// TranslationSnap rounds drag distances to this step in world units.
	TranslationSnap float64
	// RotationSnap rounds rotations to multiples of this many degrees.
	RotationSnap float64

	refresh func()

	start  Emitter[TransformEvent3D]
	change Emitter[TransformEvent3D]
	end    Emitter[TransformEvent3D]
}

// NewTransformer3D creates an idle translate gizmo. refresh is called after
// every live change.
func NewTransformer3D(cam *Camera3D, refresh func()) *Transformer3D {
	return &Transformer3D{cam: cam, refresh: refresh, mode: TransformTranslate, axis: AxisNone, hovered: AxisNone}
}

// OnTransformStart registers a listener fired when a drag begins.
func (t *Transformer3D) OnTransformStart(fn func(TransformEvent3D)) Subscription {
	return t.start.On(fn)
}

// OnTransformChange registers a listener fired on every drag update.
func (t *Transformer3D) OnTransformChange(fn func(TransformEvent3D)) Subscription {
	return t.change.On(fn)
}

// OnTransformEnd registers a listener fired when a drag changed the object.
func (t *Transformer3D) OnTransformEnd(fn func(TransformEvent3D)) Subscription {
	return t.end.On(fn)
}

// Attach binds the gizmo to obj, dropping any drag in progress.
func (t *Transformer3D) Attach(obj *Object3D) {
	t.obj = obj
	t.dragging = false
	t.axis = AxisNone
	t.hovered = AxisNone
}

// Detach unbinds the gizmo.
func (t *Transformer3D) Detach() { t.Attach(nil) }

// Attached returns the bound object, or nil.
func (t *Transformer3D) Attached() *Object3D { return t.obj }

// Dragging reports whether a drag is in progress.
func (t *Transformer3D) Dragging() bool { return t.dragging }

// Mode returns the gizmo mode.
func (t *Transformer3D) Mode() TransformMode { return t.mode }

// SetMode switches between translate, rotate and scale. Ignored mid-drag.
func (t *Transformer3D) SetMode(m TransformMode) {
	if !t.dragging {
		t.mode = m
	}
}

// Space returns the axis space.
func (t *Transformer3D) Space() TransformSpace { return t.space }

// SetSpace sets the axis space. Ignored mid-drag.
func (t *Transformer3D) SetSpace(s TransformSpace) {
	if !t.dragging {
		t.space = s
	}
}

// ToggleSpace flips between world and local axes.
func (t *Transformer3D) ToggleSpace() {
	if t.space == SpaceWorld {
		t.SetSpace(SpaceLocal)
	} else {
		t.SetSpace(SpaceWorld)
	}
}

// ActiveAxis returns the dragged axis, or the hovered one when idle.
func (t *Transformer3D) ActiveAxis() int {
	if t.dragging {
		return t.axis
	}
	return t.hovered
}

// Center returns the world position the gizmo is drawn at.
func (t *Transformer3D) Center() mgl64.Vec3 {
	if t.obj == nil {
		return mgl64.Vec3{}
	}
	return t.obj.WorldPosition()
}

// Size returns the arm length in world units, which keeps the gizmo at a
// constant fraction of the view.
func (t *Transformer3D) Size() float64 {
	if t.dragging {
		return t.size
	}
	d := t.Center().Sub(t.cam.Position).Len()
	return math.Max(d*gizmoScreenFactor, 1e-3)
}

// Axes returns the unit arm directions. Scale always uses local axes.
func (t *Transformer3D) Axes() [3]mgl64.Vec3 {
	if t.obj == nil || (t.space == SpaceWorld && t.mode != TransformScale) {
		return gizmoBasis
	}
	m := t.obj.WorldMatrix()
	var out [3]mgl64.Vec3
	for i := range out {
		c := m.Col(i).Vec3()
		if c.Len() < 1e-12 {
			out[i] = gizmoBasis[i]
			continue
		}
		out[i] = c.Normalize()
	}
	return out
}

// PickAxis returns the arm or ring under r, or AxisNone.
func (t *Transformer3D) PickAxis(r Ray) int {
	if t.obj == nil {
		return AxisNone
	}
	center := t.Center()
	size := t.Size()
	best, bestDist := AxisNone, math.Inf(1)
	for i, axis := range t.Axes() {
		var dist float64
		if t.mode == TransformRotate {
			pt, ok := rayPlaneIntersect(r, center, axis)
			if !ok {
				continue
			}
			dist = math.Abs(pt.Sub(center).Len() - size*gizmoRingRadius)
			if dist > size*gizmoRingHit {
				continue
			}
		} else {
			var along float64
			_, along, dist = closestPointBetweenRays(r.Origin, r.Dir, center, axis)
			if along <= 0 || along > size || dist > size*gizmoHitFactor {
				continue
			}
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// Hover updates the highlighted arm for a pointer at (sx, sy).
func (t *Transformer3D) Hover(sx, sy float64) {
	if t.dragging {
		return
	}
	t.hovered = t.PickAxis(t.cam.Ray(sx, sy))
}

// PointerDown starts a drag when an arm is under (sx, sy). Returns false
// when nothing is attached or no arm was hit.
func (t *Transformer3D) PointerDown(sx, sy float64) bool {
	if t.obj == nil || t.dragging {
		return false
	}
	r := t.cam.Ray(sx, sy)
	axis := t.PickAxis(r)
	if axis == AxisNone {
		return false
	}
	center := t.Center()
	size := t.Size()
	dir := t.Axes()[axis]

	if t.mode == TransformRotate {
		pt, ok := rayPlaneIntersect(r, center, dir)
		if !ok {
			return false
		}
		t.planeNorm = dir
		t.startAngle = ringAngle(pt.Sub(center), dir)
	} else {
		view := center.Sub(t.cam.Position)
		if view.Len() < 1e-12 {
			return false
		}
		n := dir.Cross(view.Normalize().Cross(dir))
		if n.Len() < 1e-9 {
			return false
		}
		t.planeNorm = n.Normalize()
		pt, ok := rayPlaneIntersect(r, center, t.planeNorm)
		if !ok {
			return false
		}
		t.dragStart = pt.Sub(center).Dot(dir)
	}

	t.axis = axis
	t.dragAxis = dir
	t.size = size
	t.initWorld = center
	t.initPos, t.initRot, t.initScale = t.obj.Position, t.obj.Rotation, t.obj.Scale
	t.dragging = true
	t.start.Emit(t.event())
	return true
}

// PointerMove applies the drag for a pointer at (sx, sy). When idle it
// updates the hover highlight instead.
func (t *Transformer3D) PointerMove(sx, sy float64) {
	if !t.dragging {
		t.Hover(sx, sy)
		return
	}
	if t.obj == nil {
		t.dragging = false
		return
	}
	r := t.cam.Ray(sx, sy)
	pt, ok := rayPlaneIntersect(r, t.initWorld, t.planeNorm)
	if !ok {
		return
	}

	switch t.mode {
	case TransformTranslate:
		delta := snapTo(pt.Sub(t.initWorld).Dot(t.dragAxis)-t.dragStart, t.TranslationSnap)
		move := t.dragAxis.Mul(delta)
		if p := t.obj.Parent; p != nil {
			move = p.WorldMatrix().Inv().Mul4x1(move.Vec4(0)).Vec3()
		}
		t.obj.Position = t.initPos.Add(move)
	case TransformRotate:
		angle := wrapAngle(ringAngle(pt.Sub(t.initWorld), t.dragAxis) - t.startAngle)
		if t.RotationSnap > 0 {
			angle = degToRad(snapTo(radToDeg(angle), t.RotationSnap))
		}
		rot := t.initRot
		rot[t.axis] += angle
		t.obj.Rotation = rot
	case TransformScale:
		delta := pt.Sub(t.initWorld).Dot(t.dragAxis) - t.dragStart
		factor := 1 + delta/t.size
		s := t.initScale
		s[t.axis] = math.Max(t.initScale[t.axis]*factor, minShapeScale)
		t.obj.Scale = s
	}
	if t.refresh != nil {
		t.refresh()
	}
	t.change.Emit(t.event())
}

// PointerUp ends the drag. The end event fires only if the object changed.
func (t *Transformer3D) PointerUp() {
	if !t.dragging {
		return
	}
	t.dragging = false
	if t.obj != nil && t.changed() {
		t.end.Emit(t.event())
	}
	t.axis = AxisNone
}

// Cancel restores the pre-drag transform and returns to idle without an
// end event.
func (t *Transformer3D) Cancel() {
	if !t.dragging {
		return
	}
	t.dragging = false
	t.axis = AxisNone
	if t.obj == nil {
		return
	}
	t.obj.Position, t.obj.Rotation, t.obj.Scale = t.initPos, t.initRot, t.initScale
	if t.refresh != nil {
		t.refresh()
	}
}

func (t *Transformer3D) changed() bool {
	switch t.mode {
	case TransformRotate:
		return t.obj.Rotation != t.initRot
	case TransformScale:
		return t.obj.Scale != t.initScale
	}
	return t.obj.Position != t.initPos
}

func (t *Transformer3D) event() TransformEvent3D {
	return TransformEvent3D{
		Object:   t.obj,
		Mode:     t.mode,
		Axis:     t.axis,
		Position: t.obj.Position,
		Rotation: t.obj.Rotation,
		Scale:    t.obj.Scale,
	}
}

// ringAngle returns the angle of d around axis n.
func ringAngle(d, n mgl64.Vec3) float64 {
	u := perpendicularTo(n)
	v := n.Cross(u)
	return math.Atan2(d.Dot(v), d.Dot(u))
}

// wrapAngle maps a to (-π, π].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
