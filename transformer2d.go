package twin

import "math"

// TransformEvent2D describes the state of the attached shape during a drag.
// Rotation is in degrees.
type TransformEvent2D struct {
	Object   *Shape
	Mode     TransformMode
	Handle   Handle
	Position Vec2
	Rotation float64
	Scale    Vec2
}

const minShapeScale = 0.01

// Transformer2D manipulates one attached shape through the selection handles.
// It is idle until PointerDown hits a handle, then dragging until PointerUp.
type Transformer2D struct {
	view *Viewport2D
	obj  *Shape

	dragging bool
	handle   Handle
	mode     TransformMode

	startX, startY float64

	snapX, snapY   float64
	snapRot        float64
	snapSX, snapSY float64

	// TranslationSnap rounds translated positions to this grid when > 0.
	TranslationSnap float64
	// RotationSnap rounds rotations to multiples of this many degrees when > 0.
	RotationSnap float64

	refresh func()

	start  Emitter[TransformEvent2D]
	change Emitter[TransformEvent2D]
	end    Emitter[TransformEvent2D]
}

// NewTransformer2D creates an idle transformer. refresh is called after every
// live change so the selection decoration can follow.
func NewTransformer2D(view *Viewport2D, refresh func()) *Transformer2D {
	return &Transformer2D{view: view, refresh: refresh}
}

// OnTransformStart registers a listener fired when a drag begins.
func (t *Transformer2D) OnTransformStart(fn func(TransformEvent2D)) Subscription {
	return t.start.On(fn)
}

// OnTransformChange registers a listener fired on every drag update.
func (t *Transformer2D) OnTransformChange(fn func(TransformEvent2D)) Subscription {
	return t.change.On(fn)
}

// OnTransformEnd registers a listener fired when a drag changed the shape.
func (t *Transformer2D) OnTransformEnd(fn func(TransformEvent2D)) Subscription {
	return t.end.On(fn)
}

// Attach makes obj the manipulated shape. Any drag in progress is dropped.
func (t *Transformer2D) Attach(obj *Shape) {
	t.obj = obj
	t.dragging = false
}

// Detach releases the attached shape.
func (t *Transformer2D) Detach() { t.Attach(nil) }

// Attached returns the manipulated shape, or nil.
func (t *Transformer2D) Attached() *Shape { return t.obj }

// Dragging reports whether a drag is in progress.
func (t *Transformer2D) Dragging() bool { return t.dragging }

// Mode returns the mode of the current or last drag.
func (t *Transformer2D) Mode() TransformMode { return t.mode }

// PointerDown starts a drag on handle at screen point (sx, sy). Returns false
// when nothing is attached or the handle is not draggable.
func (t *Transformer2D) PointerDown(h Handle, sx, sy float64) bool {
	if t.obj == nil || h == HandleNone {
		return false
	}
	switch h {
	case HandleBody:
		t.mode = TransformTranslate
	case HandleRotate:
		t.mode = TransformRotate
	default:
		t.mode = TransformScale
	}
	t.handle = h
	t.dragging = true
	t.startX, t.startY = sx, sy
	t.snapX, t.snapY = t.obj.X, t.obj.Y
	t.snapRot = t.obj.Rotation
	t.snapSX, t.snapSY = t.obj.ScaleX, t.obj.ScaleY
	t.start.Emit(t.event())
	return true
}

// PointerMove applies the drag to the attached shape.
func (t *Transformer2D) PointerMove(sx, sy float64) {
	if !t.dragging || t.obj == nil {
		return
	}
	zoom := t.view.Zoom
	dx := (sx - t.startX) / zoom
	dy := (sy - t.startY) / zoom

	switch t.mode {
	case TransformTranslate:
		t.obj.X = snapTo(t.snapX+dx, t.TranslationSnap)
		t.obj.Y = snapTo(t.snapY+dy, t.TranslationSnap)
	case TransformRotate:
		px, py := t.pivotScreen()
		deg := radToDeg(math.Atan2(sy-py, sx-px) + math.Pi/2)
		t.obj.Rotation = degToRad(snapTo(deg, t.RotationSnap))
	case TransformScale:
		signX, signY := t.handle.scaleSigns()
		sin, cos := math.Sincos(t.snapRot)
		lx := dx*cos + dy*sin
		ly := -dx*sin + dy*cos
		b := t.obj.LocalBounds()
		if b.Width > 0 && signX != 0 {
			t.obj.ScaleX = math.Max(minShapeScale, t.snapSX+signX*lx/b.Width)
		}
		if b.Height > 0 && signY != 0 {
			t.obj.ScaleY = math.Max(minShapeScale, t.snapSY+signY*ly/b.Height)
		}
	}
	if t.refresh != nil {
		t.refresh()
	}
	t.change.Emit(t.event())
}

// PointerUp ends the drag. The end event fires only when the value of the
// active mode changed.
func (t *Transformer2D) PointerUp() {
	if !t.dragging {
		return
	}
	t.dragging = false
	if t.obj == nil || !t.changed() {
		return
	}
	t.end.Emit(t.event())
}

// Cancel aborts the drag and restores the snapshot.
func (t *Transformer2D) Cancel() {
	if !t.dragging {
		return
	}
	t.dragging = false
	if t.obj == nil {
		return
	}
	t.obj.X, t.obj.Y = t.snapX, t.snapY
	t.obj.Rotation = t.snapRot
	t.obj.ScaleX, t.obj.ScaleY = t.snapSX, t.snapSY
	if t.refresh != nil {
		t.refresh()
	}
}

func (t *Transformer2D) changed() bool {
	switch t.mode {
	case TransformTranslate:
		return t.obj.X != t.snapX || t.obj.Y != t.snapY
	case TransformRotate:
		return t.obj.Rotation != t.snapRot
	case TransformScale:
		return t.obj.ScaleX != t.snapSX || t.obj.ScaleY != t.snapSY
	}
	return false
}

// pivotScreen returns the screen position of the shape's origin.
func (t *Transformer2D) pivotScreen() (float64, float64) {
	wx, wy := t.obj.X, t.obj.Y
	if t.obj.Parent != nil {
		wx, wy = transformPoint(t.obj.Parent.WorldTransform(), wx, wy)
	}
	return t.view.WorldToScreen(wx, wy)
}

func (t *Transformer2D) event() TransformEvent2D {
	return TransformEvent2D{
		Object:   t.obj,
		Mode:     t.mode,
		Handle:   t.handle,
		Position: Vec2{X: t.obj.X, Y: t.obj.Y},
		Rotation: radToDeg(t.obj.Rotation),
		Scale:    Vec2{X: t.obj.ScaleX, Y: t.obj.ScaleY},
	}
}

// snapTo rounds v to the nearest multiple of step; step <= 0 disables it.
func snapTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
