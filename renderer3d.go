package twin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

type gesture3D uint8

const (
	gesture3DIdle gesture3D = iota
	gesture3DClick
	gesture3DOrbit
	gesture3DPan
	gesture3DLook
	gesture3DGizmo
)

const (
	// clickSlop is how far the pointer may travel before a click becomes
	// an orbit drag.
	clickSlop = 3
	// lookPerPixel is the free-look rotation per dragged pixel, in radians.
	lookPerPixel = 0.005
	// dollyStep is the distance factor per wheel notch.
	dollyStep = 1.1
)

// ViewportState3D is the persisted 3D camera. Positions are world units.
type ViewportState3D struct {
	CameraPosition Vec3    `json:"cameraPosition"`
	ControlsTarget Vec3    `json:"controlsTarget"`
	CameraZoom     float64 `json:"cameraZoom"`
}

// Renderer3D projects the scene into a perspective 3D view with orbit and
// fly-through navigation and a transform gizmo on the selection.
type Renderer3D struct {
	*sceneRenderer[*Object3D]

	canvas      *Canvas
	cfg         Config
	camera      *Camera3D
	controls    *OrbitControls
	scene       *Object3D
	helpers     *Object3D
	selector    *Selector3D
	transformer *Transformer3D

	gesture      gesture3D
	gestureBtn   MouseButton
	downX, downY float64
	lastX, lastY float64
	toggle       bool
	held         map[ebiten.Key]bool

	subs           []Subscription
	background     Color
	gridColor      Color
	selectionColor Color
}

// NewRenderer3D builds display objects for model and attaches to canvas.
func NewRenderer3D(canvas *Canvas, model *SceneModel, cfg Config) (*Renderer3D, error) {
	if canvas == nil {
		return nil, ErrNoCanvas
	}
	if model == nil {
		model = NewSceneModel(SceneMode3D)
	}
	if cfg.Camera.Fov <= 0 || cfg.Camera.Far <= cfg.Camera.Near {
		cfg.Camera = DefaultConfig().Camera
	}
	w, h := canvas.Size()
	r := &Renderer3D{
		canvas:         canvas,
		cfg:            cfg,
		camera:         NewCamera3D(cfg.Camera, float64(w), float64(h)),
		scene:          NewObject3D(HelperPrefix + "scene"),
		helpers:        NewObject3D(HelperPrefix + "helpers"),
		held:           make(map[ebiten.Key]bool),
		background:     configColor(cfg.Background, ColorWhite),
		gridColor:      configColor(cfg.Grid.Color, Color{0.87, 0.87, 0.87, 1}),
		selectionColor: configColor(cfg.Selection.Color, Color{0.12, 0.56, 1, 1}),
	}
	r.controls = NewOrbitControls(r.camera, cfg.Camera)
	r.sceneRenderer = newSceneRenderer[*Object3D](model, r)

	r.selector = NewSelector3D(r.scene, r.helpers, r.camera, r.lookupObject)
	r.transformer = NewTransformer3D(r.camera, r.selector.RefreshBoundingBox)
	r.transformer.TranslationSnap = PixelToWorld(cfg.Snap.Translation)
	r.transformer.RotationSnap = cfg.Snap.Rotation

	r.subs = append(r.subs,
		r.selector.OnChange(r.selectionChanged),
		r.transformer.OnTransformEnd(r.commitTransform),
		canvas.Attach(r),
		canvas.AddTicker(r.tick),
		canvas.OnResize(r.Resize),
	)
	r.build()
	logger().Debug("3d renderer ready", "nodes", len(model.Nodes), "objects", r.NumObjects())
	return r, nil
}

// Mode returns SceneMode3D.
func (r *Renderer3D) Mode() SceneMode { return SceneMode3D }

// Camera returns the live camera.
func (r *Renderer3D) Camera() *Camera3D { return r.camera }

// Controls returns the orbit controls.
func (r *Renderer3D) Controls() *OrbitControls { return r.controls }

// Selector returns the 3D selector.
func (r *Renderer3D) Selector() *Selector3D { return r.selector }

// Transformer returns the gizmo.
func (r *Renderer3D) Transformer() *Transformer3D { return r.transformer }

// Scene returns the root object holding one object per top-level node.
func (r *Renderer3D) Scene() *Object3D { return r.scene }

// Resize updates the camera aspect.
func (r *Renderer3D) Resize(width, height int) {
	r.camera.Width, r.camera.Height = float64(width), float64(height)
}

// ViewportState returns the camera position, orbit target and zoom.
func (r *Renderer3D) ViewportState() any {
	return ViewportState3D{
		CameraPosition: vec3From(r.camera.Position),
		ControlsTarget: vec3From(r.camera.Target),
		CameraZoom:     r.camera.Zoom,
	}
}

// SetViewportState restores a state previously returned by ViewportState.
// Other values are ignored.
func (r *Renderer3D) SetViewportState(state any) {
	s, ok := state.(ViewportState3D)
	if !ok {
		return
	}
	r.camera.Position = mglVec3(s.CameraPosition)
	r.camera.Target = mglVec3(s.ControlsTarget)
	if s.CameraZoom > 0 {
		r.camera.Zoom = s.CameraZoom
	}
}

// FocusNode animates the camera onto the node's bounding box.
func (r *Renderer3D) FocusNode(id string) bool {
	obj, ok := r.nodeMap[id]
	if !ok {
		return false
	}
	r.focus(obj)
	return true
}

func (r *Renderer3D) focus(obj *Object3D) {
	r.camera.FocusOn(obj.WorldBounds(), r.cfg.Camera.FocusTime)
}

// Dispose stops the frame tick, detaches from the canvas and releases every
// display object.
func (r *Renderer3D) Dispose() {
	if r.disposed {
		return
	}
	r.transformer.Detach()
	for _, s := range r.subs {
		s.Remove()
	}
	r.subs = nil
	r.dispose()
	r.selector.dispose()
	r.scene.Dispose()
	r.helpers.Dispose()
	logger().Debug("3d renderer disposed")
}

// tick advances fly movement, the focus animation and the orbit damping.
func (r *Renderer3D) tick(dt float64) {
	if r.disposed {
		return
	}
	r.fly(dt)
	if r.camera.Focusing() {
		r.camera.update(dt)
	} else {
		r.controls.Update()
	}
}

func (r *Renderer3D) fly(dt float64) {
	if len(r.held) == 0 {
		return
	}
	fwd, right := r.camera.Forward(), r.camera.Right()
	up := mgl64.Vec3{0, 1, 0}
	var move mgl64.Vec3
	var yaw, pitch float64
	for k := range r.held {
		switch k {
		case ebiten.KeyW:
			move = move.Add(fwd)
		case ebiten.KeyS:
			move = move.Sub(fwd)
		case ebiten.KeyD:
			move = move.Add(right)
		case ebiten.KeyA:
			move = move.Sub(right)
		case ebiten.KeyE, ebiten.KeySpace:
			move = move.Add(up)
		case ebiten.KeyQ, ebiten.KeyShift:
			move = move.Sub(up)
		case ebiten.KeyArrowLeft:
			yaw++
		case ebiten.KeyArrowRight:
			yaw--
		case ebiten.KeyArrowUp:
			pitch++
		case ebiten.KeyArrowDown:
			pitch--
		}
	}
	if move.Len() > 1e-9 {
		r.camera.Move(move.Normalize().Mul(r.cfg.Camera.FlySpeed * dt))
	}
	if yaw != 0 || pitch != 0 {
		k := r.cfg.Camera.LookSpeed * dt
		r.camera.Look(yaw*k, pitch*k)
	}
}

func (r *Renderer3D) lookupObject(id string) (*Object3D, bool) {
	o, ok := r.nodeMap[id]
	return o, ok
}

func (r *Renderer3D) locked(obj *Object3D) bool {
	id, ok := r.nodeID(obj)
	if !ok {
		return false
	}
	n := r.model.FindNode(id)
	return n != nil && n.IsLocked()
}

func (r *Renderer3D) selectionChanged(obj *Object3D) {
	if obj != nil && !r.locked(obj) {
		r.transformer.Attach(obj)
	} else {
		r.transformer.Detach()
	}
	r.emitSelect(obj, obj != nil)
}

// commitTransform converts a finished gizmo drag back to pixels and degrees
// and writes it into the model.
func (r *Renderer3D) commitTransform(ev TransformEvent3D) {
	id, ok := r.nodeID(ev.Object)
	if !ok {
		return
	}
	var tu TransformUpdate
	switch ev.Mode {
	case TransformTranslate:
		p := WorldToPixelVec(vec3From(ev.Position))
		tu.Position = &p
	case TransformRotate:
		rot := Vec3{X: radToDeg(ev.Rotation.X()), Y: radToDeg(ev.Rotation.Y()), Z: radToDeg(ev.Rotation.Z())}
		tu.Rotation = &rot
	case TransformScale:
		sc := vec3From(ev.Scale)
		tu.Scale = &sc
	}
	r.UpdateNode(id, NodeUpdate{Transform: &tu})
}

// PointerDown starts a gizmo drag, a click, a pan or free look. A double
// click focuses the camera on the object under the pointer.
func (r *Renderer3D) PointerDown(e PointerEvent) {
	if r.disposed || r.gesture != gesture3DIdle {
		return
	}
	r.downX, r.downY = e.X, e.Y
	r.lastX, r.lastY = e.X, e.Y
	r.gestureBtn = e.Button

	switch e.Button {
	case MouseButtonRight:
		r.controls.Enabled = false
		r.gesture = gesture3DLook
	case MouseButtonMiddle:
		r.gesture = gesture3DPan
	case MouseButtonLeft:
		if e.Clicks >= 2 {
			if hit := r.selector.HitTest(e.X, e.Y); hit != nil {
				r.selector.Select(hit)
				r.focus(hit)
			}
			return
		}
		if r.transformer.PointerDown(e.X, e.Y) {
			r.gesture = gesture3DGizmo
			return
		}
		r.toggle = e.Modifiers.Has(ModCtrl) || e.Modifiers.Has(ModMeta)
		r.gesture = gesture3DClick
	}
}

// PointerMove advances the active gesture or updates the gizmo hover.
func (r *Renderer3D) PointerMove(e PointerEvent) {
	if r.disposed {
		return
	}
	dx, dy := e.X-r.lastX, e.Y-r.lastY
	switch r.gesture {
	case gesture3DIdle:
		r.transformer.Hover(e.X, e.Y)
	case gesture3DClick:
		if math.Hypot(e.X-r.downX, e.Y-r.downY) > clickSlop {
			r.gesture = gesture3DOrbit
			r.controls.Rotate(e.X-r.downX, e.Y-r.downY)
		}
	case gesture3DOrbit:
		r.controls.Rotate(dx, dy)
	case gesture3DPan:
		r.controls.Pan(dx, dy)
	case gesture3DLook:
		r.camera.Look(-dx*lookPerPixel, -dy*lookPerPixel)
	case gesture3DGizmo:
		r.transformer.PointerMove(e.X, e.Y)
	}
	r.lastX, r.lastY = e.X, e.Y
}

// PointerUp ends the active gesture. A click without drag selects.
func (r *Renderer3D) PointerUp(e PointerEvent) {
	if r.disposed || (r.gesture != gesture3DIdle && e.Button != r.gestureBtn) {
		return
	}
	g := r.gesture
	r.gesture = gesture3DIdle
	switch g {
	case gesture3DClick:
		if r.toggle {
			r.selector.Toggle(r.selector.HitTest(e.X, e.Y))
			return
		}
		r.selector.SelectByPointer(e.X, e.Y)
	case gesture3DGizmo:
		r.transformer.PointerUp()
	case gesture3DLook:
		r.controls.Enabled = true
	}
}

// Wheel dollies the camera toward or away from the orbit target.
func (r *Renderer3D) Wheel(e WheelEvent) {
	if r.disposed || e.DeltaY == 0 {
		return
	}
	if e.DeltaY > 0 {
		r.controls.Dolly(dollyStep)
	} else {
		r.controls.Dolly(1 / dollyStep)
	}
}

// KeyDown handles gizmo modes, deletion, deselection and the fly keys while
// the canvas has keyboard focus.
func (r *Renderer3D) KeyDown(e KeyEvent) {
	if r.disposed || !r.canvas.KeyboardEnabled() {
		return
	}
	switch e.Key {
	case ebiten.KeyDigit1:
		r.transformer.SetMode(TransformTranslate)
	case ebiten.KeyDigit2:
		r.transformer.SetMode(TransformRotate)
	case ebiten.KeyDigit3:
		r.transformer.SetMode(TransformScale)
	case ebiten.KeyX:
		r.transformer.ToggleSpace()
	case ebiten.KeyDelete, ebiten.KeyBackspace:
		r.DeleteSelected()
	case ebiten.KeyEscape:
		r.cancelGesture()
		r.selector.Deselect()
	case ebiten.KeyF:
		if obj := r.selector.Selected(); obj != nil {
			r.focus(obj)
		}
	case ebiten.KeyW, ebiten.KeyA, ebiten.KeyS, ebiten.KeyD,
		ebiten.KeyQ, ebiten.KeyE, ebiten.KeySpace, ebiten.KeyShift,
		ebiten.KeyArrowLeft, ebiten.KeyArrowRight, ebiten.KeyArrowUp, ebiten.KeyArrowDown:
		r.held[e.Key] = true
	}
}

// KeyUp stops fly movement for the released key. It is not gated so a
// release is never lost when focus moves away mid-flight.
func (r *Renderer3D) KeyUp(e KeyEvent) {
	delete(r.held, e.Key)
}

func (r *Renderer3D) cancelGesture() {
	switch r.gesture {
	case gesture3DGizmo:
		r.transformer.Cancel()
	case gesture3DLook:
		r.controls.Enabled = true
	}
	r.gesture = gesture3DIdle
}

// DisplayBackend implementation.

func (r *Renderer3D) createObject(node *SceneNode) (*Object3D, bool) {
	o := CreateObject3D(node)
	return o, o != nil
}

func (r *Renderer3D) insertObject(obj *Object3D, index int) { r.scene.AddChildAt(obj, index) }

func (r *Renderer3D) removeObject(obj *Object3D) { obj.Dispose() }

func (r *Renderer3D) updateObjectTransform(obj *Object3D, node *SceneNode) {
	if node.Name != "" {
		obj.Name = node.Name
	}
	applyObjectTransform(obj, node)
}

func (r *Renderer3D) primary() (*Object3D, bool) {
	o := r.selector.Selected()
	return o, o != nil
}

func (r *Renderer3D) selectedObjects() []*Object3D { return r.selector.SelectedAll() }

func (r *Renderer3D) selectObject(obj *Object3D) { r.selector.Select(obj) }

func (r *Renderer3D) clearSelection() {
	r.transformer.Detach()
	r.selector.Deselect()
}

func (r *Renderer3D) releaseObject(obj *Object3D) {
	if r.transformer.Attached() == obj {
		r.transformer.Detach()
	}
	r.selector.forget(obj)
}

func (r *Renderer3D) replaceObject(old, obj *Object3D) {
	r.selector.replace(old, obj)
	if r.transformer.Attached() == old {
		r.transformer.Attach(obj)
	}
}

func (r *Renderer3D) refreshSelection() { r.selector.RefreshBoundingBox() }

func vec3From(v mgl64.Vec3) Vec3 { return Vec3{X: v.X(), Y: v.Y(), Z: v.Z()} }

func mglVec3(v Vec3) mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }
