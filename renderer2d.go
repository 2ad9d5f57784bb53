package twin

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

type gesture2D uint8

const (
	gestureIdle gesture2D = iota
	gesturePan
	gestureTransform
	gestureBand
	gestureMove
)

// ViewportState2D is the persisted 2D camera: pan offset and zoom.
type ViewportState2D struct {
	Pan  Vec2    `json:"pan"`
	Zoom float64 `json:"zoom"`
}

type moveSnapshot struct {
	obj  *Shape
	x, y float64
}

// Renderer2D projects the scene top-down onto a pannable, zoomable 2D
// surface and handles selection, box selection, drag-to-move and the
// transform handles.
type Renderer2D struct {
	*sceneRenderer[*Shape]

	canvas      *Canvas
	cfg         Config
	view        *Viewport2D
	layer       *Shape
	selector    *Selector2D
	transformer *Transformer2D

	gesture        gesture2D
	gestureButton  MouseButton
	lastX, lastY   float64
	downX, downY   float64
	band           Rect
	bandAdditive   bool
	moving         []moveSnapshot
	moved          bool
	spaceHeld      bool
	subs           []Subscription
	background     Color
	gridColor      Color
	selectionColor Color
}

// NewRenderer2D builds display objects for model and attaches to canvas.
func NewRenderer2D(canvas *Canvas, model *SceneModel, cfg Config) (*Renderer2D, error) {
	if canvas == nil {
		return nil, ErrNoCanvas
	}
	if model == nil {
		model = NewSceneModel(SceneMode2D)
	}
	w, h := canvas.Size()
	r := &Renderer2D{
		canvas:         canvas,
		cfg:            cfg,
		view:           NewViewport2D(float64(w), float64(h)),
		layer:          NewShape(HelperPrefix+"layer", ShapeGroup),
		background:     configColor(cfg.Background, ColorWhite),
		gridColor:      configColor(cfg.Grid.Color, Color{0.87, 0.87, 0.87, 1}),
		selectionColor: configColor(cfg.Selection.Color, Color{0.12, 0.56, 1, 1}),
	}
	if cfg.Viewport.MinZoom > 0 {
		r.view.MinZoom = cfg.Viewport.MinZoom
	}
	if cfg.Viewport.MaxZoom > 0 {
		r.view.MaxZoom = cfg.Viewport.MaxZoom
	}
	r.sceneRenderer = newSceneRenderer[*Shape](model, r)

	r.selector = NewSelector2D(r.layer, r.view, r.lookupShape)
	if cfg.Selection.HandleSize > 0 {
		r.selector.HandleSize = cfg.Selection.HandleSize
	}
	if cfg.Selection.RotateOffset > 0 {
		r.selector.RotateOffset = cfg.Selection.RotateOffset
	}
	r.transformer = NewTransformer2D(r.view, r.selector.RefreshBoundingBox)
	r.transformer.TranslationSnap = cfg.Snap.Translation
	r.transformer.RotationSnap = cfg.Snap.Rotation

	r.subs = append(r.subs,
		r.selector.OnChange(r.selectionChanged),
		r.transformer.OnTransformEnd(r.commitTransform),
		canvas.Attach(r),
		canvas.AddTicker(r.tick),
		canvas.OnResize(r.Resize),
	)
	r.build()
	logger().Debug("2d renderer ready", "nodes", len(model.Nodes), "objects", r.NumObjects())
	return r, nil
}

// Mode returns SceneMode2D.
func (r *Renderer2D) Mode() SceneMode { return SceneMode2D }

// Viewport returns the live 2D viewport.
func (r *Renderer2D) Viewport() *Viewport2D { return r.view }

// Selector returns the 2D selector.
func (r *Renderer2D) Selector() *Selector2D { return r.selector }

// Transformer returns the 2D transformer.
func (r *Renderer2D) Transformer() *Transformer2D { return r.transformer }

// Layer returns the root shape holding one shape per top-level node.
func (r *Renderer2D) Layer() *Shape { return r.layer }

// Resize updates the viewport size. The grid follows on the next draw.
func (r *Renderer2D) Resize(width, height int) {
	r.view.Width, r.view.Height = float64(width), float64(height)
}

// ViewportState returns the current pan and zoom.
func (r *Renderer2D) ViewportState() any {
	return ViewportState2D{Pan: Vec2{X: r.view.PanX, Y: r.view.PanY}, Zoom: r.view.Zoom}
}

// SetViewportState restores a state previously returned by ViewportState.
// Other values are ignored.
func (r *Renderer2D) SetViewportState(state any) {
	s, ok := state.(ViewportState2D)
	if !ok {
		return
	}
	r.view.PanX, r.view.PanY = s.Pan.X, s.Pan.Y
	if s.Zoom > 0 {
		r.view.Zoom = r.view.ClampZoom(s.Zoom)
	}
}

// FocusNode animates the viewport so the node's shape is centered.
func (r *Renderer2D) FocusNode(id string) bool {
	obj, ok := r.nodeMap[id]
	if !ok {
		return false
	}
	cx, cy := obj.WorldBounds().Center()
	d := r.cfg.Viewport.ScrollDuration
	if d <= 0 {
		r.view.CenterOn(cx, cy)
		return true
	}
	r.view.ScrollTo(cx, cy, float32(d), ease.OutCubic)
	return true
}

// Dispose detaches from the canvas and releases every display object.
func (r *Renderer2D) Dispose() {
	if r.disposed {
		return
	}
	r.transformer.Detach()
	for _, s := range r.subs {
		s.Remove()
	}
	r.subs = nil
	r.dispose()
	r.layer.Dispose()
	logger().Debug("2d renderer disposed")
}

func (r *Renderer2D) tick(dt float64) { r.view.update(float32(dt)) }

func (r *Renderer2D) lookupShape(id string) (*Shape, bool) {
	s, ok := r.nodeMap[id]
	return s, ok
}

func (r *Renderer2D) locked(obj *Shape) bool {
	id, ok := r.nodeID(obj)
	if !ok {
		return false
	}
	n := r.model.FindNode(id)
	return n != nil && n.IsLocked()
}

func (r *Renderer2D) selectionChanged(obj *Shape) {
	if obj != nil && !r.locked(obj) {
		r.transformer.Attach(obj)
	} else {
		r.transformer.Detach()
	}
	r.emitSelect(obj, obj != nil)
}

// commitTransform writes a finished handle drag back into the model.
func (r *Renderer2D) commitTransform(ev TransformEvent2D) {
	id, ok := r.nodeID(ev.Object)
	if !ok {
		return
	}
	node := r.model.FindNode(id)
	if node == nil {
		return
	}
	var tu TransformUpdate
	switch ev.Mode {
	case TransformTranslate:
		p := Position2Dto3D(ev.Position, node.Transform.Position.Y)
		tu.Position = &p
	case TransformRotate:
		rot := node.Transform.RotationOrZero()
		rot.Y = ev.Rotation
		tu.Rotation = &rot
	case TransformScale:
		sc := Scale2Dto3D(ev.Scale, node.Transform.ScaleOrOne().Y)
		tu.Scale = &sc
	}
	r.UpdateNode(id, NodeUpdate{Transform: &tu})
}

// PointerDown starts a pan, handle drag, move or box selection.
func (r *Renderer2D) PointerDown(e PointerEvent) {
	if r.disposed || r.gesture != gestureIdle {
		return
	}
	r.lastX, r.lastY = e.X, e.Y
	r.downX, r.downY = e.X, e.Y
	r.gestureButton = e.Button

	if e.Button == MouseButtonMiddle || (e.Button == MouseButtonLeft && r.spaceHeld) {
		r.gesture = gesturePan
		return
	}
	if e.Button != MouseButtonLeft {
		return
	}

	if h := r.selector.HandleAt(e.X, e.Y); h != HandleNone && h != HandleBody {
		if r.transformer.PointerDown(h, e.X, e.Y) {
			r.gesture = gestureTransform
			return
		}
	}

	hit := r.selector.HitTest(e.X, e.Y)
	switch {
	case hit == nil && r.cfg.Viewport.PanOnEmptyDrag:
		r.selector.Deselect()
		r.gesture = gesturePan
	case hit == nil:
		r.bandAdditive = e.Modifiers&(ModShift|ModCtrl|ModMeta) != 0
		if !r.bandAdditive {
			r.selector.Deselect()
		}
		wx, wy := r.view.ScreenToWorld(e.X, e.Y)
		r.band = Rect{X: wx, Y: wy}
		r.gesture = gestureBand
	case e.Modifiers.Has(ModCtrl) || e.Modifiers.Has(ModMeta):
		r.selector.Toggle(hit)
	default:
		if !r.selector.IsSelected(hit) {
			r.selector.Select(hit)
		}
		r.armMove()
	}
}

func (r *Renderer2D) armMove() {
	r.moving = r.moving[:0]
	for _, obj := range r.selector.SelectedAll() {
		if r.locked(obj) {
			continue
		}
		r.moving = append(r.moving, moveSnapshot{obj: obj, x: obj.X, y: obj.Y})
	}
	r.moved = false
	r.gesture = gestureMove
}

// PointerMove advances the active gesture.
func (r *Renderer2D) PointerMove(e PointerEvent) {
	if r.disposed {
		return
	}
	switch r.gesture {
	case gesturePan:
		r.view.PanBy(e.X-r.lastX, e.Y-r.lastY)
	case gestureTransform:
		r.transformer.PointerMove(e.X, e.Y)
	case gestureBand:
		x0, y0 := r.view.ScreenToWorld(r.downX, r.downY)
		x1, y1 := r.view.ScreenToWorld(e.X, e.Y)
		r.band = rectFromPoints(x0, y0, x1, y1)
	case gestureMove:
		dx := (e.X - r.downX) / r.view.Zoom
		dy := (e.Y - r.downY) / r.view.Zoom
		for _, m := range r.moving {
			m.obj.X = snapTo(m.x+dx, r.cfg.Snap.Translation)
			m.obj.Y = snapTo(m.y+dy, r.cfg.Snap.Translation)
		}
		r.moved = r.moved || dx != 0 || dy != 0
		r.selector.RefreshBoundingBox()
	}
	r.lastX, r.lastY = e.X, e.Y
}

// PointerUp finishes the active gesture and commits its result.
func (r *Renderer2D) PointerUp(e PointerEvent) {
	if r.disposed {
		return
	}
	// only the button that started the gesture ends it
	if r.gesture != gestureIdle && e.Button != r.gestureButton {
		return
	}
	g := r.gesture
	r.gesture = gestureIdle
	switch g {
	case gestureTransform:
		r.transformer.PointerUp()
	case gestureBand:
		hits := r.selector.ShapesInRect(r.band)
		r.band = Rect{}
		if len(hits) == 0 {
			return
		}
		if r.bandAdditive {
			hits = append(r.selector.SelectedAll(), hits...)
		}
		r.selector.SelectMany(hits)
	case gestureMove:
		moving := r.moving
		r.moving = nil
		if !r.moved {
			return
		}
		for _, m := range moving {
			if m.obj.X == m.x && m.obj.Y == m.y {
				continue
			}
			id, ok := r.nodeID(m.obj)
			if !ok {
				continue
			}
			node := r.model.FindNode(id)
			p := Position2Dto3D(Vec2{X: m.obj.X, Y: m.obj.Y}, node.Transform.Position.Y)
			r.UpdateNode(id, NodeUpdate{Transform: &TransformUpdate{Position: &p}})
		}
	}
}

// Wheel zooms by one step per notch, keeping the point under the cursor
// fixed.
func (r *Renderer2D) Wheel(e WheelEvent) {
	if r.disposed || e.DeltaY == 0 {
		return
	}
	step := r.cfg.Viewport.ZoomStep
	if step <= 0 {
		step = DefaultZoomStep
	}
	dir := 1.0
	if e.DeltaY > 0 {
		dir = -1
	}
	z := math.Round((r.view.Zoom+dir*step)*100) / 100
	r.view.ZoomAt(e.X, e.Y, z)
}

// KeyDown handles the editor shortcuts while the canvas has keyboard focus.
func (r *Renderer2D) KeyDown(e KeyEvent) {
	if r.disposed || !r.canvas.KeyboardEnabled() {
		return
	}
	switch e.Key {
	case ebiten.KeySpace:
		r.spaceHeld = true
	case ebiten.KeyDelete, ebiten.KeyBackspace:
		r.DeleteSelected()
	case ebiten.KeyEscape:
		r.cancelGesture()
		r.selector.Deselect()
	}
}

// KeyUp releases space-pan mode.
func (r *Renderer2D) KeyUp(e KeyEvent) {
	if e.Key == ebiten.KeySpace {
		r.spaceHeld = false
		if r.gesture == gesturePan {
			r.gesture = gestureIdle
		}
	}
}

func (r *Renderer2D) cancelGesture() {
	switch r.gesture {
	case gestureTransform:
		r.transformer.Cancel()
	case gestureMove:
		for _, m := range r.moving {
			m.obj.X, m.obj.Y = m.x, m.y
		}
		r.moving = nil
		r.selector.RefreshBoundingBox()
	case gestureBand:
		r.band = Rect{}
	}
	r.gesture = gestureIdle
}

// DisplayBackend implementation.

func (r *Renderer2D) createObject(node *SceneNode) (*Shape, bool) {
	s := CreateShape(node)
	return s, s != nil
}

func (r *Renderer2D) insertObject(obj *Shape, index int) { r.layer.AddChildAt(obj, index) }

func (r *Renderer2D) removeObject(obj *Shape) { obj.Dispose() }

func (r *Renderer2D) updateObjectTransform(obj *Shape, node *SceneNode) {
	if node.Name != "" {
		obj.Name = node.Name
	}
	applyShapeTransform(obj, node)
}

func (r *Renderer2D) primary() (*Shape, bool) {
	s := r.selector.Selected()
	return s, s != nil
}

func (r *Renderer2D) selectedObjects() []*Shape { return r.selector.SelectedAll() }

func (r *Renderer2D) selectObject(obj *Shape) { r.selector.Select(obj) }

func (r *Renderer2D) clearSelection() {
	r.transformer.Detach()
	r.selector.Deselect()
}

func (r *Renderer2D) releaseObject(obj *Shape) {
	if r.transformer.Attached() == obj {
		r.transformer.Detach()
	}
	r.selector.forget(obj)
}

func (r *Renderer2D) replaceObject(old, obj *Shape) {
	r.selector.replace(old, obj)
	if r.transformer.Attached() == old {
		r.transformer.Attach(obj)
	}
}

func (r *Renderer2D) refreshSelection() { r.selector.RefreshBoundingBox() }
