package twin

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	// ErrNoCanvas is returned when a renderer or coordinator is built without
	// a canvas.
	ErrNoCanvas = errors.New("twin: canvas is required")
	// ErrDisposed is returned by coordinator operations after Dispose.
	ErrDisposed = errors.New("twin: coordinator disposed")
)

// Renderer is the surface shared by Renderer2D and Renderer3D.
type Renderer interface {
	InputHandler
	Layer

	Mode() SceneMode
	AddNode(node *SceneNode) string
	RemoveNode(id string) bool
	UpdateNode(id string, u NodeUpdate) bool
	GetNode(id string) (*SceneNode, bool)
	GetNodes() []*SceneNode
	SelectedNodeID() (string, bool)
	SelectedNodeIDs() []string
	SelectNodeByID(id string)
	DeleteSelected() bool
	FocusNode(id string) bool
	OnSceneChange(fn func(SceneChangeEvent)) Subscription
	ViewportState() any
	SetViewportState(state any)
	Dispose()
}

// RendererFactory builds the renderer for model.SceneMode.
type RendererFactory func(canvas *Canvas, model *SceneModel, cfg Config) (Renderer, error)

// DefaultRendererFactory builds a Renderer2D for 2D scenes and a Renderer3D
// otherwise.
func DefaultRendererFactory(canvas *Canvas, model *SceneModel, cfg Config) (Renderer, error) {
	if model.SceneMode == SceneMode2D {
		r, err := NewRenderer2D(canvas, model, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := NewRenderer3D(canvas, model, cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConfig sets the editor configuration passed to every renderer.
func WithConfig(cfg Config) Option {
	return func(c *Coordinator) { c.cfg = cfg }
}

// WithRendererFactory replaces the renderer constructor.
func WithRendererFactory(f RendererFactory) Option {
	return func(c *Coordinator) {
		if f != nil {
			c.factory = f
		}
	}
}

// Coordinator owns the scene model and keeps exactly one renderer alive for
// the current scene mode. Per-mode viewport state survives mode switches.
type Coordinator struct {
	canvas  *Canvas
	model   *SceneModel
	cfg     Config
	factory RendererFactory

	renderer  Renderer
	relaySub  Subscription
	viewports map[SceneMode]any

	changes  Emitter[SceneChangeEvent]
	modes    Emitter[ModeChangeEvent]
	disposed bool
}

// New creates a coordinator for model on canvas and mounts the renderer for
// the model's scene mode. A nil model starts an empty 3D scene.
func New(canvas *Canvas, model *SceneModel, opts ...Option) (*Coordinator, error) {
	if canvas == nil {
		return nil, ErrNoCanvas
	}
	if model == nil {
		model = NewSceneModel(SceneMode3D)
	}
	model.SceneMode = normalizeSceneMode(model.SceneMode)
	c := &Coordinator{
		canvas:    canvas,
		model:     model,
		cfg:       DefaultConfig(),
		factory:   DefaultRendererFactory,
		viewports: make(map[SceneMode]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.mount(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Coordinator) mount() error {
	r, err := c.factory(c.canvas, c.model, c.cfg)
	if err != nil {
		return fmt.Errorf("create %s renderer: %w", c.model.SceneMode, err)
	}
	c.renderer = r
	c.relaySub = r.OnSceneChange(c.relay)
	return nil
}

func (c *Coordinator) teardown() {
	if c.renderer == nil {
		return
	}
	c.relaySub.Remove()
	c.renderer.Dispose()
	c.canvas.Clear()
	c.renderer = nil
}

func (c *Coordinator) relay(ev SceneChangeEvent) {
	c.syncModel(ev)
	c.changes.Emit(ev)
}

// syncModel makes sure the coordinator's model reflects ev even when a
// custom renderer keeps its own node list. It is idempotent for renderers
// that already share the model.
func (c *Coordinator) syncModel(ev SceneChangeEvent) {
	switch ev.Type {
	case ChangeAdd:
		if ev.Node != nil && c.model.FindNode(ev.NodeID) == nil {
			c.model.Nodes = append(c.model.Nodes, ev.Node)
		}
	case ChangeRemove:
		if c.model.FindNode(ev.NodeID) != nil {
			c.model.detachNode(ev.NodeID)
		}
	}
}

// SceneMode returns the active mode.
func (c *Coordinator) SceneMode() SceneMode { return c.model.SceneMode }

// Model returns the live scene model.
func (c *Coordinator) Model() *SceneModel { return c.model }

// Renderer returns the active renderer, or nil after Dispose.
func (c *Coordinator) Renderer() Renderer { return c.renderer }

// SwitchSceneMode replaces the active renderer with one for mode. Switching
// to the current mode logs a warning and does nothing. If the new renderer
// cannot be built, the previous mode is restored and the error returned.
func (c *Coordinator) SwitchSceneMode(mode SceneMode) error {
	if c.disposed {
		return ErrDisposed
	}
	mode = normalizeSceneMode(mode)
	prev := c.model.SceneMode
	if mode == prev {
		logger().Warn("switch scene mode: already active", "mode", string(mode))
		return nil
	}
	prevState := c.renderer.ViewportState()
	c.viewports[prev] = prevState
	c.teardown()

	c.model.SceneMode = mode
	if err := c.mount(); err != nil {
		c.model.SceneMode = prev
		c.canvas.Clear()
		if rerr := c.mount(); rerr != nil {
			return errors.Join(err, rerr)
		}
		c.renderer.SetViewportState(prevState)
		logger().Warn("switch scene mode failed, rolled back", "mode", string(mode), "err", err)
		return err
	}
	if state, ok := c.viewports[mode]; ok {
		c.renderer.SetViewportState(state)
	}
	logger().Info("scene mode switched", "from", string(prev), "to", string(mode))
	c.modes.Emit(ModeChangeEvent{From: prev, To: mode})
	return nil
}

// LoadScene replaces the scene model and remounts the renderer. Cached
// viewport state is discarded.
func (c *Coordinator) LoadScene(model *SceneModel) error {
	if c.disposed {
		return ErrDisposed
	}
	if model == nil {
		return errors.New("twin: nil scene model")
	}
	prev := c.model
	c.teardown()
	model.SceneMode = normalizeSceneMode(model.SceneMode)
	c.model = model
	c.viewports = make(map[SceneMode]any)
	if err := c.mount(); err != nil {
		c.model = prev
		c.canvas.Clear()
		if rerr := c.mount(); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	if prev.SceneMode != model.SceneMode {
		c.modes.Emit(ModeChangeEvent{From: prev.SceneMode, To: model.SceneMode})
	}
	return nil
}

// Snapshot returns a deep copy of the scene model.
func (c *Coordinator) Snapshot() (*SceneModel, error) { return c.model.Clone() }

// OnSceneChange registers a listener for scene changes of whichever renderer
// is active.
func (c *Coordinator) OnSceneChange(fn func(SceneChangeEvent)) Subscription {
	return c.changes.On(fn)
}

// OnModeChange registers a listener fired after a successful mode switch.
func (c *Coordinator) OnModeChange(fn func(ModeChangeEvent)) Subscription {
	return c.modes.On(fn)
}

// AddNode adds node to the scene. Returns "" when disposed or on duplicate id.
func (c *Coordinator) AddNode(node *SceneNode) string {
	if c.renderer == nil {
		return ""
	}
	return c.renderer.AddNode(node)
}

// RemoveNode removes a node at any depth.
func (c *Coordinator) RemoveNode(id string) bool {
	if c.renderer == nil {
		return false
	}
	return c.renderer.RemoveNode(id)
}

// UpdateNode merges u into a node.
func (c *Coordinator) UpdateNode(id string, u NodeUpdate) bool {
	if c.renderer == nil {
		return false
	}
	return c.renderer.UpdateNode(id, u)
}

// GetNode returns a node at any depth.
func (c *Coordinator) GetNode(id string) (*SceneNode, bool) {
	n := c.model.FindNode(id)
	return n, n != nil
}

// GetNodes returns a shallow copy of the top-level nodes.
func (c *Coordinator) GetNodes() []*SceneNode {
	return append([]*SceneNode(nil), c.model.Nodes...)
}

// SelectedNodeID returns the primary selection of the active renderer.
func (c *Coordinator) SelectedNodeID() (string, bool) {
	if c.renderer == nil {
		return "", false
	}
	return c.renderer.SelectedNodeID()
}

// SelectedNodeIDs returns every selected node id.
func (c *Coordinator) SelectedNodeIDs() []string {
	if c.renderer == nil {
		return nil
	}
	return c.renderer.SelectedNodeIDs()
}

// SelectNodeByID selects a node; "" clears the selection.
func (c *Coordinator) SelectNodeByID(id string) {
	if c.renderer != nil {
		c.renderer.SelectNodeByID(id)
	}
}

// DeleteSelected removes the selected nodes.
func (c *Coordinator) DeleteSelected() bool {
	if c.renderer == nil {
		return false
	}
	return c.renderer.DeleteSelected()
}

// FocusNode moves the view onto a node.
func (c *Coordinator) FocusNode(id string) bool {
	if c.renderer == nil {
		return false
	}
	return c.renderer.FocusNode(id)
}

// ViewportState returns the active renderer's viewport state.
func (c *Coordinator) ViewportState() any {
	if c.renderer == nil {
		return nil
	}
	return c.renderer.ViewportState()
}

// SetViewportState restores a viewport state on the active renderer.
func (c *Coordinator) SetViewportState(state any) {
	if c.renderer != nil {
		c.renderer.SetViewportState(state)
	}
}

// Update advances per-frame work (camera animation, fly controls) by dt
// seconds.
func (c *Coordinator) Update(dt float64) {
	if !c.disposed {
		c.canvas.Tick(dt)
	}
}

// Draw composes the canvas onto screen.
func (c *Coordinator) Draw(screen *ebiten.Image) {
	if !c.disposed {
		c.canvas.Draw(screen)
	}
}

// PointerDown forwards to the active renderer.
func (c *Coordinator) PointerDown(e PointerEvent) {
	if c.renderer != nil {
		c.renderer.PointerDown(e)
	}
}

// PointerMove forwards to the active renderer.
func (c *Coordinator) PointerMove(e PointerEvent) {
	if c.renderer != nil {
		c.renderer.PointerMove(e)
	}
}

// PointerUp forwards to the active renderer.
func (c *Coordinator) PointerUp(e PointerEvent) {
	if c.renderer != nil {
		c.renderer.PointerUp(e)
	}
}

// Wheel forwards to the active renderer.
func (c *Coordinator) Wheel(e WheelEvent) {
	if c.renderer != nil {
		c.renderer.Wheel(e)
	}
}

// KeyDown forwards to the active renderer.
func (c *Coordinator) KeyDown(e KeyEvent) {
	if c.renderer != nil {
		c.renderer.KeyDown(e)
	}
}

// KeyUp forwards to the active renderer.
func (c *Coordinator) KeyUp(e KeyEvent) {
	if c.renderer != nil {
		c.renderer.KeyUp(e)
	}
}

// Dispose tears down the renderer and drops every listener. The model is
// left intact.
func (c *Coordinator) Dispose() {
	if c.disposed {
		return
	}
	c.teardown()
	c.changes.Clear()
	c.modes.Clear()
	c.disposed = true
	logger().Debug("coordinator disposed")
}

// Disposed reports whether Dispose has been called.
func (c *Coordinator) Disposed() bool { return c.disposed }
