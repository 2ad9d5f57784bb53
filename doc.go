// Package twin is the scene core of a dual-mode 2D/3D editor for digital twin
// and industrial diagram scenes, built on [Ebitengine].
//
// A single declarative [SceneModel] holds an ordered tree of [SceneNode]
// values (rects, circles, ellipses, polygons, lines, polylines, pipes, text
// and groups). The model is projected by one of two renderers:
//
//   - [Renderer2D] draws the scene top-down on a pannable, zoomable canvas
//     with a grid, box selection, drag-to-move and resize/rotate handles.
//   - [Renderer3D] draws the same nodes as meshes under a perspective camera
//     with orbit controls, fly-through keys and a translate/rotate/scale gizmo.
//
// The [Coordinator] owns the model and keeps exactly one renderer alive,
// swapping them on [Coordinator.SwitchSceneMode] while preserving each mode's
// viewport state.
//
// # Quick start
//
//	canvas := twin.NewCanvas(1280, 720)
//	model := twin.NewSceneModel(twin.SceneMode2D)
//	ed, err := twin.New(canvas, model)
//	if err != nil {
//		return err
//	}
//	ed.AddNode(&twin.SceneNode{
//		ID:       "pump-1",
//		Type:     twin.NodeCircle,
//		Geometry: &twin.Geometry{Radius: twin.Float(40)},
//	})
//
// Drive it from an [ebiten.Game]:
//
//	func (g *Game) Update() error {
//		g.input.Poll(g.editor)
//		g.editor.Update(1.0 / 60)
//		return nil
//	}
//
//	func (g *Game) Draw(screen *ebiten.Image) { g.editor.Draw(screen) }
//
// # Coordinates
//
// Node positions are stored in 3D pixel units with Y as height. The 2D view
// reads (x, z) as its (x, y); the 3D view divides by 100 to get world units.
// Rotations are stored in degrees. See [Position3Dto2D], [PixelToWorld] and
// friends.
//
// # Events
//
// Every mutation updates the model first and then fires a [SceneChangeEvent]
// (add, remove, transform or select). Subscriptions return a [Subscription]
// whose Remove method unregisters the callback.
//
// # Input
//
// Renderers implement [InputHandler]. [EbitenInput] polls ebiten's mouse and
// keyboard state each frame and dispatches pointer, wheel and key events.
// Keyboard shortcuts are ignored unless the canvas is hovered and no text
// field has focus ([Canvas.KeyboardEnabled]).
//
// [Ebitengine]: https://ebitengine.org
package twin
