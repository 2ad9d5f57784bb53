package twin

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Double-click detection defaults.
const (
	DefaultDoubleClickInterval = 400 * time.Millisecond
	DefaultDoubleClickSlop     = 4.0 // pixels
)

// PointerEvent is a pointer press, move or release in canvas pixels.
// Clicks counts consecutive presses at the same spot (2 = double click).
type PointerEvent struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
	Clicks    int
}

// WheelEvent is a scroll in canvas pixels. Positive DeltaY scrolls down
// (zooms out).
type WheelEvent struct {
	X, Y           float64
	DeltaX, DeltaY float64
	Modifiers      KeyModifiers
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key       ebiten.Key
	Modifiers KeyModifiers
}

// InputHandler receives canvas input. Renderers and the coordinator
// implement it; EbitenInput and Script feed it.
type InputHandler interface {
	PointerDown(PointerEvent)
	PointerMove(PointerEvent)
	PointerUp(PointerEvent)
	Wheel(WheelEvent)
	KeyDown(KeyEvent)
	KeyUp(KeyEvent)
}

// EbitenInput polls ebiten's input state once per frame and dispatches the
// resulting events. It also keeps the canvas hover flag current.
type EbitenInput struct {
	canvas *Canvas

	DoubleClickInterval time.Duration
	DoubleClickSlop     float64

	lastX, lastY   float64
	held           MouseButton
	down           uint8
	clicks         int
	clickAt        time.Time
	clickX, clickY float64
	keys           []ebiten.Key

	now func() time.Time
}

// NewEbitenInput returns a poller that reports hover state to canvas.
func NewEbitenInput(canvas *Canvas) *EbitenInput {
	return &EbitenInput{
		canvas:              canvas,
		DoubleClickInterval: DefaultDoubleClickInterval,
		DoubleClickSlop:     DefaultDoubleClickSlop,
		held:                MouseButtonNone,
		now:                 time.Now,
	}
}

var polledButtons = [...]struct {
	eb  ebiten.MouseButton
	btn MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonRight, MouseButtonRight},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
}

// Poll reads this frame's input and forwards it to h. Call it from the
// game's Update.
func (in *EbitenInput) Poll(h InputHandler) {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	mods := readModifiers()

	if in.canvas != nil {
		w, hgt := in.canvas.Size()
		in.canvas.SetHovered(x >= 0 && y >= 0 && x < float64(w) && y < float64(hgt))
	}

	for _, b := range polledButtons {
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			ev := PointerEvent{X: x, Y: y, Button: b.btn, Modifiers: mods, Clicks: 1}
			if b.btn == MouseButtonLeft {
				ev.Clicks = in.clickCount(x, y)
			}
			in.press(b.btn)
			h.PointerDown(ev)
		}
	}

	if x != in.lastX || y != in.lastY {
		in.lastX, in.lastY = x, y
		h.PointerMove(PointerEvent{X: x, Y: y, Button: in.held, Modifiers: mods})
	}

	for _, b := range polledButtons {
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			in.release(b.btn)
			h.PointerUp(PointerEvent{X: x, Y: y, Button: b.btn, Modifiers: mods})
		}
	}

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		h.Wheel(WheelEvent{X: x, Y: y, DeltaX: -wx * 100, DeltaY: -wy * 100, Modifiers: mods})
	}

	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		h.KeyDown(KeyEvent{Key: k, Modifiers: mods})
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		h.KeyUp(KeyEvent{Key: k, Modifiers: mods})
	}
}

// press marks b as down and reports it on following moves.
func (in *EbitenInput) press(b MouseButton) {
	in.down |= 1 << b
	in.held = b
}

// release clears b. Moves then report another button still down, or
// MouseButtonNone.
func (in *EbitenInput) release(b MouseButton) {
	in.down &^= 1 << b
	if in.held != b {
		return
	}
	in.held = MouseButtonNone
	for _, pb := range polledButtons {
		if in.down&(1<<pb.btn) != 0 {
			in.held = pb.btn
			return
		}
	}
}

// clickCount returns how many consecutive presses ended at (x, y) within the
// double-click interval.
func (in *EbitenInput) clickCount(x, y float64) int {
	t := in.now()
	if in.clicks > 0 && t.Sub(in.clickAt) <= in.DoubleClickInterval &&
		math.Hypot(x-in.clickX, y-in.clickY) <= in.DoubleClickSlop {
		in.clicks++
	} else {
		in.clicks = 1
	}
	in.clickAt, in.clickX, in.clickY = t, x, y
	return in.clicks
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}
