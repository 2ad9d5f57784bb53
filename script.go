package twin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// ScriptStep is one action of an input script.
type ScriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	Button string  `json:"button,omitempty"`
	Key    string  `json:"key,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type scriptDoc struct {
	Steps []ScriptStep `json:"steps"`
}

// ModeSwitcher is implemented by hosts that can change the scene mode; the
// Coordinator does.
type ModeSwitcher interface {
	SwitchSceneMode(SceneMode) error
}

// Script replays recorded input against an InputHandler, one event per
// frame. Screenshots are queued on the canvas.
type Script struct {
	steps   []ScriptStep
	cursor  int
	wait    int
	pending []func(h InputHandler)
	done    bool
	err     error
}

// ParseScript decodes a JSON script of the form {"steps": [...]}.
func ParseScript(data []byte) (*Script, error) {
	var doc scriptDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	for i, st := range doc.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &Script{steps: doc.Steps}, nil
}

func (st ScriptStep) validate() error {
	switch st.Action {
	case "click", "drag", "wheel", "wait", "screenshot":
		if _, ok := scriptButton(st.Button); !ok {
			return fmt.Errorf("unknown button %q", st.Button)
		}
		return nil
	case "key":
		if _, ok := scriptKey(st.Key); !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
		return nil
	case "mode":
		if st.Mode != string(SceneMode2D) && st.Mode != string(SceneMode3D) {
			return fmt.Errorf("unknown mode %q", st.Mode)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

// Done reports whether every step has been played.
func (s *Script) Done() bool { return s.done }

// Err returns the first error raised by a mode step.
func (s *Script) Err() error { return s.err }

// Step advances the script by one frame, delivering at most one event to h.
// canvas may be nil when the script takes no screenshots.
func (s *Script) Step(h InputHandler, canvas *Canvas) {
	if s.done {
		return
	}
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		ev(h)
		s.checkDone()
		return
	}
	if s.wait > 0 {
		s.wait--
		s.checkDone()
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}
	st := s.steps[s.cursor]
	s.cursor++
	s.play(st, h, canvas)
	s.checkDone()
}

func (s *Script) checkDone() {
	if s.cursor >= len(s.steps) && s.wait == 0 && len(s.pending) == 0 {
		s.done = true
	}
}

func (s *Script) play(st ScriptStep, h InputHandler, canvas *Canvas) {
	btn, _ := scriptButton(st.Button)
	switch st.Action {
	case "screenshot":
		if canvas != nil {
			canvas.Screenshot(st.Label)
		}
	case "wait":
		if st.Frames > 0 {
			s.wait = st.Frames - 1
		}
	case "click":
		h.PointerDown(PointerEvent{X: st.X, Y: st.Y, Button: btn, Clicks: 1})
		s.queue(func(h InputHandler) { h.PointerUp(PointerEvent{X: st.X, Y: st.Y, Button: btn}) })
	case "drag":
		frames := max(st.Frames, 2)
		h.PointerDown(PointerEvent{X: st.FromX, Y: st.FromY, Button: btn, Clicks: 1})
		for i := 1; i < frames-1; i++ {
			t := float64(i) / float64(frames-1)
			x := st.FromX + (st.ToX-st.FromX)*t
			y := st.FromY + (st.ToY-st.FromY)*t
			s.queue(func(h InputHandler) { h.PointerMove(PointerEvent{X: x, Y: y, Button: btn}) })
		}
		s.queue(func(h InputHandler) {
			h.PointerMove(PointerEvent{X: st.ToX, Y: st.ToY, Button: btn})
			h.PointerUp(PointerEvent{X: st.ToX, Y: st.ToY, Button: btn})
		})
	case "wheel":
		h.Wheel(WheelEvent{X: st.X, Y: st.Y, DeltaY: st.DeltaY})
	case "key":
		k, _ := scriptKey(st.Key)
		h.KeyDown(KeyEvent{Key: k})
		s.queue(func(h InputHandler) { h.KeyUp(KeyEvent{Key: k}) })
	case "mode":
		ms, ok := h.(ModeSwitcher)
		if !ok {
			s.setErr(fmt.Errorf("script: handler cannot switch modes"))
			return
		}
		if err := ms.SwitchSceneMode(SceneMode(st.Mode)); err != nil {
			s.setErr(fmt.Errorf("script: %w", err))
		}
	}
}

func (s *Script) queue(fn func(h InputHandler)) { s.pending = append(s.pending, fn) }

func (s *Script) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
	logger().Error("script step failed", "err", err)
}

func scriptButton(name string) (MouseButton, bool) {
	switch strings.ToLower(name) {
	case "", "left":
		return MouseButtonLeft, true
	case "right":
		return MouseButtonRight, true
	case "middle":
		return MouseButtonMiddle, true
	}
	return 0, false
}

var scriptKeys = map[string]ebiten.Key{
	"space":     ebiten.KeySpace,
	"escape":    ebiten.KeyEscape,
	"delete":    ebiten.KeyDelete,
	"backspace": ebiten.KeyBackspace,
	"tab":       ebiten.KeyTab,
	"enter":     ebiten.KeyEnter,
	"shift":     ebiten.KeyShift,
	"up":        ebiten.KeyArrowUp,
	"down":      ebiten.KeyArrowDown,
	"left":      ebiten.KeyArrowLeft,
	"right":     ebiten.KeyArrowRight,
	"1":         ebiten.KeyDigit1,
	"2":         ebiten.KeyDigit2,
	"3":         ebiten.KeyDigit3,
	"w":         ebiten.KeyW,
	"a":         ebiten.KeyA,
	"s":         ebiten.KeyS,
	"d":         ebiten.KeyD,
	"q":         ebiten.KeyQ,
	"e":         ebiten.KeyE,
	"x":         ebiten.KeyX,
}

func scriptKey(name string) (ebiten.Key, bool) {
	k, ok := scriptKeys[strings.ToLower(name)]
	return k, ok
}
