package twin

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type nopLayer struct{ name string }

func (nopLayer) Draw(*ebiten.Image) {}

func TestCanvasAttachDetach(t *testing.T) {
	c := NewCanvas(640, 480)
	a := c.Attach(nopLayer{"a"})
	c.Attach(nopLayer{"b"})
	if c.NumLayers() != 2 {
		t.Fatalf("layers = %d", c.NumLayers())
	}
	a.Remove()
	a.Remove()
	if c.NumLayers() != 1 || c.layers[0].layer.(nopLayer).name != "b" {
		t.Error("Remove should detach only its own layer")
	}
}

func TestCanvasTickers(t *testing.T) {
	c := NewCanvas(640, 480)
	var total float64
	sub := c.AddTicker(func(dt float64) { total += dt })
	c.Tick(0.25)
	c.Tick(0.25)
	sub.Remove()
	c.Tick(1)
	assertNear(t, "total", total, 0.5)
	if c.NumTickers() != 0 {
		t.Error("ticker not removed")
	}
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(640, 480)
	var calls [][2]int
	c.OnResize(func(w, h int) { calls = append(calls, [2]int{w, h}) })
	c.Resize(640, 480)
	c.Resize(800, 600)
	c.Resize(800, 600)
	if len(calls) != 1 || calls[0] != [2]int{800, 600} {
		t.Errorf("calls = %v", calls)
	}
	if w, h := c.Size(); w != 800 || h != 600 {
		t.Errorf("size = %dx%d", w, h)
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(640, 480)
	c.Attach(nopLayer{})
	c.AddTicker(func(float64) {})
	resized := false
	c.OnResize(func(int, int) { resized = true })
	c.Clear()
	c.Resize(10, 10)
	if c.NumLayers() != 0 || c.NumTickers() != 0 || resized {
		t.Error("Clear should drop layers, tickers and resize listeners")
	}
}

func TestCanvasKeyboardEnabled(t *testing.T) {
	tests := []struct {
		hovered, textFocus, want bool
	}{
		{false, false, false},
		{true, false, true},
		{true, true, false},
		{false, true, false},
	}
	for _, tt := range tests {
		c := NewCanvas(1, 1)
		c.SetHovered(tt.hovered)
		c.SetTextFocus(tt.textFocus)
		if got := c.KeyboardEnabled(); got != tt.want {
			t.Errorf("hovered=%v textFocus=%v: got %v", tt.hovered, tt.textFocus, got)
		}
	}
}

// --- screenshots ---

func TestSanitizeLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"after-drag.v2", "after-drag.v2"},
		{"mode 3d/select", "mode_3d_select"},
		{"ünïcode", "_n_code"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueues(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Screenshot("first")
	c.Screenshot("second")
	if len(c.shotQueue) != 2 || c.shotQueue[1] != "second" {
		t.Errorf("queue = %v", c.shotQueue)
	}
}

func TestUnpremultiply(t *testing.T) {
	pix := []byte{
		128, 64, 0, 128, // half alpha
		255, 0, 0, 255, // opaque
		0, 0, 0, 0, // transparent
	}
	img := unpremultiply(pix, 3, 1)
	want := []byte{255, 127, 0, 128, 255, 0, 0, 255, 0, 0, 0, 0}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Fatalf("pix[%d] = %d, want %d", i, img.Pix[i], b)
		}
	}
}

func TestWritePNG(t *testing.T) {
	img := unpremultiply([]byte{10, 20, 30, 255}, 1, 1)
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := writePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, a := got.At(0, 0).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 || a>>8 != 255 {
		t.Errorf("pixel = %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}

	if err := writePNG(filepath.Join(t.TempDir(), "missing", "x.png"), img); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
