package twin

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Layer is something a renderer attaches to the canvas to be drawn every
// frame.
type Layer interface {
	Draw(screen *ebiten.Image)
}

type layerEntry struct {
	id    uint32
	layer Layer
}

// Canvas is the host surface renderers draw into. It composes the attached
// layers, runs per-frame tickers and tracks the hover and text-focus state
// that gates keyboard shortcuts.
type Canvas struct {
	width, height int

	layers  []layerEntry
	tickers Emitter[float64]
	resized Emitter[[2]int]
	nextID  uint32

	hovered   bool
	textFocus bool

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
	shotQueue     []string
}

// NewCanvas returns an empty canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height, ScreenshotDir: "screenshots"}
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Resize changes the canvas size and notifies resize listeners when it
// actually changed.
func (c *Canvas) Resize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.resized.Emit([2]int{width, height})
}

// OnResize registers a listener receiving the new width and height.
func (c *Canvas) OnResize(fn func(width, height int)) Subscription {
	return c.resized.On(func(sz [2]int) { fn(sz[0], sz[1]) })
}

// Attach adds a layer on top of the existing ones and returns a handle that
// detaches it.
func (c *Canvas) Attach(l Layer) Subscription {
	c.nextID++
	id := c.nextID
	c.layers = append(c.layers, layerEntry{id: id, layer: l})
	return Subscription{id: id, remove: c.detach}
}

func (c *Canvas) detach(id uint32) {
	for i, e := range c.layers {
		if e.id == id {
			c.layers = append(c.layers[:i], c.layers[i+1:]...)
			return
		}
	}
}

// Clear removes every layer, ticker and resize listener. Called when a
// renderer is torn down.
func (c *Canvas) Clear() {
	clear(c.layers)
	c.layers = c.layers[:0]
	c.tickers.Clear()
	c.resized.Clear()
}

// NumLayers returns the number of attached layers.
func (c *Canvas) NumLayers() int { return len(c.layers) }

// AddTicker registers fn to run on every Tick with the frame delta in
// seconds.
func (c *Canvas) AddTicker(fn func(dt float64)) Subscription { return c.tickers.On(fn) }

// NumTickers returns the number of registered tickers.
func (c *Canvas) NumTickers() int { return c.tickers.Len() }

// Tick runs all tickers.
func (c *Canvas) Tick(dt float64) { c.tickers.Emit(dt) }

// SetHovered records whether the pointer is over the canvas.
func (c *Canvas) SetHovered(v bool) { c.hovered = v }

// Hovered reports whether the pointer is over the canvas.
func (c *Canvas) Hovered() bool { return c.hovered }

// SetTextFocus records whether a text input of the host has keyboard focus.
func (c *Canvas) SetTextFocus(v bool) { c.textFocus = v }

// KeyboardEnabled reports whether shortcuts should be handled: the pointer
// is over the canvas and no text input is focused.
func (c *Canvas) KeyboardEnabled() bool { return c.hovered && !c.textFocus }

// Draw renders every layer in attach order, then captures queued
// screenshots.
func (c *Canvas) Draw(screen *ebiten.Image) {
	for _, e := range c.layers {
		e.layer.Draw(screen)
	}
	c.flushScreenshots(screen)
}

// Screenshot queues a labeled capture of the next composed frame.
func (c *Canvas) Screenshot(label string) {
	c.shotQueue = append(c.shotQueue, label)
}

func (c *Canvas) flushScreenshots(screen *ebiten.Image) {
	if len(c.shotQueue) == 0 {
		return
	}
	defer func() { c.shotQueue = c.shotQueue[:0] }()

	if err := os.MkdirAll(c.ScreenshotDir, 0o755); err != nil {
		logger().Error("screenshot: create dir", "dir", c.ScreenshotDir, "err", err)
		return
	}

	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)

	stamp := time.Now().Format("20060102_150405")
	for _, label := range c.shotQueue {
		path := filepath.Join(c.ScreenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			logger().Error("screenshot", "err", err)
			continue
		}
		logger().Debug("screenshot written", "path", path)
	}
}

// unpremultiply converts premultiplied RGBA bytes to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps file-name-safe characters and replaces the rest with
// underscores. Empty labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
