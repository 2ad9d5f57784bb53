package twin

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Zoom limits of the 2D authoring viewport.
const (
	DefaultMinZoom  = 0.1
	DefaultMaxZoom  = 5.0
	DefaultZoomStep = 0.1
)

// scrollAnim holds active scroll-to tweens for the pan offset.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Viewport2D maps world coordinates to screen coordinates:
//
//	screen = world * Zoom + Pan
type Viewport2D struct {
	PanX, PanY float64
	Zoom       float64

	MinZoom, MaxZoom float64

	// Width and Height are the screen size the viewport renders into.
	Width, Height float64

	scroll *scrollAnim
}

// NewViewport2D returns a viewport at zoom 1 with no pan.
func NewViewport2D(width, height float64) *Viewport2D {
	return &Viewport2D{
		Zoom:    1,
		MinZoom: DefaultMinZoom,
		MaxZoom: DefaultMaxZoom,
		Width:   width,
		Height:  height,
	}
}

// viewMatrix returns the world-to-screen affine matrix.
func (v *Viewport2D) viewMatrix() [6]float64 {
	return [6]float64{v.Zoom, 0, 0, v.Zoom, v.PanX, v.PanY}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (v *Viewport2D) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx*v.Zoom + v.PanX, wy*v.Zoom + v.PanY
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (v *Viewport2D) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - v.PanX) / v.Zoom, (sy - v.PanY) / v.Zoom
}

// WorldRectToScreen maps a world-space rectangle to screen space.
func (v *Viewport2D) WorldRectToScreen(r Rect) Rect {
	x, y := v.WorldToScreen(r.X, r.Y)
	return Rect{X: x, Y: y, Width: r.Width * v.Zoom, Height: r.Height * v.Zoom}
}

// VisibleBounds returns the world-space rectangle currently on screen.
func (v *Viewport2D) VisibleBounds() Rect {
	x0, y0 := v.ScreenToWorld(0, 0)
	x1, y1 := v.ScreenToWorld(v.Width, v.Height)
	return rectFromPoints(x0, y0, x1, y1)
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func (v *Viewport2D) ClampZoom(z float64) float64 {
	return clamp(z, v.MinZoom, v.MaxZoom)
}

// ZoomAt sets the zoom, keeping the world point under (sx, sy) fixed on
// screen. Returns the applied (clamped) zoom.
func (v *Viewport2D) ZoomAt(sx, sy, zoom float64) float64 {
	zoom = v.ClampZoom(zoom)
	wx, wy := v.ScreenToWorld(sx, sy)
	v.Zoom = zoom
	v.PanX = sx - wx*zoom
	v.PanY = sy - wy*zoom
	return zoom
}

// PanBy shifts the view by a screen-space delta and cancels any scroll.
func (v *Viewport2D) PanBy(dx, dy float64) {
	v.scroll = nil
	v.PanX += dx
	v.PanY += dy
}

// CenterOn pans so that the world point (wx, wy) sits at the screen center.
func (v *Viewport2D) CenterOn(wx, wy float64) {
	v.scroll = nil
	v.PanX, v.PanY = v.centeredPan(wx, wy)
}

func (v *Viewport2D) centeredPan(wx, wy float64) (float64, float64) {
	return v.Width/2 - wx*v.Zoom, v.Height/2 - wy*v.Zoom
}

// ScrollTo animates the view so the world point (wx, wy) ends up centered.
func (v *Viewport2D) ScrollTo(wx, wy float64, duration float32, easeFn ease.TweenFunc) {
	px, py := v.centeredPan(wx, wy)
	v.scroll = &scrollAnim{
		tweenX: gween.New(float32(v.PanX), float32(px), duration, easeFn),
		tweenY: gween.New(float32(v.PanY), float32(py), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport2D) Scrolling() bool { return v.scroll != nil }

// update advances the scroll animation by dt seconds.
func (v *Viewport2D) update(dt float32) {
	if v.scroll == nil {
		return
	}
	if !v.scroll.doneX {
		val, done := v.scroll.tweenX.Update(dt)
		v.PanX = float64(val)
		v.scroll.doneX = done
	}
	if !v.scroll.doneY {
		val, done := v.scroll.tweenY.Update(dt)
		v.PanY = float64(val)
		v.scroll.doneY = done
	}
	if v.scroll.doneX && v.scroll.doneY {
		v.scroll = nil
	}
}

// gridLines returns world-space x and y positions of grid lines covering
// bounds. The step doubles until lines are at least minSpacing screen pixels
// apart at the current zoom.
func gridLines(bounds Rect, step, zoom, minSpacing float64) (xs, ys []float64) {
	if step <= 0 || zoom <= 0 {
		return nil, nil
	}
	for step*zoom < minSpacing {
		step *= 2
	}
	for x := math.Floor(bounds.X/step) * step; x <= bounds.X+bounds.Width; x += step {
		xs = append(xs, x)
	}
	for y := math.Floor(bounds.Y/step) * step; y <= bounds.Y+bounds.Height; y += step {
		ys = append(ys, y)
	}
	return xs, ys
}
