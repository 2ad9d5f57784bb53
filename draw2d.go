package twin

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// labelFace is the bitmap face used for text nodes and overlay labels. Its
// glyphs are 13 px tall and scaled to the requested font size.
var labelFace = text.NewGoXFace(basicfont.Face7x13)

const labelFaceSize = 13.0

// frameBuffers holds per-renderer scratch vertex storage reused across
// frames.
type frameBuffers struct {
	verts []ebiten.Vertex
}

func (b *frameBuffers) vertices(n int) []ebiten.Vertex {
	if cap(b.verts) < n {
		b.verts = make([]ebiten.Vertex, n)
	}
	return b.verts[:n]
}

var scratch2D frameBuffers

// Draw renders the grid, the shapes and the selection overlay.
func (r *Renderer2D) Draw(screen *ebiten.Image) {
	if r.disposed {
		return
	}
	screen.Fill(r.background.RGBA())
	if r.cfg.Grid.Visible {
		r.drawGrid(screen)
	}
	view := r.view.viewMatrix()
	for _, s := range r.layer.sorted() {
		drawShapeTree(screen, s, view, 1)
	}
	r.drawSelection(screen)
	if r.gesture == gestureBand {
		b := r.view.WorldRectToScreen(r.band)
		fill := r.selectionColor.WithAlpha(0.15).RGBA()
		vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), fill, false)
		vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), 1, r.selectionColor.RGBA(), false)
	}
}

func (r *Renderer2D) drawGrid(screen *ebiten.Image) {
	xs, ys := gridLines(r.view.VisibleBounds(), r.cfg.Grid.Size, r.view.Zoom, r.cfg.Grid.MinSpacing)
	c := r.gridColor.RGBA()
	h := float32(r.view.Height)
	w := float32(r.view.Width)
	for _, x := range xs {
		sx, _ := r.view.WorldToScreen(x, 0)
		vector.StrokeLine(screen, float32(sx), 0, float32(sx), h, 1, c, false)
	}
	for _, y := range ys {
		_, sy := r.view.WorldToScreen(0, y)
		vector.StrokeLine(screen, 0, float32(sy), w, float32(sy), 1, c, false)
	}
}

// drawShapeTree draws s and its children. parent is the screen-space matrix
// of s's parent and alpha its accumulated alpha.
func drawShapeTree(screen *ebiten.Image, s *Shape, parent [6]float64, alpha float64) {
	if !s.Visible || s.Alpha <= 0 {
		return
	}
	m := multiplyAffine(parent, computeLocalTransform(s))
	alpha *= s.Alpha

	switch s.Kind {
	case ShapeGroup:
		for _, c := range s.sorted() {
			drawShapeTree(screen, c, m, alpha)
		}
	case ShapeText:
		drawLabel(screen, s.Label, s.FontSize, m, s.Fill.WithAlpha(alpha))
	default:
		mesh := s.tessellation()
		if mesh.empty() {
			return
		}
		verts := scratch2D.vertices(len(mesh.verts))
		transformVertices(mesh.verts, verts, m, alpha)
		var op ebiten.DrawTrianglesOptions
		op.AntiAlias = true
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		screen.DrawTriangles(verts, mesh.inds, ensureWhitePixel(), &op)
	}
}

// drawLabel renders a single-line label whose top-left corner sits at the
// local origin of m.
func drawLabel(screen *ebiten.Image, label string, fontSize float64, m [6]float64, c Color) {
	if label == "" || c.A <= 0 {
		return
	}
	op := &text.DrawOptions{}
	k := fontSize / labelFaceSize
	op.GeoM.Scale(k, k)
	op.GeoM.Concat(affineGeoM(m))
	op.ColorScale.ScaleWithColor(c.RGBA())
	text.Draw(screen, label, labelFace, op)
}

func affineGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

func (r *Renderer2D) drawSelection(screen *ebiten.Image) {
	c := r.selectionColor.RGBA()
	for _, obj := range r.selector.SelectedAll() {
		if obj == r.selector.Selected() {
			continue
		}
		b := r.view.WorldRectToScreen(obj.WorldBounds())
		vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), 1, c, false)
	}
	box, ok := r.selector.BoundingBox()
	if !ok {
		return
	}
	b := r.view.WorldRectToScreen(box)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), 1.5, c, false)
	if r.transformer.Attached() == nil {
		return
	}
	cx, _ := b.Center()
	rot := r.selector.HandleRects()[HandleRotate]
	rx, ry := rot.Center()
	vector.StrokeLine(screen, float32(cx), float32(b.Y), float32(rx), float32(ry), 1, c, false)
	for h, hr := range r.selector.HandleRects() {
		if h == HandleRotate {
			vector.DrawFilledCircle(screen, float32(rx), float32(ry), float32(hr.Width/2), c, true)
			continue
		}
		vector.DrawFilledRect(screen, float32(hr.X), float32(hr.Y), float32(hr.Width), float32(hr.Height), ColorWhite.RGBA(), false)
		vector.StrokeRect(screen, float32(hr.X), float32(hr.Y), float32(hr.Width), float32(hr.Height), 1, c, false)
	}
}
