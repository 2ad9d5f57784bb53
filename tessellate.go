package twin

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const ellipseSegments = 48

// mesh2D is a shape's tessellation in local space. Vertex colors are straight
// (not premultiplied); alpha is applied when the mesh is submitted.
type mesh2D struct {
	verts []ebiten.Vertex
	inds  []uint16
}

func (m *mesh2D) empty() bool { return m == nil || len(m.inds) == 0 }

// tessellation returns the cached mesh, building it on first use.
func (s *Shape) tessellation() *mesh2D {
	if s.mesh == nil {
		s.mesh = buildShapeMesh(s)
	}
	return s.mesh
}

func buildShapeMesh(s *Shape) *mesh2D {
	m := &mesh2D{}
	var outline []Vec2
	closed := true
	switch s.Kind {
	case ShapeRect:
		outline = roundedRectPoints(s.Width, s.Height, s.CornerRadius)
	case ShapeEllipse:
		outline = ellipsePoints(s.RadiusX, s.RadiusY, ellipseSegments)
	case ShapePath:
		outline = s.Points
		closed = s.Closed
	default:
		return m
	}
	if closed && s.Fill.A > 0 && len(outline) >= 3 {
		m.appendFill(outline, s.Fill)
	}
	if s.StrokeWidth > 0 && s.Stroke.A > 0 && len(outline) >= 2 {
		m.appendStroke(outline, closed, s.StrokeWidth, s.Stroke)
	}
	return m
}

// appendFill triangulates a simple polygon by ear clipping.
func (m *mesh2D) appendFill(points []Vec2, c Color) {
	base := uint16(len(m.verts))
	for _, p := range points {
		m.verts = append(m.verts, solidVertex(p.X, p.Y, c))
	}
	for _, tri := range triangulate(points) {
		m.inds = append(m.inds, base+uint16(tri[0]), base+uint16(tri[1]), base+uint16(tri[2]))
	}
}

// appendStroke emits one quad per segment, offset by half the width along
// the segment normal.
func (m *mesh2D) appendStroke(points []Vec2, closed bool, width float64, c Color) {
	n := len(points)
	segs := n - 1
	if closed {
		segs = n
	}
	hw := width / 2
	for i := 0; i < segs; i++ {
		a := points[i]
		b := points[(i+1)%n]
		px, py := perpendicular(a, b)
		px, py = px*hw, py*hw
		base := uint16(len(m.verts))
		m.verts = append(m.verts,
			solidVertex(a.X+px, a.Y+py, c),
			solidVertex(b.X+px, b.Y+py, c),
			solidVertex(b.X-px, b.Y-py, c),
			solidVertex(a.X-px, a.Y-py, c),
		)
		m.inds = append(m.inds, base, base+1, base+2, base, base+2, base+3)
	}
}

func solidVertex(x, y float64, c Color) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: float32(x), DstY: float32(y),
		SrcX: 0.5, SrcY: 0.5,
		ColorR: float32(c.R), ColorG: float32(c.G), ColorB: float32(c.B), ColorA: float32(c.A),
	}
}

// perpendicular returns the unit normal of the segment a→b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// roundedRectPoints returns the outline of a w x h rectangle anchored at the
// origin, with corners rounded by r (clamped to half the shorter side).
func roundedRectPoints(w, h, r float64) []Vec2 {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		return []Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}
	}
	const steps = 6
	corners := [4]struct{ cx, cy, start float64 }{
		{w - r, r, -math.Pi / 2},
		{w - r, h - r, 0},
		{r, h - r, math.Pi / 2},
		{r, r, math.Pi},
	}
	pts := make([]Vec2, 0, 4*(steps+1))
	for _, c := range corners {
		for i := 0; i <= steps; i++ {
			a := c.start + float64(i)/steps*math.Pi/2
			pts = append(pts, Vec2{c.cx + r*math.Cos(a), c.cy + r*math.Sin(a)})
		}
	}
	return pts
}

// ellipsePoints returns segments points around the origin.
func ellipsePoints(rx, ry float64, segments int) []Vec2 {
	pts := make([]Vec2, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Vec2{rx * math.Cos(a), ry * math.Sin(a)}
	}
	return pts
}

// triangulate ear-clips a simple polygon and returns index triples. Falls
// back to a fan when no ear can be found (self-intersecting input).
func triangulate(points []Vec2) [][3]int {
	n := len(points)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if signedArea(points) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}
	tris := make([][3]int, 0, n-2)
	for guard := 0; len(idx) > 3 && guard < n*n; guard++ {
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !isEar(points, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break
		}
	}
	for i := 1; i+1 < len(idx); i++ {
		tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return tris
}

func isEar(points []Vec2, idx []int, prev, cur, next int) bool {
	a, b, c := points[prev], points[cur], points[next]
	if cross(a, b, c) <= 0 {
		return false
	}
	for _, k := range idx {
		if k == prev || k == cur || k == next {
			continue
		}
		if pointInTriangle(points[k], a, b, c) {
			return false
		}
	}
	return true
}

func signedArea(points []Vec2) float64 {
	var area float64
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return area / 2
}

func cross(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func pointInTriangle(p, a, b, c Vec2) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}

// transformVertices applies an affine transform and alpha to src, writing
// premultiplied colors into dst.
func transformVertices(src, dst []ebiten.Vertex, m [6]float64, alpha float64) {
	a, b, c, d, tx, ty := m[0], m[1], m[2], m[3], m[4], m[5]
	al := float32(alpha)
	for i := range src {
		s := &src[i]
		ox, oy := float64(s.DstX), float64(s.DstY)
		ca := s.ColorA * al
		dst[i] = ebiten.Vertex{
			DstX:   float32(a*ox + c*oy + tx),
			DstY:   float32(b*ox + d*oy + ty),
			SrcX:   s.SrcX,
			SrcY:   s.SrcY,
			ColorR: s.ColorR * ca,
			ColorG: s.ColorG * ca,
			ColorB: s.ColorB * ca,
			ColorA: ca,
		}
	}
}
