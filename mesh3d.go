package twin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	cylinderSegments = 32
	tubeSegments     = 12
)

// Mesh3D is an indexed triangle and line list in local space.
type Mesh3D struct {
	Vertices  []mgl64.Vec3
	Triangles [][3]int
	Lines     [][2]int
}

// IsLines reports whether the mesh has line segments but no faces.
func (m *Mesh3D) IsLines() bool { return len(m.Triangles) == 0 && len(m.Lines) > 0 }

func (m *Mesh3D) quad(a, b, c, d int) {
	m.Triangles = append(m.Triangles, [3]int{a, b, c}, [3]int{a, c, d})
}

// boxMesh returns a w x h x d box centered on the origin.
func boxMesh(w, h, d float64) *Mesh3D {
	b := Box3{Min: mgl64.Vec3{-w / 2, -h / 2, -d / 2}, Max: mgl64.Vec3{w / 2, h / 2, d / 2}}
	c := b.Corners()
	m := &Mesh3D{Vertices: c[:]}
	m.quad(0, 3, 2, 1) // back
	m.quad(4, 5, 6, 7) // front
	m.quad(0, 4, 7, 3) // left
	m.quad(1, 2, 6, 5) // right
	m.quad(3, 7, 6, 2) // top
	m.quad(0, 1, 5, 4) // bottom
	return m
}

// cylinderMesh returns a vertical elliptic cylinder of height h centered on
// the origin, with radii rx along X and rz along Z.
func cylinderMesh(rx, rz, h float64, segments int) *Mesh3D {
	m := &Mesh3D{}
	top, bot := h/2, -h/2
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, top, 0}, mgl64.Vec3{0, bot, 0})
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		x, z := rx*math.Cos(a), rz*math.Sin(a)
		m.Vertices = append(m.Vertices, mgl64.Vec3{x, top, z}, mgl64.Vec3{x, bot, z})
	}
	for i := 0; i < segments; i++ {
		t0, b0 := 2+2*i, 3+2*i
		t1, b1 := 2+2*((i+1)%segments), 3+2*((i+1)%segments)
		m.Triangles = append(m.Triangles, [3]int{0, t1, t0}, [3]int{1, b0, b1})
		m.quad(t0, t1, b1, b0)
	}
	return m
}

// prismMesh extrudes a polygon given in the XZ plane to height h, centered
// vertically on the origin.
func prismMesh(outline []Vec2, h float64) *Mesh3D {
	n := len(outline)
	m := &Mesh3D{}
	if n < 3 {
		return m
	}
	for _, p := range outline {
		m.Vertices = append(m.Vertices, mgl64.Vec3{p.X, h / 2, p.Y})
	}
	for _, p := range outline {
		m.Vertices = append(m.Vertices, mgl64.Vec3{p.X, -h / 2, p.Y})
	}
	for _, t := range triangulate(outline) {
		m.Triangles = append(m.Triangles,
			[3]int{t[0], t[1], t[2]},
			[3]int{n + t[0], n + t[2], n + t[1]},
		)
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.quad(i, j, n+j, n+i)
	}
	return m
}

// lineMesh connects consecutive points, closing the loop if requested.
func lineMesh(points []mgl64.Vec3, closed bool) *Mesh3D {
	m := &Mesh3D{Vertices: append([]mgl64.Vec3(nil), points...)}
	for i := 0; i+1 < len(points); i++ {
		m.Lines = append(m.Lines, [2]int{i, i + 1})
	}
	if closed && len(points) > 2 {
		m.Lines = append(m.Lines, [2]int{len(points) - 1, 0})
	}
	return m
}

// tubeMesh sweeps a circle of radius r along the polyline.
func tubeMesh(points []mgl64.Vec3, r float64, segments int) *Mesh3D {
	m := &Mesh3D{}
	if len(points) < 2 {
		return m
	}
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		axis := b.Sub(a)
		if axis.Len() < 1e-9 {
			continue
		}
		axis = axis.Normalize()
		u := perpendicularTo(axis)
		v := axis.Cross(u)
		base := len(m.Vertices)
		for s := 0; s < segments; s++ {
			ang := 2 * math.Pi * float64(s) / float64(segments)
			off := u.Mul(r * math.Cos(ang)).Add(v.Mul(r * math.Sin(ang)))
			m.Vertices = append(m.Vertices, a.Add(off), b.Add(off))
		}
		for s := 0; s < segments; s++ {
			a0, b0 := base+2*s, base+2*s+1
			a1, b1 := base+2*((s+1)%segments), base+2*((s+1)%segments)+1
			m.quad(a0, a1, b1, b0)
		}
	}
	return m
}

// perpendicularTo returns a unit vector orthogonal to the unit vector n.
func perpendicularTo(n mgl64.Vec3) mgl64.Vec3 {
	ref := mgl64.Vec3{0, 1, 0}
	if math.Abs(n.Dot(ref)) > 0.9 {
		ref = mgl64.Vec3{1, 0, 0}
	}
	return n.Cross(ref).Normalize()
}

// plateMesh returns a thin w x d slab lying in the XZ plane whose top-left
// corner sits at the origin.
func plateMesh(w, d float64) *Mesh3D {
	m := &Mesh3D{Vertices: []mgl64.Vec3{{0, 0, 0}, {w, 0, 0}, {w, 0, d}, {0, 0, d}}}
	m.quad(0, 3, 2, 1)
	return m
}
