package twin

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line in world space. Dir is expected to be normalized.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at distance t along r.
func (r Ray) At(t float64) mgl64.Vec3 { return r.Origin.Add(r.Dir.Mul(t)) }

// Hit3D is one ray intersection with a display object.
type Hit3D struct {
	Object   *Object3D
	Distance float64
	Point    mgl64.Vec3
}

// IntersectBox returns the entry distance of r into b using the slab method.
// A ray starting inside the box reports the exit distance.
func (r Ray) IntersectBox(b Box3) (float64, bool) {
	if b.IsEmpty() {
		return 0, false
	}
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		o, d := r.Origin[i], r.Dir[i]
		if math.Abs(d) < 1e-12 {
			if o < b.Min[i] || o > b.Max[i] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[i] - o) / d
		t2 := (b.Max[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle returns the distance to triangle abc (Möller–Trumbore).
// Both faces are hit.
func (r Ray) IntersectTriangle(a, b, c mgl64.Vec3) (float64, bool) {
	const eps = 1e-12
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// rayPlaneIntersect returns where a ray hits the plane through planePoint
// with the given normal. Rays parallel to or pointing away from the plane
// miss.
func rayPlaneIntersect(r Ray, planePoint, normal mgl64.Vec3) (mgl64.Vec3, bool) {
	denom := r.Dir.Dot(normal)
	if math.Abs(denom) < 1e-9 {
		return mgl64.Vec3{}, false
	}
	t := planePoint.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return r.At(t), true
}

// closestPointBetweenRays finds the closest approach of the lines a+t1*u
// and b+t2*v. Parallel lines report a large distance.
func closestPointBetweenRays(a, u, b, v mgl64.Vec3) (t1, t2, dist float64) {
	w := a.Sub(b)
	uu := u.Dot(u)
	uv := u.Dot(v)
	vv := v.Dot(v)
	uw := u.Dot(w)
	vw := v.Dot(w)

	denom := uu*vv - uv*uv
	if denom < 1e-9 {
		return 0, 0, math.Inf(1)
	}
	t1 = (uv*vw - vv*uw) / denom
	t2 = (uu*vw - uv*uw) / denom
	p1 := a.Add(u.Mul(t1))
	p2 := b.Add(v.Mul(t2))
	return t1, t2, p1.Sub(p2).Len()
}

// Raycast returns every selectable object under r, nearest first. Line
// meshes are tested against their world box grown by linePad.
func Raycast(r Ray, roots []*Object3D, linePad float64) []Hit3D {
	var hits []Hit3D
	for _, o := range roots {
		hits = raycastObject(r, o, o.parentMatrix(), linePad, hits)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func raycastObject(r Ray, o *Object3D, parent mgl64.Mat4, linePad float64, hits []Hit3D) []Hit3D {
	if !o.Visible || !o.Selectable {
		return hits
	}
	m := parent.Mul4(o.LocalMatrix())
	if mesh := o.Mesh; mesh != nil && len(mesh.Vertices) > 0 {
		if t, ok := intersectMesh(r, mesh, m, linePad); ok {
			hits = append(hits, Hit3D{Object: o, Distance: t, Point: r.At(t)})
		}
	}
	for _, c := range o.children {
		hits = raycastObject(r, c, m, linePad, hits)
	}
	return hits
}

func intersectMesh(r Ray, mesh *Mesh3D, m mgl64.Mat4, linePad float64) (float64, bool) {
	world := make([]mgl64.Vec3, len(mesh.Vertices))
	box := EmptyBox3()
	for i, v := range mesh.Vertices {
		world[i] = mgl64.TransformCoordinate(v, m)
		box.ExpandByPoint(world[i])
	}
	if mesh.IsLines() {
		return r.IntersectBox(box.Expand(linePad))
	}
	if _, ok := r.IntersectBox(box.Expand(1e-6)); !ok {
		return 0, false
	}
	best, found := math.Inf(1), false
	for _, tri := range mesh.Triangles {
		if t, ok := r.IntersectTriangle(world[tri[0]], world[tri[1]], world[tri[2]]); ok && t < best {
			best, found = t, true
		}
	}
	return best, found
}
