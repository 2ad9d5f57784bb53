package twin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Object3D is a 3D display object. Positions and sizes are in world units;
// Rotation holds XYZ Euler angles in radians.
type Object3D struct {
	Name string

	Parent   *Object3D
	children []*Object3D

	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3

	Visible    bool
	Selectable bool

	Mesh      *Mesh3D
	Color     Color
	Emissive  Color
	Opacity   float64
	Wireframe bool
	// LineWidth is the screen width of line meshes, in pixels.
	LineWidth float64
	Label     string

	disposed bool
}

// NewObject3D returns a visible object with unit scale.
func NewObject3D(name string) *Object3D {
	return &Object3D{
		Name:       name,
		Scale:      mgl64.Vec3{1, 1, 1},
		Visible:    true,
		Selectable: !isHelperName(name),
		Color:      ColorWhite,
		Opacity:    1,
	}
}

// AddChild appends child, reparenting it if needed. Panics on nil or cycles.
func (o *Object3D) AddChild(child *Object3D) {
	if child == nil {
		panic("twin: cannot add nil child")
	}
	for p := o; p != nil; p = p.Parent {
		if p == child {
			panic("twin: adding child would create a cycle")
		}
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = o
	o.children = append(o.children, child)
}

// AddChildAt inserts child at index, clamped to the valid range.
func (o *Object3D) AddChildAt(child *Object3D, index int) {
	o.AddChild(child)
	index = max(0, min(index, len(o.children)-1))
	copy(o.children[index+1:], o.children[index:len(o.children)-1])
	o.children[index] = child
}

// RemoveChild detaches child. Unknown children are ignored.
func (o *Object3D) RemoveChild(child *Object3D) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (o *Object3D) Children() []*Object3D { return o.children }

// Dispose detaches o and releases its subtree.
func (o *Object3D) Dispose() {
	if o.disposed {
		return
	}
	if o.Parent != nil {
		o.Parent.RemoveChild(o)
	}
	o.dispose()
}

func (o *Object3D) dispose() {
	o.disposed = true
	for _, c := range o.children {
		c.Parent = nil
		c.dispose()
	}
	o.children = nil
	o.Mesh = nil
}

// IsDisposed reports whether Dispose has been called.
func (o *Object3D) IsDisposed() bool { return o.disposed }

// LocalMatrix returns T * Rx * Ry * Rz * S.
func (o *Object3D) LocalMatrix() mgl64.Mat4 {
	t := mgl64.Translate3D(o.Position.X(), o.Position.Y(), o.Position.Z())
	r := eulerMatrix(o.Rotation)
	s := mgl64.Scale3D(o.Scale.X(), o.Scale.Y(), o.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix returns the transform relative to the scene root.
func (o *Object3D) WorldMatrix() mgl64.Mat4 {
	if o.Parent == nil {
		return o.LocalMatrix()
	}
	return o.Parent.WorldMatrix().Mul4(o.LocalMatrix())
}

// WorldPosition returns the origin of o in world space.
func (o *Object3D) WorldPosition() mgl64.Vec3 {
	return mgl64.TransformCoordinate(mgl64.Vec3{}, o.WorldMatrix())
}

// WorldBounds returns the world-space box around every mesh in the subtree.
func (o *Object3D) WorldBounds() Box3 {
	b := EmptyBox3()
	o.expandBounds(&b, o.parentMatrix())
	return b
}

func (o *Object3D) parentMatrix() mgl64.Mat4 {
	if o.Parent == nil {
		return mgl64.Ident4()
	}
	return o.Parent.WorldMatrix()
}

func (o *Object3D) expandBounds(b *Box3, parent mgl64.Mat4) {
	if !o.Visible {
		return
	}
	m := parent.Mul4(o.LocalMatrix())
	if o.Mesh != nil {
		for _, v := range o.Mesh.Vertices {
			b.ExpandByPoint(mgl64.TransformCoordinate(v, m))
		}
	}
	for _, c := range o.children {
		c.expandBounds(b, m)
	}
}

// eulerMatrix builds the XYZ rotation matrix for r (radians).
func eulerMatrix(r mgl64.Vec3) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(r.X()).Mul4(mgl64.HomogRotate3DY(r.Y())).Mul4(mgl64.HomogRotate3DZ(r.Z()))
}

// Box3 is an axis-aligned box. An empty box has Min > Max.
type Box3 struct {
	Min, Max mgl64.Vec3
}

// EmptyBox3 returns a box that any point expands.
func EmptyBox3() Box3 {
	inf := math.Inf(1)
	return Box3{Min: mgl64.Vec3{inf, inf, inf}, Max: mgl64.Vec3{-inf, -inf, -inf}}
}

// IsEmpty reports whether b contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X() < b.Min.X() || b.Max.Y() < b.Min.Y() || b.Max.Z() < b.Min.Z()
}

// ExpandByPoint grows b to contain p.
func (b *Box3) ExpandByPoint(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// Union returns the smallest box containing b and o.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	b.ExpandByPoint(o.Min)
	b.ExpandByPoint(o.Max)
	return b
}

// Center returns the midpoint of b.
func (b Box3) Center() mgl64.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Size returns the extent of b along each axis.
func (b Box3) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Expand returns b grown by pad on every side.
func (b Box3) Expand(pad float64) Box3 {
	p := mgl64.Vec3{pad, pad, pad}
	return Box3{Min: b.Min.Sub(p), Max: b.Max.Add(p)}
}

// Corners returns the eight corners of b.
func (b Box3) Corners() [8]mgl64.Vec3 {
	lo, hi := b.Min, b.Max
	return [8]mgl64.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], hi[1], lo[2]}, {lo[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
}

// boxEdges indexes Corners into the twelve edges of a box.
var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}
