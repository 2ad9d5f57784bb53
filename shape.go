package twin

import (
	"math"
	"strings"
)

// HelperPrefix marks internal objects (selection boxes, gizmos, grids) that
// are excluded from hit-testing and selection.
const HelperPrefix = "__"

// isHelperName reports whether name marks an internal helper object.
func isHelperName(name string) bool { return strings.HasPrefix(name, HelperPrefix) }

// ShapeKind distinguishes how a Shape is tessellated.
type ShapeKind uint8

const (
	ShapeGroup   ShapeKind = iota // container with no geometry of its own
	ShapeRect                     // Width x Height box from the local origin
	ShapeEllipse                  // RadiusX/RadiusY around the local origin
	ShapePath                     // open or closed point list
	ShapeText                     // text label in a Width x Height box
)

// Shape is a 2D display object. Shapes form a tree under the renderer's
// layer; children inherit their parent's transform and alpha.
type Shape struct {
	Name string
	Kind ShapeKind

	Parent         *Shape
	children       []*Shape
	sortedChildren []*Shape
	childrenSorted bool

	// Transform. Rotation and skew are in radians.
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	SkewX, SkewY   float64
	PivotX, PivotY float64

	Alpha      float64
	Visible    bool
	Selectable bool
	ZIndex     int

	// Geometry in local space.
	Width, Height    float64
	RadiusX, RadiusY float64
	CornerRadius     float64
	Points           []Vec2
	Closed           bool

	Fill        Color
	Stroke      Color
	StrokeWidth float64
	Label       string
	FontSize    float64

	mesh     *mesh2D
	disposed bool
}

// NewShape returns a shape with identity transform, full alpha and visible.
func NewShape(name string, kind ShapeKind) *Shape {
	return &Shape{
		Name:       name,
		Kind:       kind,
		ScaleX:     1,
		ScaleY:     1,
		Alpha:      1,
		Visible:    true,
		Selectable: !isHelperName(name),
	}
}

// AddChild appends child to this shape's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this shape (cycle).
func (s *Shape) AddChild(child *Shape) {
	s.AddChildAt(child, math.MaxInt)
}

// AddChildAt inserts child at index, clamped to the valid range.
func (s *Shape) AddChildAt(child *Shape, index int) {
	if child == nil {
		panic("twin: cannot add nil child")
	}
	if isAncestorShape(child, s) {
		panic("twin: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	index = max(0, min(index, len(s.children)))
	child.Parent = s
	s.children = append(s.children, nil)
	copy(s.children[index+1:], s.children[index:])
	s.children[index] = child
	s.childrenSorted = false
}

// RemoveChild detaches child from this shape.
// Panics if child.Parent != s.
func (s *Shape) RemoveChild(child *Shape) {
	if child.Parent != s {
		panic("twin: child's parent is not this shape")
	}
	s.removeChildByPtr(child)
	child.Parent = nil
	s.childrenSorted = false
}

// RemoveFromParent detaches this shape from its parent, if any.
func (s *Shape) RemoveFromParent() {
	if s.Parent != nil {
		s.Parent.RemoveChild(s)
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (s *Shape) Children() []*Shape { return s.children }

// NumChildren returns the number of children.
func (s *Shape) NumChildren() int { return len(s.children) }

// SetZIndex sets the draw order among siblings.
func (s *Shape) SetZIndex(z int) {
	if s.ZIndex == z {
		return
	}
	s.ZIndex = z
	if s.Parent != nil {
		s.Parent.childrenSorted = false
	}
}

// Dispose removes this shape from its parent and releases the subtree.
func (s *Shape) Dispose() {
	if s.disposed {
		return
	}
	s.RemoveFromParent()
	s.dispose()
}

func (s *Shape) dispose() {
	s.disposed = true
	for _, c := range s.children {
		c.Parent = nil
		c.dispose()
	}
	s.children = nil
	s.sortedChildren = nil
	s.mesh = nil
	s.Points = nil
}

// IsDisposed reports whether Dispose has been called.
func (s *Shape) IsDisposed() bool { return s.disposed }

// Invalidate drops the cached tessellation after geometry or paint changes.
func (s *Shape) Invalidate() { s.mesh = nil }

// sorted returns the children in ZIndex order, stable for equal keys.
func (s *Shape) sorted() []*Shape {
	if s.childrenSorted && len(s.sortedChildren) == len(s.children) {
		return s.sortedChildren
	}
	n := len(s.children)
	if cap(s.sortedChildren) < n {
		s.sortedChildren = make([]*Shape, n)
	}
	s.sortedChildren = s.sortedChildren[:n]
	copy(s.sortedChildren, s.children)
	for i := 1; i < n; i++ {
		key := s.sortedChildren[i]
		j := i - 1
		for j >= 0 && s.sortedChildren[j].ZIndex > key.ZIndex {
			s.sortedChildren[j+1] = s.sortedChildren[j]
			j--
		}
		s.sortedChildren[j+1] = key
	}
	s.childrenSorted = true
	return s.sortedChildren
}

// LocalBounds returns the geometry bounds in the shape's own space. Groups
// report the union of their children mapped through each child's transform.
func (s *Shape) LocalBounds() Rect {
	switch s.Kind {
	case ShapeRect, ShapeText:
		return Rect{Width: s.Width, Height: s.Height}
	case ShapeEllipse:
		return Rect{X: -s.RadiusX, Y: -s.RadiusY, Width: 2 * s.RadiusX, Height: 2 * s.RadiusY}
	case ShapePath:
		if len(s.Points) == 0 {
			return Rect{}
		}
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range s.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		pad := s.StrokeWidth / 2
		return Rect{X: minX - pad, Y: minY - pad, Width: maxX - minX + 2*pad, Height: maxY - minY + 2*pad}
	}
	var out Rect
	for _, c := range s.children {
		if !c.Visible {
			continue
		}
		b := c.LocalBounds()
		if b.Width == 0 && b.Height == 0 {
			continue
		}
		out = out.Union(transformRect(computeLocalTransform(c), b))
	}
	return out
}

// WorldBounds returns the axis-aligned bounds in layer (world) space.
func (s *Shape) WorldBounds() Rect {
	b := s.LocalBounds()
	if b.Width == 0 && b.Height == 0 {
		return Rect{}
	}
	return transformRect(s.WorldTransform(), b)
}

// isAncestorShape reports whether candidate is an ancestor of (or equal to) s.
func isAncestorShape(candidate, s *Shape) bool {
	for p := s; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from s.children without clearing child.Parent.
func (s *Shape) removeChildByPtr(child *Shape) {
	for i, c := range s.children {
		if c == child {
			copy(s.children[i:], s.children[i+1:])
			s.children[len(s.children)-1] = nil
			s.children = s.children[:len(s.children)-1]
			s.childrenSorted = false
			return
		}
	}
}
