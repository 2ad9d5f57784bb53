package twin

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix of a shape.
// Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Skew -> Rotate -> Translate(X, Y)
func computeLocalTransform(s *Shape) [6]float64 {
	sx, sy := s.ScaleX, s.ScaleY
	sin, cos := math.Sincos(s.Rotation)

	var tanSkewX, tanSkewY float64
	if s.SkewX != 0 {
		tanSkewX = math.Tan(s.SkewX)
	}
	if s.SkewY != 0 {
		tanSkewY = math.Tan(s.SkewY)
	}

	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy
	preTx := -s.PivotX*sx - tanSkewX*s.PivotY*sy
	preTy := -tanSkewY*s.PivotX*sx - s.PivotY*sy

	return [6]float64{
		cos*a - sin*b,
		sin*a + cos*b,
		cos*c - sin*d,
		sin*c + cos*d,
		cos*preTx - sin*preTy + s.X,
		sin*preTx + cos*preTy + s.Y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine returns the inverse of m, or identity if m is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	inv := 1.0 / det
	a := m[3] * inv
	b := -m[1] * inv
	c := -m[2] * inv
	d := m[0] * inv
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect returns the axis-aligned bounds of r after applying m.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X, r.Y+r.Height)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// WorldTransform returns the shape's transform relative to the layer root.
func (s *Shape) WorldTransform() [6]float64 {
	local := computeLocalTransform(s)
	if s.Parent == nil {
		return local
	}
	return multiplyAffine(s.Parent.WorldTransform(), local)
}

// WorldAlpha returns the product of the alphas up the parent chain.
func (s *Shape) WorldAlpha() float64 {
	a := s.Alpha
	for p := s.Parent; p != nil; p = p.Parent {
		a *= p.Alpha
	}
	return a
}

// WorldToLocal converts a world-space point to this shape's local space.
func (s *Shape) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(s.WorldTransform()), wx, wy)
}

// LocalToWorld converts a local-space point to world space.
func (s *Shape) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(s.WorldTransform(), lx, ly)
}
