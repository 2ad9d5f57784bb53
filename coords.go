package twin

// PixelsPerWorldUnit is the fixed scale between scene pixels and 3D world
// units: 100 px = 1 world unit.
const PixelsPerWorldUnit = 100.0

// Position3Dto2D projects a 3D position onto the top-down 2D plane.
func Position3Dto2D(p Vec3) Vec2 { return Vec2{X: p.X, Y: p.Z} }

// Position2Dto3D lifts a 2D position into 3D at the given height.
func Position2Dto3D(p Vec2, height float64) Vec3 { return Vec3{X: p.X, Y: height, Z: p.Y} }

// Rotation3Dto2D returns the rotation about the vertical axis, in degrees.
func Rotation3Dto2D(r Vec3) float64 { return r.Y }

// Rotation2Dto3D returns a rotation about the vertical axis only.
func Rotation2Dto3D(deg float64) Vec3 { return Vec3{Y: deg} }

// Scale3Dto2D maps the X/Z scale to the 2D X/Y scale.
func Scale3Dto2D(s Vec3) Vec2 { return Vec2{X: s.X, Y: s.Z} }

// Scale2Dto3D maps a 2D scale to X/Z, keeping the given vertical scale.
func Scale2Dto3D(s Vec2, vertical float64) Vec3 { return Vec3{X: s.X, Y: vertical, Z: s.Y} }

// PixelToWorld converts scene pixels to 3D world units.
func PixelToWorld(px float64) float64 { return px * 0.01 }

// WorldToPixel converts 3D world units to scene pixels.
func WorldToPixel(w float64) float64 { return w / 0.01 }

// PixelToWorldVec converts every component of p to world units.
func PixelToWorldVec(p Vec3) Vec3 {
	return Vec3{X: PixelToWorld(p.X), Y: PixelToWorld(p.Y), Z: PixelToWorld(p.Z)}
}

// WorldToPixelVec converts every component of w to scene pixels.
func WorldToPixelVec(w Vec3) Vec3 {
	return Vec3{X: WorldToPixel(w.X), Y: WorldToPixel(w.Y), Z: WorldToPixel(w.Z)}
}
