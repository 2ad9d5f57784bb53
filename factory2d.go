package twin

// Geometry fallbacks shared by both factories, in pixels.
const (
	DefaultRadius     = 50.0
	DefaultRectSize   = 100.0
	DefaultFontSize   = 16.0
	DefaultPipeRadius = 5.0
	DefaultThickness  = 10.0
)

// CreateShape builds the 2D display object for node, or nil when the node is
// hidden or of an unknown type. Group children that produce nil are omitted.
func CreateShape(node *SceneNode) *Shape {
	if node == nil || !node.IsVisible() || !node.Type.Known() {
		return nil
	}
	name := node.Name
	if name == "" {
		name = node.ID
	}
	g := node.Geometry
	if g == nil {
		g = &Geometry{}
	}

	var s *Shape
	switch node.Type {
	case NodeGroup:
		s = NewShape(name, ShapeGroup)
		for _, child := range node.Children {
			if cs := CreateShape(child); cs != nil {
				s.AddChild(cs)
			}
		}
	case NodeRect:
		s = NewShape(name, ShapeRect)
		s.Width = valueOr(g.Width, DefaultRectSize)
		s.Height = rectDepth(g)
		s.CornerRadius = valueOr(g.CornerRadius, 0)
		applyFillStroke(s, node)
	case NodeCircle:
		s = NewShape(name, ShapeEllipse)
		r := valueOr(g.Radius, DefaultRadius)
		s.RadiusX, s.RadiusY = r, r
		applyFillStroke(s, node)
	case NodeEllipse:
		s = NewShape(name, ShapeEllipse)
		r := valueOr(g.Radius, DefaultRadius)
		s.RadiusX = valueOr(g.RadiusX, r)
		s.RadiusY = valueOr(g.RadiusY, r)
		applyFillStroke(s, node)
	case NodeLine, NodePolyline, NodePipe:
		s = NewShape(name, ShapePath)
		s.Points = projectPoints(g.Points)
		s.Closed = g.Closed != nil && *g.Closed
		s.Stroke, s.StrokeWidth = node.lineStroke()
		if node.Type == NodePipe && (node.Style == nil || node.Style.StrokeWidth == nil) {
			s.StrokeWidth = 2 * valueOr(g.Radius, DefaultPipeRadius)
		}
		if s.Closed {
			s.Fill, _ = node.FillColor()
		}
	case NodePolygon:
		s = NewShape(name, ShapePath)
		s.Points = projectPoints(g.Points)
		s.Closed = true
		applyFillStroke(s, node)
	case NodeText:
		s = NewShape(name, ShapeText)
		s.FontSize = DefaultFontSize
		if node.Style != nil {
			s.Label = node.Style.Text
			s.FontSize = valueOr(node.Style.FontSize, DefaultFontSize)
		}
		if s.Label == "" {
			s.Label = node.Name
		}
		s.Width, s.Height = measureLabel(s.Label, s.FontSize)
		s.Fill = defaultStrokeColor
		if c, ok := node.FillColor(); ok {
			s.Fill = c
		}
	}
	applyShapeTransform(s, node)
	return s
}

// rectDepth is the top-down extent of a rect: depth, then height.
func rectDepth(g *Geometry) float64 {
	if g.Depth != nil {
		return *g.Depth
	}
	return valueOr(g.Height, DefaultRectSize)
}

func applyFillStroke(s *Shape, node *SceneNode) {
	s.Fill = defaultFillColor
	if c, ok := node.FillColor(); ok {
		s.Fill = c
	}
	if c, ok := node.StrokeColor(); ok {
		s.Stroke = c
		s.StrokeWidth = node.StrokeWidth()
		if s.StrokeWidth <= 0 {
			s.StrokeWidth = 1
		}
	}
}

// projectPoints maps 3D geometry points onto the top-down plane. Fewer than
// two points yield no geometry.
func projectPoints(pts []Vec3) []Vec2 {
	if len(pts) < 2 {
		return nil
	}
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = Position3Dto2D(p)
	}
	return out
}

// measureLabel estimates the box of a single-line label at fontSize.
func measureLabel(label string, fontSize float64) (w, h float64) {
	return float64(len([]rune(label))) * fontSize * 0.6, fontSize
}

// applyShapeTransform copies the node transform, opacity and z-order onto s.
// Height is ignored; rects and texts pivot on their anchor (rect default:
// center).
func applyShapeTransform(s *Shape, node *SceneNode) {
	t := node.Transform
	p := Position3Dto2D(t.Position)
	s.X, s.Y = p.X, p.Y
	s.Rotation = degToRad(Rotation3Dto2D(t.RotationOrZero()))
	sc := Scale3Dto2D(t.ScaleOrOne())
	s.ScaleX, s.ScaleY = sc.X, sc.Y
	s.SkewX, s.SkewY = 0, 0
	if t.Skew != nil {
		s.SkewX, s.SkewY = degToRad(t.Skew.X), degToRad(t.Skew.Y)
	}
	switch s.Kind {
	case ShapeRect:
		ax, ay := 0.5, 0.5
		if t.Anchor != nil {
			ax, ay = t.Anchor.X, t.Anchor.Z
		}
		s.PivotX, s.PivotY = s.Width*ax, s.Height*ay
	case ShapeText:
		if t.Anchor != nil {
			s.PivotX, s.PivotY = s.Width*t.Anchor.X, s.Height*t.Anchor.Z
		}
	}
	s.Alpha = node.EffectiveOpacity()
	s.SetZIndex(node.ZIndex)
}
