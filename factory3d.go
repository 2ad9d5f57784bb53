package twin

import "github.com/go-gl/mathgl/mgl64"

// CreateObject3D builds the 3D display object for node, or nil when the node
// is hidden or of an unknown type. Sizes are converted from pixels to world
// units and rotations from degrees to radians.
func CreateObject3D(node *SceneNode) *Object3D {
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
	thickness := PixelToWorld(valueOr(g.Height, DefaultThickness))

	o := NewObject3D(name)
	switch node.Type {
	case NodeGroup:
		for _, child := range node.Children {
			if c := CreateObject3D(child); c != nil {
				o.AddChild(c)
			}
		}
	case NodeRect:
		w := PixelToWorld(valueOr(g.Width, DefaultRectSize))
		d := PixelToWorld(rectDepth(g))
		o.Mesh = boxMesh(w, thickness, d)
	case NodeCircle:
		r := PixelToWorld(valueOr(g.Radius, DefaultRadius))
		o.Mesh = cylinderMesh(r, r, thickness, cylinderSegments)
	case NodeEllipse:
		r := valueOr(g.Radius, DefaultRadius)
		rx := PixelToWorld(valueOr(g.RadiusX, r))
		rz := PixelToWorld(valueOr(g.RadiusY, r))
		o.Mesh = cylinderMesh(rx, rz, thickness, cylinderSegments)
	case NodePolygon:
		o.Mesh = prismMesh(projectWorld(g.Points), thickness)
	case NodeLine, NodePolyline:
		o.Mesh = lineMesh(worldPoints(g.Points), g.Closed != nil && *g.Closed)
		var stroke Color
		stroke, o.LineWidth = node.lineStroke()
		o.Color = stroke
	case NodePipe:
		r := PixelToWorld(valueOr(g.Radius, DefaultPipeRadius))
		o.Mesh = tubeMesh(worldPoints(g.Points), r, tubeSegments)
	case NodeText:
		label, fs := node.Name, DefaultFontSize
		if node.Style != nil {
			if node.Style.Text != "" {
				label = node.Style.Text
			}
			fs = valueOr(node.Style.FontSize, DefaultFontSize)
		}
		w, h := measureLabel(label, fs)
		o.Label = label
		o.Mesh = plateMesh(PixelToWorld(w), PixelToWorld(h))
	}
	applyMaterial(o, node)
	applyObjectTransform(o, node)
	return o
}

// applyMaterial resolves color, opacity, emissive and wireframe. Line
// objects keep the stroke color set by the factory.
func applyMaterial(o *Object3D, node *SceneNode) {
	if node.Type != NodeLine && node.Type != NodePolyline {
		o.Color = defaultFillColor
		if node.Type == NodeText {
			o.Color = defaultStrokeColor
		}
		if c, ok := node.FillColor(); ok {
			o.Color = c
		}
	}
	o.Opacity = node.EffectiveOpacity()
	if m := node.Material; m != nil {
		if m.Opacity != nil {
			o.Opacity *= clamp01(*m.Opacity)
		}
		if m.Emissive != nil {
			if c, ok := m.Emissive.Resolve(); ok {
				o.Emissive = c
			}
		}
		o.Wireframe = m.Wireframe != nil && *m.Wireframe
	}
}

// applyObjectTransform copies the node transform onto o in world units.
func applyObjectTransform(o *Object3D, node *SceneNode) {
	t := node.Transform
	p := PixelToWorldVec(t.Position)
	o.Position = mgl64.Vec3{p.X, p.Y, p.Z}
	r := t.RotationOrZero()
	o.Rotation = mgl64.Vec3{degToRad(r.X), degToRad(r.Y), degToRad(r.Z)}
	s := t.ScaleOrOne()
	o.Scale = mgl64.Vec3{s.X, s.Y, s.Z}
}

// worldPoints converts pixel points to world units. Fewer than two points
// yield no geometry.
func worldPoints(pts []Vec3) []mgl64.Vec3 {
	if len(pts) < 2 {
		return nil
	}
	out := make([]mgl64.Vec3, len(pts))
	for i, p := range pts {
		w := PixelToWorldVec(p)
		out[i] = mgl64.Vec3{w.X, w.Y, w.Z}
	}
	return out
}

// projectWorld maps points onto the XZ plane in world units.
func projectWorld(pts []Vec3) []Vec2 {
	out := make([]Vec2, 0, len(pts))
	for _, p := range pts {
		out = append(out, Vec2{X: PixelToWorld(p.X), Y: PixelToWorld(p.Z)})
	}
	return out
}
