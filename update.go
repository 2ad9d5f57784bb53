package twin

// NodeUpdate is a partial update for a SceneNode. Nil fields are left alone.
// Transform merges per sub-field; Geometry, Material and Style merge per field
// and force the display object to be rebuilt.
type NodeUpdate struct {
	Name      *string          `json:"name,omitempty"`
	Visible   *bool            `json:"visible,omitempty"`
	Locked    *bool            `json:"locked,omitempty"`
	Opacity   *float64         `json:"opacity,omitempty"`
	ZIndex    *int             `json:"zIndex,omitempty"`
	Transform *TransformUpdate `json:"transform,omitempty"`
	Geometry  *Geometry        `json:"geometry,omitempty"`
	Material  *Material        `json:"material,omitempty"`
	Style     *Style           `json:"style,omitempty"`
	Children  []*SceneNode     `json:"children,omitempty"`
}

// TransformUpdate is a partial transform.
type TransformUpdate struct {
	Position *Vec3 `json:"position,omitempty"`
	Rotation *Vec3 `json:"rotation,omitempty"`
	Scale    *Vec3 `json:"scale,omitempty"`
	Anchor   *Vec3 `json:"anchor,omitempty"`
	Skew     *Vec2 `json:"skew,omitempty"`
}

// needsRebuild reports whether applying u requires a fresh display object.
func (u NodeUpdate) needsRebuild() bool {
	return u.Geometry != nil || u.Material != nil || u.Style != nil ||
		u.Children != nil || u.Visible != nil
}

// IsEmpty reports whether u carries no changes.
func (u NodeUpdate) IsEmpty() bool {
	return u.Name == nil && u.Visible == nil && u.Locked == nil &&
		u.Opacity == nil && u.ZIndex == nil && u.Transform == nil &&
		u.Geometry == nil && u.Material == nil && u.Style == nil && u.Children == nil
}

// Apply merges u into n and returns the changed top-level sub-objects.
func (n *SceneNode) Apply(u NodeUpdate) NodeUpdate {
	var changed NodeUpdate
	if u.Name != nil && *u.Name != n.Name {
		n.Name = *u.Name
		changed.Name = u.Name
	}
	if u.Visible != nil {
		n.Visible = Bool(*u.Visible)
		changed.Visible = u.Visible
	}
	if u.Locked != nil {
		n.Locked = Bool(*u.Locked)
		changed.Locked = u.Locked
	}
	if u.Opacity != nil {
		n.Opacity = Float(*u.Opacity)
		changed.Opacity = u.Opacity
	}
	if u.ZIndex != nil && *u.ZIndex != n.ZIndex {
		n.ZIndex = *u.ZIndex
		changed.ZIndex = u.ZIndex
	}
	if u.Transform != nil {
		n.Transform.merge(*u.Transform)
		changed.Transform = u.Transform
	}
	if u.Geometry != nil {
		if n.Geometry == nil {
			n.Geometry = &Geometry{}
		}
		n.Geometry.merge(*u.Geometry)
		changed.Geometry = u.Geometry
	}
	if u.Material != nil {
		if n.Material == nil {
			n.Material = &Material{}
		}
		n.Material.merge(*u.Material)
		changed.Material = u.Material
	}
	if u.Style != nil {
		if n.Style == nil {
			n.Style = &Style{}
		}
		n.Style.merge(*u.Style)
		changed.Style = u.Style
	}
	if u.Children != nil && n.Type == NodeGroup {
		n.Children = u.Children
		changed.Children = u.Children
	}
	return changed
}

func (t *Transform) merge(u TransformUpdate) {
	if u.Position != nil {
		t.Position = *u.Position
	}
	if u.Rotation != nil {
		r := *u.Rotation
		t.Rotation = &r
	}
	if u.Scale != nil {
		s := *u.Scale
		t.Scale = &s
	}
	if u.Anchor != nil {
		a := *u.Anchor
		t.Anchor = &a
	}
	if u.Skew != nil {
		s := *u.Skew
		t.Skew = &s
	}
}

func (g *Geometry) merge(u Geometry) {
	mergeFloat(&g.Width, u.Width)
	mergeFloat(&g.Height, u.Height)
	mergeFloat(&g.Depth, u.Depth)
	mergeFloat(&g.Radius, u.Radius)
	mergeFloat(&g.RadiusX, u.RadiusX)
	mergeFloat(&g.RadiusY, u.RadiusY)
	mergeFloat(&g.CornerRadius, u.CornerRadius)
	if u.Points != nil {
		g.Points = append([]Vec3(nil), u.Points...)
	}
	if u.Closed != nil {
		g.Closed = Bool(*u.Closed)
	}
}

func (m *Material) merge(u Material) {
	mergePaint(&m.Color, u.Color)
	mergeFloat(&m.Metalness, u.Metalness)
	mergeFloat(&m.Roughness, u.Roughness)
	mergePaint(&m.Emissive, u.Emissive)
	mergeFloat(&m.Opacity, u.Opacity)
	if u.Side != "" {
		m.Side = u.Side
	}
	if u.Wireframe != nil {
		m.Wireframe = Bool(*u.Wireframe)
	}
}

func (s *Style) merge(u Style) {
	mergePaint(&s.Fill, u.Fill)
	mergePaint(&s.Stroke, u.Stroke)
	mergeFloat(&s.StrokeWidth, u.StrokeWidth)
	if u.Text != "" {
		s.Text = u.Text
	}
	mergeFloat(&s.FontSize, u.FontSize)
	if u.FontFamily != "" {
		s.FontFamily = u.FontFamily
	}
	mergeFloat(&s.Opacity, u.Opacity)
}

func mergeFloat(dst **float64, src *float64) {
	if src != nil {
		*dst = Float(*src)
	}
}

func mergePaint(dst **Paint, src *Paint) {
	if src != nil {
		p := *src
		*dst = &p
	}
}
