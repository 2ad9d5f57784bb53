package twin

import "testing"

// --- CreateShape ---

func TestCreateShapeSkipsHiddenAndUnknown(t *testing.T) {
	if CreateShape(nil) != nil {
		t.Error("nil node")
	}
	if CreateShape(&SceneNode{ID: "h", Type: NodeRect, Visible: Bool(false)}) != nil {
		t.Error("hidden node should produce nil")
	}
	if CreateShape(&SceneNode{ID: "u", Type: "hexagon"}) != nil {
		t.Error("unknown type should produce nil")
	}
}

func TestCreateRectDefaultsAndPivot(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "r", Type: NodeRect,
		Transform: Transform{Position: Vec3{X: 100, Y: 40, Z: 200}}})
	if s.Kind != ShapeRect || s.Name != "r" {
		t.Fatalf("shape = %+v", s)
	}
	assertNear(t, "Width", s.Width, DefaultRectSize)
	assertNear(t, "Height", s.Height, DefaultRectSize)
	assertNear(t, "X", s.X, 100)
	assertNear(t, "Y", s.Y, 200)
	assertNear(t, "PivotX", s.PivotX, 50)
	assertNear(t, "PivotY", s.PivotY, 50)
	assertColor(t, "Fill", s.Fill, defaultFillColor)

	b := s.WorldBounds()
	assertNear(t, "bounds X", b.X, 50)
	assertNear(t, "bounds Y", b.Y, 150)
}

func TestCreateRectUsesDepthThenHeight(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "r", Type: NodeRect,
		Geometry: &Geometry{Width: Float(40), Height: Float(30), Depth: Float(20)},
		Transform: Transform{Anchor: &Vec3{X: 0, Z: 0}}})
	assertNear(t, "Height", s.Height, 20)
	assertNear(t, "PivotX", s.PivotX, 0)

	s = CreateShape(&SceneNode{ID: "r", Type: NodeRect, Geometry: &Geometry{Height: Float(30)}})
	assertNear(t, "Height", s.Height, 30)
}

func TestCreateCircleAndEllipse(t *testing.T) {
	c := CreateShape(&SceneNode{ID: "c", Type: NodeCircle})
	assertNear(t, "RadiusX", c.RadiusX, DefaultRadius)
	assertNear(t, "RadiusY", c.RadiusY, DefaultRadius)

	e := CreateShape(&SceneNode{ID: "e", Type: NodeEllipse, Geometry: &Geometry{RadiusX: Float(30), RadiusY: Float(10)}})
	assertNear(t, "RadiusX", e.RadiusX, 30)
	assertNear(t, "RadiusY", e.RadiusY, 10)
}

func TestCreateLineProjectsPoints(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "l", Type: NodeLine, Geometry: &Geometry{
		Points: []Vec3{{X: 0, Y: 99, Z: 0}, {X: 100, Y: 99, Z: 50}},
	}})
	if s.Kind != ShapePath || len(s.Points) != 2 {
		t.Fatalf("shape = %+v", s)
	}
	if s.Points[1] != (Vec2{X: 100, Y: 50}) {
		t.Errorf("point = %+v, want (100, 50)", s.Points[1])
	}
	assertColor(t, "Stroke", s.Stroke, defaultStrokeColor)
	assertNear(t, "StrokeWidth", s.StrokeWidth, 2)

	one := CreateShape(&SceneNode{ID: "l1", Type: NodeLine, Geometry: &Geometry{Points: []Vec3{{}}}})
	if len(one.Points) != 0 {
		t.Error("single point should yield no geometry")
	}
}

func TestCreatePipeWidthFromRadius(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "p", Type: NodePipe, Geometry: &Geometry{
		Points: []Vec3{{}, {X: 10}}, Radius: Float(8),
	}})
	assertNear(t, "StrokeWidth", s.StrokeWidth, 16)

	s = CreateShape(&SceneNode{ID: "p", Type: NodePipe, Geometry: &Geometry{Points: []Vec3{{}, {X: 10}}}})
	assertNear(t, "default pipe", s.StrokeWidth, 2*DefaultPipeRadius)
}

func TestCreatePolygonIsClosed(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "pg", Type: NodePolygon, Geometry: &Geometry{
		Points: []Vec3{{}, {X: 10}, {X: 10, Z: 10}},
	}})
	if !s.Closed {
		t.Error("polygon should be closed")
	}
}

func TestCreateTextMeasures(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "t", Type: NodeText, Style: &Style{Text: "abcd", FontSize: Float(10)}})
	if s.Label != "abcd" {
		t.Errorf("Label = %q", s.Label)
	}
	assertNear(t, "Width", s.Width, 24)
	assertNear(t, "Height", s.Height, 10)

	named := CreateShape(&SceneNode{ID: "t2", Type: NodeText, Name: "Tank"})
	if named.Label != "Tank" {
		t.Errorf("Label = %q, want name fallback", named.Label)
	}
}

func TestCreateGroupOmitsHiddenChildren(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "g", Type: NodeGroup, Children: []*SceneNode{
		{ID: "a", Type: NodeRect},
		{ID: "b", Type: NodeRect, Visible: Bool(false)},
		{ID: "c", Type: NodeCircle},
	}})
	if s.NumChildren() != 2 {
		t.Errorf("children = %d, want 2", s.NumChildren())
	}
}

func TestShapeTransformMapping(t *testing.T) {
	s := CreateShape(&SceneNode{ID: "r", Type: NodeRect,
		Opacity: Float(0.5),
		ZIndex:  3,
		Transform: Transform{
			Rotation: &Vec3{X: 10, Y: 90, Z: 20},
			Scale:    &Vec3{X: 2, Y: 7, Z: 3},
		}})
	assertNear(t, "Rotation", s.Rotation, degToRad(90))
	assertNear(t, "ScaleX", s.ScaleX, 2)
	assertNear(t, "ScaleY", s.ScaleY, 3)
	assertNear(t, "Alpha", s.Alpha, 0.5)
	if s.ZIndex != 3 {
		t.Errorf("ZIndex = %d", s.ZIndex)
	}
}
