package twin

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCreateObject3DSkips(t *testing.T) {
	if CreateObject3D(nil) != nil {
		t.Error("nil")
	}
	if CreateObject3D(&SceneNode{ID: "h", Type: NodeRect, Visible: Bool(false)}) != nil {
		t.Error("hidden")
	}
	if CreateObject3D(&SceneNode{ID: "u", Type: "hexagon"}) != nil {
		t.Error("unknown")
	}
}

func TestCreateObject3DRectInWorldUnits(t *testing.T) {
	o := CreateObject3D(&SceneNode{ID: "r", Type: NodeRect,
		Geometry:  &Geometry{Width: Float(200), Height: Float(50), Depth: Float(100)},
		Transform: Transform{Position: Vec3{X: 300, Y: 25, Z: -100}, Rotation: &Vec3{Y: 90}},
	})
	if o == nil || o.Mesh == nil || len(o.Mesh.Vertices) != 8 || len(o.Mesh.Triangles) != 12 {
		t.Fatalf("object = %+v", o)
	}
	assertMgl(t, "position", o.Position, mgl64.Vec3{3, 0.25, -1})
	assertNear(t, "rotation y", o.Rotation.Y(), degToRad(90))

	o.Position, o.Rotation = mgl64.Vec3{}, mgl64.Vec3{}
	b := o.WorldBounds()
	assertMgl(t, "size", b.Size(), mgl64.Vec3{2, 0.5, 1})
}

func TestCreateObject3DCircleDefaults(t *testing.T) {
	o := CreateObject3D(&SceneNode{ID: "c", Type: NodeCircle})
	s := o.WorldBounds().Size()
	assertNearEps(t, "diameter x", s.X(), 1, 1e-9)
	assertNearEps(t, "thickness", s.Y(), PixelToWorld(DefaultThickness), 1e-9)
	assertColor(t, "color", o.Color, defaultFillColor)
}

func TestCreateObject3DLineUsesStroke(t *testing.T) {
	o := CreateObject3D(&SceneNode{ID: "l", Type: NodeLine,
		Style: &Style{Stroke: SolidPaint("#ff0000"), StrokeWidth: Float(3)},
		Geometry: &Geometry{Points: []Vec3{{}, {X: 100, Y: 50, Z: 0}}},
	})
	if !o.Mesh.IsLines() || len(o.Mesh.Lines) != 1 {
		t.Fatalf("mesh = %+v", o.Mesh)
	}
	assertMgl(t, "end", o.Mesh.Vertices[1], mgl64.Vec3{1, 0.5, 0})
	assertColor(t, "color", o.Color, Color{R: 1, A: 1})
	assertNear(t, "width", o.LineWidth, 3)
}

func TestCreateObject3DMaterial(t *testing.T) {
	o := CreateObject3D(&SceneNode{ID: "r", Type: NodeRect,
		Opacity: Float(0.5),
		Material: &Material{
			Color:     SolidPaint("#00ff00"),
			Emissive:  SolidPaint("#ff0000"),
			Opacity:   Float(0.5),
			Wireframe: Bool(true),
		},
	})
	assertColor(t, "color", o.Color, Color{G: 1, A: 1})
	assertColor(t, "emissive", o.Emissive, Color{R: 1, A: 1})
	assertNear(t, "opacity", o.Opacity, 0.25)
	if !o.Wireframe {
		t.Error("wireframe")
	}
}

func TestCreateObject3DPipeAndPolygon(t *testing.T) {
	pipe := CreateObject3D(&SceneNode{ID: "p", Type: NodePipe, Geometry: &Geometry{
		Points: []Vec3{{}, {X: 100}, {X: 100, Z: 100}},
	}})
	if len(pipe.Mesh.Triangles) != 2*2*tubeSegments {
		t.Errorf("pipe triangles = %d", len(pipe.Mesh.Triangles))
	}
	poly := CreateObject3D(&SceneNode{ID: "pg", Type: NodePolygon, Geometry: &Geometry{
		Points: []Vec3{{}, {X: 100}, {X: 100, Z: 100}, {Z: 100}},
	}})
	// two caps of two triangles each plus four side quads
	if len(poly.Mesh.Triangles) != 4+8 {
		t.Errorf("polygon triangles = %d", len(poly.Mesh.Triangles))
	}
}

func TestCreateObject3DTextAndGroup(t *testing.T) {
	txt := CreateObject3D(&SceneNode{ID: "t", Type: NodeText, Style: &Style{Text: "Tank"}})
	if txt.Label != "Tank" || txt.Mesh == nil {
		t.Errorf("text = %+v", txt)
	}
	g := CreateObject3D(&SceneNode{ID: "g", Type: NodeGroup, Children: []*SceneNode{
		{ID: "a", Type: NodeRect}, {ID: "b", Type: NodeRect, Visible: Bool(false)},
	}})
	if len(g.Children()) != 1 || g.Mesh != nil {
		t.Errorf("group children = %d", len(g.Children()))
	}
}
