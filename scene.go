package twin

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// NodeType selects the factory routine that builds a node's display object.
type NodeType string

const (
	NodeGroup    NodeType = "group"
	NodeRect     NodeType = "rect"
	NodeCircle   NodeType = "circle"
	NodeEllipse  NodeType = "ellipse"
	NodeLine     NodeType = "line"
	NodePolyline NodeType = "polyline"
	NodePolygon  NodeType = "polygon"
	NodeText     NodeType = "text"
	NodePipe     NodeType = "pipe"
)

// Known reports whether t is one of the supported node types.
func (t NodeType) Known() bool {
	switch t {
	case NodeGroup, NodeRect, NodeCircle, NodeEllipse, NodeLine,
		NodePolyline, NodePolygon, NodeText, NodePipe:
		return true
	}
	return false
}

// SceneModel is the serializable scene document. One model is live per
// editor; the coordinator owns it and the active renderer mutates it in place.
type SceneModel struct {
	ID        string         `json:"id"`
	Version   string         `json:"version"`
	SceneMode SceneMode      `json:"sceneMode"`
	Nodes     []*SceneNode   `json:"nodes"`
	Assets    []Asset        `json:"assets,omitempty"`
	Symbols   []Symbol       `json:"symbols,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Asset is an entry of the scene's asset manifest.
type Asset struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// Symbol is a reusable node template in the scene's symbol library.
type Symbol struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Nodes []*SceneNode `json:"nodes"`
}

// SceneNode is one graphical entity. Optional scalar attributes are pointers
// so that "unset" survives a JSON round trip and partial updates.
type SceneNode struct {
	ID        string         `json:"id"`
	Type      NodeType       `json:"type"`
	Name      string         `json:"name,omitempty"`
	Visible   *bool          `json:"visible,omitempty"`
	Locked    *bool          `json:"locked,omitempty"`
	Opacity   *float64       `json:"opacity,omitempty"`
	ZIndex    int            `json:"zIndex,omitempty"`
	Transform Transform      `json:"transform"`
	Geometry  *Geometry      `json:"geometry,omitempty"`
	Material  *Material      `json:"material,omitempty"`
	Style     *Style         `json:"style,omitempty"`
	Children  []*SceneNode   `json:"children,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// IsVisible reports whether the node should produce a display object.
func (n *SceneNode) IsVisible() bool { return n.Visible == nil || *n.Visible }

// IsLocked reports whether the node refuses interactive edits.
func (n *SceneNode) IsLocked() bool { return n.Locked != nil && *n.Locked }

// EffectiveOpacity combines the node opacity with the style opacity.
func (n *SceneNode) EffectiveOpacity() float64 {
	o := valueOr(n.Opacity, 1)
	if n.Style != nil && n.Style.Opacity != nil {
		o *= *n.Style.Opacity
	}
	return clamp01(o)
}

// Transform positions a node. Position is in pixel-equivalent units and
// rotations are in degrees.
type Transform struct {
	Position Vec3  `json:"position"`
	Rotation *Vec3 `json:"rotation,omitempty"`
	Scale    *Vec3 `json:"scale,omitempty"`
	Anchor   *Vec3 `json:"anchor,omitempty"`
	Skew     *Vec2 `json:"skew,omitempty"`
}

// RotationOrZero returns the rotation, or zero when unset.
func (t Transform) RotationOrZero() Vec3 {
	if t.Rotation == nil {
		return Vec3{}
	}
	return *t.Rotation
}

// ScaleOrOne returns the scale, or (1, 1, 1) when unset.
func (t Transform) ScaleOrOne() Vec3 {
	if t.Scale == nil {
		return Vec3{1, 1, 1}
	}
	return *t.Scale
}

// Geometry holds shape-specific sizing. Which fields matter depends on the
// node type.
type Geometry struct {
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Depth        *float64 `json:"depth,omitempty"`
	Radius       *float64 `json:"radius,omitempty"`
	RadiusX      *float64 `json:"radiusX,omitempty"`
	RadiusY      *float64 `json:"radiusY,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty"`
	Points       []Vec3   `json:"points,omitempty"`
	Closed       *bool    `json:"closed,omitempty"`
}

// Material is the 3D-oriented appearance.
type Material struct {
	Color     *Paint   `json:"color,omitempty"`
	Metalness *float64 `json:"metalness,omitempty"`
	Roughness *float64 `json:"roughness,omitempty"`
	Emissive  *Paint   `json:"emissive,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Side      string   `json:"side,omitempty"`
	Wireframe *bool    `json:"wireframe,omitempty"`
}

// Style is the 2D-oriented appearance.
type Style struct {
	Fill        *Paint   `json:"fill,omitempty"`
	Stroke      *Paint   `json:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	Text        string   `json:"text,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	FontFamily  string   `json:"fontFamily,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
}

// Paint is either a color string or a gradient definition.
type Paint struct {
	Color    string
	Gradient *Gradient
}

// Gradient is a multi-stop gradient. Only the first stop is rendered.
type Gradient struct {
	Type  string         `json:"type"`
	Angle *float64       `json:"angle,omitempty"`
	Stops []GradientStop `json:"stops"`
}

// GradientStop is one color stop of a gradient.
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// SolidPaint returns a Paint holding the color string s.
func SolidPaint(s string) *Paint { return &Paint{Color: s} }

// MarshalJSON encodes the paint as a string or as a gradient object.
func (p Paint) MarshalJSON() ([]byte, error) {
	if p.Gradient != nil {
		return json.Marshal(p.Gradient)
	}
	return json.Marshal(p.Color)
}

// UnmarshalJSON accepts either a JSON string or a gradient object.
func (p *Paint) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*p = Paint{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("paint: %w", err)
		}
		*p = Paint{Color: s}
		return nil
	}
	var g Gradient
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("paint: %w", err)
	}
	*p = Paint{Gradient: &g}
	return nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// NewSceneModel returns an empty model with a fresh id.
func NewSceneModel(mode SceneMode) *SceneModel {
	return &SceneModel{
		ID:        uuid.NewString(),
		Version:   "1.0",
		SceneMode: normalizeSceneMode(mode),
		Nodes:     []*SceneNode{},
		Metadata:  map[string]any{},
	}
}

// NewNodeID returns a unique node id prefixed with the node type.
func NewNodeID(t NodeType) string {
	return string(t) + "-" + uuid.NewString()[:8]
}

// FindNode returns the node with the given id, searching groups depth-first.
func (m *SceneModel) FindNode(id string) *SceneNode {
	var found *SceneNode
	walkNodes(m.Nodes, func(n *SceneNode) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every node depth-first until fn returns false.
func (m *SceneModel) Walk(fn func(n *SceneNode) bool) {
	walkNodes(m.Nodes, fn)
}

func walkNodes(nodes []*SceneNode, fn func(n *SceneNode) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		if len(n.Children) > 0 && !walkNodes(n.Children, fn) {
			return false
		}
	}
	return true
}

// detachNode removes the node with the given id from the tree and returns it.
func (m *SceneModel) detachNode(id string) *SceneNode {
	var detach func(nodes []*SceneNode) ([]*SceneNode, *SceneNode)
	detach = func(nodes []*SceneNode) ([]*SceneNode, *SceneNode) {
		for i, n := range nodes {
			if n.ID == id {
				copy(nodes[i:], nodes[i+1:])
				nodes[len(nodes)-1] = nil
				return nodes[:len(nodes)-1], n
			}
			if len(n.Children) > 0 {
				var got *SceneNode
				n.Children, got = detach(n.Children)
				if got != nil {
					return nodes, got
				}
			}
		}
		return nodes, nil
	}
	var got *SceneNode
	m.Nodes, got = detach(m.Nodes)
	return got
}

// topLevelOf returns the root-level node containing id (or the node itself).
func (m *SceneModel) topLevelOf(id string) *SceneNode {
	for _, root := range m.Nodes {
		hit := false
		walkNodes([]*SceneNode{root}, func(n *SceneNode) bool {
			if n.ID == id {
				hit = true
				return false
			}
			return true
		})
		if hit {
			return root
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *SceneModel) Clone() (*SceneModel, error) {
	out := &SceneModel{}
	if err := copier.CopyWithOption(out, m, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone scene %s: %w", m.ID, err)
	}
	return out, nil
}

// EncodeScene writes m as indented JSON.
func EncodeScene(w io.Writer, m *SceneModel) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// DecodeScene reads a scene document and sanitizes it: unsupported modes fall
// back to 3d, and nodes with unknown types or duplicate ids are dropped.
func DecodeScene(r io.Reader) (*SceneModel, error) {
	var m SceneModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if m.SceneMode == "" {
		m.SceneMode = SceneMode3D
	}
	m.SceneMode = normalizeSceneMode(m.SceneMode)
	if m.Nodes == nil {
		m.Nodes = []*SceneNode{}
	}
	seen := make(map[string]bool)
	m.Nodes = sanitizeNodes(m.Nodes, seen)
	return &m, nil
}

func sanitizeNodes(nodes []*SceneNode, seen map[string]bool) []*SceneNode {
	out := nodes[:0]
	for _, n := range nodes {
		switch {
		case n == nil:
			continue
		case n.ID == "" || seen[n.ID]:
			logger().Warn("dropping node with missing or duplicate id", "id", n.ID, "type", string(n.Type))
			continue
		case !n.Type.Known():
			logger().Warn("dropping node with unknown type", "id", n.ID, "type", string(n.Type))
			continue
		}
		seen[n.ID] = true
		if n.Type == NodeGroup {
			n.Children = sanitizeNodes(n.Children, seen)
		} else {
			n.Children = nil
		}
		out = append(out, n)
	}
	return out
}
