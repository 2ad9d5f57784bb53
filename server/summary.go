package server

import (
	"math"

	"github.com/phanxgames/twin"
)

// Summary is a lightweight preview of a scene.
type Summary struct {
	ID        string         `json:"id"`
	SceneMode twin.SceneMode `json:"sceneMode"`
	Nodes     int            `json:"nodes"`
	Types     map[string]int `json:"types"`
	// Bounds covers node positions on the ground plane. Nil for an empty
	// scene.
	Bounds *Bounds `json:"bounds,omitempty"`
}

// Bounds is an axis-aligned rectangle on the x/z plane.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinZ float64 `json:"minZ"`
	MaxX float64 `json:"maxX"`
	MaxZ float64 `json:"maxZ"`
}

// Summarize counts the nodes of m by type and measures where they sit.
// Child positions are offset by their group's position.
func Summarize(m *twin.SceneModel) Summary {
	s := Summary{ID: m.ID, SceneMode: m.SceneMode, Types: map[string]int{}}
	b := Bounds{MinX: math.Inf(1), MinZ: math.Inf(1), MaxX: math.Inf(-1), MaxZ: math.Inf(-1)}

	var visit func(nodes []*twin.SceneNode, ox, oz float64)
	visit = func(nodes []*twin.SceneNode, ox, oz float64) {
		for _, n := range nodes {
			s.Nodes++
			s.Types[string(n.Type)]++
			x := ox + n.Transform.Position.X
			z := oz + n.Transform.Position.Z
			if n.Type == twin.NodeGroup {
				visit(n.Children, x, z)
				continue
			}
			b.MinX = math.Min(b.MinX, x)
			b.MinZ = math.Min(b.MinZ, z)
			b.MaxX = math.Max(b.MaxX, x)
			b.MaxZ = math.Max(b.MaxZ, z)
		}
	}
	visit(m.Nodes, 0, 0)

	if !math.IsInf(b.MinX, 1) {
		s.Bounds = &b
	}
	return s
}
