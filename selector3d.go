package twin

import "math"

// DefaultCycleRadius is how close, in pixels, a click must land to the
// previous one to cycle through overlapping candidates.
const DefaultCycleRadius = 3

// Selector3D tracks the selection over a 3D scene root and owns the
// __selectionBox wireframe helper.
type Selector3D struct {
	scene *Object3D
	cam   *Camera3D

	selectionSet[*Object3D]

	box    Box3
	helper *Object3D

	lookup func(id string) (*Object3D, bool)

	// LinePad grows the pick box of line objects, in world units.
	LinePad float64
	// CycleRadius is the click distance, in pixels, that cycles candidates.
	CycleRadius float64

	lastX, lastY float64
	candidates   []*Object3D
	cycle        int
}

// NewSelector3D creates a selector over the children of scene. The
// selection helper is parented to helpers, which should not be pickable.
func NewSelector3D(scene, helpers *Object3D, cam *Camera3D, lookup func(id string) (*Object3D, bool)) *Selector3D {
	s := &Selector3D{
		scene:       scene,
		cam:         cam,
		lookup:      lookup,
		LinePad:     0.05,
		CycleRadius: DefaultCycleRadius,
		box:         EmptyBox3(),
		helper:      NewObject3D(HelperPrefix + "selectionBox"),
	}
	s.helper.Visible = false
	s.helper.Selectable = false
	if helpers != nil {
		helpers.AddChild(s.helper)
	}
	s.refresh = s.RefreshBoundingBox
	return s
}

// Helper returns the wireframe box object.
func (s *Selector3D) Helper() *Object3D { return s.helper }

// SelectByNodeID selects the object for id; unknown ids leave the selection
// unchanged.
func (s *Selector3D) SelectByNodeID(id string) {
	if s.lookup == nil {
		return
	}
	if obj, ok := s.lookup(id); ok {
		s.Select(obj)
	}
}

// Candidates returns the top-level objects under a screen point, nearest
// first.
func (s *Selector3D) Candidates(sx, sy float64) []*Object3D {
	hits := Raycast(s.cam.Ray(sx, sy), s.scene.children, s.LinePad)
	var out []*Object3D
	seen := make(map[*Object3D]bool, len(hits))
	for _, h := range hits {
		top := topLevelObject(s.scene, h.Object)
		if top == nil || seen[top] {
			continue
		}
		seen[top] = true
		out = append(out, top)
	}
	return out
}

// HitTest returns the nearest top-level object under a screen point.
func (s *Selector3D) HitTest(sx, sy float64) *Object3D {
	if c := s.Candidates(sx, sy); len(c) > 0 {
		return c[0]
	}
	return nil
}

// SelectByPointer selects the object under a screen point. Clicking again
// at the same spot steps to the next candidate behind it; empty space
// deselects.
func (s *Selector3D) SelectByPointer(sx, sy float64) *Object3D {
	cands := s.Candidates(sx, sy)
	if len(cands) == 0 {
		s.candidates = nil
		s.cycle = 0
		s.Deselect()
		return nil
	}
	if s.candidates != nil && math.Hypot(sx-s.lastX, sy-s.lastY) <= s.CycleRadius && sameObjects(cands, s.candidates) {
		s.cycle = (s.cycle + 1) % len(cands)
	} else {
		s.cycle = 0
	}
	s.lastX, s.lastY = sx, sy
	s.candidates = cands
	obj := cands[s.cycle]
	s.Select(obj)
	return obj
}

// RefreshBoundingBox recomputes the helper box around the primary selection.
func (s *Selector3D) RefreshBoundingBox() {
	if s.selected == nil || s.selected.IsDisposed() {
		s.box = EmptyBox3()
		s.helper.Visible = false
		return
	}
	s.box = s.selected.WorldBounds()
	if s.box.IsEmpty() {
		s.helper.Visible = false
		return
	}
	c := s.box.Corners()
	s.helper.Mesh = &Mesh3D{Vertices: c[:], Lines: boxEdges[:]}
	s.helper.Visible = true
}

// BoundingBox returns the world box of the primary selection.
func (s *Selector3D) BoundingBox() (Box3, bool) { return s.box, !s.box.IsEmpty() }

// dispose detaches the helper.
func (s *Selector3D) dispose() { s.helper.Dispose() }

// topLevelObject returns the ancestor of o that is a direct child of root.
func topLevelObject(root, o *Object3D) *Object3D {
	for o != nil && o.Parent != root {
		o = o.Parent
	}
	return o
}

func sameObjects(a, b []*Object3D) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
