package twin

import "math"

// Handle identifies a control point of the 2D selection decoration.
type Handle uint8

const (
	HandleNone Handle = iota
	HandleBody
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	HandleRotate
)

var handleNames = [...]string{"none", "body", "tl", "t", "tr", "r", "br", "b", "bl", "l", "rotate"}

func (h Handle) String() string {
	if int(h) < len(handleNames) {
		return handleNames[h]
	}
	return "unknown"
}

// scaleSigns returns the signed contribution of a handle to each axis.
func (h Handle) scaleSigns() (sx, sy float64) {
	switch h {
	case HandleTopLeft:
		return -1, -1
	case HandleTop:
		return 0, -1
	case HandleTopRight:
		return 1, -1
	case HandleRight:
		return 1, 0
	case HandleBottomRight:
		return 1, 1
	case HandleBottom:
		return 0, 1
	case HandleBottomLeft:
		return -1, 1
	case HandleLeft:
		return -1, 0
	}
	return 0, 0
}

// Selector2D tracks the selection over a shape layer and owns the bounding
// decoration. Selected is the primary object; multi-selection members are
// kept in insertion order with the primary last.
type Selector2D struct {
	layer *Shape
	view  *Viewport2D

	selectionSet[*Shape]

	box    Rect
	hasBox bool

	// lookup resolves a node id to its top-level shape.
	lookup func(id string) (*Shape, bool)

	// HandleSize is the screen-space side length of the resize handles.
	HandleSize float64
	// RotateOffset is the screen distance of the rotate handle above the box.
	RotateOffset float64

	hitBuf []*Shape
}

// NewSelector2D creates a selector over the given layer.
func NewSelector2D(layer *Shape, view *Viewport2D, lookup func(id string) (*Shape, bool)) *Selector2D {
	s := &Selector2D{
		layer:        layer,
		view:         view,
		lookup:       lookup,
		HandleSize:   8,
		RotateOffset: 24,
	}
	s.refresh = s.RefreshBoundingBox
	return s
}

// SelectByNodeID selects the shape for id; unknown ids leave the selection
// unchanged.
func (s *Selector2D) SelectByNodeID(id string) {
	if s.lookup == nil {
		return
	}
	if obj, ok := s.lookup(id); ok {
		s.Select(obj)
	}
}

// SelectByPoint hit-tests at a screen point and selects the topmost shape,
// or deselects on empty space.
func (s *Selector2D) SelectByPoint(sx, sy float64) *Shape {
	hit := s.HitTest(sx, sy)
	s.Select(hit)
	return hit
}

// HitTest returns the topmost selectable top-level shape whose screen-space
// bounds contain (sx, sy).
func (s *Selector2D) HitTest(sx, sy float64) *Shape {
	s.hitBuf = collectSelectable(s.layer, s.hitBuf[:0])
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		leaf := s.hitBuf[i]
		b := leaf.WorldBounds()
		if b.Width == 0 && b.Height == 0 {
			continue
		}
		if s.view.WorldRectToScreen(b).Contains(sx, sy) {
			return topLevelShape(s.layer, leaf)
		}
	}
	return nil
}

// ShapesInRect returns the selectable top-level shapes whose world bounds
// intersect r.
func (s *Selector2D) ShapesInRect(r Rect) []*Shape {
	var out []*Shape
	for _, c := range s.layer.sorted() {
		if !c.Visible || !c.Selectable {
			continue
		}
		b := c.WorldBounds()
		if b.Width == 0 && b.Height == 0 {
			continue
		}
		if b.Intersects(r) {
			out = append(out, c)
		}
	}
	return out
}

// RefreshBoundingBox recomputes the decoration for the current selection.
func (s *Selector2D) RefreshBoundingBox() {
	if s.selected == nil || s.selected.IsDisposed() {
		s.hasBox = false
		s.box = Rect{}
		return
	}
	s.box = s.selected.WorldBounds()
	s.hasBox = true
}

// BoundingBox returns the world-space decoration rectangle.
func (s *Selector2D) BoundingBox() (Rect, bool) { return s.box, s.hasBox }

// HandleRects returns the screen-space rectangle of every resize and rotate
// handle, keyed by handle.
func (s *Selector2D) HandleRects() map[Handle]Rect {
	if !s.hasBox {
		return nil
	}
	b := s.view.WorldRectToScreen(s.box)
	hs := s.HandleSize
	at := func(x, y float64) Rect { return Rect{X: x - hs/2, Y: y - hs/2, Width: hs, Height: hs} }
	cx, cy := b.Center()
	r, bot := b.X+b.Width, b.Y+b.Height
	return map[Handle]Rect{
		HandleTopLeft:     at(b.X, b.Y),
		HandleTop:         at(cx, b.Y),
		HandleTopRight:    at(r, b.Y),
		HandleRight:       at(r, cy),
		HandleBottomRight: at(r, bot),
		HandleBottom:      at(cx, bot),
		HandleBottomLeft:  at(b.X, bot),
		HandleLeft:        at(b.X, cy),
		HandleRotate:      at(cx, b.Y-s.RotateOffset),
	}
}

// HandleAt returns the handle under a screen point: a resize or rotate
// handle, HandleBody inside the box, or HandleNone.
func (s *Selector2D) HandleAt(sx, sy float64) Handle {
	if !s.hasBox {
		return HandleNone
	}
	best, bestDist := HandleNone, math.Inf(1)
	for h, r := range s.HandleRects() {
		if !r.Contains(sx, sy) {
			continue
		}
		cx, cy := r.Center()
		if d := math.Hypot(sx-cx, sy-cy); d < bestDist {
			best, bestDist = h, d
		}
	}
	if best != HandleNone {
		return best
	}
	if s.view.WorldRectToScreen(s.box).Contains(sx, sy) {
		return HandleBody
	}
	return HandleNone
}

// collectSelectable walks the tree in painter order, appending visible,
// selectable leaves with geometry.
func collectSelectable(s *Shape, buf []*Shape) []*Shape {
	for _, c := range s.sorted() {
		if !c.Visible || !c.Selectable {
			continue
		}
		if c.Kind == ShapeGroup {
			buf = collectSelectable(c, buf)
			continue
		}
		buf = append(buf, c)
	}
	return buf
}

// topLevelShape returns the ancestor of s that is a direct child of layer.
func topLevelShape(layer, s *Shape) *Shape {
	for s != nil && s.Parent != layer {
		s = s.Parent
	}
	return s
}
