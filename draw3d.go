package twin

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	gridExtent   = 20
	ringSegments = 48
	ambientLight = 0.35
	diffuseLight = 0.65
)

var (
	lightDir   = mgl64.Vec3{0.4, 1, 0.3}.Normalize()
	axisColors = [3]Color{{0.9, 0.2, 0.2, 1}, {0.2, 0.75, 0.2, 1}, {0.2, 0.4, 0.95, 1}}
	axisActive = Color{1, 0.85, 0, 1}
)

// faceDraw is one projected, shaded triangle waiting for the depth sort.
type faceDraw struct {
	pts   [3][2]float32
	depth float64
	color Color
}

// segmentDraw is one projected line segment.
type segmentDraw struct {
	x0, y0, x1, y1 float32
	width          float32
	color          Color
}

type labelDraw struct {
	x, y  float64
	text  string
	color Color
}

// frame3D collects the draw lists for one frame. Buffers are reused.
type frame3D struct {
	vp    mgl64.Mat4
	w, h  float64
	faces []faceDraw
	segs  []segmentDraw
	texts []labelDraw
	verts []ebiten.Vertex
	inds  []uint32
}

func (f *frame3D) reset(vp mgl64.Mat4, w, h float64) {
	f.vp, f.w, f.h = vp, w, h
	f.faces = f.faces[:0]
	f.segs = f.segs[:0]
	f.texts = f.texts[:0]
}

func (f *frame3D) project(p mgl64.Vec3) (float64, float64, float64, bool) {
	return projectWith(f.vp, f.w, f.h, p)
}

func (f *frame3D) line(a, b mgl64.Vec3, width float64, c Color) {
	ax, ay, _, ok1 := f.project(a)
	bx, by, _, ok2 := f.project(b)
	if !ok1 || !ok2 {
		return
	}
	f.segs = append(f.segs, segmentDraw{float32(ax), float32(ay), float32(bx), float32(by), float32(width), c})
}

var scratch3D frame3D

// Draw renders the ground grid, the scene with painter-sorted faces, line
// objects, labels, the selection box and the gizmo.
func (r *Renderer3D) Draw(screen *ebiten.Image) {
	if r.disposed {
		return
	}
	screen.Fill(r.background.RGBA())
	f := &scratch3D
	f.reset(r.camera.ViewProjection(), r.camera.Width, r.camera.Height)

	if r.cfg.Grid.Visible {
		r.drawGrid(screen, f)
	}
	for _, o := range r.scene.children {
		collectObject(f, o, mgl64.Ident4(), 1)
	}
	f.flush(screen)

	for _, o := range r.helpers.children {
		collectObject(f, o, mgl64.Ident4(), 1)
	}
	for i := range f.segs {
		f.segs[i].color = r.selectionColor
	}
	r.collectGizmo(f)
	f.flush(screen)
}

func (r *Renderer3D) drawGrid(screen *ebiten.Image, f *frame3D) {
	step := PixelToWorld(r.cfg.Grid.Size)
	if step <= 0 {
		return
	}
	half := float64(gridExtent) * step
	c := r.gridColor
	for i := -gridExtent; i <= gridExtent; i++ {
		v := float64(i) * step
		f.line(mgl64.Vec3{v, 0, -half}, mgl64.Vec3{v, 0, half}, 1, c)
		f.line(mgl64.Vec3{-half, 0, v}, mgl64.Vec3{half, 0, v}, 1, c)
	}
	f.flush(screen)
}

// collectObject appends the faces, segments and label of o and its subtree.
func collectObject(f *frame3D, o *Object3D, parent mgl64.Mat4, alpha float64) {
	if !o.Visible {
		return
	}
	m := parent.Mul4(o.LocalMatrix())
	alpha *= o.Opacity
	if mesh := o.Mesh; mesh != nil && len(mesh.Vertices) > 0 && alpha > 0 {
		world := make([]mgl64.Vec3, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			world[i] = mgl64.TransformCoordinate(v, m)
		}
		c := o.Color.WithAlpha(alpha)
		width := o.LineWidth
		if width <= 0 {
			width = 1
		}
		for _, l := range mesh.Lines {
			f.line(world[l[0]], world[l[1]], width, c)
		}
		if o.Wireframe {
			for _, t := range mesh.Triangles {
				f.line(world[t[0]], world[t[1]], 1, c)
				f.line(world[t[1]], world[t[2]], 1, c)
			}
		} else {
			for _, t := range mesh.Triangles {
				f.face(world[t[0]], world[t[1]], world[t[2]], c, o.Emissive)
			}
		}
	}
	if o.Label != "" {
		if x, y, _, ok := f.project(mgl64.TransformCoordinate(mgl64.Vec3{}, m)); ok {
			f.texts = append(f.texts, labelDraw{x: x, y: y, text: o.Label, color: Color{0.1, 0.1, 0.1, alpha}})
		}
	}
	for _, c := range o.children {
		collectObject(f, c, m, alpha)
	}
}

// face shades triangle abc with a two-sided lambert term and queues it.
func (f *frame3D) face(a, b, c mgl64.Vec3, base, emissive Color) {
	var fd faceDraw
	depth := 0.0
	for i, p := range [3]mgl64.Vec3{a, b, c} {
		x, y, w, ok := f.project(p)
		if !ok {
			return
		}
		fd.pts[i] = [2]float32{float32(x), float32(y)}
		depth += w
	}
	fd.depth = depth / 3
	k := ambientLight
	if n := b.Sub(a).Cross(c.Sub(a)); n.Len() > 1e-12 {
		k += diffuseLight * math.Abs(n.Normalize().Dot(lightDir))
	}
	fd.color = Color{
		R: clamp01(base.R*k + emissive.R),
		G: clamp01(base.G*k + emissive.G),
		B: clamp01(base.B*k + emissive.B),
		A: base.A,
	}
	f.faces = append(f.faces, fd)
}

// flush draws the queued faces back to front, then segments and labels,
// and empties the queues.
func (f *frame3D) flush(screen *ebiten.Image) {
	if len(f.faces) > 0 {
		sort.SliceStable(f.faces, func(i, j int) bool { return f.faces[i].depth > f.faces[j].depth })
		f.verts = f.verts[:0]
		f.inds = f.inds[:0]
		for _, fd := range f.faces {
			base := uint32(len(f.verts))
			a := float32(fd.color.A)
			for _, p := range fd.pts {
				f.verts = append(f.verts, ebiten.Vertex{
					DstX: p[0], DstY: p[1],
					SrcX: 0.5, SrcY: 0.5,
					ColorR: float32(fd.color.R) * a,
					ColorG: float32(fd.color.G) * a,
					ColorB: float32(fd.color.B) * a,
					ColorA: a,
				})
			}
			f.inds = append(f.inds, base, base+1, base+2)
		}
		var op ebiten.DrawTrianglesOptions
		op.AntiAlias = true
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		screen.DrawTriangles32(f.verts, f.inds, ensureWhitePixel(), &op)
		f.faces = f.faces[:0]
	}
	for _, s := range f.segs {
		vector.StrokeLine(screen, s.x0, s.y0, s.x1, s.y1, s.width, s.color.RGBA(), true)
	}
	f.segs = f.segs[:0]
	for _, t := range f.texts {
		op := &text.DrawOptions{}
		op.GeoM.Translate(t.x, t.y)
		op.ColorScale.ScaleWithColor(t.color.RGBA())
		text.Draw(screen, t.text, labelFace, op)
	}
	f.texts = f.texts[:0]
}

// collectGizmo queues the arms, rings or scale handles of the transformer.
func (r *Renderer3D) collectGizmo(f *frame3D) {
	t := r.transformer
	if t.Attached() == nil {
		return
	}
	center := t.Center()
	size := t.Size()
	active := t.ActiveAxis()
	for i, axis := range t.Axes() {
		c := axisColors[i]
		if i == active {
			c = axisActive
		}
		switch t.Mode() {
		case TransformRotate:
			u := perpendicularTo(axis)
			v := axis.Cross(u)
			rad := size * gizmoRingRadius
			prev := center.Add(u.Mul(rad))
			for s := 1; s <= ringSegments; s++ {
				a := 2 * math.Pi * float64(s) / ringSegments
				p := center.Add(u.Mul(rad * math.Cos(a))).Add(v.Mul(rad * math.Sin(a)))
				f.line(prev, p, 2, c)
				prev = p
			}
		default:
			end := center.Add(axis.Mul(size))
			f.line(center, end, 2.5, c)
			if t.Mode() == TransformScale {
				if x, y, _, ok := f.project(end); ok {
					f.segs = append(f.segs,
						segmentDraw{float32(x - 4), float32(y), float32(x + 4), float32(y), 8, c})
				}
			}
		}
	}
}
