package twin

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Stroke defaults for lines so nothing renders invisibly by accident.
var (
	defaultStrokeColor = Color{R: 0x33 / 255.0, G: 0x33 / 255.0, B: 0x33 / 255.0, A: 1}
	defaultFillColor   = Color{R: 0x4a / 255.0, G: 0x90 / 255.0, B: 0xe2 / 255.0, A: 1}
)

const defaultStrokeWidth = 2.0

// ParseColor parses a CSS-style color: a named color, #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb()/rgba(), "none"/"transparent", or a CSS gradient string
// (first color stop wins).
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return Color{}, false
	case s == "none" || s == "transparent":
		return ColorTransparent, true
	case strings.HasPrefix(s, "#"):
		c, err := parseHex(s[1:])
		if err != nil {
			return Color{}, false
		}
		return c, true
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	case strings.Contains(s, "gradient("):
		return firstGradientColor(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		}, true
	}
	return Color{}, false
}

func parseHex(h string) (Color, error) {
	var r, g, b, a uint8 = 0, 0, 0, 255
	var err error
	switch len(h) {
	case 3:
		_, err = fmt.Sscanf(h, "%1x%1x%1x", &r, &g, &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		_, err = fmt.Sscanf(h, "%1x%1x%1x%1x", &r, &g, &b, &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		_, err = fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b)
	case 8:
		_, err = fmt.Sscanf(h, "%02x%02x%02x%02x", &r, &g, &b, &a)
	default:
		return Color{}, fmt.Errorf("hex color %q: invalid length %d", h, len(h))
	}
	if err != nil {
		return Color{}, fmt.Errorf("hex color %q: %w", h, err)
	}
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, nil
}

func parseRGBFunc(s string) (Color, bool) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return Color{}, false
	}
	fields := strings.FieldsFunc(s[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(fields) < 3 || len(fields) > 4 {
		return Color{}, false
	}
	var ch [4]float64
	ch[3] = 1
	for i, f := range fields {
		pct := strings.HasSuffix(f, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return Color{}, false
		}
		switch {
		case pct:
			v /= 100
		case i < 3:
			v /= 255
		}
		ch[i] = clamp01(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

// firstGradientColor returns the first parseable color stop of a CSS
// gradient such as "linear-gradient(90deg, #f00 0%, blue 100%)".
func firstGradientColor(s string) (Color, bool) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return Color{}, false
	}
	for _, arg := range splitTopLevel(s[open+1 : end]) {
		arg = strings.TrimSpace(arg)
		token := arg
		if strings.HasPrefix(arg, "rgb") {
			if i := strings.IndexByte(arg, ')'); i >= 0 {
				token = arg[:i+1]
			}
		} else if i := strings.IndexByte(arg, ' '); i >= 0 {
			token = arg[:i]
		}
		if c, ok := ParseColor(token); ok {
			return c, true
		}
	}
	return Color{}, false
}

// splitTopLevel splits s on commas that are not nested inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// Resolve returns the color a paint renders as. Gradients use their first stop.
func (p *Paint) Resolve() (Color, bool) {
	if p == nil {
		return Color{}, false
	}
	if p.Gradient != nil {
		for _, st := range p.Gradient.Stops {
			if c, ok := ParseColor(st.Color); ok {
				return c, true
			}
		}
		return Color{}, false
	}
	return ParseColor(p.Color)
}

// FillColor resolves the node fill with style.fill taking precedence over
// material.color. The bool is false when neither is set or parseable.
func (n *SceneNode) FillColor() (Color, bool) {
	if n.Style != nil {
		if c, ok := n.Style.Fill.Resolve(); ok {
			return c, true
		}
	}
	if n.Material != nil {
		if c, ok := n.Material.Color.Resolve(); ok {
			return c, true
		}
	}
	return Color{}, false
}

// StrokeColor resolves style.stroke.
func (n *SceneNode) StrokeColor() (Color, bool) {
	if n.Style == nil {
		return Color{}, false
	}
	return n.Style.Stroke.Resolve()
}

// StrokeWidth returns style.strokeWidth, or 0 when unset.
func (n *SceneNode) StrokeWidth() float64 {
	if n.Style == nil {
		return 0
	}
	return valueOr(n.Style.StrokeWidth, 0)
}

// lineStroke returns the stroke used by open shapes, falling back to the
// default dark stroke with a non-zero width.
func (n *SceneNode) lineStroke() (Color, float64) {
	c, ok := n.StrokeColor()
	if !ok || c.A == 0 {
		c = defaultStrokeColor
	}
	w := n.StrokeWidth()
	if w <= 0 {
		w = defaultStrokeWidth
	}
	return c, w
}
