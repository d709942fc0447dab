// Package export renders frames to PNG and PDF files.
package export

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"CanvasBoard/internal/state"
)

// ParseColor reads a #rgb or #rrggbb colour. "transparent", "" and anything
// unparseable report false.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") {
		return color.NRGBA{}, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, true
}

// WithOpacity scales the alpha of c by opacity, clamped to [0, 1].
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = min(max(opacity, 0), 1)
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

var ink = color.NRGBA{R: 0x1E, G: 0x29, B: 0x3B, A: 0xff}

// paint is the resolved style of one element.
type paint struct {
	stroke, fill       color.NRGBA
	hasStroke, hasFill bool
	width              float64
}

func paintOf(st state.Style) paint {
	p := paint{width: st.StrokeWidth}
	if c, ok := ParseColor(st.Stroke); ok && st.StrokeWidth > 0 {
		p.stroke, p.hasStroke = WithOpacity(c, st.Opacity), true
	}
	if c, ok := ParseColor(st.Fill); ok {
		p.fill, p.hasFill = WithOpacity(c, st.Opacity), true
	}
	return p
}

// textColor is the colour labels are written in: the element stroke, or ink.
func textColor(st state.Style) color.NRGBA {
	c, ok := ParseColor(st.Stroke)
	if !ok {
		c = ink
	}
	return WithOpacity(c, st.Opacity)
}
