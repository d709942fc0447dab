package export

import (
	"errors"
	"image/color"
	"math"
	"strings"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

// ErrEmpty is returned when a board has nothing to export.
var ErrEmpty = errors.New("nothing to export")

// Padding surrounds the content of fitted exports.
const Padding = 40

// surface is a drawing back-end working in canvas coordinates.
type surface interface {
	path(pts []state.Point, closed bool, p paint)
	ellipse(r state.Rect, p paint)
	text(s string, x, baseline, size float64, c color.NRGBA)
}

func drawFrame(s surface, f engine.Frame) {
	for _, c := range f.Connectors {
		drawConnector(s, c.Curve)
	}
	for _, el := range f.Elements {
		drawElement(s, el)
	}
}

func drawConnector(s surface, c geom.CubicBez) {
	p := paint{stroke: ink, hasStroke: true, width: 2}
	s.path(c.Flatten(geom.ConnectorSamples), false, p)
	a, b := geom.ArrowHead(c.P3, c.EndAngle(), geom.ArrowHeadSize)
	s.path([]state.Point{a, c.P3, b}, false, p)
}

func drawElement(s surface, el state.Element) {
	p := paintOf(el.Style)
	r := geom.Bounds(el)
	switch el.Kind {
	case state.KindRectangle:
		s.path(corners(r), true, p)
	case state.KindEllipse:
		s.ellipse(r, p)
	case state.KindDiamond:
		s.path(diamond(r), true, p)
	case state.KindPen:
		p.hasFill = false
		var pts []state.Point
		if path := el.Path(); path != nil {
			pts = path.Points
		}
		if len(pts) == 1 {
			dot := paint{fill: p.stroke, hasFill: p.hasStroke}
			rad := math.Max(el.StrokeWidth/2, 0.5)
			s.ellipse(state.Rect{X: pts[0].X - rad, Y: pts[0].Y - rad, Width: 2 * rad, Height: 2 * rad}, dot)
			return
		}
		s.path(pts, false, p)
	case state.KindArrow:
		p.hasFill = false
		start, end := state.Point{X: el.X, Y: el.Y}, el.End()
		s.path([]state.Point{start, end}, false, p)
		if start != end {
			a, b := geom.ArrowHead(end, math.Atan2(end.Y-start.Y, end.X-start.X), geom.ArrowHeadSize)
			s.path([]state.Point{a, end, b}, false, p)
		}
	case state.KindText:
		size := geom.FontSize(el)
		lines := strings.Split(labelText(el), "\n")
		drawLines(s, lines, el.X+geom.TextPadding/2, el.Y, size, textColor(el.Style))
	case state.KindSticky:
		s.path(corners(r), true, paint{fill: p.fill, hasFill: p.hasFill})
		size := geom.FontSize(el)
		lines := geom.WrapWords(labelText(el), size, r.Width-2*geom.StickyPadding)
		drawLines(s, lines, r.X+geom.StickyPadding, r.Y+geom.StickyPadding, size, textColor(el.Style))
	}
}

func drawLines(s surface, lines []string, x, top, size float64, c color.NRGBA) {
	lh := geom.LineHeight(size)
	for i, line := range lines {
		if line == "" {
			continue
		}
		// centre the glyphs in their line box
		baseline := top + float64(i)*lh + (lh+size*0.7)/2
		s.text(line, x, baseline, size, c)
	}
}

func labelText(el state.Element) string {
	if l := el.Label(); l != nil {
		return l.Text
	}
	return ""
}

func corners(r state.Rect) []state.Point {
	return []state.Point{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}
}

func diamond(r state.Rect) []state.Point {
	c := geom.Center(r)
	return []state.Point{
		{X: c.X, Y: r.Y},
		{X: r.Right(), Y: c.Y},
		{X: c.X, Y: r.Bottom()},
		{X: r.X, Y: c.Y},
	}
}

// fit returns the content bounds padded for export, or ErrEmpty.
func fit(f engine.Frame) (state.Rect, error) {
	b, ok := geom.Union(f.Elements)
	if !ok {
		return state.Rect{}, ErrEmpty
	}
	return state.Rect{
		X:      b.X - Padding,
		Y:      b.Y - Padding,
		Width:  b.Width + 2*Padding,
		Height: b.Height + 2*Padding,
	}, nil
}
