package geom

import (
	"math"

	"CanvasBoard/internal/state"
)

const (
	// MinSize is the smallest width and height a resize can produce.
	MinSize = 10
	// MinFontSize floors font scaling during resize.
	MinFontSize = 8
)

// ResizeBounds applies the pointer delta (dx, dy) to start through handle h.
// West and north handles move the origin and grow inversely; east and south handles
// move the far edge. When an axis hits MinSize the origin side is clamped so the
// opposite edge stays put.
func ResizeBounds(start state.Rect, h Handle, dx, dy float64) state.Rect {
	r := start
	if h.moves("w") {
		r.X = start.X + dx
		r.Width = start.Width - dx
	}
	if h.moves("e") {
		r.Width = start.Width + dx
	}
	if h.moves("n") {
		r.Y = start.Y + dy
		r.Height = start.Height - dy
	}
	if h.moves("s") {
		r.Height = start.Height + dy
	}
	if r.Width < MinSize {
		if h.moves("w") {
			r.X = start.X + start.Width - MinSize
		}
		r.Width = MinSize
	}
	if r.Height < MinSize {
		if h.moves("n") {
			r.Y = start.Y + start.Height - MinSize
		}
		r.Height = MinSize
	}
	return r
}

// Scale returns the per-axis scale between from and to. A degenerate axis scales by 1.
func Scale(from, to state.Rect) (sx, sy float64) {
	sx, sy = 1, 1
	if from.Width > 0 {
		sx = to.Width / from.Width
	}
	if from.Height > 0 {
		sy = to.Height / from.Height
	}
	return sx, sy
}

// MapPoint places p, expressed relative to from, at the same relative spot in to.
func MapPoint(p state.Point, from, to state.Rect) state.Point {
	sx, sy := Scale(from, to)
	return state.Point{
		X: to.X + (p.X-from.X)*sx,
		Y: to.Y + (p.Y-from.Y)*sy,
	}
}

// ScaleFont returns the font size of a text or sticky element resized from from to to.
// Text follows the vertical scale; sticky notes follow the smaller of the two axes.
func ScaleFont(kind state.Kind, startSize float64, from, to state.Rect) float64 {
	sx, sy := Scale(from, to)
	f := sy
	if kind == state.KindSticky {
		f = math.Min(sx, sy)
	}
	return math.Max(MinFontSize, math.Round(startSize*f))
}
