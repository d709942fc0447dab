package geom

import (
	"math"
	"strings"

	"CanvasBoard/internal/state"
)

type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
)

// IsCorner reports whether h is one of the four corner handles.
func (h Handle) IsCorner() bool { return len(h) == 2 }

// Cursor is the resize cursor shape that matches the handle direction.
func (h Handle) Cursor() string {
	switch h {
	case HandleNW, HandleSE:
		return "nwse-resize"
	case HandleNE, HandleSW:
		return "nesw-resize"
	case HandleN, HandleS:
		return "ns-resize"
	case HandleE, HandleW:
		return "ew-resize"
	}
	return "default"
}

func (h Handle) moves(side string) bool { return strings.Contains(string(h), side) }

type HandlePoint struct {
	Handle Handle
	Point  state.Point
}

// HandlePositions returns the eight resize handles of r, offset outward.
func HandlePositions(r state.Rect) []HandlePoint {
	x, y, w, h := r.X, r.Y, r.Width, r.Height
	const pad = HandleOffset
	return []HandlePoint{
		{HandleNW, state.Point{X: x - pad, Y: y - pad}},
		{HandleN, state.Point{X: x + w/2, Y: y - pad}},
		{HandleNE, state.Point{X: x + w + pad, Y: y - pad}},
		{HandleE, state.Point{X: x + w + pad, Y: y + h/2}},
		{HandleSE, state.Point{X: x + w + pad, Y: y + h + pad}},
		{HandleS, state.Point{X: x + w/2, Y: y + h + pad}},
		{HandleSW, state.Point{X: x - pad, Y: y + h + pad}},
		{HandleW, state.Point{X: x - pad, Y: y + h/2}},
	}
}

// HitTestHandle returns the first handle within tolerance of p on both axes.
func HitTestHandle(p state.Point, handles []HandlePoint, tolerance float64) (Handle, bool) {
	for _, hp := range handles {
		if math.Abs(p.X-hp.Point.X) <= tolerance && math.Abs(p.Y-hp.Point.Y) <= tolerance {
			return hp.Handle, true
		}
	}
	return "", false
}

type AnchorPoint struct {
	Anchor state.Anchor
	Point  state.Point
}

// ConnectionPoints returns the edge midpoints of r in hit-test order.
func ConnectionPoints(r state.Rect) []AnchorPoint {
	return []AnchorPoint{
		{state.AnchorTop, state.Point{X: r.X + r.Width/2, Y: r.Y}},
		{state.AnchorRight, state.Point{X: r.X + r.Width, Y: r.Y + r.Height/2}},
		{state.AnchorBottom, state.Point{X: r.X + r.Width/2, Y: r.Y + r.Height}},
		{state.AnchorLeft, state.Point{X: r.X, Y: r.Y + r.Height/2}},
	}
}

// AnchorOf returns the position of a single anchor on r.
func AnchorOf(r state.Rect, a state.Anchor) state.Point {
	for _, ap := range ConnectionPoints(r) {
		if ap.Anchor == a {
			return ap.Point
		}
	}
	return Center(r)
}

// HitTestConnectionPoint returns the first anchor within radius of p. On exact
// overlap the earlier anchor in iteration order wins.
func HitTestConnectionPoint(p state.Point, pts []AnchorPoint, radius float64) (state.Anchor, bool) {
	for _, ap := range pts {
		if math.Hypot(p.X-ap.Point.X, p.Y-ap.Point.Y) <= radius {
			return ap.Anchor, true
		}
	}
	return "", false
}

// Connectable reports whether an element of kind k exposes connection points.
func Connectable(k state.Kind) bool {
	switch k {
	case state.KindRectangle, state.KindEllipse, state.KindDiamond, state.KindText, state.KindSticky:
		return true
	}
	return false
}
