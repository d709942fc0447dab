// Package geom holds the pure geometry of the board: derived bounds, hit testing,
// resize and connection handles, connector curves and the minimap projection.
// Every tolerance and padding used by rendering, hit testing and cursor feedback is
// defined here so they cannot drift apart.
package geom

import (
	"math"

	"CanvasBoard/internal/state"
)

const (
	// TextPadding is added to the widest measured line of a text element.
	TextPadding = 8
	// MinTextWidth is the floor width of a text element.
	MinTextWidth = 40
	// LineHeightFactor converts a font size into a line height.
	LineHeightFactor = 1.4

	// HandleOffset pushes resize handles outward from the bounds.
	HandleOffset = 6
	// HandleTolerance is the Chebyshev hit distance of a resize handle.
	HandleTolerance = 12
	// ConnectionPointRadius is the Euclidean hit radius of a connection point.
	ConnectionPointRadius = 8

	// MinStrokeHit is the smallest hit distance for pen and arrow elements.
	MinStrokeHit    = 12
	TextHitPadding  = 6
	ShapeHitPadding = 4

	// SelectionPadding is how far the selection outline sits outside the bounds.
	SelectionPadding = 6
	// StickyPadding insets the wrapped text of a sticky note.
	StickyPadding = 12
)

// Bounds returns the derived bounding box of el. Width and height are never negative.
func Bounds(el state.Element) state.Rect {
	switch el.Kind {
	case state.KindPen:
		if p := el.Path(); p != nil && len(p.Points) > 0 {
			return pointsBounds(p.Points)
		}
		return state.Rect{X: el.X, Y: el.Y}
	case state.KindArrow:
		return Normalize(state.Point{X: el.X, Y: el.Y}, el.End())
	case state.KindText:
		return TextBounds(el)
	default:
		return normalizeRect(state.Rect{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height})
	}
}

// Normalize returns the rectangle spanned by two corners in any order.
func Normalize(a, b state.Point) state.Rect {
	return state.Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

func normalizeRect(r state.Rect) state.Rect {
	return Normalize(state.Point{X: r.X, Y: r.Y}, state.Point{X: r.X + r.Width, Y: r.Y + r.Height})
}

func pointsBounds(pts []state.Point) state.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return state.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Union returns the smallest rectangle containing every element's bounds.
func Union(els []state.Element) (state.Rect, bool) {
	if len(els) == 0 {
		return state.Rect{}, false
	}
	r := Bounds(els[0])
	minX, minY, maxX, maxY := r.X, r.Y, r.Right(), r.Bottom()
	for _, el := range els[1:] {
		b := Bounds(el)
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	return state.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// Center returns the middle of r.
func Center(r state.Rect) state.Point {
	return state.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
