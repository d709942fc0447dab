package geom

import (
	"math"

	"CanvasBoard/internal/state"
)

const (
	MinimapWidth   = 180
	MinimapHeight  = 120
	minimapPadding = 200
	minimapMinCell = 2
)

// Minimap maps canvas coordinates into a small overview of the whole board.
type Minimap struct {
	Size    state.Point
	World   state.Rect
	Scale   float64
	OffsetX float64
	OffsetY float64
	Empty   bool
}

// NewMinimap fits the padded content bounds of els into a map of the given size,
// keeping the aspect ratio and centring the slack.
func NewMinimap(els []state.Element, size state.Point) Minimap {
	m := Minimap{Size: size}
	content, ok := Union(els)
	if !ok {
		m.Empty = true
		return m
	}
	m.World = state.Rect{
		X:      content.X - minimapPadding,
		Y:      content.Y - minimapPadding,
		Width:  content.Width + 2*minimapPadding,
		Height: content.Height + 2*minimapPadding,
	}
	m.Scale = math.Min(size.X/m.World.Width, size.Y/m.World.Height)
	m.OffsetX = (size.X - m.World.Width*m.Scale) / 2
	m.OffsetY = (size.Y - m.World.Height*m.Scale) / 2
	return m
}

// Project maps a canvas rectangle into minimap space. Tiny elements stay visible.
func (m Minimap) Project(r state.Rect) state.Rect {
	return state.Rect{
		X:      (r.X-m.World.X)*m.Scale + m.OffsetX,
		Y:      (r.Y-m.World.Y)*m.Scale + m.OffsetY,
		Width:  math.Max(r.Width*m.Scale, minimapMinCell),
		Height: math.Max(r.Height*m.Scale, minimapMinCell),
	}
}

// Viewport returns the rectangle the camera currently shows, in minimap space.
// With no content it is a fixed centred indicator.
func (m Minimap) Viewport(cam state.Camera, viewport state.Point) state.Rect {
	if m.Empty {
		return state.Rect{X: m.Size.X * 0.3, Y: m.Size.Y * 0.3, Width: m.Size.X * 0.4, Height: m.Size.Y * 0.4}
	}
	v := cam.Visible(viewport)
	return state.Rect{
		X:      (v.X-m.World.X)*m.Scale + m.OffsetX,
		Y:      (v.Y-m.World.Y)*m.Scale + m.OffsetY,
		Width:  v.Width * m.Scale,
		Height: v.Height * m.Scale,
	}
}

// Unproject maps a click on the minimap back to canvas coordinates.
func (m Minimap) Unproject(p state.Point) (state.Point, bool) {
	if m.Empty || m.Scale == 0 {
		return state.Point{}, false
	}
	return state.Point{
		X: (p.X-m.OffsetX)/m.Scale + m.World.X,
		Y: (p.Y-m.OffsetY)/m.Scale + m.World.Y,
	}, true
}
