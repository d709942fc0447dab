package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/export"
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

var (
	minimapBackground = color.NRGBA{R: 0xF8, G: 0xFA, B: 0xFC, A: 0xe6}
	minimapCell       = color.NRGBA{R: 0x94, G: 0xA3, B: 0xB8, A: 0xff}
)

// Minimap shows the whole board in a corner; tapping it centres the camera there.
type Minimap struct {
	widget.BaseWidget
	board *Board
}

func NewMinimap(b *Board) *Minimap {
	m := &Minimap{board: b}
	m.ExtendBaseWidget(m)
	return m
}

func minimapSize() state.Point {
	return state.Point{X: geom.MinimapWidth, Y: geom.MinimapHeight}
}

func (m *Minimap) Tapped(ev *fyne.PointEvent) {
	f, _ := m.board.snapshot()
	mm := geom.NewMinimap(f.Elements, minimapSize())
	p, ok := mm.Unproject(toPoint(ev.Position))
	if !ok {
		return
	}
	m.board.session.Do(func(e *engine.Engine) {
		cam := e.Camera()
		cam.CenterOn(p, e.Viewport())
		e.SetCamera(cam)
	})
}

func (m *Minimap) MinSize() fyne.Size {
	return fyne.NewSize(geom.MinimapWidth, geom.MinimapHeight)
}

func (m *Minimap) CreateRenderer() fyne.WidgetRenderer {
	r := &minimapRenderer{m: m, bg: canvas.NewRectangle(minimapBackground)}
	r.bg.StrokeColor = color.Gray{Y: 200}
	r.bg.StrokeWidth = 1
	r.view = canvas.NewRectangle(color.Transparent)
	r.view.StrokeColor = accent
	r.view.StrokeWidth = 1
	r.Refresh()
	return r
}

type minimapRenderer struct {
	m     *Minimap
	bg    *canvas.Rectangle
	view  *canvas.Rectangle
	cells []fyne.CanvasObject
}

func place(o fyne.CanvasObject, r state.Rect) {
	o.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	o.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
}

func (r *minimapRenderer) Refresh() {
	f, _ := r.m.board.snapshot()
	mm := geom.NewMinimap(f.Elements, minimapSize())
	r.cells = nil
	if !mm.Empty {
		for _, el := range f.Elements {
			fill := minimapCell
			if c, ok := export.ParseColor(el.Fill); ok {
				fill = c
			}
			cell := canvas.NewRectangle(fill)
			place(cell, mm.Project(geom.Bounds(el)))
			r.cells = append(r.cells, cell)
		}
	}
	place(r.view, mm.Viewport(f.Camera, f.Viewport))
	canvas.Refresh(r.m)
}

func (r *minimapRenderer) Layout(size fyne.Size) { r.bg.Resize(size) }

func (r *minimapRenderer) MinSize() fyne.Size { return r.m.MinSize() }

func (r *minimapRenderer) Objects() []fyne.CanvasObject {
	objs := append([]fyne.CanvasObject{r.bg}, r.cells...)
	return append(objs, r.view)
}

func (r *minimapRenderer) Destroy() {}

var _ fyne.Tappable = (*Minimap)(nil)

// visibleFrame reports whether f has content the minimap should show.
func visibleFrame(f engine.Frame) bool { return len(f.Elements) > 0 }
