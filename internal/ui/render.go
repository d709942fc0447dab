package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/export"
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/realtime"
	"CanvasBoard/internal/state"
)

var (
	accent      = color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xff}
	accentFaint = color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0x80}
	handleFill  = color.White
)

const (
	handleSize      = 8
	anchorDotRadius = 4
	cursorDotRadius = 5
	caret           = "|"
)

// boardRenderer paints elements into a raster and draws selection chrome, the
// connector preview and collaborator cursors as canvas objects on top.
type boardRenderer struct {
	board   *Board
	raster  *canvas.Raster
	overlay []fyne.CanvasObject
}

func newBoardRenderer(b *Board) *boardRenderer {
	r := &boardRenderer{board: b}
	r.raster = canvas.NewRaster(r.paint)
	return r
}

func (r *boardRenderer) paint(w, h int) image.Image {
	f, _ := r.board.snapshot()
	scale := 1.0
	if sw := r.board.Size().Width; sw > 0 {
		scale = float64(w) / float64(sw)
	}
	return export.RenderPNG(scene(f, scale), w, h)
}

// scene prepares a frame for rasterizing: the element being drawn is included,
// an open text edit shows its buffer, and the camera maps onto device pixels.
func scene(f engine.Frame, scale float64) engine.Frame {
	els := make([]state.Element, 0, len(f.Elements)+1)
	for _, el := range f.Elements {
		if el.ID == f.EditingID {
			el = el.Clone()
			if l := el.Label(); l != nil {
				l.Text = f.EditingText + caret
			}
		}
		els = append(els, el)
	}
	if f.Preview != nil {
		els = append(els, *f.Preview)
	}
	f.Elements = els
	f.Camera.X *= scale
	f.Camera.Y *= scale
	f.Camera.Zoom *= scale
	return f
}

func toScreen(cam state.Camera, p state.Point) fyne.Position {
	s := cam.CanvasToScreen(p)
	return fyne.NewPos(float32(s.X), float32(s.Y))
}

func (r *boardRenderer) buildOverlay() {
	f, cursors := r.board.snapshot()
	cam := f.Camera
	var objs []fyne.CanvasObject

	for _, el := range f.Elements {
		if !f.Selected[el.ID] {
			continue
		}
		b := geom.Bounds(el)
		pad := float64(geom.SelectionPadding)
		tl := toScreen(cam, state.Point{X: b.X - pad, Y: b.Y - pad})
		br := toScreen(cam, state.Point{X: b.Right() + pad, Y: b.Bottom() + pad})
		outline := canvas.NewRectangle(color.Transparent)
		outline.StrokeColor = accent
		outline.StrokeWidth = 1
		outline.Move(tl)
		outline.Resize(fyne.NewSize(br.X-tl.X, br.Y-tl.Y))
		objs = append(objs, outline)

		if len(f.Selected) == 1 && geom.Connectable(el.Kind) {
			for _, ap := range geom.ConnectionPoints(b) {
				objs = append(objs, dot(toScreen(cam, ap.Point), anchorDotRadius, accentFaint))
			}
		}
	}

	for _, hp := range f.Handles {
		c := toScreen(cam, hp.Point)
		h := canvas.NewRectangle(handleFill)
		h.StrokeColor = accent
		h.StrokeWidth = 1
		if hp.Handle == f.Hovered {
			h.FillColor = accent
		}
		h.Move(fyne.NewPos(c.X-handleSize/2, c.Y-handleSize/2))
		h.Resize(fyne.NewSize(handleSize, handleSize))
		objs = append(objs, h)
	}

	if pc := f.PreviewConnector; pc != nil {
		pts := pc.Flatten(geom.ConnectorSamples)
		for i := 1; i < len(pts); i++ {
			l := canvas.NewLine(accent)
			l.StrokeWidth = 2
			l.Position1 = toScreen(cam, pts[i-1])
			l.Position2 = toScreen(cam, pts[i])
			objs = append(objs, l)
		}
	}

	for _, c := range cursors {
		objs = append(objs, cursorObjects(cam, c)...)
	}
	r.overlay = objs
}

func dot(c fyne.Position, radius float32, fill color.Color) fyne.CanvasObject {
	d := canvas.NewCircle(fill)
	d.Move(fyne.NewPos(c.X-radius, c.Y-radius))
	d.Resize(fyne.NewSize(2*radius, 2*radius))
	return d
}

func cursorObjects(cam state.Camera, c realtime.RemoteCursor) []fyne.CanvasObject {
	col, ok := export.ParseColor(c.Color)
	if !ok {
		col = accent
	}
	at := toScreen(cam, state.Point{X: c.X, Y: c.Y})
	name := canvas.NewText(c.Name, col)
	name.TextSize = 12
	name.TextStyle = fyne.TextStyle{Bold: true}
	name.Move(fyne.NewPos(at.X+cursorDotRadius+2, at.Y+cursorDotRadius))
	return []fyne.CanvasObject{dot(at, cursorDotRadius, col), name}
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size { return r.board.MinSize() }

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	return append([]fyne.CanvasObject{r.raster}, r.overlay...)
}

func (r *boardRenderer) Refresh() {
	r.buildOverlay()
	r.raster.Refresh()
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Destroy() {}
