package export

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

type ggSurface struct {
	dc    *gg.Context
	zoom  float64
	faces map[float64]font.Face
}

func (g *ggSurface) finish(p paint) {
	if p.hasFill {
		g.dc.SetColor(p.fill)
		g.dc.FillPreserve()
	}
	if p.hasStroke {
		g.dc.SetColor(p.stroke)
		g.dc.SetLineWidth(p.width * g.zoom)
		g.dc.StrokePreserve()
	}
	g.dc.ClearPath()
}

func (g *ggSurface) path(pts []state.Point, closed bool, p paint) {
	if len(pts) < 2 {
		return
	}
	g.dc.NewSubPath()
	g.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		g.dc.LineTo(pt.X, pt.Y)
	}
	if closed {
		g.dc.ClosePath()
	}
	g.finish(p)
}

func (g *ggSurface) ellipse(r state.Rect, p paint) {
	c := geom.Center(r)
	g.dc.DrawEllipse(c.X, c.Y, r.Width/2, r.Height/2)
	g.finish(p)
}

// text scales the face rather than the glyphs; gg transforms only the anchor.
func (g *ggSurface) text(s string, x, baseline, size float64, c color.NRGBA) {
	px := math.Round(size*g.zoom*2) / 2
	if px < 1 {
		return
	}
	f, ok := g.faces[px]
	if !ok {
		f = geom.NewFace(px)
		g.faces[px] = f
	}
	g.dc.SetFontFace(f)
	g.dc.SetColor(c)
	g.dc.DrawString(s, x, baseline)
}

// RenderPNG rasterizes the frame as seen through its camera into a w×h image.
func RenderPNG(f engine.Frame, w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.Translate(f.Camera.X, f.Camera.Y)
	dc.Scale(f.Camera.Zoom, f.Camera.Zoom)
	drawFrame(&ggSurface{dc: dc, zoom: f.Camera.Zoom, faces: map[float64]font.Face{}}, f)
	return dc.Image()
}

// PNG writes all content of the frame at 100% zoom, whatever the camera shows.
func PNG(path string, f engine.Frame) error {
	r, err := fit(f)
	if err != nil {
		return err
	}
	f.Camera = state.Camera{X: -r.X, Y: -r.Y, Zoom: 1}
	img := RenderPNG(f, int(math.Ceil(r.Width)), int(math.Ceil(r.Height)))
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
