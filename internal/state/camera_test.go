package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	anchors := []Point{{0, 0}, {400, 300}, {-120, 75.5}, {1024, 768}}
	factors := []float64{2, 0.5, 1.1, 0.9, 7, 0.01}
	for _, a := range anchors {
		for _, f := range factors {
			c := Camera{X: 37, Y: -12, Zoom: 1.3}
			before := c.ScreenToCanvas(a)
			c.ZoomAt(a, f)
			after := c.ScreenToCanvas(a)
			assert.InDelta(t, before.X, after.X, eps, "anchor %v factor %v", a, f)
			assert.InDelta(t, before.Y, after.Y, eps, "anchor %v factor %v", a, f)
		}
	}
}

func TestZoomAboutOriginIsNotAnchored(t *testing.T) {
	c := Camera{X: 100, Y: 100, Zoom: 1}
	anchor := Point{400, 300}
	before := c.ScreenToCanvas(anchor)

	naive := c
	naive.Zoom *= 2
	assert.NotEqual(t, before, naive.ScreenToCanvas(anchor))

	c.ZoomAt(anchor, 2)
	assert.InDelta(t, before.X, c.ScreenToCanvas(anchor).X, eps)
}

func TestZoomInThenOutReturnsToStart(t *testing.T) {
	start := Camera{X: 15, Y: -40, Zoom: 1}
	c := start
	c.ZoomAt(Point{400, 300}, 2)
	c.ZoomAt(Point{400, 300}, 0.5)
	assert.InDelta(t, start.X, c.X, eps)
	assert.InDelta(t, start.Y, c.Y, eps)
	assert.InDelta(t, start.Zoom, c.Zoom, eps)
}

func TestZoomIsClamped(t *testing.T) {
	c := NewCamera()
	c.ZoomAt(Point{10, 10}, 1000)
	assert.Equal(t, MaxZoom, c.Zoom)
	c.ZoomAt(Point{10, 10}, 1e-6)
	assert.Equal(t, MinZoom, c.Zoom)
	c.SetZoom(42)
	assert.Equal(t, MaxZoom, c.Zoom)
}

func TestCameraConversionsRoundTrip(t *testing.T) {
	c := Camera{X: 12, Y: 34, Zoom: 2.5}
	p := Point{X: -7, Y: 91}
	back := c.ScreenToCanvas(c.CanvasToScreen(p))
	assert.InDelta(t, p.X, back.X, eps)
	assert.InDelta(t, p.Y, back.Y, eps)
}

func TestZoomButtonsAndReset(t *testing.T) {
	c := NewCamera()
	vp := Point{800, 600}
	centre := c.ScreenToCanvas(Point{400, 300})
	c.ZoomIn(vp)
	assert.InDelta(t, 1.25, c.Zoom, eps)
	assert.InDelta(t, centre.X, c.ScreenToCanvas(Point{400, 300}).X, eps)
	c.ZoomOut(vp)
	assert.InDelta(t, 1.0, c.Zoom, eps)

	c.Pan(10, 20)
	c.CenterOn(Point{100, 100}, vp)
	centred := c.CanvasToScreen(Point{100, 100})
	assert.InDelta(t, 400, centred.X, eps)
	assert.InDelta(t, 300, centred.Y, eps)

	c.Reset()
	assert.Equal(t, NewCamera(), c)
}
