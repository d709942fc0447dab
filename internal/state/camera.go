package state

const (
	MinZoom = 0.1
	MaxZoom = 5.0

	// ZoomStep is the factor the zoom buttons apply about the viewport centre.
	ZoomStep = 1.25
)

// Camera maps canvas coordinates to the screen: screen = canvas*Zoom + (X, Y).
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

func NewCamera() Camera { return Camera{Zoom: 1} }

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

func (c Camera) ScreenToCanvas(p Point) Point {
	return Point{X: (p.X - c.X) / c.Zoom, Y: (p.Y - c.Y) / c.Zoom}
}

func (c Camera) CanvasToScreen(p Point) Point {
	return Point{X: p.X*c.Zoom + c.X, Y: p.Y*c.Zoom + c.Y}
}

func (c *Camera) Pan(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

// ZoomAt scales by factor while keeping the canvas point under screen fixed.
func (c *Camera) ZoomAt(screen Point, factor float64) {
	if c.Zoom <= 0 {
		c.Zoom = 1
	}
	newZoom := clampZoom(c.Zoom * factor)
	scale := newZoom / c.Zoom
	c.X = screen.X - (screen.X-c.X)*scale
	c.Y = screen.Y - (screen.Y-c.Y)*scale
	c.Zoom = newZoom
}

func (c *Camera) ZoomIn(viewport Point) {
	c.ZoomAt(Point{X: viewport.X / 2, Y: viewport.Y / 2}, ZoomStep)
}

func (c *Camera) ZoomOut(viewport Point) {
	c.ZoomAt(Point{X: viewport.X / 2, Y: viewport.Y / 2}, 1/ZoomStep)
}

// SetZoom clamps any externally supplied zoom instead of rejecting it.
func (c *Camera) SetZoom(z float64) { c.Zoom = clampZoom(z) }

// CenterOn pans so the canvas point p sits in the middle of the viewport.
func (c *Camera) CenterOn(p, viewport Point) {
	c.X = viewport.X/2 - p.X*c.Zoom
	c.Y = viewport.Y/2 - p.Y*c.Zoom
}

func (c *Camera) Reset() { *c = NewCamera() }

// Visible returns the canvas rectangle covered by a viewport of the given size.
func (c Camera) Visible(viewport Point) Rect {
	tl := c.ScreenToCanvas(Point{})
	return Rect{X: tl.X, Y: tl.Y, Width: viewport.X / c.Zoom, Height: viewport.Y / c.Zoom}
}
