package geom

import (
	"math"

	"honnef.co/go/curve"

	"CanvasBoard/internal/state"
)

const (
	minControlOffset = 30
	maxControlOffset = 160
	// ConnectorSamples is the number of segments a connector is flattened into
	// for drawing and hit testing.
	ConnectorSamples = 32
	// ConnectorHitDistance is the eraser tolerance around a connector curve.
	ConnectorHitDistance = 8
	// nearestAccuracy bounds the error of curve distance queries, in canvas units.
	nearestAccuracy = 1e-3
)

// CubicBez is a connector curve in canvas coordinates. The math is done by
// curve.CubicBez.
type CubicBez struct {
	P0, P1, P2, P3 state.Point
}

func toCurve(p state.Point) curve.Point   { return curve.Pt(p.X, p.Y) }
func fromCurve(p curve.Point) state.Point { return state.Point{X: p.X, Y: p.Y} }

func (c CubicBez) bez() curve.CubicBez {
	return curve.CubicBez{P0: toCurve(c.P0), P1: toCurve(c.P1), P2: toCurve(c.P2), P3: toCurve(c.P3)}
}

// Normal is the outward unit direction of an anchor.
func Normal(a state.Anchor) (dx, dy float64) {
	switch a {
	case state.AnchorTop:
		return 0, -1
	case state.AnchorRight:
		return 1, 0
	case state.AnchorBottom:
		return 0, 1
	case state.AnchorLeft:
		return -1, 0
	}
	return 0, 0
}

func controlOffset(a, b state.Point) float64 {
	d := math.Hypot(b.X-a.X, b.Y-a.Y) / 2
	return math.Max(minControlOffset, math.Min(maxControlOffset, d))
}

// Connector routes a curve between the anchor src on from and the anchor dst on to.
// Each control point leaves its end along the anchor's outward normal.
func Connector(from state.Rect, src state.Anchor, to state.Rect, dst state.Anchor) CubicBez {
	a := AnchorOf(from, src)
	b := AnchorOf(to, dst)
	off := controlOffset(a, b)
	sx, sy := Normal(src)
	dx, dy := Normal(dst)
	return CubicBez{
		P0: a,
		P1: a.Add(sx*off, sy*off),
		P2: b.Add(dx*off, dy*off),
		P3: b,
	}
}

// Preview routes a curve from an anchor to a free point, used while a connect
// gesture has not snapped to a target yet.
func Preview(from state.Rect, src state.Anchor, end state.Point) CubicBez {
	a := AnchorOf(from, src)
	off := controlOffset(a, end)
	sx, sy := Normal(src)
	return CubicBez{P0: a, P1: a.Add(sx*off, sy*off), P2: end, P3: end}
}

func (c CubicBez) Eval(t float64) state.Point {
	return fromCurve(c.bez().Eval(t))
}

// Flatten samples n+1 evenly spaced points along the curve, endpoints included.
func (c CubicBez) Flatten(n int) []state.Point {
	if n < 1 {
		n = 1
	}
	b := c.bez()
	pts := make([]state.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, fromCurve(b.Eval(float64(i)/float64(n))))
	}
	return pts
}

// Distance is the distance from p to the nearest point of the curve.
func (c CubicBez) Distance(p state.Point) float64 {
	if c.P0 == c.P1 && c.P1 == c.P2 && c.P2 == c.P3 {
		return DistToSegment(p, c.P0, c.P3)
	}
	distSq, _ := c.bez().Nearest(toCurve(p), nearestAccuracy)
	return math.Sqrt(distSq)
}

// EndAngle is the direction of travel at the end of the curve, for drawing an arrow head.
func (c CubicBez) EndAngle() float64 {
	from := c.P2
	if from == c.P3 {
		from = c.Eval(0.95)
	}
	return math.Atan2(c.P3.Y-from.Y, c.P3.X-from.X)
}

// ArrowHead returns the two wing points of an arrow head of length size ending at tip.
func ArrowHead(tip state.Point, angle, size float64) (state.Point, state.Point) {
	const spread = math.Pi / 6
	return state.Point{X: tip.X - size*math.Cos(angle-spread), Y: tip.Y - size*math.Sin(angle-spread)},
		state.Point{X: tip.X - size*math.Cos(angle+spread), Y: tip.Y - size*math.Sin(angle+spread)}
}

// ArrowHeadSize is the length of arrow heads on arrows and connectors.
const ArrowHeadSize = 14
