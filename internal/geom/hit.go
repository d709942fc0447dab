package geom

import (
	"math"

	"honnef.co/go/curve"

	"CanvasBoard/internal/state"
)

// DistToSegment is the distance from p to the segment a-b.
func DistToSegment(p, a, b state.Point) float64 {
	distSq, _ := curve.Line{P0: toCurve(a), P1: toCurve(b)}.Nearest(toCurve(p), nearestAccuracy)
	return math.Sqrt(distSq)
}

// StrokeHitDistance is the hit tolerance of pen and arrow elements.
func StrokeHitDistance(strokeWidth float64) float64 {
	return math.Max(strokeWidth*2, MinStrokeHit)
}

// HitTest reports whether the canvas point p lies on el.
func HitTest(p state.Point, el state.Element) bool {
	switch el.Kind {
	case state.KindPen:
		path := el.Path()
		if path == nil || len(path.Points) == 0 {
			return false
		}
		hit := StrokeHitDistance(el.StrokeWidth)
		if len(path.Points) == 1 {
			return DistToSegment(p, path.Points[0], path.Points[0]) < hit
		}
		for i := 1; i < len(path.Points); i++ {
			if DistToSegment(p, path.Points[i-1], path.Points[i]) < hit {
				return true
			}
		}
		return false
	case state.KindArrow:
		return DistToSegment(p, state.Point{X: el.X, Y: el.Y}, el.End()) < StrokeHitDistance(el.StrokeWidth)
	case state.KindText:
		return inside(p, Bounds(el), TextHitPadding)
	default:
		return inside(p, Bounds(el), ShapeHitPadding)
	}
}

func inside(p state.Point, r state.Rect, pad float64) bool {
	return p.X >= r.X-pad && p.X <= r.Right()+pad &&
		p.Y >= r.Y-pad && p.Y <= r.Bottom()+pad
}

// Contains reports whether p lies inside r without padding.
func Contains(r state.Rect, p state.Point) bool { return inside(p, r, 0) }
