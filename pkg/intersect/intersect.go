// Package intersect removes planar self-intersection loops from open
// polylines. Only X and Y take part in the tests; Z rides along.
package intersect

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/logging"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultEps is the tolerance for crossing parameters, parallel segments,
// and squashing coincident points.
const DefaultEps = 1e-9

// DefaultIterationSlack is added to the input length to get the default
// excision limit. Every excision removes at least one point, so a
// well-formed input can never reach it.
const DefaultIterationSlack = 64

// UnresolvedIntersectionError reports that excisions did not reach a
// crossing-free polyline within the iteration limit.
type UnresolvedIntersectionError struct {
	Iterations int
	Remaining  int
}

func (e *UnresolvedIntersectionError) Error() string {
	return fmt.Sprintf("self-intersections unresolved after %d excisions (%d points remain)",
		e.Iterations, e.Remaining)
}

// Crossing is a strict interior intersection between segments I→I+1 and
// J→J+1.
type Crossing struct {
	I, J  int
	Point r3.Vec
}

// Resolver excises self-intersection loops.
type Resolver struct {
	Eps float64
	// MaxIterations caps the number of excisions. Zero means
	// len(points) + DefaultIterationSlack.
	MaxIterations int
}

// Resolve runs the default resolver.
func Resolve(points []r3.Vec) ([]r3.Vec, error) {
	return Resolver{}.Resolve(points)
}

// FirstCrossing returns the first crossing in scan order using DefaultEps.
func FirstCrossing(points []r3.Vec) (Crossing, bool) {
	return Resolver{}.FirstCrossing(points)
}

func (r Resolver) eps() float64 {
	if r.Eps > 0 {
		return r.Eps
	}
	return DefaultEps
}

// Resolve repeatedly finds the first crossing (outer index ascending, inner
// index ascending from two past it), replaces the points strictly between
// the two segments' start points and up to the second segment's start with
// the crossing point, squashes coincident neighbours, and rescans. The
// input slice is not modified.
func (r Resolver) Resolve(points []r3.Vec) ([]r3.Vec, error) {
	pts := append([]r3.Vec(nil), points...)
	if len(pts) < 4 {
		return pts, nil
	}
	limit := r.MaxIterations
	if limit <= 0 {
		limit = len(pts) + DefaultIterationSlack
	}
	eps := r.eps()

	for iter := 0; ; iter++ {
		if len(pts) < 4 {
			return pts, nil
		}
		c, ok := r.FirstCrossing(pts)
		if !ok {
			if iter > 0 {
				logging.Logger().Debug("intersect: loops removed", "excisions", iter, "points", len(pts))
			}
			return pts, nil
		}
		if iter >= limit {
			return nil, &UnresolvedIntersectionError{Iterations: iter, Remaining: len(pts)}
		}
		next := make([]r3.Vec, 0, len(pts)-(c.J-c.I)+1)
		next = append(next, pts[:c.I+1]...)
		next = append(next, c.Point)
		next = append(next, pts[c.J+1:]...)
		pts = squash(next, eps)
	}
}

// FirstCrossing scans segment pairs (i, j) with j >= i+2 and j+1 < len,
// returning the first strict interior crossing. The crossing point takes
// its Z from points[i].
func (r Resolver) FirstCrossing(points []r3.Vec) (Crossing, bool) {
	eps := r.eps()
	n := len(points)
	for i := 0; i+1 < n; i++ {
		a, b := flat(points[i]), flat(points[i+1])
		for j := i + 2; j+1 < n; j++ {
			c, d := flat(points[j]), flat(points[j+1])
			if p, ok := segmentCrossing(a, b, c, d, eps); ok {
				return Crossing{I: i, J: j, Point: r3.Vec{X: p.X, Y: p.Y, Z: points[i].Z}}, true
			}
		}
	}
	return Crossing{}, false
}

func flat(p r3.Vec) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// segmentCrossing intersects a→b with c→d, accepting only parameters
// strictly inside (eps, 1-eps) on both. Near-parallel pairs are rejected.
func segmentCrossing(a, b, c, d r2.Vec, eps float64) (r2.Vec, bool) {
	rv := r2.Sub(b, a)
	sv := r2.Sub(d, c)
	denom := r2.Cross(rv, sv)
	if math.Abs(denom) < eps {
		return r2.Vec{}, false
	}
	ca := r2.Sub(c, a)
	t := r2.Cross(ca, sv) / denom
	u := r2.Cross(ca, rv) / denom
	if t <= eps || t >= 1-eps || u <= eps || u >= 1-eps {
		return r2.Vec{}, false
	}
	return r2.Add(a, r2.Scale(t, rv)), true
}

// squash drops points within eps of the previously kept point.
func squash(points []r3.Vec, eps float64) []r3.Vec {
	out := points[:1]
	for _, p := range points[1:] {
		last := out[len(out)-1]
		if math.Hypot(p.X-last.X, p.Y-last.Y) > eps {
			out = append(out, p)
		}
	}
	return out
}
