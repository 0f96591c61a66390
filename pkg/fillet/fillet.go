// Package fillet rounds the corner between two path segments with a
// circular arc of fixed radius.
package fillet

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default sample counts for the arc and the lead-in line.
const (
	DefaultArcSegments  = 30
	DefaultLineSegments = 30
)

// minTurn is the smallest interior angle distance from 0 or π accepted as
// a real corner.
const minTurn = 1e-6

// reachTolerance is how far a tangent point may overshoot its segment.
const reachTolerance = 1e-9

// DegenerateCornerError reports a corner that cannot be filleted: the
// segments are collinear, fold back on themselves, have zero length, are
// too short for the arc to touch, or the radius is not positive.
type DegenerateCornerError struct {
	Corner r3.Vec
	Radius float64
	Reason string
}

func (e *DegenerateCornerError) Error() string {
	return fmt.Sprintf("degenerate corner at (%g, %g, %g) radius %g: %s",
		e.Corner.X, e.Corner.Y, e.Corner.Z, e.Radius, e.Reason)
}

// Fillet is a circular arc tangent to segments Entry→Corner and
// Corner→Exit. All derived fields are fixed at construction.
type Fillet struct {
	Entry, Corner, Exit r3.Vec
	Radius              float64

	Center     r3.Vec
	TangentIn  r3.Vec
	TangentOut r3.Vec
	// Axis is the unit normal of the fillet plane; the arc runs
	// counterclockwise about it from TangentIn to TangentOut.
	Axis r3.Vec
	// Sweep is the arc angle, π minus the interior angle at Corner.
	Sweep float64

	ArcSegments  int
	LineSegments int
}

// Option adjusts sampling.
type Option func(*Fillet)

// WithSegments sets the arc and lead-in line sample counts.
func WithSegments(arc, line int) Option {
	return func(f *Fillet) {
		f.ArcSegments = arc
		f.LineSegments = line
	}
}

// New computes the fillet of radius r at corner b between a→b and b→c.
func New(a, b, c r3.Vec, r float64, opts ...Option) (*Fillet, error) {
	degenerate := func(reason string) error {
		return &DegenerateCornerError{Corner: b, Radius: r, Reason: reason}
	}
	if !(r > 0) {
		return nil, degenerate("radius must be positive")
	}
	if geom.Dist(a, b) == 0 || geom.Dist(b, c) == 0 {
		return nil, degenerate("zero-length segment")
	}

	ab := geom.Unit(r3.Sub(b, a))
	bc := geom.Unit(r3.Sub(c, b))
	alpha := math.Acos(geom.Clamp(r3.Dot(ab, r3.Scale(-1, bc)), -1, 1))
	if alpha < minTurn {
		return nil, degenerate("segments fold back on themselves")
	}
	if math.Pi-alpha < minTurn {
		return nil, degenerate("segments are collinear")
	}

	// Both tangent points must lie on their segments.
	reach := r / math.Tan(alpha/2)
	if reach-geom.Dist(a, b) > reachTolerance || reach-geom.Dist(b, c) > reachTolerance {
		return nil, degenerate(fmt.Sprintf("radius needs %g along each segment", reach))
	}
	f := &Fillet{
		Entry:        a,
		Corner:       b,
		Exit:         c,
		Radius:       r,
		TangentIn:    r3.Sub(b, r3.Scale(reach, ab)),
		TangentOut:   r3.Add(b, r3.Scale(reach, bc)),
		Axis:         geom.Unit(r3.Cross(ab, bc)),
		Sweep:        math.Pi - alpha,
		ArcSegments:  DefaultArcSegments,
		LineSegments: DefaultLineSegments,
	}
	f.Center = r3.Add(f.TangentIn, r3.Scale(r, geom.Unit(r3.Cross(f.Axis, ab))))
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// ArcPoints samples the arc with ArcSegments points, from TangentIn to
// TangentOut. The radial direction is renormalised after every step so
// rounding does not accumulate.
func (f *Fillet) ArcPoints() []r3.Vec {
	n := f.ArcSegments
	if n < 2 {
		n = 2
	}
	step := f.Sweep / float64(n-1)
	rot := r3.NewRotation(step, f.Axis)

	dir := geom.Unit(r3.Sub(f.TangentIn, f.Center))
	out := make([]r3.Vec, 0, n)
	out = append(out, f.TangentIn)
	for i := 1; i < n; i++ {
		dir = geom.Unit(rot.Rotate(dir))
		out = append(out, r3.Add(f.Center, r3.Scale(f.Radius, dir)))
	}
	return out
}

// Points returns the lead-in line from Entry to TangentIn sampled with
// LineSegments points, followed by the arc without repeating TangentIn.
func (f *Fillet) Points() []r3.Vec {
	n := f.LineSegments
	if n < 2 {
		n = 2
	}
	out := geom.LineSamples(f.Entry, f.TangentIn, n-1)
	return append(out, f.ArcPoints()[1:]...)
}
