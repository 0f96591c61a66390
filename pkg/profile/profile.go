// Package profile assembles composite profile curves from filleted
// corners and straight segments and samples them into ordered point
// sequences.
package profile

import (
	"fmt"

	"github.com/chazu/lathe/pkg/fillet"
	"github.com/chazu/lathe/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// RepeatTolerance is the distance under which consecutive profile points
// are treated as the same point.
const RepeatTolerance = 1e-5

// LineSegments is the number of segments used to sample a straight run
// into a terminal point.
const LineSegments = 30

// Element is one piece of a path: a filleted corner or a terminal point.
type Element struct {
	Fillet *fillet.Fillet
	Point  r3.Vec
}

// Arc wraps a fillet as a path element.
func Arc(f *fillet.Fillet) Element { return Element{Fillet: f} }

// Point makes a terminal point element.
func Point(p r3.Vec) Element { return Element{Point: p} }

// IsArc reports whether e is a filleted corner.
func (e Element) IsArc() bool { return e.Fillet != nil }

// Build samples the elements in order. Arcs contribute their lead-in line
// and arc samples. A point contributes a straight run from the previous
// last point; a leading point only seeds that run. Repeats are removed.
func Build(elements ...Element) []r3.Vec {
	var (
		out  []r3.Vec
		prev *r3.Vec
	)
	for _, e := range elements {
		if e.IsArc() {
			out = append(out, e.Fillet.Points()...)
			last := out[len(out)-1]
			prev = &last
			continue
		}
		if prev != nil {
			out = append(out, geom.LineSamples(*prev, e.Point, LineSegments)...)
		}
		p := e.Point
		prev = &p
	}
	return RemoveRepeats(out)
}

// RemoveRepeats drops every point within RepeatTolerance of the previously
// kept point. It is idempotent.
func RemoveRepeats(points []r3.Vec) []r3.Vec {
	return geom.Dedup(points, RepeatTolerance)
}

// Corner is a filleted vertex of a chained path.
type Corner struct {
	At     r3.Vec
	Radius float64
}

// Chain fillets each corner in turn. The first fillet enters from start,
// every following fillet enters from the previous fillet's outgoing
// tangent point, and the last corner exits toward end. The terminal end
// point closes the path.
func Chain(start r3.Vec, corners []Corner, end r3.Vec, opts ...fillet.Option) ([]r3.Vec, error) {
	elements := make([]Element, 0, len(corners)+2)
	elements = append(elements, Point(start))
	entry := start
	for i, c := range corners {
		exit := end
		if i+1 < len(corners) {
			exit = corners[i+1].At
		}
		f, err := fillet.New(entry, c.At, exit, c.Radius, opts...)
		if err != nil {
			return nil, fmt.Errorf("profile: corner %d: %w", i, err)
		}
		elements = append(elements, Arc(f))
		entry = f.TangentOut
	}
	elements = append(elements, Point(end))
	return Build(elements...), nil
}
