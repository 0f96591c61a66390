// Package offset displaces a planar profile curve along its per-point
// normals to build parallel wall curves.
package offset

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/geom"
	"github.com/chazu/lathe/pkg/intersect"
	"gonum.org/v1/gonum/spatial/r3"
)

// ResolveThreshold is the offset magnitude above which the result is run
// through self-intersection removal.
const ResolveThreshold = 0.01

// Normals returns the unit offset normal at every point: the outgoing
// direction crossed with the view axis (0, 0, -1). For a profile walked
// along +X this is +Y. End points extrapolate their missing neighbour.
func Normals(points []r3.Vec) []r3.Vec {
	n := len(points)
	out := make([]r3.Vec, n)
	if n < 2 {
		return out
	}
	for i, cur := range points {
		var next r3.Vec
		if i+1 < n {
			next = points[i+1]
		} else {
			next = r3.Add(cur, r3.Sub(cur, points[i-1]))
		}
		dir := geom.Unit(r3.Sub(next, cur))
		out[i] = geom.Unit(r3.Cross(dir, geom.View))
	}
	return out
}

// Raw moves every point by distance along its normal. The result maps 1:1
// onto the input and may contain self-intersection loops.
func Raw(points []r3.Vec, distance float64) []r3.Vec {
	normals := Normals(points)
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = r3.Add(p, r3.Scale(distance, normals[i]))
	}
	return out
}

// Curve offsets the profile by distance. Offsets larger than
// ResolveThreshold in magnitude have their self-intersection loops removed.
func Curve(points []r3.Vec, distance float64) ([]r3.Vec, error) {
	out := Raw(points, distance)
	if math.Abs(distance) <= ResolveThreshold {
		return out, nil
	}
	resolved, err := intersect.Resolve(out)
	if err != nil {
		return nil, fmt.Errorf("offset: distance %g: %w", distance, err)
	}
	return resolved, nil
}
