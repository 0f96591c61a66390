// Package geom holds the small set of vector helpers shared by the lathe
// kernel. Points are gonum r3.Vec values; profiles live in the z = 0
// half-plane with x as radius and y as height, and every solid is built
// around the vertical Y axis.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// Up is the revolution axis.
	Up = r3.Vec{Y: 1}
	// View is the axis profiles are viewed along when computing offset normals.
	View = r3.Vec{Z: -1}
)

// Unit returns v scaled to unit length. The zero vector is returned unchanged.
func Unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return v
	}
	return r3.Scale(1/n, v)
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Lerp interpolates between a and b.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Translate shifts every point by d and returns a new slice.
func Translate(points []r3.Vec, d r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = r3.Add(p, d)
	}
	return out
}

// LineSamples returns segments+1 evenly spaced points from a to b inclusive.
func LineSamples(a, b r3.Vec, segments int) []r3.Vec {
	if segments < 1 {
		return []r3.Vec{a, b}
	}
	out := make([]r3.Vec, 0, segments+1)
	for i := 0; i < segments; i++ {
		out = append(out, Lerp(a, b, float64(i)/float64(segments)))
	}
	return append(out, b)
}

// Dedup drops every point within tol of the previously kept point. The
// first point is always kept, so non-empty input gives non-empty output.
func Dedup(points []r3.Vec, tol float64) []r3.Vec {
	if len(points) == 0 {
		return nil
	}
	out := make([]r3.Vec, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if Dist(p, out[len(out)-1]) > tol {
			out = append(out, p)
		}
	}
	return out
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
