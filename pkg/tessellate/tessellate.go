// Package tessellate turns profile curves into indexed triangle surfaces:
// revolutions about the Y axis, helical thread sweeps, and the rim bands
// that join an outer and inner revolution into one shell.
package tessellate

import (
	"fmt"

	"github.com/chazu/lathe/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// InvalidStepCountError reports a sweep with too few rings.
type InvalidStepCountError struct {
	Steps int
	Min   int
}

func (e *InvalidStepCountError) Error() string {
	return fmt.Sprintf("step count %d is below the minimum of %d", e.Steps, e.Min)
}

// Surface is a ring-structured triangle surface. Points holds Rings rings
// of RingSize points each, ring after ring; anything past
// Rings*RingSize is an extra point such as a cap apex. Indices holds
// triangle triples into Points.
type Surface struct {
	Points   []r3.Vec
	UVs      []r2.Vec
	Indices  []int
	RingSize int
	Rings    int
	// Closed is set when the last ring is stitched back to ring 0.
	Closed bool
}

// Ring returns ring i.
func (s *Surface) Ring(i int) []r3.Vec {
	return s.Points[i*s.RingSize : (i+1)*s.RingSize]
}

// TriangleCount returns the number of triangles.
func (s *Surface) TriangleCount() int {
	return len(s.Indices) / 3
}

// Mesh converts the surface into a render mesh with computed normals.
func (s *Surface) Mesh(name string) (*kernel.Mesh, error) {
	m, err := kernel.FromPoints(name, s.Points, s.Indices)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %s: %w", name, err)
	}
	if len(s.UVs) == len(s.Points) {
		m.UVs = make([]float32, 0, 2*len(s.UVs))
		for _, uv := range s.UVs {
			m.UVs = append(m.UVs, float32(uv.X), float32(uv.Y))
		}
	}
	return m, nil
}

// appendBand stitches ring a to ring b with two triangles per quad:
// (lt, lb, rb) and (lt, rb, rt), where l is ring a, r is ring b, t is
// profile index j-1 and b is j.
func appendBand(idx []int, a, b, n int) []int {
	for j := 1; j < n; j++ {
		lt, lb := a*n+j-1, a*n+j
		rt, rb := b*n+j-1, b*n+j
		idx = append(idx, lt, lb, rb, lt, rb, rt)
	}
	return idx
}

// gridUVs maps ring i, profile index j to (u, v) in [0, 1].
func gridUVs(rings, n int, closed bool) []r2.Vec {
	uvs := make([]r2.Vec, 0, rings*n)
	uDen := float64(rings - 1)
	if closed {
		uDen = float64(rings)
	}
	vDen := float64(n - 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < n; j++ {
			var u, v float64
			if uDen > 0 {
				u = float64(i) / uDen
			}
			if vDen > 0 {
				v = float64(j) / vDen
			}
			uvs = append(uvs, r2.Vec{X: u, Y: v})
		}
	}
	return uvs
}

// Shell joins the revolutions of an outer profile and its inward offset
// into one surface. The outer triangles are flipped so the shell faces
// away from the wall material, and a rim band joins the two profiles'
// last points, or their first points when rimAtStart is set. Both
// surfaces must have the same ring count and closure.
func Shell(outer, inner *Surface, rimAtStart bool) (*Surface, error) {
	if outer.Rings != inner.Rings || outer.Closed != inner.Closed {
		return nil, fmt.Errorf("tessellate: shell needs matching revolutions, got %d/%v and %d/%v rings",
			outer.Rings, outer.Closed, inner.Rings, inner.Closed)
	}
	if outer.RingSize == 0 || inner.RingSize == 0 {
		return nil, fmt.Errorf("tessellate: shell needs non-empty profiles")
	}

	base := len(outer.Points)
	s := &Surface{
		Points:   append(append(make([]r3.Vec, 0, base+len(inner.Points)), outer.Points...), inner.Points...),
		RingSize: outer.RingSize,
		Rings:    outer.Rings,
		Closed:   outer.Closed,
	}
	if len(outer.UVs) == len(outer.Points) && len(inner.UVs) == len(inner.Points) {
		s.UVs = append(append(make([]r2.Vec, 0, len(s.Points)), outer.UVs...), inner.UVs...)
	}

	s.Indices = make([]int, 0, len(outer.Indices)+len(inner.Indices)+6*s.Rings)
	for t := 0; t+2 < len(outer.Indices); t += 3 {
		s.Indices = append(s.Indices, outer.Indices[t], outer.Indices[t+2], outer.Indices[t+1])
	}
	for _, idx := range inner.Indices {
		s.Indices = append(s.Indices, idx+base)
	}

	no, ni := outer.RingSize, inner.RingSize
	bands := s.Rings - 1
	if s.Closed {
		bands = s.Rings
	}
	for i := 0; i < bands; i++ {
		next := (i + 1) % s.Rings
		if rimAtStart {
			lt, lb := base+i*ni, i*no
			rt, rb := base+next*ni, next*no
			s.Indices = append(s.Indices, lt, rb, lb, lt, rt, rb)
			continue
		}
		lt, lb := base+i*ni+ni-1, i*no+no-1
		rt, rb := base+next*ni+ni-1, next*no+no-1
		s.Indices = append(s.Indices, lt, lb, rb, lt, rb, rt)
	}
	return s, nil
}
