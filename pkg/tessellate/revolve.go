package tessellate

import (
	"math"

	"github.com/chazu/lathe/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// FullTurn is the revolution angle that produces a closed surface.
const FullTurn = 2 * math.Pi

// fullTurnTolerance is how close a requested angle must be to FullTurn to
// count as a closed revolution.
const fullTurnTolerance = 1e-9

// IsFullTurn reports whether angle requests a closed revolution.
func IsFullTurn(angle float64) bool {
	return math.Abs(angle-FullTurn) <= fullTurnTolerance
}

// Revolve sweeps profile about the Y axis into steps rings. Ring 0 is the
// profile itself and every later ring is the previous one turned by a
// fixed step. An open revolution steps by totalAngle/(steps-1) so the last
// ring lies at totalAngle. A full turn steps by 2π/steps and stitches the
// last ring back to ring 0, so no ring repeats ring 0. Stepping a full
// turn by 2π/(steps-1) instead would land the last ring on ring 0 and
// leave a zero-width band at the seam.
func Revolve(profile []r3.Vec, totalAngle float64, steps int) (*Surface, error) {
	if steps < 2 {
		return nil, &InvalidStepCountError{Steps: steps, Min: 2}
	}
	closed := IsFullTurn(totalAngle)
	step := totalAngle / float64(steps-1)
	if closed {
		step = FullTurn / float64(steps)
	}

	n := len(profile)
	s := &Surface{
		Points:   make([]r3.Vec, 0, n*steps),
		Indices:  make([]int, 0, 6*max(n-1, 0)*steps),
		RingSize: n,
		Rings:    steps,
		Closed:   closed,
	}
	rot := r3.NewRotation(step, geom.Up)
	ring := append([]r3.Vec(nil), profile...)
	s.Points = append(s.Points, ring...)
	for i := 1; i < steps; i++ {
		for j, p := range ring {
			ring[j] = rot.Rotate(p)
		}
		s.Points = append(s.Points, ring...)
		s.Indices = appendBand(s.Indices, i-1, i, n)
	}
	if closed {
		s.Indices = appendBand(s.Indices, steps-1, 0, n)
	}
	s.UVs = gridUVs(steps, n, closed)
	return s, nil
}
