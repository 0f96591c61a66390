package tessellate

import (
	"fmt"

	"github.com/chazu/lathe/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = Lathe{}

// Lathe is the native kernel: it revolves the section outline directly
// into rings.
type Lathe struct{}

// Lathe closes the section loop, revolves it a full turn, and orients
// the triangles away from the section interior.
func (Lathe) Lathe(section []r3.Vec, steps int) (*kernel.Mesh, error) {
	if len(section) < 3 {
		return nil, fmt.Errorf("tessellate: section needs at least 3 points, got %d", len(section))
	}
	loop := append(append(make([]r3.Vec, 0, len(section)+1), section...), section[0])
	s, err := Revolve(loop, FullTurn, steps)
	if err != nil {
		return nil, fmt.Errorf("tessellate: lathe: %w", err)
	}
	m, err := s.Mesh("lathe")
	if err != nil {
		return nil, err
	}
	// Revolve faces the left of the walking direction, which is the
	// interior of a counterclockwise section.
	if signedArea(section) > 0 {
		m.FlipWinding()
	}
	return m, nil
}

// signedArea is the shoelace area of the XY polygon, positive when
// counterclockwise.
func signedArea(poly []r3.Vec) float64 {
	var sum float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}
