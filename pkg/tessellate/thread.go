package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/fillet"
	"github.com/chazu/lathe/pkg/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Thread sweep constants.
const (
	// ThreadCornerRadius is the crest rounding radius. It shrinks when the
	// crest is too short to hold two arcs of this size.
	ThreadCornerRadius = 0.15
	// ThreadSegments is the sample count for tooth arcs and lines.
	ThreadSegments = 10
	// StepsPerRound is the angular resolution of a thread sweep.
	StepsPerRound = 30

	threadRepeatTolerance = 1e-6
)

// ThreadParams describes a trapezoidal screw thread.
type ThreadParams struct {
	CrestWidth  float64 // axial width of the tooth at its root
	Pitch       float64 // axial advance per round
	Rounds      float64 // number of turns
	Radius      float64 // root radius the tooth sits on
	FlankAngle  float64 // degrees between a flank and the axis
	CrestHeight float64 // radial tooth height
	// Internal builds a thread on the inside of a bore: the tooth points
	// toward the axis and its root sits at Radius + CrestHeight.
	Internal bool
}

// Steps returns the ring count of the sweep.
func (p ThreadParams) Steps() int {
	return int(math.Ceil(StepsPerRound * p.Rounds))
}

// flankRise is the axial run of one flank.
func (p ThreadParams) flankRise() float64 {
	return p.CrestHeight / math.Tan(geom.Radians(p.FlankAngle))
}

// Validate reports parameters that would collapse the tooth. SweepThread
// does not call it; callers that derive threads from other dimensions
// validate them up front.
func (p ThreadParams) Validate() error {
	var errs []error
	if !(p.CrestHeight > 0) {
		errs = append(errs, fmt.Errorf("crest height %g must be positive", p.CrestHeight))
	}
	if !(p.FlankAngle > 0 && p.FlankAngle < 90) {
		errs = append(errs, fmt.Errorf("flank angle %g must be in (0, 90) degrees", p.FlankAngle))
	} else if p.CrestHeight > 0 && p.CrestWidth <= 2*p.flankRise() {
		errs = append(errs, fmt.Errorf("crest width %g leaves no crest for height %g at %g degrees",
			p.CrestWidth, p.CrestHeight, p.FlankAngle))
	}
	if !(p.Rounds > 0) {
		errs = append(errs, fmt.Errorf("rounds %g must be positive", p.Rounds))
	} else if p.Steps() < 2 {
		errs = append(errs, fmt.Errorf("rounds %g give fewer than 2 sweep steps", p.Rounds))
	}
	if p.Radius < 0 {
		errs = append(errs, fmt.Errorf("radius %g must not be negative", p.Radius))
	}
	return errors.Join(errs...)
}

// Tooth returns the thread cross-section in the z = 0 half-plane and the
// apex used to cap its ends. The tooth runs root, flank, rounded crest,
// flank, root; the apex is the midpoint of its root.
func (p ThreadParams) Tooth() ([]r3.Vec, r3.Vec, error) {
	dir, shift := 1.0, p.Radius
	if p.Internal {
		dir, shift = -1, p.Radius+p.CrestHeight
	}
	h, w, rise := p.CrestHeight, p.CrestWidth, p.flankRise()
	a := r3.Vec{}
	b := r3.Vec{X: dir * h, Y: rise}
	c := r3.Vec{X: dir * h, Y: w - rise}
	d := r3.Vec{Y: w}

	radius := crestRadius(a, b, c)
	seg := fillet.WithSegments(ThreadSegments, ThreadSegments)
	fb, err := fillet.New(a, b, c, radius, seg)
	if err != nil {
		return nil, r3.Vec{}, fmt.Errorf("tessellate: thread crest: %w", err)
	}
	fc, err := fillet.New(fb.TangentOut, c, d, radius, seg)
	if err != nil {
		return nil, r3.Vec{}, fmt.Errorf("tessellate: thread crest: %w", err)
	}

	pts := geom.LineSamples(a, fb.TangentIn, ThreadSegments)
	for _, run := range [][]r3.Vec{
		fb.ArcPoints(),
		geom.LineSamples(fb.TangentOut, fc.TangentIn, ThreadSegments),
		fc.ArcPoints(),
		geom.LineSamples(fc.TangentOut, d, ThreadSegments),
	} {
		// Each run starts where the previous one ended.
		pts = append(pts, run[1:]...)
	}
	pts = geom.Dedup(pts, threadRepeatTolerance)

	offset := r3.Vec{X: shift}
	return geom.Translate(pts, offset), r3.Add(geom.Lerp(a, d, 0.5), offset), nil
}

// crestRadius returns ThreadCornerRadius, reduced if needed so the two
// crest arcs between b and c do not overlap.
func crestRadius(a, b, c r3.Vec) float64 {
	ab := geom.Unit(r3.Sub(b, a))
	bc := geom.Unit(r3.Sub(c, b))
	alpha := math.Acos(geom.Clamp(-r3.Dot(ab, bc), -1, 1))
	fit := geom.Dist(b, c) / 2 * math.Tan(alpha/2)
	return math.Min(ThreadCornerRadius, fit)
}

// SweepThread sweeps the tooth along a helix about the Y axis. Ring i is
// ring 0 turned by i·2π·Rounds/(steps-1) and raised by i·Rounds·Pitch/(steps-1),
// so the last ring sits exactly Rounds·Pitch above the first. Dividing the
// rise by steps instead would stop the thread one ring short of
// Rounds·Pitch while the turn still completes. Two apex points close the
// ends with triangle fans.
func SweepThread(p ThreadParams) (*Surface, error) {
	steps := p.Steps()
	if steps < 2 {
		return nil, &InvalidStepCountError{Steps: steps, Min: 2}
	}
	tooth, apex, err := p.Tooth()
	if err != nil {
		return nil, err
	}

	n := len(tooth)
	s := &Surface{
		Points:   make([]r3.Vec, 0, n*steps+2),
		Indices:  make([]int, 0, 6*(n-1)*steps),
		RingSize: n,
		Rings:    steps,
	}
	turn := r3.NewRotation(FullTurn*p.Rounds/float64(steps-1), geom.Up)
	lift := p.Rounds * p.Pitch / float64(steps-1)

	ring := append([]r3.Vec(nil), tooth...)
	end := apex
	s.Points = append(s.Points, ring...)
	for i := 1; i < steps; i++ {
		for j, q := range ring {
			ring[j] = turn.Rotate(q)
		}
		end = turn.Rotate(end)
		s.Points = append(s.Points, geom.Translate(ring, r3.Vec{Y: float64(i) * lift})...)
		s.Indices = appendBand(s.Indices, i-1, i, n)
	}
	end.Y += float64(steps-1) * lift

	o1 := len(s.Points)
	o2 := o1 + 1
	s.Points = append(s.Points, apex, end)
	last := (steps - 1) * n
	for j := 1; j < n; j++ {
		s.Indices = append(s.Indices, o1, j, j-1)
		s.Indices = append(s.Indices, o2, last+j-1, last+j)
	}

	s.UVs = append(gridUVs(steps, n, false), r2.Vec{Y: 0.5}, r2.Vec{X: 1, Y: 0.5})
	return s, nil
}
