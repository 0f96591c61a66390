// Package bottle builds a screw-top bottle and its cap from a flat
// parameter record. Each part is a filleted half profile offset into a
// wall, revolved into a closed shell, and merged with a swept thread.
package bottle

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/chazu/lathe/pkg/fillet"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/chazu/lathe/pkg/offset"
	"github.com/chazu/lathe/pkg/profile"
	"github.com/chazu/lathe/pkg/tessellate"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// axisTolerance is how close to the axis a curve end must be to be
// treated as lying on it.
const axisTolerance = 1e-9

// Part is one generated solid.
type Part struct {
	Name string
	// Outer and Inner are the wall curves in the part's own frame.
	Outer []r3.Vec
	Inner []r3.Vec
	// Offset places the part in the assembly.
	Offset r3.Vec
	Shell  *kernel.Mesh
	Thread *kernel.Mesh
	// Mesh is Shell and Thread merged and moved by Offset.
	Mesh *kernel.Mesh
}

// Section returns the closed half-plane section of the wall: the outer
// curve followed by the inner curve reversed.
func (p *Part) Section() []r3.Vec {
	return append(append(make([]r3.Vec, 0, len(p.Outer)+len(p.Inner)), p.Outer...), lo.Reverse(append([]r3.Vec(nil), p.Inner...))...)
}

// Profiles returns the outer and inner curves mirrored across the axis
// into full-width paths, placed by Offset.
func (p *Part) Profiles() (outer, inner []r2.Vec) {
	return mirror(p.Outer, p.Offset), mirror(p.Inner, p.Offset)
}

// mirror turns a half curve with one end on the axis into a continuous
// path: the right half walked toward the axis, then its reflection walked
// away from it.
func mirror(half []r3.Vec, d r3.Vec) []r2.Vec {
	if len(half) == 0 {
		return nil
	}
	// outward starts at the axis end.
	outward := lo.Map(half, func(p r3.Vec, _ int) r2.Vec { return r2.Vec{X: p.X + d.X, Y: p.Y + d.Y} })
	if half[0].X > half[len(half)-1].X {
		outward = lo.Reverse(outward)
	}
	left := lo.Map(outward, func(p r2.Vec, _ int) r2.Vec { return r2.Vec{X: 2*d.X - p.X, Y: p.Y} })
	if math.Abs(outward[0].X-d.X) < axisTolerance {
		left = left[1:]
	}
	path := make([]r2.Vec, 0, len(outward)+len(left))
	for i := len(outward) - 1; i >= 0; i-- {
		path = append(path, outward[i])
	}
	return append(path, left...)
}

// Model is a generated bottle.
type Model struct {
	Params Params
	Body   *Part
	Cap    *Part
}

// Parts returns the parts in assembly order.
func (m *Model) Parts() []*Part {
	return []*Part{m.Body, m.Cap}
}

// Option configures Build.
type Option func(*builder)

// WithKernel revolves wall sections with k instead of the ring shell.
// Threads are always swept natively.
func WithKernel(k kernel.Kernel) Option {
	return func(b *builder) { b.kernel = k }
}

type builder struct {
	params Params
	kernel kernel.Kernel
}

// BodyProfile returns the outer half profile of the body: from the
// centre of the base out to the bottom corner, up to the shoulder, in to
// the neck, and up to the mouth.
func BodyProfile(p Params) ([]r3.Vec, error) {
	o := r3.Vec{}
	a := r3.Vec{X: p.BottomRadius}
	b := r3.Vec{X: p.TopRadius, Y: p.Height}
	c := r3.Vec{X: p.NeckRadius, Y: p.Height}
	d := r3.Vec{X: p.NeckRadius, Y: p.Height + p.NeckHeight}
	pts, err := profile.Chain(o, []profile.Corner{
		{At: a, Radius: p.BottomCorner},
		{At: b, Radius: p.TopCorner},
		{At: c, Radius: p.Thickness},
	}, d)
	if err != nil {
		return nil, fmt.Errorf("bottle: body profile: %w", err)
	}
	return pts, nil
}

// CapProfile returns the outer half profile of the cap: up the skirt,
// round the top corner, and in to the axis.
func CapProfile(p Params) ([]r3.Vec, error) {
	r := p.capRadius()
	top := p.NeckHeight + p.CapCorner
	pts, err := profile.Chain(r3.Vec{X: r}, []profile.Corner{
		{At: r3.Vec{X: r, Y: top}, Radius: p.CapCorner},
	}, r3.Vec{Y: top})
	if err != nil {
		return nil, fmt.Errorf("bottle: cap profile: %w", err)
	}
	return pts, nil
}

// checkShape reports corner radii that do not fit their profile edges and
// thread teeth whose flanks cross. It assumes the scalar checks passed.
func (p Params) checkShape() []error {
	var errs []error
	corners := map[r3.Vec]ValidationError{
		{X: p.BottomRadius}:                               {Field: "bottomCorner", Value: p.BottomCorner},
		{X: p.TopRadius, Y: p.Height}:                     {Field: "topCorner", Value: p.TopCorner},
		{X: p.NeckRadius, Y: p.Height}:                    {Field: "thickness", Value: p.Thickness},
		{X: p.capRadius(), Y: p.NeckHeight + p.CapCorner}: {Field: "capCorner", Value: p.CapCorner},
	}
	corner := func(err error) {
		var dce *fillet.DegenerateCornerError
		if errors.As(err, &dce) {
			if ve, ok := corners[dce.Corner]; ok {
				ve.Message = "corner radius does not fit: " + dce.Reason
				errs = append(errs, ve)
				return
			}
		}
		errs = append(errs, err)
	}
	if _, err := BodyProfile(p); err != nil {
		corner(err)
	}
	if _, err := CapProfile(p); err != nil {
		corner(err)
	}

	body, _ := BodyThread(p)
	if err := body.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "crestWidthRatio", Value: p.CrestWidthRatio,
			Message: fmt.Sprintf("thread tooth is malformed: %v", err)})
	}
	return errs
}

// BodyThread returns the external thread on the neck, in the body frame.
func BodyThread(p Params) (tessellate.ThreadParams, r3.Vec) {
	t := tessellate.ThreadParams{
		CrestWidth:  p.crestWidth(),
		Pitch:       p.NeckHeight * p.ThreadHeightRatio / p.ThreadRounds,
		Rounds:      p.ThreadRounds,
		Radius:      p.NeckRadius,
		FlankAngle:  p.ThreadAngle,
		CrestHeight: p.crestHeight(),
	}
	return t, r3.Vec{Y: (1-p.ThreadHeightRatio)*0.5*p.NeckHeight + p.Height}
}

// CapThread returns the internal thread in the cap bore, in the cap
// frame.
func CapThread(p Params) (tessellate.ThreadParams, r3.Vec) {
	depth := p.capDepth()
	t := tessellate.ThreadParams{
		CrestWidth:  p.crestWidth(),
		Pitch:       depth * p.ThreadHeightRatio / p.ThreadRounds,
		Rounds:      p.ThreadRounds,
		Radius:      p.NeckRadius,
		FlankAngle:  p.ThreadAngle,
		CrestHeight: p.crestHeight(),
		Internal:    true,
	}
	return t, r3.Vec{Y: (1 - p.ThreadHeightRatio) * 0.5 * depth}
}

// Build validates p and generates the body and cap. The two parts share
// nothing and are built concurrently.
func Build(p Params, opts ...Option) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("bottle: invalid parameters: %w", err)
	}
	b := &builder{params: p}
	for _, opt := range opts {
		opt(b)
	}

	var (
		wg              sync.WaitGroup
		body, cp        *Part
		bodyErr, capErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		body, bodyErr = b.body()
	}()
	go func() {
		defer wg.Done()
		cp, capErr = b.cap()
	}()
	wg.Wait()

	if bodyErr != nil {
		return nil, bodyErr
	}
	if capErr != nil {
		return nil, capErr
	}
	return &Model{Params: p, Body: body, Cap: cp}, nil
}

func (b *builder) body() (*Part, error) {
	p := b.params
	outline, err := BodyProfile(p)
	if err != nil {
		return nil, err
	}
	thread, at := BodyThread(p)
	return b.part("body", outline, p.Thickness, false, thread, at, r3.Vec{})
}

func (b *builder) cap() (*Part, error) {
	p := b.params
	outline, err := CapProfile(p)
	if err != nil {
		return nil, err
	}
	thread, at := CapThread(p)
	return b.part("cap", outline, p.CapThickness, true, thread, at, r3.Vec{Y: p.Height + p.CapCorner})
}

// part offsets outline into a wall of the given thickness, revolves it,
// and merges in the thread placed at threadAt. The finished mesh is moved
// by place.
func (b *builder) part(name string, outline []r3.Vec, thickness float64, rimAtStart bool,
	thread tessellate.ThreadParams, threadAt, place r3.Vec) (*Part, error) {
	log := logging.Logger().With("part", name)

	outer, err := offset.Curve(outline, 0)
	if err != nil {
		return nil, fmt.Errorf("bottle: %s outer wall: %w", name, err)
	}
	inner, err := offset.Curve(outline, thickness)
	if err != nil {
		return nil, fmt.Errorf("bottle: %s inner wall: %w", name, err)
	}
	log.Debug("wall curves", "outer", len(outer), "inner", len(inner))

	part := &Part{Name: name, Outer: outer, Inner: inner, Offset: place}
	if b.kernel != nil {
		part.Shell, err = b.kernel.Lathe(part.Section(), b.params.Steps)
	} else {
		part.Shell, err = shell(name, outer, inner, b.params.Steps, rimAtStart)
	}
	if err != nil {
		return nil, fmt.Errorf("bottle: %s shell: %w", name, err)
	}
	part.Shell.PartName = name

	sweep, err := tessellate.SweepThread(thread)
	if err != nil {
		return nil, fmt.Errorf("bottle: %s thread: %w", name, err)
	}
	part.Thread, err = sweep.Mesh(name + "-thread")
	if err != nil {
		return nil, err
	}
	part.Thread.Translate(threadAt)
	log.Debug("thread", "rings", sweep.Rings, "ring_size", sweep.RingSize, "triangles", sweep.TriangleCount())

	part.Mesh, err = kernel.Merge(part.Shell, part.Thread)
	if err != nil {
		return nil, fmt.Errorf("bottle: %s merge: %w", name, err)
	}
	part.Mesh.Translate(place)
	log.Debug("part built", "vertices", part.Mesh.VertexCount(), "triangles", part.Mesh.TriangleCount())
	return part, nil
}

// shell revolves both wall curves a full turn and joins them with a rim.
func shell(name string, outer, inner []r3.Vec, steps int, rimAtStart bool) (*kernel.Mesh, error) {
	so, err := tessellate.Revolve(outer, tessellate.FullTurn, steps)
	if err != nil {
		return nil, err
	}
	si, err := tessellate.Revolve(inner, tessellate.FullTurn, steps)
	if err != nil {
		return nil, err
	}
	s, err := tessellate.Shell(so, si, rimAtStart)
	if err != nil {
		return nil, err
	}
	return s.Mesh(name)
}
