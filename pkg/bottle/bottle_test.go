package bottle_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/lathe/pkg/analysis"
	"github.com/chazu/lathe/pkg/bottle"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/offset"
	"github.com/chazu/lathe/pkg/tessellate"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func build(t *testing.T, opts ...bottle.Option) *bottle.Model {
	t.Helper()
	m, err := bottle.Build(bottle.Default(), opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

// segmentDistance is the distance from p to segment ab in the XY plane.
func segmentDistance(p, a, b r3.Vec) float64 {
	ab := r2.Vec{X: b.X - a.X, Y: b.Y - a.Y}
	ap := r2.Vec{X: p.X - a.X, Y: p.Y - a.Y}
	l2 := r2.Dot(ab, ab)
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, r2.Dot(ap, ab)/l2))
	}
	return r2.Norm(r2.Sub(ap, r2.Scale(t, ab)))
}

func polylineDistance(p r3.Vec, line []r3.Vec) float64 {
	d := math.MaxFloat64
	for i := 1; i < len(line); i++ {
		d = math.Min(d, segmentDistance(p, line[i-1], line[i]))
	}
	return d
}

func TestBodyProfileEndpoints(t *testing.T) {
	p := bottle.Default()
	pts, err := bottle.BodyProfile(p)
	if err != nil {
		t.Fatalf("BodyProfile: %v", err)
	}
	if pts[0] != (r3.Vec{}) {
		t.Errorf("first point = %v, want origin", pts[0])
	}
	want := r3.Vec{X: p.NeckRadius, Y: p.Height + p.NeckHeight}
	if last := pts[len(pts)-1]; r3.Norm(r3.Sub(last, want)) > 1e-9 {
		t.Errorf("last point = %v, want %v", last, want)
	}
	for i, q := range pts {
		if q.X < -1e-9 || q.X > p.BottomRadius+1e-9 {
			t.Errorf("point %d = %v outside [0, %v]", i, q, p.BottomRadius)
		}
	}
}

func TestCapProfileEndsOnAxis(t *testing.T) {
	pts, err := bottle.CapProfile(bottle.Default())
	if err != nil {
		t.Fatalf("CapProfile: %v", err)
	}
	if last := pts[len(pts)-1]; math.Abs(last.X) > 1e-9 {
		t.Errorf("cap profile ends at %v, want x = 0", last)
	}
}

func TestBodyShellIsClosed(t *testing.T) {
	m := build(t)
	for _, part := range m.Parts() {
		t.Run(part.Name, func(t *testing.T) {
			r := analysis.Analyze(part.Shell)
			if !r.Closed() {
				t.Errorf("shell not closed: boundary=%d nonmanifold=%d flipped=%d",
					r.BoundaryEdges, r.NonManifoldEdges, r.FlippedEdges)
			}
			if r.Volume <= 0 {
				t.Errorf("Volume = %v, want positive for an outward shell", r.Volume)
			}
		})
	}
}

func TestBodyShellVolume(t *testing.T) {
	// Material between a 30 x 120 body with a 15 x 18 neck and the cavity
	// 3 units inside it, before the corners are rounded.
	p := bottle.Default()
	m := build(t)
	r := analysis.Analyze(m.Body.Shell)
	outer := 30*30*p.Height + 15*15*p.NeckHeight
	cavity := 27*27*(p.Height-2*p.Thickness) + 12*12*(p.NeckHeight+p.Thickness)
	want := math.Pi * (outer - cavity)
	if math.Abs(r.Volume-want) > 0.05*want {
		t.Errorf("body wall volume = %v, want %v within 5%%", r.Volume, want)
	}
}

func TestInnerWallThickness(t *testing.T) {
	p := bottle.Default()
	outline, err := bottle.BodyProfile(p)
	if err != nil {
		t.Fatalf("BodyProfile: %v", err)
	}

	raw := offset.Raw(outline, p.Thickness)
	for i := range raw {
		if d := r3.Norm(r3.Sub(raw[i], outline[i])); math.Abs(d-p.Thickness) > 1e-9 {
			t.Fatalf("raw offset point %d is %v from its source, want %v", i, d, p.Thickness)
		}
	}

	m := build(t)
	for i, q := range m.Body.Inner {
		d := polylineDistance(q, m.Body.Outer)
		if d < p.Thickness-0.02 || d > p.Thickness+1e-6 {
			t.Errorf("inner point %d (%v) is %v from the outer wall, want %v", i, q, d, p.Thickness)
		}
	}
}

func TestThreadPlacement(t *testing.T) {
	p := bottle.Default()
	m := build(t)

	th, _ := bottle.BodyThread(p)
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for i := 0; i < m.Body.Thread.VertexCount(); i++ {
		y := m.Body.Thread.Vertex(i).Y
		lo, hi = math.Min(lo, y), math.Max(hi, y)
	}
	if lo < p.Height-1e-3 || hi > p.Height+p.NeckHeight+1e-3 {
		t.Errorf("body thread spans y [%v, %v], outside the neck [%v, %v]", lo, hi, p.Height, p.Height+p.NeckHeight)
	}
	if span := hi - lo; math.Abs(span-(th.Rounds*th.Pitch+th.CrestWidth)) > 1e-3 {
		t.Errorf("thread span = %v, want %v", span, th.Rounds*th.Pitch+th.CrestWidth)
	}
}

func TestCapPlacement(t *testing.T) {
	p := bottle.Default()
	m := build(t)
	r := analysis.Analyze(m.Cap.Mesh)
	base := p.Height + p.CapCorner
	if got := r.BoundingBox.Min.Y; math.Abs(got-base) > 1e-3 {
		t.Errorf("cap bottom = %v, want %v", got, base)
	}
	if got := r.BoundingBox.Max.Y; math.Abs(got-(base+p.NeckHeight+p.CapCorner)) > 1e-3 {
		t.Errorf("cap top = %v, want %v", got, base+p.NeckHeight+p.CapCorner)
	}
}

func TestRenderIndices(t *testing.T) {
	m := build(t)
	for _, part := range m.Parts() {
		if _, err := kernel.Indices16(part.Mesh); err != nil {
			t.Errorf("%s: %v", part.Name, err)
		}
		if part.Mesh.PartName != part.Name {
			t.Errorf("PartName = %q, want %q", part.Mesh.PartName, part.Name)
		}
	}
}

func TestProfilesMirror(t *testing.T) {
	m := build(t)
	outer, inner := m.Body.Profiles()
	for name, path := range map[string][]r2.Vec{"outer": outer, "inner": inner} {
		first, last := path[0], path[len(path)-1]
		if math.Abs(first.X+last.X) > 1e-9 || math.Abs(first.Y-last.Y) > 1e-9 {
			t.Errorf("%s path ends %v and %v are not mirror images", name, first, last)
		}
	}
	if len(outer) != 2*len(m.Body.Outer)-1 {
		t.Errorf("outer path has %d points, want %d", len(outer), 2*len(m.Body.Outer)-1)
	}

	capOuter, _ := m.Cap.Profiles()
	if y := capOuter[0].Y; math.Abs(y-m.Cap.Offset.Y) > 1e-9 {
		t.Errorf("cap path starts at y = %v, want %v", y, m.Cap.Offset.Y)
	}
}

func TestSectionIsLoop(t *testing.T) {
	m := build(t)
	sec := m.Body.Section()
	if len(sec) != len(m.Body.Outer)+len(m.Body.Inner) {
		t.Fatalf("section has %d points", len(sec))
	}
	if sec[len(sec)-1] != m.Body.Inner[0] {
		t.Errorf("section should end at the inner wall start")
	}
}

func TestBuildWithLatheKernel(t *testing.T) {
	m := build(t, bottle.WithKernel(tessellate.Lathe{}))
	r := analysis.Analyze(m.Body.Shell)
	if !r.Closed() {
		t.Errorf("lathe shell not closed: boundary=%d nonmanifold=%d flipped=%d",
			r.BoundaryEdges, r.NonManifoldEdges, r.FlippedEdges)
	}
	if r.Volume <= 0 {
		t.Errorf("Volume = %v, want positive", r.Volume)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*bottle.Params)
		field  string
	}{
		{"zero height", func(p *bottle.Params) { p.Height = 0 }, "height"},
		{"thick wall", func(p *bottle.Params) { p.Thickness = 20 }, "thickness"},
		{"wide neck", func(p *bottle.Params) { p.NeckRadius = 40 }, "neckRadius"},
		{"ratio out of range", func(p *bottle.Params) { p.ThreadHeightRatio = 1.5 }, "threadHeightRatio"},
		{"flat thread", func(p *bottle.Params) { p.ThreadAngle = 90 }, "threadAngle"},
		{"one step", func(p *bottle.Params) { p.Steps = 1 }, "steps"},
		{"bottom corner wider than the base", func(p *bottle.Params) { p.BottomCorner = 40 }, "bottomCorner"},
		{"shoulder corner past the neck", func(p *bottle.Params) { p.TopCorner = 16 }, "topCorner"},
		{"cap corner taller than the skirt", func(p *bottle.Params) { p.CapCorner = 30 }, "capCorner"},
		{"crossed thread flanks", func(p *bottle.Params) { p.CrestWidthRatio = 0.1 }, "crestWidthRatio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := bottle.Default()
			tt.mutate(&p)
			err := p.Validate()
			var ve bottle.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if _, err := bottle.Build(p); err == nil {
				t.Error("Build accepted invalid parameters")
			}
		})
	}
	if err := bottle.Default().Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	p := bottle.Default()
	p.Height = -1
	p.CapCorner = 0
	err := p.Validate()
	for _, field := range []string{"height", "capCorner"} {
		found := false
		for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
			var ve bottle.ValidationError
			if errors.As(e, &ve) && ve.Field == field {
				found = true
			}
		}
		if !found {
			t.Errorf("no error for %s in %v", field, err)
		}
	}
}

func TestOversizedCornerFailsBuild(t *testing.T) {
	p := bottle.Default()
	p.BottomCorner = 40
	if _, err := bottle.BodyProfile(p); err == nil {
		t.Fatal("BodyProfile accepted a corner longer than the base")
	}
	_, err := bottle.Build(p)
	var ve bottle.ValidationError
	if !errors.As(err, &ve) || ve.Field != "bottomCorner" {
		t.Fatalf("err = %v, want a bottomCorner ValidationError", err)
	}
}
