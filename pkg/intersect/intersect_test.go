package intersect

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func xy(coords ...float64) []r3.Vec {
	pts := make([]r3.Vec, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, r3.Vec{X: coords[i], Y: coords[i+1]})
	}
	return pts
}

func equalPoints(t *testing.T, got, want []r3.Vec) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d\ngot  %v\nwant %v", len(got), len(want), got, want)
	}
	for i := range want {
		if d := r3.Norm(r3.Sub(got[i], want[i])); d > 1e-9 {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}

// twoLoops has a loop near the origin and a second one near x = 12.
var twoLoops = xy(0, 0, 4, 0, 4, 2, 2, 2, 2, -2, 10, -2, 14, -2, 14, 0, 12, 0, 12, -4, 12, -6)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   []r3.Vec
		want []r3.Vec
	}{
		{
			name: "single loop",
			in:   xy(0, 0, 4, 0, 4, 2, 2, 2, 2, -2, 2, -4),
			want: xy(0, 0, 2, 0, 2, -2, 2, -4),
		},
		{
			name: "two loops",
			in:   twoLoops,
			want: xy(0, 0, 2, 0, 2, -2, 10, -2, 12, -2, 12, -4, 12, -6),
		},
		{
			name: "no crossing",
			in:   xy(0, 0, 1, 0, 2, 1, 3, 3, 4, 6),
			want: xy(0, 0, 1, 0, 2, 1, 3, 3, 4, 6),
		},
		{
			name: "touching endpoint is not a crossing",
			in:   xy(0, 0, 4, 0, 4, 2, 2, 2, 2, 0),
			want: xy(0, 0, 4, 0, 4, 2, 2, 2, 2, 0),
		},
		{
			name: "fewer than four points",
			in:   xy(0, 0, 4, 0, 2, -2),
			want: xy(0, 0, 4, 0, 2, -2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.in)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			equalPoints(t, got, tt.want)
			if c, ok := FirstCrossing(got); ok {
				t.Errorf("result still crosses at segments %d and %d", c.I, c.J)
			}
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	in := xy(0, 0, 4, 0, 4, 2, 2, 2, 2, -2, 2, -4)
	before := append([]r3.Vec(nil), in...)
	if _, err := Resolve(in); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	equalPoints(t, in, before)
}

func TestCrossingKeepsZOfOuterSegment(t *testing.T) {
	in := xy(0, 0, 4, 0, 4, 2, 2, 2, 2, -2, 2, -4)
	in[0].Z = 7
	c, ok := FirstCrossing(in)
	if !ok {
		t.Fatal("expected a crossing")
	}
	if c.I != 0 || c.J != 3 {
		t.Errorf("crossing at (%d, %d), want (0, 3)", c.I, c.J)
	}
	if c.Point.Z != 7 {
		t.Errorf("crossing Z = %v, want 7", c.Point.Z)
	}
}

func TestResolveIterationLimit(t *testing.T) {
	_, err := Resolver{MaxIterations: 1}.Resolve(twoLoops)
	var ue *UnresolvedIntersectionError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UnresolvedIntersectionError", err)
	}
	if ue.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", ue.Iterations)
	}
}

func TestParallelSegmentsIgnored(t *testing.T) {
	// Overlapping collinear runs have a zero denominator and are skipped.
	in := xy(0, 0, 4, 0, 4, 1, 1, 1, 1, 0, 3, 0)
	if _, ok := FirstCrossing(in); ok {
		t.Error("collinear overlap should not count as a strict crossing")
	}
}
