package analysis

import (
	"math"
	"testing"

	"github.com/chazu/lathe/pkg/kernel"
)

func tetra(indices ...uint32) *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
		Indices:  indices,
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		mesh     *kernel.Mesh
		closed   bool
		boundary int
		flipped  int
		volume   float64
	}{
		{
			name:   "closed tetrahedron",
			mesh:   tetra(0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3),
			closed: true,
			volume: 1.0 / 6,
		},
		{
			name:     "missing face",
			mesh:     tetra(0, 2, 1, 0, 1, 3, 0, 3, 2),
			boundary: 3,
		},
		{
			name:    "one face flipped",
			mesh:    tetra(0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 3, 2),
			flipped: 3,
			volume:  -1.0 / 6,
		},
		{
			name:   "duplicate vertex welded",
			mesh:   tetra(4, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3),
			closed: true,
			volume: 1.0 / 6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(tt.mesh)
			if r.Closed() != tt.closed {
				t.Errorf("Closed() = %v, want %v (%+v)", r.Closed(), tt.closed, r)
			}
			if r.BoundaryEdges != tt.boundary {
				t.Errorf("BoundaryEdges = %d, want %d", r.BoundaryEdges, tt.boundary)
			}
			if r.FlippedEdges != tt.flipped {
				t.Errorf("FlippedEdges = %d, want %d", r.FlippedEdges, tt.flipped)
			}
			if tt.volume != 0 && math.Abs(r.Volume-tt.volume) > 1e-9 {
				t.Errorf("Volume = %v, want %v", r.Volume, tt.volume)
			}
		})
	}
}

func TestAnalyzeMeasurements(t *testing.T) {
	r := Analyze(tetra(0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3))
	if r.Edges != 6 {
		t.Errorf("Edges = %d, want 6", r.Edges)
	}
	if r.WeldedVertices != 4 {
		t.Errorf("WeldedVertices = %d, want 4", r.WeldedVertices)
	}
	wantArea := 1.5 + math.Sqrt(3)/2
	if math.Abs(r.SurfaceArea-wantArea) > 1e-6 {
		t.Errorf("SurfaceArea = %v, want %v", r.SurfaceArea, wantArea)
	}
	if d := r.BoundingBox.Diagonal(); math.Abs(d-math.Sqrt(3)) > 1e-9 {
		t.Errorf("Diagonal = %v, want √3", d)
	}
	if math.Abs(r.MinEdgeLength-1) > 1e-9 || math.Abs(r.MaxEdgeLength-math.Sqrt2) > 1e-6 {
		t.Errorf("edge lengths = [%v, %v], want [1, √2]", r.MinEdgeLength, r.MaxEdgeLength)
	}
}

func TestAnalyzeDegenerate(t *testing.T) {
	m := tetra(0, 4, 1)
	r := Analyze(m)
	if r.DegenerateTriangles != 1 {
		t.Errorf("DegenerateTriangles = %d, want 1", r.DegenerateTriangles)
	}
	if r.Closed() {
		t.Error("a mesh of degenerate triangles is not closed")
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	r := Analyze(&kernel.Mesh{})
	if r.Vertices != 0 || r.Closed() {
		t.Errorf("empty report = %+v", r)
	}
}
