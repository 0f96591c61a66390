// Package analysis measures generated meshes: extents, area, enclosed
// volume, and the edge topology that tells whether a solid is closed.
package analysis

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// WeldTolerance is the grid size used to merge coincident vertices before
// edge topology is counted.
const WeldTolerance = 1e-6

// BoundingBox is an axis-aligned box.
type BoundingBox struct {
	Min r3.Vec
	Max r3.Vec
}

// Size returns the box extents.
func (b BoundingBox) Size() r3.Vec { return r3.Sub(b.Max, b.Min) }

// Center returns the box midpoint.
func (b BoundingBox) Center() r3.Vec { return r3.Scale(0.5, r3.Add(b.Min, b.Max)) }

// Diagonal returns the length of the box diagonal.
func (b BoundingBox) Diagonal() float64 { return r3.Norm(b.Size()) }

// Report contains the measurements of one mesh.
type Report struct {
	Vertices    int
	Triangles   int
	BoundingBox BoundingBox
	SurfaceArea float64
	// Volume is the signed enclosed volume. It is positive for a closed
	// mesh whose triangles face outward.
	Volume float64

	WeldedVertices      int
	DegenerateTriangles int
	Edges               int
	BoundaryEdges       int
	NonManifoldEdges    int
	// FlippedEdges counts shared edges walked in the same direction by both
	// triangles, which means their orientations disagree.
	FlippedEdges int

	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
}

// Closed reports whether every welded edge is shared by exactly two
// consistently oriented triangles.
func (r *Report) Closed() bool {
	return r.Triangles > r.DegenerateTriangles && r.BoundaryEdges == 0 && r.NonManifoldEdges == 0 && r.FlippedEdges == 0
}

type edgeKey [2]int

type edgeUse struct {
	count   int
	forward int // uses walking from the lower to the higher welded index
}

// Analyze measures m.
func Analyze(m *kernel.Mesh) *Report {
	r := &Report{
		Vertices:  m.VertexCount(),
		Triangles: m.TriangleCount(),
	}
	if r.Vertices == 0 {
		return r
	}

	r.BoundingBox = BoundingBox{Min: m.Vertex(0), Max: m.Vertex(0)}
	for i := 1; i < r.Vertices; i++ {
		v := m.Vertex(i)
		r.BoundingBox.Min = r3.Vec{X: math.Min(r.BoundingBox.Min.X, v.X), Y: math.Min(r.BoundingBox.Min.Y, v.Y), Z: math.Min(r.BoundingBox.Min.Z, v.Z)}
		r.BoundingBox.Max = r3.Vec{X: math.Max(r.BoundingBox.Max.X, v.X), Y: math.Max(r.BoundingBox.Max.Y, v.Y), Z: math.Max(r.BoundingBox.Max.Z, v.Z)}
	}

	weld, unique := Weld(m, WeldTolerance)
	r.WeldedVertices = unique

	edges := make(map[edgeKey]*edgeUse)
	minLen, maxLen, total := math.MaxFloat64, 0.0, 0.0
	for t := 0; t < r.Triangles; t++ {
		a, b, c := m.Triangle(t)
		pa, pb, pc := m.Vertex(a), m.Vertex(b), m.Vertex(c)
		cross := r3.Cross(r3.Sub(pb, pa), r3.Sub(pc, pa))
		r.SurfaceArea += r3.Norm(cross) / 2
		r.Volume += r3.Dot(pa, r3.Cross(pb, pc)) / 6

		wa, wb, wc := weld[a], weld[b], weld[c]
		if wa == wb || wb == wc || wc == wa {
			r.DegenerateTriangles++
			continue
		}
		for _, e := range [3][2]int{{wa, wb}, {wb, wc}, {wc, wa}} {
			key, fwd := edgeKey{e[0], e[1]}, 1
			if e[0] > e[1] {
				key, fwd = edgeKey{e[1], e[0]}, 0
			}
			use, ok := edges[key]
			if !ok {
				use = &edgeUse{}
				edges[key] = use
			}
			use.count++
			use.forward += fwd
		}
		for _, l := range []float64{r3.Norm(r3.Sub(pb, pa)), r3.Norm(r3.Sub(pc, pb)), r3.Norm(r3.Sub(pa, pc))} {
			minLen = math.Min(minLen, l)
			maxLen = math.Max(maxLen, l)
			total += l
		}
	}

	r.Edges = len(edges)
	for _, use := range edges {
		switch {
		case use.count == 1:
			r.BoundaryEdges++
		case use.count > 2:
			r.NonManifoldEdges++
		case use.forward != 1:
			r.FlippedEdges++
		}
	}
	if counted := 3 * (r.Triangles - r.DegenerateTriangles); counted > 0 {
		r.MinEdgeLength = minLen
		r.MaxEdgeLength = maxLen
		r.AvgEdgeLength = total / float64(counted)
	}
	return r
}

// Weld maps every vertex to the index of the first vertex sharing its
// tolerance grid cell, and returns the map and the number of distinct
// positions.
func Weld(m *kernel.Mesh, tol float64) ([]int, int) {
	cells := make(map[[3]int64]int, m.VertexCount())
	out := make([]int, m.VertexCount())
	for i := range out {
		v := m.Vertex(i)
		key := [3]int64{
			int64(math.Round(v.X / tol)),
			int64(math.Round(v.Y / tol)),
			int64(math.Round(v.Z / tol)),
		}
		if first, ok := cells[key]; ok {
			out[i] = first
			continue
		}
		cells[key] = i
		out[i] = i
	}
	return out, len(cells)
}

// FormatVector formats a vector for reports.
func FormatVector(v r3.Vec) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
