package kernel

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh suitable for rendering.
// All arrays are flat: vertices and normals have 3 floats per vertex,
// UVs have 2, indices have 3 per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`     // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`      // [nx0,ny0,nz0, ...]
	UVs      []float32 `json:"uvs,omitempty"` // [u0,v0, u1,v1, ...]
	Indices  []uint32  `json:"indices"`      // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"`     // body, cap, thread, ...
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) r3.Vec {
	return r3.Vec{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}

// Triangle returns the three vertex indices of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c int) {
	return int(m.Indices[3*t]), int(m.Indices[3*t+1]), int(m.Indices[3*t+2])
}

// FromPoints builds a mesh from positions and triangle index triples.
// Normals are computed; UVs are left empty.
func FromPoints(name string, points []r3.Vec, indices []int) (*Mesh, error) {
	if len(points) > math.MaxUint32 {
		return nil, &IndexOverflowError{Vertices: len(points), Limit: math.MaxUint32}
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("kernel: %d indices is not a whole number of triangles", len(indices))
	}
	m := &Mesh{
		Vertices: make([]float32, 0, 3*len(points)),
		Indices:  make([]uint32, len(indices)),
		PartName: name,
	}
	for _, p := range points {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(points) {
			return nil, fmt.Errorf("kernel: index %d at position %d out of range [0, %d)", idx, i, len(points))
		}
		m.Indices[i] = uint32(idx)
	}
	ComputeNormals(m)
	return m, nil
}

// Translate moves every vertex of m by d in place.
func (m *Mesh) Translate(d r3.Vec) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		m.Vertices[i] += float32(d.X)
		m.Vertices[i+1] += float32(d.Y)
		m.Vertices[i+2] += float32(d.Z)
	}
}

// FlipWinding reverses the orientation of every triangle and negates the
// normals.
func (m *Mesh) FlipWinding() {
	for t := 0; t+2 < len(m.Indices); t += 3 {
		m.Indices[t+1], m.Indices[t+2] = m.Indices[t+2], m.Indices[t+1]
	}
	m.Normals = lo.Map(m.Normals, func(n float32, _ int) float32 { return -n })
}

// ComputeNormals replaces m.Normals with area-weighted vertex normals.
// Vertices not referenced by any non-degenerate triangle get a zero normal.
func ComputeNormals(m *Mesh) {
	acc := make([]r3.Vec, m.VertexCount())
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		pa, pb, pc := m.Vertex(a), m.Vertex(b), m.Vertex(c)
		n := r3.Cross(r3.Sub(pb, pa), r3.Sub(pc, pa))
		acc[a] = r3.Add(acc[a], n)
		acc[b] = r3.Add(acc[b], n)
		acc[c] = r3.Add(acc[c], n)
	}
	m.Normals = make([]float32, 0, 3*len(acc))
	for _, n := range acc {
		if l := r3.Norm(n); l > 0 {
			n = r3.Scale(1/l, n)
		}
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
}
