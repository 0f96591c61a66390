package kernel

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// IndexOverflowError reports a mesh with more vertices than its index
// type can address.
type IndexOverflowError struct {
	Vertices int
	Limit    int
}

func (e *IndexOverflowError) Error() string {
	return fmt.Sprintf("mesh has %d vertices, index limit is %d", e.Vertices, e.Limit)
}

// MaxRenderVertices is the vertex ceiling for 16-bit render buffers.
const MaxRenderVertices = math.MaxUint16

// Merge concatenates meshes into one. Indices of each input are shifted by
// the number of vertices preceding it so they keep addressing their own
// vertices. Attributes missing from some inputs are zero filled so the
// buffers stay aligned. Vertices are not welded. The merged mesh takes
// the first input's part name.
func Merge(meshes ...*Mesh) (*Mesh, error) {
	meshes = lo.Filter(meshes, func(m *Mesh, _ int) bool { return m != nil })
	total := lo.SumBy(meshes, func(m *Mesh) int { return m.VertexCount() })
	if total > math.MaxUint32 {
		return nil, &IndexOverflowError{Vertices: total, Limit: math.MaxUint32}
	}
	withUVs := lo.SomeBy(meshes, func(m *Mesh) bool { return len(m.UVs) > 0 })

	out := &Mesh{
		Vertices: make([]float32, 0, 3*total),
		Normals:  make([]float32, 0, 3*total),
		Indices:  make([]uint32, 0, lo.SumBy(meshes, func(m *Mesh) int { return len(m.Indices) })),
	}
	if withUVs {
		out.UVs = make([]float32, 0, 2*total)
	}
	if len(meshes) > 0 {
		out.PartName = meshes[0].PartName
	}

	var base uint32
	for _, m := range meshes {
		n := m.VertexCount()
		out.Vertices = append(out.Vertices, m.Vertices[:3*n]...)
		out.Normals = appendAttr(out.Normals, m.Normals, 3*n)
		if withUVs {
			out.UVs = appendAttr(out.UVs, m.UVs, 2*n)
		}
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, idx+base)
		}
		base += uint32(n)
	}
	return out, nil
}

// appendAttr appends exactly want values from src, zero filling any
// shortfall.
func appendAttr(dst, src []float32, want int) []float32 {
	if len(src) >= want {
		return append(dst, src[:want]...)
	}
	dst = append(dst, src...)
	return append(dst, make([]float32, want-len(src))...)
}

// Indices16 narrows the index buffer of m for renderers limited to 16-bit
// indices.
func Indices16(m *Mesh) ([]uint16, error) {
	if n := m.VertexCount(); n > MaxRenderVertices {
		return nil, &IndexOverflowError{Vertices: n, Limit: MaxRenderVertices}
	}
	return lo.Map(m.Indices, func(i uint32, _ int) uint16 { return uint16(i) }), nil
}
