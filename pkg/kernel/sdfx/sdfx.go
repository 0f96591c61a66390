// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library, and writes kernel meshes
// as STL through its renderer.
package sdfx

import (
	"fmt"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// SdfxKernel implements kernel.Kernel using sdfx. The section is turned
// into a 2D polygon SDF, revolved, and meshed with marching cubes, so the
// angular step count is ignored in favour of Cells.
type SdfxKernel struct {
	// Cells is the marching cubes resolution along the longest side of
	// the bounding box. Zero means defaultMeshCells.
	Cells int
}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

func (k *SdfxKernel) cells() int {
	if k.Cells > 0 {
		return k.Cells
	}
	return defaultMeshCells
}

// Lathe revolves the section polygon about the Y axis.
func (k *SdfxKernel) Lathe(section []r3.Vec, steps int) (*kernel.Mesh, error) {
	if len(section) < 3 {
		return nil, fmt.Errorf("sdfx: section needs at least 3 points, got %d", len(section))
	}
	vlist := make([]v2.Vec, len(section))
	for i, p := range section {
		vlist[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	s2, err := sdf.Polygon2D(vlist)
	if err != nil {
		return nil, fmt.Errorf("sdfx: section polygon: %w", err)
	}
	s3, err := sdf.Revolve3D(s2)
	if err != nil {
		return nil, fmt.Errorf("sdfx: revolve: %w", err)
	}
	logging.Logger().Debug("sdfx lathe", "points", len(section), "cells", k.cells(), "steps", steps)
	return k.ToMesh(s3)
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
// sdfx revolves about its Z axis; vertices are mapped (x, y, z) ->
// (x, z, -y) so the result stands on the Y axis like the native lathe.
func (k *SdfxKernel) ToMesh(s sdf.SDF3) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells())
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := toYUp(tri.Normal())
		for j := 0; j < 3; j++ {
			v := toYUp(tri[j])
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		PartName: "lathe",
	}, nil
}

func toYUp(v v3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Z, Z: -v.Y}
}

// SaveSTL writes the triangles of every mesh to a binary STL file.
func SaveSTL(path string, meshes ...*kernel.Mesh) error {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for t := 0; t < m.TriangleCount(); t++ {
			a, b, c := m.Triangle(t)
			tris = append(tris, &sdf.Triangle3{toV3(m.Vertex(a)), toV3(m.Vertex(b)), toV3(m.Vertex(c))})
		}
	}
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: no triangles to write to %s", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}

func toV3(v r3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
