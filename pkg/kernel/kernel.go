// Package kernel defines the mesh buffers produced by the lathe and the
// backend interface that turns a revolved section into a mesh. The native
// tessellator and the sdfx backend both satisfy Kernel, so callers can
// switch between exact ring tessellation and SDF meshing without changing
// the rest of the pipeline.
package kernel

import "gonum.org/v1/gonum/spatial/r3"

// Kernel revolves closed half-plane sections about the Y axis.
type Kernel interface {
	// Lathe sweeps the closed section polygon (x = radius >= 0, y = height,
	// z = 0) a full turn and returns an outward-facing mesh. steps is the
	// angular resolution; backends that do not sample by angle may use it
	// as a general resolution hint.
	Lathe(section []r3.Vec, steps int) (*Mesh, error)
}
