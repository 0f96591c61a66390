package main

import (
	"fmt"
	"io"

	"github.com/chazu/lathe/pkg/analysis"
	"github.com/chazu/lathe/pkg/bottle"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [script]",
	Short: "Build the bottle and report mesh statistics per part",
	Long:  "Show vertex and triangle counts, bounds, surface area, volume and watertightness for the shell, thread and assembled mesh of each part.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	model, err := buildModel(cmd.ErrOrStderr(), args)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	printParams(w, model.Params)
	for _, part := range model.Parts() {
		fmt.Fprintln(w)
		printReport(w, part.Name, part.Mesh)
		printReport(w, part.Name+" shell", part.Shell)
		printReport(w, part.Name+" thread", part.Thread)
	}
	return nil
}

func printParams(w io.Writer, p bottle.Params) {
	fmt.Fprintln(w, "Parameters")
	fmt.Fprintln(w, "==========")
	fmt.Fprintf(w, "  Body: radius %g/%g, height %g, wall %g\n", p.BottomRadius, p.TopRadius, p.Height, p.Thickness)
	fmt.Fprintf(w, "  Neck: radius %g, height %g\n", p.NeckRadius, p.NeckHeight)
	fmt.Fprintf(w, "  Thread: %g rounds at %g degrees\n", p.ThreadRounds, p.ThreadAngle)
	fmt.Fprintf(w, "  Cap: corner %g, wall %g\n", p.CapCorner, p.CapThickness)
	fmt.Fprintf(w, "  Steps: %d\n", p.Steps)
}

func printReport(w io.Writer, name string, m *kernel.Mesh) {
	r := analysis.Analyze(m)

	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  Vertices: %d (%d welded)\n", r.Vertices, r.WeldedVertices)
	fmt.Fprintf(w, "  Triangles: %d\n", r.Triangles)
	fmt.Fprintf(w, "  Min: %s\n", analysis.FormatVector(r.BoundingBox.Min))
	fmt.Fprintf(w, "  Max: %s\n", analysis.FormatVector(r.BoundingBox.Max))
	fmt.Fprintf(w, "  Surface Area: %.6f square units\n", r.SurfaceArea)
	fmt.Fprintf(w, "  Volume: %.6f cubic units\n", r.Volume)
	fmt.Fprintf(w, "  Edges: %d (%d boundary, %d non-manifold, %d flipped)\n",
		r.Edges, r.BoundaryEdges, r.NonManifoldEdges, r.FlippedEdges)
	fmt.Fprintf(w, "  Closed: %t\n", r.Closed())
	if _, err := kernel.Indices16(m); err != nil {
		fmt.Fprintf(w, "  Render: %v\n", err)
	}
}
