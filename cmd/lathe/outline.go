package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/lathe/pkg/bottle"
	"github.com/chazu/lathe/pkg/preview"
	"github.com/spf13/cobra"
)

var (
	outlineOut   string
	outlineScale float64
)

var outlineCmd = &cobra.Command{
	Use:   "outline [script]",
	Short: "Draw the wall cross sections as SVG or DXF",
	Long: `Draw the full cross section of each part, mirrored about the axis, with
its centre line. The drawing format follows the output extension: .svg or
.dxf.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutline,
}

func init() {
	outlineCmd.Flags().StringVarP(&outlineOut, "out", "o", "bottle.svg", "Output file (.svg or .dxf)")
	outlineCmd.Flags().Float64Var(&outlineScale, "scale", preview.DefaultScale, "SVG pixels per model unit")
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	model, err := buildModel(cmd.ErrOrStderr(), args)
	if err != nil {
		return err
	}
	shapes := outlineShapes(model)

	switch ext := strings.ToLower(filepath.Ext(outlineOut)); ext {
	case ".svg":
		err = saveSVG(outlineOut, outlineScale, shapes)
	case ".dxf":
		err = preview.SaveDXF(outlineOut, shapes...)
	default:
		return fmt.Errorf("unsupported outline format %q (want .svg or .dxf)", ext)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outlineOut)
	return nil
}

func outlineShapes(model *bottle.Model) []preview.Shape {
	var shapes []preview.Shape
	for _, part := range model.Parts() {
		outer, inner := part.Profiles()
		shapes = append(shapes, preview.Shape{Name: part.Name, Outline: preview.Outline(outer, inner)})
	}
	return shapes
}

func saveSVG(path string, scale float64, shapes []preview.Shape) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return preview.WriteSVG(f, scale, shapes...)
}
