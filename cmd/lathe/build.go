package main

import (
	"fmt"
	"io"

	"github.com/chazu/lathe/pkg/bottle"
	"github.com/chazu/lathe/pkg/engine"
	"github.com/chazu/lathe/pkg/export"
	"github.com/spf13/cobra"
)

var (
	buildOut    string
	buildFormat string
)

var buildCmd = &cobra.Command{
	Use:   "build [script]",
	Short: "Build the bottle and cap and write them to a file",
	Long: `Evaluate the script, generate both parts and save them. The format is
taken from --format, or from the output file extension.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "bottle.stl", "Output file")
	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", "", "Output format: json, msgpack, cbor or stl")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(buildOut, buildFormat)
	if err != nil {
		return err
	}
	model, err := buildModel(cmd.ErrOrStderr(), args)
	if err != nil {
		return err
	}
	if err := export.Save(buildOut, format, export.NewDocument(model)); err != nil {
		return err
	}
	for _, part := range model.Parts() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-5s %6d vertices %6d triangles\n",
			part.Name, part.Mesh.VertexCount(), part.Mesh.TriangleCount())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", buildOut, format)
	return nil
}

func outputFormat(path, flag string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	return export.FormatFromPath(path)
}

// buildModel runs the script named by args through a fresh App and
// reports script warnings to stderr.
func buildModel(stderr io.Writer, args []string) (*bottle.Model, error) {
	source, err := readScript(args)
	if err != nil {
		return nil, err
	}
	app, err := newApp()
	if err != nil {
		return nil, err
	}
	model, warnings, err := app.Build(source)
	printWarnings(stderr, warnings)
	return model, err
}

func printWarnings(w io.Writer, warnings []engine.EvalWarning) {
	for _, warn := range warnings {
		if warn.Line > 0 {
			fmt.Fprintf(w, "warning: line %d: %s\n", warn.Line, warn.Message)
			continue
		}
		fmt.Fprintf(w, "warning: %s\n", warn.Message)
	}
}
