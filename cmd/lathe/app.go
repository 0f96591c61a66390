package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/lathe/pkg/bottle"
	"github.com/chazu/lathe/pkg/engine"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/chazu/lathe/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Kernel names accepted by --kernel.
const (
	kernelShell = "shell"
	kernelLathe = "lathe"
	kernelSDF   = "sdf"
)

var kernelNames = []string{kernelShell, kernelLathe, kernelSDF}

// kernelByName returns the revolution backend for name. The ring shell
// has no kernel value: bottle.Build uses it when none is given.
func kernelByName(name string, cells int) (kernel.Kernel, error) {
	switch strings.ToLower(name) {
	case "", kernelShell:
		return nil, nil
	case kernelLathe:
		return tessellate.Lathe{}, nil
	case kernelSDF:
		return &sdfx.SdfxKernel{Cells: cells}, nil
	}
	return nil, fmt.Errorf("unknown kernel %q (want one of %s)", name, strings.Join(kernelNames, ", "))
}

// App runs scripts through the engine and builds the resulting bottle.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	// steps overrides the script's resolution when positive.
	steps int
}

// MeshData is the JSON-serializable mesh format handed to viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint16  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating one script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App using k to revolve walls. A nil k selects the
// ring shell.
func NewApp(k kernel.Kernel) *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
	}
}

// Build evaluates source and generates the bottle it describes. Script
// errors are returned joined; warnings are returned alongside the model.
func (a *App) Build(source string) (*bottle.Model, []engine.EvalWarning, error) {
	design, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, nil, errors.Join(errs...)
	}
	model, err := a.buildDesign(design)
	if err != nil {
		return nil, design.Warnings, err
	}
	return model, design.Warnings, nil
}

func (a *App) buildDesign(design *engine.Design) (*bottle.Model, error) {
	params := design.Params
	if a.steps > 0 {
		params.Steps = a.steps
	}
	var opts []bottle.Option
	if a.kernel != nil {
		opts = append(opts, bottle.WithKernel(a.kernel))
	}
	return bottle.Build(params, opts...)
}

// Evaluate takes Lisp source and returns mesh data + errors in the shape
// a viewer consumes. Every part must fit 16-bit indices.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into bottle parameters.
	design, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		logging.Logger().Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the viewer format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	for _, w := range design.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: w.Message,
		})
	}

	// Step 3: Generate the parts.
	model, err := a.buildDesign(design)
	if err != nil {
		logging.Logger().Error("build failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "build failed: " + err.Error(),
		})
		return result
	}

	// Step 4: Convert part meshes to the viewer MeshData format.
	for i, part := range model.Parts() {
		indices, err := kernel.Indices16(part.Mesh)
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("part %s: %v", part.Name, err),
			})
			continue
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: part.Mesh.Vertices,
			Normals:  part.Mesh.Normals,
			Indices:  indices,
			PartName: part.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return result
}
