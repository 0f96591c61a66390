// Package preview draws the 2D cross-section of generated parts: the
// closed wall outline of each part beside a dashed centre line, as SVG
// for viewing or DXF for CAD tools.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/samber/lo"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultScale is the SVG pixels per model unit.
const DefaultScale = 4

const (
	minPadding           = 10
	paddingRatio         = 0.1
	minCenterLinePadding = 6
)

// Shape is a named closed outline.
type Shape struct {
	Name    string
	Outline []r2.Vec
}

// Outline joins an outer and inner wall path into one closed loop: the
// outer path, then the inner path reversed, then back to the first outer
// point. A nil inner path leaves the outer path as is.
func Outline(outer, inner []r2.Vec) []r2.Vec {
	if len(inner) == 0 || len(outer) == 0 {
		return append([]r2.Vec(nil), outer...)
	}
	loop := make([]r2.Vec, 0, len(outer)+len(inner)+1)
	loop = append(loop, outer...)
	for i := len(inner) - 1; i >= 0; i-- {
		loop = append(loop, inner[i])
	}
	return append(loop, outer[0])
}

// Bounds returns the corners of the box around points.
func Bounds(points []r2.Vec) (min, max r2.Vec) {
	if len(points) == 0 {
		return r2.Vec{}, r2.Vec{}
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = r2.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y)}
		max = r2.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y)}
	}
	return min, max
}

// panel is the frame one shape is drawn in.
type panel struct {
	min, max r2.Vec
	padding  float64
}

func newPanel(s Shape) panel {
	min, max := Bounds(s.Outline)
	size := r2.Sub(max, min)
	return panel{
		min:     min,
		max:     max,
		padding: math.Max(math.Max(size.X, size.Y)*paddingRatio, minPadding),
	}
}

func (p panel) width() float64  { return p.max.X - p.min.X + 2*p.padding }
func (p panel) height() float64 { return p.max.Y - p.min.Y + 2*p.padding }

// centerLine returns the vertical line through the middle of the panel,
// extended a little past the outline.
func (p panel) centerLine() (r2.Vec, r2.Vec) {
	x := (p.min.X + p.max.X) / 2
	ext := math.Max((p.max.Y-p.min.Y)*paddingRatio, minCenterLinePadding) / 2
	return r2.Vec{X: x, Y: p.min.Y - ext}, r2.Vec{X: x, Y: p.max.Y + ext}
}

// WriteSVG draws every shape in its own panel, left to right. Model Y
// points up; SVG Y points down.
func WriteSVG(w io.Writer, scale float64, shapes ...Shape) error {
	if scale <= 0 {
		scale = DefaultScale
	}
	shapes = lo.Filter(shapes, func(s Shape, _ int) bool { return len(s.Outline) > 1 })
	if len(shapes) == 0 {
		return fmt.Errorf("preview: nothing to draw")
	}
	panels := lo.Map(shapes, func(s Shape, _ int) panel { return newPanel(s) })
	width := lo.SumBy(panels, func(p panel) float64 { return p.width() })
	height := lo.MaxBy(panels, func(a, b panel) bool { return a.height() > b.height() }).height()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(px(width, scale), px(height, scale))
	left := 0.0
	for i, s := range shapes {
		p := panels[i]
		// toCanvas maps model coordinates into this panel.
		toCanvas := func(v r2.Vec) (int, int) {
			x := left + p.padding + (v.X - p.min.X)
			y := p.padding + (p.max.Y - v.Y)
			return px(x, scale), px(y, scale)
		}

		canvas.Gid(s.Name)
		xs := make([]int, len(s.Outline))
		ys := make([]int, len(s.Outline))
		for j, v := range s.Outline {
			xs[j], ys[j] = toCanvas(v)
		}
		canvas.Polyline(xs, ys, "fill:none;stroke:#000000;stroke-width:1")
		a, b := p.centerLine()
		x1, y1 := toCanvas(a)
		x2, y2 := toCanvas(b)
		canvas.Line(x1, y1, x2, y2, "stroke:#000000;stroke-width:1;stroke-dasharray:5,5")
		canvas.Gend()
		left += p.width()
	}
	canvas.End()

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("preview: write svg: %w", err)
	}
	return nil
}

func px(v, scale float64) int {
	return int(math.Round(v * scale))
}

// AxisLayer is the DXF layer holding the centre lines.
const AxisLayer = "axis"

// SaveDXF writes every shape's outline as lines on a layer named after
// the shape, in model units, with centre lines on AxisLayer.
func SaveDXF(path string, shapes ...Shape) error {
	d := dxf.NewDrawing()
	for _, s := range shapes {
		if len(s.Outline) < 2 {
			continue
		}
		if _, err := d.AddLayer(s.Name, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("preview: dxf layer %s: %w", s.Name, err)
		}
		for i := 1; i < len(s.Outline); i++ {
			a, b := s.Outline[i-1], s.Outline[i]
			if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
				return fmt.Errorf("preview: dxf %s line %d: %w", s.Name, i, err)
			}
		}
	}
	if _, err := d.AddLayer(AxisLayer, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("preview: dxf layer %s: %w", AxisLayer, err)
	}
	for _, s := range shapes {
		if len(s.Outline) < 2 {
			continue
		}
		a, b := newPanel(s).centerLine()
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return fmt.Errorf("preview: dxf %s axis: %w", s.Name, err)
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("preview: save %s: %w", path, err)
	}
	return nil
}
