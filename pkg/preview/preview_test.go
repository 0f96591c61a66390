package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// cup is a U-shaped wall: outer and inner paths of a 10 wide, 20 tall
// cup with a wall of 1.
func cup() (outer, inner []r2.Vec) {
	outer = []r2.Vec{{X: 5, Y: 20}, {X: 5, Y: 0}, {X: -5, Y: 0}, {X: -5, Y: 20}}
	inner = []r2.Vec{{X: 4, Y: 20}, {X: 4, Y: 1}, {X: -4, Y: 1}, {X: -4, Y: 20}}
	return outer, inner
}

func TestOutline(t *testing.T) {
	outer, inner := cup()
	loop := Outline(outer, inner)
	if len(loop) != len(outer)+len(inner)+1 {
		t.Fatalf("len = %d, want %d", len(loop), len(outer)+len(inner)+1)
	}
	if loop[0] != loop[len(loop)-1] {
		t.Errorf("outline not closed: %v ... %v", loop[0], loop[len(loop)-1])
	}
	// The outer path ends on the left rim and the reversed inner path
	// starts there.
	if got := loop[len(outer)]; got != (r2.Vec{X: -4, Y: 20}) {
		t.Errorf("first inner point = %v, want (-4, 20)", got)
	}
	if inner[0] != (r2.Vec{X: 4, Y: 20}) {
		t.Error("Outline modified its input")
	}
}

func TestOutlineWithoutInner(t *testing.T) {
	outer, _ := cup()
	if got := Outline(outer, nil); len(got) != len(outer) {
		t.Errorf("len = %d, want %d", len(got), len(outer))
	}
}

func TestBounds(t *testing.T) {
	outer, _ := cup()
	min, max := Bounds(outer)
	if min != (r2.Vec{X: -5}) || max != (r2.Vec{X: 5, Y: 20}) {
		t.Errorf("Bounds = %v, %v", min, max)
	}
}

func TestPanelPadding(t *testing.T) {
	tests := []struct {
		name string
		size float64
		want float64
	}{
		{"small shape gets the minimum", 20, minPadding},
		{"large shape pads by ratio", 300, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPanel(Shape{Outline: []r2.Vec{{}, {X: tt.size, Y: tt.size / 2}}})
			if p.padding != tt.want {
				t.Errorf("padding = %v, want %v", p.padding, tt.want)
			}
		})
	}
}

func TestWriteSVG(t *testing.T) {
	outer, inner := cup()
	var buf bytes.Buffer
	err := WriteSVG(&buf, 2,
		Shape{Name: "body", Outline: Outline(outer, inner)},
		Shape{Name: "cap", Outline: Outline(outer, inner)},
	)
	if err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", `id="body"`, `id="cap"`, "<polyline", "stroke-dasharray:5,5", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg output missing %q", want)
		}
	}
	if n := strings.Count(out, "<polyline"); n != 2 {
		t.Errorf("polyline count = %d, want 2", n)
	}
	// Two panels of (10 + 2·10) x (20 + 2·10) units at 2 px per unit.
	if !strings.Contains(out, `width="120"`) || !strings.Contains(out, `height="80"`) {
		t.Errorf("unexpected canvas size in %s", out[:strings.Index(out, ">")+1])
	}
}

func TestWriteSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, 1, Shape{Name: "empty"}); err == nil {
		t.Error("expected error for nothing to draw")
	}
}

func TestSaveDXF(t *testing.T) {
	outer, inner := cup()
	path := filepath.Join(t.TempDir(), "section.dxf")
	if err := SaveDXF(path, Shape{Name: "body", Outline: Outline(outer, inner)}); err != nil {
		t.Fatalf("SaveDXF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	for _, want := range []string{"LINE", "body", AxisLayer} {
		if !strings.Contains(out, want) {
			t.Errorf("dxf output missing %q", want)
		}
	}
}

func TestSaveDXFLayerColors(t *testing.T) {
	outer, inner := cup()
	path := filepath.Join(t.TempDir(), "section.dxf")
	if err := SaveDXF(path, Shape{Name: "body", Outline: Outline(outer, inner)}); err != nil {
		t.Fatalf("SaveDXF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tests := []struct {
		layer string
		color int
	}{
		{"body", 7},
		{AxisLayer, 1},
	}
	for _, tt := range tests {
		// Layer records carry the name (2), flags (70), then the color (62).
		re := regexp.MustCompile(`(?m)^\s*2\r?\n` + regexp.QuoteMeta(tt.layer) + `\r?\n\s*70\r?\n\s*-?\d+\r?\n\s*62\r?\n\s*(-?\d+)\r?$`)
		m := re.FindSubmatch(data)
		if m == nil {
			t.Errorf("layer %q not found", tt.layer)
			continue
		}
		if got := string(m[1]); got != strconv.Itoa(tt.color) {
			t.Errorf("layer %q color = %s, want %d", tt.layer, got, tt.color)
		}
	}
}
