package bottle

import (
	"errors"
	"fmt"
)

// Params is the flat parameter record of a bottle and its screw cap.
// Lengths are in model units, ThreadAngle is in degrees, and the *Ratio
// fields are fractions of the neck dimensions.
type Params struct {
	TopRadius    float64 `json:"topRadius"`
	BottomRadius float64 `json:"bottomRadius"`
	Height       float64 `json:"height"`
	NeckRadius   float64 `json:"neckRadius"`
	NeckHeight   float64 `json:"neckHeight"`
	BottomCorner float64 `json:"bottomCorner"`
	TopCorner    float64 `json:"topCorner"`
	Thickness    float64 `json:"thickness"`

	ThreadRounds      float64 `json:"threadRounds"`
	ThreadHeightRatio float64 `json:"threadHeightRatio"` // share of the neck covered by thread
	CrestWidthRatio   float64 `json:"crestWidthRatio"`   // of NeckRadius
	CrestHeightRatio  float64 `json:"crestHeightRatio"`  // of NeckHeight
	ThreadAngle       float64 `json:"threadAngle"`

	CapCorner    float64 `json:"capCorner"`
	CapThickness float64 `json:"capThickness"`

	// Steps is the number of rings in a full revolution.
	Steps int `json:"steps"`
}

// Default returns the stock bottle.
func Default() Params {
	return Params{
		TopRadius:    30,
		BottomRadius: 30,
		Height:       120,
		NeckRadius:   15,
		NeckHeight:   18,
		BottomCorner: 5,
		TopCorner:    5,
		Thickness:    3,

		ThreadRounds:      1.5,
		ThreadHeightRatio: 0.5,
		CrestWidthRatio:   0.125,
		CrestHeightRatio:  0.086,
		ThreadAngle:       60,

		CapCorner:    2,
		CapThickness: 3,

		Steps: 30,
	}
}

// ValidationError describes one invalid parameter.
type ValidationError struct {
	Field   string
	Value   float64
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s = %g: %s", e.Field, e.Value, e.Message)
}

// Validate checks p for values that cannot produce a bottle. All findings
// are joined into one error; nil means p is usable.
func (p Params) Validate() error {
	var errs []error
	positive := func(field string, v float64) {
		if !(v > 0) {
			errs = append(errs, ValidationError{Field: field, Value: v, Message: "must be positive"})
		}
	}
	fraction := func(field string, v float64) {
		if !(v > 0 && v < 1) {
			errs = append(errs, ValidationError{Field: field, Value: v, Message: "must be between 0 and 1"})
		}
	}

	positive("topRadius", p.TopRadius)
	positive("bottomRadius", p.BottomRadius)
	positive("height", p.Height)
	positive("neckRadius", p.NeckRadius)
	positive("neckHeight", p.NeckHeight)
	positive("bottomCorner", p.BottomCorner)
	positive("topCorner", p.TopCorner)
	positive("thickness", p.Thickness)
	positive("threadRounds", p.ThreadRounds)
	positive("capCorner", p.CapCorner)
	positive("capThickness", p.CapThickness)
	fraction("threadHeightRatio", p.ThreadHeightRatio)
	fraction("crestWidthRatio", p.CrestWidthRatio)
	fraction("crestHeightRatio", p.CrestHeightRatio)

	if !(p.ThreadAngle > 0 && p.ThreadAngle < 90) {
		errs = append(errs, ValidationError{Field: "threadAngle", Value: p.ThreadAngle, Message: "must be between 0 and 90 degrees"})
	}
	if p.Steps < 2 {
		errs = append(errs, ValidationError{Field: "steps", Value: float64(p.Steps), Message: "must be at least 2"})
	}
	if p.NeckRadius > 0 && p.Thickness >= p.NeckRadius {
		errs = append(errs, ValidationError{Field: "thickness", Value: p.Thickness, Message: "must be less than neckRadius"})
	}
	if p.NeckRadius >= p.TopRadius && p.TopRadius > 0 {
		errs = append(errs, ValidationError{Field: "neckRadius", Value: p.NeckRadius, Message: "must be less than topRadius"})
	}
	if p.CapThickness > 0 && p.CapThickness >= p.NeckHeight+p.CapCorner {
		errs = append(errs, ValidationError{Field: "capThickness", Value: p.CapThickness, Message: "must be less than neckHeight + capCorner"})
	}
	if len(errs) == 0 {
		errs = p.checkShape()
	}
	return errors.Join(errs...)
}

// crestWidth is the axial root width of the thread tooth.
func (p Params) crestWidth() float64 { return p.CrestWidthRatio * p.NeckRadius }

// crestHeight is the radial height of the thread tooth.
func (p Params) crestHeight() float64 { return p.CrestHeightRatio * p.NeckHeight }

// capDepth is the depth of the cap's bore.
func (p Params) capDepth() float64 { return p.NeckHeight + p.CapCorner - p.CapThickness }

// capRadius is the outer radius of the cap skirt.
func (p Params) capRadius() float64 { return p.NeckRadius + p.CapThickness + p.crestHeight() }
