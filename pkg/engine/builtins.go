package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/lathe/pkg/bottle"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms parameter script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: neck-radius -> neck_radius
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}


// toInt extracts a whole number from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Parameter fields
// ---------------------------------------------------------------------------

// fields maps the canonical keyword of every numeric bottle parameter to
// its storage. steps is handled separately because it is an integer.
var fields = map[string]func(*bottle.Params) *float64{
	"top-radius":          func(p *bottle.Params) *float64 { return &p.TopRadius },
	"bottom-radius":       func(p *bottle.Params) *float64 { return &p.BottomRadius },
	"height":              func(p *bottle.Params) *float64 { return &p.Height },
	"neck-radius":         func(p *bottle.Params) *float64 { return &p.NeckRadius },
	"neck-height":         func(p *bottle.Params) *float64 { return &p.NeckHeight },
	"bottom-corner":       func(p *bottle.Params) *float64 { return &p.BottomCorner },
	"top-corner":          func(p *bottle.Params) *float64 { return &p.TopCorner },
	"thickness":           func(p *bottle.Params) *float64 { return &p.Thickness },
	"thread-rounds":       func(p *bottle.Params) *float64 { return &p.ThreadRounds },
	"thread-height-ratio": func(p *bottle.Params) *float64 { return &p.ThreadHeightRatio },
	"crest-width-ratio":   func(p *bottle.Params) *float64 { return &p.CrestWidthRatio },
	"crest-height-ratio":  func(p *bottle.Params) *float64 { return &p.CrestHeightRatio },
	"thread-angle":        func(p *bottle.Params) *float64 { return &p.ThreadAngle },
	"cap-corner":          func(p *bottle.Params) *float64 { return &p.CapCorner },
	"cap-thickness":       func(p *bottle.Params) *float64 { return &p.CapThickness },
}

const stepsField = "steps"

// groups maps each grouping builtin's local keywords to canonical ones.
var groups = map[string]map[string]string{
	"body": {
		"top-radius":    "top-radius",
		"bottom-radius": "bottom-radius",
		"height":        "height",
		"bottom-corner": "bottom-corner",
		"top-corner":    "top-corner",
		"thickness":     "thickness",
	},
	"neck": {
		"radius": "neck-radius",
		"height": "neck-height",
	},
	"thread": {
		"rounds":             "thread-rounds",
		"height-ratio":       "thread-height-ratio",
		"crest-width-ratio":  "crest-width-ratio",
		"crest-height-ratio": "crest-height-ratio",
		"angle":              "thread-angle",
	},
	"cap": {
		"corner":    "cap-corner",
		"thickness": "cap-thickness",
	},
}

// script accumulates parameters while a source file runs.
type script struct {
	params   bottle.Params
	setBy    map[string]string // canonical keyword -> builtin that set it
	warnings []EvalWarning
}

func newScript() *script {
	return &script{params: bottle.Default(), setBy: make(map[string]string)}
}

func (s *script) design() *Design {
	return &Design{Params: s.params, Warnings: s.warnings}
}

// set stores one keyword value. A value set earlier by a different
// builtin is overridden with a warning.
func (s *script) set(builtin, canonical string, v zygo.Sexp) error {
	if prev, ok := s.setBy[canonical]; ok && prev != builtin {
		s.warnings = append(s.warnings, EvalWarning{
			Message: fmt.Sprintf("(%s) overrides %s set by (%s)", builtin, canonical, prev),
			Field:   canonical,
		})
	}
	s.setBy[canonical] = builtin

	if canonical == stepsField {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		s.params.Steps = n
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return err
	}
	*fields[canonical](&s.params) = f
	return nil
}

// apply sets every keyword in pa through table, which maps the builtin's
// keywords to canonical ones. Unknown keywords and positional arguments
// are errors.
func (s *script) apply(builtin string, pa kwArgs, table map[string]string) error {
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", builtin, pa.positional[0].SexpString(nil))
	}
	// Sorted so the first reported error does not depend on map order.
	names := make([]string, 0, len(pa.kw))
	for name := range pa.kw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		canonical, ok := table[name]
		if !ok {
			return fmt.Errorf("%s: unknown keyword :%s", builtin, name)
		}
		if err := s.set(builtin, canonical, pa.kw[name]); err != nil {
			return fmt.Errorf("%s: %s: %w", builtin, name, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpParams is returned by the parameter builtins so scripts can print
// the state they produced.
type sexpParams struct {
	builtin string
	params  bottle.Params
}

func (p *sexpParams) SexpString(ps *zygo.PrintState) string {
	b := p.params
	switch p.builtin {
	case "neck":
		return fmt.Sprintf("(neck :radius %g :height %g)", b.NeckRadius, b.NeckHeight)
	case "thread":
		return fmt.Sprintf("(thread :rounds %g :angle %g)", b.ThreadRounds, b.ThreadAngle)
	case "cap":
		return fmt.Sprintf("(cap :corner %g :thickness %g)", b.CapCorner, b.CapThickness)
	case "resolution":
		return fmt.Sprintf("(resolution %d)", b.Steps)
	}
	return fmt.Sprintf("(%s :height %g :top-radius %g :bottom-radius %g :thickness %g)",
		p.builtin, b.Height, b.TopRadius, b.BottomRadius, b.Thickness)
}
func (p *sexpParams) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the parameter builtins into a zygomys
// environment. Each builtin writes into s as it runs, so later calls
// override earlier ones.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *script) {

	// -----------------------------------------------------------------------
	// (bottle :height 120 :neck-radius 15 :steps 30 ...)
	// Accepts every canonical parameter keyword.
	// -----------------------------------------------------------------------
	all := allFields()
	env.AddFunction("bottle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := s.apply("bottle", parseArgs(args), all); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpParams{builtin: "bottle", params: s.params}, nil
	})

	// -----------------------------------------------------------------------
	// (body :top-radius 30 :bottom-radius 30 :height 120 :thickness 3 ...)
	// (neck :radius 15 :height 18)
	// (thread :rounds 1.5 :height-ratio 0.5 :angle 60 ...)
	// (cap :corner 2 :thickness 3)
	// -----------------------------------------------------------------------
	for builtin, table := range groups {
		builtin, table := builtin, table
		env.AddFunction(builtin, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if err := s.apply(builtin, parseArgs(args), table); err != nil {
				return zygo.SexpNull, err
			}
			return &sexpParams{builtin: builtin, params: s.params}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (resolution 60) or (resolution :steps 60)
	// -----------------------------------------------------------------------
	env.AddFunction("resolution", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		switch {
		case len(pa.positional) == 1 && len(pa.kw) == 0:
			if err := s.set("resolution", stepsField, pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("resolution: %w", err)
			}
		case len(pa.positional) == 0 && len(pa.kw) > 0:
			if err := s.apply("resolution", pa, map[string]string{stepsField: stepsField}); err != nil {
				return zygo.SexpNull, err
			}
		default:
			return zygo.SexpNull, fmt.Errorf("resolution requires a step count")
		}
		return &sexpParams{builtin: "resolution", params: s.params}, nil
	})
}

// allFields maps every canonical keyword to itself, for (bottle ...).
func allFields() map[string]string {
	all := map[string]string{stepsField: stepsField}
	for name := range fields {
		all[name] = name
	}
	return all
}

// Builtins returns the names of the parameter builtins.
func Builtins() []string {
	names := []string{"bottle", "resolution"}
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keywords returns the sorted keywords a parameter builtin accepts.
func Keywords(builtin string) []string {
	var table map[string]string
	switch builtin {
	case "bottle":
		table = allFields()
	case "resolution":
		table = map[string]string{stepsField: stepsField}
	default:
		table = groups[builtin]
	}
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
