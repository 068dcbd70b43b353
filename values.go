package sass

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the result of evaluating an expression: a number with an
// optional unit, a string, a color, a boolean, a list, or an opaque
// literal passed through from the source.
type Value interface {
	// String renders the value in canonical output form.
	String() string
}

type Number struct {
	Val  float64
	Unit string
}

func (n Number) String() string {
	return formatFloat(n.Val) + n.Unit
}

type Str struct {
	Val    string
	Quoted bool
}

func (s Str) String() string {
	if s.Quoted {
		return "\"" + s.Val + "\""
	}
	return s.Val
}

type Color struct {
	R, G, B uint8
	A       float64
	// text keeps the source spelling of a color literal so re-emitting a
	// compiled sheet reproduces it byte for byte.
	text string
}

func (c Color) String() string {
	if c.text != "" {
		return c.text
	}
	if c.A < 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatFloat(c.A))
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

type List struct {
	Items []Value
	Sep   string // " " or ", "
}

func (l List) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return strings.Join(parts, l.Sep)
}

// Literal is an uninterpreted token sequence: bare keywords such as
// "solid", unknown CSS functions, url(...) payloads.
type Literal string

func (l Literal) String() string {
	return string(l)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// absolute length units expressed in px (CSS reference pixel).
var absLengthPx = map[string]float64{
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96.0 / 2.54,
	"mm": 96.0 / 25.4,
	"q":  96.0 / 101.6,
}

// convertUnit converts val from one absolute length unit to another.
func convertUnit(val float64, from, to string) (float64, bool) {
	if from == to {
		return val, true
	}
	ff, ok1 := absLengthPx[from]
	tf, ok2 := absLengthPx[to]
	if !ok1 || !ok2 {
		return 0, false
	}
	return val * ff / tf, true
}

// coerceUnits brings two numbers to a common unit for + - and comparisons.
// A unitless operand adopts the other's unit.
func coerceUnits(l, r Number) (float64, float64, string, error) {
	switch {
	case l.Unit == r.Unit:
		return l.Val, r.Val, l.Unit, nil
	case l.Unit == "":
		return l.Val, r.Val, r.Unit, nil
	case r.Unit == "":
		return l.Val, r.Val, l.Unit, nil
	}
	if rv, ok := convertUnit(r.Val, r.Unit, l.Unit); ok {
		return l.Val, rv, l.Unit, nil
	}
	return 0, 0, "", &UnitMismatchError{Left: l.Unit, Right: r.Unit}
}

func applyOp(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return Bool(valueEqual(left, right)), nil
	case "!=":
		return Bool(!valueEqual(left, right)), nil
	case "and":
		return Bool(truthy(left) && truthy(right)), nil
	case "or":
		return Bool(truthy(left) || truthy(right)), nil
	}

	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return nil, &EvalError{Message: fmt.Sprintf("operator %q requires numeric operands, got %s and %s", op, kindName(left), kindName(right))}
	}

	switch op {
	case "+", "-":
		lv, rv, unit, err := coerceUnits(ln, rn)
		if err != nil {
			return nil, err
		}
		if op == "+" {
			return Number{Val: lv + rv, Unit: unit}, nil
		}
		return Number{Val: lv - rv, Unit: unit}, nil
	case "*":
		if ln.Unit != "" && rn.Unit != "" {
			return nil, &UnitMismatchError{Left: ln.Unit, Right: rn.Unit}
		}
		unit := ln.Unit
		if unit == "" {
			unit = rn.Unit
		}
		return Number{Val: ln.Val * rn.Val, Unit: unit}, nil
	case "/":
		if rn.Val == 0 {
			return nil, &EvalError{Message: "division by zero"}
		}
		if rn.Unit == "" {
			return Number{Val: ln.Val / rn.Val, Unit: ln.Unit}, nil
		}
		if ln.Unit == rn.Unit {
			// same dimension: the quotient is a plain ratio
			return Number{Val: ln.Val / rn.Val}, nil
		}
		return nil, &UnitMismatchError{Left: ln.Unit, Right: rn.Unit}
	case "<", "<=", ">", ">=":
		lv, rv, _, err := coerceUnits(ln, rn)
		if err != nil {
			return nil, err
		}
		switch op {
		case "<":
			return Bool(lv < rv), nil
		case "<=":
			return Bool(lv <= rv), nil
		case ">":
			return Bool(lv > rv), nil
		default:
			return Bool(lv >= rv), nil
		}
	}
	return nil, &EvalError{Message: fmt.Sprintf("unknown operator %s", op)}
}

// valueEqual compares values of the same kind structurally; values of
// different kinds are unequal, never an error.
func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return false
		}
		if av.Unit == bv.Unit {
			return av.Val == bv.Val
		}
		if rv, ok := convertUnit(bv.Val, bv.Unit, av.Unit); ok {
			return av.Val == rv
		}
		return false
	case Str:
		// quoted and unquoted strings compare by content
		switch bv := b.(type) {
		case Str:
			return av.Val == bv.Val
		case Literal:
			return av.Val == string(bv)
		}
		return false
	case Literal:
		switch bv := b.(type) {
		case Literal:
			return av == bv
		case Str:
			return string(av) == bv.Val
		}
		return false
	case Color:
		bv, ok := b.(Color)
		if !ok {
			return false
		}
		return av.R == bv.R && av.G == bv.G && av.B == bv.B && av.A == bv.A
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av.Items) != len(bv.Items) || av.Sep != bv.Sep {
			return false
		}
		for i := range av.Items {
			if !valueEqual(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// truthy implements condition semantics: false, the empty string and the
// keyword none are falsy, a zero number is falsy, everything else is truthy.
func truthy(v Value) bool {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Number:
		return t.Val != 0
	case Str:
		return t.Val != "" && t.Val != "none"
	case Literal:
		return t != "" && t != "none" && t != "false"
	case nil:
		return false
	}
	return true
}

func kindName(v Value) string {
	switch v.(type) {
	case Number:
		return "number"
	case Str:
		return "string"
	case Color:
		return "color"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Literal:
		return "literal"
	}
	return "unknown"
}

// parseHexColor parses #rgb and #rrggbb literals, keeping the source text.
func parseHexColor(text string) (Color, bool) {
	hex := strings.TrimPrefix(text, "#")
	switch len(hex) {
	case 3:
		var c [3]uint8
		for i := 0; i < 3; i++ {
			d, err := strconv.ParseUint(string(hex[i]), 16, 8)
			if err != nil {
				return Color{}, false
			}
			c[i] = uint8(d*16 + d)
		}
		return Color{R: c[0], G: c[1], B: c[2], A: 1, text: text}, true
	case 6:
		var c [3]uint8
		for i := 0; i < 3; i++ {
			d, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return Color{}, false
			}
			c[i] = uint8(d)
		}
		return Color{R: c[0], G: c[1], B: c[2], A: 1, text: text}, true
	}
	return Color{}, false
}

// splitNumber splits a numeric token such as "10px" or "33.3%" into its
// magnitude and unit.
func splitNumber(text string) (float64, string, error) {
	i := 0
	for i < len(text) && (text[i] >= '0' && text[i] <= '9' || text[i] == '.' || text[i] == '-' || text[i] == '+') {
		i++
	}
	val, err := strconv.ParseFloat(text[:i], 64)
	if err != nil {
		return 0, "", err
	}
	return val, text[i:], nil
}
