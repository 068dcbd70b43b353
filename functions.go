package sass

import (
	"errors"
	"fmt"
	"math"
)

func argNumber(args []Value, i int, fname string) (Number, error) {
	if i >= len(args) {
		return Number{}, fmt.Errorf("%s: missing argument %d", fname, i+1)
	}
	n, ok := args[i].(Number)
	if !ok {
		return Number{}, fmt.Errorf("%s: argument %d must be a number, got %s", fname, i+1, kindName(args[i]))
	}
	return n, nil
}

func argColor(args []Value, i int, fname string) (Color, error) {
	if i >= len(args) {
		return Color{}, fmt.Errorf("%s: missing argument %d", fname, i+1)
	}
	c, ok := args[i].(Color)
	if !ok {
		return Color{}, fmt.Errorf("%s: argument %d must be a color, got %s", fname, i+1, kindName(args[i]))
	}
	return c, nil
}

// channel interprets an rgb() argument: 0-255, or a percentage of 255.
func channel(n Number) (uint8, error) {
	v := n.Val
	if n.Unit == "%" {
		v = v / 100 * 255
	} else if n.Unit != "" {
		return 0, fmt.Errorf("color channel cannot carry unit %q", n.Unit)
	}
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v)), nil
}

func rgb(args ...Value) (Value, error) {
	if len(args) != 3 {
		return nil, errors.New("rgb: requires exactly three channel arguments")
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := argNumber(args, i, "rgb")
		if err != nil {
			return nil, err
		}
		if ch[i], err = channel(n); err != nil {
			return nil, err
		}
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: 1}, nil
}

func rgba(args ...Value) (Value, error) {
	if len(args) != 4 {
		return nil, errors.New("rgba: requires three channels and an alpha")
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := argNumber(args, i, "rgba")
		if err != nil {
			return nil, err
		}
		if ch[i], err = channel(n); err != nil {
			return nil, err
		}
	}
	a, err := argNumber(args, 3, "rgba")
	if err != nil {
		return nil, err
	}
	alpha := math.Min(math.Max(a.Val, 0), 1)
	return Color{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

// rgbToHsl converts channels to hue [0,360), saturation and lightness [0,1].
func rgbToHsl(c Color) (h, s, l float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	if max == min {
		return 0, 0, l
	}
	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l
}

func hslToRgb(h, s, l float64) Color {
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return Color{R: v, G: v, B: v, A: 1}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hue := func(t float64) float64 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		switch {
		case t < 1.0/6:
			return p + (q-p)*6*t
		case t < 1.0/2:
			return q
		case t < 2.0/3:
			return p + (q-p)*(2.0/3-t)*6
		}
		return p
	}
	return Color{
		R: uint8(math.Round(hue(h+1.0/3) * 255)),
		G: uint8(math.Round(hue(h) * 255)),
		B: uint8(math.Round(hue(h-1.0/3) * 255)),
		A: 1,
	}
}

func adjustLightness(fname string, sign float64) Function {
	return func(args ...Value) (Value, error) {
		c, err := argColor(args, 0, fname)
		if err != nil {
			return nil, err
		}
		amt, err := argNumber(args, 1, fname)
		if err != nil {
			return nil, err
		}
		if amt.Unit != "%" && amt.Unit != "" {
			return nil, fmt.Errorf("%s: amount must be a percentage", fname)
		}
		h, s, l := rgbToHsl(c)
		l += sign * amt.Val / 100
		l = math.Min(math.Max(l, 0), 1)
		out := hslToRgb(h, s, l)
		out.A = c.A
		return out, nil
	}
}

func mix(args ...Value) (Value, error) {
	c1, err := argColor(args, 0, "mix")
	if err != nil {
		return nil, err
	}
	c2, err := argColor(args, 1, "mix")
	if err != nil {
		return nil, err
	}
	weight := 0.5
	if len(args) >= 3 {
		w, err := argNumber(args, 2, "mix")
		if err != nil {
			return nil, err
		}
		weight = w.Val
		if w.Unit == "%" {
			weight /= 100
		}
		weight = math.Min(math.Max(weight, 0), 1)
	}
	blend := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*weight + float64(b)*(1-weight)))
	}
	return Color{
		R: blend(c1.R, c2.R),
		G: blend(c1.G, c2.G),
		B: blend(c1.B, c2.B),
		A: c1.A*weight + c2.A*(1-weight),
	}, nil
}

func numericUnary(fname string, f func(float64) float64) Function {
	return func(args ...Value) (Value, error) {
		n, err := argNumber(args, 0, fname)
		if err != nil {
			return nil, err
		}
		return Number{Val: f(n.Val), Unit: n.Unit}, nil
	}
}

func extremum(fname string, better func(a, b float64) bool) Function {
	return func(args ...Value) (Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: at least one number required", fname)
		}
		best, err := argNumber(args, 0, fname)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i++ {
			n, err := argNumber(args, i, fname)
			if err != nil {
				return nil, err
			}
			bv, nv, _, err := coerceUnits(best, n)
			if err != nil {
				return nil, err
			}
			if better(nv, bv) {
				best = n
			}
		}
		return best, nil
	}
}

func percentage(args ...Value) (Value, error) {
	n, err := argNumber(args, 0, "percentage")
	if err != nil {
		return nil, err
	}
	if n.Unit != "" {
		return nil, fmt.Errorf("percentage: argument must be unitless, got %q", n.Unit)
	}
	return Number{Val: n.Val * 100, Unit: "%"}, nil
}

func unitOf(args ...Value) (Value, error) {
	n, err := argNumber(args, 0, "unit")
	if err != nil {
		return nil, err
	}
	return Str{Val: n.Unit, Quoted: true}, nil
}

func unitless(args ...Value) (Value, error) {
	n, err := argNumber(args, 0, "unitless")
	if err != nil {
		return nil, err
	}
	return Bool(n.Unit == ""), nil
}

func quote(args ...Value) (Value, error) {
	if len(args) == 0 {
		return nil, errors.New("quote: one argument required")
	}
	switch v := args[0].(type) {
	case Str:
		return Str{Val: v.Val, Quoted: true}, nil
	case Literal:
		return Str{Val: string(v), Quoted: true}, nil
	}
	return Str{Val: args[0].String(), Quoted: true}, nil
}

func unquote(args ...Value) (Value, error) {
	if len(args) == 0 {
		return nil, errors.New("unquote: one argument required")
	}
	if s, ok := args[0].(Str); ok {
		return Literal(s.Val), nil
	}
	return args[0], nil
}

// builtinIf is the functional conditional: if(cond, then, else).
func builtinIf(args ...Value) (Value, error) {
	if len(args) != 3 {
		return nil, errors.New("if: requires condition, then and else arguments")
	}
	if truthy(args[0]) {
		return args[1], nil
	}
	return args[2], nil
}

func init() {
	mustRegister("rgb", rgb)
	mustRegister("rgba", rgba)
	mustRegister("lighten", adjustLightness("lighten", 1))
	mustRegister("darken", adjustLightness("darken", -1))
	mustRegister("mix", mix)
	mustRegister("round", numericUnary("round", math.Round))
	mustRegister("ceil", numericUnary("ceil", math.Ceil))
	mustRegister("floor", numericUnary("floor", math.Floor))
	mustRegister("abs", numericUnary("abs", math.Abs))
	mustRegister("min", extremum("min", func(a, b float64) bool { return a < b }))
	mustRegister("max", extremum("max", func(a, b float64) bool { return a > b }))
	mustRegister("percentage", percentage)
	mustRegister("unit", unitOf)
	mustRegister("unitless", unitless)
	mustRegister("quote", quote)
	mustRegister("unquote", unquote)
	mustRegister("if", builtinIf)
}
