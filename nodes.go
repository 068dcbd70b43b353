package sass

import (
	"fmt"
	"strings"
)

// Node is a statement in a stylesheet: a rule, a declaration, a binding,
// a directive or a comment. Statements are resolved by the compile walk;
// ToSCSS re-serializes the node as source text.
type Node interface {
	ToSCSS(indent string) string
}

// Expr is an expression usable in declaration values, @if conditions and
// mixin arguments.
type Expr interface {
	Eval(env *Environment) (Value, error)
	ToSCSS(indent string) string
}

type RuleNode struct {
	Selectors []string
	Body      []Node
	Line, Col int
}

func (r *RuleNode) ToSCSS(indent string) string {
	var sb strings.Builder
	sb.Grow(len(indent) + len(r.Body)*32 + 16)
	sb.WriteString(indent)
	sb.WriteString(strings.Join(r.Selectors, ", "))
	sb.WriteString(" {\n")
	for _, n := range r.Body {
		sb.WriteString(n.ToSCSS(indent + "  "))
		sb.WriteByte('\n')
	}
	sb.WriteString(indent)
	sb.WriteByte('}')
	return sb.String()
}

type DeclarationNode struct {
	Property  string
	Value     Expr
	Line, Col int
}

func (d *DeclarationNode) ToSCSS(indent string) string {
	return indent + d.Property + ": " + d.Value.ToSCSS("") + ";"
}

type AssignNode struct {
	Name      string
	Value     Expr
	Default   bool // !default: bind only when not already bound
	Line, Col int
}

func (a *AssignNode) ToSCSS(indent string) string {
	var sb strings.Builder
	sb.Grow(len(indent) + len(a.Name) + 16)
	sb.WriteString(indent)
	sb.WriteByte('$')
	sb.WriteString(a.Name)
	sb.WriteString(": ")
	sb.WriteString(a.Value.ToSCSS(""))
	if a.Default {
		sb.WriteString(" !default")
	}
	sb.WriteByte(';')
	return sb.String()
}

type Param struct {
	Name    string
	Default Expr // nil when the parameter is required
}

type MixinNode struct {
	Name      string
	Params    []Param
	Body      []Node
	Line, Col int
}

func (m *MixinNode) ToSCSS(indent string) string {
	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString("@mixin ")
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('$')
		sb.WriteString(p.Name)
		if p.Default != nil {
			sb.WriteString(": ")
			sb.WriteString(p.Default.ToSCSS(""))
		}
	}
	sb.WriteString(") {\n")
	for _, n := range m.Body {
		sb.WriteString(n.ToSCSS(indent + "  "))
		sb.WriteByte('\n')
	}
	sb.WriteString(indent)
	sb.WriteByte('}')
	return sb.String()
}

type Argument struct {
	Name  string // empty for positional arguments
	Value Expr
}

type IncludeNode struct {
	Name      string
	Args      []Argument
	Line, Col int
}

func (i *IncludeNode) ToSCSS(indent string) string {
	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString("@include ")
	sb.WriteString(i.Name)
	if len(i.Args) > 0 {
		sb.WriteByte('(')
		for n, a := range i.Args {
			if n > 0 {
				sb.WriteString(", ")
			}
			if a.Name != "" {
				sb.WriteByte('$')
				sb.WriteString(a.Name)
				sb.WriteString(": ")
			}
			sb.WriteString(a.Value.ToSCSS(""))
		}
		sb.WriteByte(')')
	}
	sb.WriteByte(';')
	return sb.String()
}

type ImportNode struct {
	Path string
	// Nodes holds the parsed, import-resolved stylesheet of the referenced
	// file after resolution; the walk descends into it in place.
	Nodes     []Node
	Line, Col int
}

func (i *ImportNode) ToSCSS(indent string) string {
	return fmt.Sprintf("%s@import %q;", indent, i.Path)
}

type ExtendNode struct {
	Target    string
	Line, Col int
}

func (e *ExtendNode) ToSCSS(indent string) string {
	return indent + "@extend " + e.Target + ";"
}

type IfNode struct {
	Cond Expr // nil on a trailing @else branch
	Then []Node
	Else *IfNode
}

func (c *IfNode) ToSCSS(indent string) string {
	var sb strings.Builder
	if c.Cond != nil {
		sb.WriteString(indent)
		sb.WriteString("@if ")
		sb.WriteString(c.Cond.ToSCSS(""))
		sb.WriteString(" {\n")
	} else {
		sb.WriteString(indent)
		sb.WriteString("@else {\n")
	}
	for _, n := range c.Then {
		sb.WriteString(n.ToSCSS(indent + "  "))
		sb.WriteByte('\n')
	}
	sb.WriteString(indent)
	sb.WriteByte('}')
	if c.Else != nil {
		alt := c.Else.ToSCSS(indent)
		if c.Else.Cond != nil {
			// "@else if" reads better than "} @if"
			alt = strings.Replace(alt, "@if", "@else if", 1)
		}
		sb.WriteByte(' ')
		sb.WriteString(strings.TrimLeft(alt, " "))
	}
	return sb.String()
}

type CommentNode struct {
	Text string
}

func (c *CommentNode) ToSCSS(indent string) string {
	return indent + c.Text
}

// Loud reports whether the comment uses the /*! form that survives
// emission under CommentsLoud.
func (c *CommentNode) Loud() bool {
	return strings.HasPrefix(c.Text, "/*!")
}

// --- expressions ---

type NumberNode struct {
	Val  float64
	Unit string
}

func (n *NumberNode) Eval(env *Environment) (Value, error) {
	return Number{Val: n.Val, Unit: n.Unit}, nil
}

func (n *NumberNode) ToSCSS(indent string) string {
	return indent + formatFloat(n.Val) + n.Unit
}

type StringNode struct {
	Val string
}

func (s *StringNode) Eval(env *Environment) (Value, error) {
	if strings.Contains(s.Val, "#{") {
		out, err := interpolate(s.Val, env)
		if err != nil {
			return nil, err
		}
		return Str{Val: out, Quoted: true}, nil
	}
	return Str{Val: s.Val, Quoted: true}, nil
}

func (s *StringNode) ToSCSS(indent string) string {
	return indent + "\"" + strings.ReplaceAll(s.Val, "\"", "\\\"") + "\""
}

// interpolate substitutes #{expr} segments inside a quoted string.
func interpolate(s string, env *Environment) (string, error) {
	var result strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '#' && s[i+1] == '{' {
			j := i + 2
			depth := 1
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			if depth != 0 {
				return "", &EvalError{Message: "unmatched braces in interpolation"}
			}
			expr, err := parseExprSource(s[i+2:j-1], "interpolation")
			if err != nil {
				return "", err
			}
			val, err := expr.Eval(env)
			if err != nil {
				return "", err
			}
			if str, ok := val.(Str); ok {
				result.WriteString(str.Val)
			} else {
				result.WriteString(val.String())
			}
			i = j
		} else {
			result.WriteByte(s[i])
			i++
		}
	}
	return result.String(), nil
}

type BoolNode bool

func (b BoolNode) Eval(env *Environment) (Value, error) {
	return Bool(b), nil
}

func (b BoolNode) ToSCSS(indent string) string {
	if b {
		return indent + "true"
	}
	return indent + "false"
}

type HexColorNode struct {
	Text string
}

func (h *HexColorNode) Eval(env *Environment) (Value, error) {
	if c, ok := parseHexColor(h.Text); ok {
		return c, nil
	}
	return Literal(h.Text), nil
}

func (h *HexColorNode) ToSCSS(indent string) string {
	return indent + h.Text
}

// LiteralNode carries bare keywords (solid, auto, inherit) and opaque
// url(...) tokens through untouched.
type LiteralNode struct {
	Text string
}

func (l *LiteralNode) Eval(env *Environment) (Value, error) {
	return Literal(l.Text), nil
}

func (l *LiteralNode) ToSCSS(indent string) string {
	return indent + l.Text
}

type VarNode struct {
	Name      string
	Line, Col int
}

func (v *VarNode) Eval(env *Environment) (Value, error) {
	if val, ok := env.Lookup(v.Name); ok {
		return val, nil
	}
	return nil, &NameError{Kind: "variable", Name: "$" + v.Name, Line: v.Line, Col: v.Col}
}

func (v *VarNode) ToSCSS(indent string) string {
	return indent + "$" + v.Name
}

type UnaryNode struct {
	Op    string
	Child Expr
}

func (u *UnaryNode) Eval(env *Environment) (Value, error) {
	val, err := u.Child.Eval(env)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "-":
		n, ok := val.(Number)
		if !ok {
			return nil, &EvalError{Message: fmt.Sprintf("cannot negate %s", kindName(val))}
		}
		return Number{Val: -n.Val, Unit: n.Unit}, nil
	case "not":
		return Bool(!truthy(val)), nil
	}
	return nil, &EvalError{Message: fmt.Sprintf("unknown unary operator %s", u.Op)}
}

func (u *UnaryNode) ToSCSS(indent string) string {
	if u.Op == "not" {
		return fmt.Sprintf("%snot %s", indent, u.Child.ToSCSS(""))
	}
	return fmt.Sprintf("%s%s%s", indent, u.Op, u.Child.ToSCSS(""))
}

type BinaryNode struct {
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryNode) Eval(env *Environment) (Value, error) {
	left, err := b.Left.Eval(env)
	if err != nil {
		return nil, err
	}
	// and/or short-circuit so the unchosen side is never evaluated
	switch b.Op {
	case "and":
		if !truthy(left) {
			return Bool(false), nil
		}
		right, err := b.Right.Eval(env)
		if err != nil {
			return nil, err
		}
		return Bool(truthy(right)), nil
	case "or":
		if truthy(left) {
			return Bool(true), nil
		}
		right, err := b.Right.Eval(env)
		if err != nil {
			return nil, err
		}
		return Bool(truthy(right)), nil
	}
	right, err := b.Right.Eval(env)
	if err != nil {
		return nil, err
	}
	return applyOp(b.Op, left, right)
}

func (b *BinaryNode) ToSCSS(indent string) string {
	return fmt.Sprintf("%s%s %s %s", indent, b.Left.ToSCSS(""), b.Op, b.Right.ToSCSS(""))
}

type FuncNode struct {
	Name string
	Args []Expr
}

func (f *FuncNode) Eval(env *Environment) (Value, error) {
	fn, ok := LookupFunction(f.Name)
	if !ok {
		// plain CSS function: pass through verbatim, arguments unevaluated
		return Literal(f.ToSCSS("")), nil
	}
	args := make([]Value, 0, len(f.Args))
	for _, arg := range f.Args {
		val, err := arg.Eval(env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	res, err := fn(args...)
	if err != nil {
		return nil, &EvalError{Message: f.Name, Cause: err}
	}
	return res, nil
}

func (f *FuncNode) ToSCSS(indent string) string {
	var argsStr []string
	for _, a := range f.Args {
		argsStr = append(argsStr, a.ToSCSS(""))
	}
	return fmt.Sprintf("%s%s(%s)", indent, f.Name, strings.Join(argsStr, ", "))
}

type ListNode struct {
	Items []Expr
	Sep   string // " " or ", "
}

func (l *ListNode) Eval(env *Environment) (Value, error) {
	items := make([]Value, 0, len(l.Items))
	for _, it := range l.Items {
		val, err := it.Eval(env)
		if err != nil {
			return nil, err
		}
		items = append(items, val)
	}
	return List{Items: items, Sep: l.Sep}, nil
}

func (l *ListNode) ToSCSS(indent string) string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.ToSCSS("")
	}
	return indent + strings.Join(parts, l.Sep)
}
