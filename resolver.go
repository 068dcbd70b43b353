package sass

import (
	"fmt"
	"strings"
)

// flatRule is one emitted block: a resolved selector list and its
// declarations. A flatRule with comment set is a passed-through comment.
type flatRule struct {
	selectors []string
	decls     []declPair
	comment   string
}

type declPair struct {
	prop string
	val  string
}

// resolver performs the single coordinated walk: variable binding, mixin
// expansion, @if branch selection, selector flattening and extend
// registration all happen in one pass so mixin bodies may contain nested
// rules and extends.
type resolver struct {
	rules   []*flatRule
	extends *extendRegistry
	opts    *Options
}

func newResolver(opts *Options) *resolver {
	return &resolver{extends: newExtendRegistry(), opts: opts}
}

func (r *resolver) walk(nodes []Node, env *Environment, parents []string, current *flatRule) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case *CommentNode:
			if r.keepComment(node) {
				r.rules = append(r.rules, &flatRule{comment: node.Text})
			}

		case *AssignNode:
			if node.Default && env.defined(node.Name) {
				continue
			}
			val, err := node.Value.Eval(env)
			if err != nil {
				return err
			}
			env.define(node.Name, val)

		case *MixinNode:
			// the definition-site scope travels with the binding, never
			// the shared node: imports reuse parsed nodes across sites
			env.defineMixin(node, env)

		case *IncludeNode:
			if err := r.include(node, env, parents, current); err != nil {
				return err
			}

		case *IfNode:
			branch, err := chooseBranch(node, env)
			if err != nil {
				return err
			}
			if branch != nil {
				if err := r.walk(branch.Then, env, parents, current); err != nil {
					return err
				}
			}

		case *ImportNode:
			if err := r.walk(node.Nodes, env, parents, current); err != nil {
				return err
			}

		case *DeclarationNode:
			if current == nil {
				return &EvalError{Message: fmt.Sprintf("declaration %q outside a rule at %d:%d", node.Property, node.Line, node.Col)}
			}
			val, err := node.Value.Eval(env)
			if err != nil {
				return err
			}
			current.decls = append(current.decls, declPair{prop: node.Property, val: val.String()})

		case *ExtendNode:
			if current == nil {
				return &EvalError{Message: fmt.Sprintf("@extend outside a rule at %d:%d", node.Line, node.Col)}
			}
			r.extends.record(node.Target, current.selectors)

		case *RuleNode:
			sels, err := resolveSelectors(parents, node.Selectors)
			if err != nil {
				return err
			}
			fr := &flatRule{selectors: sels}
			r.rules = append(r.rules, fr)
			if err := r.walk(node.Body, NewEnv(env), sels, fr); err != nil {
				return err
			}

		default:
			return &EvalError{Message: fmt.Sprintf("unexpected node %T in resolution walk", n)}
		}
	}
	return nil
}

func (r *resolver) keepComment(node *CommentNode) bool {
	switch r.opts.Comments {
	case CommentsAll:
		return true
	case CommentsLoud:
		return node.Loud()
	default:
		return false
	}
}

func (r *resolver) include(node *IncludeNode, env *Environment, parents []string, current *flatRule) error {
	def, ok := env.LookupMixin(node.Name)
	if !ok {
		return &NameError{Kind: "mixin", Name: node.Name, Line: node.Line, Col: node.Col}
	}
	mixin := def.node
	bound := NewEnv(def.env)

	paramIndex := make(map[string]int, len(mixin.Params))
	for i, p := range mixin.Params {
		paramIndex[p.Name] = i
	}
	seen := make([]bool, len(mixin.Params))

	pos := 0
	for _, arg := range node.Args {
		idx := -1
		if arg.Name == "" {
			if pos >= len(mixin.Params) {
				return &ArityError{Mixin: node.Name, Expected: len(mixin.Params), Got: len(node.Args)}
			}
			idx = pos
			pos++
		} else {
			i, ok := paramIndex[arg.Name]
			if !ok {
				return &EvalError{Message: fmt.Sprintf("mixin %s has no parameter $%s", node.Name, arg.Name)}
			}
			idx = i
		}
		// arguments evaluate in the caller's scope
		val, err := arg.Value.Eval(env)
		if err != nil {
			return err
		}
		bound.define(mixin.Params[idx].Name, val)
		seen[idx] = true
	}

	for i, p := range mixin.Params {
		if seen[i] {
			continue
		}
		if p.Default == nil {
			return &ArityError{Mixin: node.Name, Expected: len(mixin.Params), Got: len(node.Args)}
		}
		// defaults evaluate in the binding scope so they may reference
		// earlier parameters
		val, err := p.Default.Eval(bound)
		if err != nil {
			return err
		}
		bound.define(p.Name, val)
	}

	return r.walk(mixin.Body, bound, parents, current)
}

// chooseBranch evaluates an @if/@else chain and returns the single branch
// whose body is spliced; unchosen branches are never evaluated.
func chooseBranch(node *IfNode, env *Environment) (*IfNode, error) {
	for branch := node; branch != nil; branch = branch.Else {
		if branch.Cond == nil {
			return branch, nil
		}
		val, err := branch.Cond.Eval(env)
		if err != nil {
			return nil, err
		}
		if truthy(val) {
			return branch, nil
		}
	}
	return nil, nil
}

// resolveSelectors combines a nested rule's selector list with the
// resolved ancestor compounds: every compound containing & has the
// ancestor substituted textually with no inserted whitespace, anything
// else is joined as a descendant.
func resolveSelectors(parents, children []string) ([]string, error) {
	if len(parents) == 0 {
		for _, c := range children {
			if strings.Contains(c, "&") {
				return nil, &EvalError{Message: fmt.Sprintf("parent selector & in top-level selector %q", c)}
			}
		}
		return append([]string{}, children...), nil
	}
	out := make([]string, 0, len(parents)*len(children))
	for _, c := range children {
		for _, a := range parents {
			if strings.Contains(c, "&") {
				out = append(out, strings.ReplaceAll(c, "&", a))
			} else {
				out = append(out, a+" "+c)
			}
		}
	}
	return out, nil
}
