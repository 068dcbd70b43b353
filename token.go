package sass

type Token int

const (
	EOF Token = iota
	IDENT
	STRING
	NUMBER
	HASH
	VARIABLE
	ATKEYWORD
	URL
	BOOL
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	COLON
	SEMI
	COMMA
	AMP
	OPERATOR
	DELIM
	COMMENT
)

var tokenNames = map[Token]string{
	EOF:       "end of input",
	IDENT:     "identifier",
	STRING:    "string",
	NUMBER:    "number",
	HASH:      "hash",
	VARIABLE:  "variable",
	ATKEYWORD: "directive",
	URL:       "url",
	BOOL:      "boolean",
	LBRACE:    "'{'",
	RBRACE:    "'}'",
	LPAREN:    "'('",
	RPAREN:    "')'",
	COLON:     "':'",
	SEMI:      "';'",
	COMMA:     "','",
	AMP:       "'&'",
	OPERATOR:  "operator",
	DELIM:     "delimiter",
	COMMENT:   "comment",
}

func (t Token) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "unknown token"
}

type tokenInfo struct {
	typ    Token
	value  string
	line   int
	col    int
	spaced bool // preceded by whitespace; selector text is rebuilt from this
}

// mixinDef is one @mixin binding: the declaration and the scope
// enclosing it. The scope lives on the binding rather than the node so
// a file imported at several sites yields an independent binding per
// site, each closing over its own definition scope.
type mixinDef struct {
	node *MixinNode
	env  *Environment
}

type Environment struct {
	vars   map[string]Value
	mixins map[string]mixinDef
	parent *Environment
}

func NewEnv(parent *Environment) *Environment {
	return &Environment{
		vars:   make(map[string]Value),
		mixins: make(map[string]mixinDef),
		parent: parent,
	}
}

func (env *Environment) Lookup(name string) (Value, bool) {
	if v, ok := env.vars[name]; ok {
		return v, true
	}
	if env.parent != nil {
		return env.parent.Lookup(name)
	}
	return nil, false
}

func (env *Environment) LookupMixin(name string) (mixinDef, bool) {
	if m, ok := env.mixins[name]; ok {
		return m, true
	}
	if env.parent != nil {
		return env.parent.LookupMixin(name)
	}
	return mixinDef{}, false
}

func (env *Environment) define(name string, val Value) {
	env.vars[name] = val
}

func (env *Environment) defined(name string) bool {
	_, ok := env.Lookup(name)
	return ok
}

func (env *Environment) defineMixin(m *MixinNode, defSite *Environment) {
	env.mixins[m.Name] = mixinDef{node: m, env: defSite}
}

var operatorPrecedence = map[string]int{
	"or":  1,
	"and": 2,
	"==":  3,
	"!=":  3,
	"<":   3,
	"<=":  3,
	">":   3,
	">=":  3,
	"+":   4,
	"-":   4,
	"*":   5,
	"/":   5,
}

func getPrecedence(op string) int {
	if prec, ok := operatorPrecedence[op]; ok {
		return prec
	}
	return 0
}
