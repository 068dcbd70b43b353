package sass

import (
	"fmt"
	"strings"
)

type Parser struct {
	toks []tokenInfo
	pos  int
	file string
}

func NewParser(input string) (*Parser, error) {
	return NewParserFile(input, "input.scss")
}

func NewParserFile(input, file string) (*Parser, error) {
	toks, err := newLexer(input, file).tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks, file: file}, nil
}

// parseExprSource parses a standalone expression, used for string
// interpolation segments.
func parseExprSource(src, file string) (Expr, error) {
	p, err := NewParserFile(src, file)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.curr().typ != EOF {
		return nil, p.errorf(p.curr(), "unexpected %s after expression", p.curr().typ)
	}
	return expr, nil
}

func (p *Parser) curr() tokenInfo {
	return p.toks[p.pos]
}

func (p *Parser) peek(off int) tokenInfo {
	if p.pos+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+off]
}

func (p *Parser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *Parser) errorf(tok tokenInfo, format string, args ...any) error {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		File:    p.file,
		Line:    tok.line,
		Column:  tok.col,
	}
}

func (p *Parser) expect(typ Token) (tokenInfo, error) {
	if p.curr().typ != typ {
		return tokenInfo{}, p.errorf(p.curr(), "expected %s but got %s (%q)", typ, p.curr().typ, p.curr().value)
	}
	tok := p.curr()
	p.next()
	return tok, nil
}

func (p *Parser) Parse() ([]Node, error) {
	var nodes []Node
	for p.curr().typ != EOF {
		node, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (p *Parser) parseStatement() (Node, error) {
	switch p.curr().typ {
	case COMMENT:
		node := &CommentNode{Text: p.curr().value}
		p.next()
		return node, nil
	case ATKEYWORD:
		return p.parseDirective()
	case VARIABLE:
		return p.parseAssignment()
	case SEMI:
		// stray semicolon
		p.next()
		return nil, nil
	}
	if p.declarationAhead() {
		return p.parseDeclaration()
	}
	return p.parseRule()
}

// declarationAhead scans forward to the first of ';', '{' or '}' outside
// parentheses: a '{' means the prelude is a selector, anything else means
// a declaration. Selectors may contain ':' so the colon cannot decide.
func (p *Parser) declarationAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].typ {
		case LPAREN:
			depth++
		case RPAREN:
			depth--
		case SEMI:
			if depth == 0 {
				return true
			}
		case LBRACE:
			if depth == 0 {
				return false
			}
		case RBRACE, EOF:
			return true
		}
	}
	return true
}

func (p *Parser) parseDirective() (Node, error) {
	tok := p.curr()
	switch tok.value {
	case "import":
		return p.parseImport()
	case "mixin":
		return p.parseMixin()
	case "include":
		return p.parseInclude()
	case "extend":
		return p.parseExtend()
	case "if":
		return p.parseIf()
	case "else":
		return nil, p.errorf(tok, "@else without preceding @if")
	}
	return nil, p.errorf(tok, "unsupported directive @%s", tok.value)
}

func (p *Parser) parseImport() (Node, error) {
	tok := p.curr()
	p.next()
	path, err := p.expect(STRING)
	if err != nil {
		return nil, err
	}
	p.eatSemi()
	return &ImportNode{Path: path.value, Line: tok.line, Col: tok.col}, nil
}

func (p *Parser) parseMixin() (Node, error) {
	tok := p.curr()
	p.next()
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	var params []Param
	if p.curr().typ == LPAREN {
		p.next()
		for p.curr().typ != RPAREN && p.curr().typ != EOF {
			pname, err := p.expect(VARIABLE)
			if err != nil {
				return nil, err
			}
			param := Param{Name: pname.value}
			if p.curr().typ == COLON {
				p.next()
				def, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				param.Default = def
			}
			params = append(params, param)
			if p.curr().typ == COMMA {
				p.next()
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &MixinNode{Name: name.value, Params: params, Body: body, Line: tok.line, Col: tok.col}, nil
}

func (p *Parser) parseInclude() (Node, error) {
	tok := p.curr()
	p.next()
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	var args []Argument
	if p.curr().typ == LPAREN {
		p.next()
		for p.curr().typ != RPAREN && p.curr().typ != EOF {
			var arg Argument
			if p.curr().typ == VARIABLE && p.peek(1).typ == COLON {
				arg.Name = p.curr().value
				p.next()
				p.next()
			}
			val, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			arg.Value = val
			args = append(args, arg)
			if p.curr().typ == COMMA {
				p.next()
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}
	p.eatSemi()
	return &IncludeNode{Name: name.value, Args: args, Line: tok.line, Col: tok.col}, nil
}

func (p *Parser) parseExtend() (Node, error) {
	tok := p.curr()
	p.next()
	target := p.selectorText(func(t tokenInfo) bool {
		return t.typ == SEMI || t.typ == RBRACE
	})
	if target == "" {
		return nil, p.errorf(tok, "expected selector after @extend")
	}
	p.eatSemi()
	return &ExtendNode{Target: target, Line: tok.line, Col: tok.col}, nil
}

func (p *Parser) parseIf() (Node, error) {
	p.next() // consume "if"
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &IfNode{Cond: cond, Then: body}
	if p.curr().typ == ATKEYWORD && p.curr().value == "else" {
		p.next()
		if p.curr().typ == IDENT && p.curr().value == "if" {
			alt, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			node.Else = alt.(*IfNode)
			return node, nil
		}
		altBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Else = &IfNode{Then: altBody}
	}
	return node, nil
}

func (p *Parser) parseAssignment() (Node, error) {
	tok := p.curr()
	p.next()
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	node := &AssignNode{Name: tok.value, Value: val, Line: tok.line, Col: tok.col}
	if p.curr().typ == OPERATOR && p.curr().value == "!" &&
		p.peek(1).typ == IDENT && p.peek(1).value == "default" {
		p.next()
		p.next()
		node.Default = true
	}
	p.eatSemi()
	return node, nil
}

func (p *Parser) parseDeclaration() (Node, error) {
	prop, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.eatSemi()
	return &DeclarationNode{Property: prop.value, Value: val, Line: prop.line, Col: prop.col}, nil
}

func (p *Parser) parseRule() (Node, error) {
	tok := p.curr()
	var selectors []string
	for {
		sel := p.selectorText(func(t tokenInfo) bool {
			return t.typ == COMMA || t.typ == LBRACE || t.typ == RBRACE || t.typ == SEMI
		})
		if sel == "" {
			return nil, p.errorf(p.curr(), "expected selector, got %s (%q)", p.curr().typ, p.curr().value)
		}
		selectors = append(selectors, sel)
		if p.curr().typ != COMMA {
			break
		}
		p.next()
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &RuleNode{Selectors: selectors, Body: body, Line: tok.line, Col: tok.col}, nil
}

func (p *Parser) parseBlock() ([]Node, error) {
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	var body []Node
	for p.curr().typ != RBRACE && p.curr().typ != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return body, nil
}

// selectorText rebuilds raw selector text from tokens until stop returns
// true, reinserting single spaces where the source had whitespace.
func (p *Parser) selectorText(stop func(tokenInfo) bool) string {
	var sb strings.Builder
	for p.curr().typ != EOF && !stop(p.curr()) {
		tok := p.curr()
		if tok.spaced && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(rawTokenText(tok))
		p.next()
	}
	return strings.TrimSpace(sb.String())
}

func rawTokenText(tok tokenInfo) string {
	switch tok.typ {
	case STRING:
		return "\"" + strings.ReplaceAll(tok.value, "\"", "\\\"") + "\""
	case VARIABLE:
		return "$" + tok.value
	case ATKEYWORD:
		return "@" + tok.value
	default:
		return tok.value
	}
}

func (p *Parser) eatSemi() {
	if p.curr().typ == SEMI {
		p.next()
	}
}

// parseValue parses a declaration value: a comma-separated list of
// space-separated expression lists. Raw CSS such as "1px solid #ccc" or
// "Arial, sans-serif" round-trips through this unharmed.
func (p *Parser) parseValue() (Expr, error) {
	first, err := p.parseSpaceList()
	if err != nil {
		return nil, err
	}
	if p.curr().typ != COMMA {
		return first, nil
	}
	items := []Expr{first}
	for p.curr().typ == COMMA {
		p.next()
		item, err := p.parseSpaceList()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &ListNode{Items: items, Sep: ", "}, nil
}

func (p *Parser) parseSpaceList() (Expr, error) {
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	items := []Expr{first}
	for !p.valueEnds() {
		// !important and friends
		if p.curr().typ == OPERATOR && p.curr().value == "!" && p.peek(1).typ == IDENT {
			items = append(items, &LiteralNode{Text: "!" + p.peek(1).value})
			p.next()
			p.next()
			continue
		}
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 1 {
		return first, nil
	}
	return &ListNode{Items: items, Sep: " "}, nil
}

func (p *Parser) valueEnds() bool {
	switch p.curr().typ {
	case SEMI, RBRACE, COMMA, RPAREN, EOF:
		return true
	case OPERATOR:
		if p.curr().value != "!" {
			return false
		}
		// !default belongs to the assignment, not the value
		return p.peek(1).typ != IDENT || p.peek(1).value == "default"
	}
	return false
}

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseBinaryExpr(0)
}

func (p *Parser) parseBinaryExpr(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, isOp := p.binaryOp(p.curr())
		if !isOp {
			break
		}
		prec := getPrecedence(op)
		if prec < minPrec || prec == 0 {
			break
		}
		p.next()
		right, err := p.parseBinaryExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) binaryOp(tok tokenInfo) (string, bool) {
	switch tok.typ {
	case OPERATOR:
		if tok.value == "!" {
			return "", false
		}
		// "0 -2px" is a two-item list, "0 - 2px" and "0-2px" subtract
		if tok.value == "-" && tok.spaced && !p.peek(1).spaced {
			return "", false
		}
		return tok.value, true
	case IDENT:
		if tok.value == "and" || tok.value == "or" {
			return tok.value, true
		}
	}
	return "", false
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.curr().typ == OPERATOR && p.curr().value == "-" {
		p.next()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: "-", Child: child}, nil
	}
	if p.curr().typ == IDENT && p.curr().value == "not" {
		p.next()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: "not", Child: child}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.curr()
	switch tok.typ {
	case NUMBER:
		p.next()
		val, unit, err := splitNumber(tok.value)
		if err != nil {
			return nil, p.errorf(tok, "malformed number %q", tok.value)
		}
		return &NumberNode{Val: val, Unit: unit}, nil
	case STRING:
		p.next()
		return &StringNode{Val: tok.value}, nil
	case BOOL:
		p.next()
		return BoolNode(tok.value == "true"), nil
	case HASH:
		p.next()
		return &HexColorNode{Text: tok.value}, nil
	case URL:
		p.next()
		return &LiteralNode{Text: tok.value}, nil
	case VARIABLE:
		p.next()
		return &VarNode{Name: tok.value, Line: tok.line, Col: tok.col}, nil
	case IDENT:
		p.next()
		if p.curr().typ == LPAREN && !p.curr().spaced {
			p.next()
			var args []Expr
			for p.curr().typ != RPAREN && p.curr().typ != EOF {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.curr().typ == COMMA {
					p.next()
				}
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			return &FuncNode{Name: tok.value, Args: args}, nil
		}
		return &LiteralNode{Text: tok.value}, nil
	case LPAREN:
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorf(tok, "unexpected %s (%q) in expression", tok.typ, tok.value)
}
