package sass

import (
	"fmt"
	"strings"
)

// lexer turns source text into a flat token slice. The parser needs
// arbitrary lookahead to tell a declaration from a nested rule, so the
// whole input is tokenized up front.
type lexer struct {
	input string
	file  string
	pos   int
	line  int
	col   int
}

func newLexer(input, file string) *lexer {
	return &lexer{input: input, file: file, line: 1, col: 1}
}

func (lx *lexer) errorf(line, col int, format string, args ...any) error {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		File:    lx.file,
		Line:    line,
		Column:  col,
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c == '-' || c >= '0' && c <= '9'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (lx *lexer) peek() byte {
	if lx.pos >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos]
}

func (lx *lexer) peekAt(off int) byte {
	if lx.pos+off >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+off]
}

func (lx *lexer) advance() byte {
	c := lx.input[lx.pos]
	lx.pos++
	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return c
}

func (lx *lexer) tokenize() ([]tokenInfo, error) {
	var toks []tokenInfo
	spaced := false
	for lx.pos < len(lx.input) {
		c := lx.peek()

		// whitespace
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			lx.advance()
			spaced = true
			continue
		}

		// line comments never reach the AST
		if c == '/' && lx.peekAt(1) == '/' {
			for lx.pos < len(lx.input) && lx.peek() != '\n' {
				lx.advance()
			}
			spaced = true
			continue
		}

		line, col := lx.line, lx.col

		// block comments
		if c == '/' && lx.peekAt(1) == '*' {
			start := lx.pos
			lx.advance()
			lx.advance()
			for {
				if lx.pos >= len(lx.input) {
					return nil, lx.errorf(line, col, "unterminated comment")
				}
				if lx.peek() == '*' && lx.peekAt(1) == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
			toks = append(toks, tokenInfo{typ: COMMENT, value: lx.input[start:lx.pos], line: line, col: col, spaced: spaced})
			spaced = false
			continue
		}

		tok := tokenInfo{line: line, col: col, spaced: spaced}
		spaced = false

		switch {
		case isIdentStart(c) || c == '-' && (isIdentStart(lx.peekAt(1)) || lx.peekAt(1) == '-'):
			start := lx.pos
			lx.advance()
			for lx.pos < len(lx.input) && isIdentChar(lx.peek()) {
				lx.advance()
			}
			text := lx.input[start:lx.pos]
			if (text == "url" || text == "Url" || text == "URL") && lx.peek() == '(' {
				for lx.pos < len(lx.input) && lx.peek() != ')' {
					lx.advance()
				}
				if lx.pos >= len(lx.input) {
					return nil, lx.errorf(line, col, "unterminated url()")
				}
				lx.advance()
				tok.typ, tok.value = URL, lx.input[start:lx.pos]
			} else if text == "true" || text == "false" {
				tok.typ, tok.value = BOOL, text
			} else {
				tok.typ, tok.value = IDENT, text
			}

		case isDigit(c) || c == '.' && isDigit(lx.peekAt(1)):
			start := lx.pos
			for lx.pos < len(lx.input) && (isDigit(lx.peek()) || lx.peek() == '.') {
				lx.advance()
			}
			// unit suffix, including %
			for lx.pos < len(lx.input) && (isIdentStart(lx.peek()) || lx.peek() == '%') {
				lx.advance()
			}
			tok.typ, tok.value = NUMBER, lx.input[start:lx.pos]

		case c == '$':
			lx.advance()
			start := lx.pos
			for lx.pos < len(lx.input) && isIdentChar(lx.peek()) {
				lx.advance()
			}
			if start == lx.pos {
				return nil, lx.errorf(line, col, "expected variable name after $")
			}
			tok.typ, tok.value = VARIABLE, lx.input[start:lx.pos]

		case c == '@':
			lx.advance()
			start := lx.pos
			for lx.pos < len(lx.input) && isIdentChar(lx.peek()) {
				lx.advance()
			}
			if start == lx.pos {
				return nil, lx.errorf(line, col, "expected directive name after @")
			}
			tok.typ, tok.value = ATKEYWORD, lx.input[start:lx.pos]

		case c == '#':
			lx.advance()
			start := lx.pos
			for lx.pos < len(lx.input) && isIdentChar(lx.peek()) {
				lx.advance()
			}
			tok.typ, tok.value = HASH, "#"+lx.input[start:lx.pos]

		case c == '"' || c == '\'':
			quote := c
			lx.advance()
			var b strings.Builder
			for {
				if lx.pos >= len(lx.input) {
					return nil, lx.errorf(line, col, "unterminated string")
				}
				ch := lx.advance()
				if ch == quote {
					break
				}
				if ch == '\\' && lx.pos < len(lx.input) {
					b.WriteByte(lx.advance())
					continue
				}
				b.WriteByte(ch)
			}
			tok.typ, tok.value = STRING, b.String()

		case c == '{':
			lx.advance()
			tok.typ, tok.value = LBRACE, "{"
		case c == '}':
			lx.advance()
			tok.typ, tok.value = RBRACE, "}"
		case c == '(':
			lx.advance()
			tok.typ, tok.value = LPAREN, "("
		case c == ')':
			lx.advance()
			tok.typ, tok.value = RPAREN, ")"
		case c == ':':
			lx.advance()
			tok.typ, tok.value = COLON, ":"
		case c == ';':
			lx.advance()
			tok.typ, tok.value = SEMI, ";"
		case c == ',':
			lx.advance()
			tok.typ, tok.value = COMMA, ","
		case c == '&':
			lx.advance()
			tok.typ, tok.value = AMP, "&"

		case c == '=' && lx.peekAt(1) == '=':
			lx.advance()
			lx.advance()
			tok.typ, tok.value = OPERATOR, "=="
		case c == '!' && lx.peekAt(1) == '=':
			lx.advance()
			lx.advance()
			tok.typ, tok.value = OPERATOR, "!="
		case c == '<':
			lx.advance()
			if lx.peek() == '=' {
				lx.advance()
				tok.typ, tok.value = OPERATOR, "<="
			} else {
				tok.typ, tok.value = OPERATOR, "<"
			}
		case c == '>':
			lx.advance()
			if lx.peek() == '=' {
				lx.advance()
				tok.typ, tok.value = OPERATOR, ">="
			} else {
				tok.typ, tok.value = OPERATOR, ">"
			}
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '!':
			lx.advance()
			tok.typ, tok.value = OPERATOR, string(c)

		default:
			lx.advance()
			tok.typ, tok.value = DELIM, string(c)
		}
		toks = append(toks, tok)
	}
	toks = append(toks, tokenInfo{typ: EOF, line: lx.line, col: lx.col, spaced: spaced})
	return toks, nil
}
