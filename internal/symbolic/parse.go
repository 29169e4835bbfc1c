package symbolic

import (
	"errors"
	"fmt"
	"math/big"
)

// ============================================================
// Parser
// ============================================================

// ErrSyntax is wrapped by every error Parse returns.
var ErrSyntax = errors.New("symbolic: syntax error")

// SyntaxError locates a parse failure in the source text.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("symbolic: %s at offset %d", e.Msg, e.Pos) }
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

const maxParseDepth = 256

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokName
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i+1 < len(src) && src[i] == '.' && isDigit(src[i+1]) {
				i++
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			toks = append(toks, token{kind: tokNum, text: src[start:i], pos: start})
		case isLetter(c):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, token{kind: tokName, text: src[start:i], pos: start})
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

type parser struct {
	toks  []token
	pos   int
	depth int
	table *Table
}

// Parse reads an infix expression. Adjacent operands multiply, so 2x,
// 2(x+1), (x+1)(x-1) and x sin(x) are products; ^ and ** are powers.
// Function names must be followed by a parenthesised argument.
func Parse(src string, table *Table) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, table: table}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxParseDepth {
		return &SyntaxError{Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// expr := term {(+|-) term}
func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if t.text == "+" {
			left = AddOf(left, right)
		} else {
			left = Subtract(left, right)
		}
	}
}

// term := unary {(*|/) unary | power}
func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokOp && (t.text == "*" || t.text == "/"):
			p.next()
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			if t.text == "*" {
				left = MulOf(left, right)
			} else {
				left = Divide(left, right)
			}
		case t.kind == tokNum || t.kind == tokName || t.kind == tokLParen:
			right, err := p.power()
			if err != nil {
				return nil, err
			}
			left = MulOf(left, right)
		default:
			return left, nil
		}
	}
}

// unary := (-|+) unary | power
func (p *parser) unary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return MulOf(N(-1), operand), nil
		}
		return operand, nil
	}
	return p.power()
}

// power := primary [^ unary]
func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp && t.text == "^" {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

// primary := NUM | NAME ['(' expr ')'] | '(' expr ')'
func (p *parser) primary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	t := p.next()
	switch t.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("bad number %q", t.text)}
		}
		return &Num{val: r}, nil
	case tokName:
		if fn, ok := p.table.Func(t.text); ok {
			if p.peek().kind != tokLParen {
				return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("function %s needs a parenthesised argument", t.text)}
			}
			arg, err := p.group()
			if err != nil {
				return nil, err
			}
			return fn(arg), nil
		}
		if p.peek().kind == tokLParen && !p.table.Known(t.text) {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown function %s", t.text)}
		}
		return p.table.Symbol(t.text), nil
	case tokLParen:
		p.pos--
		return p.group()
	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of input"}
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

func (p *parser) group() (Expr, error) {
	open := p.next()
	if open.kind != tokLParen {
		return nil, &SyntaxError{Pos: open.pos, Msg: "expected ("}
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.next(); t.kind != tokRParen {
		return nil, &SyntaxError{Pos: t.pos, Msg: "expected )"}
	}
	return e, nil
}
