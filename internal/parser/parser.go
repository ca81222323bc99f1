// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parser turns sift expression source into a syntax tree.
//
// The grammar is a single Python-style expression. Binary operators are
// parsed by precedence climbing; everything else is recursive descent.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"nickandperla.net/sift/internal/expr"
	"nickandperla.net/sift/internal/scanner"
	"nickandperla.net/sift/internal/token"
	"nickandperla.net/sift/internal/value"
)

// maxDepth bounds nesting so pathological input cannot exhaust the stack.
const maxDepth = 200

// Error is a syntax error at a byte offset.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

type parser struct {
	toks  []*scanner.Item
	i     int
	base  int // offset added to positions (f-string fields)
	depth int
}

// Parse parses src as one expression.
func Parse(src string) (expr.Expr, error) {
	return parseAt(src, 0)
}

func parseAt(src string, base int) (expr.Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &Error{Pos: base, Msg: "empty expression"}
	}
	sc := scanner.NewFromString(src)
	p := &parser{base: base}
	for {
		item, err := sc.Next()
		if err != nil {
			if se, ok := err.(*scanner.Error); ok {
				return nil, &Error{Pos: base + se.Pos, Msg: se.Msg}
			}
			return nil, err
		}
		item.Pos += base
		p.toks = append(p.toks, item)
		if item.Token == token.EOF {
			break
		}
	}

	e, err := p.exprList()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Token != token.EOF {
		return nil, p.unexpected(tok)
	}
	return e, nil
}

func (p *parser) peek() *scanner.Item { return p.toks[p.i] }

func (p *parser) peekAt(n int) *scanner.Item {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() *scanner.Item {
	tok := p.toks[p.i]
	if tok.Token != token.EOF {
		p.i++
	}
	return tok
}

func (p *parser) match(t token.Token) bool {
	if p.peek().Token == t {
		p.next()
		return true
	}
	return false
}

func (p *parser) need(t token.Token) (*scanner.Item, error) {
	tok := p.peek()
	if tok.Token != t {
		return nil, &Error{Pos: tok.Pos, Msg: fmt.Sprintf("expected %s, found %s", t, describe(tok))}
	}
	return p.next(), nil
}

func (p *parser) unexpected(tok *scanner.Item) error {
	if tok.Token == token.EOF {
		return &Error{Pos: tok.Pos, Msg: "unexpected end of expression"}
	}
	return &Error{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", describe(tok))}
}

func describe(tok *scanner.Item) string {
	switch tok.Token {
	case token.EOF:
		return "end of expression"
	case token.NAME:
		return fmt.Sprintf("name %q", tok.Value)
	case token.INT, token.FLOAT:
		return fmt.Sprintf("number %s", tok.Value)
	case token.STRING, token.FSTRING:
		return "string literal"
	}
	return fmt.Sprintf("%q", tok.Token.String())
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return &Error{Pos: p.peek().Pos, Msg: "expression nested too deeply"}
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// exprList parses a top-level expression, where a bare comma builds a tuple.
func (p *parser) exprList() (expr.Expr, error) {
	start := p.peek().Pos
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.peek().Token != token.COMMA {
		return first, nil
	}
	elems := []expr.Expr{first}
	for p.match(token.COMMA) {
		if p.peek().Token == token.EOF {
			break
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &expr.Tuple{At: start, Elems: elems}, nil
}

// expr parses a conditional expression.
func (p *parser) expr() (expr.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if tok := p.peek(); tok.Token == token.LAMBDA {
		return nil, &Error{Pos: tok.Pos, Msg: "lambda is not supported"}
	}
	body, err := p.orExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().Token != token.IF {
		return body, nil
	}
	p.next()
	test, err := p.orExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(token.ELSE); err != nil {
		return nil, err
	}
	orElse, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &expr.Cond{At: body.Pos(), Body: body, Test: test, Else: orElse}, nil
}

func (p *parser) orExpr() (expr.Expr, error) {
	x, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Token == token.OR {
		p.next()
		y, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		x = &expr.BoolOp{At: x.Pos(), Op: token.OR, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) andExpr() (expr.Expr, error) {
	x, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Token == token.AND {
		p.next()
		y, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		x = &expr.BoolOp{At: x.Pos(), Op: token.AND, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) notExpr() (expr.Expr, error) {
	if tok := p.peek(); tok.Token == token.NOT {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &expr.Unary{At: tok.Pos, Op: token.NOT, X: x}, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (expr.Expr, error) {
	first, err := p.binary(1)
	if err != nil {
		return nil, err
	}
	cmp := &expr.Compare{At: first.Pos(), First: first}
	for {
		op, ok := p.cmpOp()
		if !ok {
			break
		}
		y, err := p.binary(1)
		if err != nil {
			return nil, err
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Rest = append(cmp.Rest, y)
	}
	if len(cmp.Ops) == 0 {
		return first, nil
	}
	return cmp, nil
}

func (p *parser) cmpOp() (expr.CmpOp, bool) {
	switch p.peek().Token {
	case token.EQ:
		p.next()
		return expr.CmpEq, true
	case token.NE:
		p.next()
		return expr.CmpNe, true
	case token.LT:
		p.next()
		return expr.CmpLt, true
	case token.LE:
		p.next()
		return expr.CmpLe, true
	case token.GT:
		p.next()
		return expr.CmpGt, true
	case token.GE:
		p.next()
		return expr.CmpGe, true
	case token.IN:
		p.next()
		return expr.CmpIn, true
	case token.NOT:
		if p.peekAt(1).Token == token.IN {
			p.next()
			p.next()
			return expr.CmpNotIn, true
		}
	case token.IS:
		p.next()
		if p.match(token.NOT) {
			return expr.CmpIsNot, true
		}
		return expr.CmpIs, true
	}
	return 0, false
}

// binaryPrec returns the precedence of an arithmetic operator, or 0.
func binaryPrec(t token.Token) int {
	switch t {
	case token.PLUS, token.MINUS:
		return 1
	case token.STAR, token.SLASH, token.DSLASH, token.PERCENT:
		return 2
	}
	return 0
}

// binary parses left-associative arithmetic at or above minPrec.
func (p *parser) binary(minPrec int) (expr.Expr, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().Token
		prec := binaryPrec(op)
		if prec == 0 || prec < minPrec {
			return x, nil
		}
		p.next()
		y, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		x = &expr.Binary{At: x.Pos(), Op: op, X: x, Y: y}
	}
}

func (p *parser) unary() (expr.Expr, error) {
	tok := p.peek()
	if tok.Token == token.MINUS || tok.Token == token.PLUS {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &expr.Unary{At: tok.Pos, Op: tok.Token, X: x}, nil
	}
	return p.power()
}

// power parses x ** y, which binds tighter than a unary minus on its left
// and is right-associative.
func (p *parser) power() (expr.Expr, error) {
	x, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.peek().Token != token.POW {
		return x, nil
	}
	p.next()
	y, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &expr.Binary{At: x.Pos(), Op: token.POW, X: x, Y: y}, nil
}

func (p *parser) postfix() (expr.Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Token {
		case token.LBRACKET:
			p.next()
			x, err = p.subscript(x)
		case token.DOT:
			p.next()
			x, err = p.method(x)
		case token.LPAREN:
			return nil, &Error{Pos: p.peek().Pos, Msg: "only builtins and methods can be called"}
		default:
			return x, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) subscript(x expr.Expr) (expr.Expr, error) {
	var bounds [3]expr.Expr
	colons := 0
	for {
		switch p.peek().Token {
		case token.COLON:
			p.next()
			colons++
			if colons > 2 {
				return nil, &Error{Pos: p.toks[p.i-1].Pos, Msg: "too many ':' in slice"}
			}
			continue
		case token.RBRACKET:
		default:
			if bounds[colons] != nil {
				return nil, p.unexpected(p.peek())
			}
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			bounds[colons] = e
			continue
		}
		break
	}
	if _, err := p.need(token.RBRACKET); err != nil {
		return nil, err
	}
	if colons == 0 {
		if bounds[0] == nil {
			return nil, &Error{Pos: x.Pos(), Msg: "empty subscript"}
		}
		return &expr.Index{At: x.Pos(), X: x, Index: bounds[0]}, nil
	}
	return &expr.Slice{At: x.Pos(), X: x, Lo: bounds[0], Hi: bounds[1], Step: bounds[2]}, nil
}

func (p *parser) method(recv expr.Expr) (expr.Expr, error) {
	name, err := p.need(token.NAME)
	if err != nil {
		return nil, err
	}
	if p.peek().Token != token.LPAREN {
		return nil, &Error{Pos: name.Pos, Msg: fmt.Sprintf("attribute %q must be called as a method", name.Value)}
	}
	p.next()
	args, kwargs, err := p.callArgs()
	if err != nil {
		return nil, err
	}
	return &expr.MethodCall{At: recv.Pos(), Recv: recv, Method: name.Value, Args: args, Kwargs: kwargs}, nil
}

// callArgs parses arguments after '(' through the closing ')'.
func (p *parser) callArgs() ([]expr.Expr, []expr.Keyword, error) {
	var args []expr.Expr
	var kwargs []expr.Keyword
	for p.peek().Token != token.RPAREN {
		if p.peek().Token == token.NAME && p.peekAt(1).Token == token.ASSIGN {
			name := p.next()
			p.next()
			v, err := p.expr()
			if err != nil {
				return nil, nil, err
			}
			for _, k := range kwargs {
				if k.Name == name.Value {
					return nil, nil, &Error{Pos: name.Pos, Msg: fmt.Sprintf("keyword argument %q repeated", name.Value)}
				}
			}
			kwargs = append(kwargs, expr.Keyword{Name: name.Value, Value: v})
		} else {
			if len(kwargs) > 0 {
				return nil, nil, &Error{Pos: p.peek().Pos, Msg: "positional argument follows keyword argument"}
			}
			v, err := p.expr()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, v)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.need(token.RPAREN); err != nil {
		return nil, nil, err
	}
	return args, kwargs, nil
}

func (p *parser) primary() (expr.Expr, error) {
	tok := p.peek()
	switch tok.Token {
	case token.NAME:
		p.next()
		if p.peek().Token == token.LPAREN {
			p.next()
			args, kwargs, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			return &expr.Call{At: tok.Pos, Func: tok.Value, Args: args, Kwargs: kwargs}, nil
		}
		return &expr.Name{At: tok.Pos, Ident: tok.Value}, nil
	case token.INT:
		p.next()
		digits := strings.ReplaceAll(tok.Value, "_", "")
		if len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" && !strings.ContainsAny(digits[1:2], "xXoObB") {
			return nil, &Error{Pos: tok.Pos, Msg: "leading zeros in decimal integer literals are not permitted"}
		}
		n, err := strconv.ParseInt(digits, 0, 64)
		if err != nil {
			return nil, &Error{Pos: tok.Pos, Msg: fmt.Sprintf("invalid integer literal %s", tok.Value)}
		}
		return &expr.Const{At: tok.Pos, Value: value.Int(n)}, nil
	case token.FLOAT:
		p.next()
		f, err := strconv.ParseFloat(strings.ReplaceAll(tok.Value, "_", ""), 64)
		if err != nil {
			return nil, &Error{Pos: tok.Pos, Msg: fmt.Sprintf("invalid float literal %s", tok.Value)}
		}
		return &expr.Const{At: tok.Pos, Value: value.Float(f)}, nil
	case token.STRING, token.FSTRING:
		return p.stringLit()
	case token.NONE:
		p.next()
		return &expr.Const{At: tok.Pos, Value: value.None}, nil
	case token.TRUE:
		p.next()
		return &expr.Const{At: tok.Pos, Value: value.Bool(true)}, nil
	case token.FALSE:
		p.next()
		return &expr.Const{At: tok.Pos, Value: value.Bool(false)}, nil
	case token.LPAREN:
		p.next()
		return p.parenthesized(tok.Pos)
	case token.LBRACKET:
		p.next()
		return p.listOrComp(tok.Pos)
	}
	return nil, p.unexpected(tok)
}

// stringLit parses one or more adjacent string literals, concatenating them.
func (p *parser) stringLit() (expr.Expr, error) {
	start := p.peek().Pos
	var parts []expr.FPart
	formatted := false
	for {
		tok := p.peek()
		if tok.Token != token.STRING && tok.Token != token.FSTRING {
			break
		}
		p.next()
		if tok.Token == token.STRING {
			parts = append(parts, expr.FPart{Lit: tok.Value})
			continue
		}
		formatted = true
		fp, err := parseFString(tok)
		if err != nil {
			return nil, err
		}
		parts = append(parts, fp...)
	}
	if !formatted {
		var sb strings.Builder
		for _, part := range parts {
			sb.WriteString(part.Lit)
		}
		return &expr.Const{At: start, Value: value.Str(sb.String())}, nil
	}
	return &expr.FString{At: start, Parts: mergeLits(parts)}, nil
}

func mergeLits(parts []expr.FPart) []expr.FPart {
	var out []expr.FPart
	for _, part := range parts {
		if part.Expr == nil && len(out) > 0 && out[len(out)-1].Expr == nil {
			out[len(out)-1].Lit += part.Lit
			continue
		}
		if part.Expr == nil && part.Lit == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (p *parser) parenthesized(start int) (expr.Expr, error) {
	if p.match(token.RPAREN) {
		return &expr.Tuple{At: start}, nil
	}
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.match(token.RPAREN) {
		return first, nil
	}
	if p.peek().Token != token.COMMA {
		return nil, &Error{Pos: p.peek().Pos, Msg: fmt.Sprintf("expected ')', found %s", describe(p.peek()))}
	}
	elems := []expr.Expr{first}
	for p.match(token.COMMA) {
		if p.peek().Token == token.RPAREN {
			break
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.need(token.RPAREN); err != nil {
		return nil, err
	}
	return &expr.Tuple{At: start, Elems: elems}, nil
}

func (p *parser) listOrComp(start int) (expr.Expr, error) {
	if p.match(token.RBRACKET) {
		return &expr.List{At: start}, nil
	}
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.peek().Token == token.FOR {
		return p.comprehension(start, first)
	}
	elems := []expr.Expr{first}
	for p.match(token.COMMA) {
		if p.peek().Token == token.RBRACKET {
			break
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.need(token.RBRACKET); err != nil {
		return nil, err
	}
	return &expr.List{At: start, Elems: elems}, nil
}

func (p *parser) comprehension(start int, elem expr.Expr) (expr.Expr, error) {
	p.next() // for
	name, err := p.need(token.NAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.orExpr()
	if err != nil {
		return nil, err
	}
	comp := &expr.Comp{At: start, Elem: elem, Var: name.Value, Iter: iter}
	if p.match(token.IF) {
		cond, err := p.orExpr()
		if err != nil {
			return nil, err
		}
		comp.Cond = cond
	}
	if p.peek().Token == token.FOR {
		return nil, &Error{Pos: p.peek().Pos, Msg: "nested comprehension loops are not supported"}
	}
	if _, err := p.need(token.RBRACKET); err != nil {
		return nil, err
	}
	return comp, nil
}
