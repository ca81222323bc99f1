// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr defines sift expression syntax trees.
package expr

import (
	"strings"

	"nickandperla.net/sift/internal/token"
	"nickandperla.net/sift/internal/value"
)

// Expr is the interface all expression nodes implement.
type Expr interface {
	// Pos returns the byte offset where the node starts in the source.
	Pos() int
	// String returns a source-like rendering of the node.
	String() string
}

// Name refers to a bound name (s, i, f or a comprehension variable).
type Name struct {
	At    int
	Ident string
}

// Const is a literal scalar.
type Const struct {
	At    int
	Value value.Value
}

// FString is an f-string literal.
type FString struct {
	At    int
	Parts []FPart
}

// FPart is one piece of an f-string: literal text, or a replacement field
// when Expr is non-nil.
type FPart struct {
	Lit  string
	Expr Expr
	Conv byte   // 0, 'r' or 's'
	Spec string // format spec after ':'
}

// List is a list display.
type List struct {
	At    int
	Elems []Expr
}

// Tuple is a tuple display.
type Tuple struct {
	At    int
	Elems []Expr
}

// Unary is a prefix operator: -, + or not.
type Unary struct {
	At int
	Op token.Token
	X  Expr
}

// Binary is an arithmetic operator.
type Binary struct {
	At   int
	Op   token.Token
	X, Y Expr
}

// BoolOp is a short-circuit and/or.
type BoolOp struct {
	At   int
	Op   token.Token
	X, Y Expr
}

// CmpOp is one comparison operator in a chain.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
	CmpIn
	CmpNotIn
	CmpIs
	CmpIsNot
)

var cmpNames = [...]string{"==", "!=", "<", "<=", ">", ">=", "in", "not in", "is", "is not"}

func (op CmpOp) String() string { return cmpNames[op] }

// Compare is a comparison chain: First Ops[0] Rest[0] Ops[1] Rest[1] ...
type Compare struct {
	At    int
	First Expr
	Ops   []CmpOp
	Rest  []Expr
}

// Cond is a conditional expression: Body if Test else Else.
type Cond struct {
	At               int
	Body, Test, Else Expr
}

// Index is a subscript X[Index].
type Index struct {
	At       int
	X, Index Expr
}

// Slice is X[Lo:Hi:Step]; any bound may be nil.
type Slice struct {
	At           int
	X            Expr
	Lo, Hi, Step Expr
}

// Keyword is a keyword argument.
type Keyword struct {
	Name  string
	Value Expr
}

// Call invokes a builtin by name.
type Call struct {
	At     int
	Func   string
	Args   []Expr
	Kwargs []Keyword
}

// MethodCall invokes a method on Recv.
type MethodCall struct {
	At     int
	Recv   Expr
	Method string
	Args   []Expr
	Kwargs []Keyword
}

// Comp is a list comprehension [Elem for Var in Iter if Cond].
type Comp struct {
	At   int
	Elem Expr
	Var  string
	Iter Expr
	Cond Expr // may be nil
}

func (n *Name) Pos() int       { return n.At }
func (n *Const) Pos() int      { return n.At }
func (n *FString) Pos() int    { return n.At }
func (n *List) Pos() int       { return n.At }
func (n *Tuple) Pos() int      { return n.At }
func (n *Unary) Pos() int      { return n.At }
func (n *Binary) Pos() int     { return n.At }
func (n *BoolOp) Pos() int     { return n.At }
func (n *Compare) Pos() int    { return n.At }
func (n *Cond) Pos() int       { return n.At }
func (n *Index) Pos() int      { return n.At }
func (n *Slice) Pos() int      { return n.At }
func (n *Call) Pos() int       { return n.At }
func (n *MethodCall) Pos() int { return n.At }
func (n *Comp) Pos() int       { return n.At }

func (n *Name) String() string  { return n.Ident }
func (n *Const) String() string { return value.Repr(n.Value) }

func (n *FString) String() string {
	var sb strings.Builder
	sb.WriteString("f'")
	for _, p := range n.Parts {
		if p.Expr == nil {
			lit := strings.NewReplacer("{", "{{", "}", "}}").Replace(p.Lit)
			q := value.QuoteString(lit)
			sb.WriteString(q[1 : len(q)-1])
			continue
		}
		sb.WriteByte('{')
		sb.WriteString(p.Expr.String())
		if p.Conv != 0 {
			sb.WriteByte('!')
			sb.WriteByte(p.Conv)
		}
		if p.Spec != "" {
			sb.WriteByte(':')
			sb.WriteString(p.Spec)
		}
		sb.WriteByte('}')
	}
	sb.WriteByte('\'')
	return sb.String()
}

func (n *List) String() string { return "[" + join(n.Elems) + "]" }

func (n *Tuple) String() string {
	if len(n.Elems) == 1 {
		return "(" + n.Elems[0].String() + ",)"
	}
	return "(" + join(n.Elems) + ")"
}

func (n *Unary) String() string {
	if n.Op == token.NOT {
		return "(not " + n.X.String() + ")"
	}
	return "(" + n.Op.String() + n.X.String() + ")"
}

func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op.String() + " " + n.Y.String() + ")"
}

func (n *BoolOp) String() string {
	return "(" + n.X.String() + " " + n.Op.String() + " " + n.Y.String() + ")"
}

func (n *Compare) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(n.First.String())
	for i, op := range n.Ops {
		sb.WriteString(" " + op.String() + " ")
		sb.WriteString(n.Rest[i].String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (n *Cond) String() string {
	return "(" + n.Body.String() + " if " + n.Test.String() + " else " + n.Else.String() + ")"
}

func (n *Index) String() string { return n.X.String() + "[" + n.Index.String() + "]" }

func (n *Slice) String() string {
	part := func(e Expr) string {
		if e == nil {
			return ""
		}
		return e.String()
	}
	s := n.X.String() + "[" + part(n.Lo) + ":" + part(n.Hi)
	if n.Step != nil {
		s += ":" + n.Step.String()
	}
	return s + "]"
}

func (n *Call) String() string {
	return n.Func + "(" + args(n.Args, n.Kwargs) + ")"
}

func (n *MethodCall) String() string {
	return n.Recv.String() + "." + n.Method + "(" + args(n.Args, n.Kwargs) + ")"
}

func (n *Comp) String() string {
	s := "[" + n.Elem.String() + " for " + n.Var + " in " + n.Iter.String()
	if n.Cond != nil {
		s += " if " + n.Cond.String()
	}
	return s + "]"
}

func join(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func args(pos []Expr, kw []Keyword) string {
	s := join(pos)
	for _, k := range kw {
		if s != "" {
			s += ", "
		}
		s += k.Name + "=" + k.Value.String()
	}
	return s
}

// Children returns the direct subexpressions of n in source order.
func Children(n Expr) []Expr {
	var out []Expr
	add := func(es ...Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	switch x := n.(type) {
	case *FString:
		for _, p := range x.Parts {
			add(p.Expr)
		}
	case *List:
		add(x.Elems...)
	case *Tuple:
		add(x.Elems...)
	case *Unary:
		add(x.X)
	case *Binary:
		add(x.X, x.Y)
	case *BoolOp:
		add(x.X, x.Y)
	case *Compare:
		add(x.First)
		add(x.Rest...)
	case *Cond:
		add(x.Body, x.Test, x.Else)
	case *Index:
		add(x.X, x.Index)
	case *Slice:
		add(x.X, x.Lo, x.Hi, x.Step)
	case *Call:
		add(x.Args...)
		for _, k := range x.Kwargs {
			add(k.Value)
		}
	case *MethodCall:
		add(x.Recv)
		add(x.Args...)
		for _, k := range x.Kwargs {
			add(k.Value)
		}
	case *Comp:
		add(x.Iter, x.Elem, x.Cond)
	}
	return out
}

// Walk calls fn for n and every node below it, depth first.
func Walk(n Expr, fn func(Expr)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
