// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"nickandperla.net/sift/internal/expr"
	"nickandperla.net/sift/internal/parser"
)

// Program is a compiled expression, checked against the whitelist and
// ready to evaluate against any number of records.
type Program struct {
	Source string
	root   expr.Expr
}

// String returns the normalized form of the compiled expression.
func (p *Program) String() string {
	return p.root.String()
}

// Compile parses src and checks every name, builtin, method and keyword
// argument against the whitelist. Anything outside it is a CompileError.
func Compile(src string) (*Program, error) {
	root, err := parser.Parse(src)
	if err != nil {
		var pe *parser.Error
		if errors.As(err, &pe) {
			return nil, &CompileError{Pos: pe.Pos, Msg: pe.Msg, Source: src}
		}
		return nil, &CompileError{Msg: err.Error(), Source: src}
	}
	if err := check(root, nil); err != nil {
		err.Source = src
		return nil, err
	}
	return &Program{Source: src, root: root}, nil
}

func check(n expr.Expr, locals []string) *CompileError {
	fail := func(format string, args ...any) *CompileError {
		return &CompileError{Pos: n.Pos(), Msg: fmt.Sprintf(format, args...)}
	}

	switch x := n.(type) {
	case *expr.Name:
		if isRecordName(x.Ident) || isLocal(x.Ident, locals) {
			return nil
		}
		if _, ok := builtinSigs[x.Ident]; ok {
			return fail("builtin %s can only be called", x.Ident)
		}
		return fail("name %q is not defined (available: s, i, f)", x.Ident)

	case *expr.Call:
		if isRecordName(x.Func) || isLocal(x.Func, locals) {
			return fail("%q is not callable", x.Func)
		}
		sig, ok := builtinSigs[x.Func]
		if !ok {
			return fail("unknown function %q", x.Func)
		}
		if err := checkArity(x.Func+"()", sig, len(x.Args), x.Kwargs, n); err != nil {
			return err
		}
		return checkCallArgs(x.Args, x.Kwargs, locals)

	case *expr.MethodCall:
		sig, ok := methodSigs[x.Method]
		if !ok {
			return fail("unknown method %q", x.Method)
		}
		if err := check(x.Recv, locals); err != nil {
			return err
		}
		if err := checkArity(x.Method+"()", sig, len(x.Args), x.Kwargs, n); err != nil {
			return err
		}
		return checkCallArgs(x.Args, x.Kwargs, locals)

	case *expr.Comp:
		if err := check(x.Iter, locals); err != nil {
			return err
		}
		inner := append(append([]string(nil), locals...), x.Var)
		if err := check(x.Elem, inner); err != nil {
			return err
		}
		if x.Cond != nil {
			return check(x.Cond, inner)
		}
		return nil

	case *expr.FString:
		for _, p := range x.Parts {
			if p.Expr == nil {
				continue
			}
			if err := check(p.Expr, locals); err != nil {
				return err
			}
			if p.Spec != "" {
				if _, err := parseFormatSpec(p.Spec); err != nil {
					msg := err.Error()
					var r *raised
					if errors.As(err, &r) {
						msg = r.msg
					}
					return &CompileError{Pos: p.Expr.Pos(), Msg: msg}
				}
			}
		}
		return nil
	}

	for _, child := range expr.Children(n) {
		if err := check(child, locals); err != nil {
			return err
		}
	}
	return nil
}

// checkCallArgs checks argument expressions; positional and keyword
// arguments are already counted.
func checkCallArgs(args []expr.Expr, kwargs []expr.Keyword, locals []string) *CompileError {
	for _, a := range args {
		if err := check(a, locals); err != nil {
			return err
		}
	}
	for _, k := range kwargs {
		if err := check(k.Value, locals); err != nil {
			return err
		}
	}
	return nil
}

func checkArity(name string, sig signature, nargs int, kwargs []expr.Keyword, at expr.Expr) *CompileError {
	for _, k := range kwargs {
		if !slices.Contains(sig.kwargs, k.Name) {
			return &CompileError{Pos: at.Pos(), Msg: fmt.Sprintf("%s got an unexpected keyword argument %q", name, k.Name)}
		}
	}
	if sig.max >= 0 && nargs > sig.max {
		return &CompileError{Pos: at.Pos(), Msg: fmt.Sprintf("%s takes at most %d arguments (%d given)", name, sig.max, nargs)}
	}
	if nargs+len(kwargs) < sig.min {
		return &CompileError{Pos: at.Pos(), Msg: fmt.Sprintf("%s takes at least %d arguments (%d given)", name, sig.min, nargs+len(kwargs))}
	}
	return nil
}

func isLocal(name string, locals []string) bool {
	return slices.Contains(locals, name)
}

// Whitelist describes the names, builtins and methods an expression may
// use, for help text and synthesis prompts.
func Whitelist() string {
	var sb strings.Builder
	sb.WriteString("names: s, i, f\nbuiltins: ")
	sb.WriteString(strings.Join(slices.Sorted(maps.Keys(builtinSigs)), ", "))
	sb.WriteString("\nmethods: ")
	sb.WriteString(strings.Join(slices.Sorted(maps.Keys(methodSigs)), ", "))
	return sb.String()
}
