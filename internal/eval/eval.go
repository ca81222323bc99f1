// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval compiles sift expressions and evaluates them against records.
package eval

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"nickandperla.net/sift/internal/expr"
	"nickandperla.net/sift/internal/token"
	"nickandperla.net/sift/internal/value"
)

// OutputWriter writes output (for the print builtin).
type OutputWriter func(text string) error

// Evaluator runs compiled programs. It keeps no state between records.
type Evaluator struct {
	outputWriter OutputWriter
	logger       *zap.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithOutputWriter sets the output writer for the print builtin.
func WithOutputWriter(w OutputWriter) Option {
	return func(e *Evaluator) { e.outputWriter = w }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		outputWriter: func(text string) error {
			_, err := os.Stdout.WriteString(text)
			return err
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval evaluates p against ctx. Errors raised by the expression come back
// as *RuntimeError carrying the record index; a failed print write comes
// back unwrapped.
func (e *Evaluator) Eval(p *Program, ctx *Context) (value.Value, error) {
	v, err := e.eval(p.root, ctx)
	if err != nil {
		var r *raised
		if errors.As(err, &r) {
			e.logger.Debug("Evaluation raised",
				zap.Int("record", ctx.rec.Index),
				zap.String("kind", r.kind))
			return nil, &RuntimeError{Index: ctx.rec.Index, Kind: r.kind, Msg: r.msg}
		}
		return nil, err
	}
	return v, nil
}

func (e *Evaluator) eval(n expr.Expr, ctx *Context) (value.Value, error) {
	switch x := n.(type) {
	case *expr.Const:
		return x.Value, nil

	case *expr.Name:
		v, ok := ctx.Get(x.Ident)
		if !ok {
			// Compile rejects unknown names, so this is a checker bug.
			return nil, &raised{kind: "NameError", msg: fmt.Sprintf("name %q is not defined", x.Ident)}
		}
		return v, nil

	case *expr.FString:
		return e.evalFString(x, ctx)

	case *expr.List:
		elems, err := e.evalAll(x.Elems, ctx)
		if err != nil {
			return nil, err
		}
		return value.List(elems), nil

	case *expr.Tuple:
		elems, err := e.evalAll(x.Elems, ctx)
		if err != nil {
			return nil, err
		}
		return value.Tuple(elems), nil

	case *expr.Unary:
		v, err := e.eval(x.X, ctx)
		if err != nil {
			return nil, err
		}
		return unaryOp(x.Op, v)

	case *expr.Binary:
		a, err := e.eval(x.X, ctx)
		if err != nil {
			return nil, err
		}
		b, err := e.eval(x.Y, ctx)
		if err != nil {
			return nil, err
		}
		return binaryOp(x.Op, a, b)

	case *expr.BoolOp:
		a, err := e.eval(x.X, ctx)
		if err != nil {
			return nil, err
		}
		if value.Truthy(a) == (x.Op == token.OR) {
			return a, nil
		}
		return e.eval(x.Y, ctx)

	case *expr.Compare:
		left, err := e.eval(x.First, ctx)
		if err != nil {
			return nil, err
		}
		for k, op := range x.Ops {
			right, err := e.eval(x.Rest[k], ctx)
			if err != nil {
				return nil, err
			}
			ok, err := compareOp(op, left, right)
			if err != nil {
				return nil, err
			}
			if !ok {
				return value.Bool(false), nil
			}
			left = right
		}
		return value.Bool(true), nil

	case *expr.Cond:
		test, err := e.eval(x.Test, ctx)
		if err != nil {
			return nil, err
		}
		if value.Truthy(test) {
			return e.eval(x.Body, ctx)
		}
		return e.eval(x.Else, ctx)

	case *expr.Index:
		v, err := e.eval(x.X, ctx)
		if err != nil {
			return nil, err
		}
		idx, err := e.eval(x.Index, ctx)
		if err != nil {
			return nil, err
		}
		return indexValue(v, idx)

	case *expr.Slice:
		v, err := e.eval(x.X, ctx)
		if err != nil {
			return nil, err
		}
		bounds := [3]value.Value{value.None, value.None, value.None}
		for k, b := range []expr.Expr{x.Lo, x.Hi, x.Step} {
			if b == nil {
				continue
			}
			if bounds[k], err = e.eval(b, ctx); err != nil {
				return nil, err
			}
		}
		return sliceValue(v, bounds[0], bounds[1], bounds[2])

	case *expr.Call:
		args, kw, err := e.evalArgs(x.Args, x.Kwargs, ctx)
		if err != nil {
			return nil, err
		}
		fn := getBuiltin(x.Func)
		if fn == nil {
			return nil, &raised{kind: "NameError", msg: fmt.Sprintf("name %q is not defined", x.Func)}
		}
		return fn(e, args, kw)

	case *expr.MethodCall:
		recv, err := e.eval(x.Recv, ctx)
		if err != nil {
			return nil, err
		}
		args, kw, err := e.evalArgs(x.Args, x.Kwargs, ctx)
		if err != nil {
			return nil, err
		}
		return callMethod(recv, x.Method, args, kw)

	case *expr.Comp:
		return e.evalComp(x, ctx)
	}
	return nil, fmt.Errorf("eval: unhandled node %T", n)
}

func (e *Evaluator) evalAll(exprs []expr.Expr, ctx *Context) ([]value.Value, error) {
	out := make([]value.Value, len(exprs))
	for k, x := range exprs {
		v, err := e.eval(x, ctx)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (e *Evaluator) evalArgs(args []expr.Expr, kwargs []expr.Keyword, ctx *Context) ([]value.Value, map[string]value.Value, error) {
	pos, err := e.evalAll(args, ctx)
	if err != nil {
		return nil, nil, err
	}
	var kw map[string]value.Value
	if len(kwargs) > 0 {
		kw = make(map[string]value.Value, len(kwargs))
		for _, k := range kwargs {
			v, err := e.eval(k.Value, ctx)
			if err != nil {
				return nil, nil, err
			}
			kw[k.Name] = v
		}
	}
	return pos, kw, nil
}

func (e *Evaluator) evalFString(x *expr.FString, ctx *Context) (value.Value, error) {
	var sb strings.Builder
	for _, part := range x.Parts {
		if part.Expr == nil {
			sb.WriteString(part.Lit)
			continue
		}
		v, err := e.eval(part.Expr, ctx)
		if err != nil {
			return nil, err
		}
		switch part.Conv {
		case 'r':
			v = value.Str(value.Repr(v))
		case 's':
			v = value.Str(value.Display(v))
		}
		text, err := formatValue(v, part.Spec)
		if err != nil {
			return nil, err
		}
		sb.WriteString(text)
		if sb.Len() > maxElems*4 {
			return nil, memoryError("f-string result too large")
		}
	}
	return value.Str(sb.String()), nil
}

func (e *Evaluator) evalComp(x *expr.Comp, ctx *Context) (value.Value, error) {
	iterable, err := e.eval(x.Iter, ctx)
	if err != nil {
		return nil, err
	}
	items, err := iterate(iterable)
	if err != nil {
		return nil, err
	}
	out := make(value.List, 0, len(items))
	ctx.push(x.Var, value.None)
	defer ctx.pop()
	for _, item := range items {
		ctx.set(item)
		if x.Cond != nil {
			keep, err := e.eval(x.Cond, ctx)
			if err != nil {
				return nil, err
			}
			if !value.Truthy(keep) {
				continue
			}
		}
		v, err := e.eval(x.Elem, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
