// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"errors"
	"math"
	"math/bits"
	"strings"
	"unicode/utf8"

	"nickandperla.net/sift/internal/expr"
	"nickandperla.net/sift/internal/token"
	"nickandperla.net/sift/internal/value"
)

func binaryOp(op token.Token, x, y value.Value) (value.Value, error) {
	if value.IsNumeric(x) && value.IsNumeric(y) {
		return arith(op, x, y)
	}
	switch op {
	case token.PLUS:
		switch a := x.(type) {
		case value.Str:
			if b, ok := y.(value.Str); ok {
				return a + b, nil
			}
		case value.List:
			if b, ok := y.(value.List); ok {
				return concat(a, b)
			}
		case value.Tuple:
			if b, ok := y.(value.Tuple); ok {
				out, err := concat(a, b)
				if err != nil {
					return nil, err
				}
				return value.Tuple(out), nil
			}
		}
	case token.STAR:
		if n, ok := value.AsInt(y); ok {
			return repeat(x, n)
		}
		if n, ok := value.AsInt(x); ok {
			return repeat(y, n)
		}
	case token.PERCENT:
		if _, ok := x.(value.Str); ok {
			return nil, typeError("printf-style string formatting is not supported; use an f-string")
		}
	}
	return nil, typeError("unsupported operand type(s) for %s: '%s' and '%s'",
		op, value.TypeName(x), value.TypeName(y))
}

func concat(a, b []value.Value) (value.List, error) {
	if len(a)+len(b) > maxElems {
		return nil, memoryError("sequence too large")
	}
	out := make(value.List, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...), nil
}

func repeat(seq value.Value, n int64) (value.Value, error) {
	if n < 0 {
		n = 0
	}
	switch s := seq.(type) {
	case value.Str:
		if n > 0 && int64(utf8.RuneCountInString(string(s)))*n > maxElems {
			return nil, memoryError("repeated string too large")
		}
		return value.Str(strings.Repeat(string(s), int(n))), nil
	case value.List, value.Tuple:
		elems, _ := value.Elems(s)
		if n > 0 && int64(len(elems))*n > maxElems {
			return nil, memoryError("repeated sequence too large")
		}
		out := make(value.List, 0, len(elems)*int(n))
		for k := int64(0); k < n; k++ {
			out = append(out, elems...)
		}
		if _, ok := s.(value.Tuple); ok {
			return value.Tuple(out), nil
		}
		return out, nil
	}
	return nil, typeError("can't multiply sequence by non-int of type '%s'", value.TypeName(seq))
}

// arith applies op to two numeric operands. Integer results stay integers
// except for true division and negative powers.
func arith(op token.Token, x, y value.Value) (value.Value, error) {
	a, aInt := value.AsInt(x)
	b, bInt := value.AsInt(y)
	if aInt && bInt {
		return intArith(op, a, b)
	}
	fa, _ := value.AsFloat(x)
	fb, _ := value.AsFloat(y)
	return floatArith(op, fa, fb)
}

func intArith(op token.Token, a, b int64) (value.Value, error) {
	switch op {
	case token.PLUS:
		r := a + b
		if (r > a) != (b > 0) {
			return nil, overflowError("integer overflow")
		}
		return value.Int(r), nil
	case token.MINUS:
		r := a - b
		if (r < a) != (b > 0) {
			return nil, overflowError("integer overflow")
		}
		return value.Int(r), nil
	case token.STAR:
		r, ok := mulInt(a, b)
		if !ok {
			return nil, overflowError("integer overflow")
		}
		return value.Int(r), nil
	case token.SLASH:
		if b == 0 {
			return nil, zeroDivision("division by zero")
		}
		return value.Float(float64(a) / float64(b)), nil
	case token.DSLASH:
		if b == 0 {
			return nil, zeroDivision("integer division or modulo by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return nil, overflowError("integer overflow")
		}
		q := a / b
		if a%b != 0 && (a < 0) != (b < 0) {
			q--
		}
		return value.Int(q), nil
	case token.PERCENT:
		if b == 0 {
			return nil, zeroDivision("integer division or modulo by zero")
		}
		if b == -1 {
			return value.Int(0), nil
		}
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return value.Int(r), nil
	case token.POW:
		if b < 0 {
			if a == 0 {
				return nil, zeroDivision("0.0 cannot be raised to a negative power")
			}
			return value.Float(math.Pow(float64(a), float64(b))), nil
		}
		return powInt(a, b)
	}
	return nil, typeError("unsupported operator %s", op)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	neg := (a < 0) != (b < 0)
	ua, ub := absU(a), absU(b)
	hi, lo := bits.Mul64(ua, ub)
	if hi != 0 {
		return 0, false
	}
	if neg {
		if lo > 1<<63 {
			return 0, false
		}
		return -int64(lo), true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func absU(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}

func powInt(base, exp int64) (value.Value, error) {
	result := int64(1)
	for exp > 0 {
		var ok bool
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return nil, overflowError("integer overflow")
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return nil, overflowError("integer overflow")
			}
		}
	}
	return value.Int(result), nil
}

func floatArith(op token.Token, a, b float64) (value.Value, error) {
	switch op {
	case token.PLUS:
		return value.Float(a + b), nil
	case token.MINUS:
		return value.Float(a - b), nil
	case token.STAR:
		return value.Float(a * b), nil
	case token.SLASH:
		if b == 0 {
			return nil, zeroDivision("float division by zero")
		}
		return value.Float(a / b), nil
	case token.DSLASH:
		if b == 0 {
			return nil, zeroDivision("float floor division by zero")
		}
		return value.Float(math.Floor(a / b)), nil
	case token.PERCENT:
		if b == 0 {
			return nil, zeroDivision("float modulo")
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return value.Float(r), nil
	case token.POW:
		if a == 0 && b < 0 {
			return nil, zeroDivision("0.0 cannot be raised to a negative power")
		}
		if a < 0 && b != math.Trunc(b) {
			return nil, valueError("negative number cannot be raised to a fractional power")
		}
		r := math.Pow(a, b)
		if math.IsInf(r, 0) && !math.IsInf(a, 0) && !math.IsInf(b, 0) {
			return nil, overflowError("numerical result out of range")
		}
		return value.Float(r), nil
	}
	return nil, typeError("unsupported operator %s", op)
}

func unaryOp(op token.Token, x value.Value) (value.Value, error) {
	if op == token.NOT {
		return value.Bool(!value.Truthy(x)), nil
	}
	switch v := x.(type) {
	case value.Bool:
		n, _ := value.AsInt(v)
		if op == token.MINUS {
			n = -n
		}
		return value.Int(n), nil
	case value.Int:
		if op == token.MINUS {
			if v == math.MinInt64 {
				return nil, overflowError("integer overflow")
			}
			return -v, nil
		}
		return v, nil
	case value.Float:
		if op == token.MINUS {
			return -v, nil
		}
		return v, nil
	}
	return nil, typeError("bad operand type for unary %s: '%s'", op, value.TypeName(x))
}

// compareValues orders a and b for min, max and sorted. NaN compares equal
// to everything there, which keeps sorting total.
func compareValues(a, b value.Value, op string) (int, error) {
	c, err := value.Compare(a, b)
	if errors.Is(err, value.ErrNaN) {
		return 0, nil
	}
	if err != nil {
		return 0, typeError("'%s' not supported between instances of '%s' and '%s'",
			op, value.TypeName(a), value.TypeName(b))
	}
	return c, nil
}

func compareOp(op expr.CmpOp, a, b value.Value) (bool, error) {
	switch op {
	case expr.CmpEq:
		return value.Equal(a, b), nil
	case expr.CmpNe:
		return !value.Equal(a, b), nil
	case expr.CmpIs:
		return identical(a, b), nil
	case expr.CmpIsNot:
		return !identical(a, b), nil
	case expr.CmpIn, expr.CmpNotIn:
		in, err := contains(b, a)
		if op == expr.CmpNotIn {
			in = !in
		}
		return in, err
	}

	c, err := value.Compare(a, b)
	if errors.Is(err, value.ErrNaN) {
		return false, nil
	}
	if err != nil {
		return false, typeError("'%s' not supported between instances of '%s' and '%s'",
			op, value.TypeName(a), value.TypeName(b))
	}
	switch op {
	case expr.CmpLt:
		return c < 0, nil
	case expr.CmpLe:
		return c <= 0, nil
	case expr.CmpGt:
		return c > 0, nil
	case expr.CmpGe:
		return c >= 0, nil
	}
	return false, typeError("unsupported comparison %s", op)
}

// identical implements is: None, True and False are singletons; no other
// values share identity.
func identical(a, b value.Value) bool {
	switch x := a.(type) {
	case value.Null:
		return value.IsNull(b)
	case value.Bool:
		y, ok := b.(value.Bool)
		return ok && x == y
	}
	return false
}

func contains(container, item value.Value) (bool, error) {
	switch c := container.(type) {
	case value.Str:
		sub, ok := item.(value.Str)
		if !ok {
			return false, typeError("'in <string>' requires string as left operand, not %s", value.TypeName(item))
		}
		return strings.Contains(string(c), string(sub)), nil
	case value.List, value.Tuple:
		elems, _ := value.Elems(c)
		for _, e := range elems {
			if value.Equal(e, item) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, typeError("argument of type '%s' is not iterable", value.TypeName(container))
}

func toIndex(v value.Value, what string) (int64, error) {
	n, ok := value.AsInt(v)
	if !ok {
		return 0, typeError("%s indices must be integers, not %s", what, value.TypeName(v))
	}
	return n, nil
}

func indexValue(x, idx value.Value) (value.Value, error) {
	switch s := x.(type) {
	case value.Str:
		n, err := toIndex(idx, "string")
		if err != nil {
			return nil, err
		}
		runes := []rune(string(s))
		if n < 0 {
			n += int64(len(runes))
		}
		if n < 0 || n >= int64(len(runes)) {
			return nil, indexError("string index out of range")
		}
		return value.Str(string(runes[n])), nil
	case value.List, value.Tuple:
		name := value.TypeName(s)
		n, err := toIndex(idx, name)
		if err != nil {
			return nil, err
		}
		elems, _ := value.Elems(s)
		if n < 0 {
			n += int64(len(elems))
		}
		if n < 0 || n >= int64(len(elems)) {
			return nil, indexError("%s index out of range", name)
		}
		return elems[n], nil
	}
	return nil, typeError("'%s' object is not subscriptable", value.TypeName(x))
}

// sliceIndices clamps lo, hi and step against length n the way a slice
// object resolves its indices.
func sliceIndices(lo, hi, step value.Value, n int64) (start, stop, stride int64, err error) {
	stride = 1
	if !value.IsNull(step) {
		if stride, err = sliceBound(step); err != nil {
			return
		}
		if stride == 0 {
			err = valueError("slice step cannot be zero")
			return
		}
	}
	lower, upper := int64(0), n
	if stride < 0 {
		lower, upper = -1, n-1
	}
	resolve := func(v value.Value, def int64) (int64, error) {
		if value.IsNull(v) {
			return def, nil
		}
		k, err := sliceBound(v)
		if err != nil {
			return 0, err
		}
		if k < 0 {
			k += n
			if k < lower {
				k = lower
			}
		} else if k > upper {
			k = upper
		}
		return k, nil
	}
	if stride > 0 {
		if start, err = resolve(lo, lower); err != nil {
			return
		}
		stop, err = resolve(hi, upper)
		return
	}
	if start, err = resolve(lo, upper); err != nil {
		return
	}
	stop, err = resolve(hi, lower)
	return
}

func sliceBound(v value.Value) (int64, error) {
	n, ok := value.AsInt(v)
	if !ok {
		return 0, typeError("slice indices must be integers or None")
	}
	return n, nil
}

func sliceValue(x, lo, hi, step value.Value) (value.Value, error) {
	var elems []value.Value
	var runes []rune
	var n int64
	switch s := x.(type) {
	case value.Str:
		runes = []rune(string(s))
		n = int64(len(runes))
	case value.List:
		elems, n = s, int64(len(s))
	case value.Tuple:
		elems, n = s, int64(len(s))
	default:
		return nil, typeError("'%s' object is not subscriptable", value.TypeName(x))
	}
	start, stop, stride, err := sliceIndices(lo, hi, step, n)
	if err != nil {
		return nil, err
	}
	var picked []int64
	for k := start; (stride > 0 && k < stop) || (stride < 0 && k > stop); k += stride {
		picked = append(picked, k)
	}

	switch x.(type) {
	case value.Str:
		out := make([]rune, len(picked))
		for j, k := range picked {
			out[j] = runes[k]
		}
		return value.Str(string(out)), nil
	case value.Tuple:
		out := make(value.Tuple, len(picked))
		for j, k := range picked {
			out[j] = elems[k]
		}
		return out, nil
	}
	out := make(value.List, len(picked))
	for j, k := range picked {
		out[j] = elems[k]
	}
	return out, nil
}
