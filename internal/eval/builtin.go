// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"nickandperla.net/sift/internal/token"
	"nickandperla.net/sift/internal/value"
)

// maxElems caps sequences an expression can build in one step.
const maxElems = 1_000_000

// BuiltinFunc is the signature for builtin functions.
type BuiltinFunc func(e *Evaluator, args []value.Value, kw map[string]value.Value) (value.Value, error)

// signature constrains a call at compile time. max < 0 means variadic.
type signature struct {
	min, max int
	kwargs   []string
}

var builtinSigs = map[string]signature{
	"len":    {1, 1, nil},
	"int":    {0, 2, []string{"base"}},
	"float":  {0, 1, nil},
	"str":    {0, 1, nil},
	"bool":   {0, 1, nil},
	"repr":   {1, 1, nil},
	"print":  {0, -1, []string{"sep", "end"}},
	"abs":    {1, 1, nil},
	"min":    {1, -1, nil},
	"max":    {1, -1, nil},
	"sum":    {1, 2, []string{"start"}},
	"sorted": {1, 1, []string{"reverse"}},
	"round":  {1, 2, []string{"ndigits"}},
	"list":   {0, 1, nil},
	"tuple":  {0, 1, nil},
	"range":  {1, 3, nil},
}

// getBuiltin returns the builtin function for the given name, or nil if not found.
func getBuiltin(name string) BuiltinFunc {
	switch name {
	case "len":
		return builtinLen
	case "int":
		return builtinInt
	case "float":
		return builtinFloat
	case "str":
		return builtinStr
	case "bool":
		return builtinBool
	case "repr":
		return builtinRepr
	case "print":
		return builtinPrint
	case "abs":
		return builtinAbs
	case "min":
		return builtinMin
	case "max":
		return builtinMax
	case "sum":
		return builtinSum
	case "sorted":
		return builtinSorted
	case "round":
		return builtinRound
	case "list":
		return builtinList
	case "tuple":
		return builtinTuple
	case "range":
		return builtinRange
	}
	return nil
}

func builtinLen(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	switch x := args[0].(type) {
	case value.Str:
		return value.Int(utf8.RuneCountInString(string(x))), nil
	case value.List:
		return value.Int(len(x)), nil
	case value.Tuple:
		return value.Int(len(x)), nil
	}
	return nil, typeError("object of type '%s' has no len()", value.TypeName(args[0]))
}

func builtinInt(e *Evaluator, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		if _, ok := kw["base"]; ok {
			return nil, typeError("int() missing string argument")
		}
		return value.Int(0), nil
	}
	baseArg, hasBase := kw["base"]
	if len(args) == 2 {
		if hasBase {
			return nil, typeError("int() got multiple values for argument 'base'")
		}
		baseArg, hasBase = args[1], true
	}
	if hasBase {
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeError("int() can't convert non-string with explicit base")
		}
		base, ok := value.AsInt(baseArg)
		if !ok {
			return nil, typeError("'%s' object cannot be interpreted as an integer", value.TypeName(baseArg))
		}
		if base != 0 && (base < 2 || base > 36) {
			return nil, valueError("int() base must be >= 2 and <= 36, or 0")
		}
		return parseInt(string(s), int(base))
	}

	switch x := args[0].(type) {
	case value.Int:
		return x, nil
	case value.Bool:
		n, _ := value.AsInt(x)
		return value.Int(n), nil
	case value.Float:
		return floatToInt(float64(x))
	case value.Str:
		return parseInt(string(x), 10)
	}
	return nil, typeError("int() argument must be a string or a number, not '%s'", value.TypeName(args[0]))
}

func floatToInt(f float64) (value.Value, error) {
	if math.IsNaN(f) {
		return nil, valueError("cannot convert float NaN to integer")
	}
	if math.IsInf(f, 0) {
		return nil, overflowError("cannot convert float infinity to integer")
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return nil, overflowError("int too large to convert")
	}
	return value.Int(int64(t)), nil
}

func parseInt(s string, base int) (value.Value, error) {
	text := strings.TrimSpace(s)
	invalid := func() error {
		return valueError("invalid literal for int() with base %d: %s", base, value.QuoteString(s))
	}
	if text == "" || strings.HasPrefix(text, "_") || strings.HasSuffix(text, "_") || strings.Contains(text, "__") {
		return nil, invalid()
	}
	neg := false
	switch text[0] {
	case '-':
		neg = true
		text = text[1:]
	case '+':
		text = text[1:]
	}
	lower := strings.ToLower(text)
	prefixBase := 0
	switch {
	case strings.HasPrefix(lower, "0x"):
		prefixBase = 16
	case strings.HasPrefix(lower, "0o"):
		prefixBase = 8
	case strings.HasPrefix(lower, "0b"):
		prefixBase = 2
	}
	if prefixBase != 0 && (base == 0 || base == prefixBase) {
		text = strings.TrimPrefix(text[2:], "_")
		base = prefixBase
	} else if base == 0 {
		base = 10
		if len(text) > 1 && strings.Trim(text, "0_") != "" && text[0] == '0' {
			return nil, invalid()
		}
	}
	text = strings.ReplaceAll(text, "_", "")
	if text == "" {
		return nil, invalid()
	}
	u, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return nil, overflowError("int too large to convert")
		}
		return nil, invalid()
	}
	if neg {
		if u > 1<<63 {
			return nil, overflowError("int too large to convert")
		}
		return value.Int(-int64(u)), nil
	}
	if u > math.MaxInt64 {
		return nil, overflowError("int too large to convert")
	}
	return value.Int(int64(u)), nil
}

func builtinFloat(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Float(0), nil
	}
	switch x := args[0].(type) {
	case value.Float:
		return x, nil
	case value.Int, value.Bool:
		f, _ := value.AsFloat(x)
		return value.Float(f), nil
	case value.Str:
		text := strings.TrimSpace(string(x))
		if text == "" || strings.HasPrefix(strings.TrimLeft(text, "+-"), "0x") ||
			strings.HasPrefix(strings.TrimLeft(text, "+-"), "0X") {
			return nil, valueError("could not convert string to float: %s", value.QuoteString(string(x)))
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return value.Float(f), nil
			}
			return nil, valueError("could not convert string to float: %s", value.QuoteString(string(x)))
		}
		return value.Float(f), nil
	}
	return nil, typeError("float() argument must be a string or a real number, not '%s'", value.TypeName(args[0]))
}

func builtinStr(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Str(""), nil
	}
	return value.Str(value.Display(args[0])), nil
}

func builtinBool(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Bool(false), nil
	}
	return value.Bool(value.Truthy(args[0])), nil
}

func builtinRepr(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	return value.Str(value.Repr(args[0])), nil
}

// builtinPrint writes straight to the output stream, independent of the
// auto-printed result.
func builtinPrint(e *Evaluator, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	sep, err := optionalStr(kw, "sep", " ")
	if err != nil {
		return nil, err
	}
	end, err := optionalStr(kw, "end", "\n")
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(value.Display(a))
	}
	sb.WriteString(end)
	if err := e.outputWriter(sb.String()); err != nil {
		return nil, &ioError{err: err}
	}
	return value.None, nil
}

func optionalStr(kw map[string]value.Value, name, def string) (string, error) {
	v, ok := kw[name]
	if !ok || value.IsNull(v) {
		return def, nil
	}
	s, ok := v.(value.Str)
	if !ok {
		return "", typeError("%s must be None or a string, not %s", name, value.TypeName(v))
	}
	return string(s), nil
}

func builtinAbs(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	switch x := args[0].(type) {
	case value.Bool:
		n, _ := value.AsInt(x)
		return value.Int(n), nil
	case value.Int:
		if x == math.MinInt64 {
			return nil, overflowError("integer overflow")
		}
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case value.Float:
		return value.Float(math.Abs(float64(x))), nil
	}
	return nil, typeError("bad operand type for abs(): '%s'", value.TypeName(args[0]))
}

func builtinMin(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	return extreme("min", args, -1)
}

func builtinMax(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	return extreme("max", args, 1)
}

func extreme(name string, args []value.Value, want int) (value.Value, error) {
	items := args
	if len(args) == 1 {
		var err error
		if items, err = iterate(args[0]); err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, valueError("%s() arg is an empty sequence", name)
	}
	best := items[0]
	for _, v := range items[1:] {
		c, err := compareValues(v, best, "<")
		if err != nil {
			return nil, err
		}
		if c == want {
			best = v
		}
	}
	return best, nil
}

func builtinSum(e *Evaluator, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	var total value.Value = value.Int(0)
	if len(args) == 2 {
		total = args[1]
	} else if start, ok := kw["start"]; ok {
		total = start
	}
	if _, ok := total.(value.Str); ok {
		return nil, typeError("sum() can't sum strings [use ''.join(seq) instead]")
	}
	for _, v := range items {
		if total, err = binaryOp(token.PLUS, total, v); err != nil {
			return nil, err
		}
	}
	return total, nil
}

func builtinSorted(e *Evaluator, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	out := make(value.List, len(items))
	copy(out, items)
	reverse := false
	if r, ok := kw["reverse"]; ok {
		reverse = value.Truthy(r)
	}
	var sortErr error
	sort.SliceStable(out, func(a, b int) bool {
		x, y := out[a], out[b]
		if reverse {
			x, y = y, x
		}
		c, err := compareValues(x, y, "<")
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

func builtinRound(e *Evaluator, args []value.Value, kw map[string]value.Value) (value.Value, error) {
	var nd value.Value = value.None
	if len(args) == 2 {
		nd = args[1]
	} else if v, ok := kw["ndigits"]; ok {
		nd = v
	}
	if !value.IsNumeric(args[0]) {
		return nil, typeError("type %s doesn't define __round__ method", value.TypeName(args[0]))
	}
	if value.IsNull(nd) {
		if n, ok := value.AsInt(args[0]); ok {
			return value.Int(n), nil
		}
		f, _ := value.AsFloat(args[0])
		return floatToInt(math.RoundToEven(f))
	}
	digits, ok := value.AsInt(nd)
	if !ok {
		return nil, typeError("'%s' object cannot be interpreted as an integer", value.TypeName(nd))
	}
	if n, ok := value.AsInt(args[0]); ok {
		return roundInt(n, digits), nil
	}
	f, _ := value.AsFloat(args[0])
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return value.Float(f), nil
	}
	if digits < 0 {
		scale := math.Pow10(int(-digits))
		return value.Float(math.RoundToEven(f/scale) * scale), nil
	}
	if digits > 17 {
		return value.Float(f), nil
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', int(digits), 64), 64)
	return value.Float(r), nil
}

// roundInt rounds n to a multiple of 10**-digits, ties to even.
func roundInt(n, digits int64) value.Value {
	if digits >= 0 {
		return value.Int(n)
	}
	if digits < -18 {
		return value.Int(0)
	}
	p := int64(1)
	for k := int64(0); k < -digits; k++ {
		p *= 10
	}
	q, r := n/p, n%p
	if r < 0 {
		q, r = q-1, r+p
	}
	if 2*r > p || (2*r == p && q%2 != 0) {
		q++
	}
	return value.Int(q * p)
}

func builtinList(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.List{}, nil
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	out := make(value.List, len(items))
	copy(out, items)
	return out, nil
}

func builtinTuple(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Tuple{}, nil
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	out := make(value.Tuple, len(items))
	copy(out, items)
	return out, nil
}

func builtinRange(e *Evaluator, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	bounds := make([]int64, len(args))
	for i, a := range args {
		n, ok := value.AsInt(a)
		if !ok {
			return nil, typeError("'%s' object cannot be interpreted as an integer", value.TypeName(a))
		}
		bounds[i] = n
	}
	start, stop, step := int64(0), bounds[0], int64(1)
	if len(bounds) >= 2 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) == 3 {
		step = bounds[2]
	}
	if step == 0 {
		return nil, valueError("range() arg 3 must not be zero")
	}
	var out value.List
	for n := start; (step > 0 && n < stop) || (step < 0 && n > stop); n += step {
		if len(out) >= maxElems {
			return nil, memoryError("range() result too large")
		}
		out = append(out, value.Int(n))
		if (step > 0 && n > math.MaxInt64-step) || (step < 0 && n < math.MinInt64-step) {
			break
		}
	}
	if out == nil {
		out = value.List{}
	}
	return out, nil
}

// iterate returns the items of an iterable value. Strings yield one
// string per code point.
func iterate(v value.Value) ([]value.Value, error) {
	switch x := v.(type) {
	case value.List:
		return x, nil
	case value.Tuple:
		return x, nil
	case value.Str:
		out := make([]value.Value, 0, len(x))
		for _, r := range string(x) {
			out = append(out, value.Str(string(r)))
		}
		return out, nil
	}
	return nil, typeError("'%s' object is not iterable", value.TypeName(v))
}

