// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value defines the closed set of values an expression can produce.
package value

import (
	"errors"
	"math"
)

// Kind identifies one variant of the value union.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindTuple
)

// String returns the expression-language type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	}
	return "unknown"
}

// Value is one evaluation outcome. The implementations below are the only
// ones; no other type satisfies the interface outside this package.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the None value.
type Null struct{}

// Bool is True or False.
type Bool bool

// Int is a 64-bit integer.
type Int int64

// Float is a 64-bit float.
type Float float64

// Str is a Unicode string.
type Str string

// List is a mutable-looking sequence; values are never mutated in place.
type List []Value

// Tuple is a fixed-arity sequence.
type Tuple []Value

func (Null) Kind() Kind  { return KindNull }
func (Bool) Kind() Kind  { return KindBool }
func (Int) Kind() Kind   { return KindInt }
func (Float) Kind() Kind { return KindFloat }
func (Str) Kind() Kind   { return KindStr }
func (List) Kind() Kind  { return KindList }
func (Tuple) Kind() Kind { return KindTuple }

func (Null) sealed()  {}
func (Bool) sealed()  {}
func (Int) sealed()   {}
func (Float) sealed() {}
func (Str) sealed()   {}
func (List) sealed()  {}
func (Tuple) sealed() {}

// None is the shared Null value.
var None Value = Null{}

// ErrUnordered is returned by Compare for operands without an ordering.
var ErrUnordered = errors.New("unordered operands")

// ErrNaN is returned by Compare when a float operand is NaN; every ordering
// comparison involving NaN is false.
var ErrNaN = errors.New("NaN operand")

// TypeName returns the type name of v as the expression language spells it.
func TypeName(v Value) string {
	return v.Kind().String()
}

// IsNull reports whether v is None.
func IsNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}

// Truthy returns the truth value of v.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Float:
		return x != 0
	case Str:
		return x != ""
	case List:
		return len(x) > 0
	case Tuple:
		return len(x) > 0
	}
	return false
}

// Elems returns the elements of a List or Tuple.
func Elems(v Value) ([]Value, bool) {
	switch x := v.(type) {
	case List:
		return x, true
	case Tuple:
		return x, true
	}
	return nil, false
}

// AsFloat converts a numeric value (bool, int, float) to float64.
func AsFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Bool:
		if x {
			return 1, true
		}
		return 0, true
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	}
	return 0, false
}

// AsInt converts a bool or int to int64.
func AsInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case Bool:
		if x {
			return 1, true
		}
		return 0, true
	case Int:
		return int64(x), true
	}
	return 0, false
}

// IsNumeric reports whether v participates in arithmetic.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case Bool, Int, Float:
		return true
	}
	return false
}

// Equal reports whether a and b compare equal with ==.
func Equal(a, b Value) bool {
	if IsNumeric(a) && IsNumeric(b) {
		ai, aok := AsInt(a)
		bi, bok := AsInt(b)
		if aok && bok {
			return ai == bi
		}
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		return af == bf
	}
	switch x := a.(type) {
	case Null:
		return IsNull(b)
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case List:
		y, ok := b.(List)
		return ok && equalElems(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && equalElems(x, y)
	}
	return false
}

func equalElems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Compare orders a and b, returning -1, 0 or 1. Operands of different
// kinds (other than mixed numerics) return ErrUnordered.
func Compare(a, b Value) (int, error) {
	if IsNumeric(a) && IsNumeric(b) {
		ai, aok := AsInt(a)
		bi, bok := AsInt(b)
		if aok && bok {
			return cmpOrdered(ai, bi), nil
		}
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, ErrNaN
		}
		return cmpOrdered(af, bf), nil
	}
	switch x := a.(type) {
	case Str:
		if y, ok := b.(Str); ok {
			return cmpOrdered(x, y), nil
		}
	case List:
		if y, ok := b.(List); ok {
			return compareElems(x, y)
		}
	case Tuple:
		if y, ok := b.(Tuple); ok {
			return compareElems(x, y)
		}
	}
	return 0, ErrUnordered
}

func compareElems(a, b []Value) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if Equal(a[i], b[i]) {
			continue
		}
		return Compare(a[i], b[i])
	}
	return cmpOrdered(len(a), len(b)), nil
}

func cmpOrdered[T ~int | ~int64 | ~float64 | ~string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
