package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepr(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{None, "None"},
		{Bool(true), "True"},
		{Int(-42), "-42"},
		{Float(1), "1.0"},
		{Float(0.1), "0.1"},
		{Float(1e16), "1e+16"},
		{Float(123456789012345.6), "123456789012345.6"},
		{Float(0.0001), "0.0001"},
		{Float(0.00001), "1e-05"},
		{Float(math.Inf(-1)), "-inf"},
		{Float(math.NaN()), "nan"},
		{Float(math.Copysign(0, -1)), "-0.0"},
		{Str("a"), "'a'"},
		{Str("it's"), `"it's"`},
		{Str(`both ' and "`), `'both \' and "'`},
		{Str("tab\there\n"), `'tab\there\n'`},
		{Str("\x00"), `'\x00'`},
		{Str("é"), "'é'"},
		{List{Int(1), Str("b")}, "[1, 'b']"},
		{List{}, "[]"},
		{Tuple{Int(1)}, "(1,)"},
		{Tuple{}, "()"},
		{Tuple{List{None}, Float(2.5)}, "([None], 2.5)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Repr(tt.v))
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "plain", Display(Str("plain")))
	assert.Equal(t, "['x']", Display(List{Str("x")}))
	assert.Equal(t, "None", Display(None))
}

func TestTruthy(t *testing.T) {
	for _, v := range []Value{None, Bool(false), Int(0), Float(0), Str(""), List{}, Tuple{}} {
		assert.False(t, Truthy(v), Repr(v))
	}
	for _, v := range []Value{Bool(true), Int(-1), Float(0.5), Str(" "), List{None}, Tuple{Int(0)}} {
		assert.True(t, Truthy(v), Repr(v))
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(Bool(true), Int(1)))
	assert.True(t, Equal(List{Int(1), Str("a")}, List{Float(1), Str("a")}))
	assert.False(t, Equal(List{Int(1)}, Tuple{Int(1)}))
	assert.False(t, Equal(Str("1"), Int(1)))
	assert.False(t, Equal(Float(math.NaN()), Float(math.NaN())))
	assert.True(t, Equal(None, None))
}

func TestCompare(t *testing.T) {
	c, err := Compare(Int(2), Float(2.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(Str("b"), Str("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = Compare(Tuple{Int(1), Int(2)}, Tuple{Int(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = Compare(Str("a"), Int(1))
	assert.ErrorIs(t, err, ErrUnordered)

	_, err = Compare(List{Int(1)}, List{Str("a")})
	assert.ErrorIs(t, err, ErrUnordered)

	_, err = Compare(Float(math.NaN()), Int(1))
	assert.ErrorIs(t, err, ErrNaN)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "NoneType", TypeName(None))
	assert.Equal(t, "str", TypeName(Str("")))
	assert.Equal(t, "tuple", TypeName(Tuple{}))
}
