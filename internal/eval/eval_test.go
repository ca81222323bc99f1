package eval

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/sift/internal/record"
	"nickandperla.net/sift/internal/value"
)

// run compiles src and evaluates it against a single record, returning the
// repr of the result.
func run(t *testing.T, src string, index int, text string) string {
	t.Helper()
	p, err := Compile(src)
	require.NoError(t, err, "compile %q", src)
	v, err := New().Eval(p, Bind(record.New(index, text)))
	require.NoError(t, err, "eval %q", src)
	return value.Repr(v)
}

func runErr(t *testing.T, src, text string) *RuntimeError {
	t.Helper()
	p, err := Compile(src)
	require.NoError(t, err, "compile %q", src)
	_, err = New().Eval(p, Bind(record.New(3, text)))
	var re *RuntimeError
	require.ErrorAs(t, err, &re, "eval %q", src)
	return re
}

func TestRecordNames(t *testing.T) {
	tests := []struct {
		src, text string
		index     int
		want      string
	}{
		{"s", "a", 0, "'a'"},
		{"i", "a", 7, "7"},
		{"f", "a b c", 0, "['a', 'b', 'c']"},
		{"f", "   ", 0, "[]"},
		{"(i, s)", "a", 0, "(0, 'a')"},
		{"s.upper()", "hello world", 0, "'HELLO WORLD'"},
		{"int(s) ** 2", "12", 0, "144"},
		{"s[::-1]", "abc", 0, "'cba'"},
		{"f'{i}: {s}'", "a", 0, "'0: a'"},
		{"len(f)", "one two three", 0, "3"},
		{"f[-1]", "one two three", 0, "'three'"},
		{"'x' in s", "xyz", 0, "True"},
		{"s or 'empty'", "", 0, "'empty'"},
		{"'even' if i % 2 == 0 else 'odd'", "", 3, "'odd'"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src, tt.index, tt.text))
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"7 // 2", "3"},
		{"7 // -2", "-4"},
		{"-7 % 3", "2"},
		{"7 % -3", "-2"},
		{"1 / 4", "0.25"},
		{"10 / 2", "5.0"},
		{"2 ** 10", "1024"},
		{"2 ** -1", "0.5"},
		{"-2 ** 2", "-4"},
		{"2 ** 3 ** 2", "512"},
		{"7.5 // 2", "3.0"},
		{"1 + 2.0", "3.0"},
		{"True + True", "2"},
		{"'ab' * 3", "'ababab'"},
		{"[1] * 3", "[1, 1, 1]"},
		{"'a' + 'b'", "'ab'"},
		{"[1, 2] + [3]", "[1, 2, 3]"},
		{"(1,) + (2,)", "(1, 2)"},
		{"0x1f + 0b11 + 0o7", "41"},
		{"1_000 * 2", "2000"},
		{"1e3", "1000.0"},
		{"1e20", "1e+20"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src, 0, ""))
		})
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1 < 2 < 3", "True"},
		{"3 > 2 > 2", "False"},
		{"1 == 1.0", "True"},
		{"'a' < 'b'", "True"},
		{"[1, 2] < [1, 3]", "True"},
		{"(1, 2) == (1, 2)", "True"},
		{"[1, 2] == (1, 2)", "False"},
		{"2 in [1, 2]", "True"},
		{"3 not in (1, 2)", "True"},
		{"None is None", "True"},
		{"s is not None", "True"},
		{"not ''", "True"},
		{"0 or [] or 'x'", "'x'"},
		{"1 and 0", "0"},
		{"float('nan') == float('nan')", "False"},
		{"float('nan') < 1", "False"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src, 0, "x"))
		})
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct{ src, want string }{
		{"len('héllo')", "5"},
		{"int('  42 ')", "42"},
		{"int('ff', 16)", "255"},
		{"int('0x10', base=0)", "16"},
		{"int(-3.9)", "-3"},
		{"float('1.5')", "1.5"},
		{"float('inf')", "inf"},
		{"str(1.0)", "'1.0'"},
		{"str([1, 'a'])", "\"[1, 'a']\""},
		{"bool([])", "False"},
		{"repr('a')", "\"'a'\""},
		{"abs(-3)", "3"},
		{"min(3, 1, 2)", "1"},
		{"max([1, 5, 2])", "5"},
		{"sum([1, 2, 3])", "6"},
		{"sum([0.5, 0.5], 1)", "2.0"},
		{"sorted('cab')", "['a', 'b', 'c']"},
		{"sorted([3, 1, 2], reverse=True)", "[3, 2, 1]"},
		{"round(2.5)", "2"},
		{"round(3.5)", "4"},
		{"round(2.675, 2)", "2.67"},
		{"round(1250, -2)", "1200"},
		{"list('ab')", "['a', 'b']"},
		{"tuple([1])", "(1,)"},
		{"range(3)", "[0, 1, 2]"},
		{"range(5, 0, -2)", "[5, 3, 1]"},
		{"range(2, 2)", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src, 0, ""))
		})
	}
}

func TestStringMethods(t *testing.T) {
	tests := []struct{ src, want string }{
		{"s.split(',')", "['a', 'b', '', 'c']"},
		{"s.split(',', 1)", "['a', 'b,,c']"},
		{"s.rsplit(',', maxsplit=1)", "['a,b,', 'c']"},
		{"s.replace(',', ';')", "'a;b;;c'"},
		{"s.count(',')", "3"},
		{"s.find('b')", "2"},
		{"s.find('z')", "-1"},
		{"'-'.join(s.split(','))", "'a-b--c'"},
		{"s.startswith('a,')", "True"},
		{"s.endswith(('x', 'c'))", "True"},
		{"'  pad  '.strip()", "'pad'"},
		{"'xxhixx'.strip('x')", "'hi'"},
		{"'hello world'.title()", "'Hello World'"},
		{"'hello'.capitalize()", "'Hello'"},
		{"'42'.zfill(5)", "'00042'"},
		{"'-42'.zfill(5)", "'-0042'"},
		{"'ab'.center(6, '*')", "'**ab**'"},
		{"'ab'.ljust(4)", "'ab  '"},
		{"'ab'.rjust(4, '.')", "'..ab'"},
		{"'123'.isdigit()", "True"},
		{"'a\\nb'.splitlines()", "['a', 'b']"},
		{"[1, 2, 1].count(1)", "2"},
		{"(1, 2, 3).index(3)", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src, 0, "a,b,,c"))
		})
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct{ src, want string }{
		{"f'{s!r}'", "\"'x'\""},
		{"f'{i:03d}'", "'007'"},
		{"f'{i:>4}|'", "'   7|'"},
		{"f'{s:*^5}'", "'**x**'"},
		{"f'{1234567:,}'", "'1,234,567'"},
		{"f'{3.14159:.2f}'", "'3.14'"},
		{"f'{0.5:.0%}'", "'50%'"},
		{"f'{255:#x}'", "'0xff'"},
		{"f'{{{i}}}'", "'{7}'"},
		{"f'{[s, i]}'", "\"['x', 7]\""},
		{"'a' f'{i}' 'b'", "'a7b'"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src, 7, "x"))
		})
	}
}

func TestComprehension(t *testing.T) {
	assert.Equal(t, "['A', 'C']", run(t, "[w.upper() for w in f if w != 'b']", 0, "a b c"))
	assert.Equal(t, "[0, 2, 4]", run(t, "[n * 2 for n in range(3)]", 0, ""))
	// The loop variable shadows record names only inside the comprehension.
	assert.Equal(t, "(['x', 'y'], 'outer')", run(t, "([s for s in 'xy'], s)", 0, "outer"))
	assert.Equal(t, "[[0], [0, 1]]", run(t, "[[j for j in range(n)] for n in range(1, 3)]", 0, ""))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"", "empty expression"},
		{"s +", "unexpected"},
		{"x", "not defined"},
		{"open('/etc/passwd')", "unknown function"},
		{"__import__('os')", "unknown function"},
		{"s.__class__()", "unknown method"},
		{"s.upper", ""},
		{"len", "can only be called"},
		{"len(s, s)", "at most"},
		{"print(s, file=s)", "keyword argument"},
		{"lambda: 1", ""},
		{"s(1)", "not callable"},
		{"[w for w in f] + [w]", "not defined"},
		{"f'{s:{i}}'", ""},
		{"'unterminated", ""},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Compile(tt.src)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.src, ce.Source)
			if tt.want != "" {
				assert.Contains(t, ce.Msg, tt.want)
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		src, text string
		kind      string
	}{
		{"int(s)", "abc", "ValueError"},
		{"s + 1", "a", "TypeError"},
		{"1 / 0", "", "ZeroDivisionError"},
		{"i % 0", "", "ZeroDivisionError"},
		{"f[5]", "a b", "IndexError"},
		{"s.index('z')", "abc", "ValueError"},
		{"s < 1", "a", "TypeError"},
		{"9223372036854775807 + 1", "", "OverflowError"},
		{"'x' * 10000000", "", "MemoryError"},
		{"len(i)", "", "TypeError"},
		{"i.upper()", "", "AttributeError"},
		{"range(0, 5, 0)", "", "ValueError"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			re := runErr(t, tt.src, tt.text)
			assert.Equal(t, tt.kind, re.Kind)
			assert.Equal(t, 3, re.Index)
			assert.True(t, strings.HasPrefix(re.Error(), "record 3: "+tt.kind))
		})
	}
}

func TestPrint(t *testing.T) {
	var out strings.Builder
	e := New(WithOutputWriter(func(text string) error {
		out.WriteString(text)
		return nil
	}))
	p, err := Compile("print(i, s, sep='=', end='!\\n')")
	require.NoError(t, err)
	v, err := e.Eval(p, Bind(record.New(2, "two")))
	require.NoError(t, err)
	assert.True(t, value.IsNull(v))
	assert.Equal(t, "2=two!\n", out.String())
}

func TestPrintWriteFailure(t *testing.T) {
	broken := errors.New("broken pipe")
	e := New(WithOutputWriter(func(string) error { return broken }))
	p, err := Compile("print(s)")
	require.NoError(t, err)
	_, err = e.Eval(p, Bind(record.New(0, "x")))
	require.ErrorIs(t, err, broken)
	var re *RuntimeError
	assert.False(t, errors.As(err, &re))
}

func TestProgramReusedAcrossRecords(t *testing.T) {
	p, err := Compile("f'{i}:{len(f)}'")
	require.NoError(t, err)
	e := New()
	var got []string
	for _, rec := range record.Segment("a b\n\nc", record.Line) {
		v, err := e.Eval(p, Bind(rec))
		require.NoError(t, err)
		got = append(got, value.Display(v))
	}
	assert.Equal(t, []string{"0:2", "1:0", "2:1"}, got)
}

func TestWhitelist(t *testing.T) {
	w := Whitelist()
	assert.Contains(t, w, "names: s, i, f")
	assert.Contains(t, w, "sorted")
	assert.Contains(t, w, "splitlines")
	assert.NotContains(t, w, "open")
}

func TestFieldsMatchSplit(t *testing.T) {
	for _, text := range []string{"a b", "a\x1fb", "\x1c x\x1dy z ", "\t\n"} {
		assert.Equal(t, run(t, "s.split()", 0, text), run(t, "f", 0, text), "%q", text)
	}
}
