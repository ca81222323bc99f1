package sift

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"nickandperla.net/sift/internal/provider"
	"nickandperla.net/sift/internal/synth"
)

func TestMain(m *testing.M) {
	// genai links go.opencensus.io, whose stats worker starts in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func run(t *testing.T, src, input string, opts ...Option) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rt := New(append([]Option{WithOutput(&out)}, opts...)...)
	err := rt.Run(src, strings.NewReader(input))
	return out.String(), err
}

func TestTransforms(t *testing.T) {
	tests := []struct {
		name, src, input, want string
		opts                   []Option
	}{
		{"upper", "s.upper()", "hello world", "HELLO WORLD\n", nil},
		{"lower", "s.lower()", "HELLO WORLD", "hello world\n", nil},
		{"reverse", "s[::-1]", "hello", "olleh\n", nil},
		{"length", "len(s)", "hello", "5\n", nil},
		{"strip", "s.strip()", "  hello  ", "hello\n", nil},
		{"multiple lines", "s.upper()", "one\ntwo\nthree", "ONE\nTWO\nTHREE\n", nil},
		{"line numbers", "i", "a\nb\nc", "0\n1\n2\n", nil},
		{"f-string", "f'{i}: {s}'", "a\nb\nc", "0: a\n1: b\n2: c\n", nil},
		{"numeric", "int(s) ** 2", "1\n2\n3\n4\n5", "1\n4\n9\n16\n25\n", nil},
		{"first field", "f[0]", "one two three", "one\n", nil},
		{"last field", "f[-1]", "one two three", "three\n", nil},
		{"field count", "len(f)", "one two three", "3\n", nil},
		{"fields per line", "f[1]", "a b c\nd e f", "b\ne\n", nil},
		{"crlf", "s", "a\r\nb\r\n", "a\nb\n", nil},
		{"empty input", "s.upper()", "", "", nil},
		{"single newline", "len(s)", "\n", "0\n", nil},
		{"tuple", "(i, s)", "a\nb", "(0, 'a')\n(1, 'b')\n", nil},
		{"list", "f", "a b c", "['a', 'b', 'c']\n", nil},
		{"none", "None", "hello", "None\n", nil},
		{"quiet none", "None", "hello", "", []Option{WithQuiet(true)}},
		{"quiet keeps values", "s if i else None", "a\nb", "b\n", []Option{WithQuiet(true)}},
		{"no print", "print('custom')", "hello", "custom\n", []Option{WithNoAutoPrint(true)}},
		{"print and result", "print(s)", "x", "x\nNone\n", nil},
		{"all length", "len(s)", "hello\nworld", "11\n", []Option{WithMode(All)}},
		{"all lines", "len(s.splitlines())", "a\nb\nc", "3\n", []Option{WithMode(All)}},
		{"all replace", "s.replace('\\n', ' ')", "one\ntwo\nthree", "one two three\n", []Option{WithMode(All)}},
		{"all empty", "repr(s)", "", "''\n", []Option{WithMode(All)}},
		{"grep even", "int(s) % 2 == 0", "1\n2\n3\n4\n5", "2\n4\n", []Option{WithMode(Grep)}},
		{"grep contains", "'hello' in s", "hello\nworld\nhello world", "hello\nhello world\n", []Option{WithMode(Grep)}},
		{"grep length", "len(s) > 3", "a\nab\nabc\nabcd\nabcde", "abcd\nabcde\n", []Option{WithMode(Grep)}},
		{"grep index", "i < 2", "a\nb\nc\nd", "a\nb\n", []Option{WithMode(Grep)}},
		{"grep none", "False", "a\nb\nc", "", []Option{WithMode(Grep)}},
		{"grep all", "True", "a\nb\nc", "a\nb\nc\n", []Option{WithMode(Grep)}},
		{"grep ignores quiet", "s", "a\n\nb", "a\nb\n", []Option{WithMode(Grep), WithQuiet(true), WithNoAutoPrint(true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.src, tt.input, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdempotentTransform(t *testing.T) {
	once, err := run(t, "s.upper()", "Mixed Case\nlines")
	require.NoError(t, err)
	twice, err := run(t, "s.upper()", once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRuntimeErrorKeepsPrefix(t *testing.T) {
	got, err := run(t, "10 // int(s)", "5\n2\n0\n1")
	require.ErrorIs(t, err, ErrRuntime)
	assert.Equal(t, "2\n5\n", got)
	assert.Contains(t, err.Error(), "record 2")
	assert.Contains(t, err.Error(), "ZeroDivisionError")
	assert.Equal(t, 4, ExitCode(err))
}

// countingReader records whether input was consumed.
type countingReader struct{ reads int }

func (r *countingReader) Read(p []byte) (int, error) {
	r.reads++
	return 0, io.EOF
}

func TestCompileErrorReadsNothing(t *testing.T) {
	in := &countingReader{}
	var out bytes.Buffer
	err := New(WithOutput(&out)).Run("s.upper(", in)
	require.ErrorIs(t, err, ErrCompile)
	assert.Zero(t, in.reads)
	assert.Empty(t, out.String())
	assert.Equal(t, 3, ExitCode(err))
}

func TestWhitelistIsEnforcedAtCompileTime(t *testing.T) {
	for _, src := range []string{"open('x')", "__import__('os')", "s.__class__()", "eval(s)", "exec('1')"} {
		_, err := run(t, src, "")
		assert.ErrorIs(t, err, ErrCompile, src)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReadError(t *testing.T) {
	err := New(WithOutput(io.Discard)).Run("s", failingReader{})
	require.ErrorIs(t, err, ErrIO)
	assert.Equal(t, 1, ExitCode(err))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteError(t *testing.T) {
	err := New(WithOutput(failingWriter{})).Run("s", strings.NewReader("a"))
	require.ErrorIs(t, err, ErrIO)
}

func TestRunPrompt(t *testing.T) {
	var out, shown bytes.Buffer
	m := provider.NewMock("```\ns.upper()\n```")
	rt := New(WithOutput(&out), WithProvider(m), WithShow(&shown))
	err := rt.RunPrompt(context.Background(), "uppercase", strings.NewReader("hi\nthere"))
	require.NoError(t, err)
	assert.Equal(t, "HI\nTHERE\n", out.String())
	assert.Equal(t, "s.upper()\n", shown.String())
}

func TestRunPromptGrep(t *testing.T) {
	var out bytes.Buffer
	var user string
	m := provider.NewMockHandler(func(_, u string) string {
		user = u
		return "'x' in s"
	})
	rt := New(WithOutput(&out), WithProvider(m), WithMode(Grep))
	require.NoError(t, rt.RunPrompt(context.Background(), "lines with x", strings.NewReader("ax\nb\nxc")))
	assert.Equal(t, "ax\nxc\n", out.String())
	assert.Contains(t, user, "filter")
}

func TestRunPromptDeclined(t *testing.T) {
	in := &countingReader{}
	var out bytes.Buffer
	rt := New(WithOutput(&out), WithProvider(provider.NewMock("s")),
		WithConfirm(synth.ConfirmFunc(func(string) (bool, error) { return false, nil })))
	err := rt.RunPrompt(context.Background(), "identity", in)
	require.ErrorIs(t, err, ErrUserAbort)
	assert.Equal(t, CodeUserAbort, Classify(err))
	assert.Equal(t, 0, ExitCode(err))
	assert.Zero(t, in.reads)
	assert.Empty(t, out.String())
}

func TestRunPromptMissingCredential(t *testing.T) {
	t.Setenv(provider.AnthropicKeyEnv, "")
	in := &countingReader{}
	asked := false
	for _, show := range []bool{false, true} {
		var shown bytes.Buffer
		opts := []Option{
			WithOutput(io.Discard),
			WithProvider(provider.NewAnthropic()),
			WithConfirm(synth.ConfirmFunc(func(string) (bool, error) { asked = true; return true, nil })),
		}
		if show {
			opts = append(opts, WithShow(&shown))
		}
		err := New(opts...).RunPrompt(context.Background(), "uppercase", in)
		require.ErrorIs(t, err, ErrCredential)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
		assert.Equal(t, 5, ExitCode(err))
		assert.Empty(t, shown.String())
	}
	assert.Zero(t, in.reads)
	assert.False(t, asked)
}

func TestRunPromptBadExpression(t *testing.T) {
	in := &countingReader{}
	rt := New(WithOutput(io.Discard), WithProvider(provider.NewMock("import os")))
	err := rt.RunPrompt(context.Background(), "delete everything", in)
	require.ErrorIs(t, err, ErrSynthesis)
	assert.Equal(t, 6, ExitCode(err))
	assert.Zero(t, in.reads)
}

func TestRunPromptNoProvider(t *testing.T) {
	err := New().RunPrompt(context.Background(), "x", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrArgument)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": Line, "line": Line, "ALL": All, " grep ": Grep} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("csv")
	assert.ErrorIs(t, err, ErrArgument)
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ErrUserAbort, 0},
		{errors.New("other"), 1},
		{ErrArgument, 2},
		{synth.ErrNoTerminal, 2},
		{ErrCompile, 3},
		{ErrRuntime, 4},
		{ErrCredential, 5},
		{ErrSynthesis, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
	assert.Equal(t, "credential", Classify(ErrCredential).String())
}

// writeLog keeps every Write call separately.
type writeLog struct {
	writes []string
	failAt int
}

func (w *writeLog) Write(p []byte) (int, error) {
	w.writes = append(w.writes, string(p))
	if w.failAt > 0 && len(w.writes) == w.failAt {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func TestOutputFlushedPerRecord(t *testing.T) {
	w := &writeLog{}
	require.NoError(t, New(WithOutput(w)).Run("print('p', i) or s", strings.NewReader("a\nb")))
	assert.Equal(t, []string{"p 0\na\n", "p 1\nb\n"}, w.writes)
}

func TestRuntimeErrorReportsFlushFailure(t *testing.T) {
	w := &writeLog{failAt: 2}
	err := New(WithOutput(w)).Run("print(s) or 10 // int(s)", strings.NewReader("1\n0\n2"))
	require.ErrorIs(t, err, ErrRuntime)
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "ZeroDivisionError")
	assert.Contains(t, err.Error(), "broken pipe")
	assert.Equal(t, 4, ExitCode(err))
	assert.Equal(t, []string{"1\n10\n", "0\n"}, w.writes)
}
