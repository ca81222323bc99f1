package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestTransform(t *testing.T) {
	out, errOut, code := runCLI(t, "hello\nworld\n", "s.upper()")
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "HELLO\nWORLD\n", out)
	assert.Empty(t, errOut)
}

func TestModes(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"all", []string{"-a", "len(s)"}, "hello\nworld", "11\n"},
		{"all long", []string{"--all", "len(s.splitlines())"}, "a\nb\nc", "3\n"},
		{"grep", []string{"-g", "int(s) % 2 == 0"}, "1\n2\n3\n4", "2\n4\n"},
		{"quiet", []string{"-q", "None"}, "hello", ""},
		{"no print", []string{"-n", "print('custom')"}, "hello", "custom\n"},
		{"fields", []string{"f[-1]"}, "a b c\nd e", "c\ne\n"},
		{"empty input", []string{"s"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, code := runCLI(t, tt.stdin, tt.args...)
			require.Equal(t, 0, code, errOut)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no expression", nil, "exactly one"},
		{"two expressions", []string{"s", "i"}, "exactly one"},
		{"all and grep", []string{"-a", "-g", "s"}, "--all and --grep"},
		{"show without prompt", []string{"--show", "s"}, "require --prompt"},
		{"confirm without prompt", []string{"--confirm", "s"}, "require --prompt"},
		{"unknown flag", []string{"--frobnicate", "s"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, code := runCLI(t, "x\n", tt.args...)
			assert.Equal(t, 2, code)
			assert.Empty(t, out)
			assert.True(t, strings.HasPrefix(errOut, "sift: "), errOut)
			assert.Contains(t, errOut, tt.msg)
		})
	}
}

func TestCompileErrorExitCode(t *testing.T) {
	out, errOut, code := runCLI(t, "x\n", "s.upper(")
	assert.Equal(t, 3, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "sift: ")
}

func TestRuntimeErrorKeepsPrefix(t *testing.T) {
	out, errOut, code := runCLI(t, "1\n2\nx\n4\n", "int(s) * 10")
	assert.Equal(t, 4, code)
	assert.Equal(t, "10\n20\n", out)
	assert.Contains(t, errOut, "record 2")
	assert.Contains(t, errOut, "ValueError")
}

func TestPromptWithoutCredential(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SIFT_PROVIDER", "")

	for _, args := range [][]string{
		{"-p", "uppercase"},
		{"-p", "--show", "uppercase"},
		{"-p", "--show", "--confirm", "uppercase"},
	} {
		out, errOut, code := runCLI(t, "hello\n", args...)
		assert.Equal(t, 5, code, args)
		assert.Empty(t, out)
		assert.Contains(t, errOut, "ANTHROPIC_API_KEY")
	}
}

func TestPromptGeminiWithoutCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, errOut, code := runCLI(t, "hello\n", "-p", "--provider", "gemini", "uppercase")
	assert.Equal(t, 5, code)
	assert.Contains(t, errOut, "GEMINI_API_KEY")
}

func TestPromptConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("provider: [oops\n"), 0o644))

	_, errOut, code := runCLI(t, "", "-p", "--config", bad, "uppercase")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "sift: ")

	_, errOut, code = runCLI(t, "", "-p", "--provider", "openrouter", "--config", filepath.Join(dir, "missing.yaml"), "x")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "invalid provider")
}

func TestHelp(t *testing.T) {
	out, _, code := runCLI(t, "", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "sift [flags] EXPRESSION")
	assert.Contains(t, out, "--grep")
}
