package synth

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare", "s.upper()", "s.upper()"},
		{"whitespace", "  s.upper()\n\n", "s.upper()"},
		{"backticks", "`s.upper()`", "s.upper()"},
		{"fence", "```\ns.upper()\n```", "s.upper()"},
		{"fence with tag", "```python\nlen(f)\n```", "len(f)"},
		{"inline fence", "```s[::-1]```", "s[::-1]"},
		{"fence only word", "```\nf\n```", "f"},
		{"prose then fence", "Here you go:\n```python\nf[0]\n```\nThis takes the first field.", "f[0]"},
		{"repl marker", ">>> s.strip()", "s.strip()"},
		{"label", "Expression: int(s) * 2", "int(s) * 2"},
		{"first line wins", "s.lower()\ns.upper()", "s.lower()"},
		{"empty", "  \n ", ""},
		{"empty fence", "```\n```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
