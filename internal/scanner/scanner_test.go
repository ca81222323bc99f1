package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/sift/internal/token"
)

func scanAll(t *testing.T, src string) []*Item {
	t.Helper()
	s := NewFromString(src)
	var items []*Item
	for {
		item, err := s.Next()
		require.NoError(t, err)
		items = append(items, item)
		if item.Token == token.EOF {
			return items
		}
	}
}

func TestScanTokens(t *testing.T) {
	items := scanAll(t, "s.split(',')[0] ** 2 // -1 != i not in f")
	var got []token.Token
	for _, it := range items {
		got = append(got, it.Token)
	}
	want := []token.Token{
		token.NAME, token.DOT, token.NAME, token.LPAREN, token.STRING, token.RPAREN,
		token.LBRACKET, token.INT, token.RBRACKET, token.POW, token.INT, token.DSLASH,
		token.MINUS, token.INT, token.NE, token.NAME, token.NOT, token.IN, token.NAME,
		token.EOF,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, ",", items[4].Value)
	assert.Equal(t, 8, items[4].Pos)
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		src  string
		tok  token.Token
		text string
	}{
		{"42", token.INT, "42"},
		{"1_000", token.INT, "1_000"},
		{"0xFF", token.INT, "0xFF"},
		{"0b101", token.INT, "0b101"},
		{"3.14", token.FLOAT, "3.14"},
		{".5", token.FLOAT, ".5"},
		{"1e-3", token.FLOAT, "1e-3"},
		{"2E10", token.FLOAT, "2E10"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			items := scanAll(t, tt.src)
			require.Len(t, items, 2)
			assert.Equal(t, tt.tok, items[0].Token)
			assert.Equal(t, tt.text, items[0].Value)
		})
	}
}

func TestScanStrings(t *testing.T) {
	tests := []struct {
		src  string
		tok  token.Token
		text string
		raw  bool
	}{
		{`'a\tb'`, token.STRING, "a\tb", false},
		{`"it's"`, token.STRING, "it's", false},
		{`r'\d+'`, token.STRING, `\d+`, true},
		{`f'{s}\n'`, token.FSTRING, `{s}\n`, false},
		{`rf'{s}\n'`, token.FSTRING, `{s}\n`, true},
		{`'\x41é'`, token.STRING, "Aé", false},
		{`'\q'`, token.STRING, `\q`, false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			items := scanAll(t, tt.src)
			require.Len(t, items, 2)
			assert.Equal(t, tt.tok, items[0].Token)
			assert.Equal(t, tt.text, items[0].Value)
			assert.Equal(t, tt.raw, items[0].Raw)
		})
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		src string
		pos int
	}{
		{"'open", 0},
		{"s + 'a\nb'", 4},
		{"1abc", 0},
		{"s ? i", 2},
		{"s ! i", 2},
		{`'\x4'`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := NewFromString(tt.src)
			var err error
			for {
				var item *Item
				item, err = s.Next()
				if err != nil || item.Token == token.EOF {
					break
				}
			}
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.pos, se.Pos)
		})
	}
}

func TestPeek(t *testing.T) {
	s := NewFromString("a b")
	p, err := s.Peek()
	require.NoError(t, err)
	n, err := s.Next()
	require.NoError(t, err)
	assert.Same(t, p, n)
	n, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", n.Value)
}
