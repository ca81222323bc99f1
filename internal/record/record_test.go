package record

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"\n", []string{""}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\n\nb\n", []string{"a", "", "b"}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
		{"a\u2028b\x0cc", []string{"a", "b", "c"}},
		{"\n\n", []string{"", ""}},
	}

	for _, tt := range tests {
		got := SplitLines(tt.input)
		if diff := cmp.Diff(tt.expected, got); diff != "" {
			t.Errorf("SplitLines(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestSegmentLine(t *testing.T) {
	records := Segment("one\ntwo\nthree", Line)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"one", "two", "three"} {
		if records[i].Index != i {
			t.Errorf("record %d: expected index %d, got %d", i, i, records[i].Index)
		}
		if records[i].Text != want {
			t.Errorf("record %d: expected text %q, got %q", i, want, records[i].Text)
		}
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	if records := Segment("", Line); len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
	if records := Segment("", Grep); len(records) != 0 {
		t.Errorf("expected no records in grep mode, got %d", len(records))
	}
}

func TestSegmentAll(t *testing.T) {
	inputs := []string{"", "hello\nworld", "trailing\n", "\r\n\r\n"}
	for _, input := range inputs {
		records := Segment(input, All)
		if len(records) != 1 {
			t.Fatalf("input %q: expected exactly 1 record, got %d", input, len(records))
		}
		if records[0].Index != 0 || records[0].Text != input {
			t.Errorf("input %q: got record {%d %q}", input, records[0].Index, records[0].Text)
		}
		if strings.Count(records[0].Text, "\n") != strings.Count(input, "\n") {
			t.Errorf("input %q: newline count changed", input)
		}
	}
}

func TestFieldsMemoized(t *testing.T) {
	r := New(0, "  one\ttwo   three ")
	first := r.Fields()
	if diff := cmp.Diff([]string{"one", "two", "three"}, first); diff != "" {
		t.Fatalf("Fields mismatch (-want +got):\n%s", diff)
	}
	second := r.Fields()
	if &first[0] != &second[0] {
		t.Error("expected Fields to return the cached slice")
	}
}

func TestFieldsEmpty(t *testing.T) {
	if got := New(0, "   ").Fields(); len(got) != 0 {
		t.Errorf("expected no fields, got %v", got)
	}
}

func TestFieldsSeparators(t *testing.T) {
	got := New(0, "a\x1fb\x1cc d").Fields()
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, got); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
}
