package parser

import (
	"testing"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

func TestScore_PatternMatch(t *testing.T) {
	t.Parallel()

	scores := Score([]string{"Nazwa towaru"}, nil)
	// "Nazwa towaru" matches the nazwa and towar rules independently.
	if got := scores[model.FieldName][0]; got != 2.0 {
		t.Fatalf("name score: want 2.0, got %.2f", got)
	}
	if got := scores[model.FieldQuantity][0]; got != 0 {
		t.Fatalf("quantity score: want 0, got %.2f", got)
	}
}

func TestScore_ExactFieldNameBonus(t *testing.T) {
	t.Parallel()

	scores := Score([]string{"Quantity"}, nil)
	// One pattern match plus the exact-name bonus.
	if got := scores[model.FieldQuantity][0]; got != 1.5 {
		t.Fatalf("quantity score: want 1.5, got %.2f", got)
	}
}

func TestScore_NumericDensityBonus(t *testing.T) {
	t.Parallel()

	sample := [][]string{
		{"x", "10"},
		{"y", "2,5"},
		{"z", "1 000"},
		{"w", "abc"},
	}
	scores := Score([]string{"A", "B"}, sample)
	// 3 of 4 cells are numeric: 0.75 < 0.8, no bonus.
	if got := scores[model.FieldQuantity][1]; got != 0 {
		t.Fatalf("quantity score below threshold: want 0, got %.2f", got)
	}

	sample[3][1] = "7"
	scores = Score([]string{"A", "B"}, sample)
	if got := scores[model.FieldQuantity][1]; got != numericDensityWeight {
		t.Fatalf("quantity score at threshold: want %.2f, got %.2f", numericDensityWeight, got)
	}
}

func TestScore_SequentialBonus(t *testing.T) {
	t.Parallel()

	sample := [][]string{
		{"1"}, {"2"}, {"3"}, {"9"},
	}
	scores := Score([]string{"A"}, sample)
	// 3 of 4 cells match their 1-based position: 0.75 >= 0.5.
	if got := scores[model.FieldLP][0]; got != sequentialWeight {
		t.Fatalf("lp score: want %.2f, got %.2f", sequentialWeight, got)
	}
}

func TestScore_SampleCap(t *testing.T) {
	t.Parallel()

	// Rows past MaxSampleRows must not influence the content heuristics: the
	// first five cells are sequential, the rest are garbage.
	sample := [][]string{
		{"1"}, {"2"}, {"3"}, {"4"}, {"5"},
		{"x"}, {"x"}, {"x"}, {"x"}, {"x"},
	}
	scores := Score([]string{"A"}, sample)
	if got := scores[model.FieldLP][0]; got != sequentialWeight {
		t.Fatalf("lp score: want %.2f, got %.2f", sequentialWeight, got)
	}
}

func TestScore_BlankHeaderIgnored(t *testing.T) {
	t.Parallel()

	scores := Score([]string{"   ", "Nazwa"}, nil)
	for _, field := range model.AllFields {
		if got := scores[field][0]; got != 0 {
			t.Fatalf("blank header scored for %s: %.2f", field, got)
		}
	}
	if got := scores[model.FieldName][1]; got != 1.0 {
		t.Fatalf("name score: want 1.0, got %.2f", got)
	}
}

func TestNormalizeHeader_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	if got := NormalizeHeader("  Nazwa \n towaru  "); got != "Nazwa towaru" {
		t.Fatalf("got %q", got)
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12", 12, false},
		{"12,5", 12.5, false},
		{"12.5", 12.5, false},
		{" 1 234,5 ", 1234.5, false},
		{"1 000", 1000, false},
		{"-3,25", -3.25, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12 szt", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseNumber(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: want %v, got %v", tc.in, tc.want, got)
		}
	}
}
