package tool

import (
	"math"
	"testing"
)

func TestTitleSimilarity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{a: "Urgent scheduling conflict", b: "urgent Scheduling Conflict", want: 1.0},
		{a: "", b: "", want: 1.0},
		{a: "abc", b: "", want: 0.0},
		{a: "", b: "abc", want: 0.0},
		{a: "a b c", b: "b c d", want: 0.5},
		{a: "parking  question", b: "parking question question", want: 1.0},
		{a: "   ", b: "", want: 1.0},
	}
	for _, tc := range cases {
		got := TitleSimilarity(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("TitleSimilarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
