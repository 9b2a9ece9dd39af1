package ports

import "testing"

func TestPageClamp(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultPageSize},
		{-3, DefaultPageSize},
		{10, 10},
		{MaxPageSize + 1, MaxPageSize},
	}
	for _, tc := range cases {
		if got := (Page{Limit: tc.in}).Clamp().Limit; got != tc.want {
			t.Fatalf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
