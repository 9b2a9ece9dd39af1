package content

import "testing"

func TestDice(t *testing.T) {
	a := Tokens("Linear algebra and vector spaces")
	b := Tokens("vector spaces, linear maps")

	// a = {linear, algebra, vector, spaces}; b = {vector, spaces, linear, maps}
	if got := Dice(a, b); got != 75 {
		t.Fatalf("Dice() = %d, want 75", got)
	}
	if got := Dice(a, a); got != 100 {
		t.Fatalf("Dice(a, a) = %d, want 100", got)
	}
	if got := Dice(a, nil); got != 0 {
		t.Fatalf("Dice(a, nil) = %d, want 0", got)
	}
}

func TestTokensDropsShortWordsAndStopwords(t *testing.T) {
	tokens := Tokens("An intro to the Calculus of variations")
	for _, word := range []string{"an", "to", "the", "of"} {
		if _, ok := tokens[word]; ok {
			t.Fatalf("Tokens() kept %q", word)
		}
	}
	if _, ok := tokens["calculus"]; !ok {
		t.Fatalf("Tokens() = %v, missing calculus", tokens)
	}
}

func TestRatio(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{4, 4, 100},
		{3, 4, 75},
		{6, 4, 67},
		{0, 4, 0},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); got != tc.want {
			t.Fatalf("Ratio(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("YML"); err != nil || f != FormatYAML {
		t.Fatalf("ParseFormat() = %q, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("ParseFormat() expected error for pdf")
	}
}
