package content

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {}, "into": {}, "that": {},
	"this": {}, "are": {}, "its": {}, "their": {}, "will": {}, "can": {}, "using": {},
	"les": {}, "des": {}, "por": {}, "para": {}, "con": {}, "del": {}, "una": {},
}

// Tokens splits text into a set of lowercase words of three or more
// letters, ignoring stopwords.
func Tokens(texts ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, text := range texts {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, word := range words {
			if len([]rune(word)) < 3 {
				continue
			}
			if _, skip := stopwords[word]; skip {
				continue
			}
			out[word] = struct{}{}
		}
	}
	return out
}

// Normalized returns a set of whitespace-collapsed lowercase entries.
func Normalized(entries []string) map[string]struct{} {
	out := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		key := strings.Join(strings.Fields(strings.ToLower(entry)), " ")
		if key == "" {
			continue
		}
		out[key] = struct{}{}
	}
	return out
}

// Dice returns the Sorensen-Dice coefficient of two sets scaled to 0..100.
func Dice(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for key := range a {
		if _, ok := b[key]; ok {
			shared++
		}
	}
	return roundDiv(200*shared, len(a)+len(b))
}

// Coverage returns the share of want present in have, scaled to 0..100.
func Coverage(want, have map[string]struct{}) int {
	if len(want) == 0 {
		return 0
	}
	hit := 0
	for key := range want {
		if _, ok := have[key]; ok {
			hit++
		}
	}
	return roundDiv(100*hit, len(want))
}

// Ratio returns 100*min/max for two non-negative quantities.
func Ratio(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return roundDiv(100*lo, hi)
}

func roundDiv(num, den int) int {
	return (2*num + den) / (2 * den)
}
