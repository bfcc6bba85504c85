package match

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "The Beatles", "the beatles"},
		{"punctuation stripped", "Don't Stop Me Now!", "dont stop me now"},
		{"whitespace collapsed", "  a   b\t c  ", "a b c"},
		{"diacritics folded", "Beyoncé", "beyonce"},
		{"mixed", "HUMBLE. (feat. Nobody)", "humble feat nobody"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Beatles",
		"Don't Stop Me Now!",
		"  a   b\t c  ",
		"Beyoncé — Halo",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestSimilar(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "the beatles", "the beatles", true},
		{"substring", Normalize("The Beatles"), Normalize("beatles"), true},
		{"overlap at threshold", "a b c d e", "a b c d x", true},
		{"overlap below threshold", "a b c d e", "a b c x y", false},
		{"disjoint", "a b", "c d", false},
		{"substring reversed", "stop me now", "dont stop me now", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Similar(tc.a, tc.b); got != tc.want {
				t.Errorf("Similar(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
