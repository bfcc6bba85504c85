// package match resolves imported track descriptors against the target catalog.
//
// Normalization and similarity are pure string utilities; Resolver layers the
// lookup strategy on top of an injected [catalog.Catalog].
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// similarityThreshold is the minimum word-set overlap for two normalized
// strings to be considered similar.
const similarityThreshold = 0.8

// foldTransformer strips combining marks so "Beyoncé" and "Beyonce" compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the string, folds diacritics, strips punctuation and
// collapses whitespace runs to a single space. Normalize is idempotent.
func Normalize(s string) string {
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}

	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Similar reports whether two pre-normalized strings refer to the same thing.
//
// Exact matches and substring containment pass outright; otherwise the
// word-set overlap |A ∩ B| / max(|A|, |B|) must reach the threshold.
func Similar(a, b string) bool {
	if a == b {
		return true
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	aWords := wordSet(a)
	bWords := wordSet(b)
	if len(aWords) == 0 || len(bWords) == 0 {
		return false
	}

	common := 0
	for word := range aWords {
		if bWords[word] {
			common++
		}
	}

	larger := len(aWords)
	if len(bWords) > larger {
		larger = len(bWords)
	}

	return float64(common)/float64(larger) >= similarityThreshold
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(s) {
		set[word] = true
	}
	return set
}
