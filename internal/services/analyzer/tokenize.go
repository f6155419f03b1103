package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// tokenize lower-cases, strips punctuation and folds diacritics.
func tokenize(text string) []string {
	// transformers are stateful; build one per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	folded, _, err := transform.String(fold, bare)
	if err != nil {
		folded = bare
	}
	return strings.Fields(folded)
}

func sentimentScore(tokens []string, weights map[string]float64) float64 {
	if len(weights) == 0 {
		return 0
	}
	score := 0.0
	for _, tok := range tokens {
		score += weights[tok]
	}
	return clamp(score, -1, 1)
}

func detectLanguage(text string) string {
	letters, latin := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r < unicode.MaxASCII {
			latin++
		}
	}
	switch {
	case letters == 0:
		return "unknown"
	case latin*2 >= letters:
		return "en"
	default:
		return "other"
	}
}
