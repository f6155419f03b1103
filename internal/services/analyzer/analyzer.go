package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/domain/rules"
)

const (
	highToxicityThreshold = 0.7
	spamLikeThreshold     = 0.8
)

var ErrAnalysisFailed = errors.New("content analysis failed")

type ViolationReader interface {
	Get(ctx context.Context, userID string) (int64, error)
}

type Analyzer struct {
	patterns   atomic.Pointer[PatternSet]
	violations ViolationReader
}

func New(patterns *PatternSet, violations ViolationReader) *Analyzer {
	if patterns == nil {
		patterns = DefaultPatternSet()
	}
	a := &Analyzer{violations: violations}
	a.patterns.Store(patterns)
	return a
}

// SetPatterns swaps the active pattern set; in-flight analyses keep the old one.
func (a *Analyzer) SetPatterns(set *PatternSet) {
	if set == nil {
		return
	}
	a.patterns.Store(set)
}

func (a *Analyzer) Patterns() *PatternSet {
	return a.patterns.Load()
}

// Analyze scores the text and reads the author's violation count. It has no side effects.
func (a *Analyzer) Analyze(ctx context.Context, item model.ContentItem) (out model.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = model.Analysis{}
			err = fmt.Errorf("%w: panic: %v", ErrAnalysisFailed, r)
		}
	}()

	set := a.patterns.Load()
	if set == nil {
		return model.Analysis{}, fmt.Errorf("%w: no pattern set loaded", ErrAnalysisFailed)
	}

	text := item.Text
	out = model.Analysis{
		Language: detectLanguage(text),
	}

	out.ToxicityScore, out.ToxicMatches = scorePatterns(text, set.toxic)
	out.ToxicityScore += toxicityBoost(text, set.heuristics)
	out.ToxicityScore = clamp(out.ToxicityScore, 0, 1)

	out.SpamScore, out.SpamMatches = scorePatterns(text, set.spam)
	out.SpamScore += spamBoost(text, set.heuristics, set)
	out.SpamScore = clamp(out.SpamScore, 0, 1)

	for _, p := range set.pii {
		if p.re.MatchString(text) {
			out.ContainsPII = true
			// only the pattern name is kept so raw PII never reaches the record sets
			out.PIIMatches = append(out.PIIMatches, p.name)
		}
	}

	out.SentimentScore = sentimentScore(tokenize(text), set.sentiment)

	violations := int64(0)
	if a.violations != nil && strings.TrimSpace(item.Metadata.UserID) != "" {
		violations, err = a.violations.Get(ctx, item.Metadata.UserID)
		if err != nil {
			return model.Analysis{}, fmt.Errorf("%w: read violations: %v", ErrAnalysisFailed, err)
		}
	}

	out.RiskFactors = riskFactors(out, violations)
	return out, nil
}

func scorePatterns(text string, patterns []compiledPattern) (float64, []string) {
	score := 0.0
	var matches []string
	seen := make(map[string]struct{})
	for _, p := range patterns {
		found := p.re.FindAllString(text, -1)
		if len(found) == 0 {
			continue
		}
		score += p.weight
		for _, m := range found {
			key := strings.ToLower(m)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			matches = append(matches, key)
		}
	}
	return score, matches
}

func toxicityBoost(text string, h HeuristicsConfig) float64 {
	boost := 0.0
	// ratio over every non-space character, digits and punctuation included
	chars, upper := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		chars++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if chars > 0 && float64(upper)/float64(chars) > h.UppercaseRatio {
		boost += h.UppercaseBoost
	}
	if strings.Count(text, "!") > h.ExclamationCount {
		boost += h.ExclamationBoost
	}
	return boost
}

func spamBoost(text string, h HeuristicsConfig, set *PatternSet) float64 {
	boost := 0.0
	chars := []rune(text)
	if len(chars) > h.DiversityMinLength {
		distinct := make(map[rune]struct{}, len(chars))
		for _, r := range chars {
			distinct[r] = struct{}{}
		}
		if float64(len(distinct))/float64(len(chars)) < h.DiversityRatio {
			boost += h.DiversityBoost
		}
	}
	if set.link != nil && len(set.link.FindAllStringIndex(text, -1)) > h.LinkCount {
		boost += h.LinkBoost
	}
	return boost
}

func riskFactors(a model.Analysis, violations int64) []enums.RiskFactor {
	factors := make([]enums.RiskFactor, 0, 4)
	if a.ToxicityScore > highToxicityThreshold {
		factors = append(factors, enums.RiskFactorHighToxicity)
	}
	if a.SpamScore > spamLikeThreshold {
		factors = append(factors, enums.RiskFactorSpamLike)
	}
	if a.ContainsPII {
		factors = append(factors, enums.RiskFactorContainsPII)
	}
	if rules.IsRepeatOffender(violations) {
		factors = append(factors, enums.RiskFactorRepeatOffender)
	}
	return factors
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
