package rules

import (
	"math"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

const (
	BlockThreshold        = 0.9
	FlagThreshold         = 0.7
	PIIConfidence         = 0.8
	RepeatOffenderScore   = 0.6
	FlaggedScoreThreshold = 0.5
	HighSeverityThreshold = 0.8
)

const (
	ReasonHighToxicity   = "high toxicity"
	ReasonSpamDetected   = "spam detected"
	ReasonToxicContent   = "toxic content"
	ReasonSpamContent    = "spam content"
	ReasonContainsPII    = "contains personal information"
	ReasonRepeatOffender = "repeat offender"
	ReasonAnalysisFailed = string(enums.RiskFactorAnalysisFailed)
)

type Outcome struct {
	Decision       enums.Decision
	Confidence     float64
	Reasons        []string
	ReviewRequired bool
}

// DecisionRule matches an analysis and produces an outcome.
type DecisionRule struct {
	Name  string
	Apply func(a model.Analysis) (Outcome, bool)
}

// DecisionRules are evaluated top-down; the first match wins. The last rule always matches.
var DecisionRules = []DecisionRule{
	{Name: "block_extreme_scores", Apply: blockExtremeScores},
	{Name: "flag_elevated_scores", Apply: flagElevatedScores},
	{Name: "review_repeat_offender", Apply: reviewRepeatOffender},
	{Name: "allow", Apply: allowContent},
}

// Decide returns the outcome of the first matching rule and its name.
func Decide(a model.Analysis) (Outcome, string) {
	for _, rule := range DecisionRules {
		if out, ok := rule.Apply(a); ok {
			return out, rule.Name
		}
	}
	out, _ := allowContent(a)
	return out, "allow"
}

// FailOpen is the outcome used when the analysis could not complete.
func FailOpen() Outcome {
	return Outcome{
		Decision:   enums.DecisionAllow,
		Confidence: 0,
		Reasons:    []string{ReasonAnalysisFailed},
	}
}

func blockExtremeScores(a model.Analysis) (Outcome, bool) {
	if a.ToxicityScore <= BlockThreshold && a.SpamScore <= BlockThreshold {
		return Outcome{}, false
	}
	reasons := make([]string, 0, 2)
	if a.ToxicityScore > BlockThreshold {
		reasons = append(reasons, ReasonHighToxicity)
	}
	if a.SpamScore > BlockThreshold {
		reasons = append(reasons, ReasonSpamDetected)
	}
	return Outcome{
		Decision:   enums.DecisionBlock,
		Confidence: clamp01(math.Max(a.ToxicityScore, a.SpamScore)),
		Reasons:    reasons,
	}, true
}

func flagElevatedScores(a model.Analysis) (Outcome, bool) {
	if a.ToxicityScore <= FlagThreshold && a.SpamScore <= FlagThreshold && !a.ContainsPII {
		return Outcome{}, false
	}
	reasons := make([]string, 0, 3)
	confidence := math.Max(a.ToxicityScore, a.SpamScore)
	if a.ToxicityScore > FlagThreshold {
		reasons = append(reasons, ReasonToxicContent)
	}
	if a.SpamScore > FlagThreshold {
		reasons = append(reasons, ReasonSpamContent)
	}
	if a.ContainsPII {
		reasons = append(reasons, ReasonContainsPII)
		confidence = math.Max(confidence, PIIConfidence)
	}
	return Outcome{
		Decision:   enums.DecisionFlag,
		Confidence: clamp01(confidence),
		Reasons:    reasons,
	}, true
}

func reviewRepeatOffender(a model.Analysis) (Outcome, bool) {
	if !a.HasRiskFactor(enums.RiskFactorRepeatOffender) {
		return Outcome{}, false
	}
	return Outcome{
		Decision:       enums.DecisionReview,
		Confidence:     RepeatOffenderScore,
		Reasons:        []string{ReasonRepeatOffender},
		ReviewRequired: true,
	}, true
}

func allowContent(model.Analysis) (Outcome, bool) {
	return Outcome{Decision: enums.DecisionAllow, Confidence: 0, Reasons: []string{}}, true
}

// FlaggedContentFor lists the flagged categories of a non-allow decision.
func FlaggedContentFor(a model.Analysis) []model.FlaggedContent {
	out := make([]model.FlaggedContent, 0, 3)
	if a.ToxicityScore > FlaggedScoreThreshold {
		out = append(out, model.FlaggedContent{
			Type:     enums.ContentTypeToxic,
			Severity: scoreSeverity(a.ToxicityScore),
			Matches:  nonNil(a.ToxicMatches),
		})
	}
	if a.SpamScore > FlaggedScoreThreshold {
		out = append(out, model.FlaggedContent{
			Type:     enums.ContentTypeSpam,
			Severity: scoreSeverity(a.SpamScore),
			Matches:  nonNil(a.SpamMatches),
		})
	}
	if a.ContainsPII {
		out = append(out, model.FlaggedContent{
			Type:     enums.ContentTypePII,
			Severity: enums.SeverityHigh,
			Matches:  nonNil(a.PIIMatches),
		})
	}
	return out
}

func scoreSeverity(score float64) enums.Severity {
	if score > HighSeverityThreshold {
		return enums.SeverityHigh
	}
	return enums.SeverityMedium
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
