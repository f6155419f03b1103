package enums

type Decision string

const (
	DecisionAllow  Decision = "allow"
	DecisionFlag   Decision = "flag"
	DecisionBlock  Decision = "block"
	DecisionReview Decision = "review"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionAllow, DecisionFlag, DecisionBlock, DecisionReview:
		return true
	default:
		return false
	}
}

type ContentType string

const (
	ContentTypeToxic         ContentType = "toxic"
	ContentTypeSpam          ContentType = "spam"
	ContentTypeHarassment    ContentType = "harassment"
	ContentTypeInappropriate ContentType = "inappropriate"
	ContentTypePII           ContentType = "pii"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type RiskFactor string

const (
	RiskFactorHighToxicity   RiskFactor = "high_toxicity"
	RiskFactorSpamLike       RiskFactor = "spam_like"
	RiskFactorContainsPII    RiskFactor = "contains_pii"
	RiskFactorRepeatOffender RiskFactor = "repeat_offender"
	RiskFactorAnalysisFailed RiskFactor = "analysis_failed"
)
