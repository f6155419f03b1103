package rules

import (
	"testing"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

func TestDecideBlocksOnExtremeToxicity(t *testing.T) {
	out, rule := Decide(model.Analysis{ToxicityScore: 1, SpamScore: 0.2})
	if out.Decision != enums.DecisionBlock {
		t.Fatalf("unexpected decision: %s", out.Decision)
	}
	if rule != "block_extreme_scores" {
		t.Fatalf("unexpected rule: %s", rule)
	}
	if out.Confidence != 1 {
		t.Fatalf("unexpected confidence: %v", out.Confidence)
	}
	if len(out.Reasons) != 1 || out.Reasons[0] != ReasonHighToxicity {
		t.Fatalf("unexpected reasons: %v", out.Reasons)
	}
}

func TestDecideBlockListsBothTriggers(t *testing.T) {
	out, _ := Decide(model.Analysis{ToxicityScore: 0.95, SpamScore: 1})
	if out.Decision != enums.DecisionBlock || out.Confidence != 1 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(out.Reasons) != 2 {
		t.Fatalf("expected both reasons, got %v", out.Reasons)
	}
}

func TestDecideFlagsPIIWithFixedConfidence(t *testing.T) {
	out, _ := Decide(model.Analysis{ToxicityScore: 0.3, ContainsPII: true})
	if out.Decision != enums.DecisionFlag {
		t.Fatalf("unexpected decision: %s", out.Decision)
	}
	if out.Confidence != PIIConfidence {
		t.Fatalf("unexpected confidence: %v", out.Confidence)
	}
	if len(out.Reasons) != 1 || out.Reasons[0] != ReasonContainsPII {
		t.Fatalf("unexpected reasons: %v", out.Reasons)
	}
}

func TestDecideFlagTakesPrecedenceOverRepeatOffender(t *testing.T) {
	out, rule := Decide(model.Analysis{
		SpamScore:   0.8,
		RiskFactors: []enums.RiskFactor{enums.RiskFactorRepeatOffender},
	})
	if out.Decision != enums.DecisionFlag || rule != "flag_elevated_scores" {
		t.Fatalf("unexpected outcome: %+v via %s", out, rule)
	}
	if out.Confidence != 0.8 {
		t.Fatalf("unexpected confidence: %v", out.Confidence)
	}
}

func TestDecideReviewsRepeatOffender(t *testing.T) {
	out, _ := Decide(model.Analysis{RiskFactors: []enums.RiskFactor{enums.RiskFactorRepeatOffender}})
	if out.Decision != enums.DecisionReview {
		t.Fatalf("unexpected decision: %s", out.Decision)
	}
	if !out.ReviewRequired || out.Confidence != RepeatOffenderScore {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestDecideAllowsCleanAnalysis(t *testing.T) {
	out, _ := Decide(model.Analysis{ToxicityScore: 0.3, SpamScore: 0.7})
	if out.Decision != enums.DecisionAllow || out.Confidence != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestFailOpenAllowsWithMarker(t *testing.T) {
	out := FailOpen()
	if out.Decision != enums.DecisionAllow || out.Confidence != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(out.Reasons) != 1 || out.Reasons[0] != ReasonAnalysisFailed {
		t.Fatalf("unexpected reasons: %v", out.Reasons)
	}
}

func TestFlaggedContentSeverity(t *testing.T) {
	items := FlaggedContentFor(model.Analysis{
		ToxicityScore: 0.9,
		SpamScore:     0.6,
		ToxicMatches:  []string{"idiot"},
	})
	if len(items) != 2 {
		t.Fatalf("expected two flagged entries, got %d", len(items))
	}
	if items[0].Type != enums.ContentTypeToxic || items[0].Severity != enums.SeverityHigh {
		t.Fatalf("unexpected toxic entry: %+v", items[0])
	}
	if items[0].Matches[0] != "idiot" {
		t.Fatalf("unexpected matches: %v", items[0].Matches)
	}
	if items[1].Type != enums.ContentTypeSpam || items[1].Severity != enums.SeverityMedium {
		t.Fatalf("unexpected spam entry: %+v", items[1])
	}
	if items[1].Matches == nil {
		t.Fatalf("matches must not be nil")
	}
}
