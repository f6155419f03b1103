package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type violationReaderStub struct {
	counts map[string]int64
	err    error
}

func (s violationReaderStub) Get(_ context.Context, userID string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.counts[userID], nil
}

func item(text, userID string) model.ContentItem {
	return model.ContentItem{Text: text, Metadata: model.ContentMetadata{UserID: userID, RoomID: "room-1"}}
}

func TestAnalyzeCleanTextScoresZero(t *testing.T) {
	a := New(nil, violationReaderStub{})

	got, err := a.Analyze(context.Background(), item("Hello everyone, how are you today?", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.ToxicityScore != 0 || got.SpamScore != 0 {
		t.Fatalf("unexpected scores: toxicity=%v spam=%v", got.ToxicityScore, got.SpamScore)
	}
	if got.ContainsPII || len(got.RiskFactors) != 0 {
		t.Fatalf("unexpected flags: %+v", got)
	}
	if got.Language != "en" {
		t.Fatalf("unexpected language: %s", got.Language)
	}
}

func TestAnalyzeToxicitySaturates(t *testing.T) {
	a := New(nil, violationReaderStub{})

	got, err := a.Analyze(context.Background(), item("hate hate hate stupid idiot kill yourself moron", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.ToxicityScore != 1 {
		t.Fatalf("expected saturated toxicity, got %v", got.ToxicityScore)
	}
	if !got.HasRiskFactor(enums.RiskFactorHighToxicity) {
		t.Fatalf("expected high_toxicity risk factor: %v", got.RiskFactors)
	}
	if len(got.ToxicMatches) != 5 {
		t.Fatalf("expected distinct matches, got %v", got.ToxicMatches)
	}
}

func TestAnalyzeUppercaseAndExclamationBoosts(t *testing.T) {
	a := New(nil, violationReaderStub{})

	got, err := a.Analyze(context.Background(), item("WHAT ARE YOU DOING!!!!", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.ToxicityScore < 0.29 || got.ToxicityScore > 0.31 {
		t.Fatalf("expected 0.3 from heuristics, got %v", got.ToxicityScore)
	}
}

func TestUppercaseRatioCountsDigitsAndPunctuation(t *testing.T) {
	a := New(nil, violationReaderStub{})

	got, err := a.Analyze(context.Background(), item("NO WAY 123456", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.ToxicityScore != 0 {
		t.Fatalf("five capitals out of eleven characters should not boost, got %v", got.ToxicityScore)
	}
}

func TestAnalyzeSpamHeuristics(t *testing.T) {
	a := New(nil, violationReaderStub{})

	got, err := a.Analyze(context.Background(), item("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.SpamScore < 0.39 || got.SpamScore > 0.41 {
		t.Fatalf("expected low diversity boost, got %v", got.SpamScore)
	}

	links := "see http://a.example http://b.example www.c.example click here buy now free money"
	got, err = a.Analyze(context.Background(), item(links, "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.SpamScore != 1 {
		t.Fatalf("expected saturated spam, got %v", got.SpamScore)
	}
	if !got.HasRiskFactor(enums.RiskFactorSpamLike) {
		t.Fatalf("expected spam_like: %v", got.RiskFactors)
	}
}

func TestAnalyzeDetectsPIIWithoutStoringIt(t *testing.T) {
	a := New(nil, violationReaderStub{})

	got, err := a.Analyze(context.Background(), item("my ssn is 123-45-6789 mail me at a.b@example.com", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !got.ContainsPII || !got.HasRiskFactor(enums.RiskFactorContainsPII) {
		t.Fatalf("expected pii detection: %+v", got)
	}
	for _, m := range got.PIIMatches {
		if strings.Contains(m, "6789") || strings.Contains(m, "@") {
			t.Fatalf("raw pii leaked into matches: %v", got.PIIMatches)
		}
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	a := New(nil, violationReaderStub{})

	pos, _ := a.Analyze(context.Background(), item("Great job, thanks! Love it", "u1"))
	if pos.SentimentScore <= 0 {
		t.Fatalf("expected positive sentiment, got %v", pos.SentimentScore)
	}
	neg, _ := a.Analyze(context.Background(), item("this is bad, terrible and awful", "u1"))
	if neg.SentimentScore >= 0 {
		t.Fatalf("expected negative sentiment, got %v", neg.SentimentScore)
	}
}

func TestAnalyzeMarksRepeatOffender(t *testing.T) {
	a := New(nil, violationReaderStub{counts: map[string]int64{"u1": 3, "u2": 2}})

	got, err := a.Analyze(context.Background(), item("hi", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !got.HasRiskFactor(enums.RiskFactorRepeatOffender) {
		t.Fatalf("expected repeat_offender for 3 violations: %v", got.RiskFactors)
	}

	got, _ = a.Analyze(context.Background(), item("hi", "u2"))
	if got.HasRiskFactor(enums.RiskFactorRepeatOffender) {
		t.Fatalf("2 violations must not mark repeat offender")
	}
}

func TestAnalyzeFailsWhenViolationsUnavailable(t *testing.T) {
	a := New(nil, violationReaderStub{err: errors.New("redis down")})

	_, err := a.Analyze(context.Background(), item("hi", "u1"))
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
}

func TestLoadPatternFileAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	content := `
patterns:
  - name: banana
    pattern: '\bbanana\b'
    weight: 0.5
    category: toxic
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write pattern file: %v", err)
	}

	a := New(nil, nil)
	w, err := NewWatcher(path, a, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if !w.Reload() {
		t.Fatalf("expected reload to succeed")
	}

	got, err := a.Analyze(context.Background(), item("banana", "u1"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.ToxicityScore != 0.5 {
		t.Fatalf("expected custom pattern weight, got %v", got.ToxicityScore)
	}

	if err := os.WriteFile(path, []byte("patterns:\n  - pattern: '('\n    category: toxic\n"), 0o600); err != nil {
		t.Fatalf("rewrite pattern file: %v", err)
	}
	if w.Reload() {
		t.Fatalf("expected invalid reload to fail")
	}
	got, _ = a.Analyze(context.Background(), item("banana", "u1"))
	if got.ToxicityScore != 0.5 {
		t.Fatalf("previous set must stay active, got %v", got.ToxicityScore)
	}
}

func TestCompileRejectsUnknownCategory(t *testing.T) {
	_, err := Compile(PatternFile{Patterns: []PatternConfig{{Pattern: "x", Category: "nope"}}})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}
