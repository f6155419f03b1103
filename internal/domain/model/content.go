package model

import (
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
)

// ContentItem is a message handed in by the ingestion path before persistence.
type ContentItem struct {
	Text     string
	Metadata ContentMetadata
}

type ContentMetadata struct {
	UserID    string
	RoomID    string
	MessageID *string
	Timestamp time.Time
}

// Analysis is the scored view of a ContentItem.
type Analysis struct {
	ToxicityScore  float64
	SpamScore      float64
	SentimentScore float64
	Language       string
	ContainsPII    bool
	RiskFactors    []enums.RiskFactor
	ToxicMatches   []string
	SpamMatches    []string
	PIIMatches     []string
}

func (a Analysis) HasRiskFactor(f enums.RiskFactor) bool {
	for _, v := range a.RiskFactors {
		if v == f {
			return true
		}
	}
	return false
}

type FlaggedContent struct {
	Type     enums.ContentType `json:"type"`
	Severity enums.Severity    `json:"severity"`
	Matches  []string          `json:"matches"`
}

// ModerationResult is immutable once created.
type ModerationResult struct {
	ID             string
	UserID         string
	RoomID         string
	MessageID      *string
	Decision       enums.Decision
	Confidence     float64
	Reasons        []string
	FlaggedContent []FlaggedContent
	RiskFactors    []enums.RiskFactor
	ReviewRequired bool
	Timestamp      time.Time
}
