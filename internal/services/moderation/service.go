package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/domain/rules"
	"github.com/ivankudzin/trustengine/internal/metrics"
)

const (
	MaxTextRunes     = 10000
	defaultOpTimeout = 3 * time.Second
)

var ErrValidation = errors.New("validation error")

type ResultStore interface {
	SaveResult(ctx context.Context, result model.ModerationResult) error
	ListResultsSince(ctx context.Context, cutoff time.Time) ([]model.ModerationResult, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, item model.ContentItem) (model.Analysis, error)
}

type ViolationCounter interface {
	Increment(ctx context.Context, userID string) (int64, error)
}

type Config struct {
	OpTimeout time.Duration
}

type Service struct {
	results    ResultStore
	analyzer   Analyzer
	violations ViolationCounter
	cfg        Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(results ResultStore, analyzer Analyzer, violations ViolationCounter, cfg Config, logger *zap.Logger) *Service {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = defaultOpTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		results:    results,
		analyzer:   analyzer,
		violations: violations,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// ModerateContent analyzes one content item, decides on it and records the result.
// Any decision other than allow counts as a violation for the author.
func (s *Service) ModerateContent(ctx context.Context, item model.ContentItem) (model.ModerationResult, error) {
	if err := validateContent(item); err != nil {
		return model.ModerationResult{}, err
	}
	if s.results == nil || s.analyzer == nil || s.violations == nil {
		return model.ModerationResult{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	started := time.Now()
	analysis, err := s.analyzer.Analyze(ctx, item)
	s.metrics.ObserveAnalysis(time.Since(started))

	var (
		outcome  rules.Outcome
		rule     string
		analyzed = err == nil
	)
	if analyzed {
		outcome, rule = rules.Decide(analysis)
	} else {
		s.logger.Warn("content analysis failed, allowing content",
			zap.String("user_id", item.Metadata.UserID),
			zap.String("room_id", item.Metadata.RoomID),
			zap.Error(err),
		)
		outcome = rules.FailOpen()
		rule = "fail_open"
	}

	result := model.ModerationResult{
		ID:             uuid.NewString(),
		UserID:         item.Metadata.UserID,
		RoomID:         item.Metadata.RoomID,
		MessageID:      item.Metadata.MessageID,
		Decision:       outcome.Decision,
		Confidence:     outcome.Confidence,
		Reasons:        outcome.Reasons,
		ReviewRequired: outcome.ReviewRequired,
		FlaggedContent: []model.FlaggedContent{},
		RiskFactors:    []enums.RiskFactor{},
		Timestamp:      s.now().UTC(),
	}
	if !analyzed {
		result.RiskFactors = append(result.RiskFactors, enums.RiskFactorAnalysisFailed)
	}
	if analyzed {
		result.RiskFactors = append(result.RiskFactors, analysis.RiskFactors...)
		if outcome.Decision != enums.DecisionAllow {
			result.FlaggedContent = rules.FlaggedContentFor(analysis)
		}
	}

	saveCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	err = s.results.SaveResult(saveCtx, result)
	cancel()
	if err != nil {
		return model.ModerationResult{}, fmt.Errorf("save moderation result: %w", err)
	}

	// the counter only moves once a non-allow result is on record
	if outcome.Decision != enums.DecisionAllow {
		incCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
		_, err := s.violations.Increment(incCtx, result.UserID)
		cancel()
		if err != nil {
			return model.ModerationResult{}, fmt.Errorf("record violation for result %s: %w", result.ID, err)
		}
	}

	s.metrics.ObserveDecision(string(result.Decision))
	if result.Decision != enums.DecisionAllow {
		s.logger.Info("content moderated",
			zap.String("result_id", result.ID),
			zap.String("user_id", result.UserID),
			zap.String("decision", string(result.Decision)),
			zap.String("rule", rule),
			zap.Float64("confidence", result.Confidence),
		)
	}

	return result, nil
}

func validateContent(item model.ContentItem) error {
	text := strings.TrimSpace(item.Text)
	if text == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if utf8.RuneCountInString(item.Text) > MaxTextRunes {
		return fmt.Errorf("%w: text exceeds %d characters", ErrValidation, MaxTextRunes)
	}
	if strings.TrimSpace(item.Metadata.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(item.Metadata.RoomID) == "" {
		return fmt.Errorf("%w: room id is required", ErrValidation)
	}
	return nil
}
