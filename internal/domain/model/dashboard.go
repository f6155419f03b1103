package model

import "github.com/ivankudzin/trustengine/internal/domain/enums"

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type DashboardView struct {
	TimeRange         string                 `json:"time_range"`
	GeneratedAt       int64                  `json:"generated_at"`
	Overview          DashboardOverview      `json:"overview"`
	ContentModeration ContentModerationStats `json:"content_moderation"`
	UserReports       UserReportStats        `json:"user_reports"`
	ModerationActions ModerationActionStats  `json:"moderation_actions"`
	RiskAnalysis      RiskAnalysis           `json:"risk_analysis"`
}

type DashboardOverview struct {
	TotalReports   int `json:"total_reports"`
	PendingReports int `json:"pending_reports"`
	TotalActions   int `json:"total_actions"`
	BlockedContent int `json:"blocked_content"`
	FlaggedContent int `json:"flagged_content"`
}

type ContentModerationStats struct {
	ByDecision map[string]int `json:"by_decision"`
	ByType     map[string]int `json:"by_type"`
	TopReasons []CountItem    `json:"top_reasons"`
}

type UserReportStats struct {
	ByReason   map[string]int `json:"by_reason"`
	ByPriority map[string]int `json:"by_priority"`
	ByStatus   map[string]int `json:"by_status"`
}

type ModerationActionStats struct {
	ByType        map[string]int `json:"by_type"`
	TopModerators []CountItem    `json:"top_moderators"`
}

type RiskAnalysis struct {
	RepeatOffenders    []ViolationCount `json:"repeat_offenders"`
	TrendingViolations []CountItem      `json:"trending_violations"`
}

type HistoryView struct {
	UserID          string
	Reports         []UserReport
	Actions         []ModerationAction
	ViolationCount  int64
	RiskLevel       enums.RiskLevel
	Recommendations []string
}
