package enums

import "strings"

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonOther         ReportReason = "other"
)

func ParseReportReason(raw string) (ReportReason, bool) {
	switch v := ReportReason(strings.ToLower(strings.TrimSpace(raw))); v {
	case ReportReasonSpam, ReportReasonHarassment, ReportReasonInappropriate, ReportReasonOther:
		return v, true
	default:
		return "", false
	}
}

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Weight orders priorities for triage; unknown values sort last.
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p.Weight() == 0 {
		return "", false
	}
	return p, true
}

type ReviewDecision string

const (
	ReviewDecisionDismiss ReviewDecision = "dismiss"
	ReviewDecisionWarn    ReviewDecision = "warn"
	ReviewDecisionMute    ReviewDecision = "mute"
	ReviewDecisionBan     ReviewDecision = "ban"
)

func ParseReviewDecision(raw string) (ReviewDecision, bool) {
	switch v := ReviewDecision(strings.ToLower(strings.TrimSpace(raw))); v {
	case ReviewDecisionDismiss, ReviewDecisionWarn, ReviewDecisionMute, ReviewDecisionBan:
		return v, true
	default:
		return "", false
	}
}

// ActionType maps a non-dismiss review decision onto the action it triggers.
func (d ReviewDecision) ActionType() (ActionType, bool) {
	switch d {
	case ReviewDecisionWarn:
		return ActionTypeWarn, true
	case ReviewDecisionMute:
		return ActionTypeMute, true
	case ReviewDecisionBan:
		return ActionTypeBan, true
	default:
		return "", false
	}
}
