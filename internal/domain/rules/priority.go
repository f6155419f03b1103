package rules

import "github.com/ivankudzin/trustengine/internal/domain/enums"

const EscalationViolationThreshold = 3

// ComputeReportPriority is the first stage of report triage.
func ComputeReportPriority(reason enums.ReportReason, violations int64) enums.Priority {
	switch {
	case reason == enums.ReportReasonHarassment || violations > 5:
		return enums.PriorityUrgent
	case reason == enums.ReportReasonInappropriate || violations > 2:
		return enums.PriorityHigh
	case violations > 0:
		return enums.PriorityMedium
	default:
		return enums.PriorityLow
	}
}

// EscalateReportPriority is the second stage; it overrides the computed value.
func EscalateReportPriority(computed enums.Priority, violations int64) enums.Priority {
	if violations > EscalationViolationThreshold {
		return enums.PriorityUrgent
	}
	return computed
}

func ReportPriority(reason enums.ReportReason, violations int64) enums.Priority {
	computed := ComputeReportPriority(reason, violations)
	return EscalateReportPriority(computed, violations)
}
