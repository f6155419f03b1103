package rules

import (
	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

const RepeatOffenderThreshold = 2

func IsRepeatOffender(violations int64) bool {
	return violations > RepeatOffenderThreshold
}

// UserRiskLevel classifies a user from violations, action history and report volume.
// Reversed actions are ignored.
func UserRiskLevel(violations int64, actions []model.ModerationAction, reportCount int) enums.RiskLevel {
	hasBan, hasKick := false, false
	for _, a := range actions {
		if a.Reversed {
			continue
		}
		switch a.Type {
		case enums.ActionTypeBan:
			hasBan = true
		case enums.ActionTypeKick:
			hasKick = true
		}
	}

	switch {
	case violations > 10 || hasBan:
		return enums.RiskLevelCritical
	case violations > 5 || hasKick:
		return enums.RiskLevelHigh
	case violations > 2 || reportCount > 3:
		return enums.RiskLevelMedium
	default:
		return enums.RiskLevelLow
	}
}

// Recommendations are advisory only; nothing applies them automatically.
func Recommendations(level enums.RiskLevel, violations int64, reportCount int) []string {
	out := make([]string, 0, 3)
	switch level {
	case enums.RiskLevelCritical:
		out = append(out, "Consider a permanent ban", "Review all recent content from this user")
	case enums.RiskLevelHigh:
		out = append(out, "Consider a temporary suspension", "Monitor user activity closely")
	case enums.RiskLevelMedium:
		out = append(out, "Issue a formal warning", "Monitor user activity")
	default:
		out = append(out, "No action needed")
	}
	if reportCount > 3 {
		out = append(out, "Investigate the pattern of user reports")
	}
	if IsRepeatOffender(violations) && level != enums.RiskLevelCritical {
		out = append(out, "Enable stricter automated filtering for this user")
	}
	return out
}
