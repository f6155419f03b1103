package enums

import "strings"

type ActionType string

const (
	ActionTypeWarn          ActionType = "warn"
	ActionTypeMute          ActionType = "mute"
	ActionTypeKick          ActionType = "kick"
	ActionTypeBan           ActionType = "ban"
	ActionTypeDeleteMessage ActionType = "delete_message"
	ActionTypeEditMessage   ActionType = "edit_message"
)

func ParseActionType(raw string) (ActionType, bool) {
	switch v := ActionType(strings.ToLower(strings.TrimSpace(raw))); v {
	case ActionTypeWarn, ActionTypeMute, ActionTypeKick, ActionTypeBan, ActionTypeDeleteMessage, ActionTypeEditMessage:
		return v, true
	default:
		return "", false
	}
}

func (t ActionType) TargetsMessage() bool {
	return t == ActionTypeDeleteMessage || t == ActionTypeEditMessage
}

func (t ActionType) SupportsDuration() bool {
	return t == ActionTypeMute || t == ActionTypeBan
}

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)
