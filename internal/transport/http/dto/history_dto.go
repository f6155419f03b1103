package dto

import "github.com/ivankudzin/trustengine/internal/domain/model"

type HistoryResponse struct {
	UserID          string           `json:"user_id"`
	Reports         []ReportResponse `json:"reports"`
	Actions         []ActionResponse `json:"actions"`
	ViolationCount  int64            `json:"violation_count"`
	RiskLevel       string           `json:"risk_level"`
	Recommendations []string         `json:"recommendations"`
}

func FromHistory(h model.HistoryView) HistoryResponse {
	return HistoryResponse{
		UserID:          h.UserID,
		Reports:         FromReports(h.Reports),
		Actions:         FromActions(h.Actions),
		ViolationCount:  h.ViolationCount,
		RiskLevel:       string(h.RiskLevel),
		Recommendations: nonNil(h.Recommendations),
	}
}
