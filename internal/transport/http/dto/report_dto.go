package dto

import "github.com/ivankudzin/trustengine/internal/domain/model"

type SubmitReportRequest struct {
	ReporterID      string   `json:"reporter_id"`
	TargetUserID    string   `json:"target_user_id"`
	TargetMessageID *string  `json:"target_message_id,omitempty"`
	Reason          string   `json:"reason"`
	Description     string   `json:"description"`
	Evidence        []string `json:"evidence,omitempty"`
}

type ReviewReportRequest struct {
	Decision   string `json:"decision"`
	Resolution string `json:"resolution"`
}

type ReportResponse struct {
	ID              string   `json:"id"`
	ReporterID      string   `json:"reporter_id"`
	TargetUserID    string   `json:"target_user_id"`
	TargetMessageID *string  `json:"target_message_id,omitempty"`
	Reason          string   `json:"reason"`
	Description     string   `json:"description"`
	Evidence        []string `json:"evidence"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	Timestamp       int64    `json:"timestamp"`
	ReviewedBy      *string  `json:"reviewed_by,omitempty"`
	Resolution      *string  `json:"resolution,omitempty"`
	ReviewedAt      *int64   `json:"reviewed_at,omitempty"`
}

type PendingReportsResponse struct {
	Items []ReportResponse `json:"items"`
}

type ReviewReportResponse struct {
	Report  ReportResponse  `json:"report"`
	Action  *ActionResponse `json:"action,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

func FromReport(r model.UserReport) ReportResponse {
	out := ReportResponse{
		ID:              r.ID,
		ReporterID:      r.ReporterID,
		TargetUserID:    r.TargetUserID,
		TargetMessageID: r.TargetMessageID,
		Reason:          string(r.Reason),
		Description:     r.Description,
		Evidence:        nonNil(r.Evidence),
		Status:          string(r.Status),
		Priority:        string(r.Priority),
		Timestamp:       r.Timestamp.UnixMilli(),
		ReviewedBy:      r.ReviewedBy,
		Resolution:      r.Resolution,
	}
	if r.ReviewedAt != nil {
		ms := r.ReviewedAt.UnixMilli()
		out.ReviewedAt = &ms
	}
	return out
}

func FromReports(in []model.UserReport) []ReportResponse {
	out := make([]ReportResponse, 0, len(in))
	for _, r := range in {
		out = append(out, FromReport(r))
	}
	return out
}
