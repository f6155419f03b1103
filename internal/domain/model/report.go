package model

import (
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
)

type UserReport struct {
	ID              string
	ReporterID      string
	TargetUserID    string
	TargetMessageID *string
	Reason          enums.ReportReason
	Description     string
	Evidence        []string
	Status          enums.ReportStatus
	Priority        enums.Priority
	Timestamp       time.Time
	ReviewedBy      *string
	Resolution      *string
	ReviewedAt      *time.Time
}

func (r UserReport) Clone() UserReport {
	out := r
	if r.Evidence != nil {
		out.Evidence = append([]string(nil), r.Evidence...)
	}
	out.TargetMessageID = cloneString(r.TargetMessageID)
	out.ReviewedBy = cloneString(r.ReviewedBy)
	out.Resolution = cloneString(r.Resolution)
	if r.ReviewedAt != nil {
		v := *r.ReviewedAt
		out.ReviewedAt = &v
	}
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
