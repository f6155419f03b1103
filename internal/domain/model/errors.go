package model

import "errors"

// Store implementations return these so services can match them with errors.Is.
var (
	ErrReportNotFound        = errors.New("report not found")
	ErrReportAlreadyReviewed = errors.New("report already reviewed")
	ErrActionNotFound        = errors.New("moderation action not found")
	ErrActionAlreadyReversed = errors.New("moderation action already reversed")
)
