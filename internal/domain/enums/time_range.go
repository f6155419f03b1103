package enums

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange is a dashboard window parsed once at the API boundary.
type TimeRange struct {
	Label    string
	Duration time.Duration
}

var (
	TimeRange24h = TimeRange{Label: "24h", Duration: 24 * time.Hour}
	TimeRange7d  = TimeRange{Label: "7d", Duration: 7 * 24 * time.Hour}
	TimeRange30d = TimeRange{Label: "30d", Duration: 30 * 24 * time.Hour}
)

func ParseTimeRange(raw string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "24h":
		return TimeRange24h, nil
	case "7d":
		return TimeRange7d, nil
	case "30d":
		return TimeRange30d, nil
	default:
		return TimeRange{}, fmt.Errorf("unsupported time range %q", raw)
	}
}

// Cutoff returns the exclusive lower bound of the window ending at now.
func (r TimeRange) Cutoff(now time.Time) time.Time {
	return now.Add(-r.Duration)
}
