package activity

import (
	"time"

	"github.com/makkenzo/license-admin-console/internal/domain/license"
)

// Range is one of the selectable look-back windows of the stats page.
type Range string

const (
	Range7Days  Range = "7days"
	Range30Days Range = "30days"
	Range90Days Range = "90days"
)

var Ranges = []Range{Range7Days, Range30Days, Range90Days}

// ParseRange falls back to the 7-day window for unknown input.
func ParseRange(s string) Range {
	switch Range(s) {
	case Range30Days, Range90Days:
		return Range(s)
	default:
		return Range7Days
	}
}

func (r Range) Days() int {
	switch r {
	case Range30Days:
		return 30
	case Range90Days:
		return 90
	default:
		return 7
	}
}

// Start is the inclusive lower bound of the window ending at now.
func (r Range) Start(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.Days())
}

// InWindow keeps the entries whose timestamp is valid and not older than the
// window start. Source order is preserved.
func InWindow(logs []Entry, r Range, now time.Time) []Entry {
	start := r.Start(now)
	out := make([]Entry, 0, len(logs))
	for _, e := range logs {
		at, ok := license.ParseTimestamp(e.Timestamp)
		if !ok || at.Before(start) {
			continue
		}
		out = append(out, e)
	}
	return out
}
