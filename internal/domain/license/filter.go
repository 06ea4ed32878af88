package license

import (
	"strings"
	"time"
)

// MatchesSearch reports whether term occurs, case-insensitively, in the
// user name, email or license key. An empty term matches everything.
func MatchesSearch(l License, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(l.UserName), term) ||
		strings.Contains(strings.ToLower(l.UserEmail), term) ||
		strings.Contains(strings.ToLower(l.LicenseKey), term)
}

func MatchesStatus(l License, filter Status, now time.Time) bool {
	return filter == StatusAll || DeriveStatus(l, now) == filter
}

func FilterBySearch(licenses []License, term string) []License {
	out := make([]License, 0, len(licenses))
	for _, l := range licenses {
		if MatchesSearch(l, term) {
			out = append(out, l)
		}
	}
	return out
}

func FilterByStatus(licenses []License, filter Status, now time.Time) []License {
	out := make([]License, 0, len(licenses))
	for _, l := range licenses {
		if MatchesStatus(l, filter, now) {
			out = append(out, l)
		}
	}
	return out
}

// Filter keeps the licenses matching both predicates, in source order.
func Filter(licenses []License, term string, filter Status, now time.Time) []License {
	out := make([]License, 0, len(licenses))
	for _, l := range licenses {
		if MatchesSearch(l, term) && MatchesStatus(l, filter, now) {
			out = append(out, l)
		}
	}
	return out
}
