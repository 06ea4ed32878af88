package activity

import (
	"sort"
	"time"

	"github.com/makkenzo/license-admin-console/internal/domain/license"
)

type Counts struct {
	Validations int `json:"validations"`
	Creations   int `json:"creations"`
	Revocations int `json:"revocations"`
	Errors      int `json:"errors"`
}

// Count tallies entries by action. Unrecognised actions are ignored.
func Count(logs []Entry) Counts {
	var c Counts
	for _, e := range logs {
		switch e.Action {
		case ActionValidate:
			c.Validations++
		case ActionCreate:
			c.Creations++
		case ActionRevoke:
			c.Revocations++
		case ActionError:
			c.Errors++
		}
	}
	return c
}

// DayCount is one histogram bar. Percent is the count scaled against the
// busiest day in the same histogram.
type DayCount struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// Daily groups entries by calendar day in loc and returns the days in
// ascending order. Entries with an unparseable timestamp are skipped.
func Daily(logs []Entry, loc *time.Location) []DayCount {
	if loc == nil {
		loc = time.Local
	}

	perDay := make(map[string]int)
	labels := make(map[string]string)
	for _, e := range logs {
		at, ok := license.ParseTimestamp(e.Timestamp)
		if !ok {
			continue
		}
		local := at.In(loc)
		day := local.Format(time.DateOnly)
		perDay[day]++
		labels[day] = local.Format("02/01")
	}

	days := make([]DayCount, 0, len(perDay))
	busiest := 0
	for day, n := range perDay {
		days = append(days, DayCount{Date: day, Label: labels[day], Count: n})
		if n > busiest {
			busiest = n
		}
	}
	// yyyy-MM-dd sorts lexically in date order.
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	for i := range days {
		days[i].Percent = days[i].Count * 100 / busiest
	}
	return days
}

// Summary is the stats page view-model for one window.
type Summary struct {
	Range  Range      `json:"range"`
	Total  int        `json:"total"`
	Counts Counts     `json:"counts"`
	Daily  []DayCount `json:"daily"`
	NoData bool       `json:"no_data"`
}

// Summarize filters logs to the window ending at now and aggregates them.
func Summarize(logs []Entry, r Range, now time.Time, loc *time.Location) Summary {
	filtered := InWindow(logs, r, now)
	daily := Daily(filtered, loc)
	return Summary{
		Range:  r,
		Total:  len(filtered),
		Counts: Count(filtered),
		Daily:  daily,
		NoData: len(daily) == 0,
	}
}
