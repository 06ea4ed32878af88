package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func at(t time.Time, action string) Entry {
	return Entry{Action: action, LicenseKey: "KEY", Success: true, Timestamp: t.Format(time.RFC3339)}
}

func TestParseRange(t *testing.T) {
	assert.Equal(t, Range30Days, ParseRange("30days"))
	assert.Equal(t, Range90Days, ParseRange("90days"))
	assert.Equal(t, Range7Days, ParseRange("7days"))
	assert.Equal(t, Range7Days, ParseRange("1year"))
	assert.Equal(t, 90, Range90Days.Days())
}

func TestInWindow_EightDaysAgo(t *testing.T) {
	logs := []Entry{at(now.AddDate(0, 0, -8), ActionCreate)}

	assert.Empty(t, InWindow(logs, Range7Days, now))
	assert.Len(t, InWindow(logs, Range30Days, now), 1)
	assert.Len(t, InWindow(logs, Range90Days, now), 1)
}

func TestInWindow_BoundaryAndInvalid(t *testing.T) {
	logs := []Entry{
		at(now.AddDate(0, 0, -7), ActionCreate),
		at(now.AddDate(0, 0, -7).Add(-time.Second), ActionCreate),
		{Action: ActionCreate, Timestamp: ""},
		{Action: ActionCreate, Timestamp: "yesterday"},
	}
	got := InWindow(logs, Range7Days, now)
	require.Len(t, got, 1)
	assert.Equal(t, logs[0], got[0])
}

func TestInWindow_MinutePrecision(t *testing.T) {
	logs := []Entry{{Action: ActionValidate, Timestamp: "2025-03-14T10:00Z"}}

	got := InWindow(logs, Range7Days, now)
	require.Len(t, got, 1)
	assert.Equal(t, 1, Count(got).Validations)
}

func TestCount(t *testing.T) {
	logs := []Entry{
		at(now, ActionValidate),
		at(now, ActionValidate),
		at(now, ActionCreate),
		at(now, ActionRevoke),
		at(now, ActionError),
		at(now, "delete"),
	}
	assert.Equal(t, Counts{Validations: 2, Creations: 1, Revocations: 1, Errors: 1}, Count(logs))
}

func TestDaily_SortedUniqueAndSummed(t *testing.T) {
	logs := []Entry{
		at(now.AddDate(0, 0, -1), ActionValidate),
		at(now, ActionValidate),
		at(now.AddDate(0, 0, -3), ActionCreate),
		at(now.AddDate(0, 0, -1).Add(time.Hour), ActionRevoke),
		at(now.Add(-time.Hour), ActionError),
		at(now, "unknown"),
	}

	days := Daily(logs, time.UTC)
	require.Len(t, days, 3)

	seen := map[string]bool{}
	sum := 0
	for i, d := range days {
		assert.False(t, seen[d.Date], "duplicate %s", d.Date)
		seen[d.Date] = true
		sum += d.Count
		if i > 0 {
			assert.Less(t, days[i-1].Date, d.Date)
		}
	}
	assert.Equal(t, len(logs), sum)

	assert.Equal(t, "2025-03-11", days[0].Date)
	assert.Equal(t, "11/03", days[0].Label)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, 33, days[0].Percent)
	assert.Equal(t, 3, days[2].Count)
	assert.Equal(t, 100, days[2].Percent)
}

func TestDaily_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	logs := []Entry{at(time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC), ActionCreate)}

	assert.Equal(t, "2025-03-14", Daily(logs, time.UTC)[0].Date)
	assert.Equal(t, "2025-03-15", Daily(logs, tokyo)[0].Date)
}

func TestSummarize_Empty(t *testing.T) {
	for _, logs := range [][]Entry{
		nil,
		{{Action: ActionCreate, Timestamp: "garbage"}},
		{at(now.AddDate(0, 0, -100), ActionCreate)},
	} {
		s := Summarize(logs, Range90Days, now, time.UTC)
		assert.Equal(t, Counts{}, s.Counts)
		assert.Empty(t, s.Daily)
		assert.True(t, s.NoData)
		assert.Zero(t, s.Total)
	}
}

func TestSummarize_SumMatchesInWindow(t *testing.T) {
	logs := []Entry{
		at(now.AddDate(0, 0, -2), ActionCreate),
		at(now.AddDate(0, 0, -10), ActionCreate),
		at(now.AddDate(0, 0, -40), ActionValidate),
		{Action: ActionError, Timestamp: "bad"},
	}

	for _, r := range Ranges {
		s := Summarize(logs, r, now, time.UTC)
		sum := 0
		for _, d := range s.Daily {
			sum += d.Count
		}
		assert.Equal(t, len(InWindow(logs, r, now)), sum, r)
		assert.Equal(t, s.Total, sum, r)
	}
}
