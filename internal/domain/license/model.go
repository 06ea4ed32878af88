package license

import (
	"bytes"
	"encoding/json"
	"time"
)

// License is the remote record as the admin API returns it. The console only
// ever holds read-through copies.
type License struct {
	ID         string    `json:"id"`
	LicenseKey string    `json:"license_key"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	IsActive   bool      `json:"is_active"`
	ExpiresAt  Timestamp `json:"expires_at"`
	CreatedAt  Timestamp `json:"created_at"`
	Notes      string    `json:"notes,omitempty"`
}

// Stats mirrors the aggregate counters served by GET /admin/stats.
type Stats struct {
	TotalLicenses   int64 `json:"total_licenses"`
	ActiveLicenses  int64 `json:"active_licenses"`
	ExpiredLicenses int64 `json:"expired_licenses"`
	ActiveUsers     int64 `json:"active_users"`
}

// ActiveRatio is the rounded share of active licenses, in percent.
func (s Stats) ActiveRatio() int {
	if s.TotalLicenses <= 0 {
		return 0
	}
	return int((s.ActiveLicenses*100 + s.TotalLicenses/2) / s.TotalLicenses)
}

// CreateRequest is the body of POST /admin/licenses.
type CreateRequest struct {
	UserEmail    string `json:"user_email" form:"user_email" binding:"required,email"`
	UserName     string `json:"user_name" form:"user_name" binding:"required"`
	DurationDays int    `json:"duration_days" form:"duration_days" binding:"required"`
	Notes        string `json:"notes" form:"notes"`
}

// UpdateRequest is the body of PUT /admin/licenses/{key}.
type UpdateRequest struct {
	UserEmail string `json:"user_email" form:"user_email" binding:"required,email"`
	UserName  string `json:"user_name" form:"user_name" binding:"required"`
	Notes     string `json:"notes" form:"notes"`
	IsActive  bool   `json:"is_active" form:"is_active"`
}

// UpdateRequestFor pre-fills an edit form from an existing record.
func UpdateRequestFor(l License) UpdateRequest {
	return UpdateRequest{
		UserEmail: l.UserEmail,
		UserName:  l.UserName,
		Notes:     l.Notes,
		IsActive:  l.IsActive,
	}
}

// Timestamp is an ISO-8601 wire time that decodes leniently: a missing or
// unparseable value leaves Valid false instead of failing the whole payload.
type Timestamp struct {
	Time  time.Time
	Valid bool
	Raw   string
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true, Raw: t.Format(time.RFC3339Nano)}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Numbers and other shapes are treated as unparseable rather than fatal.
		ts.Raw = string(data)
		return nil
	}
	ts.Raw = raw
	ts.Time, ts.Valid = ParseTimestamp(raw)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Valid {
		return json.Marshal(ts.Time.Format(time.RFC3339Nano))
	}
	if ts.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Raw)
}

// Format renders the time in loc, or "-" when the value is invalid.
func (ts Timestamp) Format(layout string, loc *time.Location) string {
	if !ts.Valid {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.Time.In(loc).Format(layout)
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimestamp accepts the ISO-8601 shapes the admin API emits. Date-time
// values without an offset are local time; a bare date is midnight UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
