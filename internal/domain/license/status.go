package license

import "time"

type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"

	// StatusAll is a filter value only, never a derived status.
	StatusAll Status = "all"
)

// DeriveStatus computes the display status from the raw fields. It is never
// stored: callers pass the current time on every render.
func DeriveStatus(l License, now time.Time) Status {
	if !l.IsActive {
		return StatusRevoked
	}
	if l.ExpiresAt.Valid && !l.ExpiresAt.Time.After(now) {
		return StatusExpired
	}
	return StatusActive
}

func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusExpired:
		return "Expired"
	case StatusRevoked:
		return "Revoked"
	case StatusAll:
		return "All"
	default:
		return "Unknown"
	}
}

// ParseStatusFilter maps a query value to a filter; unknown values mean all.
func ParseStatusFilter(s string) Status {
	switch Status(s) {
	case StatusActive, StatusExpired, StatusRevoked:
		return Status(s)
	default:
		return StatusAll
	}
}
