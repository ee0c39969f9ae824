package model

import (
	"time"
)

// CheckInStatus is the outcome recorded for a check-in.
type CheckInStatus string

const (
	CheckInSuccess CheckInStatus = "success"
	CheckInMissed  CheckInStatus = "missed"
	CheckInPending CheckInStatus = "pending"
)

func (s CheckInStatus) Valid() bool {
	switch s {
	case CheckInSuccess, CheckInMissed, CheckInPending:
		return true
	}
	return false
}

// CheckIn is one recorded entry against a goal. Several may share a date.
type CheckIn struct {
	ID          string        `db:"id" json:"id"`
	GoalID      string        `db:"goal_id" json:"goal_id"`
	UserID      string        `db:"user_id" json:"user_id"`
	Date        string        `db:"check_in_date" json:"check_in_date"`
	Value       *float64      `db:"value" json:"value"`
	Status      CheckInStatus `db:"status" json:"status"`
	Notes       *string       `db:"notes" json:"notes,omitempty"`
	EvidenceURL *string       `db:"evidence_url" json:"evidence_url,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// Amount is the check-in's value, defaulting to 1 when none was recorded.
func (c CheckIn) Amount() float64 {
	if c.Value == nil {
		return 1
	}
	return *c.Value
}

func (c CheckIn) Counts() bool {
	return c.Status == CheckInSuccess
}

// AggregatedEntry collapses all successful check-ins of one day.
type AggregatedEntry struct {
	Date    string    `json:"date"`
	Value   float64   `json:"value"`
	Count   int       `json:"count"`
	Entries []CheckIn `json:"-"`
}
