package model

import (
	"fmt"
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusFailed    = "failed"
	GoalStatusPaused    = "paused"
)

const (
	RecipientFriend      = "friend"
	RecipientCharity     = "charity"
	RecipientAntiCharity = "anti_charity"
	RecipientCompel      = "compel"
)

type Goal struct {
	ID                 string     `db:"id" json:"id"`
	UserID             string     `db:"user_id" json:"user_id"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	UnitType           string     `db:"unit_type" json:"unit_type"`
	StakeAmount        float64    `db:"stake_amount" json:"stake_amount"`
	StakeRecipientType string     `db:"stake_recipient_type" json:"stake_recipient_type"`
	StartDate          string     `db:"start_date" json:"start_date"`
	EndDate            string     `db:"end_date" json:"end_date"`
	CheckInFrequency   Frequency  `db:"check_in_frequency" json:"check_in_frequency"`
	TargetValue        float64    `db:"target_value" json:"target_value"`
	InitialBufferDays  int        `db:"initial_buffer_days" json:"initial_buffer_days"`
	AggregationMethod  string     `db:"aggregation_method" json:"aggregation_method"`
	Timezone           string     `db:"timezone" json:"timezone"`
	Status             string     `db:"status" json:"status"`
	DerailedAt         *time.Time `db:"derailed_at" json:"derailed_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// GoalConfig is the immutable input to a safety evaluation.
// Dates are midnight of the local calendar day.
type GoalConfig struct {
	StartDate         time.Time
	EndDate           time.Time
	Frequency         Frequency
	TargetValue       float64
	InitialBufferDays int
	StakeAmount       float64
}

func (g *Goal) IsActive() bool {
	return g.Status == GoalStatusActive
}

// Location resolves the goal's timezone, falling back to def when unset or unknown.
func (g *Goal) Location(def *time.Location) *time.Location {
	if g.Timezone != "" {
		loc, err := time.LoadLocation(g.Timezone)
		if err == nil {
			return loc
		}
	}
	if def == nil {
		return time.Local
	}
	return def
}

// Config converts the stored goal into a GoalConfig with dates in the goal's location.
func (g *Goal) Config(def *time.Location) (GoalConfig, error) {
	loc := g.Location(def)

	start, err := ParseDate(g.StartDate, loc)
	if err != nil {
		return GoalConfig{}, fmt.Errorf("start date: %w", err)
	}
	end, err := ParseDate(g.EndDate, loc)
	if err != nil {
		return GoalConfig{}, fmt.Errorf("end date: %w", err)
	}

	return GoalConfig{
		StartDate:         start,
		EndDate:           end,
		Frequency:         g.CheckInFrequency,
		TargetValue:       g.TargetValue,
		InitialBufferDays: g.InitialBufferDays,
		StakeAmount:       g.StakeAmount,
	}, nil
}
