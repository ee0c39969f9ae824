package model

import "time"

// Segment is a persisted piece of a goal's commitment line.
type Segment struct {
	ID         string    `db:"id" json:"id"`
	GoalID     string    `db:"goal_id" json:"goal_id"`
	StartDate  string    `db:"start_date" json:"start_date"`
	EndDate    string    `db:"end_date" json:"end_date"`
	StartValue float64   `db:"start_value" json:"start_value"`
	EndValue   float64   `db:"end_value" json:"end_value"`
	Rate       float64   `db:"rate" json:"rate"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
