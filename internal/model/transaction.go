package model

import "time"

const (
	TransactionTypeStake   = "stake"
	TransactionTypeRefund  = "refund"
	TransactionTypePenalty = "penalty"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is a ledger row for money moving because of a goal.
// Rows are recorded here; settling them is somebody else's job.
type Transaction struct {
	ID              string    `db:"id" json:"id"`
	GoalID          string    `db:"goal_id" json:"goal_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Amount          float64   `db:"amount" json:"amount"`
	TransactionType string    `db:"transaction_type" json:"transaction_type"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// DashboardStats summarizes a user's goals and money at stake.
type DashboardStats struct {
	ActiveGoals    int     `json:"active_goals"`
	CompletedGoals int     `json:"completed_goals"`
	FailedGoals    int     `json:"failed_goals"`
	TotalStaked    float64 `json:"total_staked"`
	TotalRefunded  float64 `json:"total_refunded"`
	TotalPenalties float64 `json:"total_penalties"`
	SuccessRate    float64 `json:"success_rate"`
}
