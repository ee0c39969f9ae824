package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pledgeline/pledgeline/internal/model"
)

const (
	GoalSortRecent   = "recent"
	GoalSortDeadline = "deadline"
	GoalSortTitle    = "title"
	GoalSortStake    = "stake"
)

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrGoalNotActive     = errors.New("goal is not active")
	ErrGoalStatusChanged = errors.New("goal status changed")
)

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(userID, goalID string) (*model.Goal, error)
	ByIDAny(goalID string) (*model.Goal, error)
	Goals(userID, sortBy string) ([]*model.Goal, error)
	Active() ([]*model.Goal, error)
	Update(goal *model.Goal) error
	UpdateStatus(userID, goalID, from, to string, at time.Time) error
	Delete(userID, goalID string) error
	MarkDerailed(goalID string, at time.Time, penalty *model.Transaction) error
	MarkCompleted(goalID string, at time.Time, refund *model.Transaction) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (
			id, user_id, title, description, unit_type,
			stake_amount, stake_recipient_type, start_date, end_date,
			check_in_frequency, target_value, initial_buffer_days,
			aggregation_method, timezone, status, derailed_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.UnitType,
		goal.StakeAmount,
		goal.StakeRecipientType,
		goal.StartDate,
		goal.EndDate,
		goal.CheckInFrequency,
		goal.TargetValue,
		goal.InitialBufferDays,
		goal.AggregationMethod,
		goal.Timezone,
		goal.Status,
		goal.DerailedAt,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(goal, query, goalID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// ByIDAny loads a goal without an ownership check. Only background jobs use it.
func (r *goalRepository) ByIDAny(goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1`

	err := r.db.Get(goal, query, goalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) Goals(userID, sortBy string) ([]*model.Goal, error) {
	var goals []*model.Goal

	var orderBy string
	switch sortBy {
	case GoalSortDeadline:
		orderBy = "ORDER BY end_date ASC, created_at ASC"
	case GoalSortTitle:
		orderBy = "ORDER BY LOWER(title) ASC"
	case GoalSortStake:
		orderBy = "ORDER BY stake_amount DESC, created_at DESC"
	default: // GoalSortRecent or empty
		orderBy = "ORDER BY updated_at DESC"
	}

	query := `SELECT * FROM goals WHERE user_id = $1 ` + orderBy

	err := r.db.Select(&goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// Active returns every active goal across all users.
func (r *goalRepository) Active() ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE status = $1 ORDER BY end_date ASC`

	err := r.db.Select(&goals, query, model.GoalStatusActive)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// Update saves a goal's descriptive fields. Status only moves through
// UpdateStatus and the settle methods.
func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, description = $2, unit_type = $3, stake_recipient_type = $4,
	              aggregation_method = $5, updated_at = $6
	          WHERE id = $7 AND user_id = $8`

	result, err := r.db.Exec(query,
		goal.Title,
		goal.Description,
		goal.UnitType,
		goal.StakeRecipientType,
		goal.AggregationMethod,
		goal.UpdatedAt,
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return err
	}

	return expectRow(result, ErrGoalNotFound)
}

// UpdateStatus moves a goal from one status to another. It returns
// ErrGoalStatusChanged when the stored status is no longer from.
func (r *goalRepository) UpdateStatus(userID, goalID, from, to string, at time.Time) error {
	query := `UPDATE goals SET status = $1, updated_at = $2
	          WHERE id = $3 AND user_id = $4 AND status = $5`

	result, err := r.db.Exec(query, to, at, goalID, userID, from)
	if err != nil {
		return err
	}

	return expectRow(result, ErrGoalStatusChanged)
}

func (r *goalRepository) Delete(userID, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, goalID, userID)
	if err != nil {
		return err
	}

	return expectRow(result, ErrGoalNotFound)
}

// MarkDerailed fails an active goal and records its penalty in one transaction.
func (r *goalRepository) MarkDerailed(goalID string, at time.Time, penalty *model.Transaction) error {
	return r.settle(goalID, model.GoalStatusFailed, &at, at, penalty)
}

// MarkCompleted completes an active goal and records its refund in one transaction.
func (r *goalRepository) MarkCompleted(goalID string, at time.Time, refund *model.Transaction) error {
	return r.settle(goalID, model.GoalStatusCompleted, nil, at, refund)
}

func (r *goalRepository) settle(goalID, status string, derailedAt *time.Time, at time.Time, txn *model.Transaction) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Only an active goal can settle, so a second sweep is a no-op
	result, err := tx.Exec(
		`UPDATE goals SET status = $1, derailed_at = $2, updated_at = $3 WHERE id = $4 AND status = $5`,
		status, derailedAt, at, goalID, model.GoalStatusActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal status: %w", err)
	}
	err = expectRow(result, ErrGoalNotActive)
	if err != nil {
		return err
	}

	if txn != nil {
		err = insertTransaction(tx, txn)
		if err != nil {
			return fmt.Errorf("failed to record %s: %w", txn.TransactionType, err)
		}
	}

	return tx.Commit()
}

func expectRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
