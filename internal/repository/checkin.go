package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/pledgeline/pledgeline/internal/model"
)

var (
	ErrCheckInNotFound = errors.New("check-in not found")
)

type CheckInRepository interface {
	Create(checkIn *model.CheckIn) error
	ByID(userID, checkInID string) (*model.CheckIn, error)
	ByGoal(goalID string) ([]model.CheckIn, error)
	Delete(userID, goalID, checkInID string) error
}

type checkInRepository struct {
	db *sqlx.DB
}

func NewCheckInRepository(db *sqlx.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Create(checkIn *model.CheckIn) error {
	query := `INSERT INTO check_ins (id, goal_id, user_id, check_in_date, value, status, notes, evidence_url, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		checkIn.ID,
		checkIn.GoalID,
		checkIn.UserID,
		checkIn.Date,
		checkIn.Value,
		checkIn.Status,
		checkIn.Notes,
		checkIn.EvidenceURL,
		checkIn.CreatedAt,
	)

	return err
}

func (r *checkInRepository) ByID(userID, checkInID string) (*model.CheckIn, error) {
	checkIn := &model.CheckIn{}
	query := `SELECT * FROM check_ins WHERE id = $1 AND user_id = $2`

	err := r.db.Get(checkIn, query, checkInID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCheckInNotFound
	}
	if err != nil {
		return nil, err
	}

	return checkIn, nil
}

// ByGoal returns a goal's check-ins in the order they were recorded.
// First/last aggregation depends on this order.
func (r *checkInRepository) ByGoal(goalID string) ([]model.CheckIn, error) {
	var checkIns []model.CheckIn
	query := `SELECT * FROM check_ins WHERE goal_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.Select(&checkIns, query, goalID)
	if err != nil {
		return nil, err
	}

	return checkIns, nil
}

func (r *checkInRepository) Delete(userID, goalID, checkInID string) error {
	query := `DELETE FROM check_ins WHERE id = $1 AND goal_id = $2 AND user_id = $3`
	result, err := r.db.Exec(query, checkInID, goalID, userID)
	if err != nil {
		return err
	}

	return expectRow(result, ErrCheckInNotFound)
}
