package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/pledgeline/pledgeline/internal/model"
)

type SegmentRepository interface {
	Create(segment *model.Segment) error
	ByGoal(goalID string) ([]model.Segment, error)
}

type segmentRepository struct {
	db *sqlx.DB
}

func NewSegmentRepository(db *sqlx.DB) SegmentRepository {
	return &segmentRepository{db: db}
}

func (r *segmentRepository) Create(segment *model.Segment) error {
	query := `INSERT INTO trajectory_segments (id, goal_id, start_date, end_date, start_value, end_value, rate, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		segment.ID,
		segment.GoalID,
		segment.StartDate,
		segment.EndDate,
		segment.StartValue,
		segment.EndValue,
		segment.Rate,
		segment.CreatedAt,
	)

	return err
}

func (r *segmentRepository) ByGoal(goalID string) ([]model.Segment, error) {
	var segments []model.Segment
	query := `SELECT * FROM trajectory_segments WHERE goal_id = $1 ORDER BY start_date ASC, created_at ASC`

	err := r.db.Select(&segments, query, goalID)
	if err != nil {
		return nil, err
	}

	return segments, nil
}
