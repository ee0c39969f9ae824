// Package safety turns a goal's configuration and check-ins into a safety
// status: how much buffer is left, when the goal derails, and how urgent
// that is.
package safety

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pledgeline/pledgeline/internal/autofill"
	"github.com/pledgeline/pledgeline/internal/model"
	"github.com/pledgeline/pledgeline/internal/trajectory"
)

// Status is the result of one evaluation. It is recomputed on demand.
type Status struct {
	Level              Level     `json:"level"`
	DaysOfBuffer       float64   `json:"days_of_buffer"`
	HoursUntilDeadline float64   `json:"hours_until_deadline"`
	IsOverdue          bool      `json:"is_overdue"`
	Message            string    `json:"message"`
	Color              string    `json:"color"`
	Background         string    `json:"background_color"`
	Deadline           time.Time `json:"deadline"`
	CurrentValue       float64   `json:"current_value"`
	RequiredValue      float64   `json:"required_value"`
}

// MarshalJSON writes an unbounded buffer as null, since JSON has no infinity.
func (s Status) MarshalJSON() ([]byte, error) {
	type status Status
	var buffer *float64
	if !math.IsInf(s.DaysOfBuffer, 0) && !math.IsNaN(s.DaysOfBuffer) {
		buffer = &s.DaysOfBuffer
	}
	return json.Marshal(struct {
		status
		DaysOfBuffer *float64 `json:"days_of_buffer"`
	}{status(s), buffer})
}

// Calculator evaluates one goal. It is immutable after construction and safe
// for concurrent use.
type Calculator struct {
	cfg        model.GoalConfig
	trajectory *trajectory.Trajectory
}

// New builds the goal's single-segment commitment line from its configuration.
func New(cfg model.GoalConfig) *Calculator {
	rate := cfg.Frequency.Divisor() * cfg.TargetValue
	totalDays := model.DaysBetween(cfg.StartDate, cfg.EndDate)

	return &Calculator{
		cfg: cfg,
		trajectory: trajectory.New(
			cfg.StartDate,
			cfg.EndDate,
			0,
			rate*totalDays,
			rate,
			float64(cfg.InitialBufferDays),
		),
	}
}

// NewWithTrajectory evaluates against a caller-supplied line, such as one
// rebuilt from stored segments. The trajectory is copied.
func NewWithTrajectory(cfg model.GoalConfig, t *trajectory.Trajectory) *Calculator {
	return &Calculator{cfg: cfg, trajectory: t.Clone()}
}

// Trajectory returns a copy of the commitment line.
func (c *Calculator) Trajectory() *trajectory.Trajectory {
	return c.trajectory.Clone()
}

func (c *Calculator) RequiredValue(at time.Time) float64 {
	return c.trajectory.RequiredValue(at)
}

// Deadline is when progress frozen at current would meet the line.
func (c *Calculator) Deadline(current float64, now time.Time) time.Time {
	return c.trajectory.IntersectionDate(current, now)
}

// Status evaluates entries at now.
func (c *Calculator) Status(entries []model.CheckIn, now time.Time) Status {
	current := autofill.CurrentValue(entries)
	buffer := c.trajectory.BufferDays(current, now)
	deadline := c.trajectory.IntersectionDate(current, now)
	hours := float64(deadline.Sub(now).Milliseconds()) / float64(time.Hour/time.Millisecond)

	level, message := c.classify(buffer, hours)

	return Status{
		Level:              level,
		DaysOfBuffer:       buffer,
		HoursUntilDeadline: hours,
		IsOverdue:          hours < 0,
		Message:            message,
		Color:              level.Color(),
		Background:         level.Background(),
		Deadline:           deadline,
		CurrentValue:       current,
		RequiredValue:      c.trajectory.RequiredValue(now),
	}
}

func (c *Calculator) classify(buffer, hours float64) (Level, string) {
	stake := formatAmount(c.cfg.StakeAmount)

	switch {
	case hours < 0:
		return LevelOverdue, fmt.Sprintf("OVERDUE! Pay $%s", stake)
	case hours < 24:
		return LevelCritical, fmt.Sprintf("Add data in %sh or pay $%s", floor(hours), stake)
	case buffer < 1:
		return LevelUrgent, fmt.Sprintf("Add data today or pay $%s", stake)
	case buffer < 2:
		return LevelSoon, fmt.Sprintf("%s hours of buffer", floor(buffer*24))
	case buffer < 7:
		return LevelSafe, fmt.Sprintf("%s days of buffer", floor(buffer))
	default:
		return LevelBuffer, fmt.Sprintf("%s days of buffer", floor(buffer))
	}
}

func floor(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return strconv.FormatFloat(math.Floor(v), 'f', 0, 64)
}

// formatAmount prints the shortest form of a currency amount: 50, 12.5.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
