package safety

import (
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pledgeline/pledgeline/internal/model"
	"github.com/pledgeline/pledgeline/internal/trajectory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func yearGoal() model.GoalConfig {
	return model.GoalConfig{
		StartDate:   day(2025, 1, 1),
		EndDate:     day(2025, 12, 31),
		Frequency:   model.FrequencyDaily,
		TargetValue: 1,
		StakeAmount: 50,
	}
}

func progress(values ...float64) []model.CheckIn {
	entries := make([]model.CheckIn, len(values))
	for i, v := range values {
		entries[i] = model.CheckIn{Date: "2025-01-02", Value: &v, Status: model.CheckInSuccess}
	}
	return entries
}

func TestStatusOnTrack(t *testing.T) {
	status := New(yearGoal()).Status(progress(15), day(2025, 1, 11))

	assert.InDelta(t, 5, status.DaysOfBuffer, 1e-9)
	assert.False(t, status.IsOverdue)
	assert.Equal(t, LevelSafe, status.Level)
	assert.Equal(t, "5 days of buffer", status.Message)
	assert.Equal(t, day(2025, 1, 16), status.Deadline)
	assert.InDelta(t, 120, status.HoursUntilDeadline, 1e-9)
	assert.InDelta(t, 15, status.CurrentValue, 1e-9)
	assert.InDelta(t, 10, status.RequiredValue, 1e-9)
}

func TestStatusOverdue(t *testing.T) {
	status := New(yearGoal()).Status(nil, day(2025, 1, 11))

	assert.True(t, status.IsOverdue)
	assert.Equal(t, LevelOverdue, status.Level)
	assert.Equal(t, "OVERDUE! Pay $50", status.Message)
	assert.Contains(t, status.Message, "50")
	assert.Equal(t, "text-black", status.Color)
	assert.Equal(t, "bg-black", status.Background)
}

func TestStatusLevels(t *testing.T) {
	now := day(2025, 1, 11)

	tests := []struct {
		name    string
		current float64
		level   Level
		message string
	}{
		{name: "critical", current: 10.5, level: LevelCritical, message: "Add data in 12h or pay $50"},
		{name: "soon", current: 11.5, level: LevelSoon, message: "36 hours of buffer"},
		{name: "safe", current: 16.25, level: LevelSafe, message: "6 days of buffer"},
		{name: "buffer", current: 30, level: LevelBuffer, message: "20 days of buffer"},
		{name: "exactly on the line", current: 10, level: LevelCritical, message: "Add data in 0h or pay $50"},
		{name: "behind", current: 9, level: LevelOverdue, message: "OVERDUE! Pay $50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := New(yearGoal()).Status(progress(tt.current), now)
			assert.Equal(t, tt.level, status.Level)
			assert.Equal(t, tt.message, status.Message)
			assert.Equal(t, tt.level.Color(), status.Color)
			assert.Equal(t, tt.level.Background(), status.Background)
		})
	}
}

func TestStatusUrgent(t *testing.T) {
	// The line rises until Jan 11 06:00, pauses for ten days, then rises again,
	// so half a day of buffer still leaves more than a day before derailing.
	pause := day(2025, 1, 11).Add(6 * time.Hour)
	traj := trajectory.FromSegments(
		trajectory.Segment{StartDate: day(2025, 1, 1), EndDate: pause, StartValue: 0, EndValue: 10.25, Rate: 1},
		trajectory.Segment{StartDate: pause, EndDate: day(2025, 1, 21).Add(6 * time.Hour), StartValue: 10.25, EndValue: 10.25},
		trajectory.Segment{StartDate: day(2025, 1, 21).Add(6 * time.Hour), EndDate: day(2025, 2, 20), StartValue: 10.25, EndValue: 40, Rate: 1},
	)

	status := NewWithTrajectory(yearGoal(), traj).Status(progress(10.5), day(2025, 1, 11))
	assert.InDelta(t, 0.5, status.DaysOfBuffer, 1e-9)
	assert.Greater(t, status.HoursUntilDeadline, 24.0)
	assert.Equal(t, LevelUrgent, status.Level)
	assert.Equal(t, "Add data today or pay $50", status.Message)
}

func TestStatusCountsOnlySuccess(t *testing.T) {
	entries := progress(15, 100)
	entries[1].Status = model.CheckInMissed

	status := New(yearGoal()).Status(entries, day(2025, 1, 11))
	assert.InDelta(t, 15, status.CurrentValue, 1e-9)
}

func TestStatusFrequency(t *testing.T) {
	cfg := yearGoal()
	cfg.Frequency = model.FrequencyWeekly
	cfg.TargetValue = 7

	status := New(cfg).Status(progress(15), day(2025, 1, 11))
	assert.InDelta(t, 5, status.DaysOfBuffer, 1e-9)

	cfg.TargetValue = 1
	calc := New(cfg)
	assert.InDelta(t, 2, calc.RequiredValue(day(2025, 1, 15)), 1e-9)
}

func TestInitialBuffer(t *testing.T) {
	cfg := yearGoal()
	cfg.TargetValue = 2
	cfg.InitialBufferDays = 7

	calc := New(cfg)
	assert.InDelta(t, 14, calc.RequiredValue(cfg.StartDate), 1e-9)
	assert.InDelta(t, 34, calc.RequiredValue(day(2025, 1, 11)), 1e-9)
}

func TestZeroTarget(t *testing.T) {
	cfg := yearGoal()
	cfg.TargetValue = 0

	status := New(cfg).Status(nil, day(2025, 1, 11))
	assert.True(t, math.IsInf(status.DaysOfBuffer, 1))
	assert.False(t, status.IsOverdue)
	assert.Equal(t, cfg.EndDate, status.Deadline)
	assert.Equal(t, LevelBuffer, status.Level)
	assert.Equal(t, "∞ days of buffer", status.Message)

	raw, err := json.Marshal(status)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["days_of_buffer"])
	assert.Equal(t, "buffer", decoded["level"])
}

func TestStatusJSON(t *testing.T) {
	status := New(yearGoal()).Status(progress(15), day(2025, 1, 11))

	raw, err := json.Marshal(status)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.InDelta(t, 5, decoded["days_of_buffer"], 1e-9)
	assert.Equal(t, "5 days of buffer", decoded["message"])
	assert.Equal(t, false, decoded["is_overdue"])
}

func TestStatusAfterEndDate(t *testing.T) {
	status := New(yearGoal()).Status(progress(400), day(2026, 1, 5))
	assert.Equal(t, day(2025, 12, 31), status.Deadline)
	assert.True(t, status.IsOverdue)
}

func TestStakeFormatting(t *testing.T) {
	cfg := yearGoal()
	cfg.StakeAmount = 12.5
	status := New(cfg).Status(nil, day(2025, 1, 11))
	assert.Equal(t, "OVERDUE! Pay $12.5", status.Message)
}

func TestDeadline(t *testing.T) {
	calc := New(yearGoal())
	assert.Equal(t, day(2025, 1, 11), calc.Deadline(10, day(2025, 1, 1)))
}

func TestTrajectoryIsCopied(t *testing.T) {
	calc := New(yearGoal())
	traj := calc.Trajectory()
	traj.AddSegment(trajectory.Segment{StartDate: day(2026, 1, 1), EndDate: day(2026, 2, 1)})

	assert.Len(t, calc.Trajectory().Segments(), 1)
}

func TestConcurrentStatus(t *testing.T) {
	calc := New(yearGoal())
	entries := progress(15)
	now := day(2025, 1, 11)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Equal(t, LevelSafe, calc.Status(entries, now).Level)
			}
		}()
	}
	wg.Wait()
}
