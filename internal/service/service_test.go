package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pledgeline/pledgeline/internal/db"
	"github.com/pledgeline/pledgeline/internal/model"
	"github.com/pledgeline/pledgeline/internal/repository"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	goals        repository.GoalRepository
	checkIns     repository.CheckInRepository
	segments     repository.SegmentRepository
	transactions repository.TransactionRepository
	service      *GoalService
	derail       *DerailService
	now          time.Time
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	conn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(database) })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	f := &fixture{
		goals:        repository.NewGoalRepository(database),
		checkIns:     repository.NewCheckInRepository(database),
		segments:     repository.NewSegmentRepository(database),
		transactions: repository.NewTransactionRepository(database),
		now:          now,
	}
	f.service = NewGoalService(f.goals, f.checkIns, f.segments, f.transactions, time.UTC)
	f.service.SetClock(func() time.Time { return f.now })
	f.derail = NewDerailService(f.goals, f.checkIns, f.segments, time.UTC, 4)
	return f
}

func dailyGoal(start, end string) GoalParams {
	return GoalParams{
		Title:            "Read a page",
		UnitType:         "pages",
		StakeAmount:      50,
		StartDate:        start,
		EndDate:          end,
		CheckInFrequency: model.FrequencyDaily,
		TargetValue:      1,
		Timezone:         "UTC",
	}
}

func (f *fixture) createGoal(t *testing.T, userID string, params GoalParams) *model.Goal {
	t.Helper()
	goal, err := f.service.Create(userID, params)
	require.NoError(t, err)
	return goal
}

func (f *fixture) checkIn(t *testing.T, userID, goalID, date string, value float64) {
	t.Helper()
	_, err := f.service.AddCheckIn(userID, goalID, CheckInParams{Date: date, Value: &value})
	require.NoError(t, err)
}
