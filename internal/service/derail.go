package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pledgeline/pledgeline/internal/autofill"
	"github.com/pledgeline/pledgeline/internal/metrics"
	"github.com/pledgeline/pledgeline/internal/model"
	"github.com/pledgeline/pledgeline/internal/repository"
	"golang.org/x/sync/errgroup"
)

// SweepResult counts what one sweep did.
type SweepResult struct {
	Evaluated int `json:"evaluated"`
	Derailed  int `json:"derailed"`
	Completed int `json:"completed"`
	Errors    int `json:"errors"`
}

// DerailService settles active goals: overdue goals derail with a penalty,
// and goals that reach their end date on or above the line complete with a
// refund. Settlements are ledger rows; moving money happens elsewhere.
type DerailService struct {
	repo        repository.GoalRepository
	checkInRepo repository.CheckInRepository
	segmentRepo repository.SegmentRepository
	location    *time.Location
	concurrency int
}

func NewDerailService(
	repo repository.GoalRepository,
	checkInRepo repository.CheckInRepository,
	segmentRepo repository.SegmentRepository,
	location *time.Location,
	concurrency int,
) *DerailService {
	if location == nil {
		location = time.UTC
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &DerailService{
		repo:        repo,
		checkInRepo: checkInRepo,
		segmentRepo: segmentRepo,
		location:    location,
		concurrency: concurrency,
	}
}

// Sweep evaluates every active goal at now. A goal that fails to evaluate is
// logged and counted; it does not stop the others.
func (s *DerailService) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	start := time.Now()
	defer func() { metrics.ObserveSweep(time.Since(start)) }()

	goals, err := s.repo.Active()
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to load active goals: %w", err)
	}

	var (
		mu     sync.Mutex
		result SweepResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, goal := range goals {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome, err := s.settle(goal, now)

			mu.Lock()
			defer mu.Unlock()
			result.Evaluated++
			switch {
			case err != nil:
				result.Errors++
				metrics.RecordSweepError()
				slog.Error("sweep failed to settle goal", "error", err, "goal_id", goal.ID)
			case outcome == metrics.OutcomeDerailed:
				result.Derailed++
			case outcome == metrics.OutcomeCompleted:
				result.Completed++
			}
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return result, err
	}

	slog.Info("sweep finished",
		"evaluated", result.Evaluated,
		"derailed", result.Derailed,
		"completed", result.Completed,
		"errors", result.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// settle decides one goal. The end date is checked before the deadline:
// once the line has ended every goal reads as overdue.
func (s *DerailService) settle(goal *model.Goal, now time.Time) (string, error) {
	calc, checkIns, err := buildCalculator(goal, s.location, s.checkInRepo, s.segmentRepo)
	if err != nil {
		return "", err
	}

	cfg, err := goal.Config(s.location)
	if err != nil {
		return "", err
	}

	if !now.Before(cfg.EndDate) {
		current := autofill.CurrentValue(checkIns)
		if current >= calc.RequiredValue(cfg.EndDate) {
			return s.mark(goal, now, metrics.OutcomeCompleted, "")
		}
		return s.mark(goal, cfg.EndDate, metrics.OutcomeDerailed, "ended below the line")
	}

	status := calc.Status(checkIns, now)
	metrics.RecordSafety(string(status.Level))
	if status.IsOverdue {
		return s.mark(goal, now, metrics.OutcomeDerailed, status.Message)
	}
	return "", nil
}

func (s *DerailService) mark(goal *model.Goal, at time.Time, outcome, reason string) (string, error) {
	txn := &model.Transaction{
		ID:        uuid.NewString(),
		GoalID:    goal.ID,
		UserID:    goal.UserID,
		Amount:    goal.StakeAmount,
		Status:    model.TransactionStatusPending,
		CreatedAt: at,
	}

	var err error
	if outcome == metrics.OutcomeDerailed {
		txn.TransactionType = model.TransactionTypePenalty
		err = s.repo.MarkDerailed(goal.ID, at, txn)
	} else {
		txn.TransactionType = model.TransactionTypeRefund
		err = s.repo.MarkCompleted(goal.ID, at, txn)
	}

	// Paused or settled by someone else since the goal was loaded
	if errors.Is(err, repository.ErrGoalNotActive) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	metrics.RecordSettlement(outcome)
	if outcome == metrics.OutcomeDerailed {
		slog.Warn("goal derailed",
			"goal_id", goal.ID,
			"user_id", goal.UserID,
			"stake", goal.StakeAmount,
			"recipient", goal.StakeRecipientType,
			"reason", reason,
		)
	} else {
		slog.Info("goal completed", "goal_id", goal.ID, "user_id", goal.UserID)
	}
	return outcome, nil
}

// Run sweeps on every tick until ctx is cancelled.
func (s *DerailService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("derailment sweeper started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("derailment sweeper stopped")
			return
		case now := <-ticker.C:
			_, err := s.Sweep(ctx, now)
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("sweep failed", "error", err)
			}
		}
	}
}
