package service

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pledgeline/pledgeline/internal/aggregate"
	"github.com/pledgeline/pledgeline/internal/autofill"
	"github.com/pledgeline/pledgeline/internal/metrics"
	"github.com/pledgeline/pledgeline/internal/model"
	"github.com/pledgeline/pledgeline/internal/repository"
	"github.com/pledgeline/pledgeline/internal/safety"
	"github.com/pledgeline/pledgeline/internal/trajectory"
	"github.com/pledgeline/pledgeline/internal/validation"
)

var (
	ErrInvalidGoal       = errors.New("invalid goal")
	ErrInvalidCheckIn    = errors.New("invalid check-in")
	ErrInvalidSegment    = errors.New("invalid segment")
	ErrGoalClosed        = errors.New("goal is closed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// GoalParams are the fields a user supplies when creating a goal.
type GoalParams struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	UnitType           string          `json:"unit_type"`
	StakeAmount        float64         `json:"stake_amount"`
	StakeRecipientType string          `json:"stake_recipient_type"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	CheckInFrequency   model.Frequency `json:"check_in_frequency"`
	TargetValue        float64         `json:"target_value"`
	InitialBufferDays  int             `json:"initial_buffer_days"`
	AggregationMethod  string          `json:"aggregation_method"`
	Timezone           string          `json:"timezone"`
}

// GoalUpdate changes the descriptive fields of a goal. The commitment itself
// (dates, target, stake) is fixed once pledged. Nil fields are left alone.
type GoalUpdate struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	UnitType           *string `json:"unit_type"`
	StakeRecipientType *string `json:"stake_recipient_type"`
	AggregationMethod  *string `json:"aggregation_method"`
}

type CheckInParams struct {
	Date        string              `json:"check_in_date"`
	Value       *float64            `json:"value"`
	Status      model.CheckInStatus `json:"status"`
	Notes       *string             `json:"notes"`
	EvidenceURL *string             `json:"evidence_url"`
}

// SegmentParams describe a road-dial change: from StartDate the line rises at
// Rate per day until EndDate (the goal's end date when empty).
type SegmentParams struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Rate      float64 `json:"rate"`
}

// Chart is everything needed to draw a goal's graph.
type Chart struct {
	Trajectory []trajectory.Point          `json:"trajectory"`
	Progress   []autofill.FilledDataPoint  `json:"progress"`
	Daily      []model.AggregatedEntry     `json:"daily"`
	Cumulative []aggregate.CumulativePoint `json:"cumulative"`
	Status     safety.Status               `json:"status"`
}

type GoalService struct {
	repo            repository.GoalRepository
	checkInRepo     repository.CheckInRepository
	segmentRepo     repository.SegmentRepository
	transactionRepo repository.TransactionRepository
	location        *time.Location
	now             func() time.Time
}

func NewGoalService(
	repo repository.GoalRepository,
	checkInRepo repository.CheckInRepository,
	segmentRepo repository.SegmentRepository,
	transactionRepo repository.TransactionRepository,
	location *time.Location,
) *GoalService {
	if location == nil {
		location = time.UTC
	}
	return &GoalService{
		repo:            repo,
		checkInRepo:     checkInRepo,
		segmentRepo:     segmentRepo,
		transactionRepo: transactionRepo,
		location:        location,
		now:             time.Now,
	}
}

// SetClock replaces the time source used for evaluations.
func (s *GoalService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *GoalService) Create(userID string, params GoalParams) (*model.Goal, error) {
	now := s.now()
	goal := &model.Goal{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Title:              params.Title,
		Description:        params.Description,
		UnitType:           params.UnitType,
		StakeAmount:        params.StakeAmount,
		StakeRecipientType: params.StakeRecipientType,
		StartDate:          model.NormalizeDate(params.StartDate),
		EndDate:            model.NormalizeDate(params.EndDate),
		CheckInFrequency:   params.CheckInFrequency,
		TargetValue:        params.TargetValue,
		InitialBufferDays:  params.InitialBufferDays,
		AggregationMethod:  params.AggregationMethod,
		Timezone:           params.Timezone,
		Status:             model.GoalStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if goal.CheckInFrequency == "" {
		goal.CheckInFrequency = model.FrequencyDaily
	}
	if goal.AggregationMethod == "" {
		goal.AggregationMethod = string(aggregate.MethodSum)
	}
	if goal.StakeRecipientType == "" {
		goal.StakeRecipientType = model.RecipientCharity
	}
	if goal.Timezone == "" {
		goal.Timezone = s.location.String()
	}

	err := validation.ValidateGoal(goal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGoal, err)
	}

	err = s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	err = s.transactionRepo.Create(&model.Transaction{
		ID:              uuid.NewString(),
		GoalID:          goal.ID,
		UserID:          userID,
		Amount:          goal.StakeAmount,
		TransactionType: model.TransactionTypeStake,
		Status:          model.TransactionStatusPending,
		CreatedAt:       now,
	})
	if err != nil {
		// Rollback: a goal without its stake is not a pledge
		delErr := s.repo.Delete(userID, goal.ID)
		if delErr != nil {
			slog.Error("failed to delete goal during rollback", "error", delErr, "goal_id", goal.ID)
		}
		return nil, fmt.Errorf("failed to record stake: %w", err)
	}

	slog.Info("goal created", "goal_id", goal.ID, "user_id", userID, "stake", goal.StakeAmount)
	return goal, nil
}

func (s *GoalService) ByID(userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(userID, goalID)
}

func (s *GoalService) Goals(userID, sortBy string) ([]*model.Goal, error) {
	return s.repo.Goals(userID, sortBy)
}

func (s *GoalService) Update(userID, goalID string, update GoalUpdate) (*model.Goal, error) {
	// Verify ownership
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		goal.Title = *update.Title
	}
	if update.Description != nil {
		goal.Description = *update.Description
	}
	if update.UnitType != nil {
		goal.UnitType = *update.UnitType
	}
	if update.StakeRecipientType != nil {
		goal.StakeRecipientType = *update.StakeRecipientType
	}
	if update.AggregationMethod != nil {
		goal.AggregationMethod = *update.AggregationMethod
	}

	err = validation.ValidateGoal(goal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGoal, err)
	}

	goal.UpdatedAt = s.now()
	err = s.repo.Update(goal)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) Delete(userID, goalID string) error {
	return s.repo.Delete(userID, goalID)
}

// Pause stops the sweeper from evaluating an active goal.
func (s *GoalService) Pause(userID, goalID string) (*model.Goal, error) {
	return s.transition(userID, goalID, model.GoalStatusActive, model.GoalStatusPaused)
}

func (s *GoalService) Resume(userID, goalID string) (*model.Goal, error) {
	return s.transition(userID, goalID, model.GoalStatusPaused, model.GoalStatusActive)
}

func (s *GoalService) transition(userID, goalID, from, to string) (*model.Goal, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if goal.Status != from {
		return nil, fmt.Errorf("%w: %s goal cannot become %s", ErrInvalidTransition, goal.Status, to)
	}

	now := s.now()
	err = s.repo.UpdateStatus(userID, goalID, from, to, now)
	if errors.Is(err, repository.ErrGoalStatusChanged) {
		return nil, fmt.Errorf("%w: goal is no longer %s", ErrInvalidTransition, from)
	}
	if err != nil {
		return nil, err
	}

	goal.Status = to
	goal.UpdatedAt = now

	slog.Info("goal status changed", "goal_id", goal.ID, "from", from, "to", to)
	return goal, nil
}

func (s *GoalService) AddCheckIn(userID, goalID string, params CheckInParams) (*model.CheckIn, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if isClosed(goal) {
		return nil, ErrGoalClosed
	}

	now := s.now()
	checkIn := &model.CheckIn{
		// v7 ids sort by creation time, which keeps same-instant check-ins in order
		ID:          uuid.Must(uuid.NewV7()).String(),
		GoalID:      goal.ID,
		UserID:      userID,
		Date:        model.NormalizeDate(params.Date),
		Value:       params.Value,
		Status:      params.Status,
		Notes:       params.Notes,
		EvidenceURL: params.EvidenceURL,
		CreatedAt:   now,
	}

	if checkIn.Date == "" {
		checkIn.Date = model.FormatDate(now.In(goal.Location(s.location)))
	}
	if checkIn.Status == "" {
		checkIn.Status = model.CheckInSuccess
	}

	err = validation.ValidateCheckIn(checkIn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCheckIn, err)
	}

	err = s.checkInRepo.Create(checkIn)
	if err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	return checkIn, nil
}

func (s *GoalService) CheckIns(userID, goalID string) ([]model.CheckIn, error) {
	// Verify ownership
	_, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	return s.checkInRepo.ByGoal(goalID)
}

func (s *GoalService) DeleteCheckIn(userID, goalID, checkInID string) error {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return err
	}

	if isClosed(goal) {
		return ErrGoalClosed
	}

	return s.checkInRepo.Delete(userID, goalID, checkInID)
}

// Status evaluates the goal at the current time.
func (s *GoalService) Status(userID, goalID string) (*safety.Status, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	calc, checkIns, err := s.evaluate(goal)
	if err != nil {
		return nil, err
	}

	status := calc.Status(checkIns, s.now())
	metrics.RecordSafety(string(status.Level))
	return &status, nil
}

// Chart samples the commitment line over the goal's lifetime and the
// user's progress up to today.
func (s *GoalService) Chart(userID, goalID string, pointsPerDay float64) (*Chart, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	calc, checkIns, err := s.evaluate(goal)
	if err != nil {
		return nil, err
	}

	cfg, err := goal.Config(s.location)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := model.StartOfDay(now.In(cfg.StartDate.Location()))
	progressEnd := cfg.EndDate
	if today.Before(progressEnd) {
		progressEnd = today
	}

	method := aggregate.ParseMethod(goal.AggregationMethod)
	return &Chart{
		Trajectory: slices.Collect(calc.Trajectory().Points(cfg.StartDate, cfg.EndDate, pointsPerDay)),
		Progress:   autofill.GenerateFilledData(checkIns, cfg.StartDate, progressEnd, method),
		Daily:      aggregate.ByDay(checkIns, method),
		Cumulative: aggregate.Cumulative(checkIns),
		Status:     calc.Status(checkIns, now),
	}, nil
}

// AddSegment applies a road-dial change to a goal's commitment line. The
// new segment continues the current line from its start date and cannot
// start in the past.
func (s *GoalService) AddSegment(userID, goalID string, params SegmentParams) (*model.Segment, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if isClosed(goal) {
		return nil, ErrGoalClosed
	}

	cfg, err := goal.Config(s.location)
	if err != nil {
		return nil, err
	}
	loc := cfg.StartDate.Location()

	start, err := model.ParseDate(params.StartDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: start date must be YYYY-MM-DD", ErrInvalidSegment)
	}
	end := cfg.EndDate
	if params.EndDate != "" {
		end, err = model.ParseDate(params.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: end date must be YYYY-MM-DD", ErrInvalidSegment)
		}
	}

	now := s.now()
	today := model.StartOfDay(now.In(loc))
	if start.Before(today) {
		return nil, fmt.Errorf("%w: segment cannot start in the past", ErrInvalidSegment)
	}
	if start.Before(cfg.StartDate) || end.After(cfg.EndDate) {
		return nil, fmt.Errorf("%w: segment must lie within the goal's dates", ErrInvalidSegment)
	}

	calc, checkIns, err := s.evaluate(goal)
	if err != nil {
		return nil, err
	}

	// A goal that is already behind its line cannot dial its way out of it
	current := autofill.CurrentValue(checkIns)
	if calc.Status(checkIns, now).IsOverdue {
		return nil, fmt.Errorf("%w: goal is overdue", ErrInvalidSegment)
	}
	if !start.After(now) && current < calc.RequiredValue(now) {
		return nil, fmt.Errorf("%w: goal is behind its line", ErrInvalidSegment)
	}

	persisted, err := s.segmentRepo.ByGoal(goal.ID)
	if err != nil {
		return nil, err
	}
	existing, err := toSegments(persisted, loc)
	if err != nil {
		return nil, err
	}

	line := commitmentLine(cfg, existing)
	startValue := line.RequiredValue(start)
	seg := trajectory.Segment{
		StartDate:  start,
		EndDate:    end,
		StartValue: startValue,
		EndValue:   startValue + params.Rate*model.DaysBetween(start, end),
		Rate:       params.Rate,
	}

	err = trajectory.ValidateSegment(existing, seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSegment, err)
	}

	segment := &model.Segment{
		ID:         uuid.NewString(),
		GoalID:     goal.ID,
		StartDate:  model.FormatDate(seg.StartDate),
		EndDate:    model.FormatDate(seg.EndDate),
		StartValue: seg.StartValue,
		EndValue:   seg.EndValue,
		Rate:       seg.Rate,
		CreatedAt:  now,
	}
	err = s.segmentRepo.Create(segment)
	if err != nil {
		return nil, fmt.Errorf("failed to create segment: %w", err)
	}

	slog.Info("goal trajectory changed", "goal_id", goal.ID, "start", segment.StartDate, "rate", segment.Rate)
	return segment, nil
}

// Stats summarizes all of a user's goals.
func (s *GoalService) Stats(userID string) (*model.DashboardStats, error) {
	goals, err := s.repo.Goals(userID, "")
	if err != nil {
		return nil, err
	}

	txns, err := s.transactionRepo.ByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{}
	for _, g := range goals {
		switch g.Status {
		case model.GoalStatusActive, model.GoalStatusPaused:
			stats.ActiveGoals++
			stats.TotalStaked += g.StakeAmount
		case model.GoalStatusCompleted:
			stats.CompletedGoals++
		case model.GoalStatusFailed:
			stats.FailedGoals++
		}
	}

	for _, t := range txns {
		switch t.TransactionType {
		case model.TransactionTypeRefund:
			stats.TotalRefunded += t.Amount
		case model.TransactionTypePenalty:
			stats.TotalPenalties += t.Amount
		}
	}

	if settled := stats.CompletedGoals + stats.FailedGoals; settled > 0 {
		stats.SuccessRate = float64(stats.CompletedGoals) / float64(settled) * 100
	}

	return stats, nil
}

// evaluate loads what a safety evaluation needs for one goal.
func (s *GoalService) evaluate(goal *model.Goal) (*safety.Calculator, []model.CheckIn, error) {
	return buildCalculator(goal, s.location, s.checkInRepo, s.segmentRepo)
}

func buildCalculator(
	goal *model.Goal,
	location *time.Location,
	checkInRepo repository.CheckInRepository,
	segmentRepo repository.SegmentRepository,
) (*safety.Calculator, []model.CheckIn, error) {
	cfg, err := goal.Config(location)
	if err != nil {
		return nil, nil, fmt.Errorf("goal %s: %w", goal.ID, err)
	}

	checkIns, err := checkInRepo.ByGoal(goal.ID)
	if err != nil {
		return nil, nil, err
	}

	persisted, err := segmentRepo.ByGoal(goal.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(persisted) == 0 {
		return safety.New(cfg), checkIns, nil
	}

	segments, err := toSegments(persisted, cfg.StartDate.Location())
	if err != nil {
		return nil, nil, err
	}
	return safety.NewWithTrajectory(cfg, commitmentLine(cfg, segments)), checkIns, nil
}

// commitmentLine joins the goal's original line with road-dial segments:
// the original line runs until the first segment starts, and the last
// segment's rate carries on to the goal's end date.
func commitmentLine(cfg model.GoalConfig, segments []trajectory.Segment) *trajectory.Trajectory {
	base := safety.New(cfg).Trajectory()
	if len(segments) == 0 {
		return base
	}

	var line []trajectory.Segment
	first := segments[0]
	if first.StartDate.After(cfg.StartDate) {
		line = append(line, trajectory.Segment{
			StartDate:  cfg.StartDate,
			EndDate:    first.StartDate,
			StartValue: base.RequiredValue(cfg.StartDate),
			EndValue:   base.RequiredValue(first.StartDate),
			Rate:       cfg.Frequency.Divisor() * cfg.TargetValue,
		})
	}
	line = append(line, segments...)

	last := segments[len(segments)-1]
	if last.EndDate.Before(cfg.EndDate) {
		line = append(line, trajectory.Segment{
			StartDate:  last.EndDate,
			EndDate:    cfg.EndDate,
			StartValue: last.EndValue,
			EndValue:   last.EndValue + last.Rate*model.DaysBetween(last.EndDate, cfg.EndDate),
			Rate:       last.Rate,
		})
	}

	return trajectory.FromSegments(line...)
}

func toSegments(persisted []model.Segment, loc *time.Location) ([]trajectory.Segment, error) {
	segments := make([]trajectory.Segment, 0, len(persisted))
	for _, p := range persisted {
		start, err := model.ParseDate(p.StartDate, loc)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", p.ID, err)
		}
		end, err := model.ParseDate(p.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", p.ID, err)
		}
		segments = append(segments, trajectory.Segment{
			StartDate:  start,
			EndDate:    end,
			StartValue: p.StartValue,
			EndValue:   p.EndValue,
			Rate:       p.Rate,
		})
	}
	return segments, nil
}

func isClosed(goal *model.Goal) bool {
	return goal.Status == model.GoalStatusCompleted || goal.Status == model.GoalStatusFailed
}

// Inspect evaluates any goal by id, without an ownership check. It backs
// operator tooling only.
func (s *GoalService) Inspect(goalID string) (*model.Goal, *safety.Status, error) {
	goal, err := s.repo.ByIDAny(goalID)
	if err != nil {
		return nil, nil, err
	}

	calc, checkIns, err := s.evaluate(goal)
	if err != nil {
		return nil, nil, err
	}

	status := calc.Status(checkIns, s.now())
	return goal, &status, nil
}
