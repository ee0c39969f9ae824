package validation

import (
	"errors"
	"fmt"
	"time"

	"github.com/pledgeline/pledgeline/internal/aggregate"
	"github.com/pledgeline/pledgeline/internal/model"
)

// MaxGoalYears bounds how far a goal's end date may lie past its start.
const MaxGoalYears = 10

// ValidateGoal checks a goal before it is stored. Dates are checked in the
// goal's own timezone.
func ValidateGoal(goal *model.Goal) error {
	err := ValidateTitle(goal.Title)
	if err != nil {
		return err
	}

	if len(goal.Description) > 2000 {
		return errors.New("description is too long (max 2000 characters)")
	}

	loc := time.UTC
	if goal.Timezone != "" {
		loc, err = time.LoadLocation(goal.Timezone)
		if err != nil {
			return fmt.Errorf("unknown timezone %q", goal.Timezone)
		}
	}

	start, err := model.ParseDate(goal.StartDate, loc)
	if err != nil {
		return errors.New("start date must be YYYY-MM-DD")
	}
	end, err := model.ParseDate(goal.EndDate, loc)
	if err != nil {
		return errors.New("end date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return errors.New("end date must not be before start date")
	}
	if end.After(start.AddDate(MaxGoalYears, 0, 0)) {
		return fmt.Errorf("goal must not run longer than %d years", MaxGoalYears)
	}

	if !goal.CheckInFrequency.Valid() {
		return fmt.Errorf("unknown check-in frequency %q", goal.CheckInFrequency)
	}

	if goal.TargetValue <= 0 {
		return errors.New("target value must be greater than 0")
	}

	if goal.StakeAmount <= 0 {
		return errors.New("stake amount must be greater than 0")
	}

	if goal.InitialBufferDays < 0 {
		return errors.New("initial buffer days must not be negative")
	}

	if goal.AggregationMethod != "" && !aggregate.Method(goal.AggregationMethod).Valid() {
		return fmt.Errorf("unknown aggregation method %q", goal.AggregationMethod)
	}

	switch goal.StakeRecipientType {
	case "", model.RecipientFriend, model.RecipientCharity, model.RecipientAntiCharity, model.RecipientCompel:
	default:
		return fmt.Errorf("unknown stake recipient %q", goal.StakeRecipientType)
	}

	return nil
}

// ValidateCheckIn checks a check-in before it is stored.
func ValidateCheckIn(checkIn *model.CheckIn) error {
	_, err := model.ParseDate(checkIn.Date, time.UTC)
	if err != nil {
		return errors.New("check-in date must be YYYY-MM-DD")
	}

	if !checkIn.Status.Valid() {
		return fmt.Errorf("unknown check-in status %q", checkIn.Status)
	}

	if checkIn.Value != nil && *checkIn.Value < 0 {
		return errors.New("value must not be negative")
	}

	if checkIn.Notes != nil && len(*checkIn.Notes) > 1000 {
		return errors.New("notes are too long (max 1000 characters)")
	}

	if checkIn.EvidenceURL != nil {
		return ValidateEvidenceURL(*checkIn.EvidenceURL)
	}

	return nil
}
