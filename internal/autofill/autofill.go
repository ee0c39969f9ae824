// Package autofill takes the pessimistic view of a goal's progress: any day
// without a recorded check-in is assumed to have contributed nothing.
package autofill

import (
	"math"
	"time"

	"github.com/pledgeline/pledgeline/internal/aggregate"
	"github.com/pledgeline/pledgeline/internal/model"
)

// FilledDataPoint is one day of the flatlining progress series.
type FilledDataPoint struct {
	Date            string  `json:"date"`
	Value           float64 `json:"value"`
	IsActual        bool    `json:"is_actual"`
	CumulativeValue float64 `json:"cumulative_value"`
}

// CurrentValue sums every successful check-in regardless of date.
func CurrentValue(entries []model.CheckIn) float64 {
	var total float64
	for _, e := range entries {
		if e.Counts() {
			total += e.Amount()
		}
	}
	return total
}

// LastCheckInDate returns the latest day with a successful check-in, as
// midnight in loc. Check-ins whose date does not parse are ignored.
func LastCheckInDate(entries []model.CheckIn, loc *time.Location) (time.Time, bool) {
	var (
		last  time.Time
		found bool
	)
	for _, e := range entries {
		if !e.Counts() {
			continue
		}
		day, err := model.ParseDate(e.Date, loc)
		if err != nil {
			continue
		}
		if !found || day.After(last) {
			last, found = day, true
		}
	}
	return last, found
}

// DaysSinceLastCheckIn counts whole days from the last successful check-in to
// now, or +Inf when there has never been one.
func DaysSinceLastCheckIn(entries []model.CheckIn, now time.Time) float64 {
	last, ok := LastCheckInDate(entries, now.Location())
	if !ok {
		return math.Inf(1)
	}
	return math.Floor(model.DaysBetween(last, now))
}

// GenerateFilledData walks every day in [start, end]. Days with check-ins add
// their value (summed, or the last one with aggregate.MethodLast) to the
// running total; days without keep the total flat.
func GenerateFilledData(entries []model.CheckIn, start, end time.Time, method aggregate.Method) []FilledDataPoint {
	if method != aggregate.MethodLast {
		method = aggregate.MethodSum
	}

	actual := make(map[string]float64)
	for _, d := range aggregate.ByDay(entries, method) {
		actual[d.Date] = d.Value
	}

	var days []time.Time
	for day := range model.EachDay(start, end) {
		days = append(days, day)
	}

	return aggregate.Scan(days, func(total float64, day time.Time) (float64, FilledDataPoint) {
		date := model.FormatDate(day)
		value, ok := actual[date]
		if !ok {
			return total, FilledDataPoint{Date: date, CumulativeValue: total}
		}
		total += value
		return total, FilledDataPoint{Date: date, Value: value, IsActual: true, CumulativeValue: total}
	})
}
