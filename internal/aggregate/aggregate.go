// Package aggregate collapses same-day check-ins into one value per day and
// derives the per-day and cumulative series charts are drawn from.
package aggregate

import (
	"slices"
	"time"

	"github.com/pledgeline/pledgeline/internal/model"
)

// Method selects how several check-ins on one day become one value.
type Method string

const (
	MethodSum     Method = "sum"
	MethodMax     Method = "max"
	MethodMin     Method = "min"
	MethodLast    Method = "last"
	MethodFirst   Method = "first"
	MethodAverage Method = "average"
)

var methods = []Method{MethodSum, MethodMax, MethodMin, MethodLast, MethodFirst, MethodAverage}

// ParseMethod maps a stored method name to a Method. Anything unknown sums.
func ParseMethod(s string) Method {
	m := Method(s)
	if m.Valid() {
		return m
	}
	return MethodSum
}

func (m Method) Valid() bool {
	return slices.Contains(methods, m)
}

func (m Method) apply(values []float64) float64 {
	switch m {
	case MethodMax:
		return slices.Max(values)
	case MethodMin:
		return slices.Min(values)
	case MethodLast:
		return values[len(values)-1]
	case MethodFirst:
		return values[0]
	case MethodAverage:
		return sum(values) / float64(len(values))
	default:
		return sum(values)
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// groupByDay buckets successful check-ins by date, keeping input order inside
// each bucket, and returns the dates in ascending order.
func groupByDay(entries []model.CheckIn) ([]string, map[string][]model.CheckIn) {
	groups := make(map[string][]model.CheckIn)
	var dates []string

	for _, e := range entries {
		if !e.Counts() {
			continue
		}
		date := model.NormalizeDate(e.Date)
		if _, ok := groups[date]; !ok {
			dates = append(dates, date)
		}
		groups[date] = append(groups[date], e)
	}

	slices.Sort(dates)
	return dates, groups
}

// ByDay collapses successful check-ins into one entry per day, ascending by
// date. MethodFirst and MethodLast follow the order of entries, not any
// timestamp.
func ByDay(entries []model.CheckIn, method Method) []model.AggregatedEntry {
	dates, groups := groupByDay(entries)

	out := make([]model.AggregatedEntry, 0, len(dates))
	for _, date := range dates {
		group := groups[date]
		values := make([]float64, len(group))
		for i, e := range group {
			values[i] = e.Amount()
		}
		out = append(out, model.AggregatedEntry{
			Date:    date,
			Value:   method.apply(values),
			Count:   len(group),
			Entries: group,
		})
	}
	return out
}

// CumulativePoint is the running total at the end of a day.
type CumulativePoint struct {
	Date            string  `json:"date"`
	CumulativeValue float64 `json:"cumulative_value"`
}

// Cumulative sums each day and accumulates across days in date order.
func Cumulative(entries []model.CheckIn) []CumulativePoint {
	days := ByDay(entries, MethodSum)
	return Scan(days, func(total float64, d model.AggregatedEntry) (float64, CumulativePoint) {
		total += d.Value
		return total, CumulativePoint{Date: d.Date, CumulativeValue: total}
	})
}

// FilledDay is one calendar day of a gap-free series.
type FilledDay struct {
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	IsFilled bool    `json:"is_filled"`
}

// FillMissingDays emits every calendar day in [start, end] with that day's
// summed value. Days without check-ins are zero and marked as filled.
func FillMissingDays(entries []model.CheckIn, start, end time.Time) []FilledDay {
	totals := make(map[string]float64)
	for _, d := range ByDay(entries, MethodSum) {
		totals[d.Date] = d.Value
	}

	var out []FilledDay
	for day := range model.EachDay(start, end) {
		date := model.FormatDate(day)
		value, ok := totals[date]
		out = append(out, FilledDay{Date: date, Value: value, IsFilled: !ok})
	}
	return out
}

// Scan folds xs left to right and emits one output per input. The running
// state never leaves the call.
func Scan[T, S, R any](xs []T, step func(S, T) (S, R)) []R {
	var state S
	out := make([]R, 0, len(xs))
	for _, x := range xs {
		var r R
		state, r = step(state, x)
		out = append(out, r)
	}
	return out
}
