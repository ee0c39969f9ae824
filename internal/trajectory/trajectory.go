// Package trajectory models the commitment line: the minimum cumulative value a
// goal requires at any moment, as one or more piecewise-linear segments.
package trajectory

import (
	"iter"
	"math"
	"slices"
	"time"

	"github.com/pledgeline/pledgeline/internal/model"
)

// Segment is one linear interval of the commitment line. Rate is stored
// explicitly so a historical edit does not have to match its end points.
type Segment struct {
	StartDate  time.Time
	EndDate    time.Time
	StartValue float64
	EndValue   float64
	Rate       float64 // value units per day
}

// NewSegment derives the rate from the end points.
func NewSegment(start, end time.Time, startValue, endValue float64) Segment {
	s := Segment{StartDate: start, EndDate: end, StartValue: startValue, EndValue: endValue}
	if days := model.DaysBetween(start, end); days > 0 {
		s.Rate = (endValue - startValue) / days
	}
	return s
}

func (s Segment) valueAt(at time.Time) float64 {
	return s.StartValue + model.DaysBetween(s.StartDate, at)*s.Rate
}

func (s Segment) covers(at time.Time) bool {
	return !at.Before(s.StartDate) && !at.After(s.EndDate)
}

// Point is one sample of the commitment line.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Trajectory is an ordered set of segments. The zero value has no segments
// and requires nothing.
type Trajectory struct {
	segments []Segment
}

// New builds the single-segment line from start to end. The initial buffer
// lifts both ends of the line by initialBufferDays worth of rate.
func New(start, end time.Time, startValue, targetValue, rate, initialBufferDays float64) *Trajectory {
	bufferValue := initialBufferDays * rate
	return &Trajectory{
		segments: []Segment{{
			StartDate:  start,
			EndDate:    end,
			StartValue: startValue + bufferValue,
			EndValue:   targetValue + bufferValue,
			Rate:       rate,
		}},
	}
}

// FromSegments builds a trajectory from arbitrary segments, sorted by start date.
func FromSegments(segments ...Segment) *Trajectory {
	t := &Trajectory{}
	for _, s := range segments {
		t.AddSegment(s)
	}
	return t
}

// segmentAt returns the first segment covering at, or the last segment
// when none does.
func (t *Trajectory) segmentAt(at time.Time) (Segment, bool) {
	if len(t.segments) == 0 {
		return Segment{}, false
	}
	for _, s := range t.segments {
		if s.covers(at) {
			return s, true
		}
	}
	return t.segments[len(t.segments)-1], true
}

// RequiredValue is the value the line demands at the given moment.
// Dates outside every segment extrapolate along the last segment.
func (t *Trajectory) RequiredValue(at time.Time) float64 {
	s, ok := t.segmentAt(at)
	if !ok {
		return 0
	}
	return s.valueAt(at)
}

// BufferDays is the signed distance in days between current and the line at
// the given moment: positive ahead of schedule, negative behind. A flat
// segment can never be fallen behind on by schedule, so it yields +Inf.
func (t *Trajectory) BufferDays(current float64, at time.Time) float64 {
	s, ok := t.segmentAt(at)
	if !ok || s.Rate == 0 {
		return math.Inf(1)
	}
	return (current - s.valueAt(at)) / s.Rate
}

// IntersectionDate finds when a flat line at current, starting at from, is
// first met by the rising commitment line. Segments that ended before from
// are skipped. When nothing crosses, the goal expires safe at the final
// segment's end date.
func (t *Trajectory) IntersectionDate(current float64, from time.Time) time.Time {
	for _, s := range t.segments {
		if s.EndDate.Before(from) {
			continue
		}

		if s.Rate == 0 {
			if current < s.StartValue {
				return from
			}
			continue
		}

		days := (current - s.StartValue) / s.Rate
		if days >= 0 && days <= model.DaysBetween(s.StartDate, s.EndDate) {
			return s.StartDate.Add(time.Duration(days * msPerDay * float64(time.Millisecond)))
		}
	}

	return t.End()
}

// End is the last segment's end date, or the zero time for an empty trajectory.
func (t *Trajectory) End() time.Time {
	if len(t.segments) == 0 {
		return time.Time{}
	}
	return t.segments[len(t.segments)-1].EndDate
}

// Points samples the line from from to to at pointsPerDay uniform steps a day.
// The sequence is lazy and can be ranged over any number of times.
func (t *Trajectory) Points(from, to time.Time, pointsPerDay float64) iter.Seq[Point] {
	if pointsPerDay <= 0 {
		pointsPerDay = 1
	}
	step := max(time.Duration(float64(24*time.Hour)/pointsPerDay), time.Millisecond)

	return func(yield func(Point) bool) {
		for at := from; !at.After(to); at = at.Add(step) {
			if !yield(Point{Date: at, Value: t.RequiredValue(at)}) {
				return
			}
		}
	}
}

// AddSegment appends a segment and keeps segments ordered by start date.
// It does not check for overlaps; see ValidateSegment.
func (t *Trajectory) AddSegment(s Segment) {
	t.segments = append(t.segments, s)
	slices.SortStableFunc(t.segments, func(a, b Segment) int {
		return a.StartDate.Compare(b.StartDate)
	})
}

// Segments returns a copy of the segments in order.
func (t *Trajectory) Segments() []Segment {
	return slices.Clone(t.segments)
}

func (t *Trajectory) Clone() *Trajectory {
	return &Trajectory{segments: slices.Clone(t.segments)}
}

const msPerDay = 24 * 60 * 60 * 1000.0
