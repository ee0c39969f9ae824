package trajectory

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRequiredValue(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 1, 31)

	tests := []struct {
		name   string
		rate   float64
		buffer float64
		at     time.Time
		want   float64
	}{
		{name: "at start", rate: 1, at: start, want: 0},
		{name: "ten days in", rate: 1, at: day(2025, 1, 11), want: 10},
		{name: "twice the rate", rate: 2, at: day(2025, 1, 11), want: 20},
		{name: "half a day", rate: 1, at: start.Add(12 * time.Hour), want: 0.5},
		{name: "initial buffer at start", rate: 1, buffer: 7, at: start, want: 7},
		{name: "weekly rate", rate: 1.0 / 7, at: day(2025, 1, 15), want: 2},
		{name: "before start extrapolates", rate: 1, at: day(2024, 12, 30), want: -2},
		{name: "after end extrapolates", rate: 1, at: day(2025, 2, 2), want: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traj := New(start, end, 0, 30*tt.rate, tt.rate, tt.buffer)
			assert.InDelta(t, tt.want, traj.RequiredValue(tt.at), 1e-9)
		})
	}
}

func TestRequiredValueMonotonic(t *testing.T) {
	traj := New(day(2025, 1, 1), day(2025, 12, 31), 0, 364.0/7, 1.0/7, 3)

	prev := math.Inf(-1)
	for at := day(2025, 1, 1); !at.After(day(2025, 12, 31)); at = at.Add(7 * time.Hour) {
		v := traj.RequiredValue(at)
		require.GreaterOrEqual(t, v, prev, "line dropped at %s", at)
		prev = v
	}
}

func TestRequiredValueEmpty(t *testing.T) {
	var traj Trajectory
	assert.Equal(t, 0.0, traj.RequiredValue(day(2025, 1, 1)))
	assert.True(t, math.IsInf(traj.BufferDays(5, day(2025, 1, 1)), 1))
	assert.True(t, traj.End().IsZero())
}

func TestBufferDays(t *testing.T) {
	traj := New(day(2025, 1, 1), day(2025, 12, 31), 0, 364, 1, 0)
	now := day(2025, 1, 11)

	assert.InDelta(t, 5, traj.BufferDays(15, now), 1e-9)
	assert.InDelta(t, 0, traj.BufferDays(10, now), 1e-9)
	assert.InDelta(t, -10, traj.BufferDays(0, now), 1e-9)

	t.Run("sign follows the line", func(t *testing.T) {
		for _, current := range []float64{0, 3.5, 9.99, 10, 10.01, 40} {
			buffer := traj.BufferDays(current, now)
			required := traj.RequiredValue(now)
			switch {
			case current > required:
				assert.Positive(t, buffer)
			case current < required:
				assert.Negative(t, buffer)
			default:
				assert.Zero(t, buffer)
			}
		}
	})

	t.Run("flat line never derails", func(t *testing.T) {
		flat := New(day(2025, 1, 1), day(2025, 12, 31), 0, 0, 0, 0)
		assert.True(t, math.IsInf(flat.BufferDays(0, now), 1))
	})
}

func TestIntersectionDate(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 12, 31)

	t.Run("rate one from start", func(t *testing.T) {
		traj := New(start, end, 0, 364, 1, 0)
		assert.Equal(t, day(2025, 1, 11), traj.IntersectionDate(10, start))
	})

	t.Run("fractional crossing", func(t *testing.T) {
		traj := New(start, end, 0, 728, 2, 0)
		assert.Equal(t, start.Add(36*time.Hour), traj.IntersectionDate(3, start))
	})

	t.Run("ahead of schedule", func(t *testing.T) {
		traj := New(start, end, 0, 364, 1, 0)
		assert.Equal(t, day(2025, 1, 16), traj.IntersectionDate(15, day(2025, 1, 11)))
	})

	t.Run("crossing already passed", func(t *testing.T) {
		traj := New(start, end, 0, 364, 1, 0)
		got := traj.IntersectionDate(0, day(2025, 1, 11))
		assert.Equal(t, start, got)
		assert.True(t, got.Before(day(2025, 1, 11)))
	})

	t.Run("beyond the end expires safe", func(t *testing.T) {
		traj := New(start, end, 0, 364, 1, 0)
		assert.Equal(t, end, traj.IntersectionDate(1000, start))
	})

	t.Run("flat line below current", func(t *testing.T) {
		traj := New(start, end, 0, 0, 0, 0)
		assert.Equal(t, end, traj.IntersectionDate(0, day(2025, 3, 1)))
	})

	t.Run("flat line above current derails now", func(t *testing.T) {
		traj := FromSegments(Segment{StartDate: start, EndDate: end, StartValue: 5, EndValue: 5})
		from := day(2025, 3, 1)
		assert.Equal(t, from, traj.IntersectionDate(2, from))
	})

	t.Run("never after the final end", func(t *testing.T) {
		traj := New(start, end, 0, 364, 1, 0)
		for _, current := range []float64{0, 1, 50, 363.9, 364, 365, 1e9} {
			got := traj.IntersectionDate(current, start)
			assert.False(t, got.After(end), "current %v crossed at %s", current, got)
		}
	})

	t.Run("skips segments in the past", func(t *testing.T) {
		traj := FromSegments(
			NewSegment(day(2025, 1, 1), day(2025, 1, 31), 0, 30),
			NewSegment(day(2025, 1, 31), day(2025, 3, 2), 30, 90),
		)
		// 40 is reached by the second segment's 2/day rate five days in.
		assert.Equal(t, day(2025, 2, 5), traj.IntersectionDate(40, day(2025, 2, 1)))
	})
}

func TestPoints(t *testing.T) {
	start := day(2025, 1, 1)
	traj := New(start, day(2025, 1, 31), 0, 30, 1, 0)

	points := slices.Collect(traj.Points(start, day(2025, 1, 3), 4))
	require.Len(t, points, 9)
	assert.Equal(t, start, points[0].Date)
	assert.Equal(t, day(2025, 1, 3), points[8].Date)
	assert.InDelta(t, 0.25, points[1].Value, 1e-9)

	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].Value, points[i-1].Value)
	}

	again := slices.Collect(traj.Points(start, day(2025, 1, 3), 4))
	assert.Equal(t, points, again, "sequence must be restartable")

	var first []Point
	for p := range traj.Points(start, day(2025, 1, 31), 1) {
		first = append(first, p)
		if len(first) == 2 {
			break
		}
	}
	assert.Len(t, first, 2)

	assert.Empty(t, slices.Collect(traj.Points(day(2025, 1, 3), start, 1)))
	assert.Len(t, slices.Collect(traj.Points(start, day(2025, 1, 3), 0)), 3)
}

func TestAddSegment(t *testing.T) {
	traj := New(day(2025, 1, 1), day(2025, 1, 31), 0, 30, 1, 0)
	traj.AddSegment(NewSegment(day(2025, 3, 1), day(2025, 3, 31), 60, 120))
	traj.AddSegment(NewSegment(day(2025, 1, 31), day(2025, 3, 1), 30, 60))

	segments := traj.Segments()
	require.Len(t, segments, 3)
	assert.Equal(t, day(2025, 1, 1), segments[0].StartDate)
	assert.Equal(t, day(2025, 1, 31), segments[1].StartDate)
	assert.Equal(t, day(2025, 3, 1), segments[2].StartDate)
	assert.Equal(t, day(2025, 3, 31), traj.End())

	assert.InDelta(t, 2, segments[2].Rate, 1e-9)
	assert.InDelta(t, 80, traj.RequiredValue(day(2025, 3, 11)), 1e-9)

	segments[0].Rate = 99
	assert.InDelta(t, 1, traj.Segments()[0].Rate, 1e-9, "Segments must return a copy")
}

func TestValidateSegment(t *testing.T) {
	existing := []Segment{
		NewSegment(day(2025, 1, 1), day(2025, 1, 31), 0, 30),
	}

	tests := []struct {
		name    string
		segment Segment
		wantErr error
	}{
		{name: "adjacent continuation", segment: NewSegment(day(2025, 1, 31), day(2025, 2, 28), 30, 58)},
		{name: "gap after", segment: NewSegment(day(2025, 3, 1), day(2025, 3, 31), 40, 70)},
		{name: "overlap", segment: NewSegment(day(2025, 1, 15), day(2025, 2, 15), 30, 60), wantErr: ErrSegmentOverlap},
		{name: "inverted", segment: Segment{StartDate: day(2025, 3, 1), EndDate: day(2025, 2, 1)}, wantErr: ErrSegmentInverted},
		{name: "negative rate", segment: NewSegment(day(2025, 2, 1), day(2025, 2, 11), 40, 30), wantErr: ErrSegmentNegative},
		{name: "drops below previous end", segment: NewSegment(day(2025, 2, 1), day(2025, 2, 11), 10, 20), wantErr: ErrSegmentDecreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegment(existing, tt.segment)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
