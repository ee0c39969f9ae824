package trajectory

import (
	"errors"
	"fmt"
)

var (
	ErrSegmentInverted   = errors.New("segment ends before it starts")
	ErrSegmentNegative   = errors.New("segment rate must not be negative")
	ErrSegmentOverlap    = errors.New("segment overlaps an existing segment")
	ErrSegmentDecreasing = errors.New("segment starts below the line it continues")
)

// ValidateSegment decides whether s may join existing without breaking the
// line's ordering: it must not run backwards, must not overlap another
// segment (touching end to start is fine), and must not start below the
// value where the preceding segment ended.
func ValidateSegment(existing []Segment, s Segment) error {
	if s.EndDate.Before(s.StartDate) {
		return ErrSegmentInverted
	}
	if s.Rate < 0 {
		return ErrSegmentNegative
	}

	var prev *Segment
	for i := range existing {
		e := existing[i]
		if s.StartDate.Before(e.EndDate) && e.StartDate.Before(s.EndDate) {
			return fmt.Errorf("%w: %s to %s", ErrSegmentOverlap,
				e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
		}
		if !e.EndDate.After(s.StartDate) && (prev == nil || e.EndDate.After(prev.EndDate)) {
			prev = &existing[i]
		}
	}

	if prev != nil && s.StartValue < prev.EndValue {
		return fmt.Errorf("%w: %g < %g", ErrSegmentDecreasing, s.StartValue, prev.EndValue)
	}
	return nil
}
