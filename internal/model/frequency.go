package model

// Frequency is how often a goal's target amount is due.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Divisor returns the fraction of one period that elapses per day.
// Unknown frequencies are treated as daily.
func (f Frequency) Divisor() float64 {
	switch f {
	case FrequencyWeekly:
		return 1.0 / 7
	case FrequencyBiweekly:
		return 1.0 / 14
	case FrequencyMonthly:
		return 1.0 / 30
	default:
		return 1
	}
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}
