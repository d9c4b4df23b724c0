package lottery

import "fmt"

// PrizeSchedule is the ordered list of payout weights, one per rank (rank 0 = first place).
// Its length is the number of balls drawn per round.
type PrizeSchedule []float64

// DefaultPrizeSchedule returns the standard three winner schedule
func DefaultPrizeSchedule() PrizeSchedule {
	return PrizeSchedule{FirstPlacePercent, SecondPlacePercent, ThirdPlacePercent}
}

// Validate validates the prize schedule
func (s PrizeSchedule) Validate() error {
	if len(s) == 0 {
		return ErrInvalidPrizeSchedule.WithDetails("schedule is empty")
	}

	var total float64
	for rank, weight := range s {
		if weight < 0 || weight > 1 {
			return ErrInvalidPrizeSchedule.
				WithDetails(fmt.Sprintf("weight %v at rank %d is outside [0, 1]", weight, rank))
		}
		total += weight
	}

	// Check if weights sum to approximately 1.0 (within tolerance)
	if total < (1.0-ScheduleTolerance) || total > (1.0+ScheduleTolerance) {
		return ErrInvalidPrizeSchedule.WithDetails(fmt.Sprintf("weights sum to %v", total))
	}

	return nil
}

// Ranks returns the number of winner slots
func (s PrizeSchedule) Ranks() int { return len(s) }

// Clone returns a copy of the schedule
func (s PrizeSchedule) Clone() PrizeSchedule {
	if s == nil {
		return nil
	}
	c := make(PrizeSchedule, len(s))
	copy(c, s)
	return c
}

// ValidatePrizeSchedule validates a slice of weights
func ValidatePrizeSchedule(weights []float64) error {
	return PrizeSchedule(weights).Validate()
}
