package lottery

import (
	"math"
	"strings"
)

// ValidateRange validates number range parameters
func ValidateRange(min, max int) error {
	if min > max {
		return ErrInvalidRange
	}
	return nil
}

// ValidateName validates a ticket purchaser name
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}

// ValidateTotalBalls checks that totalBalls can supply scheduleLen distinct numbers
func ValidateTotalBalls(totalBalls, scheduleLen int) error {
	if totalBalls <= 0 || totalBalls < scheduleLen {
		return ErrInvalidTotalBalls.WithMetadata("total_balls", totalBalls).
			WithMetadata("schedule_length", scheduleLen)
	}
	return nil
}

// calculateWinnings returns ceil(pot * DrawPotPercent * weight).
// payoutEpsilon keeps exact products such as 10.000000000000002 from rounding up to 11.
// A true product less than payoutEpsilon above an integer therefore rounds down, unlike a literal ceil.
func calculateWinnings(pot int, weight float64) int {
	amount := float64(pot) * DrawPotPercent * weight
	return int(math.Ceil(amount - payoutEpsilon))
}
