package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRangeUtils(t *testing.T) {
	tests := []struct {
		name        string
		min         int
		max         int
		expectError bool
	}{
		{"valid_range", 1, 50, false},
		{"equal_values", 5, 5, false},
		{"invalid_range", 50, 1, true},
		{"negative_range", -10, -5, false},
		{"zero_range", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.min, tt.max)
			if tt.expectError {
				assert.Equal(t, ErrInvalidRange, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNameUtils(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"first_name", "Alice", false},
		{"single_letter", "A", false},
		{"unicode", "Zoë", false},
		{"empty", "", true},
		{"spaces", "   ", true},
		{"whitespace_mix", " \t\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTotalBallsUtils(t *testing.T) {
	tests := []struct {
		name        string
		totalBalls  int
		ranks       int
		expectError bool
	}{
		{"default", 50, 3, false},
		{"exactly_enough", 3, 3, false},
		{"too_few", 2, 3, true},
		{"zero", 0, 0, true},
		{"negative", -1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTotalBalls(tt.totalBalls, tt.ranks)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidTotalBalls)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCalculateWinnings(t *testing.T) {
	tests := []struct {
		name   string
		pot    int
		weight float64
		want   int
	}{
		{"rounds_up_fraction", 210, 0.75, 79},
		{"exact_amount", 200, 0.75, 75},
		{"second_place", 210, 0.15, 16},
		{"third_place", 210, 0.10, 11},
		{"no_float_noise_round_up", 200, 0.10, 10},
		{"zero_weight", 500, 0, 0},
		{"zero_pot", 0, 0.75, 0},
		{"odd_pot", 1, 1.0, 1},
		{"within_epsilon_above_integer_rounds_down", 1, 2.0000000008, 1},
		{"beyond_epsilon_rounds_up", 1, 2.00001, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateWinnings(tt.pot, tt.weight))
		})
	}
}
