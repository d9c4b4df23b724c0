package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrizeScheduleValidate(t *testing.T) {
	tests := []struct {
		name        string
		schedule    PrizeSchedule
		expectError bool
	}{
		{"default", DefaultPrizeSchedule(), false},
		{"single_rank", PrizeSchedule{1.0}, false},
		{"two_ranks", PrizeSchedule{0.6, 0.4}, false},
		{"float_noise", PrizeSchedule{0.1, 0.2, 0.7}, false},
		{"thirds", PrizeSchedule{0.3333333, 0.3333333, 0.3333334}, false},
		{"within_tolerance", PrizeSchedule{0.5, 0.5000001}, false},
		{"zero_weight_rank", PrizeSchedule{1.0, 0}, false},
		{"nil", nil, true},
		{"empty", PrizeSchedule{}, true},
		{"sum_below_one", PrizeSchedule{0.5, 0.49}, true},
		{"sum_above_one", PrizeSchedule{0.75, 0.15, 0.15}, true},
		{"negative_weight", PrizeSchedule{1.2, -0.2}, true},
		{"weight_above_one", PrizeSchedule{1.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidPrizeSchedule)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, err == nil, ValidatePrizeSchedule(tt.schedule) == nil)
		})
	}
}

func TestPrizeScheduleClone(t *testing.T) {
	s := DefaultPrizeSchedule()
	c := s.Clone()
	c[0] = 0

	assert.Equal(t, FirstPlacePercent, s[0])
	assert.Equal(t, 3, s.Ranks())
	assert.Nil(t, PrizeSchedule(nil).Clone())
}
