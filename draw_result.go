package lottery

import "time"

// WinnerRecord is the winner of one rank in a draw
type WinnerRecord struct {
	Name     string `json:"name"`     // Purchaser name, or NoWinner
	Winnings int    `json:"winnings"` // Amount paid for the rank
}

// HasWinner reports whether somebody held the rank's number
func (w WinnerRecord) HasWinner() bool { return w.Name != NoWinner }

// noWinners returns ranks sentinel records
func noWinners(ranks int) []WinnerRecord {
	winners := make([]WinnerRecord, ranks)
	for i := range winners {
		winners[i] = WinnerRecord{Name: NoWinner}
	}
	return winners
}

// DrawResult is the full outcome of one round
type DrawResult struct {
	ID          string         `json:"id"`           // Unique draw ID
	Round       int64          `json:"round"`        // Sequential round number, starting at 1
	Numbers     []int          `json:"numbers"`      // Drawn numbers, first place first
	Winners     []WinnerRecord `json:"winners"`      // Parallel to Numbers
	Schedule    PrizeSchedule  `json:"schedule"`     // Weights used for the round
	TicketsSold int            `json:"tickets_sold"` // Tickets in the pool at draw time
	PotBefore   int            `json:"pot_before"`   // Prize pot before payouts
	PotAfter    int            `json:"pot_after"`    // Prize pot after payouts
	TotalPayout int            `json:"total_payout"` // Sum of all winnings
	DrawnAt     time.Time      `json:"drawn_at"`
}

// Validate validates the draw result data
func (r *DrawResult) Validate() error {
	if r.ID == "" || r.Round <= 0 {
		return ErrDrawResultCorrupted.WithDetails("missing id or round")
	}
	if len(r.Numbers) == 0 || len(r.Numbers) != len(r.Winners) {
		return ErrDrawResultCorrupted.WithDetails("numbers and winners differ in length")
	}

	total := 0
	for _, w := range r.Winners {
		if w.Winnings < 0 {
			return ErrDrawResultCorrupted.WithDetails("negative winnings")
		}
		total += w.Winnings
	}
	if total != r.TotalPayout || r.PotBefore-r.TotalPayout != r.PotAfter {
		return ErrDrawResultCorrupted.WithDetails("payout does not balance the pot")
	}

	return nil
}

// WinnerCount returns the number of ranks that were won
func (r *DrawResult) WinnerCount() int {
	n := 0
	for _, w := range r.Winners {
		if w.HasWinner() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the result
func (r *DrawResult) Clone() *DrawResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Numbers = append([]int(nil), r.Numbers...)
	c.Winners = append([]WinnerRecord(nil), r.Winners...)
	c.Schedule = r.Schedule.Clone()
	return &c
}
