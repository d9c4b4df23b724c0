package lottery

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LotteryMachine owns one running lottery: the ticket pool, the prize pot,
// the prize schedule and the results of the latest draw.
//
// Every operation holds the machine lock for its whole read-modify-write
// sequence, so a machine may be shared by the console and the draw scheduler.
type LotteryMachine struct {
	mu sync.Mutex

	schedule   PrizeSchedule
	totalBalls int
	prizePot   int

	// tickets maps a ticket number in [1, totalBalls] to its purchaser
	tickets map[int]string

	round         int64
	latest        *DrawResult
	latestWinners []WinnerRecord

	generator RandomGenerator
	logger    Logger
	monitor   *MachineMonitor
}

// MachineOption customizes a LotteryMachine at construction
type MachineOption func(*LotteryMachine)

// WithRandomGenerator sets the source of ticket and ball numbers
func WithRandomGenerator(generator RandomGenerator) MachineOption {
	return func(m *LotteryMachine) {
		if generator != nil {
			m.generator = generator
		}
	}
}

// WithLogger sets the machine logger
func WithLogger(logger Logger) MachineOption {
	return func(m *LotteryMachine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTotalBalls sets the number of balls, which is also the ticket capacity of a round
func WithTotalBalls(totalBalls int) MachineOption {
	return func(m *LotteryMachine) { m.totalBalls = totalBalls }
}

// WithStartingPot sets the initial prize pot
func WithStartingPot(pot int) MachineOption {
	return func(m *LotteryMachine) { m.prizePot = pot }
}

// WithMonitor shares a monitor between machines or with the caller
func WithMonitor(monitor *MachineMonitor) MachineOption {
	return func(m *LotteryMachine) {
		if monitor != nil {
			m.monitor = monitor
		}
	}
}

// NewLotteryMachine creates a machine with the default three winner prize schedule
func NewLotteryMachine(opts ...MachineOption) (*LotteryMachine, error) {
	return NewLotteryMachineWithSchedule(DefaultPrizeSchedule(), opts...)
}

// NewLotteryMachineWithSchedule creates a machine paying out according to weights.
// It fails with ErrInvalidPrizeSchedule when the weights do not sum to 1.0.
func NewLotteryMachineWithSchedule(weights []float64, opts ...MachineOption) (*LotteryMachine, error) {
	schedule := PrizeSchedule(weights).Clone()
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	m := &LotteryMachine{
		schedule:   schedule,
		totalBalls: DefaultTotalBalls,
		prizePot:   DefaultStartingPot,
		generator:  NewSecureRandomGenerator(),
		logger:     NewDefaultLogger(nil, false),
		monitor:    NewMachineMonitor(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := ValidateTotalBalls(m.totalBalls, schedule.Ranks()); err != nil {
		return nil, err
	}
	if m.prizePot < 0 {
		return nil, ErrInvalidStartingPot
	}

	m.tickets = make(map[int]string, m.totalBalls)
	m.latestWinners = noWinners(schedule.Ranks())

	m.logger.Info("Lottery machine created: balls=%d, pot=%d, schedule=%v",
		m.totalBalls, m.prizePot, []float64(m.schedule))
	return m, nil
}

// PurchaseTicket sells the purchaser a ticket with a random unused number and
// returns that number. The ticket price is added to the prize pot.
func (m *LotteryMachine) PurchaseTicket(name string) (int, error) {
	m.logger.Debug("PurchaseTicket called with name=%q", name)

	if err := ValidateName(name); err != nil {
		m.logger.Error("PurchaseTicket validation failed: %v", err)
		m.monitor.RecordPurchase(false)
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tickets) >= m.totalBalls {
		m.logger.Error("PurchaseTicket failed: all %d tickets of round %d are sold", m.totalBalls, m.round+1)
		m.monitor.RecordPurchase(false)
		return 0, ErrDrawNotAvailable
	}

	number, err := m.randomAvailableNumber()
	if err != nil {
		m.logger.Error("PurchaseTicket random generation failed: %v", err)
		m.monitor.RecordPurchase(false)
		return 0, err
	}

	m.tickets[number] = name
	m.prizePot += TicketPrice
	m.monitor.RecordPurchase(true)

	m.logger.Info("Ticket sold: name=%s, number=%d, pot=%d", name, number, m.prizePot)
	return number, nil
}

// randomAvailableNumber samples until it finds a number nobody holds.
// Callers must hold m.mu and ensure the pool is not full.
func (m *LotteryMachine) randomAvailableNumber() (int, error) {
	for {
		number, err := m.nextNumber()
		if err != nil {
			return 0, err
		}
		if _, taken := m.tickets[number]; !taken {
			return number, nil
		}
	}
}

// nextNumber draws one number in [1, totalBalls] from the generator
func (m *LotteryMachine) nextNumber() (int, error) {
	number, err := m.generator.GenerateInRange(1, m.totalBalls)
	if err != nil {
		return 0, err
	}
	if number < 1 || number > m.totalBalls {
		return 0, ErrRandomSource.WithDetails(
			fmt.Sprintf("generator returned %d outside [1, %d]", number, m.totalBalls))
	}
	return number, nil
}

// Draw runs a round and returns the drawn numbers, first place first
func (m *LotteryMachine) Draw() ([]int, error) {
	result, err := m.DrawRound()
	if err != nil {
		return nil, err
	}
	return result.Numbers, nil
}

// DrawRound draws one distinct number per prize rank, pays out the ranks
// whose number was bought, and clears the ticket pool for the next round.
// It only fails when the random generator fails, in which case no state changes.
func (m *LotteryMachine) DrawRound() (*DrawResult, error) {
	startTime := time.Now()

	m.mu.Lock()
	result, err := m.draw()
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("Draw failed: %v", err)
		m.monitor.RecordDraw(nil, time.Since(startTime))
		return nil, err
	}

	m.monitor.RecordDraw(result, time.Since(startTime))
	m.logger.Info("Draw %d completed: numbers=%v, tickets=%d, payout=%d, pot=%d -> %d",
		result.Round, result.Numbers, result.TicketsSold, result.TotalPayout, result.PotBefore, result.PotAfter)
	return result.Clone(), nil
}

// draw must be called with m.mu held
func (m *LotteryMachine) draw() (*DrawResult, error) {
	ranks := m.schedule.Ranks()
	numbers := make([]int, 0, ranks)
	seen := make(map[int]struct{}, ranks)

	for len(numbers) < ranks {
		number, err := m.nextNumber()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[number]; dup {
			continue
		}
		seen[number] = struct{}{}
		numbers = append(numbers, number)
	}

	potBefore := m.prizePot
	winners, payout := m.distributePrizes(numbers)
	m.prizePot -= payout
	m.round++

	result := &DrawResult{
		ID:          uuid.NewString(),
		Round:       m.round,
		Numbers:     numbers,
		Winners:     winners,
		Schedule:    m.schedule.Clone(),
		TicketsSold: len(m.tickets),
		PotBefore:   potBefore,
		PotAfter:    m.prizePot,
		TotalPayout: payout,
		DrawnAt:     time.Now(),
	}

	m.latest = result
	m.latestWinners = winners
	m.tickets = make(map[int]string, m.totalBalls)

	return result, nil
}

// distributePrizes computes the winner of every rank against the pre-draw pot.
// Each rank is rounded up on its own, so the payout may slightly exceed
// DrawPotPercent of the pot. Must be called with m.mu held.
func (m *LotteryMachine) distributePrizes(numbers []int) ([]WinnerRecord, int) {
	winners := make([]WinnerRecord, len(numbers))
	total := 0

	for rank, number := range numbers {
		name, sold := m.tickets[number]
		if !sold {
			winners[rank] = WinnerRecord{Name: NoWinner}
			continue
		}

		winnings := calculateWinnings(m.prizePot, m.schedule[rank])
		winners[rank] = WinnerRecord{Name: name, Winnings: winnings}
		total += winnings
		m.logger.Debug("Rank %d won by %s with number %d: %d", rank, name, number, winnings)
	}

	return winners, total
}

// UpdatePrizeSchedule replaces the prize schedule; it takes effect at the next draw.
// Results of an earlier draw keep their own number of ranks.
func (m *LotteryMachine) UpdatePrizeSchedule(weights []float64) error {
	schedule := PrizeSchedule(weights).Clone()
	if err := schedule.Validate(); err != nil {
		m.logger.Error("UpdatePrizeSchedule validation failed: %v", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ValidateTotalBalls(m.totalBalls, schedule.Ranks()); err != nil {
		m.logger.Error("UpdatePrizeSchedule failed: %v", err)
		return err
	}

	m.schedule = schedule
	if m.latest == nil {
		m.latestWinners = noWinners(schedule.Ranks())
	}

	m.logger.Info("Prize schedule updated to %v", []float64(schedule))
	return nil
}

// PrizePot returns the current prize pot
func (m *LotteryMachine) PrizePot() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.prizePot
}

// LatestDrawNumbers returns the numbers of the latest draw, first place first.
// It is empty until the first draw.
func (m *LotteryMachine) LatestDrawNumbers() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.latest == nil {
		return []int{}
	}
	return append([]int(nil), m.latest.Numbers...)
}

// LatestWinners returns the winners of the latest draw, one per rank.
// Before the first draw every rank is NoWinner with no winnings.
func (m *LotteryMachine) LatestWinners() []WinnerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]WinnerRecord(nil), m.latestWinners...)
}

// LatestNthPlaceWinner returns the name of the latest winner of rank (0 = first place)
func (m *LotteryMachine) LatestNthPlaceWinner(rank int) (string, error) {
	winner, err := m.latestWinner(rank)
	if err != nil {
		return "", err
	}
	return winner.Name, nil
}

// LatestNthPlaceWinnings returns the latest winnings of rank (0 = first place)
func (m *LotteryMachine) LatestNthPlaceWinnings(rank int) (int, error) {
	winner, err := m.latestWinner(rank)
	if err != nil {
		return 0, err
	}
	return winner.Winnings, nil
}

func (m *LotteryMachine) latestWinner(rank int) (WinnerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rank < 0 || rank >= len(m.latestWinners) {
		return WinnerRecord{}, ErrIndexOutOfRange.
			WithDetails(fmt.Sprintf("rank %d, ranks %d", rank, len(m.latestWinners)))
	}
	return m.latestWinners[rank], nil
}

// LatestDrawResult returns a copy of the latest draw, or nil before the first draw
func (m *LotteryMachine) LatestDrawResult() *DrawResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.latest.Clone()
}

// PrizeSchedule returns a copy of the current prize schedule
func (m *LotteryMachine) PrizeSchedule() PrizeSchedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.schedule.Clone()
}

// TicketCount returns the number of tickets sold in the current round
func (m *LotteryMachine) TicketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tickets)
}

// Tickets returns a copy of the current round's ticket pool
func (m *LotteryMachine) Tickets() map[int]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tickets := make(map[int]string, len(m.tickets))
	for number, name := range m.tickets {
		tickets[number] = name
	}
	return tickets
}

// TotalBalls returns the number of balls, and tickets, per round
func (m *LotteryMachine) TotalBalls() int { return m.totalBalls }

// Round returns the number of draws run so far
func (m *LotteryMachine) Round() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.round
}

// Stats returns a snapshot of the machine metrics
func (m *LotteryMachine) Stats() MachineMetrics { return m.monitor.GetMetrics() }

// Monitor returns the machine monitor
func (m *LotteryMachine) Monitor() *MachineMonitor { return m.monitor }

// GetLogger returns the current logger
func (m *LotteryMachine) GetLogger() Logger { return m.logger }
