package lottery

import (
	"context"
	"sync"
	"time"
)

// Service draws through a LotteryMachine and hands every finished draw to the
// optional journal and to registered observers. The console and the automatic
// draw scheduler share one Service.
type Service struct {
	machine        *LotteryMachine
	journal        DrawJournal
	journalTimeout time.Duration
	logger         Logger

	mu        sync.RWMutex
	observers []DrawObserver
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithJournal records every draw to journal
func WithJournal(journal DrawJournal) ServiceOption {
	return func(s *Service) { s.journal = journal }
}

// WithJournalTimeout bounds each journal call
func WithJournalTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.journalTimeout = timeout
		}
	}
}

// WithServiceLogger sets the service logger; the machine logger is used otherwise
func WithServiceLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wraps machine
func NewService(machine *LotteryMachine, opts ...ServiceOption) *Service {
	s := &Service{
		machine:        machine,
		journalTimeout: DefaultJournalTimeout,
		logger:         machine.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Machine returns the underlying machine
func (s *Service) Machine() *LotteryMachine { return s.machine }

// HasJournal reports whether draws are journaled
func (s *Service) HasJournal() bool { return s.journal != nil }

// OnDraw registers an observer called after every successful draw
func (s *Service) OnDraw(observer DrawObserver) {
	if observer == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, observer)
}

// PurchaseTicket sells name a ticket on the machine
func (s *Service) PurchaseTicket(name string) (int, error) {
	return s.machine.PurchaseTicket(name)
}

// Draw runs a round on the machine. A journal failure is logged and counted
// but never fails the draw, which has already happened.
func (s *Service) Draw(ctx context.Context) (*DrawResult, error) {
	result, err := s.machine.DrawRound()
	if err != nil {
		return nil, err
	}

	if s.journal != nil {
		jctx, cancel := context.WithTimeout(ctx, s.journalTimeout)
		if jerr := s.journal.RecordDraw(jctx, result); jerr != nil {
			s.logger.Error("Failed to journal draw %d (%s): %v", result.Round, result.ID, jerr)
			s.machine.Monitor().RecordJournalFailure()
		}
		cancel()
	}

	s.mu.RLock()
	observers := append([]DrawObserver(nil), s.observers...)
	s.mu.RUnlock()

	for _, observer := range observers {
		observer(result.Clone())
	}

	return result, nil
}

// LatestWinners returns the winners of the latest draw, one per rank
func (s *Service) LatestWinners() []WinnerRecord { return s.machine.LatestWinners() }

// RecentDraws reads up to limit journaled draws, newest first.
// It fails with ErrJournalUnavailable when no journal is configured.
func (s *Service) RecentDraws(ctx context.Context, limit int) ([]*DrawResult, error) {
	if s.journal == nil {
		return nil, ErrJournalUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.journalTimeout)
	defer cancel()

	return s.journal.RecentDraws(ctx, limit)
}
