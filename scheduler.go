package lottery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// AutoDrawScheduler runs Service.Draw on a cron schedule
type AutoDrawScheduler struct {
	service *Service
	spec    string
	logger  Logger

	cron    *cron.Cron
	entryID cron.EntryID

	mu      sync.Mutex
	running bool
}

// NewAutoDrawScheduler creates a scheduler for a standard cron spec or a
// descriptor such as "@every 10m". The location defaults to the local zone.
func NewAutoDrawScheduler(service *Service, spec string, location *time.Location, logger Logger) (*AutoDrawScheduler, error) {
	if logger == nil {
		logger = service.logger
	}
	if location == nil {
		location = time.Local
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, ErrInvalidDrawSchedule.WithCause(err).WithDetails(spec)
	}

	s := &AutoDrawScheduler{
		service: service,
		spec:    spec,
		logger:  logger,
	}

	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s.entryID = s.cron.Schedule(schedule, cron.FuncJob(s.runDraw))

	return s, nil
}

// runDraw is the scheduled job
func (s *AutoDrawScheduler) runDraw() {
	result, err := s.service.Draw(context.Background())
	if err != nil {
		s.logger.Error("Automatic draw failed: %v", err)
		return
	}
	s.logger.Info("Automatic draw %d: numbers=%v, winners=%d", result.Round, result.Numbers, result.WinnerCount())
}

// Start starts the scheduler in its own goroutine
func (s *AutoDrawScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("Automatic draws scheduled with %q, next at %s", s.spec, s.cron.Entry(s.entryID).Next.Format(time.RFC3339))
}

// Stop stops the scheduler and waits for a running draw to finish
func (s *AutoDrawScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	<-s.cron.Stop().Done()
}

// Next returns the time of the next automatic draw, zero when not running
func (s *AutoDrawScheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Spec returns the cron spec
func (s *AutoDrawScheduler) Spec() string { return s.spec }

// cronLogger adapts Logger to cron.Logger
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: %s %s", msg, formatKeysAndValues(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: %s: %v %s", msg, err, formatKeysAndValues(keysAndValues))
}

func formatKeysAndValues(keysAndValues []any) string {
	out := ""
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return out
}
