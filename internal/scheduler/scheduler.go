// Package scheduler runs recurring xtreamr jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// JobFunc is a scheduled unit of work.
type JobFunc func(ctx context.Context) error

// Scheduler runs jobs on 5-field cron expressions (descriptors such as
// "@hourly" and "@every 30m" are accepted too). A run that is due while the
// previous run of the same job is still going is skipped.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	parser cron.Parser
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser), cron.WithLogger(cronLogger{logger})),
		parser: parser,
		logger: logger,
		ctx:    context.Background(),
	}
}

// Add registers job under name on the cron expression.
func (s *Scheduler) Add(expr, name string, job JobFunc) error {
	if _, err := s.parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	if _, err := s.cron.AddFunc(expr, s.wrap(name, job)); err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	s.logger.Info("job scheduled", slog.String("job", name), slog.String("cron", expr))
	return nil
}

// wrap guards job against overlapping runs and logs its outcome.
func (s *Scheduler) wrap(name string, job JobFunc) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			s.logger.Warn("previous run still in progress, skipping", slog.String("job", name))
			return
		}
		defer running.Store(false)

		s.mu.Lock()
		ctx := s.ctx
		s.wg.Add(1)
		s.mu.Unlock()
		defer s.wg.Done()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed",
				slog.String("job", name),
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()),
			)
			return
		}
		s.logger.Info("scheduled job completed",
			slog.String("job", name),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// Start begins running scheduled jobs. Jobs receive a context that is
// cancelled when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()

	s.logger.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop stops scheduling, cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()

	s.mu.Lock()
	s.cancel = nil
	s.ctx = context.Background()
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

// NextRun returns the next activation time of expr after now.
func (s *Scheduler) NextRun(expr string) (time.Time, error) {
	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule.Next(time.Now()), nil
}

// ValidateCron validates a cron expression.
func (s *Scheduler) ValidateCron(expr string) error {
	_, err := s.parser.Parse(expr)
	return err
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
