package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/usecase"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("toto/internal/interfaces/scheduler")

// Sweeper locks every round whose deadline has passed.
type Sweeper interface {
	SweepDueRounds(ctx context.Context) (usecase.SweepResult, error)
}

type Config struct {
	Schedule string
	// RunTimeout bounds a single sweep.
	RunTimeout time.Duration
}

// LockSweep runs the deadline sweep on a cron schedule. A run still in
// progress when the next tick fires is skipped.
type LockSweep struct {
	cron    *cron.Cron
	sweeper Sweeper
	cfg     Config
	logger  *logging.Logger
}

func NewLockSweep(sweeper Sweeper, cfg Config, logger *logging.Logger) (*LockSweep, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Minute
	}
	logger = logger.Named("lock-sweep")

	cronLogger := cronLogAdapter{logger: logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	s := &LockSweep{cron: c, sweeper: sweeper, cfg: cfg, logger: logger}
	if _, err := c.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule lock sweep %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

func (s *LockSweep) Start() {
	s.logger.Info("lock sweep scheduler started", "schedule", s.cfg.Schedule)
	s.cron.Start()
}

// Stop prevents new runs and waits for a running sweep up to ctx.
func (s *LockSweep) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("lock sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LockSweep) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "scheduler.LockSweep.run")
	defer span.End()

	result, err := s.sweeper.SweepDueRounds(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "lock sweep failed", "error", err)
		return
	}
	if result.Processed == 0 {
		s.logger.DebugContext(ctx, "lock sweep found no due rounds")
		return
	}
	s.logger.InfoContext(ctx, "lock sweep finished",
		"processed", result.Processed,
		"locked", result.Locked,
		"autofilled", result.Autofilled,
		"failed", result.Failed,
		"failed_round_ids", result.FailedIDs,
	)
}

// cronLogAdapter routes cron's internal logs through the service logger.
type cronLogAdapter struct {
	logger *logging.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
