// Package scheduler drives the periodic reminder dispatch. It owns a gron
// cron instance and serializes runs so a slow pass never overlaps the next.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"github.com/dmitrijs2005/keepintouch/internal/common"
	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/server/checker"
)

const DefaultInterval = 15 * time.Minute

// Runner is the unit of work the scheduler triggers.
type Runner interface {
	CheckAndSendReminders(ctx context.Context) (checker.Result, error)
}

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	IsRunning            bool            `json:"isRunning"`
	CheckIntervalMinutes int             `json:"checkIntervalMinutes"`
	LastRunAt            *time.Time      `json:"lastRunAt,omitempty"`
	LastResult           *checker.Result `json:"lastResult,omitempty"`
}

type Scheduler struct {
	runner     Runner
	logger     logging.Logger
	interval   time.Duration
	configured bool

	cron  *gron.Cron
	runMu sync.Mutex // serializes dispatch runs

	mu         sync.Mutex // guards the fields below
	running    bool
	lastRunAt  *time.Time
	lastResult *checker.Result
}

// New builds a stopped scheduler. configured mirrors whether push keys are
// present; an unconfigured scheduler refuses to start instead of running
// passes that can never deliver anything.
func New(runner Runner, logger logging.Logger, interval time.Duration, configured bool) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:     runner,
		logger:     logger,
		interval:   interval,
		configured: configured,
	}
}

// Start begins periodic dispatch and fires one run immediately. Starting an
// already-running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.configured {
		return common.ErrVAPIDNotConfigured
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.interval), func() {
		s.run(ctx)
	})
	s.cron.Start()
	s.running = true
	s.mu.Unlock()

	s.logger.Info(ctx, "reminder scheduler started", "interval", s.interval.String())
	go s.run(ctx)
	return nil
}

// Stop halts the periodic schedule. An in-flight run is allowed to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.cron = nil
	s.running = false
	s.logger.Info(ctx, "reminder scheduler stopped")
}

// TriggerCheck runs one dispatch pass immediately, outside the schedule.
func (s *Scheduler) TriggerCheck(ctx context.Context) (checker.Result, error) {
	return s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) (checker.Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	now := time.Now()
	res, err := s.runner.CheckAndSendReminders(ctx)
	if err != nil {
		s.logger.Error(ctx, "reminder check failed", "error", err)
	}

	s.mu.Lock()
	s.lastRunAt = &now
	s.lastResult = &res
	s.mu.Unlock()
	return res, err
}

// Status reports whether the scheduler is running and what its last pass did.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		IsRunning:            s.running,
		CheckIntervalMinutes: int(s.interval / time.Minute),
		LastRunAt:            s.lastRunAt,
		LastResult:           s.lastResult,
	}
}
