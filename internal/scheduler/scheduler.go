package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wob25/del-cf-deploy2/internal/cleanup"
)

type Config struct {
	Cron       string
	Port       string
	RunOnStart bool
}

type runner interface {
	Run(ctx context.Context) (cleanup.Report, error)
}

// Status summarises the most recent cleanup run.
type Status struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Projects   int       `json:"projects"`
	Aborted    []string  `json:"aborted,omitempty"`
	Attempted  int       `json:"deletions_attempted"`
	Succeeded  int       `json:"deletions_succeeded"`
	Failed     int       `json:"deletions_failed"`
	Error      string    `json:"error,omitempty"`
}

// Scheduler repeats cleanup runs on a cron schedule. At most one run is in
// flight at any time, whether started by cron or by RunOnce.
type Scheduler struct {
	cfg    Config
	runner runner
	cron   *cron.Cron
	logger *slog.Logger

	runMu sync.Mutex
	// wg tracks the start-up run, which cron does not own.
	wg sync.WaitGroup

	mu      sync.RWMutex
	last    *Status
	running bool
}

func New(cfg Config, r *cleanup.Runner, logger *slog.Logger) *Scheduler {
	return newScheduler(cfg, r, logger)
}

func newScheduler(cfg Config, r runner, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &Scheduler{
		cfg:    cfg,
		runner: r,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		logger: logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := cron.ParseStandard(s.cfg.Cron); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Cron, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Cron, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Cleanup scheduler started", "schedule", s.cfg.Cron)

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.RunOnce(ctx)
		}()
	}
	return nil
}

// Stop waits for a running cleanup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("Cleanup scheduler stopped")
}

// RunOnce performs a cleanup run unless one is already in progress, in which
// case it returns false immediately.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.runMu.TryLock() {
		s.logger.Warn("Cleanup run already in progress, skipping")
		return false
	}
	defer s.runMu.Unlock()

	s.logger.Info("Starting scheduled cleanup")
	report, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduled cleanup failed", "run_id", report.RunID, "error", err)
	}

	status := statusFromReport(report, err)
	s.mu.Lock()
	s.last = &status
	s.mu.Unlock()
	return true
}

func (s *Scheduler) LastStatus() (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Status{}, false
	}
	return *s.last, true
}

// NextRun returns the next scheduled run, or the zero time when not started.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func statusFromReport(report cleanup.Report, err error) Status {
	t := report.Totals()
	status := Status{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Projects:   t.Projects,
		Attempted:  t.Attempted,
		Succeeded:  t.Succeeded,
		Failed:     t.Failed,
	}
	for _, p := range report.Aborted() {
		status.Aborted = append(status.Aborted, p.Project)
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}
