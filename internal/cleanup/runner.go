package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// PreconditionError means the run could not start at all, as opposed to a
// single project failing.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cleanup precondition failed: %v", e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Projects   []ProjectOutcome
}

type Totals struct {
	Projects  int
	Aborted   int
	Fetched   int
	Attempted int
	Succeeded int
	Failed    int
}

func (r Report) Totals() Totals {
	t := Totals{Projects: len(r.Projects)}
	for _, p := range r.Projects {
		if p.State == StateAborted {
			t.Aborted++
		}
		t.Fetched += p.Fetched
		t.Attempted += p.Deletion.Attempted
		t.Succeeded += p.Deletion.Succeeded
		t.Failed += p.Deletion.Failed
	}
	return t
}

func (r Report) Aborted() []ProjectOutcome {
	var out []ProjectOutcome
	for _, p := range r.Projects {
		if p.State == StateAborted {
			out = append(out, p)
		}
	}
	return out
}

// Runner cleans every project from its source, one after another. Projects
// are never processed concurrently so the pauses between API calls are the
// only rate limiting needed.
type Runner struct {
	source  ProjectSource
	cleaner *ProjectCleaner
	exclude map[string]struct{}
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewRunner(cfg Config, source ProjectSource, cleaner *ProjectCleaner, metrics *Metrics, logger *slog.Logger) *Runner {
	exclude := make(map[string]struct{}, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		exclude[name] = struct{}{}
	}
	return &Runner{
		source:  source,
		cleaner: cleaner,
		exclude: exclude,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Run returns a *PreconditionError when the project set cannot be obtained,
// and the context error when cancelled between projects. Individual project
// failures are only reported in the Report.
func (r *Runner) Run(ctx context.Context) (report Report, err error) {
	report = Report{RunID: shortuuid.New(), StartedAt: r.now()}
	logger := r.logger.With("run_id", report.RunID)

	defer func() {
		report.FinishedAt = r.now()
		r.metrics.run(report.StartedAt, report.FinishedAt, err)
	}()

	projects, err := r.source.Projects(ctx)
	if err != nil {
		logger.Error("Could not obtain project list", "error", err)
		return report, &PreconditionError{Err: err}
	}

	projects = r.selectProjects(projects, logger)
	if len(projects) == 0 {
		logger.Info("No projects to clean")
		return report, nil
	}

	logger.Info("Starting cleanup", "projects", len(projects))

	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			logger.Warn("Cleanup run cancelled", "remaining", len(projects)-len(report.Projects))
			return report, err
		}
		report.Projects = append(report.Projects, r.cleaner.Clean(ctx, p))
	}

	t := report.Totals()
	logger.Info("Cleanup run finished",
		"projects", t.Projects,
		"aborted", t.Aborted,
		"attempted", t.Attempted,
		"succeeded", t.Succeeded,
		"failed", t.Failed)

	return report, nil
}

func (r *Runner) selectProjects(projects []Project, logger *slog.Logger) []Project {
	seen := make(map[string]struct{}, len(projects))
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		if _, ok := r.exclude[p.Name]; ok {
			logger.Info("Skipping excluded project", "project", p.Name)
			continue
		}
		out = append(out, p)
	}
	return out
}
