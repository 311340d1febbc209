package cleanup

import (
	"context"
	"log/slog"
)

type State int

const (
	StateFetching State = iota
	StateFiltering
	StateDeleting
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateFiltering:
		return "filtering"
	case StateDeleting:
		return "deleting"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type ProjectOutcome struct {
	Project    string
	State      State
	Fetched    int
	Candidates int
	Protected  int
	DryRun     bool
	Deletion   DeletionSummary
	Err        error
}

// ProjectCleaner runs fetch, filter and delete for a single project.
type ProjectCleaner struct {
	lister   DeploymentLister
	pager    Pager
	policy   Policy
	executor *Executor
	dryRun   bool
	metrics  *Metrics
	logger   *slog.Logger
}

func NewProjectCleaner(cfg Config, api PagesAPI, sleeper Sleeper, metrics *Metrics, logger *slog.Logger) *ProjectCleaner {
	return &ProjectCleaner{
		lister:   api,
		pager:    cfg.Pager(sleeper),
		policy:   cfg.Policy(),
		executor: NewExecutor(api, cfg.DeletePause, sleeper, metrics, logger),
		dryRun:   cfg.DryRun,
		metrics:  metrics,
		logger:   logger,
	}
}

// Clean never returns an error: an enumeration failure ends in StateAborted
// with Err set, everything else ends in StateDone.
func (c *ProjectCleaner) Clean(ctx context.Context, project Project) ProjectOutcome {
	logger := c.logger.With("project", project.Name)
	out := ProjectOutcome{Project: project.Name, State: StateFetching, DryRun: c.dryRun}

	transition := func(next State) {
		logger.Debug("Project state change", "from", out.State.String(), "to", next.String())
		out.State = next
	}
	defer func() { c.metrics.project(out.State) }()

	logger.Info("Fetching deployments")
	deployments, err := FetchAll(ctx, c.pager, func(ctx context.Context, page, perPage int) ([]Deployment, error) {
		logger.Debug("Fetching deployments page", "page", page, "per_page", perPage)
		return c.lister.ListDeployments(ctx, project.Name, page, perPage)
	})
	if err != nil {
		out.Err = err
		transition(StateAborted)
		logger.Error("Skipping project, failed to fetch deployments", "error", err)
		return out
	}

	out.Fetched = len(deployments)
	c.metrics.fetched(project.Name, len(deployments))
	logger.Info("Fetched deployments", "count", len(deployments))

	if len(deployments) <= c.policy.keep() {
		transition(StateDone)
		logger.Info("Nothing to clean, within retention window", "keep", c.policy.keep())
		return out
	}

	transition(StateFiltering)
	sorted := SortNewestFirst(deployments)
	candidates := SelectForDeletion(sorted, c.policy)
	out.Candidates = len(candidates)
	out.Protected = len(sorted) - c.policy.keep() - len(candidates)

	for _, d := range sorted[c.policy.keep():] {
		if reason := ProtectionReason(d); reason != "" {
			logger.Debug("Keeping deployment", "deployment_id", d.ShortID(), "reason", reason)
		}
	}

	if len(candidates) == 0 {
		transition(StateDone)
		logger.Info("No deletable deployments", "protected", out.Protected)
		return out
	}

	if c.dryRun {
		for _, d := range candidates {
			logger.Info("Would delete deployment", "deployment_id", d.ShortID(), "created_on", d.CreatedAt)
		}
		transition(StateDone)
		return out
	}

	transition(StateDeleting)
	logger.Info("Deleting old deployments", "count", len(candidates))
	out.Deletion = c.executor.Execute(ctx, project.Name, candidates)
	transition(StateDone)

	logger.Info("Project cleanup finished",
		"attempted", out.Deletion.Attempted,
		"succeeded", out.Deletion.Succeeded,
		"failed", out.Deletion.Failed)
	return out
}
