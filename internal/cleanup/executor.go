package cleanup

import (
	"context"
	"log/slog"
	"time"
)

type DeletionFailure struct {
	DeploymentID string
	Err          error
}

type DeletionSummary struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []DeletionFailure
}

// Executor deletes deployments one at a time, pausing after every request to
// stay under the API's write rate limit.
type Executor struct {
	api     DeploymentDeleter
	pause   time.Duration
	sleeper Sleeper
	metrics *Metrics
	logger  *slog.Logger
}

func NewExecutor(api DeploymentDeleter, pause time.Duration, sleeper Sleeper, metrics *Metrics, logger *slog.Logger) *Executor {
	if sleeper == nil {
		sleeper = ContextSleeper{}
	}
	return &Executor{
		api:     api,
		pause:   pause,
		sleeper: sleeper,
		metrics: metrics,
		logger:  logger,
	}
}

// Execute attempts every candidate in order. A failed deletion is recorded and
// the loop moves on; failures are never retried here. Cancelling ctx stops the
// loop before the next request.
func (e *Executor) Execute(ctx context.Context, project string, candidates []Deployment) DeletionSummary {
	var summary DeletionSummary

	for _, d := range candidates {
		if ctx.Err() != nil {
			e.logger.Warn("Deletion interrupted", "project", project, "remaining", len(candidates)-summary.Attempted)
			break
		}

		e.logger.Info("Deleting deployment",
			"project", project,
			"deployment_id", d.ShortID(),
			"created_on", d.CreatedAt.Format(time.RFC3339))

		summary.Attempted++
		if err := e.api.DeleteDeployment(ctx, project, d.ID); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, DeletionFailure{DeploymentID: d.ID, Err: err})
			e.metrics.deletion(project, false)
			e.logger.Warn("Failed to delete deployment",
				"project", project,
				"deployment_id", d.ShortID(),
				"error", err)
		} else {
			summary.Succeeded++
			e.metrics.deletion(project, true)
			e.logger.Info("Deployment deleted", "project", project, "deployment_id", d.ShortID())
		}

		if err := e.sleeper.Sleep(ctx, e.pause); err != nil {
			e.logger.Warn("Deletion interrupted", "project", project, "remaining", len(candidates)-summary.Attempted)
			break
		}
	}

	return summary
}
