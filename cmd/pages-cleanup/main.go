package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wob25/del-cf-deploy2/internal/bootstrap"
	"github.com/wob25/del-cf-deploy2/internal/cleanup"
	"github.com/wob25/del-cf-deploy2/internal/pages"
	"go.uber.org/fx"
)

type config struct {
	fx.Out

	Cloudflare pages.Config
	Cleanup    cleanup.Config
	Metrics    bootstrap.MetricsConfig
	Log        bootstrap.LogConfig
}

func main() {
	fx.New(
		fx.StopTimeout(30*time.Second),
		fx.Provide(
			bootstrap.NewLogger,
			bootstrap.LoadConfig[config],
		),
		bootstrap.CleanupModule,
		fx.Invoke(
			runCleanup,
		),
	).Run()
}

// runCleanup performs a single run and then shuts the app down. The exit code
// is non-zero only when the run could not start; per-project failures are
// reported in the logs.
func runCleanup(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	runner *cleanup.Runner,
	reg *prometheus.Registry,
	metricsCfg bootstrap.MetricsConfig,
	logger *slog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				exitCode := 0
				report, err := runner.Run(ctx)
				if err != nil {
					logger.Error("Cleanup run failed", "run_id", report.RunID, "error", err)
					exitCode = 1
				}
				for _, p := range report.Aborted() {
					logger.Warn("Project was skipped", "project", p.Project, "error", p.Err)
				}

				if err := bootstrap.PushMetrics(context.Background(), metricsCfg, reg, logger); err != nil {
					logger.Warn("Could not push metrics", "error", err)
				}

				if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					logger.Error("Failed to shut down", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				logger.Warn("Timed out waiting for cleanup run to stop")
			}
			return nil
		},
	})
}
