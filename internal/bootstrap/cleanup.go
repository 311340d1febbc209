package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/wob25/del-cf-deploy2/internal/cleanup"
	"github.com/wob25/del-cf-deploy2/internal/pages"
	"go.uber.org/fx"
)

type MetricsConfig struct {
	PushGatewayURL string
	Job            string
}

// CleanupModule wires the Pages client and the cleanup pipeline. Callers
// provide the logger and the pages.Config / cleanup.Config values.
var CleanupModule = fx.Options(
	fx.Provide(
		NewPagesAPI,
		NewSleeper,
		NewMetricsRegistry,
		NewCleanupMetrics,
		cleanup.NewProjectSource,
		cleanup.NewProjectCleaner,
		cleanup.NewRunner,
	),
)

func NewPagesAPI(cfg pages.Config, logger *slog.Logger) (cleanup.PagesAPI, error) {
	return pages.NewClient(cfg, logger)
}

func NewSleeper() cleanup.Sleeper {
	return cleanup.ContextSleeper{}
}

func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewCleanupMetrics(reg *prometheus.Registry) *cleanup.Metrics {
	return cleanup.NewMetrics(reg)
}

// PushMetrics sends the registry to a Pushgateway. It is a no-op when no
// gateway is configured.
func PushMetrics(ctx context.Context, cfg MetricsConfig, reg *prometheus.Registry, logger *slog.Logger) error {
	if cfg.PushGatewayURL == "" {
		return nil
	}

	job := cfg.Job
	if job == "" {
		job = "pages_cleanup"
	}

	if err := push.New(cfg.PushGatewayURL, job).Gatherer(reg).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	logger.Info("Pushed metrics", "url", cfg.PushGatewayURL, "job", job)
	return nil
}
