package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wob25/del-cf-deploy2/internal/bootstrap"
	"github.com/wob25/del-cf-deploy2/internal/cleanup"
	"github.com/wob25/del-cf-deploy2/internal/pages"
	"github.com/wob25/del-cf-deploy2/internal/scheduler"
	"go.uber.org/fx"
)

type config struct {
	fx.Out

	Cloudflare pages.Config
	Cleanup    cleanup.Config
	Scheduler  scheduler.Config
	Log        bootstrap.LogConfig
}

func main() {
	fx.New(
		fx.StopTimeout(2*time.Minute),
		fx.Provide(
			bootstrap.NewLogger,
			bootstrap.LoadConfig[config],
			scheduler.New,
		),
		bootstrap.CleanupModule,
		fx.Invoke(
			startScheduler,
		),
	).Run()
}

func startScheduler(lc fx.Lifecycle, s *scheduler.Scheduler, cfg scheduler.Config, reg *prometheus.Registry, logger *slog.Logger) {
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: scheduler.NewRouter(s, reg),
	}

	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := s.Start(ctx); err != nil {
				return err
			}
			logger.Info("Starting cleanup scheduler HTTP server", "port", cfg.Port, "next_run", s.NextRun())
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Scheduler HTTP server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info("Shutting down cleanup scheduler...")
			cancel()
			s.Stop()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			return server.Shutdown(shutdownCtx)
		},
	})
}
