package cleanup

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the cleanup collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	deletions        *prometheus.CounterVec
	projects         *prometheus.CounterVec
	deploymentsFound *prometheus.CounterVec
	runs             *prometheus.CounterVec
	lastRunTimestamp prometheus.Gauge
	lastRunDuration  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		deletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_cleanup_deletions_total",
				Help: "Deployment deletions attempted, by result",
			},
			[]string{"project", "result"},
		),
		projects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_cleanup_projects_total",
				Help: "Projects processed, by final state",
			},
			[]string{"state"},
		),
		deploymentsFound: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_cleanup_deployments_fetched_total",
				Help: "Deployments enumerated per project",
			},
			[]string{"project"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_cleanup_runs_total",
				Help: "Cleanup runs, by result",
			},
			[]string{"result"},
		),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pages_cleanup_last_run_timestamp_seconds",
			Help: "Unix time the last cleanup run finished",
		}),
		lastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pages_cleanup_last_run_duration_seconds",
			Help: "Wall time of the last cleanup run",
		}),
	}
}

func (m *Metrics) deletion(project string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.deletions.WithLabelValues(project, result).Inc()
}

func (m *Metrics) project(state State) {
	if m == nil {
		return
	}
	m.projects.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) fetched(project string, n int) {
	if m == nil {
		return
	}
	m.deploymentsFound.WithLabelValues(project).Add(float64(n))
}

func (m *Metrics) run(started, finished time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.runs.WithLabelValues(result).Inc()
	m.lastRunTimestamp.Set(float64(finished.Unix()))
	m.lastRunDuration.Set(finished.Sub(started).Seconds())
}
