package scheduler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type statusResponse struct {
	NextRun *time.Time `json:"next_run,omitempty"`
	LastRun *Status    `json:"last_run,omitempty"`
}

func NewRouter(s *Scheduler, gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		var resp statusResponse
		if next := s.NextRun(); !next.IsZero() {
			resp.NextRun = &next
		}
		if last, ok := s.LastStatus(); ok {
			resp.LastRun = &last
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return router
}
