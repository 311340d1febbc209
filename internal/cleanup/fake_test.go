package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

var errTransport = errors.New("connection reset by peer")

type recordingSleeper struct {
	pauses []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.pauses = append(s.pauses, d)
	return ctx.Err()
}

// fakeAPI serves deployments newest first in pages, and deletes them from
// its own state so a second run sees what a real account would.
type fakeAPI struct {
	projects    []Project
	projectsErr error
	deployments map[string][]Deployment
	failPage    map[string]int
	deleteErr   map[string]error

	listCalls map[string]int
	deleted   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		deployments: map[string][]Deployment{},
		failPage:    map[string]int{},
		deleteErr:   map[string]error{},
		listCalls:   map[string]int{},
	}
}

func (f *fakeAPI) ListProjects(ctx context.Context, page, perPage int) ([]Project, error) {
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	return pageOf(f.projects, page, perPage), nil
}

func (f *fakeAPI) ListDeployments(ctx context.Context, project string, page, perPage int) ([]Deployment, error) {
	f.listCalls[project]++
	if p, ok := f.failPage[project]; ok && p == page {
		return nil, fmt.Errorf("list deployments page %d: %w", page, errTransport)
	}
	return pageOf(f.deployments[project], page, perPage), nil
}

func (f *fakeAPI) DeleteDeployment(ctx context.Context, project, deploymentID string) error {
	if err, ok := f.deleteErr[deploymentID]; ok {
		return err
	}
	remaining := f.deployments[project][:0:0]
	for _, d := range f.deployments[project] {
		if d.ID != deploymentID {
			remaining = append(remaining, d)
		}
	}
	f.deployments[project] = remaining
	f.deleted = append(f.deleted, deploymentID)
	return nil
}

func pageOf[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// dep builds a deletable deployment created age hours before baseTime.
func dep(id string, age int) Deployment {
	return Deployment{
		ID:          id,
		CreatedAt:   baseTime.Add(-time.Duration(age) * time.Hour),
		StageStatus: StageStatusSuccess,
		TriggerType: TriggerTypePush,
	}
}

func ids(deployments []Deployment) []string {
	out := make([]string, 0, len(deployments))
	for _, d := range deployments {
		out = append(out, d.ID)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
