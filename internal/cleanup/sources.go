package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectSource produces the set of projects one run should clean.
type ProjectSource interface {
	Projects(ctx context.Context) ([]Project, error)
}

// NewProjectSource picks exactly one source: the projects file, then the
// inline list, then live enumeration through the API.
func NewProjectSource(cfg Config, api PagesAPI, sleeper Sleeper, logger *slog.Logger) ProjectSource {
	switch {
	case cfg.ProjectsFile != "":
		logger.Info("Using projects file", "path", cfg.ProjectsFile)
		return FileProjectSource{Path: cfg.ProjectsFile}
	case len(cfg.Projects) > 0:
		logger.Info("Using configured project list", "count", len(cfg.Projects))
		return NewStaticProjectSource(cfg.Projects)
	default:
		pager := cfg.Pager(sleeper)
		pager.SinglePage = cfg.ProjectsSinglePage
		return &APIProjectSource{api: api, pager: pager, logger: logger}
	}
}

type APIProjectSource struct {
	api    ProjectLister
	pager  Pager
	logger *slog.Logger
}

func NewAPIProjectSource(api ProjectLister, pager Pager, logger *slog.Logger) *APIProjectSource {
	return &APIProjectSource{api: api, pager: pager, logger: logger}
}

func (s *APIProjectSource) Projects(ctx context.Context) ([]Project, error) {
	s.logger.Info("Enumerating Pages projects")
	projects, err := FetchAll(ctx, s.pager, func(ctx context.Context, page, perPage int) ([]Project, error) {
		s.logger.Debug("Fetching projects page", "page", page, "per_page", perPage)
		return s.api.ListProjects(ctx, page, perPage)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

type StaticProjectSource struct {
	names []string
}

func NewStaticProjectSource(names []string) StaticProjectSource {
	return StaticProjectSource{names: names}
}

func (s StaticProjectSource) Projects(ctx context.Context) ([]Project, error) {
	return toProjects(s.names), nil
}

// FileProjectSource reads a YAML document of the form:
//
//	projects:
//	  - my-site
//	  - docs
type FileProjectSource struct {
	Path string
}

type projectsFile struct {
	Projects []string `yaml:"projects"`
}

func (s FileProjectSource) Projects(ctx context.Context) ([]Project, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects file: %w", err)
	}

	var f projectsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse projects file %s: %w", s.Path, err)
	}
	return toProjects(f.Projects), nil
}

func toProjects(names []string) []Project {
	projects := make([]Project, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		projects = append(projects, Project{Name: name})
	}
	return projects
}
