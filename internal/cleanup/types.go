package cleanup

import (
	"context"
	"slices"
	"strings"
	"time"
)

type Project struct {
	Name string
}

// Deployment is a read-only snapshot of one Pages deployment.
type Deployment struct {
	ID          string
	CreatedAt   time.Time
	Environment string
	StageStatus StageStatus
	TriggerType TriggerType
}

// ShortID returns the first eight characters of the deployment id, the form
// Cloudflare shows in its dashboard.
func (d Deployment) ShortID() string {
	if len(d.ID) <= 8 {
		return d.ID
	}
	return d.ID[:8]
}

type StageStatus int

const (
	StageStatusUnknown StageStatus = iota
	StageStatusActive
	StageStatusSuccess
	StageStatusFailure
	StageStatusIdle
	StageStatusCanceled
	StageStatusSkipped
)

// ParseStageStatus maps the API's latest_stage.status string. Matching is
// case-insensitive; empty or unrecognised values yield StageStatusUnknown.
func ParseStageStatus(s string) StageStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StageStatusActive
	case "success":
		return StageStatusSuccess
	case "failure", "failed":
		return StageStatusFailure
	case "idle":
		return StageStatusIdle
	case "canceled", "cancelled":
		return StageStatusCanceled
	case "skipped":
		return StageStatusSkipped
	default:
		return StageStatusUnknown
	}
}

func (s StageStatus) String() string {
	switch s {
	case StageStatusActive:
		return "active"
	case StageStatusSuccess:
		return "success"
	case StageStatusFailure:
		return "failure"
	case StageStatusIdle:
		return "idle"
	case StageStatusCanceled:
		return "canceled"
	case StageStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

type TriggerType int

const (
	TriggerTypeUnknown TriggerType = iota
	TriggerTypeManual
	TriggerTypePush
	TriggerTypeDeployHook
	TriggerTypeProduction
)

// ParseTriggerType maps the API's deployment_trigger.type string.
func ParseTriggerType(s string) TriggerType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ad_hoc", "manual":
		return TriggerTypeManual
	case "github:push", "gitlab:push", "push":
		return TriggerTypePush
	case "deploy_hook":
		return TriggerTypeDeployHook
	case "production":
		return TriggerTypeProduction
	default:
		return TriggerTypeUnknown
	}
}

func (t TriggerType) String() string {
	switch t {
	case TriggerTypeManual:
		return "manual"
	case TriggerTypePush:
		return "push"
	case TriggerTypeDeployHook:
		return "deploy_hook"
	case TriggerTypeProduction:
		return "production"
	default:
		return "unknown"
	}
}

// SortNewestFirst returns a copy of deployments ordered by CreatedAt,
// newest first. Ties keep their original relative order.
func SortNewestFirst(deployments []Deployment) []Deployment {
	sorted := slices.Clone(deployments)
	slices.SortStableFunc(sorted, func(a, b Deployment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

type ProjectLister interface {
	ListProjects(ctx context.Context, page, perPage int) ([]Project, error)
}

type DeploymentLister interface {
	ListDeployments(ctx context.Context, project string, page, perPage int) ([]Deployment, error)
}

type DeploymentDeleter interface {
	DeleteDeployment(ctx context.Context, project, deploymentID string) error
}

// PagesAPI is the subset of the remote management API the cleanup needs.
type PagesAPI interface {
	ProjectLister
	DeploymentLister
	DeploymentDeleter
}
