package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/wob25/del-cf-deploy2/internal/cleanup"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	APIToken  string
	AccountID string
	// BaseURL overrides the Cloudflare API endpoint.
	BaseURL     string
	Timeout     time.Duration
	ForceDelete bool
}

type Client struct {
	api       *cloudflare.API
	accountID string
	account   *cloudflare.ResourceContainer
	force   bool
	logger  *slog.Logger
}

type Error struct {
	Op      string
	Project string
	Err     error
}

func (e *Error) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("pages: %s %s: %v", e.Op, e.Project, e.Err)
	}
	return fmt.Sprintf("pages: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.APIToken == "" {
		return nil, fmt.Errorf("pages: APIToken is required (set CF_API_TOKEN)")
	}
	if config.AccountID == "" {
		return nil, fmt.Errorf("pages: AccountID is required (set CF_ACCOUNT_ID)")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	opts := []cloudflare.Option{
		cloudflare.HTTPClient(&http.Client{Timeout: timeout}),
		// Pacing belongs to the cleanup loop, and failed calls are not retried.
		cloudflare.UsingRetryPolicy(0, 0, 0),
	}
	if config.BaseURL != "" {
		opts = append(opts, cloudflare.BaseURL(config.BaseURL))
	}

	api, err := cloudflare.NewWithAPIToken(config.APIToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("pages: failed to create cloudflare client: %w", err)
	}

	return &Client{
		api:       api,
		accountID: config.AccountID,
		account:   cloudflare.AccountIdentifier(config.AccountID),
		force:     config.ForceDelete,
		logger:    logger,
	}, nil
}

func (c *Client) ListProjects(ctx context.Context, page, perPage int) ([]cleanup.Project, error) {
	c.logger.Debug("cloudflare api request", "op", "list projects", "page", page)

	endpoint := fmt.Sprintf("/accounts/%s/pages/projects?%s", c.accountID, pageQuery(page, perPage).Encode())

	var projects []cloudflare.PagesProject
	if err := c.getPage(ctx, endpoint, page, &projects); err != nil {
		return nil, &Error{Op: "list projects", Err: err}
	}

	out := make([]cleanup.Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, cleanup.Project{Name: p.Name})
	}
	return out, nil
}

// ListDeployments fetches exactly one page, newest first.
func (c *Client) ListDeployments(ctx context.Context, project string, page, perPage int) ([]cleanup.Deployment, error) {
	c.logger.Debug("cloudflare api request", "op", "list deployments", "project", project, "page", page)

	query := pageQuery(page, perPage)
	query.Set("sort_by", "created_on")
	query.Set("sort_order", "desc")
	endpoint := fmt.Sprintf("/accounts/%s/pages/projects/%s/deployments?%s",
		c.accountID, url.PathEscape(project), query.Encode())

	var deployments []cloudflare.PagesProjectDeployment
	if err := c.getPage(ctx, endpoint, page, &deployments); err != nil {
		return nil, &Error{Op: "list deployments", Project: project, Err: err}
	}

	out := make([]cleanup.Deployment, 0, len(deployments))
	for _, d := range deployments {
		out = append(out, toDeployment(d))
	}
	return out, nil
}

// getPage decodes one list page into result. The typed list helpers in
// cloudflare-go only fail on HTTP status, so the envelope's success flag is
// checked here. A page past result_info.total_pages decodes to nothing, which
// ends enumeration on endpoints that ignore the page parameter.
func (c *Client) getPage(ctx context.Context, endpoint string, page int, result any) error {
	raw, err := c.api.Raw(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return err
	}
	if !raw.Success {
		return remoteError(raw.Errors)
	}
	if raw.ResultInfo != nil && raw.ResultInfo.TotalPages > 0 && page > raw.ResultInfo.TotalPages {
		return nil
	}
	if len(raw.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw.Result, result); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

func pageQuery(page, perPage int) url.Values {
	return url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
}

func remoteError(infos []cloudflare.ResponseInfo) error {
	for _, info := range infos {
		if info.Message != "" {
			return fmt.Errorf("%s (%d)", info.Message, info.Code)
		}
	}
	return errors.New("request reported success=false")
}

func (c *Client) DeleteDeployment(ctx context.Context, project, deploymentID string) error {
	err := c.api.DeletePagesDeployment(ctx, c.account, cloudflare.DeletePagesDeploymentParams{
		ProjectName:  project,
		DeploymentID: deploymentID,
		Force:        c.force,
	})
	if err != nil {
		return &Error{Op: "delete deployment " + deploymentID, Project: project, Err: err}
	}
	return nil
}

func toDeployment(d cloudflare.PagesProjectDeployment) cleanup.Deployment {
	out := cleanup.Deployment{
		ID:          d.ID,
		Environment: d.Environment,
		StageStatus: cleanup.ParseStageStatus(d.LatestStage.Status),
		TriggerType: cleanup.ParseTriggerType(d.DeploymentTrigger.Type),
	}
	if d.CreatedOn != nil {
		out.CreatedAt = *d.CreatedOn
	}
	return out
}
