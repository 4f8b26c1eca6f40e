// Package github provides functionality for interacting with the GitHub API.
//
// Repositories of the configured owner act as teams, labels as projects and
// open milestones as cycles.
package github

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/quill/internal/config"
	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/pkg/models"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
	owner  string
}

// APIURL returns the REST API base URL for a GitHub domain.
func APIURL(domain string) string {
	if domain == "" || domain == "github.com" {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// NewClient creates a GitHub API client for cfg. apiURL overrides the URL
// derived from the configured domain when non-empty.
func NewClient(ctx context.Context, cfg config.GitHubConfig, apiURL string) (*Client, error) {
	if err := config.ValidateGitHubConfig(&config.Config{GitHub: cfg}); err != nil {
		return nil, err
	}

	if apiURL == "" {
		apiURL = APIURL(cfg.Domain)
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	parsedURL, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url: %w", err)
	}

	logging.Debug("github configuration",
		"domain", cfg.Domain,
		"api_url", apiURL,
		"owner", cfg.Owner,
		"token", logging.MaskSensitive(cfg.Token))

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	client.BaseURL = parsedURL
	client.UploadURL = parsedURL

	return &Client{client: client, owner: cfg.Owner}, nil
}

// splitRepository parses "owner/repo".
func splitRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

func directoryError(what string, err error, resp *github.Response) error {
	if resp != nil {
		return fmt.Errorf("%w: failed to fetch GitHub %s (status: %d): %w", models.ErrDirectoryRequestFailed, what, resp.StatusCode, err)
	}
	return fmt.Errorf("%w: failed to fetch GitHub %s: %w", models.ErrDirectoryRequestFailed, what, err)
}

// ListEntities lists the owner's repositories (teams), the labels of the
// scope repository (projects) or its open milestones (cycles).
func (c *Client) ListEntities(ctx context.Context, kind models.EntityKind, scope string) ([]models.Entity, error) {
	switch kind {
	case models.KindTeam:
		return c.repositories(ctx)
	case models.KindProject:
		return c.labels(ctx, scope)
	case models.KindCycle:
		milestones, err := c.milestones(ctx, scope)
		if err != nil {
			return nil, err
		}
		entities := make([]models.Entity, 0, len(milestones))
		for _, m := range milestones {
			entities = append(entities, milestoneEntity(m))
		}
		return entities, nil
	}
	return nil, fmt.Errorf("%w: GitHub has no %s collection", models.ErrDirectoryRequestFailed, kind)
}

// repositories lists repositories owned by the configured owner that the
// token can see. The id is "owner/repo".
func (c *Client) repositories(ctx context.Context) ([]models.Entity, error) {
	opts := &github.RepositoryListOptions{ListOptions: github.ListOptions{PerPage: 100}}

	var entities []models.Entity
	for {
		repos, resp, err := c.client.Repositories.List(ctx, "", opts)
		if err != nil {
			return nil, directoryError("repositories", err, resp)
		}

		for _, repo := range repos {
			if !strings.EqualFold(repo.GetOwner().GetLogin(), c.owner) {
				continue
			}
			entities = append(entities, models.Entity{ID: repo.GetFullName(), Name: repo.GetName()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return entities, nil
}

func (c *Client) labels(ctx context.Context, repository string) ([]models.Entity, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
	}

	opts := &github.ListOptions{PerPage: 100}

	var entities []models.Entity
	for {
		labels, resp, err := c.client.Issues.ListLabels(ctx, owner, repo, opts)
		if err != nil {
			return nil, directoryError("labels", err, resp)
		}

		for _, label := range labels {
			entities = append(entities, models.Entity{ID: label.GetName(), Name: label.GetName()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return entities, nil
}

func (c *Client) milestones(ctx context.Context, repository string) ([]*github.Milestone, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
	}

	opts := &github.MilestoneListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var milestones []*github.Milestone
	for {
		page, resp, err := c.client.Issues.ListMilestones(ctx, owner, repo, opts)
		if err != nil {
			return nil, directoryError("milestones", err, resp)
		}
		milestones = append(milestones, page...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return milestones, nil
}

func milestoneEntity(m *github.Milestone) models.Entity {
	return models.Entity{ID: strconv.Itoa(m.GetNumber()), Name: m.GetTitle()}
}

// ListUsers lists the users that can be assigned issues in the scope repository.
func (c *Client) ListUsers(ctx context.Context, scope string) ([]models.User, error) {
	owner, repo, err := splitRepository(scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
	}

	opts := &github.ListOptions{PerPage: 100}

	var users []models.User
	for {
		assignees, resp, err := c.client.Issues.ListAssignees(ctx, owner, repo, opts)
		if err != nil {
			return nil, directoryError("assignees", err, resp)
		}

		for _, a := range assignees {
			users = append(users, models.User{
				ID:          a.GetLogin(),
				Name:        a.Name,
				DisplayName: a.Login,
				Email:       a.Email,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return users, nil
}

// ActiveCycle picks the open milestone with the nearest due date. Without
// due dates it returns the only open milestone, or nil when there are several.
func (c *Client) ActiveCycle(ctx context.Context, teamID string) (*models.Entity, error) {
	milestones, err := c.milestones(ctx, teamID)
	if err != nil {
		return nil, err
	}

	var dated []*github.Milestone
	for _, m := range milestones {
		if m.DueOn != nil {
			dated = append(dated, m)
		}
	}

	switch {
	case len(dated) > 0:
		sort.SliceStable(dated, func(i, j int) bool {
			return dated[i].GetDueOn().Before(dated[j].GetDueOn())
		})
		e := milestoneEntity(dated[0])
		return &e, nil
	case len(milestones) == 1:
		e := milestoneEntity(milestones[0])
		return &e, nil
	}
	return nil, nil
}

// CreateIssue opens an issue in the team repository and returns its HTML URL.
func (c *Client) CreateIssue(ctx context.Context, req models.CreationRequest) (string, error) {
	owner, repo, err := splitRepository(req.TeamID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrIssueCreateFailed, err)
	}

	issueReq := &github.IssueRequest{
		Title: github.String(req.Title),
		Body:  github.String(req.Description),
	}
	if req.ProjectID != nil {
		issueReq.Labels = &[]string{*req.ProjectID}
	}
	if req.AssigneeID != nil {
		issueReq.Assignee = req.AssigneeID
	}
	if req.CycleID != nil {
		number, err := strconv.Atoi(*req.CycleID)
		if err != nil {
			return "", fmt.Errorf("%w: invalid milestone %q", models.ErrIssueCreateFailed, *req.CycleID)
		}
		issueReq.Milestone = github.Int(number)
	}

	issue, resp, err := c.client.Issues.Create(ctx, owner, repo, issueReq)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("%w: failed to create GitHub issue (status: %d): %w", models.ErrIssueCreateFailed, resp.StatusCode, err)
		}
		return "", fmt.Errorf("%w: failed to create GitHub issue: %w", models.ErrIssueCreateFailed, err)
	}
	if issue.GetHTMLURL() == "" {
		return "", models.ErrIssueCreateMalformedResponse
	}

	logging.Info("github issue created", "repository", req.TeamID, "number", issue.GetNumber(), "url", issue.GetHTMLURL())
	return issue.GetHTMLURL(), nil
}
