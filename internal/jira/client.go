// Package jira adapts a JIRA site to the tracker directory used by quill.
//
// A quill team is a JIRA project, a quill project is a component of that
// project and a cycle is a sprint on one of the project's boards.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/quill/internal/config"
	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/pkg/models"
)

// Client handles interactions with the JIRA API
type Client struct {
	client    *jira.Client
	baseURL   string
	issueType string
}

// NewClient creates a JIRA client authenticating with the username and API
// token from cfg. httpTransport may be nil.
func NewClient(cfg config.JiraConfig, httpTransport http.RoundTripper) (*Client, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.Token == "" {
		return nil, config.ValidateJiraConfig(&config.Config{Jira: cfg})
	}

	tp := jira.BasicAuthTransport{
		Username:  cfg.Username,
		Password:  cfg.Token,
		Transport: httpTransport,
	}

	client, err := jira.NewClient(tp.Client(), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JIRA client: %w", err)
	}

	issueType := cfg.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	logging.Debug("jira client configured",
		"url", cfg.URL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token))

	return &Client{
		client:    client,
		baseURL:   strings.TrimSuffix(cfg.URL, "/"),
		issueType: issueType,
	}, nil
}

type sprintList struct {
	Values []jira.Sprint `json:"values"`
}

func directoryError(what string, err error, resp *jira.Response) error {
	if resp != nil {
		return fmt.Errorf("%w: failed to fetch JIRA %s (status: %d): %w", models.ErrDirectoryRequestFailed, what, resp.StatusCode, err)
	}
	return fmt.Errorf("%w: failed to fetch JIRA %s: %w", models.ErrDirectoryRequestFailed, what, err)
}

// ListEntities lists projects (teams), components of the scope project
// (projects) or open sprints on the scope project's boards (cycles).
func (c *Client) ListEntities(ctx context.Context, kind models.EntityKind, scope string) ([]models.Entity, error) {
	switch kind {
	case models.KindTeam:
		return c.projects(ctx)
	case models.KindProject:
		if scope == "" {
			return nil, fmt.Errorf("%w: listing JIRA components requires a team", models.ErrDirectoryRequestFailed)
		}
		return c.components(ctx, scope)
	case models.KindCycle:
		if scope == "" {
			return nil, fmt.Errorf("%w: listing JIRA sprints requires a team", models.ErrDirectoryRequestFailed)
		}
		sprints, err := c.sprints(ctx, scope, "active,future")
		if err != nil {
			return nil, err
		}
		entities := make([]models.Entity, 0, len(sprints))
		for _, s := range sprints {
			entities = append(entities, sprintEntity(s))
		}
		return entities, nil
	}
	return nil, fmt.Errorf("%w: JIRA has no %s collection", models.ErrDirectoryRequestFailed, kind)
}

func (c *Client) projects(ctx context.Context) ([]models.Entity, error) {
	list, resp, err := c.client.Project.GetListWithContext(ctx)
	if err != nil {
		return nil, directoryError("projects", err, resp)
	}

	entities := make([]models.Entity, 0, len(*list))
	for _, p := range *list {
		// The key doubles as the team id because issue creation addresses projects by key.
		entities = append(entities, models.Entity{ID: p.Key, Name: p.Name})
	}
	return entities, nil
}

func (c *Client) components(ctx context.Context, projectKey string) ([]models.Entity, error) {
	project, resp, err := c.client.Project.GetWithContext(ctx, projectKey)
	if err != nil {
		return nil, directoryError("components", err, resp)
	}

	entities := make([]models.Entity, 0, len(project.Components))
	for _, comp := range project.Components {
		entities = append(entities, models.Entity{ID: comp.ID, Name: comp.Name})
	}
	return entities, nil
}

// sprints collects the sprints in the given states across every board of the project.
func (c *Client) sprints(ctx context.Context, projectKey, state string) ([]jira.Sprint, error) {
	boards, resp, err := c.client.Board.GetAllBoardsWithContext(ctx, &jira.BoardListOptions{ProjectKeyOrID: projectKey})
	if err != nil {
		return nil, directoryError("boards", err, resp)
	}

	seen := map[int]bool{}
	var sprints []jira.Sprint
	for _, board := range boards.Values {
		path := fmt.Sprintf("rest/agile/1.0/board/%d/sprint?state=%s", board.ID, url.QueryEscape(state))
		req, err := c.client.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
		}

		var page sprintList
		resp, err := c.client.Do(req, &page)
		if err != nil {
			// Kanban boards reject the sprint endpoint.
			if resp != nil && resp.StatusCode == http.StatusBadRequest {
				logging.Debug("skipping board without sprints", "board", board.Name)
				continue
			}
			return nil, directoryError("sprints", err, resp)
		}

		for _, s := range page.Values {
			if !seen[s.ID] {
				seen[s.ID] = true
				sprints = append(sprints, s)
			}
		}
	}
	return sprints, nil
}

func sprintEntity(s jira.Sprint) models.Entity {
	return models.Entity{ID: strconv.Itoa(s.ID), Name: s.Name}
}

// ListUsers lists users assignable in the scope project.
func (c *Client) ListUsers(ctx context.Context, scope string) ([]models.User, error) {
	if scope == "" {
		return nil, fmt.Errorf("%w: listing JIRA users requires a team", models.ErrDirectoryRequestFailed)
	}

	path := "rest/api/2/user/assignable/search?maxResults=100&project=" + url.QueryEscape(scope)
	req, err := c.client.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
	}

	var users []jira.User
	resp, err := c.client.Do(req, &users)
	if err != nil {
		return nil, directoryError("users", err, resp)
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		id := u.AccountID
		if id == "" {
			id = serverUserPrefix + u.Name
		}
		out = append(out, models.User{
			ID:          id,
			Name:        optional(u.Name),
			DisplayName: optional(u.DisplayName),
			Email:       optional(u.EmailAddress),
		})
	}
	return out, nil
}

// serverUserPrefix marks user ids taken from the user name. Server and Data
// Center deployments have no account ids and assign by name.
const serverUserPrefix = "name:"

func assignee(id string) *jira.User {
	if name, ok := strings.CutPrefix(id, serverUserPrefix); ok {
		return &jira.User{Name: name}
	}
	return &jira.User{AccountID: id}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ActiveCycle returns the first active sprint on the project's boards.
func (c *Client) ActiveCycle(ctx context.Context, teamID string) (*models.Entity, error) {
	sprints, err := c.sprints(ctx, teamID, "active")
	if err != nil {
		return nil, err
	}
	if len(sprints) == 0 {
		return nil, nil
	}
	e := sprintEntity(sprints[0])
	return &e, nil
}

// CreateIssue creates the issue in the team project, then moves it into the
// requested sprint. It returns the browse URL of the new issue.
func (c *Client) CreateIssue(ctx context.Context, req models.CreationRequest) (string, error) {
	fields := &jira.IssueFields{
		Project:     jira.Project{Key: req.TeamID},
		Summary:     req.Title,
		Description: req.Description,
		Type:        jira.IssueType{Name: c.issueType},
	}
	if req.ProjectID != nil {
		fields.Components = []*jira.Component{{ID: *req.ProjectID}}
	}
	if req.AssigneeID != nil {
		fields.Assignee = assignee(*req.AssigneeID)
	}

	issue, resp, err := c.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("%w: failed to create JIRA ticket (status: %d): %w", models.ErrIssueCreateFailed, resp.StatusCode, err)
		}
		return "", fmt.Errorf("%w: failed to create JIRA ticket: %w", models.ErrIssueCreateFailed, err)
	}
	if issue == nil || issue.Key == "" {
		return "", models.ErrIssueCreateMalformedResponse
	}

	issueURL := c.baseURL + "/browse/" + issue.Key
	logging.Info("jira ticket created", "key", issue.Key, "url", issueURL)

	if req.CycleID != nil {
		c.moveToSprint(ctx, *req.CycleID, issue.Key)
	}
	return issueURL, nil
}

// moveToSprint is best effort; failures are logged.
func (c *Client) moveToSprint(ctx context.Context, cycleID, key string) {
	sprintID, err := strconv.Atoi(cycleID)
	if err != nil {
		logging.Warn("invalid sprint id", "sprint", cycleID, "key", key)
		return
	}
	if _, err := c.client.Sprint.MoveIssuesToSprintWithContext(ctx, sprintID, []string{key}); err != nil {
		logging.Warn("failed to move issue to sprint", "key", key, "sprint", sprintID, "error", err)
	}
}
