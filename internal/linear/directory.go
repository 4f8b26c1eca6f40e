package linear

import (
	"context"
	"fmt"

	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/pkg/models"
)

const listLimit = 250

const usersQuery = `query {
  users(first: 100) {
    nodes { id name displayName email }
  }
}`

var teamCyclesQuery = fmt.Sprintf(`query($id: String!) {
  team(id: $id) {
    cycles(first: %d) {
      nodes { id name }
    }
  }
}`, listLimit)

const activeCycleQuery = `query($id: String!) {
  team(id: $id) {
    activeCycle { id name }
  }
}`

const issueCreateMutation = `mutation($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue { id title url }
  }
}`

type node struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

func (n node) entity() models.Entity {
	return models.Entity{ID: n.ID, Name: models.Value(n.Name)}
}

type connection struct {
	Nodes []node `json:"nodes"`
}

func listQuery(kind models.EntityKind) string {
	return fmt.Sprintf("query {\n  %s(first: %d) {\n    nodes { id name }\n  }\n}", kind, listLimit)
}

// ListEntities lists teams, projects or cycles. Teams and projects are
// workspace wide. Cycles are listed for the scope team when one is given.
func (c *Client) ListEntities(ctx context.Context, kind models.EntityKind, scope string) ([]models.Entity, error) {
	switch kind {
	case models.KindTeam, models.KindProject, models.KindCycle:
	default:
		return nil, fmt.Errorf("%w: linear has no %s collection", models.ErrDirectoryRequestFailed, kind)
	}

	var nodes []node
	if kind == models.KindCycle && scope != "" {
		var data struct {
			Team *struct {
				Cycles connection `json:"cycles"`
			} `json:"team"`
		}
		if err := c.Do(ctx, teamCyclesQuery, map[string]any{"id": scope}, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
		}
		if data.Team != nil {
			nodes = data.Team.Cycles.Nodes
		}
	} else {
		var data map[string]connection
		if err := c.Do(ctx, listQuery(kind), nil, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
		}
		nodes = data[string(kind)].Nodes
	}

	entities := make([]models.Entity, 0, len(nodes))
	for _, n := range nodes {
		entities = append(entities, n.entity())
	}
	logging.Debug("linear listing", "kind", string(kind), "scope", scope, "count", len(entities))
	return entities, nil
}

// ListUsers lists up to 100 workspace users.
func (c *Client) ListUsers(ctx context.Context, _ string) ([]models.User, error) {
	var data struct {
		Users struct {
			Nodes []models.User `json:"nodes"`
		} `json:"users"`
	}
	if err := c.Do(ctx, usersQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
	}

	logging.Debug("linear listing", "kind", string(models.KindUser), "count", len(data.Users.Nodes))
	return data.Users.Nodes, nil
}

// ActiveCycle returns the team's active cycle, or nil when it has none.
func (c *Client) ActiveCycle(ctx context.Context, teamID string) (*models.Entity, error) {
	var data struct {
		Team *struct {
			ActiveCycle *node `json:"activeCycle"`
		} `json:"team"`
	}
	if err := c.Do(ctx, activeCycleQuery, map[string]any{"id": teamID}, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDirectoryRequestFailed, err)
	}

	if data.Team == nil || data.Team.ActiveCycle == nil {
		return nil, nil
	}
	e := data.Team.ActiveCycle.entity()
	return &e, nil
}

// CreateIssue runs the issueCreate mutation and returns the issue URL.
func (c *Client) CreateIssue(ctx context.Context, req models.CreationRequest) (string, error) {
	var data struct {
		IssueCreate *struct {
			Issue *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.Do(ctx, issueCreateMutation, map[string]any{"input": req}, &data); err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrIssueCreateFailed, err)
	}

	if data.IssueCreate == nil || data.IssueCreate.Issue == nil || data.IssueCreate.Issue.URL == "" {
		return "", models.ErrIssueCreateMalformedResponse
	}

	logging.Info("linear issue created", "id", data.IssueCreate.Issue.ID, "url", data.IssueCreate.Issue.URL)
	return data.IssueCreate.Issue.URL, nil
}
