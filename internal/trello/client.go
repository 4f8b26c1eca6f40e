// Package trello adapts Trello to the tracker directory used by quill.
//
// Boards act as teams and lists as projects. Trello has no iteration
// concept, so there are no cycles.
package trello

import (
	"context"
	"fmt"
	"strings"

	"github.com/adlio/trello"

	"github.com/danielolaszy/quill/internal/config"
	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/pkg/models"
)

// Lists preferred for new cards when no project list is requested, in order.
var defaultListNames = []string{"To Do", "Backlog"}

// Client handles interactions with the Trello API
type Client struct {
	client *trello.Client
}

// NewClient creates a Trello client for cfg. baseURL overrides the API
// endpoint when non-empty.
func NewClient(cfg config.TrelloConfig, baseURL string) (*Client, error) {
	if err := config.ValidateTrelloConfig(&config.Config{Trello: cfg}); err != nil {
		return nil, err
	}

	client := trello.NewClient(cfg.APIKey, cfg.Token)
	if baseURL != "" {
		client.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	logging.Debug("trello client configured",
		"api_key", logging.MaskSensitive(cfg.APIKey),
		"token", logging.MaskSensitive(cfg.Token))

	return &Client{client: client}, nil
}

func directoryError(what string, err error) error {
	return fmt.Errorf("%w: failed to fetch Trello %s: %w", models.ErrDirectoryRequestFailed, what, err)
}

// ListEntities lists the member's boards (teams) or the lists of the scope
// board (projects). Cycles are always empty.
func (c *Client) ListEntities(ctx context.Context, kind models.EntityKind, scope string) ([]models.Entity, error) {
	api := c.client.WithContext(ctx)

	switch kind {
	case models.KindTeam:
		member, err := api.GetMember("me", trello.Defaults())
		if err != nil {
			return nil, directoryError("member", err)
		}
		boards, err := member.GetBoards(trello.Defaults())
		if err != nil {
			return nil, directoryError("boards", err)
		}
		entities := make([]models.Entity, 0, len(boards))
		for _, b := range boards {
			entities = append(entities, models.Entity{ID: b.ID, Name: b.Name})
		}
		return entities, nil

	case models.KindProject:
		lists, err := c.lists(api, scope)
		if err != nil {
			return nil, err
		}
		entities := make([]models.Entity, 0, len(lists))
		for _, l := range lists {
			entities = append(entities, models.Entity{ID: l.ID, Name: l.Name})
		}
		return entities, nil

	case models.KindCycle:
		return []models.Entity{}, nil
	}
	return nil, fmt.Errorf("%w: Trello has no %s collection", models.ErrDirectoryRequestFailed, kind)
}

func (c *Client) board(api *trello.Client, boardID string) (*trello.Board, error) {
	if boardID == "" {
		return nil, fmt.Errorf("%w: Trello board id is required", models.ErrDirectoryRequestFailed)
	}
	board, err := api.GetBoard(boardID, trello.Defaults())
	if err != nil {
		return nil, directoryError(fmt.Sprintf("board '%s'", boardID), err)
	}
	return board, nil
}

func (c *Client) lists(api *trello.Client, boardID string) ([]*trello.List, error) {
	board, err := c.board(api, boardID)
	if err != nil {
		return nil, err
	}
	lists, err := board.GetLists(trello.Defaults())
	if err != nil {
		return nil, directoryError(fmt.Sprintf("lists for board '%s'", board.Name), err)
	}
	return lists, nil
}

// ListUsers lists the members of the scope board.
func (c *Client) ListUsers(ctx context.Context, scope string) ([]models.User, error) {
	board, err := c.board(c.client.WithContext(ctx), scope)
	if err != nil {
		return nil, err
	}

	members, err := board.GetMembers(trello.Defaults())
	if err != nil {
		return nil, directoryError("board members", err)
	}

	users := make([]models.User, 0, len(members))
	for _, m := range members {
		users = append(users, models.User{
			ID:          m.ID,
			Name:        optional(m.Username),
			DisplayName: optional(m.FullName),
			Email:       optional(m.Email),
		})
	}
	return users, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ActiveCycle always returns nil.
func (c *Client) ActiveCycle(context.Context, string) (*models.Entity, error) {
	return nil, nil
}

// CreateIssue creates a card on the requested list or, without one, on the
// board's "To Do" or "Backlog" list, falling back to its first list.
func (c *Client) CreateIssue(ctx context.Context, req models.CreationRequest) (string, error) {
	api := c.client.WithContext(ctx)

	listID := models.Value(req.ProjectID)
	if listID == "" {
		var err error
		listID, err = c.defaultList(api, req.TeamID)
		if err != nil {
			return "", fmt.Errorf("%w: %w", models.ErrIssueCreateFailed, err)
		}
	}

	card := &trello.Card{
		Name:   req.Title,
		Desc:   req.Description,
		IDList: listID,
	}
	if req.AssigneeID != nil {
		card.IDMembers = []string{*req.AssigneeID}
	}

	if err := api.CreateCard(card, trello.Defaults()); err != nil {
		return "", fmt.Errorf("%w: failed to create Trello card: %w", models.ErrIssueCreateFailed, err)
	}

	cardURL := card.URL
	if cardURL == "" {
		cardURL = card.ShortURL
	}
	if cardURL == "" {
		return "", models.ErrIssueCreateMalformedResponse
	}

	logging.Info("trello card created", "id", card.ID, "url", cardURL)
	return cardURL, nil
}

func (c *Client) defaultList(api *trello.Client, boardID string) (string, error) {
	board, err := c.board(api, boardID)
	if err != nil {
		return "", err
	}
	lists, err := board.GetLists(trello.Defaults())
	if err != nil {
		return "", directoryError(fmt.Sprintf("lists for board '%s'", board.Name), err)
	}

	for _, name := range defaultListNames {
		for _, l := range lists {
			if strings.EqualFold(l.Name, name) {
				return l.ID, nil
			}
		}
	}
	if len(lists) > 0 {
		return lists[0].ID, nil
	}

	newList, err := board.CreateList("To Do", trello.Defaults())
	if err != nil {
		return "", fmt.Errorf("failed to create 'To Do' list: %w", err)
	}
	return newList.ID, nil
}
