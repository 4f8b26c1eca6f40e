package trello

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/quill/internal/config"
	"github.com/danielolaszy/quill/pkg/models"
)

type fakeTrello struct {
	mu          sync.Mutex
	lists       []map[string]any
	cardList    string
	cardMembers string
	createdList string
	key         string
}

func (f *fakeTrello) handler(t *testing.T) http.Handler {
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/members/me", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.key = r.URL.Query().Get("key")
		f.mu.Unlock()
		write(w, map[string]any{"id": "m1", "username": "me"})
	})
	mux.HandleFunc("/members/m1/boards", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{{"id": "b1", "name": "Mobile"}, {"id": "b2", "name": "Web"}})
	})
	mux.HandleFunc("/boards/b1", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"id": "b1", "name": "Mobile"})
	})
	mux.HandleFunc("/boards/b1/lists", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		write(w, f.lists)
	})
	mux.HandleFunc("/boards/b1/members", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{
			{"id": "u1", "username": "yansoul", "fullName": "Yan Soul"},
			{"id": "u2", "username": "alice"},
		})
	})
	mux.HandleFunc("/lists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		f.mu.Lock()
		f.createdList = r.URL.Query().Get("name")
		f.mu.Unlock()
		write(w, map[string]any{"id": "l-new", "name": "To Do"})
	})
	mux.HandleFunc("/cards", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		q := r.URL.Query()
		f.mu.Lock()
		f.cardList = q.Get("idList")
		f.cardMembers = q.Get("idMembers")
		f.mu.Unlock()
		write(w, map[string]any{"id": "c1", "url": "https://trello.com/c/abc/1-fix-crash"})
	})
	return mux
}

func newTestClient(t *testing.T, lists []map[string]any) (*Client, *fakeTrello) {
	t.Helper()
	fake := &fakeTrello{lists: lists}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client, err := NewClient(config.TrelloConfig{APIKey: "key-1", Token: "tok-1"}, server.URL)
	require.NoError(t, err)
	return client, fake
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(config.TrelloConfig{APIKey: "key-1"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingCredentials))
	assert.Contains(t, err.Error(), "TRELLO_TOKEN")
}

func TestListEntities(t *testing.T) {
	client, fake := newTestClient(t, []map[string]any{
		{"id": "l1", "name": "Backlog"},
		{"id": "l2", "name": "Doing"},
	})
	ctx := context.Background()

	boards, err := client.ListEntities(ctx, models.KindTeam, "")
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{{ID: "b1", Name: "Mobile"}, {ID: "b2", Name: "Web"}}, boards)
	assert.Equal(t, "key-1", fake.key)

	lists, err := client.ListEntities(ctx, models.KindProject, "b1")
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{{ID: "l1", Name: "Backlog"}, {ID: "l2", Name: "Doing"}}, lists)

	cycles, err := client.ListEntities(ctx, models.KindCycle, "b1")
	require.NoError(t, err)
	assert.Empty(t, cycles)

	_, err = client.ListEntities(ctx, models.KindProject, "")
	assert.True(t, errors.Is(err, models.ErrDirectoryRequestFailed))

	_, err = client.ListEntities(ctx, models.KindProject, "missing")
	assert.True(t, errors.Is(err, models.ErrDirectoryRequestFailed))
}

func TestListUsers(t *testing.T) {
	client, _ := newTestClient(t, nil)

	users, err := client.ListUsers(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "yansoul", models.Value(users[0].Name))
	assert.Equal(t, "Yan Soul", models.Value(users[0].DisplayName))
	assert.Nil(t, users[1].DisplayName)
}

func TestActiveCycle(t *testing.T) {
	client, _ := newTestClient(t, nil)

	active, err := client.ActiveCycle(context.Background(), "b1")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestCreateIssueListSelection(t *testing.T) {
	testCases := []struct {
		name        string
		lists       []map[string]any
		projectID   *string
		wantList    string
		wantCreated string
	}{
		{
			name:      "Requested list",
			lists:     []map[string]any{{"id": "l1", "name": "To Do"}},
			projectID: models.String("l9"),
			wantList:  "l9",
		},
		{
			name:     "To Do preferred over Backlog",
			lists:    []map[string]any{{"id": "l1", "name": "Backlog"}, {"id": "l2", "name": "to do"}},
			wantList: "l2",
		},
		{
			name:     "Backlog when no To Do",
			lists:    []map[string]any{{"id": "l1", "name": "Doing"}, {"id": "l2", "name": "Backlog"}},
			wantList: "l2",
		},
		{
			name:     "First list otherwise",
			lists:    []map[string]any{{"id": "l1", "name": "Doing"}, {"id": "l2", "name": "Done"}},
			wantList: "l1",
		},
		{
			name:        "Creates To Do on an empty board",
			lists:       []map[string]any{},
			wantList:    "l-new",
			wantCreated: "To Do",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, fake := newTestClient(t, tc.lists)

			url, err := client.CreateIssue(context.Background(), models.CreationRequest{
				Title:       "Fix crash",
				Description: "Steps...",
				TeamID:      "b1",
				ProjectID:   tc.projectID,
				AssigneeID:  models.String("u1"),
			})
			require.NoError(t, err)
			assert.Equal(t, "https://trello.com/c/abc/1-fix-crash", url)

			fake.mu.Lock()
			defer fake.mu.Unlock()
			assert.Equal(t, tc.wantList, fake.cardList)
			assert.Equal(t, "u1", fake.cardMembers)
			assert.Equal(t, tc.wantCreated, fake.createdList)
		})
	}
}

func TestCreateIssueFailure(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.CreateIssue(context.Background(), models.CreationRequest{TeamID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrIssueCreateFailed))
}
