package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/quill/internal/config"
	"github.com/danielolaszy/quill/pkg/models"
)

func TestAPIURL(t *testing.T) {
	testCases := []struct {
		name           string
		domain         string
		expectedAPIURL string
	}{
		{
			name:           "Default GitHub.com",
			domain:         "github.com",
			expectedAPIURL: "https://api.github.com/",
		},
		{
			name:           "GitHub Enterprise",
			domain:         "github.example.com",
			expectedAPIURL: "https://github.example.com/api/v3/",
		},
		{
			name:           "Empty Domain (should default to github.com)",
			domain:         "",
			expectedAPIURL: "https://api.github.com/",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiURL := APIURL(tc.domain)
			assert.Equal(t, tc.expectedAPIURL, apiURL)

			_, err := url.Parse(apiURL)
			assert.NoError(t, err)
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(context.Background(), config.GitHubConfig{Owner: "acme"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingCredentials))
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestSplitRepository(t *testing.T) {
	owner, repo, err := splitRepository("acme/api")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "api", repo)

	for _, bad := range []string{"", "acme", "acme/", "/api", "a/b/c"} {
		_, _, err := splitRepository(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

type fakeGitHub struct {
	mu      sync.Mutex
	created map[string]any
	auth    string
}

func newTestClient(t *testing.T, milestones []map[string]any) (*Client, *fakeGitHub) {
	t.Helper()
	fake := &fakeGitHub{}
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.auth = r.Header.Get("Authorization")
		fake.mu.Unlock()
		write(w, []map[string]any{
			{"name": "api", "full_name": "acme/api", "owner": map[string]any{"login": "acme"}},
			{"name": "dotfiles", "full_name": "someone/dotfiles", "owner": map[string]any{"login": "someone"}},
			{"name": "web", "full_name": "acme/web", "owner": map[string]any{"login": "Acme"}},
		})
	})
	mux.HandleFunc("/repos/acme/api/labels", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{{"name": "bug"}, {"name": "Payments"}})
	})
	mux.HandleFunc("/repos/acme/api/milestones", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		write(w, milestones)
	})
	mux.HandleFunc("/repos/acme/api/assignees", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{{"login": "yansoul", "name": "Yan Soul"}, {"login": "alice"}})
	})
	mux.HandleFunc("/repos/acme/api/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fake.mu.Lock()
		fake.created = body
		fake.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		write(w, map[string]any{"number": 17, "html_url": "https://github.com/acme/api/issues/17"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), config.GitHubConfig{Token: "ghp_test", Owner: "acme"}, server.URL)
	require.NoError(t, err)
	return client, fake
}

func TestListEntities(t *testing.T) {
	client, fake := newTestClient(t, []map[string]any{
		{"number": 3, "title": "v1.2"},
		{"number": 4, "title": "v1.3"},
	})
	ctx := context.Background()

	repos, err := client.ListEntities(ctx, models.KindTeam, "")
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{{ID: "acme/api", Name: "api"}, {ID: "acme/web", Name: "web"}}, repos)
	assert.Equal(t, "Bearer ghp_test", fake.auth)

	labels, err := client.ListEntities(ctx, models.KindProject, "acme/api")
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{{ID: "bug", Name: "bug"}, {ID: "Payments", Name: "Payments"}}, labels)

	milestones, err := client.ListEntities(ctx, models.KindCycle, "acme/api")
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{{ID: "3", Name: "v1.2"}, {ID: "4", Name: "v1.3"}}, milestones)

	_, err = client.ListEntities(ctx, models.KindProject, "not-a-repo")
	assert.True(t, errors.Is(err, models.ErrDirectoryRequestFailed))
}

func TestListUsers(t *testing.T) {
	client, _ := newTestClient(t, nil)

	users, err := client.ListUsers(context.Background(), "acme/api")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "yansoul", users[0].ID)
	assert.Equal(t, "Yan Soul", models.Value(users[0].Name))
	assert.Equal(t, "yansoul", models.Value(users[0].DisplayName))
	assert.Nil(t, users[1].Name)
}

func TestListingsFollowPages(t *testing.T) {
	paged := func(first, second []map[string]any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("page") == "2" {
				_ = json.NewEncoder(w).Encode(second)
				return
			}
			next := *r.URL
			next.Scheme = "http"
			next.Host = r.Host
			q := next.Query()
			q.Set("page", "2")
			next.RawQuery = q.Encode()
			w.Header().Set("Link", `<`+next.String()+`>; rel="next"`)
			_ = json.NewEncoder(w).Encode(first)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/labels", paged(
		[]map[string]any{{"name": "bug"}},
		[]map[string]any{{"name": "Payments"}},
	))
	mux.HandleFunc("/repos/acme/api/milestones", paged(
		[]map[string]any{{"number": 3, "title": "v1.2"}},
		[]map[string]any{{"number": 4, "title": "v1.3"}},
	))
	mux.HandleFunc("/repos/acme/api/assignees", paged(
		[]map[string]any{{"login": "yansoul"}},
		[]map[string]any{{"login": "alice"}},
	))
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(context.Background(), config.GitHubConfig{Token: "ghp_test", Owner: "acme"}, server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	labels, err := client.ListEntities(ctx, models.KindProject, "acme/api")
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{{ID: "bug", Name: "bug"}, {ID: "Payments", Name: "Payments"}}, labels)

	milestones, err := client.ListEntities(ctx, models.KindCycle, "acme/api")
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{{ID: "3", Name: "v1.2"}, {ID: "4", Name: "v1.3"}}, milestones)

	users, err := client.ListUsers(ctx, "acme/api")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "yansoul", users[0].ID)
	assert.Equal(t, "alice", users[1].ID)
}

func TestActiveCycle(t *testing.T) {
	testCases := []struct {
		name       string
		milestones []map[string]any
		want       *models.Entity
	}{
		{
			name: "Nearest due date",
			milestones: []map[string]any{
				{"number": 5, "title": "later", "due_on": "2026-12-01T00:00:00Z"},
				{"number": 4, "title": "sooner", "due_on": "2026-11-01T00:00:00Z"},
				{"number": 3, "title": "undated"},
			},
			want: &models.Entity{ID: "4", Name: "sooner"},
		},
		{
			name:       "Single undated milestone",
			milestones: []map[string]any{{"number": 1, "title": "backlog"}},
			want:       &models.Entity{ID: "1", Name: "backlog"},
		},
		{
			name:       "Several undated milestones",
			milestones: []map[string]any{{"number": 1, "title": "a"}, {"number": 2, "title": "b"}},
			want:       nil,
		},
		{
			name:       "No milestones",
			milestones: []map[string]any{},
			want:       nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, tc.milestones)
			got, err := client.ActiveCycle(context.Background(), "acme/api")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCreateIssue(t *testing.T) {
	client, fake := newTestClient(t, nil)

	url, err := client.CreateIssue(context.Background(), models.CreationRequest{
		Title:       "Fix crash",
		Description: "Steps...",
		TeamID:      "acme/api",
		ProjectID:   models.String("bug"),
		CycleID:     models.String("4"),
		AssigneeID:  models.String("yansoul"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/api/issues/17", url)

	assert.Equal(t, "Fix crash", fake.created["title"])
	assert.Equal(t, "Steps...", fake.created["body"])
	assert.Equal(t, []any{"bug"}, fake.created["labels"])
	assert.Equal(t, "yansoul", fake.created["assignee"])
	assert.Equal(t, 4.0, fake.created["milestone"])
}

func TestCreateIssueFailures(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.CreateIssue(context.Background(), models.CreationRequest{TeamID: "acme/missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrIssueCreateFailed))
	assert.Contains(t, err.Error(), "404")

	_, err = client.CreateIssue(context.Background(), models.CreationRequest{TeamID: "acme/api", CycleID: models.String("sprint")})
	assert.True(t, errors.Is(err, models.ErrIssueCreateFailed))
}
