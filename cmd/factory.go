package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/danielolaszy/quill/internal/ai"
	"github.com/danielolaszy/quill/internal/config"
	"github.com/danielolaszy/quill/internal/draft"
	"github.com/danielolaszy/quill/internal/github"
	"github.com/danielolaszy/quill/internal/jira"
	"github.com/danielolaszy/quill/internal/linear"
	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/internal/resolve"
	"github.com/danielolaszy/quill/internal/trello"
	"github.com/danielolaszy/quill/pkg/models"
)

// Factories are package variables so command tests can substitute fakes.
var (
	generatorFactory = newGenerator
	directoryFactory = newDirectory
)

// newGenerator builds the generative service selected by cfg.AI.
func newGenerator(ctx context.Context, cfg *config.Config) (draft.Generator, error) {
	if err := config.ValidateAIConfig(cfg); err != nil {
		return nil, err
	}

	var gen draft.Generator
	switch {
	case cfg.AI.UsePrimary:
		g, err := ai.NewAnthropicGenerator(ai.AnthropicConfig{
			APIKey:     cfg.AI.AnthropicKey,
			Model:      cfg.AI.AnthropicModel,
			Creativity: cfg.AI.Creativity,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	case cfg.AI.Alternate == config.AlternateGemini:
		g, err := ai.NewGeminiGenerator(ctx, ai.GeminiConfig{
			APIKey:      cfg.AI.AlternateKey,
			Model:       cfg.AI.Model,
			Temperature: float32(cfg.AI.Temperature),
			BaseURL:     cfg.AI.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		g, err := ai.NewChatCompletionGenerator(ai.ChatCompletionConfig{
			APIKey:      cfg.AI.AlternateKey,
			Model:       cfg.AI.Model,
			Temperature: float32(cfg.AI.Temperature),
			BaseURL:     cfg.AI.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	}

	logging.Debug("generator selected",
		"primary", cfg.AI.UsePrimary,
		"alternate", cfg.AI.Alternate,
		"timeout", cfg.AI.Timeout)
	return withTimeout(gen, cfg.AI.Timeout), nil
}

// newDirectory builds the tracker backend selected by cfg.Tracker.
func newDirectory(ctx context.Context, cfg *config.Config) (resolve.Directory, error) {
	if err := config.ValidateTrackerConfig(cfg); err != nil {
		return nil, err
	}

	var (
		dir resolve.Directory
		err error
	)
	switch cfg.Tracker.Backend {
	case config.BackendJira:
		dir, err = jiraDirectory(cfg)
	case config.BackendGitHub:
		dir, err = githubDirectory(ctx, cfg)
	case config.BackendTrello:
		dir, err = trelloDirectory(cfg)
	case config.BackendLinear:
		var opts []linear.Option
		if cfg.Linear.Endpoint != "" {
			opts = append(opts, linear.WithEndpoint(cfg.Linear.Endpoint))
		}
		dir = linear.NewClient(cfg.Linear.APIKey, opts...)
	default:
		err = fmt.Errorf("unsupported tracker %q", cfg.Tracker.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.Tracker.Backend, err)
	}

	logging.Debug("tracker selected", "backend", cfg.Tracker.Backend, "timeout", cfg.Tracker.Timeout)
	if cfg.Tracker.Timeout > 0 {
		dir = &timeoutDirectory{dir: dir, timeout: cfg.Tracker.Timeout}
	}
	return dir, nil
}

func jiraDirectory(cfg *config.Config) (resolve.Directory, error) {
	client, err := jira.NewClient(cfg.Jira, nil)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func githubDirectory(ctx context.Context, cfg *config.Config) (resolve.Directory, error) {
	client, err := github.NewClient(ctx, cfg.GitHub, "")
	if err != nil {
		return nil, err
	}
	return client, nil
}

func trelloDirectory(cfg *config.Config) (resolve.Directory, error) {
	client, err := trello.NewClient(cfg.Trello, "")
	if err != nil {
		return nil, err
	}
	return client, nil
}

// timeoutGenerator bounds every Generate call.
type timeoutGenerator struct {
	gen     draft.Generator
	timeout time.Duration
}

func withTimeout(gen draft.Generator, d time.Duration) draft.Generator {
	if d <= 0 {
		return gen
	}
	return &timeoutGenerator{gen: gen, timeout: d}
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.gen.Generate(ctx, prompt)
}

// timeoutDirectory bounds every tracker call.
type timeoutDirectory struct {
	dir     resolve.Directory
	timeout time.Duration
}

func (d *timeoutDirectory) ListEntities(ctx context.Context, kind models.EntityKind, scope string) ([]models.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.dir.ListEntities(ctx, kind, scope)
}

func (d *timeoutDirectory) ListUsers(ctx context.Context, scope string) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.dir.ListUsers(ctx, scope)
}

func (d *timeoutDirectory) ActiveCycle(ctx context.Context, teamID string) (*models.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.dir.ActiveCycle(ctx, teamID)
}

func (d *timeoutDirectory) CreateIssue(ctx context.Context, req models.CreationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.dir.CreateIssue(ctx, req)
}
