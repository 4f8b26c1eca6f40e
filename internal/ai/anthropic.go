// Package ai provides the generative text services that draft issues.
//
// Every generator returns errors wrapping models.ErrAIRequestFailed, with the
// HTTP status in the message when the service reported one.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/danielolaszy/quill/internal/telemetry"
	"github.com/danielolaszy/quill/pkg/models"
)

const (
	// DefaultAnthropicModel is used when no model is configured.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	// DefaultCreativity is the sampling temperature of the primary service.
	DefaultCreativity = 0.3

	maxDraftTokens = 2048
)

// AnthropicConfig configures an AnthropicGenerator.
type AnthropicConfig struct {
	APIKey     string
	Model      string
	Creativity float64
	// BaseURL overrides the API endpoint. Empty means the SDK default.
	BaseURL string
}

// AnthropicGenerator is the primary generator, backed by the Messages API.
type AnthropicGenerator struct {
	client     anthropic.Client
	model      anthropic.Model
	creativity float64
}

// NewAnthropicGenerator returns a generator for cfg. An empty API key is a
// missing-credentials error.
func NewAnthropicGenerator(cfg AnthropicConfig) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", models.ErrMissingCredentials)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicGenerator{
		client:     anthropic.NewClient(opts...),
		model:      anthropic.Model(cfg.Model),
		creativity: cfg.Creativity,
	}, nil
}

// Generate sends prompt as a single user message and returns the first text block.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := telemetry.Tracer("ai").Start(ctx, "anthropic.messages.new")
	defer span.End()
	span.SetAttributes(attribute.String("quill.ai.model", string(g.model)))

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: maxDraftTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(g.creativity),
	})
	if err != nil {
		err = anthropicError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(
		attribute.Int64("quill.ai.input_tokens", message.Usage.InputTokens),
		attribute.Int64("quill.ai.output_tokens", message.Usage.OutputTokens),
	)

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w (status %d): %w", models.ErrAIRequestFailed, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: %w", models.ErrAIRequestFailed, err)
}
