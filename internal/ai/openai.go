package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/danielolaszy/quill/internal/telemetry"
	"github.com/danielolaszy/quill/pkg/models"
)

const (
	// DefaultChatModel is the alternate service's default model.
	DefaultChatModel = "gpt-4.1-mini"
	// DefaultTemperature is the alternate services' sampling temperature.
	DefaultTemperature = 0.2
)

// ChatCompletionConfig configures a ChatCompletionGenerator.
type ChatCompletionConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	// BaseURL targets an OpenAI-compatible server. Empty means api.openai.com.
	BaseURL string
}

// ChatCompletionGenerator talks to an OpenAI-compatible chat completions endpoint.
type ChatCompletionGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewChatCompletionGenerator returns a generator for cfg.
func NewChatCompletionGenerator(cfg ChatCompletionConfig) (*ChatCompletionGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: chat completion API key is not set", models.ErrMissingCredentials)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatCompletionGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Generate sends prompt as one user message and returns the first choice.
// A response without choices yields an empty string.
func (g *ChatCompletionGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := telemetry.Tracer("ai").Start(ctx, "chat.completions.create")
	defer span.End()
	span.SetAttributes(attribute.String("quill.ai.model", g.model))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
	})
	if err != nil {
		err = chatError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func chatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w (status %d): %w", models.ErrAIRequestFailed, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w (status %d): %w", models.ErrAIRequestFailed, reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("%w: %w", models.ErrAIRequestFailed, err)
}
