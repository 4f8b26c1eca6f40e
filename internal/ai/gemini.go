package ai

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/danielolaszy/quill/internal/telemetry"
	"github.com/danielolaszy/quill/pkg/models"
)

// DefaultGeminiModel is used when no model is configured for the Gemini service.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures a GeminiGenerator.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	BaseURL     string
}

// GeminiGenerator generates drafts with the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator returns a generator for cfg.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is not set", models.ErrMissingCredentials)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := telemetry.Tracer("ai").Start(ctx, "gemini.generate_content")
	defer span.End()
	span.SetAttributes(attribute.String("quill.ai.model", g.model))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", models.ErrAIRequestFailed, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return resp.Text(), nil
}
