// Package draft turns free-form reporter notes into a structured issue draft
// using a generative text service.
package draft

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/internal/telemetry"
	"github.com/danielolaszy/quill/pkg/models"
)

// Generator produces free text for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor asks a Generator for a draft and parses the answer.
type Extractor struct {
	gen Generator
}

// NewExtractor returns an Extractor backed by gen.
func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract builds the prompt from reporterContext and selection, sends it and
// parses the response into a normalized draft.
func (e *Extractor) Extract(ctx context.Context, reporterContext, selection string) (models.ParsedDraft, error) {
	ctx, span := telemetry.Tracer("draft").Start(ctx, "draft.extract")
	defer span.End()

	prompt := BuildPrompt(reporterContext, selection)
	logging.Debug("requesting draft", "prompt_chars", len(prompt))

	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, models.ErrAIRequestFailed) {
			err = fmt.Errorf("%w: %w", models.ErrAIRequestFailed, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.ParsedDraft{}, err
	}

	parsed, err := ParseResponse(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparsable response")
		return models.ParsedDraft{}, err
	}

	span.SetAttributes(
		attribute.Bool("quill.draft.has_team", parsed.Team != nil),
		attribute.Bool("quill.draft.has_owner", parsed.Owner != nil),
	)
	return parsed, nil
}

// ParseResponse strips an optional code fence from raw, parses the remainder
// with the relaxed grammar and normalizes the resulting object.
func ParseResponse(raw string) (models.ParsedDraft, error) {
	cleaned := StripFence(raw)
	logging.Debug("AI raw payload", "payload", logging.Truncate(cleaned, 2000))

	v, err := ParseRelaxed(cleaned)
	if err != nil {
		logging.Debug("AI payload parse failed", "error", err)
		return models.ParsedDraft{}, unparsable(cleaned)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return models.ParsedDraft{}, unparsable(cleaned)
	}

	parsed := Normalize(obj)
	logging.Debug("AI parsed payload",
		"title", models.Value(parsed.Title),
		"owner", models.Value(parsed.Owner),
		"team", models.Value(parsed.Team),
		"cycle", models.Value(parsed.Cycle),
		"project", models.Value(parsed.Project))
	return parsed, nil
}

func unparsable(payload string) error {
	if payload == "" {
		payload = "(empty response)"
	}
	return fmt.Errorf("%w. Full payload:\n%s", models.ErrAIResponseUnparsable, payload)
}
