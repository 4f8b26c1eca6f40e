package logging

import (
	"log/slog"

	"github.com/danielolaszy/quill/pkg/models"
)

// EventLogger writes pipeline observability events as structured log records.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger returns an EventLogger writing to l, or to the default logger when l is nil.
func NewEventLogger(l *slog.Logger) *EventLogger {
	if l == nil {
		l = GetLogger()
	}
	return &EventLogger{logger: l}
}

// Resolution records one resolution attempt. Soft misses are warnings and
// carry the names that were available.
func (e *EventLogger) Resolution(ev models.ResolutionEvent) {
	attrs := []any{
		"kind", string(ev.Kind),
		"query", ev.Query,
		"outcome", string(ev.Outcome),
	}
	if ev.ID != "" {
		attrs = append(attrs, "id", ev.ID)
	}
	if ev.Score > 0 {
		attrs = append(attrs, "score", ev.Score)
	}

	switch ev.Outcome {
	case models.OutcomeMiss:
		attrs = append(attrs, "available", ev.Candidates)
		e.logger.Warn("could not resolve name", attrs...)
	default:
		e.logger.Debug("resolution", attrs...)
	}
}

// Stage records a state transition of a submission.
func (e *EventLogger) Stage(stage models.Stage, err error) {
	if err != nil {
		e.logger.Error("submission failed",
			"stage", string(stage),
			"kind", models.KindOf(err),
			"error", err)
		return
	}
	e.logger.Debug("submission stage", "stage", string(stage))
}
