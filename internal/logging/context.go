package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBundle is the standardized structured logging key for bundle names.
	FieldBundle = "bundle"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldEpisodeKey is the standardized structured logging key for episode identifiers (e.g. s1e2).
	FieldEpisodeKey = "episode_key"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType tags log lines with a machine-matchable event name.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for a failure line.
	FieldErrorHint = "error_hint"
)

type contextFieldsKey struct{}

// Fields carries the per-bundle logging context propagated through the pipeline.
type Fields struct {
	Bundle        string
	Stage         string
	EpisodeKey    string
	CorrelationID string
}

// ContextWithFields attaches pipeline fields to the context for later logger enrichment.
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, contextFieldsKey{}, fields)
}

// FieldsFromContext returns the pipeline fields stored on the context, if any.
func FieldsFromContext(ctx context.Context) (Fields, bool) {
	fields, ok := ctx.Value(contextFieldsKey{}).(Fields)
	return fields, ok
}

// WithContext enriches the logger with any pipeline fields carried by the context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields, ok := FieldsFromContext(ctx)
	if !ok {
		return logger
	}
	attrs := make([]any, 0, 4)
	if v := strings.TrimSpace(fields.Bundle); v != "" {
		attrs = append(attrs, String(FieldBundle, v))
	}
	if v := strings.TrimSpace(fields.Stage); v != "" {
		attrs = append(attrs, String(FieldStage, v))
	}
	if v := strings.TrimSpace(fields.EpisodeKey); v != "" {
		attrs = append(attrs, String(FieldEpisodeKey, v))
	}
	if v := strings.TrimSpace(fields.CorrelationID); v != "" {
		attrs = append(attrs, String(FieldCorrelationID, v))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}
