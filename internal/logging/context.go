package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for transcode job identifiers.
	FieldJobID = "job_id"
	// FieldInput is the standardized structured logging key for a job's input path.
	FieldInput = "input"
	// FieldState is the standardized structured logging key for job states.
	FieldState = "state"
	// FieldMode is the standardized structured logging key for the encode mode.
	FieldMode = "mode"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step alongside a warning or error.
	FieldErrorHint = "error_hint"
	// FieldDecisionType names the choice recorded by a decision log line.
	FieldDecisionType = "decision_type"
)

type jobIDKey struct{}

// ContextWithJobID attaches a job identifier to ctx so nested calls (probe,
// encode) log with the same job_id.
func ContextWithJobID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, jobIDKey{}, id)
}

// JobIDFromContext returns the job identifier stored by ContextWithJobID.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(jobIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := JobIDFromContext(ctx); ok {
		return logger.With(String(FieldJobID, id))
	}
	return logger
}

// WithJob returns a logger tagged with a job's identifier and input path.
func WithJob(logger *slog.Logger, id, input string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldJobID, id), String(FieldInput, input))
}
