package logging

import (
	"context"
	"log/slog"
)

// FieldRunID tags every record emitted by one command invocation.
const FieldRunID = "run_id"

type runIDHandler struct {
	next  slog.Handler
	runID string
}

func newRunIDHandler(next slog.Handler, runID string) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &runIDHandler{next: next, runID: runID}
}

func (h *runIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *runIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldRunID, h.runID))
	return h.next.Handle(ctx, record)
}

func (h *runIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runIDHandler{next: h.next.WithAttrs(attrs), runID: h.runID}
}

func (h *runIDHandler) WithGroup(name string) slog.Handler {
	return &runIDHandler{next: h.next.WithGroup(name), runID: h.runID}
}
