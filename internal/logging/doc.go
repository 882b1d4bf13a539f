// Package logging assembles structured slog loggers and formatting helpers used
// across vcompress.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so probe and encode code can tag
// log lines with the job they belong to. The package also provides a no-op
// logger for tests and a progress sampler that keeps per-job progress lines
// readable when several workers report at once.
package logging
