package preflight

import (
	"context"
	"fmt"
	"strings"

	"vcompress/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a compress run depends on: binaries, the log
// directory, and the directories outputs will be written to.
func RunAll(ctx context.Context, cfg *config.Config, outputs []string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, status := range CheckSystemDeps(ctx, cfg) {
		r := Result{Name: status.Name, Passed: status.Available || status.Optional}
		if status.Available {
			r.Detail = status.Path
		} else {
			r.Detail = status.Detail
		}
		results = append(results, r)
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	results = append(results, CheckOutputDirs(outputs)...)
	return results
}

// Failed returns the failing results.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Err folds failing results into a single error, or nil when all passed.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}
