package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"

	"vcompress/internal/job"
	"vcompress/internal/logging"
)

// durationTolerance is the largest input/output duration gap, in seconds,
// accepted without a warning.
const durationTolerance = 1.0

// validateOutput inspects a finished encode. Findings are logged only; the
// output is already on disk and the job still completes.
func (r *Runner) validateOutput(ctx context.Context, j *job.Job, size int64, logger *slog.Logger) {
	if target, ok := j.Mode.(job.SizeTarget); ok {
		result, reason := "within_target", fmt.Sprintf("%s of %s", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(target.TargetBytes)))
		if size > target.TargetBytes {
			result = "over_target"
		}
		logger.Info("size target decision",
			logging.String(logging.FieldDecisionType, "size_target_result"),
			logging.String("decision_result", result),
			logging.String("decision_reason", reason),
		)
		if size > target.TargetBytes {
			logging.WarnWithContext(logger, "output exceeds size target", "size_target_overshoot",
				logging.Int64("output_bytes", size),
				logging.Int64("target_bytes", target.TargetBytes),
				logging.String(logging.FieldErrorHint, "lower size_target.target_mb or raise min_bits_per_pixel"),
			)
		}
	}

	expected := j.Media().Duration
	if expected <= 0 {
		return
	}
	got, err := r.prober.Duration(ctx, j.Output)
	if err != nil {
		logging.WarnWithContext(logger, "output probe failed", "output_probe_failed",
			logging.String("output", j.Output),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "encoded file may be truncated or corrupt"),
		)
		return
	}
	if math.Abs(got-expected) > durationTolerance {
		logging.WarnWithContext(logger, "output duration deviates from input", "output_duration_mismatch",
			logging.Float64("input_seconds", expected),
			logging.Float64("output_seconds", got),
			logging.String(logging.FieldErrorHint, "inspect the output; ffmpeg may have stopped early"),
		)
	}
}
