package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/dustin/go-humanize"

	"vcompress/internal/config"
	"vcompress/internal/job"
	"vcompress/internal/logging"
	"vcompress/internal/media/ffprobe"
)

// EncodeError describes a failed ffmpeg run. It matches job.ErrEncode and,
// when the run was interrupted, the context error.
type EncodeError struct {
	Output   string
	ExitCode int
	Tail     []string
	Err      error
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("ffmpeg %s", e.Output)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{job.ErrEncode}
	}
	return []error{job.ErrEncode, e.Err}
}

// Diagnostic returns the captured stderr tail, or a short reason when
// ffmpeg produced none.
func (e *EncodeError) Diagnostic() string {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return "canceled"
	}
	if len(e.Tail) > 0 {
		return strings.Join(e.Tail, "\n")
	}
	return e.Error()
}

// Runner probes, plans and encodes jobs with external ffmpeg/ffprobe.
type Runner struct {
	cfg    *config.Config
	prober *ffprobe.Prober
	logger *slog.Logger
}

// NewRunner constructs a Runner using the binaries from cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		prober: ffprobe.New(cfg.Encoder.FFprobeBinary),
		logger: logging.NewComponentLogger(logger, "encoder"),
	}
}

// Prepare probes the input and fixes the job's encode parameters.
func (r *Runner) Prepare(ctx context.Context, j *job.Job) error {
	logger := logging.WithJob(r.logger, j.ID, j.Input)

	media, err := r.prober.Probe(ctx, j.Input)
	if err != nil {
		return err
	}
	logger.Debug("input probed",
		logging.Float64("duration_seconds", media.Duration),
		logging.String("resolution", media.Resolution()),
		logging.String("codec", media.Codec),
		logging.Int64("bit_rate", media.BitRate),
	)

	params, err := Plan(r.cfg, j.Mode, media, logger)
	if err != nil {
		return err
	}
	return j.Prepare(media, params)
}

// Encode runs ffmpeg for a prepared, running job and returns the output size.
// progress receives completion fractions in [0, 1]; clips at or below the
// short-clip threshold report nothing and rely on completion to reach 1.
func (r *Runner) Encode(ctx context.Context, j *job.Job, progress func(float64)) (int64, error) {
	logger := logging.WithJob(r.logger, j.ID, j.Input)
	media := j.Media()
	params := j.Params()
	streaming := media.Duration > r.cfg.Scheduler.ShortClipSeconds

	args := BuildArgs(r.cfg.Encoder, j.Input, j.Output, j.Mode, params, streaming)
	logger.Debug("ffmpeg starting",
		logging.String(logging.FieldMode, j.Mode.Name()),
		logging.Bool("streaming_progress", streaming),
		logging.String("command", r.cfg.Encoder.FFmpegBinary+" "+strings.Join(args, " ")),
	)

	tail := newTailWriter(r.cfg.Scheduler.StderrTailLines)
	cmd := exec.CommandContext(ctx, r.cfg.Encoder.FFmpegBinary, args...)
	cmd.Stderr = tail

	var stdout io.ReadCloser
	if streaming {
		var err error
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return 0, &EncodeError{Output: j.Output, Err: err}
		}
	}
	if err := cmd.Start(); err != nil {
		return 0, &EncodeError{Output: j.Output, Err: err}
	}

	if streaming {
		sampler := logging.NewProgressSampler(0.1)
		relayErr := RelayProgress(stdout, func(seconds float64) {
			fraction := min(seconds/media.Duration, 1)
			if progress != nil {
				progress(fraction)
			}
			if sampler.ShouldLog(fraction, "running") {
				logger.Debug("encode progress", logging.Float64("percent", fraction*100))
			}
		})
		if relayErr != nil {
			logger.Debug("progress stream unreadable", logging.Error(relayErr))
		}
		// ffmpeg may keep writing after progress=end; never let it block on a full pipe.
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		encErr := &EncodeError{Output: j.Output, Tail: tail.Lines(), Err: err}
		if ctxErr := ctx.Err(); ctxErr != nil {
			encErr.Err = ctxErr
		} else {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				encErr.ExitCode = exitErr.ExitCode()
			}
		}
		return 0, encErr
	}

	info, err := os.Stat(j.Output)
	if err != nil {
		return 0, &EncodeError{Output: j.Output, Tail: tail.Lines(), Err: fmt.Errorf("stat output: %w", err)}
	}

	attrs := []logging.Attr{
		logging.String("output", j.Output),
		logging.Int64("output_bytes", info.Size()),
	}
	if target, ok := j.Mode.(job.SizeTarget); ok {
		attrs = append(attrs,
			logging.String("output_size", fmt.Sprintf("%.2f MB", float64(info.Size())/(1024*1024))),
			logging.String("target", humanize.IBytes(uint64(target.TargetBytes))),
		)
	}
	logger.Info("encode finished", logging.Args(attrs...)...)
	r.validateOutput(ctx, j, info.Size(), logger)
	return info.Size(), nil
}
