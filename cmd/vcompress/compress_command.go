package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vcompress/internal/config"
	"vcompress/internal/encoding"
	"vcompress/internal/inputs"
	"vcompress/internal/job"
	"vcompress/internal/logging"
	"vcompress/internal/preflight"
	"vcompress/internal/report"
	"vcompress/internal/runlock"
	"vcompress/internal/scheduler"
)

type compressFlags struct {
	crf     int
	preset  string
	size    bool
	target  string
	both    bool
	workers int
	retries int
	plain   bool
}

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var flags compressFlags

	cmd := &cobra.Command{
		Use:   "compress <path>...",
		Short: "Encode files or directories at a fixed quality or to a target size",
		Long: `Encode every input with ffmpeg. Directories are expanded recursively using
the configured extension allow-list. Outputs are written next to each input as
<stem>_compressed.mp4 (quality mode) or <stem>_smaller.mp4 (size mode).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			modes, err := flags.modes(cmd, cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Scheduler.Workers = flags.workers
			}
			if cmd.Flags().Changed("retries") {
				cfg.Scheduler.RetryAttempts = flags.retries
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			live := !flags.plain && isTerminal(out)
			consoleLevel := ""
			if live {
				consoleLevel = "warn"
			}
			logger, err := ctx.logger(consoleLevel)
			if err != nil {
				return err
			}
			return runCompress(cmd.Context(), cfg, logger, args, modes, out, live)
		},
	}

	defaults := config.Default()
	cmd.Flags().IntVar(&flags.crf, "crf", defaults.Quality.CRF, "Constant rate factor for quality mode (0-51)")
	cmd.Flags().StringVar(&flags.preset, "preset", defaults.Quality.Preset, "x264 preset for quality mode")
	cmd.Flags().BoolVar(&flags.size, "size", false, "Encode to a target file size instead of a fixed quality")
	cmd.Flags().StringVar(&flags.target, "target", "", "Target output size for --size, e.g. 4.5MiB or 8MB")
	cmd.Flags().BoolVar(&flags.both, "both", false, "Queue every input once per mode")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", defaults.Scheduler.Workers, "Concurrent encodes")
	cmd.Flags().IntVar(&flags.retries, "retries", 0, "Retry failed encodes this many times")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "Print progress lines instead of live bars")
	return cmd
}

// modes resolves the encode modes from flags, falling back to config values
// for anything not set on the command line.
func (f compressFlags) modes(cmd *cobra.Command, cfg *config.Config) ([]job.Mode, error) {
	quality := job.Quality{CRF: cfg.Quality.CRF, Preset: cfg.Quality.Preset}
	if cmd.Flags().Changed("crf") {
		quality.CRF = f.crf
	}
	if cmd.Flags().Changed("preset") {
		quality.Preset = strings.ToLower(strings.TrimSpace(f.preset))
	}

	size := job.SizeTarget{TargetBytes: cfg.TargetBytes()}
	if target := strings.TrimSpace(f.target); target != "" {
		n, err := humanize.ParseBytes(target)
		if err != nil {
			return nil, fmt.Errorf("parse --target %q: %w", target, err)
		}
		size.TargetBytes = int64(n)
	}

	qualityFlags := cmd.Flags().Changed("crf") || cmd.Flags().Changed("preset")
	sizeFlags := f.size || cmd.Flags().Changed("target")

	var modes []job.Mode
	switch {
	case f.both:
		modes = []job.Mode{quality, size}
	case sizeFlags && qualityFlags:
		return nil, errors.New("--crf/--preset apply to quality mode; use --both to run both modes")
	case sizeFlags:
		modes = []job.Mode{size}
	default:
		modes = []job.Mode{quality}
	}
	for _, mode := range modes {
		if err := mode.Validate(); err != nil {
			return nil, err
		}
	}
	return modes, nil
}

func runCompress(ctx context.Context, cfg *config.Config, logger *slog.Logger, paths []string, modes []job.Mode, out io.Writer, live bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	found, err := inputs.Discover(cfg, paths)
	if err != nil {
		return err
	}
	if len(found.Files) == 0 {
		logSkipped(logger, found.Skipped)
		return errors.New("no video files found")
	}

	targets, collisions := inputs.Targets(cfg, found.Files, modes)
	logSkipped(logger, append(found.Skipped, collisions...))
	if len(targets) == 0 {
		return errors.New("no video files left to encode")
	}

	jobs := make([]*job.Job, 0, len(targets))
	outputs := make([]string, 0, len(targets))
	for _, target := range targets {
		jobs = append(jobs, job.New(target.Input, target.Output, target.Mode))
		outputs = append(outputs, target.Output)
	}

	if err := preflight.Err(preflight.RunAll(ctx, cfg, outputs)); err != nil {
		return err
	}

	if cfg.Scheduler.ExclusiveRun {
		lock, err := runlock.Acquire(cfg.Paths.LockDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("release run lock failed", logging.Error(err))
			}
		}()
	}

	runner := encoding.NewRunner(cfg, logger)
	sched := scheduler.New(scheduler.OptionsFromConfig(cfg), runner, logger)

	view := newProgressView(out, live, sched.Jobs)
	viewDone := make(chan struct{})
	go func() {
		defer close(viewDone)
		for ev := range sched.Events() {
			view.Handle(ev)
		}
	}()

	runErr := sched.Start(ctx)
	if runErr == nil {
		logger.Info("batch started",
			logging.Int("jobs", len(jobs)),
			logging.Int("workers", cfg.Scheduler.Workers),
		)
		for _, j := range jobs {
			if runErr = sched.Submit(j); runErr != nil {
				break
			}
		}
		sched.Wait()
	}
	if err := sched.Close(); err != nil && runErr == nil {
		runErr = err
	}
	<-viewDone
	view.Finish()
	if runErr != nil {
		return runErr
	}

	summary := report.Summarize(sched.Jobs())
	logger.Info("batch finished",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int64("saved_bytes", summary.SpaceSaved()),
	)
	fmt.Fprintln(out, renderSummary(summary, isTerminal(out)))

	if err := ctx.Err(); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Total)
	}
	return nil
}

func logSkipped(logger *slog.Logger, skipped []inputs.Skipped) {
	for _, skip := range skipped {
		logging.WarnWithContext(logger, "input skipped", "input_skipped",
			logging.String(logging.FieldInput, skip.Path),
			logging.String("reason", skip.Reason),
		)
	}
}
