package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"vcompress/internal/logging"
	"vcompress/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var raw bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the run log, optionally narrowed to a job or run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reader := &logs.Reader{Path: filepath.Join(cfg.Paths.LogDir, logging.LogFileName)}
			out := cmd.OutOrStdout()
			emit := func(line string) { printLogLine(out, line, filter, raw) }

			// Read everything when filtering so -n counts matching lines.
			readLimit := lines
			if filter != (logs.Filter{}) {
				readLimit = 1 << 20
			}
			recent, offset, err := reader.Last(readLimit)
			if err != nil {
				return err
			}
			recent = lastMatching(recent, filter, lines)
			for _, line := range recent {
				emit(line)
			}

			if !follow {
				return nil
			}
			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			return reader.Follow(runCtx, offset, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON lines as written")
	cmd.Flags().StringVar(&filter.JobID, "job", "", "Only lines for this job ID (prefix match)")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only lines for this run ID (prefix match)")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level to show (debug, info, warn, error)")
	return cmd
}

func lastMatching(lines []string, filter logs.Filter, limit int) []string {
	var kept []string
	for _, line := range lines {
		if entry, ok := logs.ParseEntry(line); ok && !filter.Match(entry) {
			continue
		}
		kept = append(kept, line)
	}
	if limit > 0 && len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return kept
}

func printLogLine(w io.Writer, line string, filter logs.Filter, raw bool) {
	entry, ok := logs.ParseEntry(line)
	if !ok {
		if filter == (logs.Filter{}) {
			fmt.Fprintln(w, line)
		}
		return
	}
	if !filter.Match(entry) {
		return
	}
	if raw {
		fmt.Fprintln(w, line)
		return
	}
	fmt.Fprintln(w, entry.Format())
}
