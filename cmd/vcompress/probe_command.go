package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"vcompress/internal/config"
	"vcompress/internal/inputs"
	"vcompress/internal/media/ffprobe"
	"vcompress/internal/report"
)

type probeRow struct {
	Path     string  `json:"path"`
	Codec    string  `json:"codec,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	BitRate  int64   `json:"bit_rate,omitempty"`
	Duration float64 `json:"duration_seconds"`
	Size     int64   `json:"size_bytes"`
	Error    string  `json:"error,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <path>...",
		Short: "Show codec, resolution, bitrate, duration and size of inputs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			found, err := inputs.Discover(cfg, args)
			if err != nil {
				return err
			}
			for _, skipped := range found.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %s\n", skipped.Path, skipped.Reason)
			}
			if len(found.Files) == 0 {
				return fmt.Errorf("no video files found")
			}

			rows, err := probeAll(cmd.Context(), cfg, found.Files)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, rows)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProbeTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit results as JSON")
	return cmd
}

// probeAll probes files with at most probe_concurrency ffprobe pairs in
// flight. Per-file failures are recorded in the row, not returned.
func probeAll(ctx context.Context, cfg *config.Config, files []string) ([]probeRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	prober := ffprobe.New(cfg.Encoder.FFprobeBinary)
	rows := make([]probeRow, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Scheduler.ProbeConcurrency, 1))
	for i, path := range files {
		g.Go(func() error {
			row := probeRow{Path: path}
			if info, err := os.Stat(path); err == nil {
				row.Size = info.Size()
			}
			media, err := prober.Probe(gctx, path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				row.Error = err.Error()
			} else {
				row.Codec = media.Codec
				row.Width = media.Width
				row.Height = media.Height
				row.BitRate = media.BitRate
				row.Duration = media.Duration
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func renderProbeTable(rows []probeRow) string {
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		if row.Error != "" {
			table = append(table, []string{
				report.Truncate(filepath.Base(row.Path), messageWidth),
				"error", "-", "-", "-", report.FormatBytes(row.Size),
			})
			continue
		}
		table = append(table, []string{
			report.Truncate(filepath.Base(row.Path), messageWidth),
			row.Codec,
			fmt.Sprintf("%dx%d", row.Width, row.Height),
			report.FormatBitrate(row.BitRate),
			report.FormatDuration(row.Duration),
			report.FormatBytes(row.Size),
		})
	}
	return renderTable("",
		[]string{"File", "Codec", "Resolution", "Bitrate", "Duration", "Size"},
		table,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
