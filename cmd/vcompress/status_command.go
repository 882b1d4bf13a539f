package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vcompress/internal/config"
	"vcompress/internal/deps"
	"vcompress/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external binaries, encoder support and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			lines, healthy := statusLines(cmd.Context(), ctx, cfg, colorize)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if !healthy {
				return fmt.Errorf("one or more required checks failed")
			}
			return nil
		},
	}
}

func statusLines(cmdCtx context.Context, ctx *commandContext, cfg *config.Config, colorize bool) ([]string, bool) {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	healthy := true

	lines := renderSectionHeader("Configuration", colorize)
	configMsg := ctx.configPath
	configKind := statusOK
	if !ctx.configSeen {
		configMsg = fmt.Sprintf("%s (not found, using defaults)", ctx.configPath)
		configKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Config", configKind, configMsg, colorize))
	lines = append(lines, renderStatusLine("Workers", statusInfo, fmt.Sprintf("%d", cfg.Scheduler.Workers), colorize))
	lines = append(lines, renderStatusLine("Exclusive run", statusInfo, yesNo(cfg.Scheduler.ExclusiveRun), colorize))

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	statuses := preflight.CheckSystemDeps(cmdCtx, cfg)
	for _, status := range statuses {
		kind, msg := statusOK, status.Path
		if status.Available {
			if version, err := deps.Version(cmdCtx, status.Command); err == nil && version != "" {
				msg = fmt.Sprintf("%s (%s)", status.Path, version)
			}
		} else {
			kind, msg = statusError, status.Detail
			if status.Optional {
				kind = statusWarn
			} else {
				healthy = false
			}
		}
		lines = append(lines, renderStatusLine(status.Name, kind, msg, colorize))
	}

	if len(deps.Missing(statuses)) == 0 {
		enc := preflight.CheckEncoderSupport(cmdCtx, cfg)
		kind := statusOK
		if !enc.Passed {
			kind = statusError
			healthy = false
		}
		lines = append(lines, renderStatusLine(enc.Name, kind, enc.Detail, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Directories", colorize)...)
	for _, check := range []preflight.Result{
		preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		preflight.CheckDirectoryAccess("Lock directory", cfg.Paths.LockDir),
	} {
		kind := statusOK
		if !check.Passed {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	return lines, healthy
}
