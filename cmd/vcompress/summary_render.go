package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"vcompress/internal/report"
)

func renderSummary(sum report.Summary, colorize bool) string {
	rows := [][]string{
		{"Jobs", fmt.Sprintf("%d", sum.Total)},
		{"Completed", fmt.Sprintf("%d", sum.Completed)},
		{"Failed", fmt.Sprintf("%d", sum.Failed)},
	}
	if sum.Completed > 0 {
		rows = append(rows,
			[]string{"Input size", report.FormatBytes(sum.InputBytes)},
			[]string{"Output size", report.FormatBytes(sum.OutputBytes)},
			[]string{"Space saved", report.FormatBytes(sum.SpaceSaved())},
		)
	}
	var b strings.Builder
	b.WriteString(renderTable("Summary", []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(sum.Failures) > 0 {
		failRows := make([][]string, 0, len(sum.Failures))
		for _, snap := range sum.Failures {
			failRows = append(failRows, []string{
				report.Truncate(filepath.Base(snap.Input), messageWidth),
				snap.Mode.Name(),
				stateLabel(snap.State, colorize),
				report.Truncate(firstDiagnosticLine(snap.Diagnostic), 60),
			})
		}
		b.WriteString("\n")
		b.WriteString(renderTable("Failures", []string{"File", "Mode", "State", "Diagnostic"}, failRows, nil))
	}
	return b.String()
}
