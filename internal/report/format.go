package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatDuration renders seconds as mm:ss, or h:mm:ss from one hour up.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	h, rem := total/3600, total%3600
	m, s := rem/60, rem%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ProgressBarText draws a bracketed bar width runes wide with the percentage
// centred over the fill, e.g. "[█████ 42% ·····]".
func ProgressBarText(percent float64, width int) string {
	if math.IsNaN(percent) {
		percent = 0
	}
	percent = max(0, min(100, percent))
	inner := max(width-2, 0)

	bar := make([]rune, inner)
	fill := int(float64(inner) * percent / 100)
	for i := range bar {
		if i < fill {
			bar[i] = '█'
		} else {
			bar[i] = ' '
		}
	}

	label := []rune(fmt.Sprintf(" %3.0f%% ", percent))
	if len(label) <= inner {
		start := (inner - len(label)) / 2
		copy(bar[start:], label)
	}
	return "[" + string(bar) + "]"
}

// FormatBitrate renders bits/s as whole kilobits ("2500k"), or "-" when unknown.
func FormatBitrate(bps int64) string {
	if bps <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dk", bps/1000)
}

// FormatBytes renders a byte count with binary units.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// FormatPercent renders a fraction in [0,1] as a whole percentage.
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.0f%%", max(0, min(1, fraction))*100)
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:width-1])) + "…"
}
