package preflight

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"vcompress/internal/config"
)

// CheckEncoderSupport verifies that the configured ffmpeg build lists the
// configured video and audio encoders.
func CheckEncoderSupport(ctx context.Context, cfg *config.Config) Result {
	const name = "Encoders"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(checkCtx, cfg.Encoder.FFmpegBinary, "-hide_banner", "-encoders").Output()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("list encoders failed (%v)", err)}
	}

	available := parseEncoders(out)
	var missing []string
	for _, codec := range []string{cfg.Encoder.VideoCodec, cfg.Encoder.AudioCodec} {
		if _, ok := available[codec]; !ok {
			missing = append(missing, codec)
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Encoder.VideoCodec + ", " + cfg.Encoder.AudioCodec}
}

// parseEncoders reads `ffmpeg -encoders` output. Encoder rows look like
// " V....D libx264   libx264 H.264 ..." and follow a "------" separator.
func parseEncoders(out []byte) map[string]struct{} {
	encoders := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(out))
	listing := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			listing = strings.HasPrefix(line, "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		encoders[fields[1]] = struct{}{}
	}
	return encoders
}
