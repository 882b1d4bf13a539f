package ffprobe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrProbe marks every failure to obtain usable metadata from ffprobe.
var ErrProbe = errors.New("probe failed")

// ProbeError describes a failed ffprobe request.
type ProbeError struct {
	Path   string
	Detail string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := "ffprobe " + e.Path
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Is reports ErrProbe so callers can match any ProbeError with errors.Is.
func (e *ProbeError) Is(target error) bool { return target == ErrProbe }

// StreamInfo is the subset of the first video stream used by the encoder.
type StreamInfo struct {
	Width   int
	Height  int
	Codec   string
	BitRate int64
}

// MediaInfo combines container duration with the first video stream.
type MediaInfo struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
	BitRate  int64
}

// Resolution renders the frame size as WIDTHxHEIGHT.
func (m MediaInfo) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Prober runs ffprobe requests. It never writes to the inspected file.
type Prober struct {
	Binary string
}

// New returns a Prober for binary, defaulting to "ffprobe" on PATH.
func New(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary}
}

// Duration returns the container duration in seconds. Missing or
// non-numeric values yield 0 without error.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx, path,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
	)
	if err != nil {
		return 0, err
	}
	return parseDuration(out), nil
}

// Stream returns dimensions, codec and bitrate of the first video stream.
func (p *Prober) Stream(ctx context.Context, path string) (StreamInfo, error) {
	out, err := p.run(ctx, path,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,bit_rate,codec_name",
		"-of", "default=noprint_wrappers=1",
	)
	if err != nil {
		return StreamInfo{}, err
	}
	info, err := parseStream(out)
	if err != nil {
		return StreamInfo{}, &ProbeError{Path: path, Err: err}
	}
	return info, nil
}

// Probe issues the duration and stream requests concurrently and merges them.
func (p *Prober) Probe(ctx context.Context, path string) (MediaInfo, error) {
	var (
		duration float64
		stream   StreamInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		duration, err = p.Duration(gctx, path)
		return err
	})
	g.Go(func() error {
		var err error
		stream, err = p.Stream(gctx, path)
		return err
	})
	if err := g.Wait(); err != nil {
		return MediaInfo{}, err
	}
	return MediaInfo{
		Duration: duration,
		Width:    stream.Width,
		Height:   stream.Height,
		Codec:    stream.Codec,
		BitRate:  stream.BitRate,
	}, nil
}

func (p *Prober) run(ctx context.Context, path string, args ...string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, &ProbeError{Detail: "empty path"}
	}
	args = append(args, "--", path)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Binary, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &ProbeError{Path: path, Detail: strings.TrimSpace(stderr.String()), Err: err}
	}
	return out, nil
}

func parseDuration(out []byte) float64 {
	value := strings.TrimSpace(firstLine(out))
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return seconds
}

func parseStream(out []byte) (StreamInfo, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		// Keep the first occurrence; only v:0 is selected.
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(value)
		}
	}

	var info StreamInfo
	var err error
	if info.Width, err = positiveInt(fields, "width"); err != nil {
		return StreamInfo{}, err
	}
	if info.Height, err = positiveInt(fields, "height"); err != nil {
		return StreamInfo{}, err
	}
	info.Codec = fields["codec_name"]
	if info.Codec == "N/A" {
		info.Codec = ""
	}
	if rate, err := strconv.ParseInt(fields["bit_rate"], 10, 64); err == nil && rate > 0 {
		info.BitRate = rate
	}
	return info, nil
}

func positiveInt(fields map[string]string, key string) (int, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("no video stream %s reported", key)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("video stream %s %q is not an integer", key, raw)
	}
	if value <= 0 {
		return 0, fmt.Errorf("video stream %s %d is not positive", key, value)
	}
	return value, nil
}

func firstLine(out []byte) string {
	line, _, _ := bytes.Cut(out, []byte{'\n'})
	return string(line)
}
