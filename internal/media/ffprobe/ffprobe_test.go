package ffprobe

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"vcompress/internal/testsupport"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.45\n", 123.45},
		{"  7\n", 7},
		{"N/A\n", 0},
		{"", 0},
		{"-3\n", 0},
		{"nan\n", 0},
	}
	for _, tt := range tests {
		if got := parseDuration([]byte(tt.in)); got != tt.want {
			t.Fatalf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseStreamIgnoresFieldOrder(t *testing.T) {
	out := "codec_name=h264\nbit_rate=2500000\nheight=1080\nwidth=1920\n"
	info, err := parseStream([]byte(out))
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}
	want := StreamInfo{Width: 1920, Height: 1080, Codec: "h264", BitRate: 2500000}
	if info != want {
		t.Fatalf("got %+v, want %+v", info, want)
	}
}

func TestParseStreamDefaultsOptionalFields(t *testing.T) {
	info, err := parseStream([]byte("width=640\nheight=360\nbit_rate=N/A\n"))
	if err != nil {
		t.Fatalf("parseStream: %v", err)
	}
	if info.BitRate != 0 || info.Codec != "" {
		t.Fatalf("expected zero bitrate and empty codec, got %+v", info)
	}
}

func TestParseStreamRejectsMissingDimensions(t *testing.T) {
	for _, out := range []string{"", "width=640\n", "width=640\nheight=N/A\n", "width=0\nheight=360\n"} {
		if _, err := parseStream([]byte(out)); err == nil {
			t.Fatalf("expected error for %q", out)
		}
	}
}

const stubProbe = `case "$*" in
*format=duration*) echo 12.5 ;;
*) printf 'bit_rate=N/A\ncodec_name=hevc\nheight=720\nwidth=1280\n' ;;
esac
`

func TestProbeCombinesRequests(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeScript(stubProbe))
	prober := New(cfg.Encoder.FFprobeBinary)

	info, err := prober.Probe(context.Background(), "/videos/clip.mkv")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	want := MediaInfo{Duration: 12.5, Width: 1280, Height: 720, Codec: "hevc"}
	if info != want {
		t.Fatalf("got %+v, want %+v", info, want)
	}
	if info.Resolution() != "1280x720" {
		t.Fatalf("unexpected resolution %q", info.Resolution())
	}
}

func TestProbeFailureMatchesErrProbe(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeScript("echo 'moov atom not found' >&2\nexit 1\n"))
	prober := New(cfg.Encoder.FFprobeBinary)

	_, err := prober.Probe(context.Background(), "/videos/broken.mp4")
	if !errors.Is(err, ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected *ProbeError, got %T", err)
	}
	if !strings.Contains(probeErr.Detail, "moov atom not found") {
		t.Fatalf("expected stderr in detail, got %q", probeErr.Detail)
	}
}

func TestStreamWithoutVideoIsProbeError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeScript("exit 0\n"))
	_, err := New(cfg.Encoder.FFprobeBinary).Stream(context.Background(), filepath.Join(t.TempDir(), "audio.mp4"))
	if !errors.Is(err, ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
}

func TestDurationEmptyPath(t *testing.T) {
	if _, err := New("").Duration(context.Background(), " "); !errors.Is(err, ErrProbe) {
		t.Fatalf("expected ErrProbe for empty path, got %v", err)
	}
}
