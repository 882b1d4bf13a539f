package encoding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vcompress/internal/config"
	"vcompress/internal/job"
	"vcompress/internal/logging"
	"vcompress/internal/testsupport"
)

// stubFFmpeg writes "data" to the final argument and, when progress was
// requested, emits a short progress stream followed by trailing output.
const stubFFmpeg = `out=""
for a in "$@"; do out="$a"; done
case "$*" in
*"-progress pipe:1"*)
  printf 'out_time_ms=N/A\nprogress=continue\nout_time_ms=2500000\nprogress=continue\nout_time_ms=5000000\nprogress=end\n'
  head -c 200000 /dev/zero
  ;;
esac
printf 'data' > "$out"
`

func stubProbe(duration string) string {
	return `case "$*" in
*format=duration*) echo ` + duration + ` ;;
*) printf 'width=1920\nheight=1080\ncodec_name=h264\nbit_rate=8000000\n' ;;
esac
`
}

func runJob(t *testing.T, cfg *config.Config, mode job.Mode) (*job.Job, []float64, int64, error) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mkv")
	testsupport.WriteFile(t, input, 1024)

	j := job.New(input, filepath.Join(dir, "clip_out.mp4"), mode)
	runner := NewRunner(cfg, logging.NewNop())
	if err := runner.Prepare(context.Background(), j); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	var seen []float64
	size, err := runner.Encode(context.Background(), j, func(f float64) { seen = append(seen, f) })
	return j, seen, size, err
}

func TestRunnerStreamsProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithFFprobeScript(stubProbe("10.0")),
		testsupport.WithFFmpegScript(stubFFmpeg),
	)
	j, seen, size, err := runJob(t, cfg, job.Quality{CRF: 30, Preset: "slow"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if size != 4 {
		t.Fatalf("size = %d, want 4", size)
	}
	if len(seen) != 2 || seen[0] != 0.25 || seen[1] != 0.5 {
		t.Fatalf("progress = %v, want [0.25 0.5]", seen)
	}
	if got := j.Params(); got.CRF != 30 || got.AudioBitrate != 128000 {
		t.Fatalf("unexpected params %+v", got)
	}
}

func TestRunnerShortClipReportsNoProgress(t *testing.T) {
	// Clips at the threshold itself do not stream either.
	for _, duration := range []string{"1.5", "2.0"} {
		t.Run(duration, func(t *testing.T) {
			cfg := testsupport.NewConfig(t,
				testsupport.WithFFprobeScript(stubProbe(duration)),
				testsupport.WithFFmpegScript(stubFFmpeg),
			)
			if cfg.Scheduler.ShortClipSeconds != 2.0 {
				t.Fatalf("short clip threshold = %v, want 2.0", cfg.Scheduler.ShortClipSeconds)
			}
			j, seen, _, err := runJob(t, cfg, job.Quality{CRF: 30, Preset: "slow"})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if len(seen) != 0 {
				t.Fatalf("short clip reported progress %v", seen)
			}
			if j.Progress() != 0 {
				t.Fatalf("progress moved before completion: %v", j.Progress())
			}
			if err := j.Complete(4); err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if j.Progress() != 1 {
				t.Fatalf("progress after completion = %v", j.Progress())
			}
		})
	}
}

func TestRunnerSizeTargetSolvesParams(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithFFprobeScript(stubProbe("120")),
		testsupport.WithFFmpegScript(stubFFmpeg),
	)
	j, _, _, err := runJob(t, cfg, job.SizeTarget{TargetBytes: cfg.TargetBytes()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	params := j.Params()
	if params.Width != 1920 || params.Height != 1080 || params.AudioBitrate != 64000 {
		t.Fatalf("unexpected params %+v", params)
	}
	if params.VideoBitrate != 250572 {
		t.Fatalf("video bitrate = %d, want 250572", params.VideoBitrate)
	}
}

func TestPrepareFailsWhenInfeasible(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeScript(stubProbe("36000")))
	j := job.New("/videos/long.mkv", "/videos/long_smaller.mp4", job.SizeTarget{TargetBytes: cfg.TargetBytes()})
	err := NewRunner(cfg, nil).Prepare(context.Background(), j)
	if !errors.Is(err, job.ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
	if j.State() != job.StateQueued {
		t.Fatalf("state changed to %s", j.State())
	}
}

func TestRunnerCapturesStderrTail(t *testing.T) {
	script := "i=0\nwhile [ $i -lt 30 ]; do echo \"line $i\" >&2; i=$((i+1)); done\nexit 3\n"
	cfg := testsupport.NewConfig(t,
		testsupport.WithFFprobeScript(stubProbe("10")),
		testsupport.WithFFmpegScript(script),
	)
	cfg.Scheduler.StderrTailLines = 5
	_, _, _, err := runJob(t, cfg, job.Quality{CRF: 30, Preset: "slow"})
	if !errors.Is(err, job.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodeError, got %T", err)
	}
	if encErr.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", encErr.ExitCode)
	}
	if len(encErr.Tail) != 5 || encErr.Tail[4] != "line 29" {
		t.Fatalf("unexpected tail %v", encErr.Tail)
	}
	if !strings.HasPrefix(encErr.Diagnostic(), "line 25") {
		t.Fatalf("unexpected diagnostic %q", encErr.Diagnostic())
	}
}

func TestRunnerCancellationKillsFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithFFprobeScript(stubProbe("10")),
		testsupport.WithFFmpegScript("exec sleep 30\n"),
	)
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mkv")
	testsupport.WriteFile(t, input, 16)
	j := job.New(input, filepath.Join(dir, "out.mp4"), job.Quality{CRF: 30, Preset: "slow"})
	runner := NewRunner(cfg, nil)
	if err := runner.Prepare(context.Background(), j); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	started := time.Now()
	_, err := runner.Encode(ctx, j, nil)
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, job.ErrEncode) {
		t.Fatalf("expected deadline + ErrEncode, got %v", err)
	}
	if time.Since(started) > 10*time.Second {
		t.Fatal("encode did not stop promptly after cancellation")
	}
	var encErr *EncodeError
	if errors.As(err, &encErr) && encErr.Diagnostic() != "canceled" {
		t.Fatalf("diagnostic = %q, want canceled", encErr.Diagnostic())
	}
	if _, statErr := os.Stat(j.Output); statErr == nil {
		t.Fatal("unexpected output file")
	}
}
