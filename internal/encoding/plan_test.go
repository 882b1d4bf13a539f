package encoding

import (
	"errors"
	"testing"

	"vcompress/internal/config"
	"vcompress/internal/job"
	"vcompress/internal/logging"
	"vcompress/internal/media/ffprobe"
)

func TestPlanQualityUsesConfiguredAudio(t *testing.T) {
	cfg := config.Default()
	params, err := Plan(&cfg, job.Quality{CRF: 24, Preset: "medium"}, ffprobe.MediaInfo{Duration: 60, Width: 1280, Height: 720}, logging.NewNop())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if params.CRF != 24 || params.Preset != "medium" || params.AudioBitrate != 128000 {
		t.Fatalf("unexpected params %+v", params)
	}
	if params.VideoBitrate != 0 || params.Width != 0 {
		t.Fatalf("quality mode should not set bitrate or dims: %+v", params)
	}
}

func TestPlanSizeTargetSolves(t *testing.T) {
	cfg := config.Default()
	media := ffprobe.MediaInfo{Duration: 120, Width: 1920, Height: 1080}
	params, err := Plan(&cfg, job.SizeTarget{TargetBytes: cfg.TargetBytes()}, media, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if params.VideoBitrate != 250572 || params.Width != 1920 || params.Height != 1080 || params.Scale != 1 {
		t.Fatalf("unexpected params %+v", params)
	}
	if params.AudioBitrate != cfg.SizeTarget.AudioBitrate {
		t.Fatalf("audio bitrate %d, want %d", params.AudioBitrate, cfg.SizeTarget.AudioBitrate)
	}
}

func TestPlanSizeTargetInfeasible(t *testing.T) {
	cfg := config.Default()
	_, err := Plan(&cfg, job.SizeTarget{TargetBytes: 1000}, ffprobe.MediaInfo{Duration: 600, Width: 1920, Height: 1080}, nil)
	if !errors.Is(err, job.ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}
