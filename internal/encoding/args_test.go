package encoding

import (
	"strings"
	"testing"

	"vcompress/internal/config"
	"vcompress/internal/job"
)

func TestBuildArgsQuality(t *testing.T) {
	enc := config.Default().Encoder
	params := job.Params{CRF: 30, Preset: "slow", AudioBitrate: 128000}
	got := strings.Join(BuildArgs(enc, "in.mkv", "in_compressed.mp4", job.Quality{CRF: 30, Preset: "slow"}, params, true), " ")
	want := "-y -i in.mkv -c:v libx264 -pix_fmt yuv420p -movflags faststart -preset slow -crf 30 -c:a aac -b:a 128k -progress pipe:1 -nostats in_compressed.mp4"
	if got != want {
		t.Fatalf("args mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildArgsSizeTargetWithoutProgress(t *testing.T) {
	enc := config.Default().Encoder
	params := job.Params{Width: 1280, Height: 720, VideoBitrate: 250572, AudioBitrate: 64000}
	got := strings.Join(BuildArgs(enc, "in.mp4", "in_smaller.mp4", job.SizeTarget{TargetBytes: 4718592}, params, false), " ")
	want := "-y -i in.mp4 -c:v libx264 -pix_fmt yuv420p -movflags faststart -vf scale=1280:720 -b:v 250572 -c:a aac -b:a 64000 in_smaller.mp4"
	if got != want {
		t.Fatalf("args mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestKilobits(t *testing.T) {
	for in, want := range map[int]string{128000: "128k", 96000: "96k", 64500: "64500"} {
		if got := kilobits(in); got != want {
			t.Fatalf("kilobits(%d) = %q, want %q", in, got, want)
		}
	}
}
