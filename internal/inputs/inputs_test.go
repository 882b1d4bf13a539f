package inputs

import (
	"path/filepath"
	"strings"
	"testing"

	"vcompress/internal/config"
	"vcompress/internal/job"
	"vcompress/internal/testsupport"
)

func TestDiscoverExpandsDirectories(t *testing.T) {
	cfg := config.Default()
	root := t.TempDir()
	for _, name := range []string{
		"b.MKV",
		"a.mp4",
		"notes.txt",
		"nested/deeper/c.webm",
		"nested/a_compressed.mp4",
		"nested/a_smaller.mp4",
	} {
		testsupport.WriteFile(t, filepath.Join(root, name), 8)
	}

	res, err := Discover(&cfg, []string{root})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.mp4"),
		filepath.Join(root, "b.MKV"),
		filepath.Join(root, "nested/deeper/c.webm"),
	}
	if len(res.Files) != len(want) {
		t.Fatalf("files = %v, want %v", res.Files, want)
	}
	for i := range want {
		if res.Files[i] != want[i] {
			t.Fatalf("files[%d] = %s, want %s", i, res.Files[i], want[i])
		}
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("expected previous outputs to be skipped, got %+v", res.Skipped)
	}
}

func TestDiscoverExplicitFiles(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mov")
	doc := filepath.Join(dir, "readme.md")
	testsupport.WriteFile(t, clip, 8)
	testsupport.WriteFile(t, doc, 8)

	res, err := Discover(&cfg, []string{clip, doc, clip, filepath.Join(dir, "missing.mp4"), " "})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0] != clip {
		t.Fatalf("files = %v", res.Files)
	}
	reasons := map[string]string{}
	for _, s := range res.Skipped {
		reasons[filepath.Base(s.Path)] = s.Reason
	}
	if reasons["readme.md"] != "unsupported extension" || reasons["missing.mp4"] != "not found" {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
}

func TestOutputPath(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		input string
		mode  job.Mode
		want  string
	}{
		{"/v/holiday.mkv", job.Quality{CRF: 30, Preset: "slow"}, "/v/holiday_compressed.mp4"},
		{"/v/holiday.mkv", job.SizeTarget{TargetBytes: 1}, "/v/holiday_smaller.mp4"},
		{"/v/archive.tar.avi", job.SizeTarget{TargetBytes: 1}, "/v/archive.tar_smaller.mp4"},
	}
	for _, tt := range tests {
		if got := OutputPath(&cfg, tt.input, tt.mode); got != tt.want {
			t.Fatalf("OutputPath(%s, %s) = %s, want %s", tt.input, tt.mode.Name(), got, tt.want)
		}
	}
}

func TestIsOutputName(t *testing.T) {
	cfg := config.Default()
	if !IsOutputName(&cfg, "/v/a_compressed.mp4") || !IsOutputName(&cfg, "/v/a_smaller.MP4") {
		t.Fatal("expected outputs to be recognized")
	}
	if IsOutputName(&cfg, "/v/a_compressed.mkv") || IsOutputName(&cfg, "/v/a.mp4") {
		t.Fatal("unexpected output match")
	}
}

func TestTargetsSkipsCollidingOutputs(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	for _, name := range []string{"clip.mkv", "clip.mp4", "other.mov"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 8)
	}
	res, err := Discover(&cfg, []string{dir})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	modes := []job.Mode{job.Quality{CRF: 30, Preset: "slow"}, job.SizeTarget{TargetBytes: 1 << 20}}
	targets, skipped := Targets(&cfg, res.Files, modes)
	if len(targets) != 4 {
		t.Fatalf("expected 4 targets, got %+v", targets)
	}
	outputs := map[string]string{}
	for _, target := range targets {
		if owner, ok := outputs[target.Output]; ok {
			t.Fatalf("output %s claimed by %s and %s", target.Output, owner, target.Input)
		}
		outputs[target.Output] = target.Input
	}
	if outputs[filepath.Join(dir, "clip_compressed.mp4")] != filepath.Join(dir, "clip.mkv") {
		t.Fatalf("expected first input to keep the output, got %v", outputs)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected both modes of clip.mp4 to be skipped, got %+v", skipped)
	}
	for _, skip := range skipped {
		if skip.Path != filepath.Join(dir, "clip.mp4") || !strings.Contains(skip.Reason, "collides with") {
			t.Fatalf("unexpected skip %+v", skip)
		}
	}
}

func TestTargetsNeverOverwriteAnInput(t *testing.T) {
	cfg := config.Default()
	files := []string{"/v/clip.mkv", "/v/clip_compressed.mp4"}
	targets, skipped := Targets(&cfg, files, []job.Mode{job.Quality{CRF: 30, Preset: "slow"}})
	if len(targets) != 1 || targets[0].Input != "/v/clip_compressed.mp4" {
		t.Fatalf("unexpected targets %+v", targets)
	}
	if len(skipped) != 1 || skipped[0].Path != "/v/clip.mkv" || !strings.Contains(skipped[0].Reason, "overwrite input") {
		t.Fatalf("unexpected skipped %+v", skipped)
	}
}
