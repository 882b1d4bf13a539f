package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"vcompress/internal/job"
	"vcompress/internal/scheduler"
)

func TestLineViewThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	view := newLineView(&buf)

	snap := job.Snapshot{
		ID:    "job-1",
		Input: "/videos/clip.mkv",
		Mode:  job.Quality{CRF: 30, Preset: "slow"},
		State: job.StateRunning,
	}
	for _, p := range []float64{0.01, 0.02, 0.05, 0.11, 0.12, 0.5} {
		snap.Progress = p
		view.Handle(scheduler.Event{Type: scheduler.EventProgress, Job: snap, Total: 1})
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 sampled progress lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "clip.mkv [quality]") || !strings.HasPrefix(lines[0], "[0/1] progress") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[2], "50%") {
		t.Fatalf("expected 50%% in last line, got %q", lines[2])
	}
}

func TestLineViewFailureShowsFirstDiagnosticLine(t *testing.T) {
	var buf bytes.Buffer
	view := newLineView(&buf)
	view.Handle(scheduler.Event{
		Type: scheduler.EventFailed,
		Job: job.Snapshot{
			ID:         "job-2",
			Input:      "/videos/broken.mp4",
			Mode:       job.SizeTarget{TargetBytes: 1 << 20},
			State:      job.StateFailed,
			Diagnostic: "first line\nsecond line",
		},
		Completed: 1,
		Total:     1,
	})
	got := strings.TrimSpace(buf.String())
	want := "[1/1] failed    broken.mp4 [size]: first line"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStateLabel(t *testing.T) {
	if got := stateLabel(job.StateCompleted, false); got != "Completed" {
		t.Fatalf("stateLabel = %q", got)
	}
	text.EnableColors()
	if got := stateLabel(job.StateFailed, true); !strings.Contains(got, "Failed") || got == "Failed" {
		t.Fatalf("expected colored label, got %q", got)
	}
}

func TestLineViewAnnouncesNextUnfinishedJob(t *testing.T) {
	quality := job.Quality{CRF: 30, Preset: "slow"}
	snaps := []job.Snapshot{
		{ID: "job-1", Input: "/videos/one.mkv", Mode: quality, State: job.StateCompleted},
		{ID: "job-2", Input: "/videos/two.mkv", Mode: quality, State: job.StateRunning},
		{ID: "job-3", Input: "/videos/three.mkv", Mode: quality, State: job.StateQueued},
	}
	var buf bytes.Buffer
	view := newProgressView(&buf, false, func() []job.Snapshot { return snaps })

	view.Handle(scheduler.Event{Type: scheduler.EventCompleted, Job: snaps[0], Completed: 1, Total: 3})
	// Focus unchanged: no second announcement.
	view.Handle(scheduler.Event{Type: scheduler.EventFailed, Job: job.Snapshot{
		ID: "job-x", Input: "/videos/x.mkv", Mode: quality, State: job.StateFailed,
	}, Completed: 2, Total: 3})

	got := buf.String()
	if strings.Count(got, " next ") != 1 {
		t.Fatalf("expected one focus line, got:\n%s", got)
	}
	if !strings.Contains(got, "[1/3] next      two.mkv [quality] (running)") {
		t.Fatalf("expected focus on the running job, got:\n%s", got)
	}

	snaps[1].State = job.StateCompleted
	snaps[2].State = job.StateCompleted
	buf.Reset()
	view.Handle(scheduler.Event{Type: scheduler.EventCompleted, Job: snaps[2], Completed: 3, Total: 3})
	if strings.Contains(buf.String(), " next ") {
		t.Fatalf("no focus line expected once every job finished, got:\n%s", buf.String())
	}
}
