package job

import (
	"errors"
	"sync"
	"testing"

	"vcompress/internal/media/ffprobe"
)

func newPreparedJob(t *testing.T) *Job {
	t.Helper()
	j := New("/videos/a.mp4", "/videos/a_compressed.mp4", Quality{CRF: 30, Preset: "slow"})
	if err := j.Prepare(ffprobe.MediaInfo{Duration: 10, Width: 640, Height: 360}, Params{CRF: 30, Preset: "slow", AudioBitrate: 128000}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return j
}

func TestNewJobIsQueued(t *testing.T) {
	j := New("in.mp4", "out.mp4", SizeTarget{TargetBytes: 1 << 20})
	if j.State() != StateQueued {
		t.Fatalf("state = %s, want queued", j.State())
	}
	if j.ID == "" {
		t.Fatal("expected generated ID")
	}
	if other := New("in.mp4", "out.mp4", SizeTarget{TargetBytes: 1}); other.ID == j.ID {
		t.Fatal("expected unique IDs")
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	j := newPreparedJob(t)
	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n := j.BeginAttempt(); n != 1 {
		t.Fatalf("attempt = %d, want 1", n)
	}
	j.SetProgress(0.4)
	if got := j.Progress(); got != 0.4 {
		t.Fatalf("progress = %v, want 0.4", got)
	}
	if err := j.Complete(2048); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	snap := j.Snapshot()
	if snap.State != StateCompleted || snap.Progress != 1 || snap.OutputSize != 2048 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Started.IsZero() || snap.Finished.IsZero() || snap.Elapsed() < 0 {
		t.Fatalf("expected timestamps, got %+v", snap)
	}
}

func TestStartRequiresPrepare(t *testing.T) {
	j := New("in.mp4", "out.mp4", Quality{CRF: 30, Preset: "slow"})
	if err := j.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestQueuedJobCanFailDirectly(t *testing.T) {
	j := New("in.mp4", "out.mp4", SizeTarget{TargetBytes: 1})
	cause := errors.Join(ErrProbe, errors.New("no video stream"))
	if err := j.Fail(cause, ""); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	snap := j.Snapshot()
	if snap.State != StateFailed || !errors.Is(snap.Err, ErrProbe) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Diagnostic == "" {
		t.Fatal("expected diagnostic to default to error text")
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	j := newPreparedJob(t)
	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := j.Fail(ErrEncode, "exit status 1"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := j.Complete(1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := j.Fail(ErrEncode, "again"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := j.Prepare(ffprobe.MediaInfo{}, Params{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected prepare to be rejected, got %v", err)
	}
	if j.Snapshot().Diagnostic != "exit status 1" {
		t.Fatalf("diagnostic overwritten: %q", j.Snapshot().Diagnostic)
	}
}

func TestQueuedCannotComplete(t *testing.T) {
	j := newPreparedJob(t)
	if err := j.Complete(1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSetProgressClampsAndIgnoresNonRunning(t *testing.T) {
	j := newPreparedJob(t)
	j.SetProgress(0.5)
	if j.Progress() != 0 {
		t.Fatalf("queued job accepted progress: %v", j.Progress())
	}
	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	j.SetProgress(1.7)
	if j.Progress() != 1 {
		t.Fatalf("progress = %v, want clamp to 1", j.Progress())
	}
	j.SetProgress(-3)
	if j.Progress() != 0 {
		t.Fatalf("progress = %v, want clamp to 0", j.Progress())
	}
}

func TestConcurrentReadersDuringUpdates(t *testing.T) {
	j := newPreparedJob(t)
	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				p := j.Snapshot().Progress
				if p < 0 || p > 1 {
					t.Errorf("progress out of range: %v", p)
					return
				}
			}
		}()
	}
	for i := range 200 {
		j.SetProgress(float64(i) / 200)
	}
	wg.Wait()
}

func TestModeValidate(t *testing.T) {
	tests := []struct {
		mode    Mode
		wantErr bool
	}{
		{Quality{CRF: 30, Preset: "slow"}, false},
		{Quality{CRF: 52, Preset: "slow"}, true},
		{Quality{CRF: 20}, true},
		{SizeTarget{TargetBytes: 4718592}, false},
		{SizeTarget{}, true},
	}
	for _, tt := range tests {
		if err := tt.mode.Validate(); (err != nil) != tt.wantErr {
			t.Fatalf("%s Validate() err = %v, wantErr %v", tt.mode.Describe(), err, tt.wantErr)
		}
	}
}

func TestModeDescribe(t *testing.T) {
	if got := (Quality{CRF: 30, Preset: "slow"}).Describe(); got != "crf 30 (slow)" {
		t.Fatalf("quality describe = %q", got)
	}
	if got := (SizeTarget{TargetBytes: 4718592}).Describe(); got != "target 4.5 MiB" {
		t.Fatalf("size describe = %q", got)
	}
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StateQueued:    "queued",
		StateRunning:   "running",
		StateCompleted: "completed",
		StateFailed:    "failed",
		State(9):       "unknown",
	} {
		if state.String() != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, state.String(), want)
		}
	}
	if StateRunning.Terminal() || !StateFailed.Terminal() {
		t.Fatal("unexpected Terminal result")
	}
}
