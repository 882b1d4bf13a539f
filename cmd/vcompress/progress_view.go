package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"vcompress/internal/job"
	"vcompress/internal/logging"
	"vcompress/internal/report"
	"vcompress/internal/scheduler"
)

const (
	messageWidth = 40
	barWidth     = 30
)

// progressView consumes scheduler events on a single goroutine.
type progressView interface {
	Handle(scheduler.Event)
	Finish()
}

// snapshots returns the current state of every job in submission order.
type snapshots func() []job.Snapshot

func newProgressView(w io.Writer, live bool, jobs snapshots) progressView {
	if live {
		return newLiveView(w)
	}
	view := newLineView(w)
	view.jobs = jobs
	return view
}

func jobLabel(snap job.Snapshot) string {
	return fmt.Sprintf("%s [%s]", filepath.Base(snap.Input), snap.Mode.Name())
}

// liveView draws one bar per job plus an overall bar.
type liveView struct {
	pw       progress.Writer
	overall  *progress.Tracker
	trackers map[string]*progress.Tracker
	rendered chan struct{}
}

func newLiveView(w io.Writer) *liveView {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(barWidth)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleBlocks)
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Time = true
	pw.Style().Visibility.Value = false
	pw.Style().Visibility.ETA = false

	v := &liveView{
		pw:       pw,
		overall:  &progress.Tracker{Message: "overall", Total: 0, Units: progress.UnitsDefault},
		trackers: make(map[string]*progress.Tracker),
		rendered: make(chan struct{}),
	}
	pw.AppendTracker(v.overall)
	go func() {
		pw.Render()
		close(v.rendered)
	}()
	return v
}

func (v *liveView) Handle(ev scheduler.Event) {
	v.overall.UpdateTotal(int64(ev.Total))
	v.overall.SetValue(int64(ev.Completed))
	v.overall.UpdateMessage(fmt.Sprintf("overall %d/%d", ev.Completed, ev.Total))

	t, ok := v.trackers[ev.Job.ID]
	if !ok {
		t = &progress.Tracker{
			Message: report.Truncate(jobLabel(ev.Job), messageWidth),
			Total:   100,
			Units:   progress.UnitsDefault,
		}
		v.trackers[ev.Job.ID] = t
		v.pw.AppendTracker(t)
	}

	switch ev.Type {
	case scheduler.EventProgress:
		t.SetValue(int64(ev.Job.Progress * 100))
	case scheduler.EventRetrying:
		t.SetValue(0)
		t.UpdateMessage(report.Truncate(fmt.Sprintf("%s retry %d", jobLabel(ev.Job), ev.Job.Attempts+1), messageWidth))
	case scheduler.EventCompleted:
		t.SetValue(100)
		t.MarkAsDone()
	case scheduler.EventFailed:
		t.UpdateMessage(report.Truncate(jobLabel(ev.Job)+": "+ev.Job.Diagnostic, messageWidth))
		t.MarkAsErrored()
	}
	if ev.Total > 0 && ev.Completed == ev.Total {
		v.overall.MarkAsDone()
	}
}

// Finish stops rendering. Stop is repeated because it is a no-op until the
// render loop has started.
func (v *liveView) Finish() {
	for {
		v.pw.Stop()
		select {
		case <-v.rendered:
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// lineView prints plain progress lines, for pipes and log capture. Progress
// lines are throttled to 10% steps per job. When a job finishes, the first
// unfinished job is announced so the reader knows what is being worked on.
type lineView struct {
	mu       sync.Mutex
	w        io.Writer
	samplers map[string]*logging.ProgressSampler
	jobs     snapshots
	focus    string
}

func newLineView(w io.Writer) *lineView {
	return &lineView{w: w, samplers: make(map[string]*logging.ProgressSampler)}
}

func (v *lineView) Handle(ev scheduler.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := ev.Job
	prefix := fmt.Sprintf("[%d/%d]", ev.Completed, ev.Total)
	switch ev.Type {
	case scheduler.EventQueued:
		fmt.Fprintf(v.w, "%s queued    %s (%s)\n", prefix, jobLabel(snap), snap.Mode.Describe())
	case scheduler.EventStarted:
		fmt.Fprintf(v.w, "%s started   %s %s %s\n", prefix, jobLabel(snap), snap.Media.Resolution(), report.FormatDuration(snap.Media.Duration))
	case scheduler.EventProgress:
		if !v.sampler(snap.ID).ShouldLog(snap.Progress, snap.State.String()) {
			return
		}
		fmt.Fprintf(v.w, "%s progress  %s %s\n", prefix, jobLabel(snap), report.ProgressBarText(snap.Progress*100, barWidth))
	case scheduler.EventRetrying:
		v.sampler(snap.ID).Reset()
		fmt.Fprintf(v.w, "%s retrying  %s (attempt %d)\n", prefix, jobLabel(snap), snap.Attempts+1)
	case scheduler.EventCompleted:
		delete(v.samplers, snap.ID)
		fmt.Fprintf(v.w, "%s completed %s -> %s (%s in %s)\n", prefix, jobLabel(snap),
			filepath.Base(snap.Output), report.FormatBytes(snap.OutputSize),
			report.FormatDuration(snap.Elapsed().Seconds()))
		v.announceFocus(prefix)
	case scheduler.EventFailed:
		delete(v.samplers, snap.ID)
		fmt.Fprintf(v.w, "%s failed    %s: %s\n", prefix, jobLabel(snap), firstDiagnosticLine(snap.Diagnostic))
		v.announceFocus(prefix)
	}
}

// announceFocus prints the first unfinished job when it changed since the
// last announcement.
func (v *lineView) announceFocus(prefix string) {
	if v.jobs == nil {
		return
	}
	snaps := v.jobs()
	idx := report.FocusIndex(snaps)
	if idx < 0 || snaps[idx].ID == v.focus {
		return
	}
	v.focus = snaps[idx].ID
	fmt.Fprintf(v.w, "%s next      %s (%s)\n", prefix, jobLabel(snaps[idx]), snaps[idx].State)
}

func (v *lineView) sampler(id string) *logging.ProgressSampler {
	s, ok := v.samplers[id]
	if !ok {
		s = logging.NewProgressSampler(0.1)
		v.samplers[id] = s
	}
	return s
}

func (v *lineView) Finish() {}

func firstDiagnosticLine(diag string) string {
	for i, r := range diag {
		if r == '\n' {
			return diag[:i]
		}
	}
	return diag
}
