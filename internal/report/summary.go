package report

import (
	"os"

	"vcompress/internal/job"
)

// FocusIndex returns the index of the first job that is not yet terminal, so
// a list view can keep the active work in sight. It returns -1 when every
// job has finished or the list is empty.
func FocusIndex(snaps []job.Snapshot) int {
	for i, snap := range snaps {
		if !snap.State.Terminal() {
			return i
		}
	}
	return -1
}

// Summary aggregates a batch of job snapshots.
type Summary struct {
	Total       int
	Queued      int
	Running     int
	Completed   int
	Failed      int
	InputBytes  int64
	OutputBytes int64
	Failures    []job.Snapshot
}

// SpaceSaved is input minus output bytes over completed jobs; negative when
// outputs grew.
func (s Summary) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// Done counts jobs in a terminal state; failures count as done.
func (s Summary) Done() int {
	return s.Completed + s.Failed
}

// Summarize tallies snapshots. Input sizes are read from disk for completed
// jobs only so the byte totals compare like with like.
func Summarize(snaps []job.Snapshot) Summary {
	sum := Summary{Total: len(snaps)}
	for _, snap := range snaps {
		switch snap.State {
		case job.StateQueued:
			sum.Queued++
		case job.StateRunning:
			sum.Running++
		case job.StateCompleted:
			sum.Completed++
			sum.OutputBytes += snap.OutputSize
			if info, err := os.Stat(snap.Input); err == nil {
				sum.InputBytes += info.Size()
			}
		case job.StateFailed:
			sum.Failed++
			sum.Failures = append(sum.Failures, snap)
		}
	}
	return sum
}
