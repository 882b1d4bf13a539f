package job

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"vcompress/internal/media/ffprobe"
)

// Params are the encode settings handed to ffmpeg. They are fixed before the
// job first enters StateRunning.
type Params struct {
	CRF          int
	Preset       string
	VideoBitrate int
	Width        int
	Height       int
	Scale        float64
	AudioBitrate int
}

// Job is one input file paired with one encode mode.
//
// A single worker owns the job and is the only writer. State and progress
// are atomics so any goroutine may read them; everything else is reached
// through Snapshot.
type Job struct {
	ID     string
	Input  string
	Output string
	Mode   Mode

	state    atomic.Int32
	progress atomic.Uint64
	attempts atomic.Int32

	mu         sync.Mutex
	media      ffprobe.MediaInfo
	params     Params
	prepared   bool
	outputSize int64
	err        error
	diagnostic string
	submitted  time.Time
	started    time.Time
	finished   time.Time
}

// New returns a queued job with a fresh identifier.
func New(input, output string, mode Mode) *Job {
	j := &Job{
		ID:        uuid.NewString(),
		Input:     input,
		Output:    output,
		Mode:      mode,
		submitted: time.Now(),
	}
	j.state.Store(int32(StateQueued))
	return j
}

// State returns the current lifecycle state.
func (j *Job) State() State {
	return State(j.state.Load())
}

// Progress returns the completion fraction in [0, 1].
func (j *Job) Progress() float64 {
	return math.Float64frombits(j.progress.Load())
}

// Attempts returns how many encode attempts have started.
func (j *Job) Attempts() int {
	return int(j.attempts.Load())
}

// Prepare records probe results and derived parameters. It is only valid
// while the job is queued.
func (j *Job) Prepare(media ffprobe.MediaInfo, params Params) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if s := j.State(); s != StateQueued {
		return fmt.Errorf("%w: prepare in state %s", ErrInvalidTransition, s)
	}
	j.media = media
	j.params = params
	j.prepared = true
	return nil
}

// Media returns the probed input properties.
func (j *Job) Media() ffprobe.MediaInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.media
}

// Params returns the derived encode parameters.
func (j *Job) Params() Params {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.params
}

// Start moves a prepared job from queued to running.
func (j *Job) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.prepared {
		return fmt.Errorf("%w: start before prepare", ErrInvalidTransition)
	}
	if err := j.transition(StateRunning); err != nil {
		return err
	}
	j.started = time.Now()
	return nil
}

// BeginAttempt resets progress and counts a new encode attempt.
func (j *Job) BeginAttempt() int {
	j.setProgress(0)
	return int(j.attempts.Add(1))
}

// SetProgress stores fraction clamped to [0, 1]. Updates outside the
// running state are ignored.
func (j *Job) SetProgress(fraction float64) {
	if j.State() != StateRunning {
		return
	}
	j.setProgress(fraction)
}

func (j *Job) setProgress(fraction float64) {
	switch {
	case math.IsNaN(fraction) || fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	j.progress.Store(math.Float64bits(fraction))
}

// Complete records a successful encode and pins progress at 1.
func (j *Job) Complete(outputSize int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transition(StateCompleted); err != nil {
		return err
	}
	j.setProgress(1)
	j.outputSize = outputSize
	j.finished = time.Now()
	return nil
}

// Fail records err and a human-readable diagnostic. Valid from queued or
// running.
func (j *Job) Fail(err error, diagnostic string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if trErr := j.transition(StateFailed); trErr != nil {
		return trErr
	}
	if diagnostic == "" && err != nil {
		diagnostic = err.Error()
	}
	j.err = err
	j.diagnostic = diagnostic
	j.finished = time.Now()
	return nil
}

// transition must be called with mu held.
func (j *Job) transition(to State) error {
	for {
		from := j.State()
		if !canTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		if j.state.CompareAndSwap(int32(from), int32(to)) {
			return nil
		}
	}
}

// Snapshot is an immutable copy of a job's observable fields.
type Snapshot struct {
	ID         string
	Input      string
	Output     string
	Mode       Mode
	State      State
	Progress   float64
	Attempts   int
	Media      ffprobe.MediaInfo
	Params     Params
	OutputSize int64
	Err        error
	Diagnostic string
	Submitted  time.Time
	Started    time.Time
	Finished   time.Time
}

// Snapshot copies the job's current state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:         j.ID,
		Input:      j.Input,
		Output:     j.Output,
		Mode:       j.Mode,
		State:      j.State(),
		Progress:   j.Progress(),
		Attempts:   j.Attempts(),
		Media:      j.media,
		Params:     j.params,
		OutputSize: j.outputSize,
		Err:        j.err,
		Diagnostic: j.diagnostic,
		Submitted:  j.submitted,
		Started:    j.started,
		Finished:   j.finished,
	}
}

// Elapsed returns the running time so far, or the total once finished.
func (s Snapshot) Elapsed() time.Duration {
	switch {
	case s.Started.IsZero():
		return 0
	case s.Finished.IsZero():
		return time.Since(s.Started)
	default:
		return s.Finished.Sub(s.Started)
	}
}
