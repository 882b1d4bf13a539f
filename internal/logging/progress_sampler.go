package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when a job changes state or its completion fraction crosses a step boundary.
type ProgressSampler struct {
	step       float64
	lastState  string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits each time the fraction
// crosses a multiple of step (default 0.1) or the state changes.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 || step > 1 {
		step = 0.1
	}
	return &ProgressSampler{step: step, lastBucket: -1}
}

// ShouldLog reports whether a progress observation should be logged. A
// negative fraction means unknown and only state changes are considered.
func (s *ProgressSampler) ShouldLog(fraction float64, state string) bool {
	if s == nil {
		return true
	}
	state = strings.TrimSpace(state)
	emit := false
	if state != "" && state != s.lastState {
		s.lastState = state
		s.lastBucket = -1
		emit = true
	}
	if fraction >= 0 {
		if fraction > 1 {
			fraction = 1
		}
		// Epsilon keeps 0.3 from landing in bucket 2 through float rounding.
		bucket := int(fraction/s.step + 1e-9)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state, e.g. when a job is retried.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastState = ""
	s.lastBucket = -1
}
