package scheduler

import "time"

// RetryPolicy re-runs failed encodes. Only ffmpeg failures are retried;
// probe and sizing failures are final. MaxAttempts counts the first run.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	return max(p.MaxAttempts, 1)
}

// SubmitOption customizes a single submission.
type SubmitOption func(*submission)

// WithRetry overrides the retry policy for one job.
func WithRetry(policy RetryPolicy) SubmitOption {
	return func(s *submission) {
		s.retry = policy
	}
}
