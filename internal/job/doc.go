// Package job models a single transcode: one input file, one encode mode,
// and the lifecycle queued -> running -> completed | failed.
//
// Preparation failures (probe or size solving) move a job straight from
// queued to failed. Terminal states are final; any other transition returns
// ErrInvalidTransition. The owning worker is the only writer while state and
// progress may be polled concurrently from any goroutine.
package job
