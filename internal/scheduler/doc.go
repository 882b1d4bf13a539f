// Package scheduler runs transcode jobs on a fixed pool of workers.
//
// Submit never blocks; jobs are admitted in submission order and at most
// Options.Workers of them are inside a runner call at once. Each job reaches
// exactly one terminal state and bumps the completed counter exactly once.
// Observers either poll Jobs and Counters or read Events, which is fed from
// an unbounded queue so a slow consumer never stalls a worker.
package scheduler
