// Package report holds the presentation-neutral helpers shared by every
// console view: duration and size formatting, the text progress bar, the
// focus heuristic for long job lists, and the end-of-run summary.
package report
