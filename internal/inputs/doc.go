// Package inputs expands command-line arguments into the list of video files
// to encode and derives each job's output path.
package inputs
