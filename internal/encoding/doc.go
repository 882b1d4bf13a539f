// Package encoding turns a queued job into an ffmpeg run.
//
// Runner.Prepare probes the input and fixes the job's parameters (CRF and
// preset, or the solved size-target bitrate and frame). Runner.Encode builds
// the argument list, streams `-progress pipe:1` output through RelayProgress
// for clips longer than the short-clip threshold, keeps the tail of stderr
// for diagnostics, and reports the output size on success.
package encoding
