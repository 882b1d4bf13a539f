// Package sizing solves for the video bitrate and output frame size that hit
// a target file size.
//
// The video budget is whatever remains of TargetBytes*8 after the audio track
// (AudioBitrate*Duration), spread over the duration. If that budget leaves
// fewer than MinBitsPerPixel per frame pixel the frame is shrunk by ScaleStep
// and checked again. Output dimensions are truncated, never rounded, so they
// never exceed the input.
package sizing
