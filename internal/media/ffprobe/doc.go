// Package ffprobe reads the handful of media properties the encoder needs.
//
// Two requests are issued per file: container duration (format=duration) and
// the first video stream's width, height, bit_rate and codec_name. Stream
// output is parsed by key so field order does not matter. Missing or
// non-numeric durations and bitrates collapse to zero; missing dimensions or a
// non-zero exit surface as a *ProbeError matching ErrProbe.
package ffprobe
