package job

import (
	"errors"

	"vcompress/internal/media/ffprobe"
	"vcompress/internal/sizing"
)

var (
	// ErrProbe marks jobs whose input could not be probed.
	ErrProbe = ffprobe.ErrProbe
	// ErrInfeasible marks size-target jobs the solver rejected.
	ErrInfeasible = sizing.ErrInfeasible
	// ErrEncode marks ffmpeg failures (non-zero exit or spawn error).
	ErrEncode = errors.New("encode failed")
	// ErrInvalidTransition is returned for state changes the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid job state transition")
)
