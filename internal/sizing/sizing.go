package sizing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInfeasible is returned when no positive video bitrate fits the target.
var ErrInfeasible = errors.New("target size infeasible")

const (
	DefaultMinBitsPerPixel = 0.1
	DefaultScaleStep       = 0.9
	DefaultMaxIterations   = 200
)

// Input describes the source and the requested output size.
type Input struct {
	Width        int
	Height       int
	Duration     float64 // seconds
	TargetBytes  int64
	AudioBitrate int // bits/s
}

// Options tunes the solver. Zero values select the defaults.
type Options struct {
	MinBitsPerPixel float64
	ScaleStep       float64
	MaxIterations   int
}

func (o Options) withDefaults() Options {
	if o.MinBitsPerPixel <= 0 {
		o.MinBitsPerPixel = DefaultMinBitsPerPixel
	}
	if o.ScaleStep <= 0 || o.ScaleStep >= 1 {
		o.ScaleStep = DefaultScaleStep
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Solution is the resolved encode geometry and bitrate.
type Solution struct {
	Width        int
	Height       int
	VideoBitrate int // bits/s
	Scale        float64
	Iterations   int
}

// Scaled reports whether the output frame is smaller than the input.
func (s Solution) Scaled() bool {
	return s.Scale < 1
}

// Solve picks the largest scale (starting at 1.0 and shrinking by
// ScaleStep) whose frame area keeps at least MinBitsPerPixel of video
// bitrate after reserving room for the audio track.
func Solve(in Input, opts Options) (Solution, error) {
	opts = opts.withDefaults()

	switch {
	case in.Duration <= 0 || math.IsNaN(in.Duration) || math.IsInf(in.Duration, 0):
		return Solution{}, fmt.Errorf("%w: duration %.3fs is not positive", ErrInfeasible, in.Duration)
	case in.Width <= 0 || in.Height <= 0:
		return Solution{}, fmt.Errorf("%w: frame %dx%d is not positive", ErrInfeasible, in.Width, in.Height)
	case in.TargetBytes <= 0:
		return Solution{}, fmt.Errorf("%w: target %d bytes is not positive", ErrInfeasible, in.TargetBytes)
	}

	totalBits := float64(in.TargetBytes) * 8
	audioBits := float64(in.AudioBitrate) * in.Duration
	vbr := (totalBits - audioBits) / in.Duration
	if vbr <= 0 {
		return Solution{}, fmt.Errorf("%w: audio at %d b/s for %.1fs already exceeds %d bytes",
			ErrInfeasible, in.AudioBitrate, in.Duration, in.TargetBytes)
	}

	area := float64(in.Width) * float64(in.Height)
	scale := 1.0
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		floor := area * scale * scale * opts.MinBitsPerPixel
		if vbr >= floor {
			sol := Solution{
				Width:        int(float64(in.Width) * scale),
				Height:       int(float64(in.Height) * scale),
				VideoBitrate: int(vbr),
				Scale:        scale,
				Iterations:   iter,
			}
			// ffmpeg reads -b:v 0 and a zero scale dimension as unset.
			if sol.VideoBitrate <= 0 || sol.Width <= 0 || sol.Height <= 0 {
				return Solution{}, fmt.Errorf("%w: %d b/s leaves a %dx%d frame",
					ErrInfeasible, sol.VideoBitrate, sol.Width, sol.Height)
			}
			return sol, nil
		}
		scale *= opts.ScaleStep
	}
	return Solution{}, fmt.Errorf("%w: no scale above %.3g satisfies %.2f bits/pixel at %d b/s",
		ErrInfeasible, scale, opts.MinBitsPerPixel, int(vbr))
}
