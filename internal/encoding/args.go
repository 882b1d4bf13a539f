package encoding

import (
	"fmt"
	"strconv"

	"vcompress/internal/config"
	"vcompress/internal/job"
)

// BuildArgs returns the ffmpeg argument list (without the binary) for one
// encode. When streaming is set, machine-readable progress is requested on
// stdout ahead of the output path.
func BuildArgs(enc config.Encoder, input, output string, mode job.Mode, params job.Params, streaming bool) []string {
	args := []string{
		"-y",
		"-i", input,
		"-c:v", enc.VideoCodec,
		"-pix_fmt", enc.PixelFormat,
		"-movflags", "faststart",
	}

	switch mode.(type) {
	case job.Quality:
		args = append(args,
			"-preset", params.Preset,
			"-crf", strconv.Itoa(params.CRF),
			"-c:a", enc.AudioCodec,
			"-b:a", kilobits(params.AudioBitrate),
		)
	case job.SizeTarget:
		args = append(args,
			"-vf", fmt.Sprintf("scale=%d:%d", params.Width, params.Height),
			"-b:v", strconv.Itoa(params.VideoBitrate),
			"-c:a", enc.AudioCodec,
			// Same integer the solver reserved for audio.
			"-b:a", strconv.Itoa(params.AudioBitrate),
		)
	}

	if streaming {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	return append(args, output)
}

func kilobits(bps int) string {
	if bps%1000 == 0 {
		return strconv.Itoa(bps/1000) + "k"
	}
	return strconv.Itoa(bps)
}
