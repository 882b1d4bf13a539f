package encoding

import (
	"fmt"
	"log/slog"

	"vcompress/internal/config"
	"vcompress/internal/job"
	"vcompress/internal/logging"
	"vcompress/internal/media/ffprobe"
	"vcompress/internal/sizing"
)

// Plan derives encode parameters for mode from the probed media.
func Plan(cfg *config.Config, mode job.Mode, media ffprobe.MediaInfo, logger *slog.Logger) (job.Params, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	switch m := mode.(type) {
	case job.Quality:
		return job.Params{
			CRF:          m.CRF,
			Preset:       m.Preset,
			AudioBitrate: cfg.Quality.AudioBitrate,
		}, nil
	case job.SizeTarget:
		audio := cfg.SizeTarget.AudioBitrate
		sol, err := sizing.Solve(sizing.Input{
			Width:        media.Width,
			Height:       media.Height,
			Duration:     media.Duration,
			TargetBytes:  m.TargetBytes,
			AudioBitrate: audio,
		}, sizing.Options{
			MinBitsPerPixel: cfg.SizeTarget.MinBitsPerPixel,
			ScaleStep:       cfg.SizeTarget.ScaleStep,
			MaxIterations:   cfg.SizeTarget.MaxIterations,
		})
		if err != nil {
			return job.Params{}, err
		}
		logger.Debug("size target solved",
			logging.String(logging.FieldDecisionType, "size_target_scale"),
			logging.String("decision_result", fmt.Sprintf("%dx%d", sol.Width, sol.Height)),
			logging.Float64("scale", sol.Scale),
			logging.Int("video_bitrate", sol.VideoBitrate),
			logging.Int("iterations", sol.Iterations),
		)
		return job.Params{
			Width:        sol.Width,
			Height:       sol.Height,
			Scale:        sol.Scale,
			VideoBitrate: sol.VideoBitrate,
			AudioBitrate: audio,
		}, nil
	default:
		return job.Params{}, fmt.Errorf("plan: unsupported mode %T", mode)
	}
}
