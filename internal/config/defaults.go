package config

const (
	defaultConfigPath       = "~/.config/vcompress/config.toml"
	defaultLogDir           = "~/.local/share/vcompress/logs"
	defaultLockDir          = "~/.local/share/vcompress"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultVideoCodec       = "libx264"
	defaultPixelFormat      = "yuv420p"
	defaultAudioCodec       = "aac"
	defaultContainer        = ".mp4"
	defaultCRF              = 30
	defaultPreset           = "slow"
	defaultQualityAudioBR   = 128_000
	defaultQualitySuffix    = "_compressed"
	defaultTargetMB         = 4.5
	defaultSizeAudioBR      = 64_000
	defaultMinBitsPerPixel  = 0.1
	defaultScaleStep        = 0.9
	defaultMaxIterations    = 200
	defaultSizeSuffix       = "_smaller"
	defaultWorkers          = 4
	defaultShortClipSeconds = 2.0
	defaultProbeConcurrency = 4
	defaultStderrTailLines  = 20
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

var defaultExtensions = []string{".mp4", ".mkv", ".avi", ".mov", ".flv", ".wmv", ".webm"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			LockDir: defaultLockDir,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			PixelFormat:   defaultPixelFormat,
			AudioCodec:    defaultAudioCodec,
			Container:     defaultContainer,
		},
		Quality: Quality{
			CRF:          defaultCRF,
			Preset:       defaultPreset,
			AudioBitrate: defaultQualityAudioBR,
			Suffix:       defaultQualitySuffix,
		},
		SizeTarget: SizeTarget{
			TargetMB:        defaultTargetMB,
			AudioBitrate:    defaultSizeAudioBR,
			MinBitsPerPixel: defaultMinBitsPerPixel,
			ScaleStep:       defaultScaleStep,
			MaxIterations:   defaultMaxIterations,
			Suffix:          defaultSizeSuffix,
		},
		Scheduler: Scheduler{
			Workers:          defaultWorkers,
			ShortClipSeconds: defaultShortClipSeconds,
			ProbeConcurrency: defaultProbeConcurrency,
			StderrTailLines:  defaultStderrTailLines,
		},
		Inputs: Inputs{
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
