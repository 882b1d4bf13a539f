package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoder()
	c.normalizeQuality()
	c.normalizeSizeTarget()
	c.normalizeScheduler()
	c.normalizeInputs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = defaultLockDir
	}
	if c.Paths.LockDir, err = expandPath(strings.TrimSpace(c.Paths.LockDir)); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoder() {
	if value, ok := os.LookupEnv("VCOMPRESS_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Encoder.FFmpegBinary = value
	}
	if value, ok := os.LookupEnv("VCOMPRESS_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Encoder.FFprobeBinary = value
	}
	c.Encoder.FFmpegBinary = fallback(c.Encoder.FFmpegBinary, defaultFFmpegBinary)
	c.Encoder.FFprobeBinary = fallback(c.Encoder.FFprobeBinary, defaultFFprobeBinary)
	c.Encoder.VideoCodec = fallback(c.Encoder.VideoCodec, defaultVideoCodec)
	c.Encoder.PixelFormat = fallback(c.Encoder.PixelFormat, defaultPixelFormat)
	c.Encoder.AudioCodec = fallback(c.Encoder.AudioCodec, defaultAudioCodec)
	c.Encoder.Container = normalizeExtension(fallback(c.Encoder.Container, defaultContainer))
}

func (c *Config) normalizeQuality() {
	c.Quality.Preset = strings.ToLower(fallback(c.Quality.Preset, defaultPreset))
	c.Quality.Suffix = fallback(c.Quality.Suffix, defaultQualitySuffix)
}

func (c *Config) normalizeSizeTarget() {
	c.SizeTarget.Suffix = fallback(c.SizeTarget.Suffix, defaultSizeSuffix)
	if c.SizeTarget.MaxIterations <= 0 {
		c.SizeTarget.MaxIterations = defaultMaxIterations
	}
}

func (c *Config) normalizeScheduler() {
	if c.Scheduler.ProbeConcurrency <= 0 {
		c.Scheduler.ProbeConcurrency = c.Scheduler.Workers
	}
	if c.Scheduler.StderrTailLines <= 0 {
		c.Scheduler.StderrTailLines = defaultStderrTailLines
	}
}

func (c *Config) normalizeInputs() {
	if len(c.Inputs.Extensions) == 0 {
		c.Inputs.Extensions = append([]string(nil), defaultExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Inputs.Extensions))
	seen := make(map[string]struct{}, len(c.Inputs.Extensions))
	for _, ext := range c.Inputs.Extensions {
		normalized := normalizeExtension(ext)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append([]string(nil), defaultExtensions...)
	}
	c.Inputs.Extensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(fallback(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(fallback(c.Logging.Level, defaultLogLevel))
}

func fallback(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
