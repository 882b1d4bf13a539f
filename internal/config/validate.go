package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateSizeTarget(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateQuality() error {
	if c.Quality.CRF < 0 || c.Quality.CRF > 51 {
		return fmt.Errorf("quality.crf must be between 0 and 51, got %d", c.Quality.CRF)
	}
	if c.Quality.AudioBitrate <= 0 {
		return errors.New("quality.audio_bitrate must be positive (bits per second)")
	}
	return nil
}

func (c *Config) validateSizeTarget() error {
	if c.SizeTarget.TargetMB <= 0 {
		return errors.New("size_target.target_mb must be positive")
	}
	if c.SizeTarget.AudioBitrate <= 0 {
		return errors.New("size_target.audio_bitrate must be positive (bits per second)")
	}
	if c.SizeTarget.MinBitsPerPixel <= 0 {
		return errors.New("size_target.min_bits_per_pixel must be positive")
	}
	if c.SizeTarget.ScaleStep <= 0 || c.SizeTarget.ScaleStep >= 1 {
		return errors.New("size_target.scale_step must be between 0 and 1 (exclusive)")
	}
	if c.Quality.Suffix == c.SizeTarget.Suffix {
		return errors.New("quality.suffix and size_target.suffix must differ")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if err := ensurePositiveMap(map[string]int{
		"scheduler.workers":           c.Scheduler.Workers,
		"scheduler.probe_concurrency": c.Scheduler.ProbeConcurrency,
	}); err != nil {
		return err
	}
	if c.Scheduler.ShortClipSeconds < 0 {
		return errors.New("scheduler.short_clip_seconds must be >= 0")
	}
	if c.Scheduler.RetryAttempts < 0 {
		return errors.New("scheduler.retry_attempts must be >= 0")
	}
	if c.Scheduler.RetryBackoffSecs < 0 {
		return errors.New("scheduler.retry_backoff_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
