package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir  string `toml:"log_dir"`
	LockDir string `toml:"lock_dir"`
}

// Encoder contains the fixed ffmpeg flag groups shared by every job.
type Encoder struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	VideoCodec    string `toml:"video_codec"`
	PixelFormat   string `toml:"pixel_format"`
	AudioCodec    string `toml:"audio_codec"`
	Container     string `toml:"container"`
}

// Quality contains defaults for fixed-quality (CRF) encodes.
type Quality struct {
	CRF          int    `toml:"crf"`
	Preset       string `toml:"preset"`
	AudioBitrate int    `toml:"audio_bitrate"`
	Suffix       string `toml:"suffix"`
}

// SizeTarget contains defaults for target-size encodes and the solver knobs.
type SizeTarget struct {
	TargetMB        float64 `toml:"target_mb"`
	AudioBitrate    int     `toml:"audio_bitrate"`
	MinBitsPerPixel float64 `toml:"min_bits_per_pixel"`
	ScaleStep       float64 `toml:"scale_step"`
	MaxIterations   int     `toml:"max_iterations"`
	Suffix          string  `toml:"suffix"`
}

// Scheduler contains worker pool settings.
type Scheduler struct {
	Workers          int     `toml:"workers"`
	ShortClipSeconds float64 `toml:"short_clip_seconds"`
	RetryAttempts    int     `toml:"retry_attempts"`
	RetryBackoffSecs int     `toml:"retry_backoff_seconds"`
	ExclusiveRun     bool    `toml:"exclusive_run"`
	ProbeConcurrency int     `toml:"probe_concurrency"`
	StderrTailLines  int     `toml:"stderr_tail_lines"`
}

// Inputs controls directory expansion.
type Inputs struct {
	Extensions []string `toml:"extensions"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vcompress.
//
// Configuration sections by subsystem:
//   - Paths: log and lock directories
//   - Encoder: external binaries and fixed codec flags
//   - Quality: CRF mode defaults
//   - SizeTarget: target-size mode defaults and solver constants
//   - Scheduler: worker capacity, short-clip threshold, retry policy
//   - Inputs: directory expansion allow-list
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Encoder    Encoder    `toml:"encoder"`
	Quality    Quality    `toml:"quality"`
	SizeTarget SizeTarget `toml:"size_target"`
	Scheduler  Scheduler  `toml:"scheduler"`
	Inputs     Inputs     `toml:"inputs"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vcompress.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and lock directories when configured.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.LockDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TargetBytes converts the configured target size to bytes (binary megabytes).
func (c *Config) TargetBytes() int64 {
	return int64(c.SizeTarget.TargetMB * 1024 * 1024)
}

// IsVideoExtension reports whether ext (with leading dot, any case) is in the allow-list.
func (c *Config) IsVideoExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	for _, allowed := range c.Inputs.Extensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
