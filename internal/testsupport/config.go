package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vcompress/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose log and lock directories live under a
// per-test temp directory. Options run in order after the defaults are set.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LockDir = filepath.Join(base, "lock")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithWorkers overrides the scheduler capacity.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scheduler.Workers = n
	}
}

// WithFFmpegScript installs a /bin/sh stub as the configured ffmpeg binary.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.FFmpegBinary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "ffmpeg", body)
	}
}

// WithFFprobeScript installs a /bin/sh stub as the configured ffprobe binary.
func WithFFprobeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.FFprobeBinary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "ffprobe", body)
	}
}

// WithStubbedBinaries writes no-op executables for the provided names and
// prepends their directory to PATH. With no names, ffmpeg and ffprobe are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "path-bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
