package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vcompress/internal/config"
)

// LogFileName is the file written inside the configured log directory.
const LogFileName = "vcompress.log"

// Options describes logger construction parameters.
type Options struct {
	Level        string
	Format       string
	OutputPaths  []string
	// FilePath, when set, receives a JSON copy of every record regardless of Format.
	FilePath     string
	RunID        string
	// ConsoleLevel, when set, raises the minimum level of the primary output
	// without affecting the file copy. Used while live progress bars own the terminal.
	ConsoleLevel string
	Development  bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputWriter, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}))
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	consoleLevel := levelVar
	if strings.TrimSpace(opts.ConsoleLevel) != "" {
		consoleLevel = new(slog.LevelVar)
		consoleLevel.Set(max(parseLevel(opts.ConsoleLevel), level))
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, consoleLevel, addSource)
	case "console":
		handler = newPrettyHandler(outputWriter, consoleLevel, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		fileWriter, err := openWriters([]string{path})
		if err != nil {
			return nil, err
		}
		handler = newTeeHandler(handler, newJSONHandler(fileWriter, levelVar, addSource))
	}
	if opts.RunID != "" {
		handler = newRunIDHandler(handler, opts.RunID)
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger using application config defaults. Console
// output goes to stderr so stdout stays free for tables and progress bars;
// the log directory receives a JSON copy tagged with runID.
func NewFromConfig(cfg *config.Config, runID string) (*slog.Logger, error) {
	opts, err := OptionsFromConfig(cfg, runID)
	if err != nil {
		return nil, err
	}
	return New(opts)
}

// OptionsFromConfig derives logger options from cfg, creating the log
// directory when one is configured.
func OptionsFromConfig(cfg *config.Config, runID string) (Options, error) {
	if cfg == nil {
		return Options{Level: "info", Format: "console", RunID: runID}, nil
	}

	var filePath string
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return Options{}, fmt.Errorf("ensure log directory: %w", err)
		}
		filePath = filepath.Join(cfg.Paths.LogDir, LogFileName)
	}

	return Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
		FilePath:    filePath,
		RunID:       runID,
	}, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := ensureLogDir(trimmed); err != nil {
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	if len(writers) == 0 {
		return os.Stderr, nil
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
