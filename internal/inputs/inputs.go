package inputs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"vcompress/internal/config"
	"vcompress/internal/job"
)

// Skipped records an input argument (or walked file) that was not queued.
type Skipped struct {
	Path   string
	Reason string
}

// Result is the outcome of expanding command-line inputs.
type Result struct {
	Files   []string
	Skipped []Skipped
}

// Discover expands paths into video files. Regular files must carry an
// allowed extension; directories are walked recursively and contribute every
// allowed file except outputs this tool already produced. Duplicates are
// removed while keeping first-seen order.
func Discover(cfg *config.Config, paths []string) (Result, error) {
	var res Result
	seen := make(map[string]struct{})
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		res.Files = append(res.Files, abs)
	}

	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				res.Skipped = append(res.Skipped, Skipped{Path: path, Reason: "not found"})
				continue
			}
			return Result{}, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if !cfg.IsVideoExtension(filepath.Ext(path)) {
				res.Skipped = append(res.Skipped, Skipped{Path: path, Reason: "unsupported extension"})
				continue
			}
			add(path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				res.Skipped = append(res.Skipped, Skipped{Path: p, Reason: walkErr.Error()})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !cfg.IsVideoExtension(filepath.Ext(p)) {
				return nil
			}
			if IsOutputName(cfg, p) {
				res.Skipped = append(res.Skipped, Skipped{Path: p, Reason: "previous output"})
				return nil
			}
			found = append(found, p)
			return nil
		})
		if err != nil {
			return Result{}, fmt.Errorf("walk %s: %w", path, err)
		}
		slices.Sort(found)
		for _, p := range found {
			add(p)
		}
	}
	return res, nil
}

// OutputPath places the encoded file next to input: <stem><suffix><container>.
func OutputPath(cfg *config.Config, input string, mode job.Mode) string {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+Suffix(cfg, mode)+cfg.Encoder.Container)
}

// Target pairs an input with the output one mode writes for it.
type Target struct {
	Input  string
	Output string
	Mode   job.Mode
}

// Targets expands files across modes. Inputs that differ only by extension
// share an output name; the first claims it and later ones are skipped. An
// output that is itself one of the inputs is never written.
func Targets(cfg *config.Config, files []string, modes []job.Mode) ([]Target, []Skipped) {
	var (
		targets []Target
		skipped []Skipped
	)
	claimed := make(map[string]string, len(files)*len(modes))
	queued := make(map[string]struct{}, len(files))
	for _, file := range files {
		queued[file] = struct{}{}
	}
	for _, file := range files {
		for _, mode := range modes {
			output := OutputPath(cfg, file, mode)
			if _, ok := queued[output]; ok {
				skipped = append(skipped, Skipped{
					Path:   file,
					Reason: fmt.Sprintf("%s output would overwrite input %s", mode.Name(), output),
				})
				continue
			}
			if owner, ok := claimed[output]; ok {
				skipped = append(skipped, Skipped{
					Path:   file,
					Reason: fmt.Sprintf("%s output collides with %s", mode.Name(), owner),
				})
				continue
			}
			claimed[output] = file
			targets = append(targets, Target{Input: file, Output: output, Mode: mode})
		}
	}
	return targets, skipped
}

// Suffix returns the filename suffix configured for mode.
func Suffix(cfg *config.Config, mode job.Mode) string {
	if _, ok := mode.(job.SizeTarget); ok {
		return cfg.SizeTarget.Suffix
	}
	return cfg.Quality.Suffix
}

// IsOutputName reports whether path looks like a file this tool wrote.
func IsOutputName(cfg *config.Config, path string) bool {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), cfg.Encoder.Container) {
		return false
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, suffix := range []string{cfg.Quality.Suffix, cfg.SizeTarget.Suffix} {
		if suffix != "" && strings.HasSuffix(stem, suffix) {
			return true
		}
	}
	return false
}
