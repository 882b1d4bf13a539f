package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"vcompress/internal/config"
	"vcompress/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirs checks every distinct parent directory of the planned outputs.
func CheckOutputDirs(outputs []string) []Result {
	seen := make(map[string]struct{}, len(outputs))
	dirs := make([]string, 0, len(outputs))
	for _, out := range outputs {
		dir := filepath.Dir(out)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	results := make([]Result, 0, len(dirs))
	for _, dir := range dirs {
		results = append(results, CheckDirectoryAccess("Output directory", dir))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries for the given config.
// Both the compress and status commands use this to avoid duplicating
// the requirements list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}
