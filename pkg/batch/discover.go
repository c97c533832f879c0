// Package batch merges stored popup template records in bulk. Records are
// discovered with doublestar globs and merged on a worker pool.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude matches every JSON file below the root.
var DefaultInclude = []string{"**/*.json"}

// DefaultExclude skips dependency, VCS and project-config directories.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/.popupkit/**",
}

// Discover walks root and returns the files matching any include pattern and
// no exclude pattern. Patterns are matched against slash-separated paths
// relative to root. An empty include list matches every file.
func Discover(root string, include, exclude []string) ([]string, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if matchAny(exclude, relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !Match(relPath, include, exclude) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether the slash-separated relative path is selected by the
// include and exclude patterns.
func Match(relPath string, include, exclude []string) bool {
	if matchAny(exclude, relPath) {
		return false
	}
	return len(include) == 0 || matchAny(include, relPath)
}

func matchAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.Match(pattern, relPath); m {
			return true
		}
	}
	return false
}
