package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoTargets is returned when the arguments match no file.
var ErrNoTargets = errors.New("no files to scan")

// ExpandTargets turns file names and doublestar globs into a sorted list of
// distinct files. Directories are skipped; include, when set, filters the
// result.
func ExpandTargets(patterns []string, include func(string) bool) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return
		}
		if include != nil && !include(filepath.ToSlash(path)) {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[{") {
			if _, err := os.Stat(p); err != nil {
				return nil, fmt.Errorf("failed to read target '%s': %w", p, err)
			}
			add(p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern '%s': %w", p, err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoTargets
	}
	sort.Strings(out)
	return out, nil
}
