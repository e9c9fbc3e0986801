package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// openRepository opens the repository containing path, searching parent
// folders for the .git directory.
func openRepository(path string) (*git.Repository, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("source folder is not set")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotRepository, path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open repository %q: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open worktree of %q: %w", path, err)
	}
	return repo, filepath.Clean(wt.Filesystem.Root()), nil
}

// relativeTo returns file relative to root in slash form, or false when file
// lies outside root.
func relativeTo(root, file string) (string, bool) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
