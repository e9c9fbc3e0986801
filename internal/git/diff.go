package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ChangeSet holds the lines added between two revisions, keyed by the
// slash-separated path relative to the repository root.
type ChangeSet struct {
	root  string
	added map[string]map[int]string
}

// NewChangeSet computes the lines added to every file between baseRev and
// headRev of the repository containing repoPath. Revisions accept anything
// git rev-parse does, e.g. branch names, tags or HEAD~2. An empty headRev
// means HEAD.
func NewChangeSet(repoPath, baseRev, headRev string) (*ChangeSet, error) {
	repo, root, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}
	if headRev == "" {
		headRev = "HEAD"
	}
	added, err := addedLines(repo, baseRev, headRev)
	if err != nil {
		return nil, err
	}
	return &ChangeSet{root: root, added: added}, nil
}

// Root is the worktree root of the repository.
func (c *ChangeSet) Root() string {
	return c.root
}

// Files returns the number of files with added lines.
func (c *ChangeSet) Files() int {
	return len(c.added)
}

// Changed reports whether file gained lines between the two revisions.
func (c *ChangeSet) Changed(file string) bool {
	rel, ok := relativeTo(c.root, file)
	return ok && len(c.added[rel]) > 0
}

// Touches reports whether any of the 1-based lines first..last of file was
// added.
func (c *ChangeSet) Touches(file string, first, last int) bool {
	rel, ok := relativeTo(c.root, file)
	if !ok {
		return false
	}
	lines := c.added[rel]
	for line := first; line <= last; line++ {
		if _, ok := lines[line]; ok {
			return true
		}
	}
	return false
}

// AddedLines returns, for every file touched between baseRev and headRev, a map of
// new-file line numbers to the textual content that was added. Returned line
// numbers are 1-based and only include additions. Deleted files and paths
// outside the optional filter list are skipped.
func AddedLines(repoPath, baseRev, headRev string, filters []string) (map[string]map[int]string, error) {
	repo, _, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}
	added, err := addedLines(repo, baseRev, headRev)
	if err != nil {
		return nil, err
	}

	allowed := buildFilterSet(filters)
	if allowed == nil {
		return added, nil
	}
	for path := range added {
		if !allowed[path] {
			delete(added, path)
		}
	}
	return added, nil
}

func addedLines(repo *git.Repository, baseRev, headRev string) (map[string]map[int]string, error) {
	if baseRev == "" || headRev == "" {
		return nil, ErrEmptyRevision
	}

	baseTree, err := treeAt(repo, baseRev)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base %q: %w", baseRev, err)
	}
	headTree, err := treeAt(repo, headRev)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head %q: %w", headRev, err)
	}

	patch, err := baseTree.Patch(headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	result := make(map[string]map[int]string)
	for _, fp := range patch.FilePatches() {
		_, to := fp.Files()
		// deleted and binary files have nothing to report
		if to == nil || fp.IsBinary() {
			continue
		}

		added := make(map[int]string)
		lineNo := 1
		for _, chunk := range fp.Chunks() {
			lines := chunkLines(chunk.Content())
			switch chunk.Type() {
			case fdiff.Add:
				for _, line := range lines {
					added[lineNo] = line
					lineNo++
				}
			case fdiff.Equal:
				lineNo += len(lines)
			}
		}

		if len(added) > 0 {
			result[to.Path()] = added
		}
	}
	return result, nil
}

func treeAt(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// chunkLines splits chunk content into lines. The final line may lack its
// terminator at the end of a file.
func chunkLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// buildFilterSet returns an O(1) lookup table for the provided filter slice.
// Nil is returned when no filters are supplied.
func buildFilterSet(filters []string) map[string]bool {
	if len(filters) == 0 {
		return nil
	}
	set := make(map[string]bool, len(filters))
	for _, f := range filters {
		set[f] = true
	}
	return set
}
