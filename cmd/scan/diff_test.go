package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/kubelens/internal/ci"
	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/git"
	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

// commitWeb commits content as web.yaml and returns the commit hash.
func commitWeb(t *testing.T, wt *gogit.Worktree, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(wt.Filesystem.Root(), "web.yaml"), []byte(content), 0o644))
	_, err := wt.Add("web.yaml")
	require.NoError(t, err)
	hash, err := wt.Commit("update web", &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestDiffGate(t *testing.T) {
	head, err := os.ReadFile("testdata/web.yaml")
	require.NoError(t, err)

	repoDir := t.TempDir()
	repo, err := gogit.PlainInit(repoDir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	base := commitWeb(t, wt, strings.Replace(string(head), "runAsUser: 0", "runAsUser: 1000", 1))
	commitWeb(t, wt, string(head))

	changes, err := git.NewChangeSet(repoDir, base, "")
	require.NoError(t, err)

	web := filepath.Join(repoDir, "web.yaml")
	other := filepath.Join(repoDir, "other.yaml")
	assert.Equal(t, []string{web}, changedTargets(changes, []string{other, web}, hclog.NewNullLogger()))

	store := findings.NewStore()
	store.Add(web, findings.Finding{ID: "C-0013", Path: "runAsUser", Range: yamlpath.Range{StartRow: 21, EndRow: 21}})
	store.Add(web, findings.Finding{ID: "C-0017", Path: "securityContext", Range: yamlpath.Range{StartRow: 20, EndRow: 20}})

	assert.Equal(t, 1, retainAdded(changes, store))
	list := store.List(web)
	require.Len(t, list, 1)
	assert.Equal(t, "C-0013", list[0].ID)
}

func TestProvenance(t *testing.T) {
	assert.Nil(t, provenance(t.TempDir(), ci.CIEnvironment{}, hclog.NewNullLogger()))

	p := provenance(t.TempDir(), ci.CIEnvironment{
		Kind:          ci.CIGitHub,
		RepositoryURL: "https://github.com/example/manifests",
		CommitHash:    "abc123",
		Branch:        "main",
	}, hclog.NewNullLogger())
	require.NotNil(t, p)
	assert.Equal(t, "https://github.com/example/manifests", p.RepositoryURI)
	assert.Equal(t, "abc123", p.RevisionID)
	assert.Equal(t, "main", p.Branch)
}

func TestResolveDiffBase(t *testing.T) {
	logger := hclog.NewNullLogger()
	assert.Equal(t, "main", resolveDiffBase("main", ci.CIEnvironment{DiffBase: "origin/dev"}, logger))
	assert.Equal(t, "origin/dev", resolveDiffBase("auto", ci.CIEnvironment{DiffBase: "origin/dev"}, logger))
	assert.Equal(t, "", resolveDiffBase("auto", ci.CIEnvironment{}, logger))
	assert.Equal(t, "", resolveDiffBase("", ci.CIEnvironment{DiffBase: "origin/dev"}, logger))
}
