package git

import (
	"strings"
)

// RepositoryMetadata describes the checkout a scan ran in.
type RepositoryMetadata struct {
	BranchName     *string
	CommitHash     *string
	RepositoryURL  *string
	RepoRootFolder string
}

// CollectRepositoryMetadata collects the branch, commit hash and origin URL
// of the repository containing sourceFolder.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	repo, root, err := openRepository(sourceFolder)
	if err != nil {
		return &RepositoryMetadata{}, err
	}
	md := &RepositoryMetadata{RepoRootFolder: root}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}

		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			url := strings.TrimSuffix(cfg.URLs[0], ".git")
			md.RepositoryURL = &url
		}
	}

	return md, nil
}
