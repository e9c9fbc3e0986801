// Package ci reads the metadata CI providers expose to jobs.
package ci

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CIKind represents the type of CI.
type CIKind int

const (
	// CIUnknown indicates the CI provider could not be identified.
	CIUnknown CIKind = iota
	// CIGitHub identifies GitHub CI environments.
	CIGitHub
	// CIGitLab identifies GitLab CI environments.
	CIGitLab
	// CIBitbucket identifies Bitbucket CI environments.
	CIBitbucket
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// CIEnvironment captures the job metadata a scan needs.
type CIEnvironment struct {
	Kind          CIKind
	CI            bool
	CommitHash    string
	Branch        string
	RepositoryURL string
	// DiffBase is the revision a pull or merge request is compared with.
	// Empty outside request pipelines.
	DiffBase string
}

// String returns the human-readable string representation of a CIKind.
func (c CIKind) String() string {
	switch c {
	case CIGitHub:
		return "github"
	case CIGitLab:
		return "gitlab"
	case CIBitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// ParseCIKind converts a string identifier into a CIKind value.
func ParseCIKind(raw string) (CIKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "github":
		return CIGitHub, nil
	case "gitlab":
		return CIGitLab, nil
	case "bitbucket":
		return CIBitbucket, nil
	default:
		return CIUnknown, fmt.Errorf("unsupported ci kind %q", raw)
	}
}

// Detect reads the CI metadata of the current process.
func Detect() CIEnvironment {
	return detectWithLookup(os.Getenv)
}

func detectWithLookup(lookup LookupFunc) CIEnvironment {
	if lookup == nil {
		lookup = os.Getenv
	}
	ci, _ := strconv.ParseBool(lookup("CI"))

	switch {
	case lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "":
		return extractGitHubVariables(lookup, ci)
	case strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "":
		return extractGitLabVariables(lookup, ci)
	case lookup("BITBUCKET_WORKSPACE") != "" || lookup("BITBUCKET_REPO_SLUG") != "":
		return extractBitbucketVariables(lookup, ci)
	default:
		return CIEnvironment{Kind: CIUnknown, CI: ci}
	}
}

// See https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func extractGitHubVariables(lookup LookupFunc, ci bool) CIEnvironment {
	env := CIEnvironment{
		Kind:       CIGitHub,
		CI:         ci,
		CommitHash: lookup("GITHUB_SHA"),
		Branch:     lookup("GITHUB_HEAD_REF"),
	}
	if env.Branch == "" {
		env.Branch = lookup("GITHUB_REF_NAME")
	}
	if server, repo := lookup("GITHUB_SERVER_URL"), lookup("GITHUB_REPOSITORY"); server != "" && repo != "" {
		env.RepositoryURL = strings.TrimSuffix(server, "/") + "/" + repo
	}
	// only set for pull_request events; the base is fetched as a remote branch
	if base := lookup("GITHUB_BASE_REF"); base != "" {
		env.DiffBase = "origin/" + base
	}
	return env
}

// See https://docs.gitlab.com/ci/variables/predefined_variables/.
func extractGitLabVariables(lookup LookupFunc, ci bool) CIEnvironment {
	env := CIEnvironment{
		Kind:          CIGitLab,
		CI:            ci,
		CommitHash:    lookup("CI_COMMIT_SHA"),
		Branch:        lookup("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME"),
		RepositoryURL: lookup("CI_PROJECT_URL"),
		DiffBase:      lookup("CI_MERGE_REQUEST_DIFF_BASE_SHA"),
	}
	if env.Branch == "" {
		env.Branch = lookup("CI_COMMIT_REF_NAME")
	}
	return env
}

// See https://support.atlassian.com/bitbucket-cloud/docs/variables-and-secrets/.
func extractBitbucketVariables(lookup LookupFunc, ci bool) CIEnvironment {
	env := CIEnvironment{
		Kind:          CIBitbucket,
		CI:            ci,
		CommitHash:    lookup("BITBUCKET_COMMIT"),
		Branch:        lookup("BITBUCKET_BRANCH"),
		RepositoryURL: lookup("BITBUCKET_GIT_HTTP_ORIGIN"),
	}
	if dest := lookup("BITBUCKET_PR_DESTINATION_BRANCH"); dest != "" {
		env.DiffBase = "origin/" + dest
	}
	return env
}
