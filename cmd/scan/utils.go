package scan

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scan-io-git/kubelens/internal/ci"
	"github.com/scan-io-git/kubelens/internal/config"
	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/git"
	"github.com/scan-io-git/kubelens/internal/images"
	"github.com/scan-io-git/kubelens/internal/output"
	"github.com/scan-io-git/kubelens/internal/sarif"
	"github.com/scan-io-git/kubelens/internal/scanner"

	cmdutil "github.com/scan-io-git/kubelens/internal/cmd"
)

// applyConfig fills the options that were not set on the command line from cfg.
func applyConfig(flags *pflag.FlagSet, options *RunOptionsScan, cfg *config.Config) {
	if !flags.Changed("format") && cfg.Output.Format != "" {
		options.Format = cfg.Output.Format
	}
	if !flags.Changed("pretty") {
		options.Pretty = config.GetBoolValue(cfg, "Output.Pretty", true)
	}
	if !flags.Changed("threads") && cfg.Scan.Jobs > 0 {
		options.Threads = cfg.Scan.Jobs
	}
	if !flags.Changed("framework") && len(cfg.Scan.Frameworks) > 0 {
		options.Frameworks = cfg.Scan.Frameworks
	}
	if !flags.Changed("fail-on") && cfg.Scan.FailOn != "" {
		options.FailOn = cfg.Scan.FailOn
	}
}

// newScanner wires the result sources selected by options into a Scanner.
func newScanner(options *RunOptionsScan, cfg *config.Config, logger hclog.Logger) (*scanner.Scanner, error) {
	var reports scanner.ReportSource
	if options.Results != "" {
		src, err := cmdutil.ReportSource(options.Results)
		if err != nil {
			return nil, err
		}
		reports = src
	}

	var imageScanner images.ImageScanner
	if options.Images != "" {
		imageScanner = images.DirScanner{Dir: options.Images}
	}

	return scanner.New(findings.NewStore(), reports, imageScanner, scanner.Options{
		Frameworks:      options.Frameworks,
		DefaultFixValue: cfg.Scan.DefaultFixValue,
		ImageSeverities: cfg.Scan.ImageSeverities,
		Jobs:            options.Threads,
	}, logger), nil
}

// writeReport renders the scanned files to the output path or stdout.
func writeReport(cmd *cobra.Command, s *scanner.Scanner, opts output.Options, path string, logger hclog.Logger) error {
	ext, err := output.Extension(opts.Format)
	if err != nil {
		return err
	}
	w, dest, err := cmdutil.OpenOutput(cmd.OutOrStdout(), path, "kubelens-report."+ext)
	if err != nil {
		return err
	}
	if err := output.Write(w, s.Store(), s.Sources(), opts, logger); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if dest != cmdutil.Stdout {
		logger.Info("report written", "path", dest, "format", opts.Format)
	}
	return nil
}

func countFailed(results []scanner.Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// changedTargets keeps the targets that gained lines in changes.
func changedTargets(changes *git.ChangeSet, targets []string, logger hclog.Logger) []string {
	var out []string
	for _, t := range targets {
		if changes.Changed(t) {
			out = append(out, t)
			continue
		}
		logger.Debug("skipping unchanged file", "file", t)
	}
	logger.Info("targets limited to changed files", "changed", len(out), "total", len(targets))
	return out
}

// retainAdded drops every finding whose range has no added line.
func retainAdded(changes *git.ChangeSet, store *findings.Store) int {
	dropped := 0
	for _, file := range store.Files() {
		file := file
		dropped += store.Retain(file, func(f findings.Finding) bool {
			return changes.Touches(file, f.Range.StartRow+1, f.Range.EndRow+1)
		})
	}
	return dropped
}

// diffBaseAuto asks for the pull request base of the CI job.
const diffBaseAuto = "auto"

// resolveDiffBase expands diffBaseAuto. Outside a request pipeline the diff
// gate is disabled.
func resolveDiffBase(base string, env ci.CIEnvironment, logger hclog.Logger) string {
	if base != diffBaseAuto {
		return base
	}
	if env.DiffBase == "" {
		logger.Warn("no pull request base found, scanning every target", "ci", env.Kind.String())
		return ""
	}
	logger.Info("diff base detected", "ci", env.Kind.String(), "base", env.DiffBase)
	return env.DiffBase
}

// provenance describes the git checkout at dir. Fields the repository does
// not provide are taken from the CI job. It returns nil when neither knows
// the repository.
func provenance(dir string, env ci.CIEnvironment, logger hclog.Logger) *sarif.Provenance {
	p := &sarif.Provenance{
		RepositoryURI: env.RepositoryURL,
		RevisionID:    env.CommitHash,
		Branch:        env.Branch,
	}

	md, err := git.CollectRepositoryMetadata(dir)
	if err != nil {
		logger.Debug("no repository metadata", "error", err)
	} else {
		if md.RepositoryURL != nil && p.RepositoryURI == "" {
			p.RepositoryURI = *md.RepositoryURL
		}
		if md.CommitHash != nil {
			p.RevisionID = *md.CommitHash
		}
		if md.BranchName != nil && p.Branch == "" {
			p.Branch = *md.BranchName
		}
	}

	if p.RepositoryURI == "" {
		return nil
	}
	return p
}
