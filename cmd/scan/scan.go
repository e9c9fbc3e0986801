package scan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/kubelens/cmd/version"
	"github.com/scan-io-git/kubelens/internal/ci"
	"github.com/scan-io-git/kubelens/internal/config"
	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/git"
	"github.com/scan-io-git/kubelens/internal/logger"
	"github.com/scan-io-git/kubelens/internal/output"
	"github.com/scan-io-git/kubelens/internal/sarif"
	"github.com/scan-io-git/kubelens/internal/scanner"
	"github.com/scan-io-git/kubelens/pkg/shared/errors"

	cmdutil "github.com/scan-io-git/kubelens/internal/cmd"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	Results    string
	Images     string
	Format     string
	OutputPath string
	Baseline   string
	DiffBase   string
	DiffHead   string
	Frameworks []string
	FailOn     string
	Threads    int
	Pretty     bool
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Localize kubescape results in a manifest
  kubescape scan deploy/web.yaml --format json --output results.json
  kubelens scan --results results.json deploy/web.yaml

  # Scan every manifest with per-file results and prepared image reports
  kubelens scan --results ks-results/ --images grype-reports/ 'deploy/**/*.yaml' '**/Dockerfile'

  # Write SARIF compared against the previous run and fail on warnings
  kubelens scan --results ks-results/ --format sarif --output reports/ --baseline reports/previous.sarif --fail-on warning 'deploy/**/*.yaml'

  # Only report findings on lines added since the main branch
  kubelens scan --results ks-results/ --diff-base main 'deploy/**/*.yaml'

  # Same for the target branch of the current pull request in CI
  kubelens scan --results ks-results/ --diff-base auto 'deploy/**/*.yaml'`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan --results/-r PATH [--images/-i DIR] [--format/-f text|json|sarif] [--output/-o PATH] [--baseline PATH] [--diff-base REV [--diff-head REV]] [--framework NAME]... [--fail-on SEVERITY] [-j THREADS_NUMBER] FILE_OR_GLOB...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Map scanner findings onto manifest and Dockerfile ranges",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if AppConfig == nil {
		AppConfig = config.Default()
	}
	logger := logger.NewStderrLogger(AppConfig, "core-scan")
	applyConfig(cmd.Flags(), &scanOptions, AppConfig)

	if err := validateScanArgs(&scanOptions, args); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	targets, err := scanner.ExpandTargets(args, AppConfig.Scan.Included)
	if err != nil {
		logger.Error("failed to prepare scan targets", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	env := ci.Detect()
	scanOptions.DiffBase = resolveDiffBase(scanOptions.DiffBase, env, logger)

	var changes *git.ChangeSet
	if scanOptions.DiffBase != "" {
		if changes, err = git.NewChangeSet(".", scanOptions.DiffBase, scanOptions.DiffHead); err != nil {
			logger.Error("failed to compute changed lines", "base", scanOptions.DiffBase, "error", err)
			return errors.NewCommandError(err, errors.ExitFailure)
		}
		targets = changedTargets(changes, targets, logger)
	}

	s, err := newScanner(&scanOptions, AppConfig, logger)
	if err != nil {
		logger.Error("failed to prepare scanner", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}
	results := s.ScanFiles(cmd.Context(), targets)
	if changes != nil {
		dropped := retainAdded(changes, s.Store())
		logger.Debug("findings outside added lines dropped", "count", dropped)
	}

	opts := output.Options{
		Format:     scanOptions.Format,
		Pretty:     scanOptions.Pretty,
		Version:    version.CoreVersion,
		Provenance: provenance(".", env, logger),
	}
	if scanOptions.Baseline != "" {
		if opts.Baseline, err = sarif.ReadBaseline(scanOptions.Baseline); err != nil {
			logger.Error("failed to read baseline", "error", err)
			return errors.NewCommandError(err, errors.ExitFailure)
		}
	}

	if err := writeReport(cmd, s, opts, scanOptions.OutputPath, logger); err != nil {
		logger.Error("failed to write report", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	if failed := countFailed(results); failed > 0 {
		return errors.NewCommandError(fmt.Errorf("%d of %d file(s) could not be scanned", failed, len(results)), errors.ExitFailure)
	}

	if severity, ok := failOn(scanOptions.FailOn); ok {
		if n := s.Store().CountAtLeast(severity); n > 0 {
			return errors.NewCommandError(fmt.Errorf("%d finding(s) at or above %s", n, severity), errors.ExitFindings)
		}
	}

	logger.Info("scan command completed successfully", "files", len(results))
	return nil
}

func failOn(level string) (findings.Severity, bool) {
	return config.Scan{FailOn: level}.FailOnSeverity()
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.Results, "results", "r", "", "Kubescape JSON results: one file for every target or a directory of <name>.json files.")
	ScanCmd.Flags().StringVarP(&scanOptions.Images, "images", "i", "", "Directory of grype JSON reports named after the scanned images.")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", config.DefaultFormat, "Report format: text, json or sarif.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Defaults to stdout.")
	ScanCmd.Flags().StringVar(&scanOptions.Baseline, "baseline", "", "SARIF report of an earlier scan used to set baseline states.")
	ScanCmd.Flags().StringVar(&scanOptions.DiffBase, "diff-base", "", "Only scan files changed since this git revision and report findings on added lines. 'auto' uses the pull request base of the CI job.")
	ScanCmd.Flags().StringVar(&scanOptions.DiffHead, "diff-head", "", "Git revision compared with --diff-base. Defaults to HEAD.")
	ScanCmd.Flags().StringSliceVar(&scanOptions.Frameworks, "framework", nil, "Only report controls of these kubescape frameworks.")
	ScanCmd.Flags().StringVar(&scanOptions.FailOn, "fail-on", config.FailOnNone, "Exit with code 1 when a finding reaches this severity: information, warning, error or none.")
	ScanCmd.Flags().BoolVar(&scanOptions.Pretty, "pretty", true, "Indent JSON and SARIF reports.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
	ScanCmd.Flags().IntVarP(&scanOptions.Threads, "threads", "j", config.DefaultJobs, "Number of concurrent threads to use.")
}
