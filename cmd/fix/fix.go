package fix

import (
	"github.com/spf13/cobra"

	"github.com/scan-io-git/kubelens/internal/config"
	"github.com/scan-io-git/kubelens/internal/logger"
	"github.com/scan-io-git/kubelens/pkg/shared/errors"

	cmdutil "github.com/scan-io-git/kubelens/internal/cmd"
)

// RunOptionsFix holds the arguments for the fix command.
type RunOptionsFix struct {
	Results    string
	Frameworks []string
	DryRun     bool
}

// Global variables for configuration and command arguments
var (
	AppConfig       *config.Config
	fixOptions      RunOptionsFix
	exampleFixUsage = `  # Apply every suggested fix to a manifest
  kubelens fix --results results.json deploy/web.yaml

  # Print the fixed manifest instead of rewriting it
  kubelens fix --results ks-results/ --dry-run deploy/web.yaml`
)

// FixCmd represents the fix command.
var FixCmd = &cobra.Command{
	Use:                   "fix --results/-r PATH [--framework NAME]... [--dry-run] FILE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFixUsage,
	Short:                 "Apply the fixes suggested by kubescape to a manifest",
	RunE:                  runFixCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runFixCommand executes the fix command.
func runFixCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}
	if AppConfig == nil {
		AppConfig = config.Default()
	}

	logger := logger.NewStderrLogger(AppConfig, "core-fix")

	if err := validateFixArgs(&fixOptions, args); err != nil {
		logger.Error("invalid fix arguments", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}
	if len(fixOptions.Frameworks) == 0 {
		fixOptions.Frameworks = AppConfig.Scan.Frameworks
	}

	applied, err := fixFile(cmd.Context(), cmd.OutOrStdout(), args[0], &fixOptions, AppConfig, logger)
	if err != nil {
		logger.Error("fix command failed", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	logger.Info("fix command completed successfully", "file", args[0], "applied", applied, "dry-run", fixOptions.DryRun)
	return nil
}

// Initialize flags for the fix command.
func init() {
	FixCmd.Flags().StringVarP(&fixOptions.Results, "results", "r", "", "Kubescape JSON results: one file or a directory of <name>.json files.")
	FixCmd.Flags().StringSliceVar(&fixOptions.Frameworks, "framework", nil, "Only apply fixes of controls in these kubescape frameworks.")
	FixCmd.Flags().BoolVar(&fixOptions.DryRun, "dry-run", false, "Print the fixed file instead of writing it.")
	FixCmd.Flags().BoolP("help", "h", false, "Show help for the fix command.")
}
