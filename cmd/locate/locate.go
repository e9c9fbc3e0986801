package locate

import (
	"github.com/spf13/cobra"

	"github.com/scan-io-git/kubelens/internal/config"
	"github.com/scan-io-git/kubelens/internal/logger"
	"github.com/scan-io-git/kubelens/pkg/shared/errors"
	"github.com/scan-io-git/kubelens/pkg/shared/files"

	cmdutil "github.com/scan-io-git/kubelens/internal/cmd"
)

// RunOptionsLocate holds the arguments for the locate command.
type RunOptionsLocate struct {
	File     string
	Value    string
	Resource string
	Format   string
}

// Global variables for configuration and command arguments
var (
	AppConfig          *config.Config
	locateOptions      RunOptionsLocate
	exampleLocateUsage = `  # Print where a path is written in a manifest
  kubelens locate --file deploy/web.yaml spec.template.spec.containers[0].image

  # Print the text that would add a missing path with a value
  kubelens locate --file deploy/web.yaml --value true spec.template.spec.containers[0].securityContext.readOnlyRootFilesystem

  # Look the path up in one document of a multi-document file
  kubelens locate --file deploy/all.yaml --resource apps/v1/shop/Deployment/web --format json spec.replicas`
)

// LocateCmd represents the locate command.
var LocateCmd = &cobra.Command{
	Use:                   "locate --file/-f PATH [--value/-v VALUE] [--resource/-r ID] [--format text|json] YAML_PATH...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleLocateUsage,
	Short:                 "Resolve structural paths in a YAML file and print their ranges and fixes",
	RunE:                  runLocateCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runLocateCommand executes the locate command.
func runLocateCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewStderrLogger(AppConfig, "core-locate")

	if err := validateLocateArgs(&locateOptions, args); err != nil {
		logger.Error("invalid locate arguments", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	lines, err := files.ReadLines(locateOptions.File)
	if err != nil {
		logger.Error("failed to read file", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	results, err := locateAll(lines, args, locateOptions)
	if err != nil {
		logger.Error("failed to locate paths", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	if err := render(cmd.OutOrStdout(), results, locateOptions.Format); err != nil {
		return errors.NewCommandError(err, errors.ExitFailure)
	}
	logger.Debug("locate command completed", "paths", len(results))
	return nil
}

// Initialize flags for the locate command.
func init() {
	LocateCmd.Flags().StringVarP(&locateOptions.File, "file", "f", "", "Path to the YAML file.")
	LocateCmd.Flags().StringVarP(&locateOptions.Value, "value", "v", "", "Leaf value used by the fix of a missing path.")
	LocateCmd.Flags().StringVarP(&locateOptions.Resource, "resource", "r", "", "Kubescape resource id selecting one document of a multi-document file.")
	LocateCmd.Flags().StringVar(&locateOptions.Format, "format", formatText, "Output format: text or json.")
	LocateCmd.Flags().BoolP("help", "h", false, "Show help for the locate command.")
}
