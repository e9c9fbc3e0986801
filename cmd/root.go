package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/kubelens/cmd/fix"
	"github.com/scan-io-git/kubelens/cmd/locate"
	"github.com/scan-io-git/kubelens/cmd/scan"
	"github.com/scan-io-git/kubelens/cmd/version"
	"github.com/scan-io-git/kubelens/internal/config"
	"github.com/scan-io-git/kubelens/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "kubelens [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Kubelens maps Kubescape results back to YAML source.",
		Long: `Kubelens localizes Kubescape control results and container image vulnerabilities
	in Kubernetes manifests and Dockerfiles, reports them as text, JSON or SARIF
	and applies the suggested fixes.
	`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("Path to the YAML config file (default from $%s).", config.EnvConfigPath))
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(locate.LocateCmd)
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(fix.FixCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error

	AppConfig, err = config.NewConfig(cfgFile)
	if err != nil {
		return errors.NewCommandError(fmt.Errorf("failed to load config: %w", err), errors.ExitFailure)
	}

	version.Init(AppConfig)
	locate.Init(AppConfig)
	scan.Init(AppConfig)
	fix.Init(AppConfig)
	return nil
}
