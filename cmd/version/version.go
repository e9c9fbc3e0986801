package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/kubelens/internal/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds the build information of the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

var jsonOutput bool

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version of kubelens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersionInfo(cmd.OutOrStdout(), current(), jsonOutput)
		},
	}
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the version information as JSON.")
	return versionCmd
}

func current() Versions {
	golang := GolangVersion
	if golang == "unknown" {
		golang = runtime.Version()
	}
	return Versions{
		Version:       CoreVersion,
		GolangVersion: golang,
		BuildTime:     BuildTime,
	}
}

// printVersionInfo prints the version information.
func printVersionInfo(w io.Writer, v Versions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintf(w, "Core Version: v%s\nGo Version: %s\nBuild Time: %s\n", v.Version, v.GolangVersion, v.BuildTime)
	return err
}
