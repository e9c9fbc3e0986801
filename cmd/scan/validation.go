package scan

import (
	"fmt"
	"os"
	"strings"

	"github.com/scan-io-git/kubelens/internal/config"
	"github.com/scan-io-git/kubelens/internal/output"
)

// validateScanArgs validates the required command options.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	var issues []string

	if len(args) == 0 {
		issues = append(issues, "provide at least one file or glob")
	}
	if strings.TrimSpace(options.Results) == "" && strings.TrimSpace(options.Images) == "" {
		issues = append(issues, "missing required flags: results or images")
	}
	if options.Images != "" {
		if info, err := os.Stat(options.Images); err != nil || !info.IsDir() {
			issues = append(issues, fmt.Sprintf("'images' must be a directory: %q", options.Images))
		}
	}
	if _, err := output.Extension(options.Format); err != nil {
		issues = append(issues, fmt.Sprintf("invalid format: %q", options.Format))
	}
	if options.Threads < 1 || options.Threads > config.MaxJobs {
		issues = append(issues, fmt.Sprintf("'threads' must be between 1 and %d", config.MaxJobs))
	}
	if options.DiffHead != "" && options.DiffBase == "" {
		issues = append(issues, "'diff-head' requires 'diff-base'")
	}
	if err := config.ValidateScanConfig(&config.Scan{FailOn: options.FailOn}); err != nil {
		issues = append(issues, fmt.Sprintf("invalid fail-on: %q", options.FailOn))
	}

	if len(issues) > 0 {
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return nil
}
