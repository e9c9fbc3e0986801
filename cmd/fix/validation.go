package fix

import (
	"fmt"
	"strings"
)

// validateFixArgs validates the required command options.
func validateFixArgs(options *RunOptionsFix, args []string) error {
	var issues []string

	if len(args) != 1 {
		issues = append(issues, "provide exactly one file")
	}
	if strings.TrimSpace(options.Results) == "" {
		issues = append(issues, "missing required flags: results")
	}

	if len(issues) > 0 {
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return nil
}
