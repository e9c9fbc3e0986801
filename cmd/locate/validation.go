package locate

import (
	"fmt"
	"strings"
)

// validateLocateArgs validates the required command options.
func validateLocateArgs(options *RunOptionsLocate, args []string) error {
	var issues []string

	if strings.TrimSpace(options.File) == "" {
		issues = append(issues, "missing required flags: file")
	}
	if len(args) == 0 {
		issues = append(issues, "provide at least one path")
	}
	for _, a := range args {
		if strings.TrimSpace(a) == "" {
			issues = append(issues, "paths cannot be empty")
			break
		}
	}
	if options.Format != formatText && options.Format != formatJSON {
		issues = append(issues, fmt.Sprintf("invalid format: %q", options.Format))
	}

	if len(issues) > 0 {
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return nil
}
