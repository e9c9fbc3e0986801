package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scan-io-git/kubelens/internal/findings"
)

const (
	DefaultJobs   = 4
	MaxJobs       = 64
	DefaultFormat = "text"
	// FailOnNone disables failing a scan because of its findings.
	FailOnNone = "none"
)

var (
	logLevels     = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}
	formats       = []string{"text", "json", "sarif"}
	imageSeverity = []string{"negligible", "low", "medium", "high", "critical", "unknown"}
)

// ValidateConfig checks if the global configurations have valid values and
// fills in defaults for unset ones.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	if err := ValidateOutputConfig(&cfg.Output); err != nil {
		return fmt.Errorf("YAML global config: output directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the log level name.
func ValidateLoggerConfig(logger *Logger) error {
	if logger == nil {
		return fmt.Errorf("logger configuration is nil")
	}
	if logger.Level == "" {
		return nil
	}
	if !contains(logLevels, strings.ToUpper(logger.Level)) {
		return fmt.Errorf("unknown level %q, expected one of %s", logger.Level, strings.Join(logLevels, ", "))
	}
	return nil
}

// ValidateScanConfig checks the scan settings.
func ValidateScanConfig(scan *Scan) error {
	if scan == nil {
		return fmt.Errorf("scan configuration is nil")
	}

	scan.Jobs = SetThen(scan.Jobs, DefaultJobs)
	if scan.Jobs < 1 || scan.Jobs > MaxJobs {
		return fmt.Errorf("jobs must be between 1 and %d: %d", MaxJobs, scan.Jobs)
	}

	scan.FailOn = SetThen(strings.ToLower(scan.FailOn), FailOnNone)
	if scan.FailOn != FailOnNone {
		if _, err := findings.ParseSeverity(scan.FailOn); err != nil {
			return fmt.Errorf("fail_on: %w", err)
		}
	}

	for _, s := range scan.ImageSeverities {
		if !contains(imageSeverity, strings.ToLower(s)) {
			return fmt.Errorf("unknown image severity %q", s)
		}
	}

	for _, p := range scan.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid include pattern %q", p)
		}
	}
	return nil
}

// ValidateOutputConfig checks the output format.
func ValidateOutputConfig(output *Output) error {
	if output == nil {
		return fmt.Errorf("output configuration is nil")
	}
	output.Format = SetThen(strings.ToLower(output.Format), DefaultFormat)
	if !contains(formats, output.Format) {
		return fmt.Errorf("unknown format %q, expected one of %s", output.Format, strings.Join(formats, ", "))
	}
	return nil
}

// FailOnSeverity returns the lowest severity that fails a scan. ok is false
// when findings never fail it.
func (s Scan) FailOnSeverity() (findings.Severity, bool) {
	if s.FailOn == "" || s.FailOn == FailOnNone {
		return findings.SeverityInformation, false
	}
	severity, err := findings.ParseSeverity(s.FailOn)
	if err != nil {
		return findings.SeverityInformation, false
	}
	return severity, true
}

// Included reports whether path matches the include globs. An empty list
// includes everything.
func (s Scan) Included(path string) bool {
	if len(s.Include) == 0 {
		return true
	}
	for _, p := range s.Include {
		if ok, err := doublestar.PathMatch(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
