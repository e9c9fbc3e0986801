package findings

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

// Severity ranks a finding. The zero value is SeverityInformation.
type Severity int

const (
	SeverityInformation Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityInformation: "information",
	SeverityWarning:     "warning",
	SeverityError:       "error",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity accepts the names produced by String, case-insensitively,
// plus the short forms "info" and "warn".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "information", "info":
		return SeverityInformation, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInformation, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SeverityFromCounters maps a control's resource counters to a severity: any
// failed resource makes it a warning, otherwise it is informational.
func SeverityFromCounters(failed, warned int) Severity {
	if failed > 0 {
		return SeverityWarning
	}
	return SeverityInformation
}

// Kind tells which scan produced a finding.
type Kind string

const (
	KindControl            Kind = "control"
	KindImageVulnerability Kind = "image-vulnerability"
)

// Property is a simple name/value pair used for tags, references, or custom metadata.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Key identifies a finding within one file.
type Key struct {
	ID   string
	Path string
}

// Finding is one scan result localized to a range of a specific file.
type Finding struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Remediation string `json:"remediation,omitempty"`
	Kind        Kind   `json:"kind"`

	// Path is the structural path reported by the scanner, or the image
	// reference for image vulnerabilities.
	Path     string         `json:"path"`
	Resource string         `json:"resource,omitempty"`
	Range    yamlpath.Range `json:"range"`
	Severity Severity       `json:"severity"`
	// Fix is set when the path is missing from the file or a value to
	// replace is known.
	Fix *yamlpath.FixPlan `json:"fix,omitempty"`
	// Alert carries scanner notes that are not part of the description,
	// such as an exception covering the resource.
	Alert string `json:"alert,omitempty"`

	Tags []Property `json:"tags,omitempty"`
}

// Key returns the deduplication key of f.
func (f Finding) Key() Key {
	return Key{ID: f.ID, Path: f.Path}
}
