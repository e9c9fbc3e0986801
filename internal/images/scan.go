package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/pkg/shared"
	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

// DefaultSeverities are the vulnerability severities reported by default.
var DefaultSeverities = []string{"Critical", "High"}

// ErrNoReport is returned by scanners that have nothing for an image.
var ErrNoReport = errors.New("no scan report for image")

// Report is a grype-style image scan report.
type Report struct {
	Matches []Match `json:"matches"`
}

type Match struct {
	Vulnerability Vulnerability `json:"vulnerability"`
	Artifact      Artifact      `json:"artifact"`
}

type Vulnerability struct {
	ID          string   `json:"id"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	DataSource  string   `json:"dataSource"`
	URLs        []string `json:"urls"`
	Fix         Fix      `json:"fix"`
}

type Fix struct {
	Versions []string `json:"versions"`
	State    string   `json:"state"`
}

type Artifact struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
}

// ImageScanner produces the scan report of one image.
type ImageScanner interface {
	Scan(ctx context.Context, image string) (*Report, error)
}

// DirScanner reads reports prepared by an external scanner from
// <Dir>/<sanitized image>.json.
type DirScanner struct {
	Dir string
}

// ReportName is the file name DirScanner expects for image.
func ReportName(image string) string {
	return strings.NewReplacer("/", "_", ":", "_", "@", "_").Replace(image) + ".json"
}

func (s DirScanner) Scan(ctx context.Context, image string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Dir, ReportName(image))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoReport, image)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image report '%s': %w", path, err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode image report '%s': %w", path, err)
	}
	return &report, nil
}

// Result pairs a reference with its scan outcome.
type Result struct {
	Ref    Ref
	Report *Report
	Err    error
}

// ScanAll scans refs with at most jobs scans in flight. Results keep the
// order of refs.
func ScanAll(ctx context.Context, scanner ImageScanner, refs []Ref, jobs int) []Result {
	results := make([]Result, len(refs))
	shared.ForEachBounded(jobs, refs, func(i int, ref Ref) {
		report, err := scanner.Scan(ctx, ref.Image)
		results[i] = Result{Ref: ref, Report: report, Err: err}
	})
	return results
}

// Findings converts the vulnerabilities of r whose severity is listed in
// severities. Critical vulnerabilities become errors, the rest warnings.
func (r Result) Findings(severities []string) []findings.Finding {
	if r.Report == nil {
		return nil
	}
	if len(severities) == 0 {
		severities = DefaultSeverities
	}

	var out []findings.Finding
	for _, m := range r.Report.Matches {
		v := m.Vulnerability
		if !hasSeverity(severities, v.Severity) {
			continue
		}
		severity := findings.SeverityWarning
		if strings.EqualFold(v.Severity, "Critical") {
			severity = findings.SeverityError
		}
		out = append(out, findings.Finding{
			ID:          v.ID,
			Name:        fmt.Sprintf("%s in %s %s", v.ID, m.Artifact.Name, m.Artifact.Version),
			Description: v.Description,
			Remediation: remediation(m),
			Kind:        findings.KindImageVulnerability,
			Path:        r.Ref.Image,
			Range: yamlpath.Range{
				StartRow:    r.Ref.Row,
				StartColumn: r.Ref.Column,
				EndRow:      r.Ref.Row,
				EndColumn:   r.Ref.EndCol,
			},
			Severity: severity,
			Tags: []findings.Property{
				{Name: "severity", Value: v.Severity},
				{Name: "artifact", Value: m.Artifact.Name},
			},
		})
	}
	return out
}

func hasSeverity(severities []string, s string) bool {
	for _, want := range severities {
		if strings.EqualFold(want, s) {
			return true
		}
	}
	return false
}

func remediation(m Match) string {
	if m.Vulnerability.Fix.State != "fixed" || len(m.Vulnerability.Fix.Versions) == 0 {
		return "No fixed version is available yet."
	}
	return fmt.Sprintf("Upgrade %s to %s.", m.Artifact.Name, strings.Join(m.Vulnerability.Fix.Versions, " or "))
}
