// Package kubescape decodes kubescape JSON results and turns failed control
// paths into localized findings.
package kubescape

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Report is the subset of kubescape's JSON output that kubelens reads.
type Report struct {
	SummaryDetails SummaryDetails `json:"summaryDetails"`
	Results        []Result       `json:"results"`
}

type SummaryDetails struct {
	Frameworks      []Framework     `json:"frameworks"`
	Vulnerabilities Vulnerabilities `json:"vulnerabilities"`
}

// Framework lists control summaries keyed by control id.
type Framework struct {
	Name     string                    `json:"name"`
	Controls map[string]ControlSummary `json:"controls"`
}

type ControlSummary struct {
	ControlID        string           `json:"controlID"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Remediation      string           `json:"remediation"`
	ResourceCounters ResourceCounters `json:"ResourceCounters"`
}

type ResourceCounters struct {
	Passed   int `json:"passedResources"`
	Failed   int `json:"failedResources"`
	Excluded int `json:"excludedResources"`
}

// Reported tells whether a control has anything to show.
func (c ControlSummary) Reported() bool {
	return c.ResourceCounters.Failed > 0 || c.ResourceCounters.Excluded > 0
}

type Vulnerabilities struct {
	CVEs []CVE `json:"CVEs"`
}

// CVE is a workload vulnerability summary entry.
type CVE struct {
	Name      string `json:"name"`
	Severity  string `json:"severity"`
	ImageName string `json:"imageName,omitempty"`
}

type Result struct {
	ResourceID string          `json:"resourceID"`
	Controls   []ControlResult `json:"controls"`
}

type ControlResult struct {
	ControlID string       `json:"controlID"`
	Name      string       `json:"name"`
	Rules     []RuleResult `json:"rules"`
}

type RuleResult struct {
	Name   string      `json:"name"`
	Status string      `json:"status"`
	Paths  []PathEntry `json:"paths"`
}

// PathEntry carries exactly one of its paths in practice.
type PathEntry struct {
	FailedPath string  `json:"failedPath,omitempty"`
	ReviewPath string  `json:"reviewPath,omitempty"`
	DeletePath string  `json:"deletePath,omitempty"`
	FixPath    FixPath `json:"fixPath,omitempty"`
}

type FixPath struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// Choose picks the path to report, in order failed, review, delete, fix. Only
// a fix path comes with a value.
func (p PathEntry) Choose() (path, value string, ok bool) {
	switch {
	case p.FailedPath != "":
		return p.FailedPath, "", true
	case p.ReviewPath != "":
		return p.ReviewPath, "", true
	case p.DeletePath != "":
		return p.DeletePath, "", true
	case p.FixPath.Path != "":
		return p.FixPath.Path, p.FixPath.Value, true
	}
	return "", "", false
}

// Decode reads a report from r.
func Decode(r io.Reader) (*Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode kubescape report: %w", err)
	}
	return &report, nil
}

// Load reads a report from a file.
func Load(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open kubescape report '%s': %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Hit is one path of a reported control on one resource.
type Hit struct {
	Framework  string
	Control    ControlSummary
	ResourceID string
	Rule       string
	Path       string
	FixValue   string
}

// Failed reports whether the control failed, as opposed to being excluded.
func (h Hit) Failed() bool {
	return h.Control.ResourceCounters.Failed > 0
}

// Hits walks frameworks, their reported controls in id order, and every
// result path of those controls. frameworks restricts the walk when not
// empty.
func (r *Report) Hits(frameworks ...string) []Hit {
	allowed := make(map[string]bool, len(frameworks))
	for _, name := range frameworks {
		allowed[name] = true
	}

	var hits []Hit
	for _, fw := range r.SummaryDetails.Frameworks {
		if len(allowed) > 0 && !allowed[fw.Name] {
			continue
		}
		ids := make([]string, 0, len(fw.Controls))
		for id := range fw.Controls {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			ctrl := fw.Controls[id]
			if !ctrl.Reported() {
				continue
			}
			if ctrl.ControlID == "" {
				ctrl.ControlID = id
			}
			hits = append(hits, r.hitsFor(fw.Name, ctrl)...)
		}
	}
	return hits
}

func (r *Report) hitsFor(framework string, ctrl ControlSummary) []Hit {
	var hits []Hit
	for _, res := range r.Results {
		for _, c := range res.Controls {
			if c.ControlID != ctrl.ControlID {
				continue
			}
			for _, rule := range c.Rules {
				for _, entry := range rule.Paths {
					path, value, ok := entry.Choose()
					if !ok {
						continue
					}
					hits = append(hits, Hit{
						Framework:  framework,
						Control:    ctrl,
						ResourceID: res.ResourceID,
						Rule:       rule.Name,
						Path:       path,
						FixValue:   value,
					})
				}
			}
		}
	}
	return hits
}
