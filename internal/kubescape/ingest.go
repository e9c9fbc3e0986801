package kubescape

import (
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/manifest"
	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

// DefaultFixValue is the placeholder leaf value of fixes for missing paths
// when kubescape does not suggest one.
const DefaultFixValue = "<value>"

const excludedAlert = "resource is covered by an exception"

// Options tune how a report is ingested.
type Options struct {
	Frameworks      []string
	DefaultFixValue string
}

// Stats summarizes one ingestion.
type Stats struct {
	Hits       int
	Added      int
	Duplicates int
	// Collapsed counts duplicates that came from another resource of the
	// same file. Findings are keyed by control id and path only.
	Collapsed int
	Unmatched int
	CVEs      int
}

// Ingester localizes kubescape hits in a file and stores them as findings.
type Ingester struct {
	logger hclog.Logger
	opts   Options
}

// NewIngester creates an Ingester.
func NewIngester(logger hclog.Logger, opts Options) *Ingester {
	if opts.DefaultFixValue == "" {
		opts.DefaultFixValue = DefaultFixValue
	}
	return &Ingester{logger: logger, opts: opts}
}

// Ingest adds one finding per hit to store under file. lines must be the
// snapshot the report was produced from.
func (in *Ingester) Ingest(store *findings.Store, file string, lines []string, report *Report) Stats {
	stats := Stats{CVEs: len(report.SummaryDetails.Vulnerabilities.CVEs)}
	docs := manifest.Split(lines)

	for _, hit := range report.Hits(in.opts.Frameworks...) {
		stats.Hits++

		doc, ok := manifest.MatchResource(docs, hit.ResourceID)
		if !ok {
			if _, parsed := manifest.ParseResourceID(hit.ResourceID); parsed {
				stats.Unmatched++
				in.logger.Debug("resource not in file, skipping hit", "file", file, "resource", hit.ResourceID, "control", hit.Control.ControlID)
				continue
			}
			in.logger.Debug("resource id not recognized, using whole file", "file", file, "resource", hit.ResourceID)
			doc = manifest.Whole(lines)
		}

		f := in.finding(hit, doc, lines)
		if store.Add(file, f) {
			stats.Added++
			continue
		}
		stats.Duplicates++
		if prev, ok := store.Get(file, f.ID, f.Path); ok && prev.Resource != f.Resource {
			stats.Collapsed++
			in.logger.Debug("finding of another resource already stored, keeping the first",
				"file", file, "control", f.ID, "path", f.Path, "kept", prev.Resource, "resource", f.Resource)
		}
	}

	in.logger.Debug("kubescape report ingested",
		"file", file,
		"hits", stats.Hits,
		"added", stats.Added,
		"duplicates", stats.Duplicates,
		"collapsed", stats.Collapsed,
		"unmatched", stats.Unmatched,
		"cves", stats.CVEs,
	)
	return stats
}

func (in *Ingester) finding(hit Hit, doc manifest.Document, lines []string) findings.Finding {
	value := hit.FixValue
	if value == "" {
		value = in.opts.DefaultFixValue
	}
	located := doc.Locate(yamlpath.Tokenize(hit.Path), lines, value)

	f := findings.Finding{
		ID:          hit.Control.ControlID,
		Name:        hit.Control.Name,
		Description: hit.Control.Description,
		Remediation: hit.Control.Remediation,
		Kind:        findings.KindControl,
		Path:        hit.Path,
		Resource:    hit.ResourceID,
		Range:       located.Range,
		Severity:    findings.SeverityFromCounters(hit.Control.ResourceCounters.Failed, hit.Control.ResourceCounters.Excluded),
		Tags: []findings.Property{
			{Name: "framework", Value: hit.Framework},
		},
	}
	if hit.Rule != "" {
		f.Tags = append(f.Tags, findings.Property{Name: "rule", Value: hit.Rule})
	}
	if !hit.Failed() {
		f.Alert = excludedAlert
	}
	// a resolved path only gets a fix when kubescape suggested a value
	if !located.Fix.Empty() || hit.FixValue != "" {
		fix := located.Fix
		fix.Placeholder = hit.FixValue == ""
		f.Fix = &fix
	}
	return f
}
