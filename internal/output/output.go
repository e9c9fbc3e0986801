// Package output renders the findings of a store for people and tools.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/remediation"
	"github.com/scan-io-git/kubelens/internal/sarif"
	"github.com/scan-io-git/kubelens/pkg/issuecorrelation"
)

var ErrUnknownFormat = errors.New("unknown output format")

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Options select and tune a format.
type Options struct {
	Format  string
	Pretty  bool
	Version string
	// Baseline and Provenance are used by the sarif format only.
	Baseline   []issuecorrelation.Issue
	Provenance *sarif.Provenance
}

// Extension returns the file extension for format.
func Extension(format string) (string, error) {
	switch format {
	case FormatText:
		return "txt", nil
	case FormatJSON:
		return "json", nil
	case FormatSARIF:
		return "sarif", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Write renders every file of store in the requested format. sources holds
// the scanned line snapshots.
func Write(w io.Writer, store *findings.Store, sources map[string][]string, opts Options, logger hclog.Logger) error {
	switch opts.Format {
	case FormatText, "":
		return writeText(w, store, sources)
	case FormatJSON:
		return writeJSON(w, store, opts.Pretty)
	case FormatSARIF:
		exporter := sarif.NewExporter(store, logger, opts.Version)
		if opts.Baseline != nil {
			exporter.WithBaseline(opts.Baseline)
		}
		if opts.Provenance != nil {
			exporter.WithProvenance(opts.Provenance)
		}
		report, err := exporter.Build(sources)
		if err != nil {
			return err
		}
		if !opts.Pretty {
			return report.Write(w)
		}
		return sarif.Write(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

func writeText(w io.Writer, store *findings.Store, sources map[string][]string) error {
	for _, file := range store.Files() {
		list := store.List(file)
		if _, err := fmt.Fprintf(w, "%s: %d finding(s)\n", file, len(list)); err != nil {
			return err
		}
		for _, f := range list {
			r := f.Range
			if _, err := fmt.Fprintf(w, "  %d:%d-%d:%d\t%s\t%s\t%s\t%s\n",
				r.StartRow+1, r.StartColumn+1, r.EndRow+1, r.EndColumn+1,
				f.Severity, f.ID, f.Name, f.Path); err != nil {
				return err
			}
			if f.Alert != "" {
				if _, err := fmt.Fprintf(w, "      note: %s\n", f.Alert); err != nil {
					return err
				}
			}
			if edit, ok := remediation.ForFinding(f, sources[file]); ok {
				if _, err := fmt.Fprintf(w, "      fix: %s\n", edit.Title); err != nil {
					return err
				}
			}
			if doc := remediation.Documentation(f); doc != "" {
				if _, err := fmt.Fprintf(w, "      docs: %s\n", doc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type fileReport struct {
	File     string             `json:"file"`
	Session  string             `json:"session"`
	Findings []findings.Finding `json:"findings"`
}

type jsonReport struct {
	Files []fileReport `json:"files"`
}

func writeJSON(w io.Writer, store *findings.Store, pretty bool) error {
	report := jsonReport{Files: []fileReport{}}
	for _, file := range store.Files() {
		session, _ := store.Session(file)
		list := store.List(file)
		if list == nil {
			list = []findings.Finding{}
		}
		report.Files = append(report.Files, fileReport{
			File:     file,
			Session:  session.String(),
			Findings: list,
		})
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
