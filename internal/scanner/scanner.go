package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/images"
	"github.com/scan-io-git/kubelens/internal/kubescape"
	"github.com/scan-io-git/kubelens/pkg/shared"
	"github.com/scan-io-git/kubelens/pkg/shared/files"
)

// ErrNoResults is returned by a ReportSource that has no kubescape results
// for a file.
var ErrNoResults = errors.New("no kubescape results for file")

// ReportSource yields the kubescape report produced for a file.
type ReportSource interface {
	Report(ctx context.Context, file string) (*kubescape.Report, error)
}

// StaticReport serves the same report for every file.
type StaticReport struct {
	Results *kubescape.Report
}

func (s StaticReport) Report(ctx context.Context, _ string) (*kubescape.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Results == nil {
		return nil, ErrNoResults
	}
	return s.Results, nil
}

// ReportDir reads <Dir>/<file name without extension>.json.
type ReportDir struct {
	Dir string
}

// ReportName is the results file name ReportDir expects for file.
func ReportName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

func (d ReportDir) Report(ctx context.Context, file string) (*kubescape.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.Dir, ReportName(file))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, file)
	}
	return kubescape.Load(path)
}

// Options configure a Scanner.
type Options struct {
	Frameworks      []string
	DefaultFixValue string
	ImageSeverities []string
	Jobs            int
}

// Scanner localizes scan results in files and keeps them in a store.
type Scanner struct {
	store          *findings.Store
	reports        ReportSource
	images         images.ImageScanner
	ingester       *kubescape.Ingester
	severities     []string
	concurrentJobs int
	logger         hclog.Logger

	mu        sync.Mutex
	snapshots map[string][]string
}

// New creates a Scanner. reports and imageScanner may be nil to skip the
// respective scan.
func New(store *findings.Store, reports ReportSource, imageScanner images.ImageScanner, opts Options, logger hclog.Logger) *Scanner {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Scanner{
		store:   store,
		reports: reports,
		images:  imageScanner,
		ingester: kubescape.NewIngester(logger.Named("kubescape"), kubescape.Options{
			Frameworks:      opts.Frameworks,
			DefaultFixValue: opts.DefaultFixValue,
		}),
		severities:     opts.ImageSeverities,
		concurrentJobs: opts.Jobs,
		logger:         logger,
		snapshots:      make(map[string][]string),
	}
}

// Result summarizes the scan of one file.
type Result struct {
	File        string
	Kubescape   kubescape.Stats
	Images      int
	ImageErrors int
	Err         error
}

// ScanFile replaces the findings of target with the results for its
// current content. Image references are scanned concurrently.
func (s *Scanner) ScanFile(ctx context.Context, target string) (Result, error) {
	result := Result{File: target}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	lines, err := files.ReadLines(target)
	if err != nil {
		return result, err
	}
	session := s.store.Clear(target)
	s.setSnapshot(target, lines)
	s.logger.Debug("scanning file", "file", target, "session", session, "lines", len(lines))

	dockerfile := images.IsDockerfile(target)
	if s.reports != nil && !dockerfile {
		report, err := s.reports.Report(ctx, target)
		switch {
		case errors.Is(err, ErrNoResults):
			s.logger.Debug("no kubescape results", "file", target)
		case err != nil:
			return result, fmt.Errorf("failed to get kubescape results for '%s': %w", target, err)
		default:
			result.Kubescape = s.ingester.Ingest(s.store, target, lines, report)
		}
	}

	if s.images != nil {
		refs := images.FromYAML(lines)
		if dockerfile {
			refs = images.FromDockerfile(lines)
		}
		for _, r := range images.ScanAll(ctx, s.images, refs, s.concurrentJobs) {
			if r.Err != nil {
				result.ImageErrors++
				if errors.Is(r.Err, images.ErrNoReport) {
					s.logger.Debug("image not scanned", "file", target, "image", r.Ref.Image)
				} else {
					s.logger.Warn("image scan failed", "file", target, "image", r.Ref.Image, "error", r.Err)
				}
				continue
			}
			for _, f := range r.Findings(s.severities) {
				if s.store.Add(target, f) {
					result.Images++
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	s.logger.Info("file scanned",
		"file", target,
		"controls", result.Kubescape.Added,
		"vulnerabilities", result.Images,
	)
	return result, nil
}

// ScanFiles scans targets with at most the configured number of files in
// flight. Results keep the order of targets.
func (s *Scanner) ScanFiles(ctx context.Context, targets []string) []Result {
	s.logger.Info("scan starting", "total", len(targets), "goroutines", s.concurrentJobs)

	results := make([]Result, len(targets))
	shared.ForEachBounded(s.concurrentJobs, targets, func(i int, target string) {
		result, err := s.ScanFile(ctx, target)
		if err != nil {
			s.logger.Error("scan failed", "file", target, "error", err)
			result.Err = err
		}
		results[i] = result
	})
	return results
}

// Forget drops everything known about file.
func (s *Scanner) Forget(file string) {
	s.store.Remove(file)
	s.mu.Lock()
	delete(s.snapshots, file)
	s.mu.Unlock()
}

// Snapshot returns the lines file had when it was last scanned.
func (s *Scanner) Snapshot(file string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines, ok := s.snapshots[file]
	return lines, ok
}

// Sources returns the snapshots of every scanned file.
func (s *Scanner) Sources() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.snapshots))
	for file, lines := range s.snapshots {
		out[file] = lines
	}
	return out
}

// Store returns the store the scanner writes to.
func (s *Scanner) Store() *findings.Store {
	return s.store
}

func (s *Scanner) setSnapshot(file string, lines []string) {
	s.mu.Lock()
	s.snapshots[file] = lines
	s.mu.Unlock()
}
