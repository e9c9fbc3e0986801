package sarif

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/remediation"
	"github.com/scan-io-git/kubelens/pkg/issuecorrelation"
)

const (
	ToolName       = "kubelens"
	InformationURI = "https://github.com/scan-io-git/kubelens"
	// FingerprintKey names the snippet hash in partialFingerprints.
	FingerprintKey = "kubelens/v1"
)

// Exporter renders the findings of a store as a SARIF 2.1.0 report.
type Exporter struct {
	store    *findings.Store
	logger   hclog.Logger
	version  string
	baseline []issuecorrelation.Issue
	vcs      *Provenance
}

// Provenance identifies the checkout the scanned files came from.
type Provenance struct {
	RepositoryURI string
	RevisionID    string
	Branch        string
}

// NewExporter creates an Exporter for store.
func NewExporter(store *findings.Store, logger hclog.Logger, version string) *Exporter {
	return &Exporter{store: store, logger: logger, version: version}
}

// WithBaseline makes Build set baselineState on every result and append the
// baseline results that disappeared.
func (e *Exporter) WithBaseline(baseline []issuecorrelation.Issue) *Exporter {
	e.baseline = baseline
	return e
}

// WithProvenance records the scanned checkout as versionControlProvenance.
func (e *Exporter) WithProvenance(p *Provenance) *Exporter {
	e.vcs = p
	return e
}

// Build creates the report. sources holds the line snapshot of every file
// and is used for snippet fingerprints and value replacement fixes.
func (e *Exporter) Build(sources map[string][]string) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(ToolName, InformationURI)
	if e.version != "" {
		run.Tool.Driver.WithVersion(e.version)
	}
	run.WithAutomationDetails(sarif.NewRunAutomationDetails().
		WithID(ToolName + "/scan").
		WithGUID(uuid.NewString()))
	if e.vcs != nil && e.vcs.RepositoryURI != "" {
		details := sarif.NewVersionControlDetails().WithRepositoryURI(e.vcs.RepositoryURI)
		if e.vcs.RevisionID != "" {
			details.WithRevisionID(e.vcs.RevisionID)
		}
		if e.vcs.Branch != "" {
			details.WithBranch(e.vcs.Branch)
		}
		run.AddVersionControlProvenance(details)
	}

	var (
		results []*sarif.Result
		current []issuecorrelation.Issue
	)
	for _, file := range e.store.Files() {
		lines := sources[file]
		session, _ := e.store.Session(file)
		run.AddDistinctArtifact(file)

		for _, f := range e.store.List(file) {
			addRule(run, f)
			result, issue := e.result(file, lines, session, f)
			results = append(results, result)
			current = append(current, issue)
		}
	}

	if e.baseline != nil {
		c := issuecorrelation.NewCorrelator(current, e.baseline)
		for i, state := range c.States() {
			results[i].WithBaselineState(string(state))
		}
		for _, gone := range c.Absent() {
			results = append(results, absentResult(gone))
		}
		e.logger.Debug("baseline correlated", "current", len(current), "baseline", len(e.baseline), "absent", len(c.Absent()))
	}

	for _, r := range results {
		run.AddResult(r)
	}
	report.AddRun(run)
	return report, nil
}

func addRule(run *sarif.Run, f findings.Finding) {
	rule := run.AddRule(f.ID)
	if rule.ShortDescription != nil {
		return
	}
	rule.WithDescription(f.Name)
	if f.Kind == findings.KindControl {
		if f.Description != "" {
			rule.WithFullDescription(sarif.NewMultiformatMessageString(f.Description))
		}
		if f.Remediation != "" {
			rule.WithTextHelp(f.Remediation)
		}
		if doc := remediation.Documentation(f); doc != "" {
			rule.WithHelpURI(doc)
		}
	}
	pb := sarif.NewPropertyBag()
	pb.AddString("kind", string(f.Kind))
	rule.AttachPropertyBag(pb)
}

func level(s findings.Severity) string {
	switch s {
	case findings.SeverityError:
		return "error"
	case findings.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func region(startRow, startCol, endRow, endCol int) *sarif.Region {
	return sarif.NewRegion().
		WithStartLine(startRow + 1).
		WithStartColumn(startCol + 1).
		WithEndLine(endRow + 1).
		WithEndColumn(endCol + 1)
}

func message(f findings.Finding) string {
	parts := []string{}
	for _, s := range []string{f.Description, f.Alert} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return f.Name
	}
	return strings.Join(parts, " ")
}

func (e *Exporter) result(file string, lines []string, session uuid.UUID, f findings.Finding) (*sarif.Result, issuecorrelation.Issue) {
	r := f.Range
	location := sarif.NewLocationWithPhysicalLocation(sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewSimpleArtifactLocation(file)).
		WithRegion(region(r.StartRow, r.StartColumn, r.EndRow, r.EndColumn)))

	result := sarif.NewRuleResult(f.ID).
		WithLevel(level(f.Severity)).
		WithMessage(sarif.NewTextMessage(message(f))).
		WithLocations([]*sarif.Location{location})

	hash := issuecorrelation.SnippetHash(lines, r.StartRow, r.EndRow)
	if hash != "" {
		result.WithPartialFingerPrints(map[string]interface{}{FingerprintKey: hash})
	}

	if edit, ok := remediation.ForFinding(f, lines); ok {
		change := sarif.NewArtifactChange(sarif.NewSimpleArtifactLocation(file)).
			WithReplacement(sarif.NewReplacement(region(edit.Row, edit.Column, edit.EndRow, edit.EndColumn)).
				WithInsertedContent(sarif.NewArtifactContent().WithText(edit.Text)))
		result.AddFix(sarif.NewFix().
			WithDescriptionText(edit.Title).
			WithArtifactChanges([]*sarif.ArtifactChange{change}))
	}

	pb := sarif.NewPropertyBag()
	pb.AddString("path", f.Path)
	if f.Resource != "" {
		pb.AddString("resource", f.Resource)
	}
	if session != uuid.Nil {
		pb.AddString("session", session.String())
	}
	for _, tag := range f.Tags {
		pb.AddString(tag.Name, tag.Value)
	}
	result.AttachPropertyBag(pb)

	issue := issuecorrelation.Issue{
		Ref:         f.ID + "@" + f.Path,
		RuleID:      f.ID,
		Filename:    file,
		StartLine:   r.StartRow + 1,
		EndLine:     r.EndRow + 1,
		SnippetHash: hash,
	}
	return result, issue
}

func absentResult(issue issuecorrelation.Issue) *sarif.Result {
	result := sarif.NewRuleResult(issue.RuleID).
		WithMessage(sarif.NewTextMessage("no longer reported")).
		WithBaselineState(string(issuecorrelation.StateAbsent))
	if issue.Filename != "" {
		result.WithLocations([]*sarif.Location{sarif.NewLocationWithPhysicalLocation(sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(issue.Filename)).
			WithRegion(sarif.NewSimpleRegion(issue.StartLine, issue.EndLine)))})
	}
	return result
}

// Write writes report as indented JSON.
func Write(w io.Writer, report *sarif.Report) error {
	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}

// ReadBaseline loads the results of an earlier kubelens SARIF report.
// Results that were already absent in that report are skipped.
func ReadBaseline(path string) ([]issuecorrelation.Issue, error) {
	report, err := sarif.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline '%s': %w", path, err)
	}

	var issues []issuecorrelation.Issue
	for _, run := range report.Runs {
		for i, result := range run.Results {
			if result.BaselineState != nil && *result.BaselineState == string(issuecorrelation.StateAbsent) {
				continue
			}
			issue := issuecorrelation.Issue{Ref: strconv.Itoa(i)}
			if result.RuleID != nil {
				issue.RuleID = *result.RuleID
			}
			if hash, ok := result.PartialFingerprints[FingerprintKey].(string); ok {
				issue.SnippetHash = hash
			}
			if len(result.Locations) > 0 {
				fillLocation(&issue, result.Locations[0])
			}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

func fillLocation(issue *issuecorrelation.Issue, loc *sarif.Location) {
	pl := loc.PhysicalLocation
	if pl == nil {
		return
	}
	if pl.ArtifactLocation != nil && pl.ArtifactLocation.URI != nil {
		issue.Filename = *pl.ArtifactLocation.URI
	}
	if pl.Region == nil {
		return
	}
	if pl.Region.StartLine != nil {
		issue.StartLine = *pl.Region.StartLine
	}
	issue.EndLine = issue.StartLine
	if pl.Region.EndLine != nil {
		issue.EndLine = *pl.Region.EndLine
	}
}
