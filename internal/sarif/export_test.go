package sarif

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/pkg/issuecorrelation"
	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

const podFile = "deploy/pod.yaml"

var pod = []string{
	"apiVersion: v1",
	"kind: Pod",
	"metadata:",
	"  name: web",
	"spec:",
	"  hostPID: true",
	"  containers:",
	"  - name: app",
	"    image: nginx:1.25",
}

func hostPID() findings.Finding {
	return findings.Finding{
		ID:          "C-0038",
		Name:        "Host PID/IPC privileges",
		Description: "Containers should be isolated from the host machine.",
		Remediation: "Remove hostPID and hostIPC from the pod spec.",
		Kind:        findings.KindControl,
		Path:        "spec.hostPID",
		Range:       yamlpath.Range{StartRow: 5, StartColumn: 2, EndRow: 5, EndColumn: 15},
		Severity:    findings.SeverityWarning,
		Fix:         &yamlpath.FixPlan{Value: "false"},
	}
}

func imageCVE() findings.Finding {
	return findings.Finding{
		ID:       "CVE-2023-0001",
		Name:     "CVE-2023-0001",
		Kind:     findings.KindImageVulnerability,
		Path:     "nginx:1.25",
		Range:    yamlpath.Range{StartRow: 8, StartColumn: 4, EndRow: 8, EndColumn: 21},
		Severity: findings.SeverityError,
		Tags:     []findings.Property{{Name: "package", Value: "openssl"}},
	}
}

func newExporter(fs ...findings.Finding) *Exporter {
	store := findings.NewStore()
	store.Clear(podFile)
	for _, f := range fs {
		store.Add(podFile, f)
	}
	return NewExporter(store, hclog.NewNullLogger(), "1.0.0")
}

func TestBuild(t *testing.T) {
	report, err := newExporter(hostPID(), imageCVE()).Build(map[string][]string{podFile: pod})
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, ToolName, run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.Version)
	assert.Equal(t, "1.0.0", *run.Tool.Driver.Version)
	require.Len(t, run.Artifacts, 1)
	require.NotNil(t, run.AutomationDetails)

	require.Len(t, run.Tool.Driver.Rules, 2)
	control := run.Tool.Driver.Rules[0]
	assert.Equal(t, "C-0038", control.ID)
	require.NotNil(t, control.HelpURI)
	assert.Equal(t, "https://hub.armo.cloud/docs/c-0038", *control.HelpURI)
	require.NotNil(t, control.Help)
	assert.Equal(t, "Remove hostPID and hostIPC from the pod spec.", *control.Help.Text)
	assert.Nil(t, run.Tool.Driver.Rules[1].HelpURI)

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "warning", *first.Level)
	assert.Nil(t, first.BaselineState)

	region := first.Locations[0].PhysicalLocation.Region
	assert.Equal(t, 6, *region.StartLine)
	assert.Equal(t, 3, *region.StartColumn)
	assert.Equal(t, 6, *region.EndLine)
	assert.Equal(t, 16, *region.EndColumn)
	assert.Equal(t, issuecorrelation.SnippetHash(pod, 5, 5), first.PartialFingerprints[FingerprintKey])
	assert.Equal(t, "spec.hostPID", first.Properties["path"])

	require.Len(t, first.Fixes, 1)
	change := first.Fixes[0].ArtifactChanges[0]
	assert.Equal(t, podFile, *change.ArtifactLocation.URI)
	replacement := change.Replacements[0]
	assert.Equal(t, 11, *replacement.DeletedRegion.StartColumn)
	assert.Equal(t, " false", *replacement.InsertedContent.Text)

	second := run.Results[1]
	assert.Equal(t, "error", *second.Level)
	assert.Empty(t, second.Fixes)
	assert.Equal(t, "openssl", second.Properties["package"])
}

func TestBuildInsertionFix(t *testing.T) {
	f := hostPID()
	f.ID = "C-0016"
	f.Path = "spec.containers[0].securityContext.allowPrivilegeEscalation"
	f.Range = yamlpath.Range{StartRow: 7, StartColumn: 2, EndRow: 8, EndColumn: 21}
	f.Fix = &yamlpath.FixPlan{
		Steps:  []string{"securityContext", "allowPrivilegeEscalation"},
		Value:  "false",
		Indent: 4,
		Row:    8,
		Column: 21,
	}

	report, err := newExporter(f).Build(map[string][]string{podFile: pod})
	require.NoError(t, err)

	replacement := report.Runs[0].Results[0].Fixes[0].ArtifactChanges[0].Replacements[0]
	assert.Equal(t, 9, *replacement.DeletedRegion.StartLine)
	assert.Equal(t, 22, *replacement.DeletedRegion.StartColumn)
	assert.Equal(t, 22, *replacement.DeletedRegion.EndColumn)
	assert.Equal(t, "\n    securityContext:\n      allowPrivilegeEscalation: false", *replacement.InsertedContent.Text)
}

func TestWrite(t *testing.T) {
	report, err := newExporter(hostPID()).Build(map[string][]string{podFile: pod})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))
	assert.Contains(t, buf.String(), `"version": "2.1.0"`)
	assert.Contains(t, buf.String(), `"kubelens/v1"`)
}

func TestBaselineRoundTrip(t *testing.T) {
	previous, err := newExporter(hostPID(), imageCVE()).Build(map[string][]string{podFile: pod})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "baseline.sarif")
	require.NoError(t, previous.WriteFile(path))

	baseline, err := ReadBaseline(path)
	require.NoError(t, err)
	require.Len(t, baseline, 2)
	assert.Equal(t, "C-0038", baseline[0].RuleID)
	assert.Equal(t, podFile, baseline[0].Filename)
	assert.Equal(t, 6, baseline[0].StartLine)
	assert.Equal(t, 6, baseline[0].EndLine)
	assert.Equal(t, issuecorrelation.SnippetHash(pod, 5, 5), baseline[0].SnippetHash)

	added := hostPID()
	added.ID = "C-0057"
	added.Path = "spec.containers[0].securityContext.privileged"

	report, err := newExporter(hostPID(), added).
		WithBaseline(baseline).
		Build(map[string][]string{podFile: pod})
	require.NoError(t, err)

	results := report.Runs[0].Results
	require.Len(t, results, 3)
	assert.Equal(t, "unchanged", *results[0].BaselineState)
	assert.Equal(t, "new", *results[1].BaselineState)
	assert.Equal(t, "absent", *results[2].BaselineState)
	assert.Equal(t, "CVE-2023-0001", *results[2].RuleID)

	// absent results of an older report are not carried forward
	path = filepath.Join(t.TempDir(), "next.sarif")
	require.NoError(t, report.WriteFile(path))
	next, err := ReadBaseline(path)
	require.NoError(t, err)
	assert.Len(t, next, 2)
}

func TestReadBaselineMissingFile(t *testing.T) {
	_, err := ReadBaseline(filepath.Join(t.TempDir(), "missing.sarif"))
	assert.Error(t, err)
}

func TestBuildProvenance(t *testing.T) {
	exporter := newExporter(hostPID()).WithProvenance(&Provenance{
		RepositoryURI: "https://github.com/example/manifests",
		RevisionID:    "0123abcd",
	})
	report, err := exporter.Build(map[string][]string{podFile: pod})
	require.NoError(t, err)

	vcs := report.Runs[0].VersionControlProvenance
	require.Len(t, vcs, 1)
	assert.Equal(t, "https://github.com/example/manifests", *vcs[0].RepositoryURI)
	assert.Equal(t, "0123abcd", *vcs[0].RevisionID)
	assert.Nil(t, vcs[0].Branch)

	report, err = newExporter(hostPID()).WithProvenance(&Provenance{}).Build(map[string][]string{podFile: pod})
	require.NoError(t, err)
	assert.Empty(t, report.Runs[0].VersionControlProvenance)
}
