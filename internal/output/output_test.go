package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

var pod = []string{
	"kind: Pod",
	"spec:",
	"  hostPID: true",
}

func newStore() *findings.Store {
	store := findings.NewStore()
	store.Clear("pod.yaml")
	store.Add("pod.yaml", findings.Finding{
		ID:       "C-0038",
		Name:     "Host PID/IPC privileges",
		Kind:     findings.KindControl,
		Path:     "spec.hostPID",
		Range:    yamlpath.Range{StartRow: 2, StartColumn: 2, EndRow: 2, EndColumn: 15},
		Severity: findings.SeverityWarning,
		Fix:      &yamlpath.FixPlan{Value: "false"},
		Alert:    "resource is covered by an exception",
	})
	return store
}

func write(t *testing.T, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	err := Write(&buf, newStore(), map[string][]string{"pod.yaml": pod}, opts, hclog.NewNullLogger())
	require.NoError(t, err)
	return buf.String()
}

func TestWriteText(t *testing.T) {
	want := "pod.yaml: 1 finding(s)\n" +
		"  3:3-3:16\twarning\tC-0038\tHost PID/IPC privileges\tspec.hostPID\n" +
		"      note: resource is covered by an exception\n" +
		"      fix: Set spec.hostPID to false\n" +
		"      docs: https://hub.armo.cloud/docs/c-0038\n"
	assert.Equal(t, want, write(t, Options{Format: FormatText}))
}

func TestWriteJSON(t *testing.T) {
	out := write(t, Options{Format: FormatJSON, Pretty: true})

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Files, 1)
	assert.Equal(t, "pod.yaml", report.Files[0].File)
	assert.NotEmpty(t, report.Files[0].Session)
	require.Len(t, report.Files[0].Findings, 1)
	assert.Equal(t, findings.SeverityWarning, report.Files[0].Findings[0].Severity)
	assert.Contains(t, out, `"severity": "warning"`)
}

func TestWriteSARIF(t *testing.T) {
	out := write(t, Options{Format: FormatSARIF, Pretty: true, Version: "1.0.0"})
	assert.Contains(t, out, `"ruleId": "C-0038"`)

	compact := write(t, Options{Format: FormatSARIF})
	assert.NotContains(t, compact, "\n  ")
	assert.Contains(t, compact, `"ruleId":"C-0038"`)
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, newStore(), nil, Options{Format: "xml"}, hclog.NewNullLogger())
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Extension("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExtension(t *testing.T) {
	for format, want := range map[string]string{FormatText: "txt", FormatJSON: "json", FormatSARIF: "sarif"} {
		got, err := Extension(format)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
