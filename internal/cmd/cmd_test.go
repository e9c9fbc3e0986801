package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/kubelens/internal/scanner"
)

func TestHasFlags(t *testing.T) {
	flags := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	flags.String("format", "text", "")
	require.NoError(t, flags.Parse(nil))
	assert.False(t, HasFlags(flags))

	require.NoError(t, flags.Parse([]string{"--format", "json"}))
	assert.True(t, HasFlags(flags))
}

func TestOpenOutputStdout(t *testing.T) {
	var buf bytes.Buffer
	w, path, err := OpenOutput(&buf, "", "kubelens-report.txt")
	require.NoError(t, err)
	assert.Equal(t, Stdout, path)

	_, err = w.Write([]byte("ok"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "ok", buf.String())
}

func TestOpenOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	w, path, err := OpenOutput(nil, dir, "kubelens-report.sarif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kubelens-report.sarif"), path)
	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestReportSource(t *testing.T) {
	dir := t.TempDir()
	src, err := ReportSource(dir)
	require.NoError(t, err)
	assert.Equal(t, scanner.ReportDir{Dir: dir}, src)

	file := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"summaryDetails": {}}`), 0644))
	src, err = ReportSource(file)
	require.NoError(t, err)
	assert.IsType(t, scanner.StaticReport{}, src)

	_, err = ReportSource(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(file, []byte("{"), 0644))
	_, err = ReportSource(file)
	assert.Error(t, err)
}
