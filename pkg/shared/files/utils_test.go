package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineFileFullPath(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "report.sarif")
	if err := os.WriteFile(existing, []byte("{}"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name         string
		inputPath    string
		expectFile   string
		expectFolder string
	}{
		{
			name:         "existing directory",
			inputPath:    tmpDir,
			expectFile:   filepath.Join(tmpDir, "kubelens-report.json"),
			expectFolder: tmpDir,
		},
		{
			name:         "existing file",
			inputPath:    existing,
			expectFile:   existing,
			expectFolder: tmpDir,
		},
		{
			name:         "missing path without extension",
			inputPath:    filepath.Join(tmpDir, "reports"),
			expectFile:   filepath.Join(tmpDir, "reports", "kubelens-report.json"),
			expectFolder: filepath.Join(tmpDir, "reports"),
		},
		{
			name:         "missing file with extension",
			inputPath:    filepath.Join(tmpDir, "out.txt"),
			expectFile:   filepath.Join(tmpDir, "out.txt"),
			expectFolder: tmpDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath, folderPath, err := DetermineFileFullPath(tt.inputPath, "kubelens-report.json")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if filePath != tt.expectFile {
				t.Errorf("Expected file path %s, got %s", tt.expectFile, filePath)
			}
			if folderPath != tt.expectFolder {
				t.Errorf("Expected folder path %s, got %s", tt.expectFolder, folderPath)
			}
		})
	}
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"trailing newline", "kind: Pod\nspec:\n", []string{"kind: Pod", "spec:"}},
		{"no trailing newline", "kind: Pod\nspec:", []string{"kind: Pod", "spec:"}},
		{"crlf", "kind: Pod\r\nspec:\r\n", []string{"kind: Pod", "spec:"}},
		{"blank lines kept", "a:\n\n  b: 1\n", []string{"a:", "", "  b: 1"}},
		{"empty", "", []string{}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, filepath.Base(t.Name())+string(rune('a'+i))+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := ReadLines(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLinesMissing(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteLinesKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0600))

	require.NoError(t, WriteLines(path, []string{"kind: Pod", "spec:"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kind: Pod\nspec:\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pod.yaml")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.NoError(t, ValidatePath(file))
	assert.Error(t, ValidatePath(dir))
	assert.Error(t, ValidatePath(filepath.Join(dir, "missing.yaml")))
}
