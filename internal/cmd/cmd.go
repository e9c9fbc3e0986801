package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/scan-io-git/kubelens/internal/kubescape"
	"github.com/scan-io-git/kubelens/internal/scanner"
	"github.com/scan-io-git/kubelens/pkg/shared/files"
)

// Stdout as an output path writes to the command's standard output.
const Stdout = "-"

// HasFlags reports whether any flag was set on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	set := false
	flags.Visit(func(*pflag.Flag) { set = true })
	return set
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// OpenOutput opens the destination of a report. An empty path or "-" is
// stdout; a directory gets nameTemplate appended. Missing folders are created.
func OpenOutput(stdout io.Writer, path, nameTemplate string) (io.WriteCloser, string, error) {
	if path == "" || path == Stdout {
		return nopCloser{stdout}, Stdout, nil
	}

	fullPath, folder, err := files.DetermineFileFullPath(path, nameTemplate)
	if err != nil {
		return nil, "", err
	}
	if err := files.CreateFolderIfNotExists(folder); err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create output file %q: %w", fullPath, err)
	}
	return f, fullPath, nil
}

// ReportSource returns the kubescape results found at path: a single JSON
// report used for every file, or a directory of per-file reports.
func ReportSource(path string) (scanner.ReportSource, error) {
	path, err := files.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubescape results %q: %w", path, err)
	}
	if info.IsDir() {
		return scanner.ReportDir{Dir: path}, nil
	}
	report, err := kubescape.Load(path)
	if err != nil {
		return nil, err
	}
	return scanner.StaticReport{Results: report}, nil
}
