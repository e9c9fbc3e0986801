package fix

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/kubelens/internal/config"
	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/remediation"
	"github.com/scan-io-git/kubelens/internal/scanner"
	"github.com/scan-io-git/kubelens/pkg/shared/files"

	cmdutil "github.com/scan-io-git/kubelens/internal/cmd"
)

// fixFile localizes the results for file and applies their fixes. With
// DryRun the fixed content goes to w and file is left alone.
func fixFile(ctx context.Context, w io.Writer, file string, options *RunOptionsFix, cfg *config.Config, logger hclog.Logger) (int, error) {
	reports, err := cmdutil.ReportSource(options.Results)
	if err != nil {
		return 0, err
	}

	s := scanner.New(findings.NewStore(), reports, nil, scanner.Options{
		Frameworks:      options.Frameworks,
		DefaultFixValue: cfg.Scan.DefaultFixValue,
		Jobs:            1,
	}, logger)
	if _, err := s.ScanFile(ctx, file); err != nil {
		return 0, err
	}
	lines, _ := s.Snapshot(file)

	fixed, applied, err := remediation.Rewrite(lines, s.Store().List(file))
	if err != nil {
		return applied, err
	}

	if options.DryRun {
		if _, err := fmt.Fprintln(w, strings.Join(fixed, "\n")); err != nil {
			return applied, err
		}
		return applied, nil
	}
	if applied == 0 {
		return 0, nil
	}
	if err := files.WriteLines(file, fixed); err != nil {
		return applied, err
	}
	return applied, nil
}
