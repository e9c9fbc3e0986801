package locate

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/scan-io-git/kubelens/internal/manifest"
	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// locateResult is one located path as printed by the command.
type locateResult struct {
	Path     string            `json:"path"`
	Matched  bool              `json:"matched"`
	Resolved string            `json:"resolved"`
	Range    yamlpath.Range    `json:"range"`
	Fix      *yamlpath.FixPlan `json:"fix,omitempty"`
}

// locateAll resolves every path in the selected document of lines.
func locateAll(lines []string, paths []string, options RunOptionsLocate) ([]locateResult, error) {
	doc := manifest.Whole(lines)
	if options.Resource != "" {
		var ok bool
		doc, ok = manifest.MatchResource(manifest.Split(lines), options.Resource)
		if !ok {
			return nil, fmt.Errorf("resource %q not found in %s", options.Resource, options.File)
		}
	}

	results := make([]locateResult, 0, len(paths))
	for _, p := range paths {
		path, err := yamlpath.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p, err)
		}
		located := doc.Locate(path, lines, options.Value)

		r := locateResult{
			Path:     p,
			Matched:  located.Matched(),
			Resolved: path[:located.Resolution.Unresolved].String(),
			Range:    located.Range,
		}
		if !located.Fix.Empty() {
			fix := located.Fix
			r.Fix = &fix
		}
		results = append(results, r)
	}
	return results, nil
}

func render(w io.Writer, results []locateResult, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		state := "found"
		if !r.Matched {
			state = "missing"
		}
		if _, err := fmt.Fprintf(w, "%s: %s %d:%d-%d:%d\n", r.Path, state,
			r.Range.StartRow+1, r.Range.StartColumn+1, r.Range.EndRow+1, r.Range.EndColumn+1); err != nil {
			return err
		}
		if r.Fix == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "  insert at %d:%d:%s\n", r.Fix.Row+1, r.Fix.Column+1, r.Fix.Text()); err != nil {
			return err
		}
	}
	return nil
}
