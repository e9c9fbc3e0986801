// Package remediation turns finding fixes into text edits and applies them.
package remediation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scan-io-git/kubelens/internal/findings"
	"github.com/scan-io-git/kubelens/internal/manifest"
	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

// DocsBaseURL hosts the documentation of every kubescape control.
const DocsBaseURL = "https://hub.armo.cloud/docs/"

// ErrOverlap is returned when two edits touch the same text.
var ErrOverlap = errors.New("edits overlap")

// Edit replaces the text between (Row, Column) and (EndRow, EndColumn) with
// Text. Equal start and end make it an insertion.
type Edit struct {
	Title     string `json:"title"`
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	EndRow    int    `json:"end_row"`
	EndColumn int    `json:"end_column"`
	Text      string `json:"text"`
}

// ForFinding builds the edit for f. Missing keys are inserted after the
// deepest existing ancestor. An existing key gets its value replaced, from
// the colon to the end of its range. Placeholder fixes produce no edit.
func ForFinding(f findings.Finding, lines []string) (Edit, bool) {
	if f.Fix == nil || f.Fix.Placeholder {
		return Edit{}, false
	}
	title := fmt.Sprintf("Set %s to %s", f.Path, f.Fix.Value)

	if !f.Fix.Empty() {
		return Edit{
			Title:     title,
			Row:       f.Fix.Row,
			Column:    f.Fix.Column,
			EndRow:    f.Fix.Row,
			EndColumn: f.Fix.Column,
			Text:      f.Fix.Text(),
		}, true
	}

	r := f.Range
	if f.Fix.Value == "" || r.StartRow < 0 || r.StartRow >= len(lines) {
		return Edit{}, false
	}
	line := lines[r.StartRow]
	if r.StartColumn > len(line) {
		return Edit{}, false
	}
	col := strings.IndexByte(line[r.StartColumn:], ':')
	if col < 0 {
		// a sequence item, keep the marker
		col = strings.IndexByte(line[r.StartColumn:], '-')
		if col < 0 {
			return Edit{}, false
		}
	}
	col += r.StartColumn + 1

	return Edit{
		Title:     title,
		Row:       r.StartRow,
		Column:    col,
		EndRow:    r.EndRow,
		EndColumn: r.EndColumn,
		Text:      " " + f.Fix.Value,
	}, true
}

func (e Edit) before(other Edit) bool {
	if e.EndRow != other.Row {
		return e.EndRow < other.Row
	}
	return e.EndColumn <= other.Column
}

// Apply applies edits to lines and returns the new lines. lines is not
// modified. Edits are applied bottom-up so their positions stay valid.
func Apply(lines []string, edits ...Edit) ([]string, error) {
	sorted := append([]Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row > sorted[j].Row
		}
		return sorted[i].Column > sorted[j].Column
	})

	for i := 1; i < len(sorted); i++ {
		if !sorted[i].before(sorted[i-1]) {
			return nil, fmt.Errorf("%w: %q and %q", ErrOverlap, sorted[i].Title, sorted[i-1].Title)
		}
	}

	out := append([]string(nil), lines...)
	for _, e := range sorted {
		if err := e.validate(out); err != nil {
			return nil, err
		}
		merged := out[e.Row][:e.Column] + e.Text + out[e.EndRow][e.EndColumn:]

		next := make([]string, 0, len(out)+strings.Count(e.Text, "\n"))
		next = append(next, out[:e.Row]...)
		next = append(next, strings.Split(merged, "\n")...)
		next = append(next, out[e.EndRow+1:]...)
		out = next
	}
	return out, nil
}

func (e Edit) validate(lines []string) error {
	if e.Row < 0 || e.EndRow >= len(lines) || e.EndRow < e.Row {
		return fmt.Errorf("edit %q is outside the document", e.Title)
	}
	if e.Column < 0 || e.Column > len(lines[e.Row]) || e.EndColumn > len(lines[e.EndRow]) {
		return fmt.Errorf("edit %q is outside its line", e.Title)
	}
	if e.Row == e.EndRow && e.EndColumn < e.Column {
		return fmt.Errorf("edit %q ends before it starts", e.Title)
	}
	return nil
}

// Documentation returns the documentation link of a control finding.
func Documentation(f findings.Finding) string {
	if f.Kind != findings.KindControl || f.ID == "" {
		return ""
	}
	return DocsBaseURL + strings.ToLower(f.ID)
}

// Rewrite applies the fixes of fs one at a time. Every path is located again
// in the lines produced by the previous fix, so missing ancestors shared by
// several findings are only created once. It returns the new lines and the
// number of applied fixes.
func Rewrite(lines []string, fs []findings.Finding) ([]string, int, error) {
	out := lines
	applied := 0
	for _, f := range fs {
		if f.Fix == nil || f.Fix.Placeholder || f.Kind != findings.KindControl {
			continue
		}
		doc, ok := manifest.MatchResource(manifest.Split(out), f.Resource)
		if !ok {
			if _, parsed := manifest.ParseResourceID(f.Resource); parsed {
				continue
			}
			doc = manifest.Whole(out)
		}
		located := doc.Locate(yamlpath.Tokenize(f.Path), out, f.Fix.Value)

		current := f
		current.Range = located.Range
		fix := located.Fix
		fix.Placeholder = f.Fix.Placeholder
		current.Fix = &fix
		edit, ok := ForFinding(current, out)
		if !ok {
			continue
		}
		next, err := Apply(out, edit)
		if err != nil {
			return nil, applied, fmt.Errorf("failed to fix %s at %s: %w", f.ID, f.Path, err)
		}
		out = next
		applied++
	}
	return out, applied, nil
}
