package yamlpath

import "errors"

// ErrNoSteps is returned by Compile for paths without any identifier.
var ErrNoSteps = errors.New("path has no steps")

// Located is everything known about one path in one document snapshot.
type Located struct {
	Path       Path
	Resolution Resolution
	// Range highlights the deepest resolved step, or the first line when
	// nothing resolved.
	Range Range
	Fix   FixPlan
}

// Matched is a shorthand for l.Resolution.Matched.
func (l Located) Matched() bool {
	return l.Resolution.Matched
}

// Compile tokenizes path and rejects paths that yield no steps.
func Compile(path string) (Path, error) {
	steps := Tokenize(path)
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return steps, nil
}

// Locate tokenizes and resolves path against lines, then computes the range
// of the deepest resolved step and the fix for whatever is missing. value is
// the leaf value used by the fix.
func Locate(path string, lines []string, value string) Located {
	return LocatePath(Tokenize(path), lines, value)
}

// LocatePath is Locate for an already tokenized path.
func LocatePath(path Path, lines []string, value string) Located {
	res := Resolve(path, lines)
	l := Located{
		Path:       path,
		Resolution: res,
		Fix:        Plan(path, res, lines, value),
	}
	switch {
	case res.Location.Row >= 0:
		l.Range = EndOf(res.Location, lines, res.OnItem)
	case len(lines) > 0:
		l.Range = Range{EndColumn: len(lines[0])}
	}
	return l
}
