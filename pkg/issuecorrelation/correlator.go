// Package issuecorrelation matches the findings of a scan against the
// findings of an earlier scan of the same files.
package issuecorrelation

// Issue is the metadata needed to recognize a finding across scans. Ref is
// an opaque handle of the caller and is not used for matching.
type Issue struct {
	Ref         string
	RuleID      string
	Filename    string
	StartLine   int
	EndLine     int
	SnippetHash string
}

// State is the baseline state of a current issue.
type State string

const (
	StateNew       State = "new"
	StateUnchanged State = "unchanged"
	StateUpdated   State = "updated"
	StateAbsent    State = "absent"
)

// stage is one matching rule. Earlier stages are stricter.
type stage struct {
	state State
	match func(a, b Issue) bool
}

var stages = []stage{
	{StateUnchanged, func(a, b Issue) bool {
		return a.StartLine == b.StartLine && a.EndLine == b.EndLine && hashesEqual(a, b)
	}},
	{StateUnchanged, hashesEqual},
	{StateUpdated, func(a, b Issue) bool {
		return a.StartLine == b.StartLine && a.EndLine == b.EndLine
	}},
	{StateUpdated, func(a, b Issue) bool {
		return a.StartLine == b.StartLine
	}},
}

func hashesEqual(a, b Issue) bool {
	return a.SnippetHash != "" && a.SnippetHash == b.SnippetHash
}

// Correlator pairs current issues with baseline issues. Every issue takes
// part in at most one pair; an issue matched by a stage is not offered to
// later stages.
type Correlator struct {
	Current  []Issue
	Baseline []Issue

	currentTo  []int // current index -> baseline index or -1
	baselineTo []int // baseline index -> current index or -1
	states     []State

	processed bool
}

// NewCorrelator constructs a Correlator. It is inert until Process is called.
func NewCorrelator(current, baseline []Issue) *Correlator {
	return &Correlator{
		Current:  current,
		Baseline: baseline,
	}
}

// Process runs the matching stages in order:
// 1) rule + file + lines + snippet hash
// 2) rule + file + snippet hash
// 3) rule + file + lines
// 4) rule + file + start line
// Process is idempotent.
func (c *Correlator) Process() {
	if c.processed {
		return
	}
	c.currentTo = filled(len(c.Current), -1)
	c.baselineTo = filled(len(c.Baseline), -1)
	c.states = make([]State, len(c.Current))
	for i := range c.states {
		c.states[i] = StateNew
	}

	for _, st := range stages {
		for ci, cur := range c.Current {
			if c.currentTo[ci] >= 0 {
				continue
			}
			for bi, base := range c.Baseline {
				if c.baselineTo[bi] >= 0 || !sameRule(cur, base) || !st.match(cur, base) {
					continue
				}
				c.currentTo[ci] = bi
				c.baselineTo[bi] = ci
				c.states[ci] = st.state
				break
			}
		}
	}
	c.processed = true
}

func sameRule(a, b Issue) bool {
	return a.RuleID != "" && a.RuleID == b.RuleID && a.Filename == b.Filename
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// States returns the baseline state of every current issue, index aligned
// with Current.
func (c *Correlator) States() []State {
	c.Process()
	return append([]State(nil), c.states...)
}

// Pair returns the baseline issue matched to current issue i.
func (c *Correlator) Pair(i int) (Issue, bool) {
	c.Process()
	if i < 0 || i >= len(c.currentTo) || c.currentTo[i] < 0 {
		return Issue{}, false
	}
	return c.Baseline[c.currentTo[i]], true
}

// Absent returns the baseline issues with no current counterpart.
func (c *Correlator) Absent() []Issue {
	c.Process()
	var out []Issue
	for bi, b := range c.Baseline {
		if c.baselineTo[bi] < 0 {
			out = append(out, b)
		}
	}
	return out
}
