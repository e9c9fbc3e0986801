package yamlpath

import "strings"

// itemPrefix marks a rendered step that opens a new sequence item.
const itemPrefix = "- "

// FixPlan describes the text that materializes the unresolved part of a path.
type FixPlan struct {
	// Steps are the missing keys in descent order. A step that opens a new
	// sequence item carries a "- " prefix.
	Steps []string `json:"steps,omitempty"`
	Value string   `json:"value,omitempty"`
	// Indent is the column of the first synthesized line.
	Indent int `json:"indent"`
	// Row and Column locate the insertion point, always at the end of a line.
	Row    int `json:"row"`
	Column int `json:"column"`
	// ValueAsItem renders Value as a new sequence item instead of appending
	// it to the last key.
	ValueAsItem bool `json:"value_as_item,omitempty"`
	// Placeholder marks Value as display text standing in for an unknown
	// value. Such plans are shown but never written.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Empty reports whether the plan inserts nothing, which means the path was
// fully resolved and only its value can be replaced.
func (p FixPlan) Empty() bool {
	return len(p.Steps) == 0 && !p.ValueAsItem
}

// Text renders the insertion. It starts with a line break so it can be
// inserted at the end of the anchor line.
func (p FixPlan) Text() string {
	var b strings.Builder
	indent := p.Indent
	for _, s := range p.Steps {
		b.WriteString("\n")
		b.WriteString(spaces(indent))
		b.WriteString(s)
		b.WriteString(":")
		if strings.HasPrefix(s, itemPrefix) {
			indent += len(itemPrefix)
		}
		indent += 2
	}
	switch {
	case p.ValueAsItem:
		b.WriteString("\n")
		b.WriteString(spaces(indent))
		b.WriteString(itemPrefix)
		b.WriteString(p.Value)
	case len(p.Steps) > 0 && p.Value != "":
		b.WriteString(" ")
		b.WriteString(p.Value)
	}
	return b.String()
}

// Plan builds the fix for the steps res could not resolve. The text goes
// after the end of the last resolved ancestor's block, or after the last line
// of the document when nothing resolved.
func Plan(path Path, res Resolution, lines []string, value string) FixPlan {
	plan := FixPlan{Value: value}
	if res.Matched || len(path) == 0 {
		if res.Location.Row >= 0 {
			rng := EndOf(res.Location, lines, res.OnItem)
			plan.Row, plan.Column = rng.EndRow, rng.EndColumn
			plan.Indent = res.Location.Column
		}
		return plan
	}

	if res.Location.Row < 0 {
		if n := len(lines); n > 0 {
			plan.Row, plan.Column = n-1, len(lines[n-1])
		}
	} else {
		rng := EndOf(res.Location, lines, res.OnItem)
		plan.Row, plan.Column = rng.EndRow, rng.EndColumn
		plan.Indent = baseIndent(res, lines)
	}

	tail := path[res.Unresolved:]
	itemNext := false
	if res.PendingItem {
		// the key exists, only the item is missing
		tail = tail[1:]
		itemNext = true
	}
	for _, s := range tail {
		name := s.Name
		if itemNext {
			name = itemPrefix + name
		}
		plan.Steps = append(plan.Steps, name)
		itemNext = s.Indexed()
	}
	plan.ValueAsItem = itemNext

	return plan
}

func baseIndent(res Resolution, lines []string) int {
	loc := res.Location
	if res.PendingItem {
		if res.ItemIndent >= 0 {
			return res.ItemIndent
		}
		return loc.Column + 2
	}
	for r := loc.Row + 1; r < len(lines); r++ {
		if !significant(lines[r]) {
			continue
		}
		if indent := indentOf(lines[r]); indent > loc.Column {
			return indent
		}
		break
	}
	return loc.Column + 2
}
