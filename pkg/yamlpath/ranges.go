package yamlpath

import "unicode"

// Range is a span of text. EndRow >= StartRow, and on a single row
// EndColumn >= StartColumn.
type Range struct {
	StartRow    int `json:"start_row"`
	StartColumn int `json:"start_column"`
	EndRow      int `json:"end_row"`
	EndColumn   int `json:"end_column"`
}

// Contains reports whether row falls inside the span.
func (r Range) Contains(row int) bool {
	return row >= r.StartRow && row <= r.EndRow
}

// EndOf extends loc to the end of the scalar or block that starts there. The
// block ends before the first row whose character at the control column is
// not a space. The control column is the "-" marker for sequence items and
// the first word character otherwise. Blank and comment-only rows neither end
// nor extend a block.
func EndOf(loc Location, lines []string, isArrayElement bool) Range {
	if loc.Row < 0 || loc.Row >= len(lines) {
		return Range{}
	}
	start := lines[loc.Row]
	col := controlColumn(start, loc.Column, isArrayElement)
	// a key without an inline value may own indentless "- " items
	ownsItems := !isArrayElement && !hasInlineValue(start, col)

	end := loc.Row
	for r := loc.Row + 1; r < len(lines); r++ {
		line := lines[r]
		if !significant(line) {
			continue
		}
		if col < len(line) && line[col] == ' ' {
			end = r
			continue
		}
		if ownsItems {
			if dash, ok := markerAt(line); ok && dash == col {
				end = r
				continue
			}
		}
		break
	}

	return Range{
		StartRow:    loc.Row,
		StartColumn: loc.Column,
		EndRow:      end,
		EndColumn:   len(lines[end]),
	}
}

func controlColumn(line string, from int, isArrayElement bool) int {
	if from < 0 || from > len(line) {
		from = 0
	}
	for i := from; i < len(line); i++ {
		c := rune(line[i])
		if isArrayElement {
			if c == '-' {
				return i
			}
			continue
		}
		if c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			return i
		}
	}
	return from
}
