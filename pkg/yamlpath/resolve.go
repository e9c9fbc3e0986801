package yamlpath

// Location is a 0-based position in a document. Column is the offset of the
// matched key, or of the "-" marker when the location is a sequence item.
type Location struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Resolution is the outcome of walking a Path down a document.
type Resolution struct {
	// Location of the deepest resolved step. Row is -1 when not even the
	// first step resolved.
	Location Location
	// Matched is true when every step resolved.
	Matched bool
	// Unresolved is the index of the first step that could not be resolved,
	// or len(path) when Matched.
	Unresolved int
	// PendingItem is set when the key of the first unresolved step exists
	// but its sequence has too few items. Location then points at that key.
	PendingItem bool
	// ItemIndent is the column of the existing "-" markers of a pending
	// sequence, or -1 when the sequence has no items.
	ItemIndent int
	// OnItem is true when Location points at a sequence item marker.
	OnItem bool
}

// cursor is the resolver's accumulator. minIndent only ever grows while a
// path is walked.
type cursor struct {
	row       int
	minIndent int
	// column of the enclosing key or item marker, bounds the search
	parentCol int
	onItem    bool
}

func (c cursor) root() bool {
	return c.row < 0
}

// ends reports whether a significant line lies outside the block of the
// current match.
func (c cursor) ends(line string) bool {
	if c.root() {
		return false
	}
	indent := indentOf(line)
	if c.onItem {
		return indent <= c.parentCol
	}
	if indent < c.parentCol {
		return true
	}
	if indent == c.parentCol {
		// indentless sequence items still belong to the key above them
		col, ok := markerAt(line)
		return !ok || col != c.parentCol
	}
	return false
}

func (c cursor) findKey(lines []string, name string) (int, int, bool) {
	start := c.row + 1
	if c.onItem {
		// the item's first key shares the marker line
		start = c.row
	}
	for r := start; r < len(lines); r++ {
		line := lines[r]
		if !significant(line) {
			continue
		}
		if r != c.row && c.ends(line) {
			break
		}
		if col, ok := keyAt(line, name); ok && col >= c.minIndent {
			return r, col, true
		}
	}
	return 0, 0, false
}

// findItem looks for item index of the sequence held by the key at c. It
// returns the item's row and marker column, or ok=false together with the
// sequence's marker column (-1 when there are no items).
func (c cursor) findItem(lines []string, index int) (row, col int, ok bool) {
	arrayIndent := -1
	for r := c.row + 1; r < len(lines); r++ {
		line := lines[r]
		if !significant(line) {
			continue
		}
		if c.ends(line) {
			break
		}
		if dash, isItem := markerAt(line); isItem && dash >= c.minIndent {
			arrayIndent = dash
		}
		break
	}
	if arrayIndent < 0 {
		return 0, -1, false
	}

	n := -1
	for r := c.row + 1; r < len(lines); r++ {
		line := lines[r]
		if !significant(line) {
			continue
		}
		if c.ends(line) {
			break
		}
		if dash, isItem := markerAt(line); isItem && dash == arrayIndent {
			n++
			if n == index {
				return r, dash, true
			}
		}
	}
	return 0, arrayIndent, false
}

// Resolve walks path down lines. Each key step takes the first line, in
// document order, whose key sits at or right of the previous match and
// inside the previous match's block. Failing to resolve a step is a normal
// outcome reported through Unresolved, not an error.
func Resolve(path Path, lines []string) Resolution {
	res := Resolution{
		Location:   Location{Row: -1},
		ItemIndent: -1,
	}
	if len(path) == 0 || len(lines) == 0 {
		return res
	}

	cur := cursor{row: -1}
	for i, step := range path {
		row, col, ok := cur.findKey(lines, step.Name)
		if !ok {
			res.Unresolved = i
			res.Location = cur.location()
			res.OnItem = cur.onItem
			return res
		}
		next := cursor{row: row, minIndent: col, parentCol: col}

		if step.Indexed() {
			itemRow, dash, found := next.findItem(lines, step.Index)
			if !found {
				res.Unresolved = i
				res.Location = next.location()
				res.PendingItem = true
				res.ItemIndent = dash
				return res
			}
			next = cursor{row: itemRow, minIndent: dash, parentCol: dash, onItem: true}
		}
		cur = next
	}

	res.Matched = true
	res.Unresolved = len(path)
	res.Location = cur.location()
	res.OnItem = cur.onItem
	return res
}

func (c cursor) location() Location {
	if c.root() {
		return Location{Row: -1}
	}
	return Location{Row: c.row, Column: c.minIndent}
}
