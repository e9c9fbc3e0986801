package yamlpath

import "strings"

// indentOf counts leading spaces. Tab-indented documents are not supported.
func indentOf(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// significant reports whether a line carries YAML content, i.e. it is neither
// blank nor a comment.
func significant(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && !strings.HasPrefix(trimmed, "#")
}

// markerAt returns the column of a leading sequence marker ("- " or a lone
// "-"). Document separators such as "---" are not markers.
func markerAt(line string) (int, bool) {
	col := indentOf(line)
	if col >= len(line) || line[col] != '-' {
		return 0, false
	}
	if col+1 < len(line) && line[col+1] != ' ' {
		return 0, false
	}
	return col, true
}

// keyAt returns the column of name when the line's content starts with
// "name:" (after any sequence markers). A key embedded in a longer word, such
// as "name" inside "hostname:", does not match.
func keyAt(line, name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	col := indentOf(line)
	for col < len(line) && line[col] == '-' {
		if col+1 < len(line) && line[col+1] != ' ' {
			break
		}
		col++
		for col < len(line) && line[col] == ' ' {
			col++
		}
	}
	rest := line[col:]
	for _, key := range []string{name, `"` + name + `"`, `'` + name + `'`} {
		if !strings.HasPrefix(rest, key+":") {
			continue
		}
		after := rest[len(key)+1:]
		if after == "" || after[0] == ' ' {
			return col, true
		}
	}
	return 0, false
}

// hasInlineValue reports whether the key line at col already carries a value
// after its colon, e.g. "image: nginx" as opposed to "containers:".
func hasInlineValue(line string, col int) bool {
	if col >= len(line) {
		return false
	}
	colon := strings.IndexByte(line[col:], ':')
	if colon < 0 {
		return false
	}
	value := strings.TrimSpace(line[col+colon+1:])
	return value != "" && !strings.HasPrefix(value, "#")
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
