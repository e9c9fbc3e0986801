// Package yamlpath maps structural paths such as spec.containers[0].image onto
// the text of a YAML document without building a YAML tree. The document is
// treated as a snapshot of lines; every function here is pure over that
// snapshot.
package yamlpath

import (
	"strconv"
	"strings"
)

// NoIndex marks a step that addresses a mapping key only.
const NoIndex = -1

// Step is one level of descent: a mapping key, optionally followed by a
// zero-based index into the sequence stored under that key.
type Step struct {
	Name  string
	Index int
}

// Key returns a plain mapping step.
func Key(name string) Step {
	return Step{Name: name, Index: NoIndex}
}

// Item returns a step addressing element i of the sequence under name.
func Item(name string, i int) Step {
	return Step{Name: name, Index: i}
}

// Indexed reports whether the step descends into a sequence element.
func (s Step) Indexed() bool {
	return s.Index != NoIndex
}

func (s Step) String() string {
	if !s.Indexed() {
		return s.Name
	}
	return s.Name + "[" + strconv.Itoa(s.Index) + "]"
}

// Path is the ordered descent from the document root.
type Path []Step

func (p Path) String() string {
	parts := make([]string, 0, len(p))
	for _, s := range p {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ".")
}

// Tokenize splits a structural path into steps. It never fails: malformed
// input degrades to the best grouping it can find, and input without any
// identifier yields an empty Path.
//
// Letters start or extend the current step, a dot closes it, and a bracketed
// run of digits becomes the index of the step it follows, even across a dot.
// Any other character
// is glued onto the current step name so that keys like run_as or
// app.kubernetes.io-style fragments still land in a single step.
func Tokenize(path string) Path {
	var (
		steps  Path
		name   strings.Builder
		index  = NoIndex
		closed = true
	)

	flush := func() {
		if name.Len() > 0 {
			steps = append(steps, Step{Name: name.String(), Index: index})
		}
		name.Reset()
		index = NoIndex
		closed = true
	}

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '.':
			flush()
		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				// unterminated bracket, nothing after it can be an index
				i = len(path)
				continue
			}
			raw := path[i+1 : i+end]
			i += end
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				continue
			}
			if name.Len() == 0 {
				// "a.[0]" indexes the step closed by the dot
				if last := len(steps) - 1; last >= 0 && steps[last].Index == NoIndex {
					steps[last].Index = n
				}
				continue
			}
			if index == NoIndex {
				index = n
			}
		case isLetter(c):
			if index != NoIndex {
				// letters after an index open a new step even without a dot
				flush()
			}
			name.WriteByte(c)
			closed = false
		default:
			if !closed {
				name.WriteByte(c)
			}
		}
	}
	flush()

	return steps
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
