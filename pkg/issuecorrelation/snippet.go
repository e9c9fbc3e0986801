package issuecorrelation

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// SnippetHash returns the SHA256 hex digest of rows start..end (0-based,
// inclusive) of lines, with surrounding whitespace of every row removed so
// that re-indentation does not change the hash. Invalid bounds yield "".
func SnippetHash(lines []string, start, end int) string {
	if start < 0 || start >= len(lines) {
		return ""
	}
	if end < start {
		end = start
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	trimmed := make([]string, 0, end-start+1)
	for _, line := range lines[start : end+1] {
		trimmed = append(trimmed, strings.TrimSpace(line))
	}
	sum := sha256.Sum256([]byte(strings.Join(trimmed, "\n")))
	return fmt.Sprintf("%x", sum[:])
}
