package issuecorrelation

import (
	"crypto/sha256"
	"fmt"
	"testing"
)

func TestSnippetHash(t *testing.T) {
	lines := []string{
		"spec:",
		"  hostPID: true",
		"  containers:",
		"  - name: app",
	}
	hashOf := func(s string) string {
		sum := sha256.Sum256([]byte(s))
		return fmt.Sprintf("%x", sum[:])
	}

	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{"single line", 1, 1, hashOf("hostPID: true")},
		{"range", 2, 3, hashOf("containers:\n- name: app")},
		{"end before start", 1, 0, hashOf("hostPID: true")},
		{"end past the document", 3, 9, hashOf("- name: app")},
		{"start past the document", 4, 4, ""},
		{"negative start", -1, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnippetHash(lines, tt.start, tt.end); got != tt.want {
				t.Errorf("SnippetHash(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestSnippetHashIgnoresIndentation(t *testing.T) {
	a := SnippetHash([]string{"  image: nginx"}, 0, 0)
	b := SnippetHash([]string{"        image: nginx"}, 0, 0)
	if a != b {
		t.Fatalf("expected equal hashes for re-indented lines")
	}
}
