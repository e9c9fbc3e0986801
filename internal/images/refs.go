// Package images finds container image references in manifests and
// Dockerfiles and turns image scan reports into findings.
package images

import (
	"strings"
)

// Ref is an image reference and where it was written.
type Ref struct {
	Image  string
	Row    int
	Column int
	EndCol int
}

// FromYAML returns the values of every "image:" key, including keys on
// sequence item lines.
func FromYAML(lines []string) []Ref {
	var refs []Ref
	for row, line := range lines {
		col := contentStart(line)
		rest := line[col:]
		if !strings.HasPrefix(rest, "image:") {
			continue
		}
		image := cleanValue(rest[len("image:"):])
		if image == "" {
			continue
		}
		refs = append(refs, Ref{Image: image, Row: row, Column: col, EndCol: len(line)})
	}
	return refs
}

// FromDockerfile returns the base images of FROM instructions. Flags such as
// --platform are skipped, and references to earlier build stages or scratch
// are not images.
func FromDockerfile(lines []string) []Ref {
	var refs []Ref
	stages := make(map[string]bool)
	for row, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.EqualFold(fields[0], "FROM") {
			continue
		}
		args := fields[1:]
		for len(args) > 0 && strings.HasPrefix(args[0], "--") {
			args = args[1:]
		}
		if len(args) == 0 {
			continue
		}
		image := args[0]
		stage := stages[strings.ToLower(image)]
		if len(args) >= 3 && strings.EqualFold(args[1], "AS") {
			stages[strings.ToLower(args[2])] = true
		}
		if stage || strings.EqualFold(image, "scratch") {
			continue
		}
		refs = append(refs, Ref{
			Image:  image,
			Row:    row,
			Column: strings.Index(line, fields[0]),
			EndCol: len(line),
		})
	}
	return refs
}

// IsDockerfile tells Dockerfiles apart from manifests by file name.
func IsDockerfile(name string) bool {
	base := strings.ToLower(name)
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return base == "dockerfile" || strings.HasPrefix(base, "dockerfile.") || strings.HasSuffix(base, ".dockerfile") || base == "containerfile"
}

func contentStart(line string) int {
	col := 0
	for col < len(line) && line[col] == ' ' {
		col++
	}
	for col+1 < len(line) && line[col] == '-' && line[col+1] == ' ' {
		col += 2
		for col < len(line) && line[col] == ' ' {
			col++
		}
	}
	return col
}

func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if strings.HasPrefix(v, "#") {
		return ""
	}
	return strings.Trim(v, `"'`)
}
