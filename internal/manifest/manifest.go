// Package manifest splits Kubernetes YAML streams into documents and matches
// scanner resource ids to them.
package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

// Document is one YAML document of a stream. Start and End are rows of the
// whole file, End is exclusive.
type Document struct {
	Start int
	End   int

	APIVersion string
	Kind       string
	Name       string
	Namespace  string
}

// Whole returns a document spanning all lines, without metadata.
func Whole(lines []string) Document {
	return Document{End: len(lines)}
}

// Lines returns the document's slice of all.
func (d Document) Lines(all []string) []string {
	if d.End > len(all) {
		return all[d.Start:]
	}
	return all[d.Start:d.End]
}

// Locate resolves path inside the document and reports rows of the whole
// file.
func (d Document) Locate(path yamlpath.Path, all []string, value string) yamlpath.Located {
	l := yamlpath.LocatePath(path, d.Lines(all), value)
	if d.Start == 0 {
		return l
	}
	if l.Resolution.Location.Row >= 0 {
		l.Resolution.Location.Row += d.Start
	}
	l.Range.StartRow += d.Start
	l.Range.EndRow += d.Start
	l.Fix.Row += d.Start
	return l
}

func isSeparator(line string) bool {
	if !strings.HasPrefix(line, "---") {
		return false
	}
	rest := strings.TrimSpace(line[3:])
	return rest == "" || strings.HasPrefix(rest, "#")
}

// Split cuts lines at "---" separators. Documents without any content are
// dropped. Metadata is read on a best effort basis: a document that does not
// decode keeps its rows but has empty metadata.
func Split(lines []string) []Document {
	var docs []Document
	start := 0
	for i := 0; i <= len(lines); i++ {
		if i < len(lines) && !isSeparator(lines[i]) {
			continue
		}
		if doc, ok := newDocument(lines, start, i); ok {
			docs = append(docs, doc)
		}
		start = i + 1
	}
	return docs
}

func newDocument(lines []string, start, end int) (Document, bool) {
	if start >= end {
		return Document{}, false
	}
	body := lines[start:end]
	empty := true
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			empty = false
			break
		}
	}
	if empty {
		return Document{}, false
	}

	doc := Document{Start: start, End: end}
	var obj map[string]interface{}
	if err := yaml.Unmarshal([]byte(strings.Join(body, "\n")), &obj); err != nil || obj == nil {
		return doc, true
	}
	u := unstructured.Unstructured{Object: obj}
	doc.APIVersion = u.GetAPIVersion()
	doc.Kind = u.GetKind()
	doc.Name = u.GetName()
	doc.Namespace = u.GetNamespace()
	return doc, true
}

// ResourceID is a parsed kubescape resource id such as
// "apps/v1/default/Deployment/web" or "/v1/default/Pod/web".
type ResourceID struct {
	APIVersion string
	Namespace  string
	Kind       string
	Name       string
}

// ParseResourceID splits id into its parts. Ids with fewer than three
// segments are not resource ids.
func ParseResourceID(id string) (ResourceID, bool) {
	parts := strings.Split(id, "/")
	if len(parts) < 3 {
		return ResourceID{}, false
	}
	n := len(parts)
	return ResourceID{
		APIVersion: strings.Trim(strings.Join(parts[:n-3], "/"), "/"),
		Namespace:  parts[n-3],
		Kind:       parts[n-2],
		Name:       parts[n-1],
	}, true
}

func (d Document) matches(id ResourceID) bool {
	if d.Kind != id.Kind || d.Name != id.Name {
		return false
	}
	if id.APIVersion != "" && d.APIVersion != "" && id.APIVersion != d.APIVersion {
		return false
	}
	return id.Namespace == "" || d.Namespace == "" || id.Namespace == d.Namespace
}

// identified reports whether the document metadata names a resource.
func (d Document) identified() bool {
	return d.Kind != "" && d.Name != ""
}

// MatchResource returns the document a kubescape resource id refers to. A
// single document without kind and name, or one paired with an id that does
// not parse, is taken as the target.
func MatchResource(docs []Document, resourceID string) (Document, bool) {
	id, ok := ParseResourceID(resourceID)
	if len(docs) == 1 && (!ok || !docs[0].identified()) {
		return docs[0], true
	}
	if !ok {
		return Document{}, false
	}
	for _, d := range docs {
		if d.matches(id) {
			return d, true
		}
	}
	return Document{}, false
}
