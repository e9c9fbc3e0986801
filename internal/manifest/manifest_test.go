package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/kubelens/pkg/yamlpath"
)

var stream = strings.Split(`# app stack
---
apiVersion: v1
kind: Service
metadata:
  name: web
  namespace: shop
spec:
  ports:
  - port: 80
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: shop
spec:
  template:
    spec:
      containers:
      - name: web
        image: nginx:1.25
--- # trailing
`, "\n")

func TestSplit(t *testing.T) {
	docs := Split(stream)
	require.Len(t, docs, 2)

	assert.Equal(t, Document{Start: 2, End: 10, APIVersion: "v1", Kind: "Service", Name: "web", Namespace: "shop"}, docs[0])
	assert.Equal(t, Document{Start: 11, End: 22, APIVersion: "apps/v1", Kind: "Deployment", Name: "web", Namespace: "shop"}, docs[1])
}

func TestSplitUndecodable(t *testing.T) {
	docs := Split([]string{"kind: [", "name: x"})
	require.Len(t, docs, 1)
	assert.Equal(t, Document{Start: 0, End: 2}, docs[0])
}

func TestParseResourceID(t *testing.T) {
	id, ok := ParseResourceID("apps/v1/shop/Deployment/web")
	require.True(t, ok)
	assert.Equal(t, ResourceID{APIVersion: "apps/v1", Namespace: "shop", Kind: "Deployment", Name: "web"}, id)

	id, ok = ParseResourceID("/v1//Pod/web")
	require.True(t, ok)
	assert.Equal(t, ResourceID{APIVersion: "v1", Kind: "Pod", Name: "web"}, id)

	_, ok = ParseResourceID("web")
	assert.False(t, ok)
}

func TestMatchResource(t *testing.T) {
	docs := Split(stream)

	tests := []struct {
		name      string
		id        string
		wantStart int
		wantOK    bool
	}{
		{name: "deployment", id: "apps/v1/shop/Deployment/web", wantStart: 11, wantOK: true},
		{name: "service", id: "/v1/shop/Service/web", wantStart: 2, wantOK: true},
		{name: "no namespace in id", id: "apps/v1//Deployment/web", wantStart: 11, wantOK: true},
		{name: "other namespace", id: "apps/v1/prod/Deployment/web", wantOK: false},
		{name: "unknown kind", id: "apps/v1/shop/StatefulSet/web", wantOK: false},
		{name: "not an id", id: "web", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := MatchResource(docs, tt.id)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantStart, doc.Start)
			}
		})
	}

	single := []Document{{Start: 0, End: 3}}
	doc, ok := MatchResource(single, "anything")
	assert.True(t, ok)
	assert.Equal(t, single[0], doc)

	doc, ok = MatchResource(single, "apps/v1/shop/Deployment/db")
	assert.True(t, ok, "a document without metadata takes any id")
	assert.Equal(t, single[0], doc)
}

func TestMatchResourceSingleDocument(t *testing.T) {
	web := Split(strings.Split("apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: web\n  namespace: default\nspec:\n  replicas: 1", "\n"))
	require.Len(t, web, 1)

	doc, ok := MatchResource(web, "apps/v1/default/Deployment/web")
	assert.True(t, ok)
	assert.Equal(t, web[0], doc)

	_, ok = MatchResource(web, "apps/v1/default/Deployment/db")
	assert.False(t, ok)

	_, ok = MatchResource(web, "/v1/default/Service/web")
	assert.False(t, ok)

	doc, ok = MatchResource(web, "web")
	assert.True(t, ok)
	assert.Equal(t, web[0], doc)
}

func TestDocumentLocate(t *testing.T) {
	docs := Split(stream)
	deployment := docs[1]

	l := deployment.Locate(yamlpath.Tokenize("spec.template.spec.containers[0].image"), stream, "")
	require.True(t, l.Matched())
	assert.Equal(t, 21, l.Range.StartRow)
	assert.Contains(t, stream[l.Range.StartRow], "image: nginx")

	// the first "metadata" of the file belongs to the Service
	l = deployment.Locate(yamlpath.Tokenize("metadata.labels"), stream, "")
	require.False(t, l.Matched())
	assert.Equal(t, 13, l.Resolution.Location.Row)
	assert.Equal(t, 15, l.Fix.Row)
	assert.Equal(t, "\n  labels:", l.Fix.Text())
}
