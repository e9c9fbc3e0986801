package yamlpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Path
	}{
		{
			name: "keys and index",
			path: "spec.containers[0].image",
			want: Path{Key("spec"), Item("containers", 0), Key("image")},
		},
		{
			name: "plain keys",
			path: "metadata.labels.app",
			want: Path{Key("metadata"), Key("labels"), Key("app")},
		},
		{
			name: "index on first step",
			path: "containers[2].image",
			want: Path{Item("containers", 2), Key("image")},
		},
		{
			name: "underscore glued to the key",
			path: "run_as.user",
			want: Path{Key("run_as"), Key("user")},
		},
		{
			name: "letters after index open a new step",
			path: "a[1]b",
			want: Path{Item("a", 1), Key("b")},
		},
		{
			name: "leading index dropped",
			path: "[0].a",
			want: Path{Key("a")},
		},
		{
			name: "index after a dot attaches to the previous key",
			path: "a.[0]",
			want: Path{Item("a", 0)},
		},
		{
			name: "index after a dot in the middle of a path",
			path: "spec.containers.[1].image",
			want: Path{Key("spec"), Item("containers", 1), Key("image")},
		},
		{
			name: "index after a dot does not replace an index",
			path: "a[1].[2]",
			want: Path{Item("a", 1)},
		},
		{
			name: "non numeric index dropped",
			path: "a[x].b",
			want: Path{Key("a"), Key("b")},
		},
		{
			name: "second index ignored",
			path: "a[1][2]",
			want: Path{Item("a", 1)},
		},
		{
			name: "unterminated bracket",
			path: "a[",
			want: Path{Key("a")},
		},
		{
			name: "empty",
			path: "",
			want: nil,
		},
		{
			name: "no identifiers",
			path: "...[1]",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.path))
		})
	}
}

func TestPathString(t *testing.T) {
	for _, p := range []string{
		"spec.containers[0].image",
		"metadata.name",
		"spec.template.spec.volumes[3]",
	} {
		assert.Equal(t, p, Tokenize(p).String())
	}
}

func TestCompile(t *testing.T) {
	steps, err := Compile("spec.hostPID")
	assert.NoError(t, err)
	assert.Len(t, steps, 2)

	_, err = Compile("[0]")
	assert.ErrorIs(t, err, ErrNoSteps)
}
