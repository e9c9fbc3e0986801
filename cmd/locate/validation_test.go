package locate

import "testing"

func TestValidateLocateArgs(t *testing.T) {
	t.Run("missing file and paths", func(t *testing.T) {
		err := validateLocateArgs(&RunOptionsLocate{Format: formatText}, nil)
		want := "missing required flags: file; provide at least one path"
		if err == nil || err.Error() != want {
			t.Fatalf("unexpected error\nwant: %q\n got: %v", want, err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		err := validateLocateArgs(&RunOptionsLocate{File: "a.yaml", Format: formatText}, []string{"spec", " "})
		if err == nil || err.Error() != "paths cannot be empty" {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		err := validateLocateArgs(&RunOptionsLocate{File: "a.yaml", Format: "xml"}, []string{"spec"})
		if err == nil || err.Error() != `invalid format: "xml"` {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("valid options", func(t *testing.T) {
		if err := validateLocateArgs(&RunOptionsLocate{File: "a.yaml", Format: formatJSON}, []string{"spec"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
