package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	base := errors.New("3 findings at or above warning")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", base, ExitFailure},
		{"command", NewCommandError(base, ExitFindings), ExitFindings},
		{"wrapped command", fmt.Errorf("scan: %w", NewCommandError(base, ExitFindings)), ExitFindings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := NewCommandError(base, ExitFailure)
	if err.Error() != "boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected the cause to be reachable")
	}
}
