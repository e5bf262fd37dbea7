// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "load content"}, "failed to load content"},
		{
			"with resource",
			&ActionableError{Operation: "load content", Resource: "./scripts"},
			"failed to load content: ./scripts",
		},
		{
			"with cause",
			&ActionableError{Operation: "load configuration", Cause: errors.New("bad field")},
			"failed to load configuration: bad field",
		},
		{
			"full",
			&ActionableError{Operation: "load content", Resource: "./scripts", Cause: errors.New("not a directory")},
			"failed to load content: ./scripts: not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("permission denied")
	err := &ActionableError{
		Operation:   "serve metrics",
		Resource:    ":9464",
		Suggestions: []string{"Choose a free address", "Leave metrics.addr empty"},
		Cause:       fmt.Errorf("listen: %w", root),
	}

	plain := err.Format(false)
	for _, want := range []string{"failed to serve metrics: :9464", "• Choose a free address", "• Leave metrics.addr empty"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. listen: permission denied", "2. permission denied"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("compile scripts").
		WithResource("a.lua").
		WithSuggestion("Run 'scripthook check'").
		Wrap(cause).
		BuildError()

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false for %v", err)
	}
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() = %T, want *ActionableError", err)
	}
	if ae.Resource != "a.lua" || len(ae.Suggestions) != 1 {
		t.Errorf("ActionableError = %+v", ae)
	}

	if NewErrorContext().Build() != nil {
		t.Error("Build() without operation should be nil")
	}
	if err := NewErrorContext().Wrap(cause).BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should be nil")
	}
	cause := errors.New("gone")
	err := WrapWithOperation(cause, "read script")
	if !errors.Is(err, cause) || err.Error() != "failed to read script: gone" {
		t.Errorf("WrapWithOperation() = %v", err)
	}
}
